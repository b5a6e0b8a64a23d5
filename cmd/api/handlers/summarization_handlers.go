package handlers

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"yt-summary/cmd/api/dto"
	"yt-summary/cmd/api/services"
)

func toSummarizationDTO(item services.SummarizationItem) dto.SummarizationDTO {
	return dto.SummarizationDTO{
		ID:               item.ID.Hex(),
		Title:            item.Title,
		YoutubeVideoID:   item.YoutubeVideoID,
		DurationSeconds:  item.DurationSeconds,
		TranscriptionURL: item.TranscriptionURL,
		SummarizationURL: item.SummarizationURL,
		CreatedAt:        item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// summarizationID parses the :id path param. Malformed ids answer 404 like unknown ones.
func summarizationID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: services.MsgNotFound})
		return primitive.NilObjectID, false
	}
	return id, true
}

// CreateSummarizationHandler godoc
// @Summary      Summarize a YouTube video
// @Description  Transcribes and summarizes the video, or reuses an earlier result for the same video.
// @Tags         summarizations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateSummarizationRequestDTO  true  "Video URL"
// @Success      201   {object}  dto.SummarizationCreatedDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      401   {object}  dto.ErrorResponseDTO
// @Failure      409   {object}  dto.ErrorResponseDTO
// @Failure      429   {object}  dto.ErrorResponseDTO
// @Failure      500   {object}  dto.ErrorResponseDTO
// @Failure      502   {object}  dto.ErrorResponseDTO
// @Router       /summarization [post]
func CreateSummarizationHandler(svc *services.SummarizationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}

		var req dto.CreateSummarizationRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil || req.URL() == "" {
			badRequest(c, "youtube_video_url is required")
			return
		}

		out, err := svc.Generate(c.Request.Context(), req.URL(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, dto.SummarizationCreatedDTO{
			ID:             out.ID.Hex(),
			Title:          out.Title,
			YoutubeVideoID: out.YoutubeVideoID,
		})
	}
}

// ListSummarizationsHandler godoc
// @Summary      List my summarizations
// @Description  Newest first. Artifact URLs are freshly signed.
// @Tags         summarizations
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   dto.SummarizationDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Failure      500  {object}  dto.ErrorResponseDTO
// @Router       /summarization [get]
func ListSummarizationsHandler(svc *services.SummarizationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}

		items, err := svc.List(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		slices.SortStableFunc(items, func(a, b services.SummarizationItem) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})

		out := make([]dto.SummarizationDTO, 0, len(items))
		for _, item := range items {
			out = append(out, toSummarizationDTO(item))
		}
		c.JSON(http.StatusOK, out)
	}
}

// GetSummarizationHandler godoc
// @Summary      Get one of my summarizations
// @Tags         summarizations
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Summarization ObjectID"
// @Success      200  {object}  dto.SummarizationDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /summarization/{id} [get]
func GetSummarizationHandler(svc *services.SummarizationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := summarizationID(c)
		if !ok {
			return
		}

		item, err := svc.Get(c.Request.Context(), userID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toSummarizationDTO(*item))
	}
}
