package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"yt-summary/cmd/api/dto"
	"yt-summary/cmd/api/services"
	"yt-summary/models"
)

func toChatEntryDTO(e models.ChatEntry) dto.ChatEntryDTO {
	return dto.ChatEntryDTO{
		ID:         e.ID.Hex(),
		InputText:  e.InputText,
		OutputText: e.OutputText,
		CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// AskHandler godoc
// @Summary      Ask a question about a summarization
// @Tags         chat
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Summarization ObjectID"
// @Param        body  body      dto.ChatRequestDTO  true  "Question"
// @Success      201   {object}  dto.ChatEntryDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      401   {object}  dto.ErrorResponseDTO
// @Failure      404   {object}  dto.ErrorResponseDTO
// @Failure      429   {object}  dto.ErrorResponseDTO
// @Failure      502   {object}  dto.ErrorResponseDTO
// @Router       /summarization/{id}/chat [post]
func AskHandler(chatSvc *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := summarizationID(c)
		if !ok {
			return
		}

		var req dto.ChatRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}

		entry, err := chatSvc.Ask(c.Request.Context(), userID, id, req.InputText)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, toChatEntryDTO(*entry))
	}
}

// ChatHistoryHandler godoc
// @Summary      List the questions asked about a summarization
// @Tags         chat
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Summarization ObjectID"
// @Success      200  {array}   dto.ChatEntryDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /summarization/{id}/chat [get]
func ChatHistoryHandler(chatSvc *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := summarizationID(c)
		if !ok {
			return
		}

		entries, err := chatSvc.History(c.Request.Context(), userID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		out := make([]dto.ChatEntryDTO, 0, len(entries))
		for _, e := range entries {
			out = append(out, toChatEntryDTO(e))
		}
		c.JSON(http.StatusOK, out)
	}
}
