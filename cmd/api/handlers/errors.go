package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"yt-summary/cmd/api/auth"
	"yt-summary/cmd/api/dto"
	"yt-summary/cmd/api/services"
	"yt-summary/internal/logger"
)

var statusByKind = map[services.Kind]int{
	services.KindInvalidInput:     http.StatusBadRequest,
	services.KindMediaUnavailable: http.StatusBadRequest,
	services.KindVideoTooLong:     http.StatusBadRequest,
	services.KindAlreadyExists:    http.StatusConflict,
	services.KindConflict:         http.StatusConflict,
	services.KindTranscription:    http.StatusBadGateway,
	services.KindSummarization:    http.StatusBadGateway,
	services.KindStorage:          http.StatusBadGateway,
	services.KindDatabase:         http.StatusInternalServerError,
	services.KindQuotaExceeded:    http.StatusTooManyRequests,
	services.KindNotFound:         http.StatusNotFound,
	services.KindUnauthorized:     http.StatusUnauthorized,
	services.KindInternal:         http.StatusInternalServerError,
}

// statusOf maps a service error to its HTTP status. Unknown errors are 500.
func statusOf(err error) int {
	if status, ok := statusByKind[services.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError writes the client-safe message of err. The full chain only goes to the log.
func respondError(c *gin.Context, err error) {
	status := statusOf(err)
	message := services.MsgInternal
	var se *services.Error
	if errors.As(err, &se) {
		message = se.Message
	}

	if status >= http.StatusInternalServerError {
		logger.ErrorWithFields("request failed", logger.Fields{
			"status": status,
			"path":   c.FullPath(),
			"error":  err.Error(),
		})
	}

	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	_ = c.Error(err)
	c.JSON(status, dto.ErrorResponseDTO{Error: message})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: message})
}

// currentUser reads the id stored by the auth middleware. A missing id means the
// route was mounted without it, which is answered like an absent token.
func currentUser(c *gin.Context) (primitive.ObjectID, bool) {
	id, ok := auth.UserID(c)
	if !ok {
		auth.AbortWithUnauthorized(c, auth.ErrMissingHeader)
		return id, false
	}
	return id, true
}
