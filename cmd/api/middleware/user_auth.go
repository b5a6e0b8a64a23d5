package middleware

import (
	"github.com/gin-gonic/gin"

	"yt-summary/cmd/api/auth"
	"yt-summary/cmd/api/services"
	"yt-summary/internal/logger"
)

// UserAuthMiddleware validates the bearer token and stores the user id in the context.
func UserAuthMiddleware(authSvc *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c)
		if err != nil {
			auth.AbortWithUnauthorized(c, err)
			return
		}

		userID, err := authSvc.Authenticate(token)
		if err != nil {
			logger.Log.Debugf("token rejected: %v", err)
			auth.AbortWithUnauthorized(c, auth.ErrInvalidToken)
			return
		}

		auth.SetUserID(c, userID)
		c.Next()
	}
}
