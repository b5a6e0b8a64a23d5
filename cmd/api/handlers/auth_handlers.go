package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yt-summary/cmd/api/dto"
	"yt-summary/cmd/api/services"
)

// LoginHandler godoc
// @Summary      Issue an access token
// @Description  Accepts a JSON body {email, password} or an OAuth2 password form (username, password).
// @Tags         auth
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        body  body      dto.LoginRequestDTO  false  "Credentials"
// @Success      200   {object}  dto.TokenResponseDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      401   {object}  dto.ErrorResponseDTO
// @Router       /auth [post]
func LoginHandler(authSvc *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var email, password string
		switch c.ContentType() {
		case gin.MIMEPOSTForm, gin.MIMEMultipartPOSTForm:
			email, password = c.PostForm("username"), c.PostForm("password")
		default:
			var req dto.LoginRequestDTO
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, "invalid request body")
				return
			}
			email, password = req.Email, req.Password
		}
		if email == "" || password == "" {
			badRequest(c, "email and password are required")
			return
		}

		token, err := authSvc.Login(c.Request.Context(), email, password)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.TokenResponseDTO{AccessToken: token, TokenType: "bearer"})
	}
}
