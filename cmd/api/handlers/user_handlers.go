package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yt-summary/cmd/api/dto"
	"yt-summary/cmd/api/services"
	"yt-summary/models"
)

func toUserDTO(u *models.User) dto.UserDTO {
	return dto.UserDTO{ID: u.ID.Hex(), Email: u.Email}
}

// RegisterHandler godoc
// @Summary      Register a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RegisterRequestDTO  true  "New account"
// @Success      201   {object}  dto.UserDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      500   {object}  dto.ErrorResponseDTO
// @Router       /user [post]
func RegisterHandler(userSvc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.RegisterRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "email, password and password_confirmation are required")
			return
		}

		user, err := userSvc.Register(c.Request.Context(), req.Email, req.Password, req.PasswordConfirmation)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, toUserDTO(user))
	}
}

// GetCurrentUserHandler godoc
// @Summary      Current user
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  dto.UserDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /user/me [get]
func GetCurrentUserHandler(userSvc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}

		user, err := userSvc.Get(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toUserDTO(user))
	}
}

// ChangePasswordHandler godoc
// @Summary      Change password
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ChangePasswordRequestDTO  true  "Old and new password"
// @Success      200   {object}  dto.MessageResponseDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      401   {object}  dto.ErrorResponseDTO
// @Router       /user/password [put]
func ChangePasswordHandler(userSvc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}

		var req dto.ChangePasswordRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "old_password, new_password and new_password_confirmation are required")
			return
		}

		err := userSvc.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword, req.NewPasswordConfirmation)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.MessageResponseDTO{Message: "Password updated"})
	}
}
