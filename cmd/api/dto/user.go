package dto

// RegisterRequestDTO is the body of POST /user.
type RegisterRequestDTO struct {
	Email                string `json:"email" binding:"required" example:"user@example.com"`
	Password             string `json:"password" binding:"required" example:"s3cret-pass"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required" example:"s3cret-pass"`
}

// ChangePasswordRequestDTO is the body of PUT /user/password.
type ChangePasswordRequestDTO struct {
	OldPassword             string `json:"old_password" binding:"required"`
	NewPassword             string `json:"new_password" binding:"required"`
	NewPasswordConfirmation string `json:"new_password_confirmation" binding:"required"`
}

type UserDTO struct {
	ID    string `json:"id" example:"6650c0ffee0000000000abcd"`
	Email string `json:"email" example:"user@example.com"`
}
