package dto

// LoginRequestDTO is the JSON form of POST /auth. Form posts use username/password instead.
type LoginRequestDTO struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"s3cret-pass"`
}

type TokenResponseDTO struct {
	AccessToken string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIs..."`
	TokenType   string `json:"token_type" example:"bearer"`
}
