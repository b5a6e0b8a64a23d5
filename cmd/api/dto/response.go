package dto

// ErrorResponseDTO is the common error body.
type ErrorResponseDTO struct {
	Error string `json:"error" example:"Invalid YouTube URL"`
}

// MessageResponseDTO is the common body for plain message responses.
type MessageResponseDTO struct {
	Message string `json:"message" example:"Hello World"`
}

type HealthResponseDTO struct {
	Status string `json:"status" example:"ok"`
	Mongo  string `json:"mongo" example:"up"`
	Error  string `json:"error,omitempty"`
}
