package dto

type ChatRequestDTO struct {
	InputText string `json:"input_text" example:"What is the main argument of the video?"`
}

type ChatEntryDTO struct {
	ID         string `json:"id" example:"6650c0ffee0000000000abcd"`
	InputText  string `json:"input_text"`
	OutputText string `json:"output_text"`
	CreatedAt  string `json:"created_at" example:"2025-01-01T12:00:00Z"`
}
