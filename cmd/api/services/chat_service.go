package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"yt-summary/models"
	"yt-summary/summarizer"
)

const maxChatInputLength = 2000

// ChatService answers questions about a summarization the user owns.
type ChatService struct {
	summarizations *SummarizationService
	entries        ChatEntryStore
}

func NewChatService(summarizations *SummarizationService, entries ChatEntryStore) *ChatService {
	return &ChatService{summarizations: summarizations, entries: entries}
}

// Ask answers input from the stored summary text and keeps the exchange.
func (s *ChatService) Ask(ctx context.Context, userID, summarizationID primitive.ObjectID, input string) (*models.ChatEntry, error) {
	const op = "ChatService.Ask"

	input = strings.TrimSpace(input)
	if input == "" {
		return nil, newError(op, KindInvalidInput, "input_text is required", nil)
	}
	if len([]rune(input)) > maxChatInputLength {
		return nil, newError(op, KindInvalidInput, "input_text is too long", nil)
	}

	record, resource, err := s.summarizations.owned(ctx, op, userID, summarizationID)
	if err != nil {
		return nil, err
	}

	summary, err := s.summarizations.artifacts.Load(ctx, resource.SummarizationKey)
	if err != nil {
		return nil, newError(op, KindStorage, "Failed to load summary", err)
	}

	answer, err := s.summarizations.summarizer.Answer(ctx, summary, input)
	if err != nil {
		if errors.Is(err, summarizer.ErrQuotaExceeded) {
			return nil, newError(op, KindQuotaExceeded, MsgQuotaExceeded, err)
		}
		return nil, newError(op, KindSummarization, "Failed to answer question", err)
	}

	entry, err := s.entries.Insert(ctx, models.ChatEntry{
		SummarizationID: record.ID,
		InputText:       input,
		OutputText:      answer,
		CreatedAt:       time.Now(),
	})
	if err != nil {
		return nil, newError(op, KindDatabase, MsgDatabase, err)
	}
	return entry, nil
}

// History lists the exchanges of a summarization, oldest first.
func (s *ChatService) History(ctx context.Context, userID, summarizationID primitive.ObjectID) ([]models.ChatEntry, error) {
	const op = "ChatService.History"

	record, _, err := s.summarizations.owned(ctx, op, userID, summarizationID)
	if err != nil {
		return nil, err
	}

	entries, err := s.entries.ListBySummarization(ctx, record.ID)
	if err != nil {
		return nil, newError(op, KindDatabase, MsgDatabase, err)
	}
	return entries, nil
}
