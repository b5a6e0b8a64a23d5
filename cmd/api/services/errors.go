package services

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure. Handlers map each kind to one HTTP status.
type Kind string

const (
	KindInvalidInput     Kind = "invalid_input"
	KindMediaUnavailable Kind = "media_unavailable"
	KindVideoTooLong     Kind = "video_too_long"
	KindAlreadyExists    Kind = "already_exists"
	KindConflict         Kind = "conflict"
	KindTranscription    Kind = "transcription_error"
	KindSummarization    Kind = "summarization_error"
	KindStorage          Kind = "storage_error"
	KindDatabase         Kind = "database_error"
	KindQuotaExceeded    Kind = "quota_exceeded"
	KindNotFound         Kind = "not_found"
	KindUnauthorized     Kind = "unauthorized"
	KindInternal         Kind = "internal_error"
)

// Error is returned by every service method. Message is safe to show to clients;
// Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Op      string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(op string, kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// Client-facing messages.
const (
	MsgInvalidURL          = "Invalid YouTube URL"
	MsgMediaUnavailable    = "Video is unavailable"
	MsgAlreadyExists       = "Summarization already exists"
	MsgConflict            = "Conflicting summarization request"
	MsgTranscriptionFailed = "Failed to transcribe video"
	MsgSummarizationFailed = "Failed to summarize video"
	MsgStorageFailed       = "Failed to store artifact"
	MsgDatabase            = "Database error"
	MsgQuotaExceeded       = "Summarization quota exceeded"
	MsgNotFound            = "Resource not found"
	MsgBadCredentials      = "Incorrect email or password"
	MsgInternal            = "Internal server error"
)
