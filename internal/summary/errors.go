package summary

import (
	"errors"
	"fmt"
)

// ErrSummaryInProgress is returned when a summarization request is already
// outstanding.
var ErrSummaryInProgress = errors.New("summary generation already in progress")

// ErrMissingPatientName is the field-level failure behind a ValidationError
var ErrMissingPatientName = errors.New("patient name is required")

const (
	authFailureMarker = "API key not valid"
	maxExcerptLen     = 500
)

// ValidationError is a local check failing before anything is sent to the
// summarizer.
type ValidationError struct {
	Field string
	Cause error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Cause.Error())
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// UserMessage is the text shown to the user
func (e *ValidationError) UserMessage() string {
	return "Patient information is incomplete. Please fill in at least the patient's name."
}

// RemoteAuthError means the summarizer rejected the configured credential
type RemoteAuthError struct {
	Cause error
}

func (e *RemoteAuthError) Error() string {
	return "summarizer rejected credential: " + e.Cause.Error()
}

func (e *RemoteAuthError) Unwrap() error {
	return e.Cause
}

// UserMessage is the text shown to the user
func (e *RemoteAuthError) UserMessage() string {
	return "Invalid API Key for Gemini. Please check your configuration."
}

// RemoteError is any other failure calling the summarizer
type RemoteError struct {
	Cause error
}

func (e *RemoteError) Error() string {
	return "summarizer call failed: " + e.Cause.Error()
}

func (e *RemoteError) Unwrap() error {
	return e.Cause
}

// UserMessage is the text shown to the user
func (e *RemoteError) UserMessage() string {
	return "Failed to generate summaries: " + e.Cause.Error()
}

// MalformedResponseError means the summarizer output is not parseable
type MalformedResponseError struct {
	// Excerpt is a bounded prefix of the offending text
	Excerpt string
	Cause   error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed summarizer response (%s): %s", e.Cause.Error(), e.Excerpt)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

// UserMessage is the text shown to the user
func (e *MalformedResponseError) UserMessage() string {
	return "Failed to generate summaries: Failed to parse AI response. Raw response: " + e.Excerpt + "..."
}

// UnexpectedResponseShapeError means the output parsed but the keys or
// types are wrong.
type UnexpectedResponseShapeError struct {
	Field  string
	Reason string
}

func (e *UnexpectedResponseShapeError) Error() string {
	if e.Field == "" {
		return "unexpected summarizer response shape: " + e.Reason
	}
	return fmt.Sprintf("unexpected summarizer response shape: %s %s", e.Field, e.Reason)
}

// UserMessage is the text shown to the user
func (e *UnexpectedResponseShapeError) UserMessage() string {
	return "Failed to generate summaries: AI response did not match expected structure."
}

func excerpt(s string) string {
	r := []rune(s)
	if len(r) <= maxExcerptLen {
		return s
	}
	return string(r[:maxExcerptLen])
}
