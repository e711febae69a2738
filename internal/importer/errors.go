package importer

import (
	"errors"
	"fmt"
)

// maxCauseLen bounds the underlying message carried into user-facing text
const maxCauseLen = 500

// ErrEmptyFile is returned when there are no bytes to parse
var ErrEmptyFile = errors.New("file data could not be read")

// ParseError reports a workbook that could not be read or mapped. Nothing
// from a failed import is applied.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("import workbook: %s", e.Detail())
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Detail returns the underlying message, truncated
func (e *ParseError) Detail() string {
	if e.Cause == nil {
		return "unknown error"
	}
	return truncate(e.Cause.Error(), maxCauseLen)
}

// UserMessage is the notification text shown for a failed import
func (e *ParseError) UserMessage() string {
	return "Failed to import from Excel. Ensure the file is valid and follows the expected format. Error: " + e.Detail()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
