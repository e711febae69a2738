package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/caresynapse/healthsummary/internal/importer"
	"github.com/caresynapse/healthsummary/internal/record"
	"github.com/caresynapse/healthsummary/internal/store"
	"github.com/caresynapse/healthsummary/internal/summary"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

type userMessager interface {
	UserMessage() string
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, ErrorResponse{Error: message})
}

// errorStatus maps a domain error to its HTTP status and user-visible text
func errorStatus(err error) (int, string) {
	var (
		parseErr  *importer.ParseError
		validErr  *summary.ValidationError
		authErr   *summary.RemoteAuthError
		remoteErr *summary.RemoteError
		malformed *summary.MalformedResponseError
		shapeErr  *summary.UnexpectedResponseShapeError
	)
	switch {
	case errors.As(err, &parseErr):
		return http.StatusUnprocessableEntity, parseErr.UserMessage()
	case errors.As(err, &validErr):
		return http.StatusUnprocessableEntity, validErr.UserMessage()
	case errors.As(err, &authErr):
		return http.StatusBadGateway, authErr.UserMessage()
	case errors.As(err, &remoteErr):
		return http.StatusBadGateway, remoteErr.UserMessage()
	case errors.As(err, &malformed):
		return http.StatusBadGateway, malformed.UserMessage()
	case errors.As(err, &shapeErr):
		return http.StatusBadGateway, shapeErr.UserMessage()
	case errors.Is(err, summary.ErrSummaryInProgress):
		return http.StatusConflict, "Summary generation is already in progress."
	case errors.Is(err, store.ErrStaleSnapshot):
		return http.StatusConflict, "The record changed while summaries were being generated. Please generate them again."
	case errors.Is(err, record.ErrItemNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, record.ErrUnknownSection), errors.Is(err, record.ErrUnknownField):
		return http.StatusBadRequest, err.Error()
	}
	if um, ok := err.(userMessager); ok {
		return http.StatusInternalServerError, um.UserMessage()
	}
	return http.StatusInternalServerError, "internal server error"
}
