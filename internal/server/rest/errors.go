package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/custdb/internal/common"
	"github.com/dmitrijs2005/custdb/internal/logging"
	"github.com/dmitrijs2005/custdb/internal/server/validation"
)

var (
	ErrInvalidJSON         = &HTTPError{Code: "invalid_json", Message: "Invalid JSON format", Status: http.StatusBadRequest}
	ErrBadRequest          = &HTTPError{Code: "bad_request", Message: "Bad request", Status: http.StatusBadRequest}
	ErrUnauthorized        = &HTTPError{Code: "unauthorized", Message: "Unauthorized", Status: http.StatusUnauthorized}
	ErrNotFound            = &HTTPError{Code: "not_found", Message: "Not found", Status: http.StatusNotFound}
	ErrConflict            = &HTTPError{Code: "already_exists", Message: "Email already registered", Status: http.StatusConflict}
	ErrMethodNotAllowed    = &HTTPError{Code: "method_not_allowed", Message: "Method not allowed", Status: http.StatusMethodNotAllowed}
	ErrInternalServerError = &HTTPError{Code: "internal_error", Message: "Internal server error", Status: http.StatusInternalServerError}
)

// HTTPError is the JSON body of every failed request.
type HTTPError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Status  int                    `json:"status"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
}

func (e *HTTPError) Error() string { return e.Message }

// WithMessage returns a copy of e with a different message.
func (e *HTTPError) WithMessage(msg string) *HTTPError {
	out := *e
	out.Message = msg
	return &out
}

func validationError(errs validation.Errors) *HTTPError {
	return &HTTPError{
		Code:    "validation_error",
		Message: "Validation failed",
		Status:  http.StatusBadRequest,
		Errors:  errs,
	}
}

// toHTTPError maps service errors onto API errors. Unknown errors become a
// 500 whose body does not leak the cause.
func toHTTPError(err error) *HTTPError {
	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return validationError(verrs)
	}
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return ErrNotFound
	case errors.Is(err, common.ErrorAlreadyExists):
		return ErrConflict
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return ErrUnauthorized
	}
	return ErrInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError logs server-side failures and writes the mapped error body.
func writeError(ctx context.Context, logger logging.Logger, w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	if he.Status >= http.StatusInternalServerError {
		logger.Error(ctx, "request failed", "error", err)
	}
	if he.Status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, he.Status, he)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrBadRequest.WithMessage("Request body is empty")
		}
		return ErrInvalidJSON
	}
	return nil
}

// notFoundAs replaces the generic not-found message with msg.
func notFoundAs(err error, msg string) error {
	if errors.Is(err, common.ErrorNotFound) {
		return ErrNotFound.WithMessage(msg)
	}
	return err
}
