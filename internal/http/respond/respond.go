// Package respond writes JSON bodies and errors for the API handlers.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/lumen/internal/logger"
	"github.com/MrJamesThe3rd/lumen/internal/validation"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log := logger.FromContext(r.Context(), zerolog.Nop())
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func Error(w http.ResponseWriter, r *http.Request, status int, msg string) {
	JSON(w, r, status, errorBody{Error: msg, RequestID: middleware.GetReqID(r.Context())})
}

// Internal logs err and answers 500 without leaking it.
func Internal(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context(), zerolog.Nop())
	log.Error().Err(err).Msg("request failed")

	Error(w, r, http.StatusInternalServerError, "internal error")
}

// Invalid answers 422 for validation failures and 400 for anything else.
func Invalid(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		JSON(w, r, http.StatusUnprocessableEntity, errorBody{
			Error:     verr.Message,
			Field:     verr.Field,
			RequestID: middleware.GetReqID(r.Context()),
		})

		return
	}

	Error(w, r, http.StatusBadRequest, err.Error())
}

// Decode reads a JSON body into dst. Unknown fields are rejected.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}

	return nil
}

// Bind decodes and validates dst.
func Bind(r *http.Request, dst any) error {
	if err := Decode(r, dst); err != nil {
		return err
	}

	return validation.Struct(dst)
}
