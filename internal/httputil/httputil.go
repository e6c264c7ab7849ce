// Package httputil holds the JSON plumbing shared by every handler.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/EmpoweredVote/zone-incidents/internal/apperr"
	"github.com/EmpoweredVote/zone-incidents/internal/models"
)

// MaxBodyBytes caps every request body.
const MaxBodyBytes = 1 << 20 // 1 MiB

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

// WriteError renders err using the apperr status mapping. Store failures are
// logged with the request id and hidden from the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
	}
	WriteJSON(w, status, ErrorResponse{StatusCode: status, Message: apperr.Message(err)})
}

// DecodeJSON reads the body into dst. Malformed or oversized bodies become
// ErrInvalid.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperr.Invalid("request body is empty")
		case errors.As(err, &maxErr):
			return apperr.Invalid("request body exceeds %d bytes", maxErr.Limit)
		default:
			return apperr.Invalid("invalid request body: %v", err)
		}
	}
	return nil
}

// URLParamID parses the named chi path parameter as an ID.
func URLParamID(r *http.Request, name string) (models.ID, error) {
	id, err := models.ParseID(chi.URLParam(r, name))
	if err != nil {
		return 0, apperr.Invalid("%s: %v", name, err)
	}
	return id, nil
}
