package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"groovy/core/apperr"
	"groovy/dto"
	"groovy/logger"
	"groovy/storage"

	"github.com/gorilla/mux"
)

// writeJSON 输出 JSON 响应
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

// writeText is used by endpoints that answer with a bare string.
func writeText(w http.ResponseWriter, status int, s string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(s))
}

// writeError converts err into the standard error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message, fields := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.ErrorField(err))
	}
	writeJSON(w, status, dto.ErrorResponse{
		Message:   message,
		Status:    status,
		Timestamp: time.Now(),
		Path:      r.URL.Path,
		Errors:    fields,
	})
}

// writeStatus writes an error body for a failure detected in the HTTP layer.
func writeStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Message:   message,
		Status:    status,
		Timestamp: time.Now(),
		Path:      r.URL.Path,
	})
}

func classify(err error) (int, string, []apperr.FieldError) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		switch ae.Kind {
		case apperr.KindNotFound:
			return http.StatusNotFound, ae.Message, nil
		case apperr.KindValidation:
			return http.StatusBadRequest, ae.Message, ae.Fields
		case apperr.KindBadRequest:
			return http.StatusBadRequest, ae.Message, nil
		case apperr.KindUnauthorized:
			return http.StatusUnauthorized, ae.Message, nil
		case apperr.KindForbidden:
			return http.StatusForbidden, ae.Message, nil
		case apperr.KindConflict:
			return http.StatusConflict, ae.Message, nil
		}
	}
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "File not found", nil
	case errors.Is(err, storage.ErrInvalidPath), errors.Is(err, storage.ErrEmptyFile):
		return http.StatusBadRequest, err.Error(), nil
	}
	return http.StatusInternalServerError, "An unexpected error occurred", nil
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.BadRequest("Malformed JSON request body")
	}
	return nil
}

// pathID parses the named mux variable as an id.
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.BadRequest("Invalid %s: %s", name, raw)
	}
	return id, nil
}
