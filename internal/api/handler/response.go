package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"vidly/internal/api/handler/dto"
	"vidly/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
)

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

// StatusFor maps an error to its HTTP status and machine readable code.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, apperrors.ErrInvalidArgument):
		return http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrAlreadyExists):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func respondError(w http.ResponseWriter, err error) {
	status, code := StatusFor(err)
	resp := dto.ErrorResponse{Error: dto.ErrorDetail{Code: code}}

	switch status {
	case http.StatusBadRequest:
		resp.Error.Message = err.Error()
		fields := apperrors.Fields(err)
		for _, f := range fields {
			resp.Errors = append(resp.Errors, dto.FieldError{Field: f.Field, Message: f.Message})
		}
		if len(fields) == 1 {
			resp.Error.Message, resp.Error.Field = fields[0].Message, fields[0].Field
		}
	case http.StatusNotFound:
		resp.Error.Message = "Resource not found."
	case http.StatusConflict:
		resp.Error.Message = "The resource was modified concurrently or already exists."
	case http.StatusInternalServerError:
		resp.Error.Message = "An unexpected error occurred."
		slog.Default().Error("Unhandled internal error", "error", err)
	default:
		resp.Error.Message = err.Error()
	}

	respondJSON(w, status, resp)
}

func getIDFromURL(r *http.Request, param string) (int64, error) {
	idStr := chi.URLParam(r, param)
	if idStr == "" {
		return 0, fmt.Errorf("%w: %s not found in URL path", apperrors.ErrInvalidArgument, param)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s format in URL path: %s", apperrors.ErrInvalidArgument, param, idStr)
	}
	return id, nil
}

func logLevelFor(err error) slog.Level {
	if status, _ := StatusFor(err); status >= http.StatusInternalServerError {
		return slog.LevelError
	}
	return slog.LevelWarn
}
