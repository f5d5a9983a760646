package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/jobtrail/internal/server/storage"
	"github.com/iudanet/jobtrail/pkg/api"
)

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	api.WriteError(w, http.StatusBadRequest, api.ErrorResponse{Code: api.CodeBadRequest, Message: msg})
}

// writeStoreError переводит ошибку хранилища в ответ с кодом postgres
func writeStoreError(w http.ResponseWriter, logger *slog.Logger, err error) {
	if ce, ok := storage.AsConstraint(err); ok {
		status := http.StatusBadRequest
		if ce.Code == api.CodeUniqueViolation {
			status = http.StatusConflict
		}
		api.WriteError(w, status, api.ErrorResponse{Code: ce.Code, Message: ce.Detail})
		return
	}

	switch {
	case errors.Is(err, storage.ErrUnknownTable):
		api.WriteError(w, http.StatusNotFound, api.ErrorResponse{Code: api.CodeUndefinedTable, Message: err.Error()})
	case errors.Is(err, storage.ErrUnknownColumn):
		api.WriteError(w, http.StatusBadRequest, api.ErrorResponse{Code: api.CodeUndefinedColumn, Message: err.Error()})
	case errors.Is(err, storage.ErrInvalidValue):
		api.WriteError(w, http.StatusBadRequest, api.ErrorResponse{Code: api.CodeInvalidText, Message: err.Error()})
	default:
		logger.Error("storage failure", slog.Any("error", err))
		api.WriteError(w, http.StatusInternalServerError, api.ErrorResponse{Message: "internal server error"})
	}
}
