package response

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/siportevent/siports/internal/apperrors"
	"github.com/siportevent/siports/internal/logger"
)

type ErrorResponse struct {
	ErrorCode apperrors.ErrorCode `json:"error_code"`
	Message   string              `json:"message"`
	RequestID string              `json:"request_id,omitempty"`
}

// RespondWithError logs the error and writes a json response containing an error code and message
func RespondWithError(w http.ResponseWriter, r *http.Request, statusCode int, errorCode apperrors.ErrorCode, message string) {
	reqLogger := logger.ContextRequestLogger(r.Context())
	requestID := middleware.GetReqID(r.Context())

	reqLogger.Error("Error response",
		slog.Int("status", statusCode),
		slog.String("error_code", string(errorCode)),
		slog.String("error_message", message),
	)

	dat, err := json.Marshal(ErrorResponse{
		ErrorCode: errorCode,
		Message:   message,
		RequestID: requestID,
	})
	if err != nil {
		reqLogger.Error("error marshaling error response", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		writeInternalError(w)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write(dat)
}

// writeInternalError is the fallback used when a response body cannot be encoded
func writeInternalError(w http.ResponseWriter) {
	_, _ = fmt.Fprintf(w, `{"error_code":%q,"message":"Internal Server Error"}`, apperrors.ErrCodeInternalError)
}

func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	dat, err := json.Marshal(payload)
	if err != nil {
		slog.Error("could not marshal the response payload", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		writeInternalError(w)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(dat)
}
