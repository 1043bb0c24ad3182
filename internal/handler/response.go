package handler

import (
	"encoding/json"
	"net/http"

	"obi-site/internal/middleware"
	"obi-site/pkg/errors"
	"obi-site/pkg/logger"
)

// DataResponse is the success envelope of the JSON endpoints
type DataResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, r *http.Request, err error, log *logger.Logger) {
	appErr := errors.As(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		middleware.GetLogger(r.Context(), log).WithError(err).Error("Request failed")
	}
	if werr := errors.WriteJSON(w, appErr, middleware.GetRequestID(r.Context())); werr != nil {
		log.WithError(werr).Error("Failed to encode error response")
	}
}
