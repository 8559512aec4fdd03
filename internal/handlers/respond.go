package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kiasamouie/loopy/pkg/errors"
)

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func sendError(w http.ResponseWriter, err *errors.ServiceError) {
	sendJSON(w, err.Status, map[string]string{
		"error":             err.Code,
		"error_description": err.Message,
	})
}

// respondError is the outermost failure boundary: typed service errors
// keep their status and code, anything else becomes a 500 carrying the
// error's message.
func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var svcErr *errors.ServiceError
	if stderrors.As(err, &svcErr) {
		logger.Error("Request failed", zap.String("code", svcErr.Code), zap.Error(err))
		sendError(w, svcErr)
		return
	}
	logger.Error("Request failed", zap.Error(err))
	sendJSON(w, http.StatusInternalServerError, map[string]string{
		"error":             errors.ErrInternalServer.Code,
		"error_description": err.Error(),
	})
}
