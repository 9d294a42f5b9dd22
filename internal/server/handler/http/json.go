// Package http implements the dev server's REST handlers and routes.
package http

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// writeJSON serializes v with the given status.
func writeJSON(w http.ResponseWriter, log *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("encode response", zap.Error(err))
	}
}

// writeMessage writes the {"message": ...} shape the client decodes
// from both successes and rejections.
func writeMessage(w http.ResponseWriter, log *zap.Logger, status int, message string) {
	writeJSON(w, log, status, map[string]string{"message": message})
}
