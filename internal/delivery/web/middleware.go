package web

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

const msgInternalError = "something went wrong, please try again"

type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Server) withErrorHandling(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			s.logger.Error("handle error",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgInternalError})
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
