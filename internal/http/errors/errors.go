package errors

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func requestLogger(r *http.Request) *zap.Logger {
	log := zap.L()
	if requestID := middleware.GetReqID(r.Context()); requestID != "" {
		log = log.With(zap.String("request_id", requestID))
	}
	return log
}

// InternalError logs err and replies with a generic 500.
func InternalError(w http.ResponseWriter, r *http.Request, err error, message string) {
	requestLogger(r).Error(message, zap.Error(err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// BadRequestError logs err and replies 400 with clientMessage.
func BadRequestError(w http.ResponseWriter, r *http.Request, err error, clientMessage string) {
	requestLogger(r).Warn("Bad request", zap.Error(err))
	http.Error(w, clientMessage, http.StatusBadRequest)
}

func LogError(r *http.Request, message string, err error) {
	requestLogger(r).Error(message, zap.Error(err))
}

func LogInfo(r *http.Request, message string, fields ...zap.Field) {
	requestLogger(r).Info(message, fields...)
}
