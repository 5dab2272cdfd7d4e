package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Freeeeeet/lab_scheduler/internal/booking"
	"github.com/Freeeeeet/lab_scheduler/internal/service"
)

// errUnauthenticated возвращается для запроса без действующего токена
var errUnauthenticated = errors.New("authentication required")

// errBadRequest возвращается, если тело или параметры запроса не разобрались
var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// errorStatus сопоставляет ошибку сервиса с HTTP статусом
func errorStatus(err error) int {
	switch {
	case errors.Is(err, booking.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, errUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, errBadRequest),
		booking.IsValidation(err),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, booking.ErrNotFound),
		errors.Is(err, service.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrSlotTaken),
		errors.Is(err, booking.ErrRoomClosed),
		errors.Is(err, service.ErrAccountExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError отвечает статусом по виду ошибки. Текст внутренних ошибок наружу не отдаётся.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	message := err.Error()

	if status >= http.StatusInternalServerError {
		a.logger.Error("Request failed",
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
		message = http.StatusText(status)
	}

	writeJSON(w, status, errorResponse{Error: message})
}
