package rest

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Handler собирает роутер со всеми маршрутами и общими middleware
func (a *API) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", a.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Публичные маршруты
	api.HandleFunc("/login", a.login).Methods(http.MethodPost)
	api.HandleFunc("/register", a.register).Methods(http.MethodPost)

	// Маршруты с токеном
	protected := api.NewRoute().Subrouter()
	protected.Use(a.authenticate)

	protected.HandleFunc("/rooms", a.rooms).Methods(http.MethodGet)

	protected.HandleFunc("/reservations", a.createReservation).Methods(http.MethodPost)
	protected.HandleFunc("/reservations", a.listReservations).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{id:[0-9]+}", a.getReservation).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{id:[0-9]+}", a.deleteReservation).Methods(http.MethodDelete)
	protected.HandleFunc("/reservations/{id:[0-9]+}/cancel", a.cancelReservation).Methods(http.MethodPost)
	protected.HandleFunc("/reservations/{id:[0-9]+}/accept", a.acceptReservation).Methods(http.MethodPost)
	protected.HandleFunc("/reservations/{id:[0-9]+}/decline", a.declineReservation).Methods(http.MethodPost)

	protected.HandleFunc("/calendar", a.calendar).Methods(http.MethodGet)
	protected.HandleFunc("/calendar.png", a.calendarImage).Methods(http.MethodGet)
	protected.HandleFunc("/occupancy", a.currentOccupancy).Methods(http.MethodGet)

	protected.HandleFunc("/availability", a.setAvailability).Methods(http.MethodPut)
	protected.HandleFunc("/availability", a.listAvailability).Methods(http.MethodGet)

	protected.HandleFunc("/accounts", a.listAccounts).Methods(http.MethodGet)
	protected.HandleFunc("/accounts/{id:[0-9]+}/active", a.setAccountActive).Methods(http.MethodPatch)

	var h http.Handler = r
	h = a.rateLimit(a.opts.RateLimitPerMin)(h)
	h = handlers.CORS(
		handlers.AllowedOrigins(a.opts.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", requestIDHeader}),
	)(h)
	h = a.requestLogger(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(a.logger)),
		handlers.PrintRecoveryStack(true),
	)(h)

	return h
}
