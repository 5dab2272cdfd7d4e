package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Freeeeeet/lab_scheduler/internal/auth"
	"github.com/Freeeeeet/lab_scheduler/internal/booking"
	"github.com/Freeeeeet/lab_scheduler/internal/controller/render"
	"github.com/Freeeeeet/lab_scheduler/internal/model"
	"github.com/Freeeeeet/lab_scheduler/internal/service"
)

const maxBodyBytes = 1 << 20

type credentialsRequest struct {
	StudentID string `json:"student_id"`
	Password  string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type reservationRequest struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Room      int    `json:"room"`
	StartTime string `json:"start_time"` // HH:MM
}

type availabilityRequest struct {
	Date      string `json:"date"`
	Room      int    `json:"room"`
	StartTime string `json:"start_time"`
	Available *bool  `json:"available"` // по умолчанию true
}

type activeRequest struct {
	Active *bool `json:"active"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode body: %v", errBadRequest, err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %v", errBadRequest, err)
	}
	return id, nil
}

func actorFrom(ctx context.Context) (model.Actor, error) {
	actor, ok := auth.ActorFrom(ctx)
	if !ok {
		return model.Actor{}, errUnauthenticated
	}
	return actor, nil
}

func (a *API) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	token, user, err := a.accounts.Authenticate(r.Context(), req.StudentID, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			err = fmt.Errorf("%w: %w", errUnauthenticated, err)
		}
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	user, err := a.accounts.Register(r.Context(), req.StudentID, req.Password)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (a *API) rooms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]int{"rooms": a.reservations.Rooms()})
}

func (a *API) createReservation(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var req reservationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	date, err := booking.ParseDate(req.Date)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	reservation, err := a.reservations.RequestBooking(r.Context(), actor, date, req.Room, req.StartTime)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, reservation)
}

func (a *API) listReservations(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	filter, page, err := parseReservationQuery(r.URL.Query())
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	result, err := a.reservations.ListReservations(r.Context(), actor, filter, page)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (a *API) getReservation(w http.ResponseWriter, r *http.Request) {
	a.withReservationID(w, r, a.reservations.GetReservation)
}

func (a *API) cancelReservation(w http.ResponseWriter, r *http.Request) {
	a.withReservationID(w, r, a.reservations.CancelReservation)
}

func (a *API) acceptReservation(w http.ResponseWriter, r *http.Request) {
	a.withReservationID(w, r, a.reservations.AcceptReservation)
}

func (a *API) declineReservation(w http.ResponseWriter, r *http.Request) {
	a.withReservationID(w, r, a.reservations.DeclineReservation)
}

type reservationOp func(ctx context.Context, actor model.Actor, id int64) (*model.Reservation, error)

// withReservationID разбирает id из пути, вызывает операцию и отдаёт бронь
func (a *API) withReservationID(w http.ResponseWriter, r *http.Request, op reservationOp) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	reservation, err := op(r.Context(), actor, id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reservation)
}

func (a *API) deleteReservation(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	if err := a.reservations.DeleteReservation(r.Context(), actor, id); err != nil {
		a.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) loadCalendar(r *http.Request) (calendarQuery, []model.CalendarDay, error) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		return calendarQuery{}, nil, err
	}

	q, err := parseCalendarQuery(r.URL.Query(), actor, a.reservations.Today())
	if err != nil {
		return calendarQuery{}, nil, err
	}

	days, err := a.reservations.GetCalendar(r.Context(), actor, q.Month, q.Year, q.Policy)
	if err != nil {
		return calendarQuery{}, nil, err
	}
	return q, days, nil
}

func (a *API) calendar(w http.ResponseWriter, r *http.Request) {
	q, days, err := a.loadCalendar(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"month":  int(q.Month),
		"year":   q.Year,
		"policy": q.Policy,
		"days":   days,
	})
}

func (a *API) calendarImage(w http.ResponseWriter, r *http.Request) {
	q, days, err := a.loadCalendar(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	img, err := render.MonthImage(q.Month, q.Year, days, q.Policy, a.reservations.Today())
	if err != nil {
		a.writeError(w, r, fmt.Errorf("render calendar: %w", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

func (a *API) currentOccupancy(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	rooms, err := a.occupancy.Current(r.Context(), actor, a.opts.Now())
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

func (a *API) setAvailability(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var req availabilityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	date, err := booking.ParseDate(req.Date)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	available := true
	if req.Available != nil {
		available = *req.Available
	}

	window, err := a.availability.SetWindow(r.Context(), actor, date, req.Room, req.StartTime, available)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, window)
}

func (a *API) listAvailability(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	month, year, err := parseMonth(r.URL.Query(), a.reservations.Today())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	room, err := optionalInt(r.URL.Query(), "room")
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	windows, err := a.availability.ListWindows(r.Context(), actor, month, year, room)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"windows": windows})
}

func (a *API) listAccounts(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	users, err := a.accounts.ListAccounts(r.Context(), actor)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"accounts": users})
}

func (a *API) setAccountActive(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var req activeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if req.Active == nil {
		a.writeError(w, r, fmt.Errorf("%w: active is required", errBadRequest))
		return
	}

	user, err := a.accounts.SetActive(r.Context(), actor, id, *req.Active)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
