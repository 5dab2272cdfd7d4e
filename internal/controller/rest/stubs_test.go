package rest

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/lab_scheduler/internal/booking"
	"github.com/Freeeeeet/lab_scheduler/internal/model"
)

var (
	adminActor    = model.Actor{ID: 1, Role: model.RoleAdmin}
	userActor     = model.Actor{ID: 7, Role: model.RoleUser}
	disabledActor = model.Actor{ID: 9, Role: model.RoleUser} // токен ещё действует, аккаунт отключён
)

// checkActive повторяет проверку каталога, которую делают сервисы
func checkActive(actor model.Actor) error {
	if actor.ID == disabledActor.ID {
		return fmt.Errorf("account %d is unknown or inactive: %w", actor.ID, booking.ErrUnauthorized)
	}
	return nil
}

type bookingCall struct {
	actor     model.Actor
	date      time.Time
	room      int
	startTime string
}

type calendarCall struct {
	actor  model.Actor
	month  time.Month
	year   int
	policy model.CalendarPolicy
}

type stubReservations struct {
	today time.Time
	err   error

	bookings  []bookingCall
	filter    model.ReservationFilter
	page      model.Page
	calendars []calendarCall
	deleted   []int64
	ops       []string
}

func (s *stubReservations) Today() time.Time { return s.today }

func (s *stubReservations) Rooms() []int { return []int{1, 2, 3} }

func (s *stubReservations) RequestBooking(_ context.Context, actor model.Actor, date time.Time, room int, startTime string) (*model.Reservation, error) {
	s.bookings = append(s.bookings, bookingCall{actor: actor, date: date, room: room, startTime: startTime})
	if s.err != nil {
		return nil, s.err
	}
	slot, err := booking.SlotFromStartTime(startTime)
	if err != nil {
		return nil, err
	}
	r := &model.Reservation{ID: 42, UserID: actor.ID, Date: date, Room: room, Status: model.ReservationStatusPending}
	if err := booking.ApplySlot(r, slot); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *stubReservations) op(name string, actor model.Actor, id int64, status model.ReservationStatus) (*model.Reservation, error) {
	s.ops = append(s.ops, fmt.Sprintf("%s:%d:%d", name, actor.ID, id))
	if s.err != nil {
		return nil, s.err
	}
	return &model.Reservation{ID: id, UserID: actor.ID, Status: status}, nil
}

func (s *stubReservations) CancelReservation(_ context.Context, actor model.Actor, id int64) (*model.Reservation, error) {
	return s.op("cancel", actor, id, model.ReservationStatusCancelled)
}

func (s *stubReservations) AcceptReservation(_ context.Context, actor model.Actor, id int64) (*model.Reservation, error) {
	return s.op("accept", actor, id, model.ReservationStatusAccepted)
}

func (s *stubReservations) DeclineReservation(_ context.Context, actor model.Actor, id int64) (*model.Reservation, error) {
	return s.op("decline", actor, id, model.ReservationStatusDeclined)
}

func (s *stubReservations) GetReservation(_ context.Context, actor model.Actor, id int64) (*model.Reservation, error) {
	return s.op("get", actor, id, model.ReservationStatusPending)
}

func (s *stubReservations) DeleteReservation(_ context.Context, _ model.Actor, id int64) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubReservations) ListReservations(_ context.Context, _ model.Actor, filter model.ReservationFilter, page model.Page) (*model.ReservationPage, error) {
	s.filter = filter
	s.page = page
	if s.err != nil {
		return nil, s.err
	}
	return &model.ReservationPage{Items: []*model.Reservation{}, Page: page}, nil
}

func (s *stubReservations) GetCalendar(_ context.Context, actor model.Actor, month time.Month, year int, policy model.CalendarPolicy) ([]model.CalendarDay, error) {
	s.calendars = append(s.calendars, calendarCall{actor: actor, month: month, year: year, policy: policy})
	if s.err != nil {
		return nil, s.err
	}
	return booking.Project(month, year, nil, actor.ID, policy)
}

type stubAccounts struct {
	err       error
	activeSet []bool
}

func (s *stubAccounts) Register(_ context.Context, studentID, _ string) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.User{ID: 10, StudentID: studentID, Role: model.RoleUser, IsActive: true}, nil
}

func (s *stubAccounts) Authenticate(_ context.Context, identifier, _ string) (string, *model.User, error) {
	if s.err != nil {
		return "", nil, s.err
	}
	return "user-token", &model.User{ID: 7, StudentID: identifier, Role: model.RoleUser, IsActive: true}, nil
}

func (s *stubAccounts) ParseToken(token string) (model.Actor, error) {
	switch token {
	case "admin-token":
		return adminActor, nil
	case "user-token":
		return userActor, nil
	case "disabled-token":
		return disabledActor, nil
	}
	return model.Actor{}, fmt.Errorf("token %q: %w", token, booking.ErrUnauthorized)
}

func (s *stubAccounts) SetActive(_ context.Context, _ model.Actor, id int64, active bool) (*model.User, error) {
	s.activeSet = append(s.activeSet, active)
	if s.err != nil {
		return nil, s.err
	}
	return &model.User{ID: id, Role: model.RoleUser, IsActive: active}, nil
}

func (s *stubAccounts) ListAccounts(_ context.Context, _ model.Actor) ([]*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []*model.User{{ID: 1, StudentID: "admin", Role: model.RoleAdmin, IsActive: true}}, nil
}

type stubAvailability struct {
	available []bool
	listedBy  []model.Actor
	err       error
}

func (s *stubAvailability) SetWindow(_ context.Context, _ model.Actor, date time.Time, room int, startTime string, available bool) (*model.AvailabilityWindow, error) {
	s.available = append(s.available, available)
	if s.err != nil {
		return nil, s.err
	}
	return &model.AvailabilityWindow{ID: 1, Date: date, Room: room, StartTime: startTime, IsAvailable: available}, nil
}

func (s *stubAvailability) ListWindows(_ context.Context, actor model.Actor, _ time.Month, _ int, _ *int) ([]*model.AvailabilityWindow, error) {
	s.listedBy = append(s.listedBy, actor)
	if err := checkActive(actor); err != nil {
		return nil, err
	}
	return []*model.AvailabilityWindow{}, s.err
}

type stubOccupancy struct {
	now   time.Time
	actor model.Actor
}

func (s *stubOccupancy) Current(_ context.Context, actor model.Actor, now time.Time) ([]model.RoomOccupancy, error) {
	s.now = now
	s.actor = actor
	if err := checkActive(actor); err != nil {
		return nil, err
	}
	return []model.RoomOccupancy{{Room: 1}}, nil
}
