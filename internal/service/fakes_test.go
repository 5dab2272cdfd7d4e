package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/lab_scheduler/internal/booking"
	"github.com/Freeeeeet/lab_scheduler/internal/model"
	"github.com/Freeeeeet/lab_scheduler/internal/repository"
)

// fakeReservations хранит брони в памяти с тем же уникальным ключом, что и у Postgres
type fakeReservations struct {
	mu     sync.Mutex
	items  map[int64]*model.Reservation
	nextID int64
	calls  map[string]int

	// failures[op]: сколько следующих вызовов op вернут ErrStoreUnavailable
	failures map[string]int
	// lostUpdates: сколько следующих UpdateStatus "проиграют" параллельному изменению
	lostUpdates int
	// hiddenTaken: Create нарушит уникальный индекс, будто конкурент успел раньше
	hiddenTaken bool
	// lostReplies: сколько следующих Create запишут бронь, но вернут ErrStoreUnavailable
	lostReplies int
}

func newFakeReservations() *fakeReservations {
	return &fakeReservations{
		items:    make(map[int64]*model.Reservation),
		calls:    make(map[string]int),
		failures: make(map[string]int),
	}
}

func (f *fakeReservations) hit(op string) error {
	f.calls[op]++
	if f.failures[op] > 0 {
		f.failures[op]--
		return booking.ErrStoreUnavailable
	}
	return nil
}

func (f *fakeReservations) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *fakeReservations) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeReservations) put(r *model.Reservation) *model.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	cp := *r
	cp.ID = f.nextID
	f.items[cp.ID] = &cp
	return &cp
}

func (f *fakeReservations) all() []*model.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Reservation, 0, len(f.items))
	for _, r := range f.items {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeReservations) Create(_ context.Context, r *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("create"); err != nil {
		return err
	}
	if f.hiddenTaken {
		return booking.ErrSlotTaken
	}
	for _, existing := range f.items {
		if existing.IsActive() && existing.Room == r.Room && existing.Slot == r.Slot && existing.DateKey() == r.DateKey() {
			return booking.ErrSlotTaken
		}
	}
	f.nextID++
	r.ID = f.nextID
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	cp := *r
	f.items[r.ID] = &cp
	if f.lostReplies > 0 {
		f.lostReplies--
		return booking.ErrStoreUnavailable
	}
	return nil
}

func (f *fakeReservations) GetByID(_ context.Context, id int64) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("get"); err != nil {
		return nil, err
	}
	r, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReservations) UpdateStatus(_ context.Context, id int64, from, to model.ReservationStatus) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("update"); err != nil {
		return nil, err
	}
	if f.lostUpdates > 0 {
		f.lostUpdates--
		return nil, nil
	}
	r, ok := f.items[id]
	if !ok || r.Status != from {
		return nil, nil
	}
	r.Status = to
	r.UpdatedAt = time.Now()
	cp := *r
	return &cp, nil
}

func (f *fakeReservations) Delete(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("delete"); err != nil {
		return false, err
	}
	if _, ok := f.items[id]; !ok {
		return false, nil
	}
	delete(f.items, id)
	return true, nil
}

func (f *fakeReservations) List(_ context.Context, filter model.ReservationFilter) ([]*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("list"); err != nil {
		return nil, err
	}

	var out []*model.Reservation
	for _, r := range f.items {
		if !matches(r, filter) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}

	if filter.OrderBy == model.OrderByCreatedDesc {
		sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			out = nil
		} else {
			out = out[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func matches(r *model.Reservation, f model.ReservationFilter) bool {
	date := booking.DateOf(r.Date)
	switch {
	case f.Date != nil && !date.Equal(booking.DateOf(*f.Date)):
		return false
	case f.From != nil && date.Before(booking.DateOf(*f.From)):
		return false
	case f.To != nil && !date.Before(booking.DateOf(*f.To)):
		return false
	case f.Room != nil && r.Room != *f.Room:
		return false
	case f.Slot != nil && r.Slot != *f.Slot:
		return false
	case f.Status != nil && r.Status != *f.Status:
		return false
	case f.UserID != nil && r.UserID != *f.UserID:
		return false
	case f.OnlyActive && !r.IsActive():
		return false
	}
	return true
}

// fakeUsers хранит учётные записи в памяти
type fakeUsers struct {
	mu     sync.Mutex
	users  map[int64]*model.User
	nextID int64
	calls  int
}

func newFakeUsers(users ...*model.User) *fakeUsers {
	f := &fakeUsers{users: make(map[int64]*model.User)}
	for _, u := range users {
		f.users[u.ID] = u
		if u.ID > f.nextID {
			f.nextID = u.ID
		}
	}
	return f
}

func (f *fakeUsers) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeUsers) GetAccountByID(ctx context.Context, id int64) (*model.User, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeUsers) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, u := range f.users {
		if u.StudentID == user.StudentID {
			return repository.ErrDuplicate
		}
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByStudentID(_ context.Context, studentID string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, u := range f.users {
		if u.StudentID == studentID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) GetByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, u := range f.users {
		if u.TelegramID != nil && *u.TelegramID == telegramID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) SetActive(_ context.Context, id int64, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	u, ok := f.users[id]
	if !ok {
		return ErrAccountNotFound
	}
	u.IsActive = active
	return nil
}

func (f *fakeUsers) LinkTelegram(_ context.Context, id, telegramID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, u := range f.users {
		if u.TelegramID != nil && *u.TelegramID == telegramID {
			u.TelegramID = nil
		}
	}
	u, ok := f.users[id]
	if !ok {
		return ErrAccountNotFound
	}
	u.TelegramID = &telegramID
	return nil
}

func (f *fakeUsers) ListAll(_ context.Context) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	out := make([]*model.User, 0, len(f.users))
	for _, u := range f.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// fakeAvailability хранит окна доступности в памяти
type fakeAvailability struct {
	mu      sync.Mutex
	windows []*model.AvailabilityWindow
	calls   int
}

func (f *fakeAvailability) Upsert(_ context.Context, w *model.AvailabilityWindow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, existing := range f.windows {
		if existing.Date.Equal(w.Date) && existing.Room == w.Room && existing.StartTime == w.StartTime {
			existing.EndTime = w.EndTime
			existing.IsAvailable = w.IsAvailable
			w.ID = existing.ID
			return nil
		}
	}
	w.ID = int64(len(f.windows) + 1)
	cp := *w
	f.windows = append(f.windows, &cp)
	return nil
}

func (f *fakeAvailability) List(_ context.Context, filter model.AvailabilityFilter) ([]*model.AvailabilityWindow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	var out []*model.AvailabilityWindow
	for _, w := range f.windows {
		switch {
		case filter.From != nil && w.Date.Before(*filter.From):
			continue
		case filter.To != nil && !w.Date.Before(*filter.To):
			continue
		case filter.Room != nil && w.Room != *filter.Room:
			continue
		case filter.OnlyAvailable && !w.IsAvailable:
			continue
		}
		cp := *w
		out = append(out, &cp)
	}
	return out, nil
}

type countingInvalidator struct {
	mu    sync.Mutex
	count int
}

func (c *countingInvalidator) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
}

var (
	admin    = &model.User{ID: 1, StudentID: "admin", Role: model.RoleAdmin, IsActive: true}
	alice    = &model.User{ID: 7, StudentID: "alice", Role: model.RoleUser, IsActive: true}
	bob      = &model.User{ID: 8, StudentID: "bob", Role: model.RoleUser, IsActive: true}
	inactive = &model.User{ID: 9, StudentID: "carol", Role: model.RoleUser, IsActive: false}
)

// fixedNow: 2025-03-09 10:00 UTC, воскресенье
func fixedNow() time.Time {
	return time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC)
}

func testOptions() Options {
	return Options{
		Rooms:        []int{1, 2, 3},
		Location:     time.UTC,
		StoreTimeout: time.Second,
		StoreRetries: 2,
		RetryBackoff: time.Millisecond,
		OccupancyTTL: time.Minute,
		Now:          fixedNow,
	}
}

func copyUsers() []*model.User {
	out := make([]*model.User, 0, 4)
	for _, u := range []*model.User{admin, alice, bob, inactive} {
		cp := *u
		out = append(out, &cp)
	}
	return out
}

type reservationFixture struct {
	svc          *ReservationService
	reservations *fakeReservations
	users        *fakeUsers
	invalidator  *countingInvalidator
}

func newReservationFixture(opts Options, availability AvailabilityChecker) *reservationFixture {
	f := &reservationFixture{
		reservations: newFakeReservations(),
		users:        newFakeUsers(copyUsers()...),
		invalidator:  &countingInvalidator{},
	}
	f.svc = NewReservationService(f.reservations, f.users, availability, f.invalidator, opts, zap.NewNop())
	return f
}

func actorOf(u *model.User) model.Actor {
	return model.ActorOf(u)
}
