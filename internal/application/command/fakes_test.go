package command

import (
	"context"
	"sync"
	"time"

	"github.com/drivelog-hub/drivelog/internal/domain/booking"
	"github.com/drivelog-hub/drivelog/internal/domain/shared"
	"github.com/drivelog-hub/drivelog/internal/domain/user"
)

// In-memory fakes shared by the command tests.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*user.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username || existing.Email == u.Email || existing.CPR == u.CPR {
			return user.ErrUserAlreadyExists
		}
	}
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *fakeUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ExistsByCPR(_ context.Context, cpr string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.CPR == cpr {
			return true, nil
		}
	}
	return false, nil
}

type fakeSlotRepo struct {
	slots map[string]booking.AppointmentSlot
}

func (r *fakeSlotRepo) GetByID(_ context.Context, id string) (booking.AppointmentSlot, error) {
	slot, ok := r.slots[id]
	if !ok {
		return booking.AppointmentSlot{}, booking.ErrSlotNotFound
	}
	return slot, nil
}

func (r *fakeSlotRepo) CreateSlot(_ context.Context, slot booking.AppointmentSlot) error {
	if r.slots == nil {
		r.slots = make(map[string]booking.AppointmentSlot)
	}
	r.slots[slot.ID] = slot
	return nil
}

func (r *fakeSlotRepo) ListUpcoming(_ context.Context, from time.Time) ([]booking.AppointmentSlot, error) {
	var out []booking.AppointmentSlot
	for _, slot := range r.slots {
		if !slot.StartTime.Before(from) {
			out = append(out, slot)
		}
	}
	return out, nil
}

type fakeLessonRepo struct {
	byUser map[string][]booking.Lesson
}

func (r *fakeLessonRepo) ListByUser(_ context.Context, userID string) ([]booking.Lesson, error) {
	return r.byUser[userID], nil
}

func (r *fakeLessonRepo) ListByAppointment(_ context.Context, slotID string) ([]booking.Lesson, error) {
	var out []booking.Lesson
	for _, lessons := range r.byUser {
		for _, lesson := range lessons {
			if lesson.AppointmentID == slotID {
				out = append(out, lesson)
			}
		}
	}
	return out, nil
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings []booking.Booking
}

func (r *fakeBookingRepo) Create(_ context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.bookings {
		if existing.UserID == b.UserID && existing.SlotID == b.SlotID {
			return booking.ErrAlreadyBooked
		}
	}
	r.bookings = append(r.bookings, *b)
	return nil
}

func (r *fakeBookingRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.bookings {
		if existing.ID == id {
			r.bookings = append(r.bookings[:i], r.bookings[i+1:]...)
			return nil
		}
	}
	return booking.ErrBookingNotFound
}

func (r *fakeBookingRepo) CountBySlot(_ context.Context, slotID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, existing := range r.bookings {
		if existing.SlotID == slotID {
			count++
		}
	}
	return count, nil
}

func (r *fakeBookingRepo) ListByUser(_ context.Context, userID string) ([]booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []booking.Booking
	for _, existing := range r.bookings {
		if existing.UserID == userID {
			out = append(out, existing)
		}
	}
	return out, nil
}

type fakeCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: make(map[string]int)}
}

func (c *fakeCounter) Get(_ context.Context, slotID string) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	count, ok := c.counts[slotID]
	return count, ok, nil
}

func (c *fakeCounter) Set(_ context.Context, slotID string, count int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[slotID] = count
	return nil
}

func (c *fakeCounter) Increment(_ context.Context, slotID string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[slotID]++
	return c.counts[slotID], nil
}

func (c *fakeCounter) Forget(_ context.Context, slotID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.counts, slotID)
	return nil
}

type fakeBus struct {
	mu     sync.Mutex
	events []shared.Event
}

func (b *fakeBus) Publish(event shared.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

func (b *fakeBus) published() []shared.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]shared.Event, len(b.events))
	copy(out, b.events)
	return out
}
