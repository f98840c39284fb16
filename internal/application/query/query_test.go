package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivelog-hub/drivelog/internal/domain/booking"
	"github.com/drivelog-hub/drivelog/internal/domain/curriculum"
	"github.com/drivelog-hub/drivelog/internal/domain/user"
)

type stubSlotRepo struct {
	slots map[string]booking.AppointmentSlot
}

func (r *stubSlotRepo) GetByID(_ context.Context, id string) (booking.AppointmentSlot, error) {
	slot, ok := r.slots[id]
	if !ok {
		return booking.AppointmentSlot{}, booking.ErrSlotNotFound
	}
	return slot, nil
}

func (r *stubSlotRepo) ListUpcoming(_ context.Context, _ time.Time) ([]booking.AppointmentSlot, error) {
	var out []booking.AppointmentSlot
	for _, slot := range r.slots {
		out = append(out, slot)
	}
	return out, nil
}

type stubLessonRepo struct {
	byUser map[string][]booking.Lesson
}

func (r *stubLessonRepo) ListByUser(_ context.Context, userID string) ([]booking.Lesson, error) {
	return r.byUser[userID], nil
}

func (r *stubLessonRepo) ListByAppointment(_ context.Context, _ string) ([]booking.Lesson, error) {
	return nil, nil
}

type stubCounter struct {
	counts map[string]int
}

func (c *stubCounter) Get(_ context.Context, slotID string) (int, bool, error) {
	count, ok := c.counts[slotID]
	return count, ok, nil
}

func (c *stubCounter) Set(_ context.Context, slotID string, count int) error {
	c.counts[slotID] = count
	return nil
}

func (c *stubCounter) Increment(_ context.Context, slotID string) (int, error) {
	c.counts[slotID]++
	return c.counts[slotID], nil
}

func (c *stubCounter) Forget(_ context.Context, slotID string) error {
	delete(c.counts, slotID)
	return nil
}

type stubUserRepo struct {
	users map[string]*user.User
}

func (r *stubUserRepo) Create(_ context.Context, _ *user.User) error { return nil }

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (r *stubUserRepo) GetByUsername(_ context.Context, _ string) (*user.User, error) {
	return nil, user.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, _ *user.User) error { return nil }

func (r *stubUserRepo) ExistsByUsername(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (r *stubUserRepo) ExistsByEmail(_ context.Context, _ string) (bool, error) { return false, nil }

func (r *stubUserRepo) ExistsByCPR(_ context.Context, _ string) (bool, error) { return false, nil }

func queryCatalog(t *testing.T) *curriculum.Catalog {
	t.Helper()
	c, err := curriculum.NewCatalog([]curriculum.LessonTemplate{
		{ID: 1, Type: curriculum.Theoretical, Title: "Intro", Description: "Traffic basics", RequiredProgressUnits: 4},
		{ID: 2, Type: curriculum.Theoretical, Title: "Signs", Description: "Road signs", RequiredProgressUnits: 4},
		{ID: 3, Type: curriculum.Practical, Title: "First drive", Description: "City driving", RequiredProgressUnits: 2},
	})
	require.NoError(t, err)
	return c
}

func TestCheckEligibility(t *testing.T) {
	ctx := context.Background()
	engine := booking.NewEngine(queryCatalog(t))

	slots := &stubSlotRepo{slots: map[string]booking.AppointmentSlot{
		"slot-1": {
			ID:             "slot-1",
			Type:           curriculum.Theoretical,
			StartTime:      time.Date(2017, 12, 1, 16, 0, 0, 0, time.UTC),
			AvailableUnits: 1,
		},
	}}
	lessons := &stubLessonRepo{byUser: map[string][]booking.Lesson{}}

	t.Run("allowed with status line", func(t *testing.T) {
		handler := NewCheckEligibilityHandler(engine, slots, lessons, nil, nil)
		view, err := handler.Handle(ctx, CheckEligibilityQuery{UserID: "u1", SlotID: "slot-1"})
		require.NoError(t, err)
		assert.True(t, view.Decision.Allowed)
		assert.Equal(t, "Booking status 0/24", view.StatusLine)
	})

	t.Run("cached counter overrides snapshot", func(t *testing.T) {
		counter := &stubCounter{counts: map[string]int{"slot-1": 24}}
		handler := NewCheckEligibilityHandler(engine, slots, lessons, counter, nil)
		view, err := handler.Handle(ctx, CheckEligibilityQuery{UserID: "u1", SlotID: "slot-1"})
		require.NoError(t, err)
		assert.False(t, view.Decision.Allowed)
		assert.Equal(t, "this date is already fully booked", view.Decision.Reason)
		assert.Equal(t, "Booking status 24/24", view.StatusLine)
	})

	t.Run("unknown slot", func(t *testing.T) {
		handler := NewCheckEligibilityHandler(engine, slots, lessons, nil, nil)
		_, err := handler.Handle(ctx, CheckEligibilityQuery{UserID: "u1", SlotID: "missing"})
		assert.ErrorIs(t, err, booking.ErrSlotNotFound)
	})
}

func TestGetDriveLog(t *testing.T) {
	ctx := context.Background()
	engine := booking.NewEngine(queryCatalog(t))

	profile := user.Profile{
		Username:   "jens.hansen",
		FirstName:  "Jens",
		LastName:   "Hansen",
		Phone:      "12345678",
		Email:      "jens@example.com",
		CPR:        "0704850018",
		Address:    "Vestergade 12",
		PostalCode: "8000",
		City:       "Aarhus",
	}
	u, err := user.NewUser("u1", profile, "$2a$10$hash", false)
	require.NoError(t, err)

	users := &stubUserRepo{users: map[string]*user.User{"u1": u}}
	completedAt := time.Date(2017, 11, 20, 14, 0, 0, 0, time.UTC)
	lessons := &stubLessonRepo{byUser: map[string][]booking.Lesson{
		"u1": {
			{UserID: "u1", TemplateID: 1, ProgressUnits: 4, Completed: true, InstructorName: "Lars", EndDate: completedAt},
			{UserID: "u1", TemplateID: 2, ProgressUnits: 1, Completed: false, InstructorName: "Lars"},
		},
	}}

	handler := NewGetDriveLogHandler(engine, users, lessons, nil)
	view, err := handler.Handle(ctx, GetDriveLogQuery{UserID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, "Jens Hansen", view.FullName)
	assert.Equal(t, 1, view.CompletedCount)
	require.Len(t, view.Entries, 3)

	first := view.Entries[0]
	assert.True(t, first.Completed)
	assert.Equal(t, completedAt, first.CompletedAt)
	assert.Equal(t, "Lars", first.InstructorName)

	second := view.Entries[1]
	assert.False(t, second.Completed)
	assert.Equal(t, 1, second.ProgressUnits)
	assert.Equal(t, 4, second.RequiredUnits)

	third := view.Entries[2]
	assert.False(t, third.Attempted)
	assert.Zero(t, third.ProgressUnits)

	_, err = handler.Handle(ctx, GetDriveLogQuery{UserID: "missing"})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
