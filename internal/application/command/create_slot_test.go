package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivelog-hub/drivelog/internal/domain/curriculum"
	"github.com/drivelog-hub/drivelog/internal/domain/shared"
	"github.com/drivelog-hub/drivelog/internal/domain/user"
)

func TestCreateSlot(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2017, 12, 1, 16, 0, 0, 0, time.UTC)

	seed := func(t *testing.T, instructor bool) (*CreateSlotHandler, *fakeSlotRepo) {
		t.Helper()
		users := newFakeUserRepo()
		users.users["i1"] = &user.User{
			ID:         "i1",
			Username:   "bent",
			FirstName:  "Bent",
			LastName:   "Larsen",
			Instructor: instructor,
		}
		slots := &fakeSlotRepo{}
		handler := NewCreateSlotHandler(users, slots, nil)
		handler.newID = func() string { return "slot-new" }
		return handler, slots
	}

	t.Run("instructor publishes a slot", func(t *testing.T) {
		handler, slots := seed(t, true)

		slot, err := handler.Handle(ctx, CreateSlotCommand{
			InstructorID:   "i1",
			Type:           curriculum.Theoretical,
			StartTime:      start,
			AvailableUnits: 4,
		})
		require.NoError(t, err)
		assert.Equal(t, "slot-new", slot.ID)
		assert.Equal(t, "Bent Larsen", slot.InstructorName)
		assert.Contains(t, slots.slots, "slot-new")
	})

	t.Run("students cannot publish slots", func(t *testing.T) {
		handler, slots := seed(t, false)

		_, err := handler.Handle(ctx, CreateSlotCommand{
			InstructorID:   "i1",
			Type:           curriculum.Practical,
			StartTime:      start,
			AvailableUnits: 4,
		})
		assert.ErrorIs(t, err, user.ErrNotInstructor)
		assert.Empty(t, slots.slots)
	})

	t.Run("unknown instructor", func(t *testing.T) {
		handler, _ := seed(t, true)
		_, err := handler.Handle(ctx, CreateSlotCommand{
			InstructorID:   "missing",
			Type:           curriculum.Theoretical,
			StartTime:      start,
			AvailableUnits: 4,
		})
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("invalid fields rejected", func(t *testing.T) {
		handler, _ := seed(t, true)

		_, err := handler.Handle(ctx, CreateSlotCommand{
			Type: curriculum.Theoretical, StartTime: start, AvailableUnits: 4,
		})
		assert.ErrorIs(t, err, shared.ErrInvalidID)

		_, err = handler.Handle(ctx, CreateSlotCommand{
			InstructorID: "i1", Type: "seminar", StartTime: start, AvailableUnits: 4,
		})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		_, err = handler.Handle(ctx, CreateSlotCommand{
			InstructorID: "i1", Type: curriculum.Theoretical, StartTime: start,
		})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}
