package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/drivelog-hub/drivelog/internal/domain/booking"
	"github.com/drivelog-hub/drivelog/internal/domain/curriculum"
	"github.com/drivelog-hub/drivelog/internal/domain/shared"
	"github.com/drivelog-hub/drivelog/internal/domain/user"
	"github.com/drivelog-hub/drivelog/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE SLOT COMMAND
// Инструктор публикует слот в календаре. Имя инструктора в слоте берётся
// из его профиля, а не из формы: слот всегда подписан реальным создателем.
// ══════════════════════════════════════════════════════════════════════════════

// CreateSlotCommand contains the new appointment slot.
type CreateSlotCommand struct {
	// InstructorID is the instructor publishing the slot.
	InstructorID string

	// Type is the lesson type of the slot.
	Type curriculum.LessonType

	// StartTime is the slot start.
	StartTime time.Time

	// AvailableUnits is the slot length in lesson units.
	AvailableUnits int

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c CreateSlotCommand) Validate() error {
	if c.InstructorID == "" {
		return fmt.Errorf("create_slot: instructor_id is required: %w", shared.ErrInvalidID)
	}
	if !c.Type.IsValid() {
		return fmt.Errorf("create_slot: unknown lesson type %q: %w", c.Type, shared.ErrInvalidInput)
	}
	if c.AvailableUnits <= 0 {
		return fmt.Errorf("create_slot: available units must be positive: %w", shared.ErrInvalidInput)
	}
	if c.StartTime.IsZero() {
		return fmt.Errorf("create_slot: start time is required: %w", shared.ErrInvalidInput)
	}
	return nil
}

// CreateSlotHandler handles CreateSlotCommand.
type CreateSlotHandler struct {
	users  user.Repository
	slots  booking.SlotWriter
	logger *logger.Logger

	// newID generates slot IDs; injectable for tests.
	newID func() string
}

// NewCreateSlotHandler creates a new CreateSlotHandler.
func NewCreateSlotHandler(users user.Repository, slots booking.SlotWriter, log *logger.Logger) *CreateSlotHandler {
	if log == nil {
		log = logger.Default()
	}
	return &CreateSlotHandler{
		users:  users,
		slots:  slots,
		logger: log.With(logger.Component("create_slot")),
		newID:  uuid.NewString,
	}
}

// Handle verifies the caller is an instructor and publishes the slot.
func (h *CreateSlotHandler) Handle(ctx context.Context, cmd CreateSlotCommand) (*booking.AppointmentSlot, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	instructor, err := h.users.GetByID(ctx, cmd.InstructorID)
	if err != nil {
		return nil, err
	}
	if !instructor.Instructor {
		return nil, fmt.Errorf("create_slot: user %s: %w", cmd.InstructorID, user.ErrNotInstructor)
	}

	slot := booking.AppointmentSlot{
		ID:             h.newID(),
		Type:           cmd.Type,
		StartTime:      cmd.StartTime.UTC(),
		AvailableUnits: cmd.AvailableUnits,
		InstructorName: instructor.FullName(),
	}

	if err := h.slots.CreateSlot(ctx, slot); err != nil {
		return nil, err
	}

	h.logger.Info("slot created",
		logger.SlotID(slot.ID),
		logger.LessonType(slot.Type.String()),
		logger.Time("start_time", slot.StartTime),
	)

	return &slot, nil
}
