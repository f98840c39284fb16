package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/drivelog-hub/drivelog/internal/domain/booking"
	"github.com/drivelog-hub/drivelog/internal/domain/shared"
	"github.com/drivelog-hub/drivelog/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// BOOK LESSON COMMAND
// The booking flow wraps the pure eligibility engine with persistence:
// it re-fetches a fresh booking-count snapshot immediately before committing,
// so the decision is made on the least stale data available. The check and
// the commit are still two steps; the hard ceiling lives in the database.
// ══════════════════════════════════════════════════════════════════════════════

// BookLessonCommand contains the booking request.
type BookLessonCommand struct {
	// UserID is the student requesting the booking.
	UserID string

	// SlotID is the target appointment slot.
	SlotID string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c BookLessonCommand) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("book_lesson: user_id is required: %w", shared.ErrInvalidID)
	}
	if c.SlotID == "" {
		return fmt.Errorf("book_lesson: slot_id is required: %w", shared.ErrInvalidID)
	}
	return nil
}

// BookLessonResult contains the outcome of a booking attempt.
// A denial is a first-class outcome, not an error.
type BookLessonResult struct {
	// Decision is the eligibility decision that was enforced.
	Decision booking.Decision

	// Booking is the committed booking (nil when denied).
	Booking *booking.Booking
}

// BookLessonHandler handles BookLessonCommand.
type BookLessonHandler struct {
	engine   *booking.Engine
	slots    booking.SlotRepository
	lessons  booking.LessonRepository
	bookings booking.BookingRepository
	counters booking.CounterCache // optional
	events   shared.EventPublisher
	logger   *logger.Logger

	// newID generates booking IDs; injectable for tests.
	newID func() string

	// now is injectable for tests.
	now func() time.Time
}

// NewBookLessonHandler creates a new BookLessonHandler.
func NewBookLessonHandler(
	engine *booking.Engine,
	slots booking.SlotRepository,
	lessons booking.LessonRepository,
	bookings booking.BookingRepository,
	counters booking.CounterCache,
	events shared.EventPublisher,
	log *logger.Logger,
) *BookLessonHandler {
	if log == nil {
		log = logger.Default()
	}
	return &BookLessonHandler{
		engine:   engine,
		slots:    slots,
		lessons:  lessons,
		bookings: bookings,
		counters: counters,
		events:   events,
		logger:   log.With(logger.Component("book_lesson")),
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// Handle runs the eligibility check on a fresh snapshot and commits the
// booking when allowed.
func (h *BookLessonHandler) Handle(ctx context.Context, cmd BookLessonCommand) (*BookLessonResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	// Fresh snapshot: slot comes back with the current booking count.
	slot, err := h.slots.GetByID(ctx, cmd.SlotID)
	if err != nil {
		return nil, err
	}

	history, err := h.lessons.ListByUser(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	decision, err := h.engine.CanBook(history, slot)
	if err != nil {
		return nil, shared.WrapDomainError("booking", "CanBook", shared.ErrInvalidState, "eligibility check failed", err)
	}

	if !decision.Allowed {
		h.logger.Info("booking denied",
			logger.UserID(cmd.UserID),
			logger.SlotID(cmd.SlotID),
			logger.String("reason", decision.Reason),
		)
		h.publish(booking.NewDeniedEvent(cmd.UserID, cmd.SlotID, decision.Reason))
		return &BookLessonResult{Decision: decision}, nil
	}

	committed := &booking.Booking{
		ID:         h.newID(),
		UserID:     cmd.UserID,
		SlotID:     cmd.SlotID,
		TemplateID: decision.TemplateID,
		CreatedAt:  h.now().UTC(),
	}

	if err := h.bookings.Create(ctx, committed); err != nil {
		return nil, err
	}

	h.refreshCounter(ctx, cmd.SlotID)

	h.logger.Info("booking created",
		logger.UserID(cmd.UserID),
		logger.SlotID(cmd.SlotID),
		logger.Int("template_id", committed.TemplateID),
	)
	h.publish(booking.NewCreatedEvent(committed))

	return &BookLessonResult{Decision: decision, Booking: committed}, nil
}

// refreshCounter bumps the cached booking counter. Cache failures are logged
// and ignored: the repository count is the source of truth.
func (h *BookLessonHandler) refreshCounter(ctx context.Context, slotID string) {
	if h.counters == nil {
		return
	}
	if _, err := h.counters.Increment(ctx, slotID); err != nil {
		h.logger.Warn("failed to bump booking counter", logger.SlotID(slotID), logger.Err(err))
	}
}

func (h *BookLessonHandler) publish(event shared.Event) {
	if h.events == nil {
		return
	}
	if err := h.events.Publish(event); err != nil {
		h.logger.Warn("failed to publish event", logger.String("event", string(event.EventType())), logger.Err(err))
	}
}
