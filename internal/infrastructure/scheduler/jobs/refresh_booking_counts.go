// Package jobs contains the scheduled background jobs of the
// driving-school hub.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/drivelog-hub/drivelog/internal/domain/booking"
	"github.com/drivelog-hub/drivelog/internal/domain/shared"
	"github.com/drivelog-hub/drivelog/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REFRESH BOOKING COUNTS JOB
// Сверяет кешированные счётчики занятости слотов с авторитетным
// количеством броней в PostgreSQL. Быстрые инкременты при бронировании
// могут разойтись с базой (потерянное соединение, конкурирующие офисы),
// а от счётчика зависит проверка "слот заполнен" - он обязан сходиться.
// ══════════════════════════════════════════════════════════════════════════════

// SlotCounter exposes the bulk count query the job needs.
type SlotCounter interface {
	CountsForSlots(ctx context.Context) (map[string]int, error)
}

// RefreshBookingCountsJob reconciles cached booking counters.
type RefreshBookingCountsJob struct {
	bookings SlotCounter
	slots    booking.SlotRepository
	counters booking.CounterCache
	events   shared.EventPublisher
	logger   *logger.Logger
	timeout  time.Duration
}

// NewRefreshBookingCountsJob creates the job.
func NewRefreshBookingCountsJob(
	bookings SlotCounter,
	slots booking.SlotRepository,
	counters booking.CounterCache,
	events shared.EventPublisher,
	log *logger.Logger,
) *RefreshBookingCountsJob {
	if log == nil {
		log = logger.Default()
	}
	return &RefreshBookingCountsJob{
		bookings: bookings,
		slots:    slots,
		counters: counters,
		events:   events,
		logger:   log.With(logger.Component("refresh_booking_counts")),
		timeout:  time.Minute,
	}
}

// Name implements scheduler.Job.
func (j *RefreshBookingCountsJob) Name() string {
	return "refresh_booking_counts"
}

// Description implements scheduler.Job.
func (j *RefreshBookingCountsJob) Description() string {
	return "Reconciles cached per-slot booking counters with the database"
}

// Run implements scheduler.Job.
func (j *RefreshBookingCountsJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	counts, err := j.bookings.CountsForSlots(ctx)
	if err != nil {
		return fmt.Errorf("load booking counts: %w", err)
	}

	refreshed := 0
	for slotID, count := range counts {
		if err := j.counters.Set(ctx, slotID, count); err != nil {
			j.logger.Warn("failed to refresh counter",
				logger.SlotID(slotID),
				logger.Err(err),
			)
			continue
		}
		refreshed++
	}

	// Слоты без броней: счётчик либо отсутствует, либо должен быть
	// сброшен к нулю, иначе останется завышенным после отмен.
	if j.slots != nil {
		if err := j.resetEmptySlots(ctx, counts); err != nil {
			j.logger.Warn("failed to reset empty slot counters", logger.Err(err))
		}
	}

	j.logger.Info("booking counters refreshed", logger.Int("slots", refreshed))

	if j.events != nil {
		event := shared.NewBaseEvent(shared.EventBookingCountsRefreshed, j.Name())
		if err := j.events.Publish(refreshCompletedEvent{BaseEvent: event, Slots: refreshed}); err != nil {
			j.logger.Warn("failed to publish refresh event", logger.Err(err))
		}
	}

	return nil
}

func (j *RefreshBookingCountsJob) resetEmptySlots(ctx context.Context, counts map[string]int) error {
	upcoming, err := j.slots.ListUpcoming(ctx, time.Now())
	if err != nil {
		return err
	}

	for _, slot := range upcoming {
		if _, ok := counts[slot.ID]; ok {
			continue
		}
		if err := j.counters.Set(ctx, slot.ID, 0); err != nil {
			return err
		}
	}
	return nil
}

// refreshCompletedEvent notifies subscribers that counters were synced.
type refreshCompletedEvent struct {
	shared.BaseEvent
	Slots int `json:"slots"`
}

// Payload implements shared.Event.
func (e refreshCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{"slots": e.Slots}
}
