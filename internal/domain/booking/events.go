package booking

import (
	"github.com/drivelog-hub/drivelog/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ДОМЕННЫЕ СОБЫТИЯ
// ══════════════════════════════════════════════════════════════════════════════

// CreatedEvent публикуется после фиксации брони.
type CreatedEvent struct {
	shared.BaseEvent
	BookingID  string `json:"booking_id"`
	UserID     string `json:"user_id"`
	SlotID     string `json:"slot_id"`
	TemplateID int    `json:"template_id"`
}

// Payload implements shared.Event.
func (e CreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"booking_id":  e.BookingID,
		"user_id":     e.UserID,
		"slot_id":     e.SlotID,
		"template_id": e.TemplateID,
	}
}

// NewCreatedEvent создаёт событие о новой брони.
func NewCreatedEvent(b *Booking) CreatedEvent {
	return CreatedEvent{
		BaseEvent:  shared.NewBaseEvent(shared.EventBookingCreated, b.ID),
		BookingID:  b.ID,
		UserID:     b.UserID,
		SlotID:     b.SlotID,
		TemplateID: b.TemplateID,
	}
}

// DeniedEvent публикуется при отказе в бронировании.
// Используется для аналитики: какие отказы студенты видят чаще всего.
type DeniedEvent struct {
	shared.BaseEvent
	UserID string `json:"user_id"`
	SlotID string `json:"slot_id"`
	Reason string `json:"reason"`
}

// Payload implements shared.Event.
func (e DeniedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id": e.UserID,
		"slot_id": e.SlotID,
		"reason":  e.Reason,
	}
}

// NewDeniedEvent создаёт событие об отказе.
func NewDeniedEvent(userID, slotID, reason string) DeniedEvent {
	return DeniedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventBookingDenied, slotID),
		UserID:    userID,
		SlotID:    slotID,
		Reason:    reason,
	}
}

// CanceledEvent публикуется после снятия брони.
type CanceledEvent struct {
	shared.BaseEvent
	BookingID string `json:"booking_id"`
	UserID    string `json:"user_id"`
	SlotID    string `json:"slot_id"`
}

// Payload implements shared.Event.
func (e CanceledEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"booking_id": e.BookingID,
		"user_id":    e.UserID,
		"slot_id":    e.SlotID,
	}
}

// NewCanceledEvent создаёт событие о снятой брони.
func NewCanceledEvent(b *Booking) CanceledEvent {
	return CanceledEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventBookingCanceled, b.ID),
		BookingID: b.ID,
		UserID:    b.UserID,
		SlotID:    b.SlotID,
	}
}
