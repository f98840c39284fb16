package user

import (
	"github.com/drivelog-hub/drivelog/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ДОМЕННЫЕ СОБЫТИЯ
// ══════════════════════════════════════════════════════════════════════════════

// RegisteredEvent публикуется после успешной регистрации.
type RegisteredEvent struct {
	shared.BaseEvent
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Payload implements shared.Event.
func (e RegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":  e.UserID,
		"username": e.Username,
		"email":    e.Email,
	}
}

// WithCorrelation проставляет correlation id для трассировки.
func (e RegisteredEvent) WithCorrelation(id string) RegisteredEvent {
	e.BaseEvent = e.BaseEvent.WithCorrelationID(id)
	return e
}

// NewRegisteredEvent создаёт событие о регистрации.
func NewRegisteredEvent(u *User) RegisteredEvent {
	return RegisteredEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventUserRegistered, u.ID),
		UserID:    u.ID,
		Username:  u.Username,
		Email:     u.Email,
	}
}

// ProfileUpdatedEvent публикуется после изменения профиля.
type ProfileUpdatedEvent struct {
	shared.BaseEvent
	UserID          string `json:"user_id"`
	PasswordChanged bool   `json:"password_changed"`
}

// Payload implements shared.Event.
func (e ProfileUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":          e.UserID,
		"password_changed": e.PasswordChanged,
	}
}

// NewProfileUpdatedEvent создаёт событие об изменении профиля.
func NewProfileUpdatedEvent(userID string, passwordChanged bool) ProfileUpdatedEvent {
	return ProfileUpdatedEvent{
		BaseEvent:       shared.NewBaseEvent(shared.EventUserProfileUpdated, userID),
		UserID:          userID,
		PasswordChanged: passwordChanged,
	}
}
