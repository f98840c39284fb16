package command

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/drivelog-hub/drivelog/internal/domain/shared"
	"github.com/drivelog-hub/drivelog/internal/domain/user"
	"github.com/drivelog-hub/drivelog/internal/domain/validation"
	"github.com/drivelog-hub/drivelog/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE PROFILE COMMAND
// Profile edits re-run every field validator, exactly like registration.
// The user record is an explicit argument of the flow; nothing is read from
// ambient session state.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateProfileCommand contains the edited profile fields.
type UpdateProfileCommand struct {
	// UserID identifies the user being edited.
	UserID string

	// Profile holds the edited fields as raw form strings.
	Profile user.Profile

	// NewPassword optionally replaces the password (empty = keep current).
	NewPassword string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c UpdateProfileCommand) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("update_profile: user_id is required: %w", shared.ErrInvalidID)
	}
	if err := c.Profile.Validate(); err != nil {
		return err
	}
	if c.NewPassword != "" && !validation.Password(c.NewPassword) {
		return user.ErrInvalidPassword
	}
	return nil
}

// UpdateProfileResult contains the result of a profile update.
type UpdateProfileResult struct {
	// PasswordChanged is true when a new password was set.
	PasswordChanged bool

	// PasswordScore is the advisory score of the new password, if any.
	PasswordScore int
}

// UpdateProfileHandler handles UpdateProfileCommand.
type UpdateProfileHandler struct {
	users  user.Repository
	events shared.EventPublisher
	logger *logger.Logger
}

// NewUpdateProfileHandler creates a new UpdateProfileHandler.
func NewUpdateProfileHandler(users user.Repository, events shared.EventPublisher, log *logger.Logger) *UpdateProfileHandler {
	if log == nil {
		log = logger.Default()
	}
	return &UpdateProfileHandler{
		users:  users,
		events: events,
		logger: log.With(logger.Component("update_profile")),
	}
}

// Handle loads the user, re-checks uniqueness for changed identity fields,
// applies the profile and persists it.
func (h *UpdateProfileHandler) Handle(ctx context.Context, cmd UpdateProfileCommand) (*UpdateProfileResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	current, err := h.users.GetByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if err := h.checkChangedUniqueness(ctx, current, cmd.Profile); err != nil {
		return nil, err
	}

	if err := current.ApplyProfile(cmd.Profile); err != nil {
		return nil, err
	}

	result := &UpdateProfileResult{}
	if cmd.NewPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cmd.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("update_profile: hash password: %w", err)
		}
		current.PasswordHash = string(hash)
		result.PasswordChanged = true
		result.PasswordScore = validation.PasswordStrength(cmd.NewPassword)
	}

	if err := h.users.Update(ctx, current); err != nil {
		return nil, err
	}

	h.logger.Info("profile updated",
		logger.UserID(current.ID),
		logger.Bool("password_changed", result.PasswordChanged),
	)

	if h.events != nil {
		event := user.NewProfileUpdatedEvent(current.ID, result.PasswordChanged)
		if err := h.events.Publish(event); err != nil {
			h.logger.Warn("failed to publish user.profile_updated", logger.Err(err))
		}
	}

	return result, nil
}

// checkChangedUniqueness verifies uniqueness only for identity fields that
// actually changed, so saving an untouched form never conflicts with itself.
func (h *UpdateProfileHandler) checkChangedUniqueness(ctx context.Context, current *user.User, p user.Profile) error {
	checks := []struct {
		field   string
		changed bool
		exists  func(context.Context, string) (bool, error)
		value   string
	}{
		{"username", p.Username != current.Username, h.users.ExistsByUsername, p.Username},
		{"email", p.Email != current.Email, h.users.ExistsByEmail, p.Email},
		{"cpr", p.CPR != current.CPR, h.users.ExistsByCPR, p.CPR},
	}

	for _, check := range checks {
		if !check.changed {
			continue
		}
		taken, err := check.exists(ctx, check.value)
		if err != nil {
			return fmt.Errorf("update_profile: check %s uniqueness: %w", check.field, err)
		}
		if taken {
			return fmt.Errorf("update_profile: %s is taken: %w", check.field, user.ErrUserAlreadyExists)
		}
	}

	return nil
}
