// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/drivelog-hub/drivelog/internal/domain/shared"
	"github.com/drivelog-hub/drivelog/internal/domain/user"
	"github.com/drivelog-hub/drivelog/internal/domain/validation"
	"github.com/drivelog-hub/drivelog/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER USER COMMAND
// Registration is the gatekeeper for persisted profile data: every raw field
// goes through its validator before anything is stored, and the password is
// stored only as a bcrypt hash.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterUserCommand contains the raw registration form fields.
type RegisterUserCommand struct {
	// Profile holds all profile fields as the form submitted them.
	Profile user.Profile

	// Password is the raw password; it is hashed before storage.
	Password string

	// Instructor marks instructor accounts.
	Instructor bool

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
// Field-level rejections surface as the user domain's per-field errors
// so the UI can highlight the offending field.
func (c RegisterUserCommand) Validate() error {
	if err := c.Profile.Validate(); err != nil {
		return err
	}
	if !validation.Password(c.Password) {
		return user.ErrInvalidPassword
	}
	return nil
}

// RegisterUserResult contains the result of a registration.
type RegisterUserResult struct {
	// UserID is the ID assigned to the new user.
	UserID string

	// PasswordScore is the advisory strength score of the chosen password.
	PasswordScore int

	// PasswordBand is the UI band for the score.
	PasswordBand validation.StrengthBand
}

// RegisterUserHandler handles RegisterUserCommand.
type RegisterUserHandler struct {
	users  user.Repository
	events shared.EventPublisher
	logger *logger.Logger

	// newID generates user IDs; injectable for tests.
	newID func() string
}

// NewRegisterUserHandler creates a new RegisterUserHandler.
func NewRegisterUserHandler(users user.Repository, events shared.EventPublisher, log *logger.Logger) *RegisterUserHandler {
	if log == nil {
		log = logger.Default()
	}
	return &RegisterUserHandler{
		users:  users,
		events: events,
		logger: log.With(logger.Component("register_user")),
		newID:  uuid.NewString,
	}
}

// Handle executes the registration flow: validate, check uniqueness,
// hash the password, persist, publish.
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*RegisterUserResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if err := h.checkUniqueness(ctx, cmd.Profile); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register_user: hash password: %w", err)
	}

	newUser, err := user.NewUser(h.newID(), cmd.Profile, string(hash), cmd.Instructor)
	if err != nil {
		return nil, err
	}

	if err := h.users.Create(ctx, newUser); err != nil {
		return nil, shared.WrapDomainError("user", "Create", shared.ErrAlreadyExists, "could not create user", err)
	}

	h.logger.Info("user registered",
		logger.UserID(newUser.ID),
		logger.String("username", newUser.Username),
	)

	if h.events != nil {
		event := user.NewRegisteredEvent(newUser).WithCorrelation(cmd.CorrelationID)
		if err := h.events.Publish(event); err != nil {
			h.logger.Warn("failed to publish user.registered", logger.Err(err))
		}
	}

	score := validation.PasswordStrength(cmd.Password)
	return &RegisterUserResult{
		UserID:        newUser.ID,
		PasswordScore: score,
		PasswordBand:  validation.BandFor(score),
	}, nil
}

// checkUniqueness rejects registrations that collide on username, email or CPR.
func (h *RegisterUserHandler) checkUniqueness(ctx context.Context, p user.Profile) error {
	checks := []struct {
		field  string
		exists func(context.Context, string) (bool, error)
		value  string
	}{
		{"username", h.users.ExistsByUsername, p.Username},
		{"email", h.users.ExistsByEmail, p.Email},
		{"cpr", h.users.ExistsByCPR, p.CPR},
	}

	for _, check := range checks {
		taken, err := check.exists(ctx, check.value)
		if err != nil {
			return fmt.Errorf("register_user: check %s uniqueness: %w", check.field, err)
		}
		if taken {
			return fmt.Errorf("register_user: %s is taken: %w", check.field, user.ErrUserAlreadyExists)
		}
	}

	return nil
}
