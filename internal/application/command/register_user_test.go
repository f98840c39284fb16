package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/drivelog-hub/drivelog/internal/domain/shared"
	"github.com/drivelog-hub/drivelog/internal/domain/user"
	"github.com/drivelog-hub/drivelog/internal/domain/validation"
)

func validRegistration() RegisterUserCommand {
	return RegisterUserCommand{
		Profile: user.Profile{
			Username:   "jens.hansen",
			FirstName:  "Jens",
			LastName:   "Hansen",
			Phone:      "12345678",
			Email:      "jens@example.com",
			CPR:        "0704850018",
			Address:    "Vestergade 12",
			PostalCode: "8000",
			City:       "Aarhus",
		},
		Password: "Abc1-",
	}
}

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := newFakeUserRepo()
		bus := &fakeBus{}
		handler := NewRegisterUserHandler(repo, bus, nil)

		result, err := handler.Handle(ctx, validRegistration())
		require.NoError(t, err)
		assert.NotEmpty(t, result.UserID)
		assert.Equal(t, 13, result.PasswordScore)
		assert.Equal(t, validation.StrengthMedium, result.PasswordBand)

		stored, err := repo.GetByID(ctx, result.UserID)
		require.NoError(t, err)
		assert.Equal(t, "jens.hansen", stored.Username)
		// stored hash must verify against the raw password
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Abc1-")))

		events := bus.published()
		require.Len(t, events, 1)
		assert.Equal(t, shared.EventUserRegistered, events[0].EventType())
	})

	t.Run("invalid field rejected before storage", func(t *testing.T) {
		repo := newFakeUserRepo()
		handler := NewRegisterUserHandler(repo, nil, nil)

		cmd := validRegistration()
		cmd.Profile.Email = "jens@com"
		_, err := handler.Handle(ctx, cmd)
		assert.ErrorIs(t, err, user.ErrInvalidEmail)
		assert.Empty(t, repo.users)
	})

	t.Run("invalid password rejected", func(t *testing.T) {
		handler := NewRegisterUserHandler(newFakeUserRepo(), nil, nil)

		cmd := validRegistration()
		cmd.Password = "ab"
		_, err := handler.Handle(ctx, cmd)
		assert.ErrorIs(t, err, user.ErrInvalidPassword)
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		repo := newFakeUserRepo()
		handler := NewRegisterUserHandler(repo, nil, nil)

		_, err := handler.Handle(ctx, validRegistration())
		require.NoError(t, err)

		second := validRegistration()
		second.Profile.Email = "other@example.com"
		second.Profile.CPR = "0101900002"
		_, err = handler.Handle(ctx, second)
		assert.ErrorIs(t, err, user.ErrUserAlreadyExists)
	})

	t.Run("duplicate cpr rejected", func(t *testing.T) {
		repo := newFakeUserRepo()
		handler := NewRegisterUserHandler(repo, nil, nil)

		_, err := handler.Handle(ctx, validRegistration())
		require.NoError(t, err)

		second := validRegistration()
		second.Profile.Username = "anden.bruger"
		second.Profile.Email = "other@example.com"
		_, err = handler.Handle(ctx, second)
		assert.ErrorIs(t, err, user.ErrUserAlreadyExists)
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	register := func(t *testing.T, repo *fakeUserRepo) string {
		t.Helper()
		handler := NewRegisterUserHandler(repo, nil, nil)
		result, err := handler.Handle(ctx, validRegistration())
		require.NoError(t, err)
		return result.UserID
	}

	t.Run("edit city and phone", func(t *testing.T) {
		repo := newFakeUserRepo()
		id := register(t, repo)
		bus := &fakeBus{}
		handler := NewUpdateProfileHandler(repo, bus, nil)

		cmd := UpdateProfileCommand{UserID: id, Profile: validRegistration().Profile}
		cmd.Profile.City = "Odense"
		cmd.Profile.Phone = "87654321"

		result, err := handler.Handle(ctx, cmd)
		require.NoError(t, err)
		assert.False(t, result.PasswordChanged)

		updated, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Odense", updated.City)

		events := bus.published()
		require.Len(t, events, 1)
		assert.Equal(t, shared.EventUserProfileUpdated, events[0].EventType())
	})

	t.Run("unchanged identity fields do not conflict with self", func(t *testing.T) {
		repo := newFakeUserRepo()
		id := register(t, repo)
		handler := NewUpdateProfileHandler(repo, nil, nil)

		cmd := UpdateProfileCommand{UserID: id, Profile: validRegistration().Profile}
		_, err := handler.Handle(ctx, cmd)
		assert.NoError(t, err)
	})

	t.Run("password change is hashed", func(t *testing.T) {
		repo := newFakeUserRepo()
		id := register(t, repo)
		handler := NewUpdateProfileHandler(repo, nil, nil)

		cmd := UpdateProfileCommand{
			UserID:      id,
			Profile:     validRegistration().Profile,
			NewPassword: "Nyt_kodeord9",
		}
		result, err := handler.Handle(ctx, cmd)
		require.NoError(t, err)
		assert.True(t, result.PasswordChanged)
		assert.Equal(t, validation.PasswordStrength("Nyt_kodeord9"), result.PasswordScore)

		updated, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("Nyt_kodeord9")))
	})

	t.Run("invalid new password rejected", func(t *testing.T) {
		repo := newFakeUserRepo()
		id := register(t, repo)
		handler := NewUpdateProfileHandler(repo, nil, nil)

		cmd := UpdateProfileCommand{
			UserID:      id,
			Profile:     validRegistration().Profile,
			NewPassword: "a b",
		}
		_, err := handler.Handle(ctx, cmd)
		assert.ErrorIs(t, err, user.ErrInvalidPassword)
	})

	t.Run("unknown user", func(t *testing.T) {
		handler := NewUpdateProfileHandler(newFakeUserRepo(), nil, nil)
		cmd := UpdateProfileCommand{UserID: "missing", Profile: validRegistration().Profile}
		_, err := handler.Handle(ctx, cmd)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}
