package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() Profile {
	return Profile{
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
}

func TestProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Profile)
		wantErr error
	}{
		{"valid", func(p *Profile) {}, nil},
		{"bad username", func(p *Profile) { p.Username = "_jens" }, ErrInvalidUsername},
		{"bad first name", func(p *Profile) { p.FirstName = "Jens2" }, ErrInvalidFirstName},
		{"bad last name", func(p *Profile) { p.LastName = "" }, ErrInvalidLastName},
		{"bad phone", func(p *Profile) { p.Phone = "123" }, ErrInvalidPhone},
		{"bad email", func(p *Profile) { p.Email = "jens@com" }, ErrInvalidEmail},
		{"bad cpr", func(p *Profile) { p.CPR = "2012900000" }, ErrInvalidCPR},
		{"bad address", func(p *Profile) { p.Address = "Vestergade" }, ErrInvalidAddress},
		{"bad postal code", func(p *Profile) { p.PostalCode = "80000" }, ErrInvalidPostalCode},
		{"bad city", func(p *Profile) { p.City = "Aarhus C" }, ErrInvalidCity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestNewUser(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		u, err := NewUser("id-1", validProfile(), "$2a$10$hash", false)
		require.NoError(t, err)
		assert.Equal(t, "jens.hansen", u.Username)
		assert.Equal(t, "Jens Hansen", u.FullName())
		assert.False(t, u.Instructor)
		assert.False(t, u.CreatedAt.IsZero())
	})

	t.Run("invalid profile", func(t *testing.T) {
		p := validProfile()
		p.Email = "broken"
		_, err := NewUser("id-1", p, "$2a$10$hash", false)
		assert.ErrorIs(t, err, ErrInvalidEmail)
	})

	t.Run("missing password hash", func(t *testing.T) {
		_, err := NewUser("id-1", validProfile(), "", false)
		assert.ErrorIs(t, err, ErrInvalidPassword)
	})
}

func TestUser_ApplyProfile(t *testing.T) {
	u, err := NewUser("id-1", validProfile(), "$2a$10$hash", false)
	require.NoError(t, err)
	createdAt := u.CreatedAt

	p := validProfile()
	p.City = "Odense"
	p.Phone = "87654321"
	require.NoError(t, u.ApplyProfile(p))

	assert.Equal(t, "Odense", u.City)
	assert.Equal(t, "87654321", u.Phone)
	assert.Equal(t, createdAt, u.CreatedAt)

	bad := validProfile()
	bad.CPR = "1234567890"
	assert.ErrorIs(t, u.ApplyProfile(bad), ErrInvalidCPR)
	// a rejected profile must not partially apply
	assert.Equal(t, "Odense", u.City)
}
