package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsername(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"simple", "john", true},
		{"with dot", "john.doe", true},
		{"with underscore and digits", "john_doe42", true},
		{"with dash", "john-doe", true},
		{"empty", "", false},
		{"leading underscore", "_john", false},
		{"trailing dot", "john.", false},
		{"leading dash", "-john", false},
		{"adjacent specials", "jo..hn", false},
		{"mixed adjacent specials", "jo.-hn", false},
		{"space", "john doe", false},
		{"illegal char", "john!doe", false},
		{"single letter", "j", true},
		{"single special", ".", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Username(tt.input))
		})
	}
}

func TestPersonalName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"simple", "Jens", true},
		{"danish letters", "Søren", true},
		{"city", "København", true},
		{"empty", "", false},
		{"digit", "Jens2", false},
		{"space", "Jens Hansen", false},
		{"hyphenated", "Anne-Marie", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PersonalName(tt.input))
		})
	}
}

func TestAddress(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"street and number", "Vestergade 12", true},
		{"with floor", "Vestergade 12 3th", true},
		{"numeric floor", "Vestergade 12 3", true},
		{"empty", "", false},
		{"no space", "Vestergade12", false},
		{"single token", "Vestergade", false},
		{"four tokens", "Vester gade 12 3", false},
		{"digits in street", "Vester2gade 12", false},
		{"letters in house number", "Vestergade 12a", false},
		{"punctuation in floor", "Vestergade 12 3.", false},
		{"double space", "Vestergade  12", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Address(tt.input))
		})
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"plain", "jens@example.com", true},
		{"local specials", "a.b-c@sub.domain.com", true},
		{"underscore local", "a_b@domain.dk", true},
		{"empty", "", false},
		{"no at", "jens.example.com", false},
		{"two ats", "a@b@c", false},
		{"domain starts with dot", "a@.com", false},
		{"domain starts with dash", "a@-b.com", false},
		{"domain ends with dot", "a@b.com.", false},
		{"domain ends with dash", "a@b.com-", false},
		{"no dot in domain", "a@com", false},
		{"illegal local char", "a b@c.com", false},
		{"underscore in domain", "a@b_c.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Email(tt.input))
		})
	}
}

func TestCPR(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		// 0*4+7*3+0*2+4*7+8*6+5*5+0*4+0*3+1*2+8*1 = 132, 132 % 11 == 0
		{"valid", "0704850018", true},
		{"valid with dash", "070485-0018", true},
		// weighted sum 66 % 11 == 0
		{"valid second fixture", "0101900002", true},
		// weighted sum 78 % 11 == 1
		{"invalid checksum", "2012900000", false},
		{"empty", "", false},
		{"too short", "070485001", false},
		{"too long", "07048500181", false},
		{"letters", "070485A018", false},
		{"only dashes", "----------", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CPR(tt.input))
		})
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"minimal", "abc", true},
		{"with specials", "a_b-1", true},
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"too short", "ab", false},
		{"inner space", "ab cd", false},
		{"illegal char", "abc!", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Password(tt.input))
		})
	}
}

func TestPhone(t *testing.T) {
	assert.True(t, Phone("12345678"))
	assert.False(t, Phone(""))
	assert.False(t, Phone("1234567"))
	assert.False(t, Phone("123456789"))
	assert.False(t, Phone("1234567a"))
	assert.False(t, Phone("12 45678"))
}

func TestPostalCode(t *testing.T) {
	assert.True(t, PostalCode("8000"))
	assert.False(t, PostalCode(""))
	assert.False(t, PostalCode("800"))
	assert.False(t, PostalCode("80000"))
	assert.False(t, PostalCode("80a0"))
}

// Validators are pure: calling twice on the same input gives the same answer.
func TestValidatorsIdempotent(t *testing.T) {
	inputs := []string{"", "john.doe", "_john", "0704850018", "a@b.com", "abc"}
	for _, in := range inputs {
		assert.Equal(t, Username(in), Username(in))
		assert.Equal(t, Email(in), Email(in))
		assert.Equal(t, CPR(in), CPR(in))
		assert.Equal(t, Password(in), Password(in))
	}
}
