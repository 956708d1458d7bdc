package rules

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"", true}, // optional field
		{"+14155552671", true},
		{"+919876543210", true},
		{"+447911123456", true},
		{"+1", true},
		{"+" + strings.Repeat("9", 15), true},
		{"+" + strings.Repeat("9", 16), false},
		{"14155552671", false},
		{"+1 (415) 555-2671", false},
		{"415-555-2671", false},
		{"+1415555a671", false},
		{"+", false},
		{"++14155552671", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidPhone(tt.phone), "phone %q", tt.phone)
	}
}

func TestValidUsername(t *testing.T) {
	assert.False(t, ValidUsername(""))
	assert.False(t, ValidUsername("bob"))
	assert.True(t, ValidUsername("bob1"))
	assert.True(t, ValidUsername("bob123"))
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("bob@example.com"))
	assert.False(t, ValidEmail(""))
	assert.False(t, ValidEmail("bob"))
	assert.False(t, ValidEmail("Bob <bob@example.com>"))
}

func TestPasswordsMatch(t *testing.T) {
	assert.True(t, PasswordsMatch("Secret123", "Secret123"))
	assert.False(t, PasswordsMatch("abc", "xyz"))
	assert.False(t, PasswordsMatch("Secret123", "secret123"))
}

func TestIsSamePassword(t *testing.T) {
	verify := func(hash, plain string) bool { return hash == "stored:"+plain }

	assert.True(t, IsSamePassword("hunter2", "stored:hunter2", verify))
	assert.False(t, IsSamePassword("hunter3", "stored:hunter2", verify))
}

func TestBirthDateValid(t *testing.T) {
	now := time.Now()
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	assert.True(t, BirthDateValid(nil, now))
	assert.True(t, BirthDateValid(&past, now))
	assert.True(t, BirthDateValid(&now, now))
	assert.False(t, BirthDateValid(&future, now))
}
