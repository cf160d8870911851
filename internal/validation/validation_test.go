package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "hunter2!", false},
		{"Exactly Min Length", "abcde", false},
		{"Exactly Max Length", strings.Repeat("a", 128), false},
		{"Too Short", "abcd", true},
		{"Too Long", strings.Repeat("a", 129), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Valid", "user@example.com", false},
		{"Valid Subdomain", "a.b@mail.example.co.uk", false},
		{"Missing At", "userexample.com", true},
		{"Missing TLD", "user@example", true},
		{"Empty", "", true},
		{"Too Long", strings.Repeat("a", 250) + "@x.io", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateName("Ada Lovelace"))
	assert.Error(t, ValidateName("A"))
	assert.Error(t, ValidateName("  "))
	assert.Error(t, ValidateName(strings.Repeat("n", 51)))
}
