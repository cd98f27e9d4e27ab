package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OldStager01/agro-advisor/pkg/validation"
)

func TestValidateLocationID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"simple slug", "delhi", false},
		{"with hyphen", "new-delhi", false},
		{"with underscore and digits", "station_42", false},
		{"empty", "", true},
		{"single char", "d", true},
		{"leading hyphen", "-delhi", true},
		{"path traversal", "../etc", true},
		{"spaces", "new delhi", true},
		{"too long", string(make([]byte, 80)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateLocationID(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateHorizonDays(t *testing.T) {
	assert.NoError(t, validation.ValidateHorizonDays(0)) // defaulted by the engine
	assert.NoError(t, validation.ValidateHorizonDays(7))
	assert.NoError(t, validation.ValidateHorizonDays(30))
	assert.Error(t, validation.ValidateHorizonDays(-1))
	assert.Error(t, validation.ValidateHorizonDays(31))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "delhi", validation.SanitizeString("  delhi\x00 "))
	assert.Equal(t, "a\tb", validation.SanitizeString("a\tb\x07"))
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, validation.ValidateUsername("operator"))
	assert.Error(t, validation.ValidateUsername(""))
	assert.Error(t, validation.ValidateUsername("ab"))
}
