package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

// Location IDs are station slugs: alphanumeric with hyphens and
// underscores, 2-64 chars, starting alphanumeric.
var locationIDRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]{1,63}$`)

// Horizon bounds in days for analysis requests
const (
	MinHorizonDays = 1
	MaxHorizonDays = 30
)

// SanitizeString removes control characters and trims whitespace
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	var builder strings.Builder
	for _, r := range input {
		if !unicode.IsControl(r) || r == '\n' || r == '\t' {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// ValidateLocationID checks a location identifier from the API path
func ValidateLocationID(id string) error {
	id = SanitizeString(id)

	if id == "" {
		return errors.New("location id cannot be empty")
	}
	if len(id) > 64 {
		return errors.New("location id must not exceed 64 characters")
	}
	if !locationIDRegex.MatchString(id) {
		return errors.New("location id must start with a letter or digit and contain only letters, digits, hyphens, and underscores")
	}
	return nil
}

// ValidateHorizonDays checks a requested forecast horizon. Zero is
// allowed: the engine substitutes its default.
func ValidateHorizonDays(days int) error {
	if days == 0 {
		return nil
	}
	if days < MinHorizonDays || days > MaxHorizonDays {
		return errors.New("horizon_days must be between 1 and 30")
	}
	return nil
}

// ValidateUsername checks an operator login name
func ValidateUsername(username string) error {
	username = SanitizeString(username)

	if username == "" {
		return errors.New("username cannot be empty")
	}
	if len(username) < 3 {
		return errors.New("username must be at least 3 characters")
	}
	if len(username) > 50 {
		return errors.New("username must not exceed 50 characters")
	}
	return nil
}
