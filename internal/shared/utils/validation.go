package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// String length limits
const (
	MaxUsernameLength = 64
	MinUsernameLength = 3
	MaxPasswordLength = 128
	MinPasswordLength = 6
	MaxNameLength     = 256
	MaxMessageSize    = 16 * 1024 // 16KB - single chat message
)

// UsernamePattern allows alphanumeric and underscores
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateUsername validates a username. Usernames become directory names,
// so only alphanumerics and underscores are accepted.
func ValidateUsername(username string) error {
	if err := ValidateString(username, "username", MinUsernameLength, MaxUsernameLength, true); err != nil {
		return err
	}

	if !UsernamePattern.MatchString(username) {
		return fmt.Errorf("username contains invalid characters (only alphanumeric and underscores allowed)")
	}

	return nil
}

// ValidatePassword validates a password
func ValidatePassword(password string) error {
	return ValidateString(password, "password", MinPasswordLength, MaxPasswordLength, true)
}

// ValidateName validates a display name field
func ValidateName(name, fieldName string) error {
	if err := ValidateString(name, fieldName, 1, MaxNameLength, true); err != nil {
		return err
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%s contains control characters", fieldName)
		}
	}
	return nil
}

// ValidateMessage validates a chat message
func ValidateMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("message is required")
	}
	if err := ValidateString(message, "message", 1, MaxMessageSize, true); err != nil {
		return err
	}

	whitespaceCount := 0
	for _, r := range message {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			whitespaceCount++
		}
	}

	if whitespaceCount > len(message)/2 {
		return fmt.Errorf("message contains excessive whitespace")
	}

	return nil
}
