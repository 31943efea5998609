package tasks

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxTextLength is the longest task text accepted, in characters
const MaxTextLength = 255

// ValidateText trims text and checks it is non-empty and within MaxTextLength
func ValidateText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", newValidationError("Task text must be a non-empty string.")
	}
	if utf8.RuneCountInString(trimmed) > MaxTextLength {
		return "", newValidationError("Task text must not exceed %d characters.", MaxTextLength)
	}
	return trimmed, nil
}

// ValidateID checks that id is a positive integer
func ValidateID(id int) error {
	if id <= 0 {
		return newValidationError("Task ID must be a positive integer.")
	}
	return nil
}

// ParseID converts a command-line argument into a task ID
func ParseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, newValidationError("Task ID must be a positive integer.")
	}
	if err := ValidateID(id); err != nil {
		return 0, err
	}
	return id, nil
}
