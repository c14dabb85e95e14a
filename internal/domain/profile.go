package domain

import (
	"strings"
	"unicode/utf8"
)

type Profile struct {
	ID       int32   `json:"id"`
	Name     string  `json:"name"`
	PhotoURL *string `json:"photoUrl,omitempty"`
}

// NormalizeProfileName trims and validates a profile name
func NormalizeProfileName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrProfileNameRequired
	}
	if utf8.RuneCountInString(name) > MaxProfileNameLength {
		return "", ErrProfileNameTooLong
	}
	return name, nil
}
