// Package domain contains entities without transport logic, just state and meta-data.
package domain

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const MaxDisplayNameLen = 36

var ErrDisplayNameTooLong = errors.New("display name too long")

// ConnID identifies one live transport connection.
type ConnID string

// NewConnID mints a fresh connection identifier.
func NewConnID() ConnID {
	return ConnID(uuid.NewString())
}

// NormalizeDisplayName trims the name and checks its length.
// A blank name yields nil, which clears the member's display name.
func NormalizeDisplayName(name string) (*string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLen {
		return nil, ErrDisplayNameTooLong
	}
	return &name, nil
}
