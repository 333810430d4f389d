package models

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ghuser/inventory/services/item/domain"
)

// ItemName is a value object representing a valid item name: surrounding
// whitespace removed, 1 to 100 characters.
type ItemName string

const (
	MinItemNameLength = 1
	MaxItemNameLength = 100
)

// NewItemName trims s and returns a valid ItemName or an error wrapping
// domain.ErrInvalidItemName.
func NewItemName(s string) (ItemName, error) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n < MinItemNameLength {
		return "", fmt.Errorf("%w: must be at least %d character", domain.ErrInvalidItemName, MinItemNameLength)
	}
	if n > MaxItemNameLength {
		return "", fmt.Errorf("%w: must not exceed %d characters", domain.ErrInvalidItemName, MaxItemNameLength)
	}
	return ItemName(s), nil
}

// String returns the underlying string value.
func (n ItemName) String() string {
	return string(n)
}
