package domain

import "errors"

// Sentinel errors for the item domain. Use errors.Is() to check these.
var (
	// ErrItemNotFound indicates no item matched both id and tenant.
	ErrItemNotFound = errors.New("item not found")

	// ErrInvalidItemName indicates the item name violates domain constraints.
	ErrInvalidItemName = errors.New("invalid item name")

	// ErrInvalidQuantity indicates a negative quantity.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrEmptyPatch indicates an update carrying no recognized field.
	ErrEmptyPatch = errors.New("no fields to update")
)
