// Package common defines shared sentinel errors and small helpers used across
// the ShopSage client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Account registry errors.
	ErrDuplicateAccount   = errors.New("account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrMalformedState marks persisted data that could not be decoded.
	// Stores recover from it by falling back to an empty default; it is
	// only ever logged.
	ErrMalformedState = errors.New("malformed persisted state")

	// Storage errors.
	ErrUnknownStorageDriver = errors.New("unknown storage driver")
)
