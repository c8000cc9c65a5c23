package provider

import "errors"

var (
	// ErrNotFound is returned when a named provider is not registered.
	ErrNotFound = errors.New("provider not found")
	// ErrExists is returned when registering a name that is already taken.
	ErrExists = errors.New("provider already registered")
	// ErrEmptyName is returned when a registry operation receives an empty name.
	ErrEmptyName = errors.New("provider name must not be empty")
)
