// Package common defines shared constants and sentinel errors used across
// spendkeeper components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Lookup errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")

	// Input rejected before any storage mutation.
	ErrValidation          = errors.New("validation error")
	ErrInsufficientBalance = errors.New("insufficient balance")

	// Storage errors.
	ErrWriteFailure = errors.New("write failure")
	ErrCorruptData  = errors.New("corrupt data")
)
