package domain

import "errors"

var (
	// ErrInvalidInput is returned for out-of-range option indexes, empty banks
	// and reads from an engine that was never started.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPreconditionViolation is returned when an operation is called in the
	// wrong quiz state (results before completion, answers after it).
	ErrPreconditionViolation = errors.New("precondition violation")
	// ErrSessionNotFound is returned when a quiz session has not been initialized.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
)
