package errors

import (
	"errors"
	"fmt"
)

// Listener lifecycle errors
var (
	ErrAlreadyStarted = errors.New("listener already started")
	ErrNotListening   = errors.New("listener is not listening")
	ErrStopped        = errors.New("listener stopped")
)

// Config file errors
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrUnknownGrant       = errors.New("unknown grant type")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
