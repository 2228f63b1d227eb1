package errors

import (
	"errors"
	"fmt"
)

// ConnectionError represents a failure to open a database connection
type ConnectionError struct {
	Driver     string
	Host       string
	Port       int
	Message    string
	Suggestion string
	Err        error
}

func (e *ConnectionError) Error() string {
	target := e.Driver
	if e.Host != "" {
		target = fmt.Sprintf("%s %s:%d", e.Driver, e.Host, e.Port)
	}
	msg := fmt.Sprintf("failed to connect to %s: %s", target, e.Message)
	if e.Suggestion != "" {
		msg += "\n  hint: " + e.Suggestion
	}
	return msg
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// NewConnectionError creates a new ConnectionError
func NewConnectionError(driver, host string, port int, message string) *ConnectionError {
	return &ConnectionError{
		Driver:  driver,
		Host:    host,
		Port:    port,
		Message: message,
	}
}

// MissingPositionalParameterError is returned when a statement has more
// positional placeholders than values were supplied.
type MissingPositionalParameterError struct {
	Index int
}

func (e *MissingPositionalParameterError) Error() string {
	return fmt.Sprintf("positional parameter at index %d does not have a bound value", e.Index)
}

// NewMissingPositionalParameterError creates a new MissingPositionalParameterError
func NewMissingPositionalParameterError(index int) *MissingPositionalParameterError {
	return &MissingPositionalParameterError{Index: index}
}

// MissingNamedParameterError is returned when a named placeholder has no value.
type MissingNamedParameterError struct {
	Name string
}

func (e *MissingNamedParameterError) Error() string {
	return fmt.Sprintf("named parameter %q does not have a bound value", e.Name)
}

// NewMissingNamedParameterError creates a new MissingNamedParameterError
func NewMissingNamedParameterError(name string) *MissingNamedParameterError {
	return &MissingNamedParameterError{Name: name}
}

// MixedParameterStyleError is returned when a statement mixes positional
// and named placeholders, or values do not match the placeholder style.
type MixedParameterStyleError struct {
	Message string
}

func (e *MixedParameterStyleError) Error() string {
	return "mixed parameter styles: " + e.Message
}

// UnknownParameterTypeError is returned for a parameter type a driver cannot bind.
type UnknownParameterTypeError struct {
	Type any
}

func (e *UnknownParameterTypeError) Error() string {
	return fmt.Sprintf("unknown parameter type %v", e.Type)
}

// Transaction and cache errors
var (
	ErrNoActiveTransaction      = errors.New("there is no active transaction")
	ErrCommitFailedRollbackOnly = errors.New("transaction commit failed because the transaction has been marked for rollback only")
	ErrNoResultDriverConfigured = errors.New("trying to cache a query but no result cache is configured")
	ErrSavepointsNotSupported   = errors.New("savepoints are not supported by this driver")
	ErrConnectionClosed         = errors.New("connection is closed")
	ErrResultFreed              = errors.New("result has been freed")
	ErrUnknownDriver            = errors.New("unknown driver")
)

// Is and As re-export the standard library helpers so callers need one import.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)
