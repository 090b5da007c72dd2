package kiosk

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeValidation indicates a configuration that would not work on a device
	ErrTypeValidation ErrorType = iota
	// ErrTypeParse indicates a document that could not be imported
	ErrTypeParse
	// ErrTypeDuplicate indicates an app or pin that already exists
	ErrTypeDuplicate
	// ErrTypeNotFound indicates an index or key that does not exist
	ErrTypeNotFound
	// ErrTypeInvalidInput indicates a command argument that cannot be applied
	ErrTypeInvalidInput
	// ErrTypePreset indicates preset tables that are missing or not loaded
	ErrTypePreset
	// ErrTypeLocked indicates a list that cannot be edited in the current state
	ErrTypeLocked
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeDuplicate:
		return "Duplicate Entry"
	case ErrTypeNotFound:
		return "Not Found"
	case ErrTypeInvalidInput:
		return "Invalid Input"
	case ErrTypePreset:
		return "Preset Error"
	case ErrTypeLocked:
		return "Locked"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is returned by commands, validation and import.
type Error struct {
	Type    ErrorType // Category of error
	Message string    // Human-readable error message
	Field   string    // Configuration field the error refers to (if any)
	Err     error     // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError creates a validation error for field.
func NewValidationError(field, message string) *Error {
	return &Error{Type: ErrTypeValidation, Field: field, Message: message}
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *Error {
	return &Error{Type: ErrTypeParse, Message: message, Err: err}
}

// NewDuplicateError creates a duplicate-entry error
func NewDuplicateError(message string) *Error {
	return &Error{Type: ErrTypeDuplicate, Message: message}
}

// NewNotFoundError creates an error for an index or key that does not exist
func NewNotFoundError(message string) *Error {
	return &Error{Type: ErrTypeNotFound, Message: message}
}

// NewInputError creates an error for an unusable command argument
func NewInputError(field, message string) *Error {
	return &Error{Type: ErrTypeInvalidInput, Field: field, Message: message}
}

// NewPresetError creates an error for missing preset data
func NewPresetError(message string) *Error {
	return &Error{Type: ErrTypePreset, Message: message}
}

// NewLockedError creates an error for an edit the current state does not allow
func NewLockedError(message string) *Error {
	return &Error{Type: ErrTypeLocked, Message: message}
}

func isType(err error, t ErrorType) bool {
	var kerr *Error
	if errors.As(err, &kerr) {
		return kerr.Type == t
	}
	return false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool { return isType(err, ErrTypeValidation) }

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool { return isType(err, ErrTypeParse) }

// IsDuplicateError checks if an error is a duplicate-entry error
func IsDuplicateError(err error) bool { return isType(err, ErrTypeDuplicate) }

// IsNotFoundError checks if an error is a not-found error
func IsNotFoundError(err error) bool { return isType(err, ErrTypeNotFound) }

// IsPresetError checks if an error is a preset error
func IsPresetError(err error) bool { return isType(err, ErrTypePreset) }

// GetUserFriendlyHint returns advice for an error, suitable for terminal output
func GetUserFriendlyHint(err error) string {
	var kerr *Error
	if !errors.As(err, &kerr) {
		return "An unexpected error occurred. Please try again."
	}

	switch kerr.Type {
	case ErrTypeParse:
		return strings.Join([]string{
			"The file could not be imported.",
			"Troubleshooting:",
			"  • Only AssignedAccess configuration XML files are supported",
			"  • Check that the file is well-formed XML",
			"  • Files exported from Intune may be HTML-encoded; decode them first",
		}, "\n")
	case ErrTypeDuplicate:
		return "An entry with the same name or value already exists."
	case ErrTypeNotFound:
		return "Use the list commands to see valid positions and keys."
	case ErrTypePreset:
		return strings.Join([]string{
			"Preset data is not available.",
			"Troubleshooting:",
			"  • Check the preset source in your settings file",
			"  • Remove the preset source to use the built-in presets",
		}, "\n")
	case ErrTypeLocked:
		return "Disable taskbar sync to edit taskbar pins directly."
	case ErrTypeValidation:
		return "The configuration values are invalid. Check the error message for details."
	default:
		return "An error occurred. Please check the error message for details."
	}
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	var kerr *Error
	if !errors.As(err, &kerr) {
		return err.Error()
	}
	if kerr.Type == ErrTypeParse && kerr.Err != nil {
		return fmt.Sprintf("%s (%v)", kerr.Message, kerr.Err)
	}
	return kerr.Message
}
