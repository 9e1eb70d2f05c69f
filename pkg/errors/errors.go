package errors

import (
	"errors"
	"fmt"
)

// Error codes, one per failure class of a story request.
const (
	CodeConfiguration  = "configuration"
	CodeNavigation     = "navigation"
	CodeRevealTimeout  = "reveal_timeout"
	CodeRevealNotFound = "reveal_not_found"
	CodeCapture        = "capture"
	CodePersist        = "persist"
)

var (
	ErrConfiguration  = errors.New("configuration error")
	ErrNavigation     = errors.New("navigation failed")
	ErrRevealTimeout  = errors.New("reveal control did not appear")
	ErrRevealNotFound = errors.New("reveal control not found")
	ErrCapture        = errors.New("screenshot capture failed")
	ErrPersist        = errors.New("persist failed")
)

// Error represents a custom error type
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap wraps an error with additional message
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Message: message,
		Err:     err,
	}
}

// WrapWithCode wraps an error with a code and message
func WrapWithCode(err error, code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Configuration reports a missing or invalid startup setting.
func Configuration(message string) error {
	return WrapWithCode(ErrConfiguration, CodeConfiguration, message)
}

// Navigation wraps a failed page navigation.
func Navigation(err error) error {
	return WrapWithCode(join(ErrNavigation, err), CodeNavigation, "navigation failed")
}

// RevealTimeout wraps a wait that expired before any reveal candidate rendered.
func RevealTimeout(err error) error {
	return WrapWithCode(join(ErrRevealTimeout, err), CodeRevealTimeout, "no reveal candidate appeared")
}

// RevealNotFound reports that no candidate carried the reveal text.
func RevealNotFound(text string, candidates int) error {
	return WrapWithCode(ErrRevealNotFound, CodeRevealNotFound,
		fmt.Sprintf("no %q control among %d candidates", text, candidates))
}

// Capture wraps a failure of the screenshot mechanism.
func Capture(err error) error {
	return WrapWithCode(join(ErrCapture, err), CodeCapture, "screenshot failed")
}

// Persist wraps a failure to store an artifact or record.
func Persist(what string, err error) error {
	return WrapWithCode(join(ErrPersist, err), CodePersist, "failed to persist "+what)
}

func join(sentinel, err error) error {
	if err == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// GetCode returns the error code if it exists
func GetCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetMessage returns the error message
func GetMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func IsNavigation(err error) bool {
	return errors.Is(err, ErrNavigation)
}

func IsRevealTimeout(err error) bool {
	return errors.Is(err, ErrRevealTimeout)
}

func IsRevealNotFound(err error) bool {
	return errors.Is(err, ErrRevealNotFound)
}

func IsCapture(err error) bool {
	return errors.Is(err, ErrCapture)
}

func IsPersist(err error) bool {
	return errors.Is(err, ErrPersist)
}
