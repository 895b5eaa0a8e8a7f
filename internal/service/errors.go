package service

import (
	"errors"
	"fmt"
)

var (
	ErrGenerationFailed = errors.New("generation failed")
	ErrSessionNotFound  = errors.New("session not found")
	ErrEventNotFound    = errors.New("calendar event not found")
	ErrProgramNotFound  = errors.New("no active program")
)

// ValidationError reports caller input that is insufficient or contradictory. It is never
// silently replaced with a default.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationErr(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// GenerationError wraps unusable model output. errors.Is(err, ErrGenerationFailed) holds
// for every GenerationError.
type GenerationError struct {
	Op     string
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", ErrGenerationFailed, e.Op, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }

func generationErr(op, reason string, err error) error {
	return &GenerationError{Op: op, Reason: reason, Err: err}
}
