package models

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func NewNotFoundError(resource string) error {
	return &NotFoundError{Resource: resource}
}

// EncoderError wraps failures from the external embedding service. Encoder
// failures are fatal to a run; the pipeline does not retry them.
type EncoderError struct {
	message       string
	originalError error
}

func (e *EncoderError) Error() string {
	return fmt.Sprintf("encoder error: %s (original error: %v)", e.message, e.originalError)
}

func (e *EncoderError) Unwrap() error {
	return e.originalError
}

func NewEncoderError(message string, originalError error) *EncoderError {
	return &EncoderError{message: message, originalError: originalError}
}

// PipelineError wraps a stage failure with the stage that produced it.
type PipelineError struct {
	message       string
	originalError error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline error: %s (original error: %v)", e.message, e.originalError)
}

func (e *PipelineError) Unwrap() error {
	return e.originalError
}

func NewPipelineError(message string, originalError error) *PipelineError {
	return &PipelineError{message: message, originalError: originalError}
}

// InputError marks problems with the input table (missing columns, empty
// dataset after filtering). Raised before any expensive stage runs.
type InputError struct {
	message       string
	originalError error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input error: %s (original error: %v)", e.message, e.originalError)
}

func (e *InputError) Unwrap() error {
	return e.originalError
}

func NewInputError(message string, originalError error) *InputError {
	return &InputError{message: message, originalError: originalError}
}
