// Package errors provides the typed failure taxonomy for the draft pipeline.
//
// Every stage of the pipeline either returns a fully-typed success value or a
// *PipelineError carrying one of the four stable codes below. Callers never
// see an unstructured fault: ClassifyError converts any unanticipated error
// at a stage boundary to the nearest-fitting code.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents a classified pipeline failure.
type ErrorCode string

const (
	// ErrInputRejected indicates the description was outside length bounds.
	// This is the only code signaling a client-correctable condition.
	ErrInputRejected ErrorCode = "input_rejected"

	// ErrGenerationUnavailable indicates the generation service exhausted
	// retries, or the fallback template itself was unavailable.
	ErrGenerationUnavailable ErrorCode = "generation_unavailable"

	// ErrMalformedOutput indicates no parseable draft record could be
	// extracted after exhausting all boundary candidates.
	ErrMalformedOutput ErrorCode = "malformed_output"

	// ErrOutputRejected indicates the validator rejected the extracted draft.
	ErrOutputRejected ErrorCode = "output_rejected"
)

// PipelineError is a structured error for pipeline failures.
type PipelineError struct {
	Code     ErrorCode
	Stage    string
	Reason   string
	Duration time.Duration
	Cause    error
}

func (e *PipelineError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Stage, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// New creates a PipelineError with the given code, stage, and reason.
func New(code ErrorCode, stage, reason string) *PipelineError {
	return &PipelineError{Code: code, Stage: stage, Reason: reason}
}

// Wrap creates a PipelineError wrapping a cause.
func Wrap(code ErrorCode, stage string, cause error) *PipelineError {
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	return &PipelineError{Code: code, Stage: stage, Reason: reason, Cause: cause}
}

// CodeOf returns the ErrorCode carried by err, or ErrGenerationUnavailable
// when err is not a *PipelineError (the conservative default for faults that
// escaped a stage boundary unclassified).
func CodeOf(err error) ErrorCode {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ErrGenerationUnavailable
}

// IsCode reports whether any error in err's chain is a PipelineError with
// the given code.
func IsCode(err error, code ErrorCode) bool {
	var pe *PipelineError
	return errors.As(err, &pe) && pe.Code == code
}

// ClassifyError inspects an error raised inside the named stage and returns
// a *PipelineError with the nearest-fitting taxonomy code. Network-adjacent
// stages map to generation_unavailable, parsing-adjacent stages to
// malformed_output, everything else defaults by error shape.
func ClassifyError(err error, stage string) *PipelineError {
	if err == nil {
		return nil
	}

	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe
	}

	out := &PipelineError{Stage: stage, Cause: err, Reason: err.Error()}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		out.Code = ErrGenerationUnavailable
		return out
	}

	switch stage {
	case "extract", "reprompt":
		out.Code = ErrMalformedOutput
		return out
	case "validate":
		out.Code = ErrOutputRejected
		return out
	}

	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "parse") || strings.Contains(lower, "json") ||
		strings.Contains(lower, "unmarshal") || strings.Contains(lower, "decode") {
		out.Code = ErrMalformedOutput
		return out
	}

	out.Code = ErrGenerationUnavailable
	return out
}
