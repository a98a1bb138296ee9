package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a pipeline failure
type ErrorKind string

const (
	ErrUnsupportedFormat        ErrorKind = "UNSUPPORTED_FORMAT"
	ErrExtractionFailure        ErrorKind = "EXTRACTION_FAILURE"
	ErrModelConnectivityFailure ErrorKind = "MODEL_CONNECTIVITY_FAILURE"
	ErrModelGenerationFailure   ErrorKind = "MODEL_GENERATION_FAILURE"
	ErrResponseParseFailure     ErrorKind = "RESPONSE_PARSE_FAILURE"
)

// PipelineError is the single error produced by a failed run.
// Excerpt is only set for RESPONSE_PARSE_FAILURE.
type PipelineError struct {
	Kind    ErrorKind
	Cause   string
	Excerpt string
	Err     error
}

// NewError builds a PipelineError whose cause is message
func NewError(kind ErrorKind, message string, err error) *PipelineError {
	return &PipelineError{Kind: kind, Cause: message, Err: err}
}

// Errorf builds a PipelineError with a formatted cause
func Errorf(kind ErrorKind, err error, format string, args ...any) *PipelineError {
	return &PipelineError{Kind: kind, Cause: fmt.Sprintf(format, args...), Err: err}
}

func (e *PipelineError) Error() string {
	return e.Cause
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is reports a match when target is a PipelineError of the same kind
func (e *PipelineError) Is(target error) bool {
	t, ok := target.(*PipelineError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first PipelineError in err's chain
func KindOf(err error) (ErrorKind, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}

// Sentinels for errors.Is comparisons
var (
	ErrUnsupported  = &PipelineError{Kind: ErrUnsupportedFormat}
	ErrExtraction   = &PipelineError{Kind: ErrExtractionFailure}
	ErrConnectivity = &PipelineError{Kind: ErrModelConnectivityFailure}
	ErrGeneration   = &PipelineError{Kind: ErrModelGenerationFailure}
	ErrResponse     = &PipelineError{Kind: ErrResponseParseFailure}
)
