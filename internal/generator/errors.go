package generator

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Error kinds shared by every completion-backed step. Callers branch on
// them with errors.Is.
var (
	ErrTimeout       = errors.New("completion timed out")
	ErrMalformedJSON = errors.New("malformed JSON")
	ErrEmptyResponse = errors.New("empty response")
)

// ParseError is returned when model output cannot be decoded.
type ParseError struct {
	Kind   error
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *ParseError) Unwrap() error { return e.Kind }

// ExtractionError means the knowledge summary could not be produced. The
// pipeline continues with an empty summary.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("knowledge extraction failed: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// wrapCompletionErr tags transport timeouts with ErrTimeout.
func wrapCompletionErr(provider string, err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%s: %w: %v", provider, ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w", provider, err)
}
