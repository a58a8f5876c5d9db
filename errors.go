package volfog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingMarker is wrapped by the error returned from [ResolveBoxStrict]
	// when one of the fourteen volume markers is absent.
	ErrMissingMarker = errors.New("missing volume marker")
	// ErrBufferSize reports mismatched image and buffer dimensions.
	ErrBufferSize = errors.New("buffer size mismatch")
)

// ConfigurationError collects every problem found while validating
// configuration values or volume markers.
type ConfigurationError struct {
	Problems []string
	Err      error
}

func (e *ConfigurationError) Error() string {
	return "volfog: invalid configuration: " + strings.Join(e.Problems, "; ")
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ConfigurationError) addf(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// errOrNil returns nil when no problems were recorded.
func (e *ConfigurationError) errOrNil() error {
	if e == nil || len(e.Problems) == 0 {
		return nil
	}
	return e
}
