package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies prediction failures.
type ErrorKind string

const (
	KindUnknownDomain           ErrorKind = "unknown_domain"
	KindArtifactNotFound        ErrorKind = "artifact_not_found"
	KindMalformedInput          ErrorKind = "malformed_input"
	KindScalerDimensionMismatch ErrorKind = "scaler_dimension_mismatch"
	KindClassifierError         ErrorKind = "classifier_error"
)

// Error wraps an underlying error with the operation, kind and whichever of
// domain, field and artifact are relevant.
type Error struct {
	Op       string
	Kind     ErrorKind
	Domain   ID
	Field    string
	Artifact ArtifactKind
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Domain != "" {
		base += fmt.Sprintf(" (domain=%s)", e.Domain)
	}
	if e.Artifact != "" {
		base += fmt.Sprintf(" (artifact=%s)", e.Artifact)
	}
	if e.Field != "" {
		base += fmt.Sprintf(" (field=%s)", e.Field)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there
// is none.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
