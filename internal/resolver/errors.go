// internal/resolver/errors.go
package resolver

import (
	"errors"
	"fmt"
)

// Kind classifies a resolution failure for HTTP mapping and clients.
type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindNotTradable  Kind = "not_tradable"
	KindUpstream     Kind = "upstream"
	KindCurveTimeout Kind = "curve_timeout"
)

// Error is a classified resolution error.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the classification from err, defaulting to upstream.
func KindOf(err error) Kind {
	var resolverErr *Error
	if errors.As(err, &resolverErr) {
		return resolverErr.Kind
	}
	return KindUpstream
}
