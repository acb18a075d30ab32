package result

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
)

// Kind is the closed set of failure categories reported in the envelope.
type Kind string

const (
	KindAuth       Kind = "auth"
	KindNetwork    Kind = "network"
	KindValidation Kind = "validation"
	KindUnknown    Kind = "unknown"
)

// Classifier is implemented by errors that know their own Kind.
type Classifier interface {
	Kind() Kind
}

// ValidationError is a local input problem: bad arguments, an unusable
// session file or an unsupported media file.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "validation failed"
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Kind() Kind { return KindValidation }

// Invalid returns a ValidationError with a formatted message.
func Invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InvalidWrap wraps err as a ValidationError.
func InvalidWrap(err error, message string) error {
	return &ValidationError{Message: message, Err: err}
}

// Classify maps err onto the closed taxonomy. Errors carrying their own
// Kind anywhere in the chain win over transport inspection.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}

	var c Classifier
	if errors.As(err, &c) {
		return c.Kind()
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindNetwork
	}

	// syscall.Errno satisfies net.Error, so local file errors are settled
	// before transport inspection.
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return KindValidation
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return KindNetwork
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindNetwork
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindNetwork
	}

	return KindUnknown
}
