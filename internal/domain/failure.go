package domain

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindConfiguration   ErrorKind = "configuration_error"
	KindAuthentication  ErrorKind = "authentication_error"
	KindTokenRejected   ErrorKind = "token_rejected"
	KindRateLimited     ErrorKind = "rate_limited"
	KindTimeout         ErrorKind = "timeout"
	KindUnreachable     ErrorKind = "unreachable"
	KindRemote          ErrorKind = "remote_error"
	KindInternal        ErrorKind = "internal"
	KindUnknownTool     ErrorKind = "unknown_tool"
	KindMissingArgument ErrorKind = "missing_argument"
)

func (k ErrorKind) Valid() bool {
	switch k {
	case KindConfiguration, KindAuthentication, KindTokenRejected, KindRateLimited,
		KindTimeout, KindUnreachable, KindRemote, KindInternal, KindUnknownTool,
		KindMissingArgument:
		return true
	default:
		return false
	}
}

// Failure is the single error type behind every ErrorKind. Status is only set for
// failures derived from an HTTP response.
type Failure struct {
	Kind   ErrorKind
	Status int
	Detail string
	Err    error
}

func NewFailure(kind ErrorKind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func (f *Failure) Error() string {
	msg := string(f.Kind)
	if f.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", f.Status)
	}
	switch {
	case f.Detail != "":
		msg += ": " + f.Detail
	case f.Err != nil:
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Is matches any Failure of the same kind, so the sentinels in errors.go work with
// errors.Is regardless of status or detail.
func (f *Failure) Is(target error) bool {
	other, ok := target.(*Failure)
	if !ok {
		return false
	}
	return other.Kind == f.Kind
}

// Transient reports whether a login attempt that ended with this failure may be retried.
func (f *Failure) Transient() bool {
	switch f.Kind {
	case KindUnreachable, KindTimeout:
		return true
	case KindRemote:
		return f.Status >= http.StatusInternalServerError
	default:
		return false
	}
}

// AsFailure converts err into a Failure, classifying anything unknown as internal.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}

	var failure *Failure
	if errors.As(err, &failure) {
		return failure
	}

	return &Failure{Kind: KindInternal, Detail: err.Error(), Err: err}
}
