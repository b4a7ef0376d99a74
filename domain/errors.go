package domain

import (
	"errors"
	"fmt"
)

// ErrPostNotFound signals that a requested post no longer exists.
// Repository errors of kind KindNotFound unwrap to it.
var ErrPostNotFound = errors.New("post not found")

// ValidationError is a client-side field rule violation. It never reaches
// the server; forms resolve it locally and block submission.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AuthError is a rejected login/registration or an expired/invalid session.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies a repository failure.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNetwork
	KindUnauthorized
	KindNotFound
	KindValidation // any 4xx other than 401/404
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "notFound"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// RepositoryError is the uniform failure contract of the API client.
// Message is user-presentable: the server's message when it sent one,
// otherwise a generic fallback per operation.
type RepositoryError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Err        error
}

func (e *RepositoryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RepositoryError) Unwrap() error {
	if e.Kind == KindNotFound {
		return ErrPostNotFound
	}
	return e.Err
}

// IsUnauthorized reports whether err is a 401-kind repository failure.
func IsUnauthorized(err error) bool {
	var re *RepositoryError
	return errors.As(err, &re) && re.Kind == KindUnauthorized
}

// IsRetryable reports whether a repository failure is worth retrying.
// Only transport-level and unclassified server failures qualify; 4xx
// responses are deterministic and retrying them is wasted traffic.
func IsRetryable(err error) bool {
	var re *RepositoryError
	if !errors.As(err, &re) {
		return false
	}
	return re.Kind == KindNetwork || re.Kind == KindUnknown
}
