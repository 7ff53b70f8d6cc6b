// Package dataerror defines the closed set of data-layer failures that the
// search and favorites flows can report, and the user-facing text for each.
//
// Remote errors come from the OpenLibrary client, local errors from the
// favorites database. Both are carried as *Error and compared by Kind:
//
//	if errors.Is(err, dataerror.ErrTooManyRequests) {
//		// back off
//	}
package dataerror

import (
	"errors"
	"fmt"
	"net/http"
)

// Scope tells whether an error came from the network or from local storage.
type Scope string

const (
	ScopeRemote Scope = "remote"
	ScopeLocal  Scope = "local"
)

// Kind identifies a data error.
type Kind string

const (
	KindRequestTimeout  Kind = "request_timeout"
	KindTooManyRequests Kind = "too_many_requests"
	KindNoInternet      Kind = "no_internet"
	KindServer          Kind = "server"
	KindSerialization   Kind = "serialization"
	KindRemoteUnknown   Kind = "unknown"

	KindDiskFull     Kind = "disk_full"
	KindLocalUnknown Kind = "local_unknown"
)

// Scope returns where errors of this kind originate.
func (k Kind) Scope() Scope {
	switch k {
	case KindDiskFull, KindLocalUnknown:
		return ScopeLocal
	default:
		return ScopeRemote
	}
}

// Error is a typed data error. Err holds the underlying cause when known.
type Error struct {
	Kind Kind
	Err  error
}

// Sentinels for errors.Is comparisons.
var (
	ErrRequestTimeout  = &Error{Kind: KindRequestTimeout}
	ErrTooManyRequests = &Error{Kind: KindTooManyRequests}
	ErrNoInternet      = &Error{Kind: KindNoInternet}
	ErrServer          = &Error{Kind: KindServer}
	ErrSerialization   = &Error{Kind: KindSerialization}
	ErrRemoteUnknown   = &Error{Kind: KindRemoteUnknown}
	ErrDiskFull        = &Error{Kind: KindDiskFull}
	ErrLocalUnknown    = &Error{Kind: KindLocalUnknown}
)

// New wraps cause with the given kind.
func New(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s data error (%s): %v", e.Kind.Scope(), e.Kind, e.Err)
	}
	return fmt.Sprintf("%s data error (%s)", e.Kind.Scope(), e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a data error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf extracts the kind of a data error. Errors that are not data errors
// report KindRemoteUnknown and false.
func KindOf(err error) (Kind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return KindRemoteUnknown, false
}

// FromStatus maps an HTTP response status to a remote data error.
// Successful statuses map to nil.
func FromStatus(code int) *Error {
	switch {
	case code >= 200 && code <= 299:
		return nil
	case code == http.StatusRequestTimeout:
		return New(KindRequestTimeout, fmt.Errorf("status %d", code))
	case code == http.StatusTooManyRequests:
		return New(KindTooManyRequests, fmt.Errorf("status %d", code))
	case code >= 500 && code <= 599:
		return New(KindServer, fmt.Errorf("status %d", code))
	default:
		return New(KindRemoteUnknown, fmt.Errorf("status %d", code))
	}
}
