package dataerror

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"

	"github.com/mattn/go-sqlite3"
)

// FromTransport classifies an error returned while sending a request.
//
// context.Canceled is returned unchanged: a superseded search must unwind as
// a cancellation, not surface to the user as a failure.
func FromTransport(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return New(KindRequestTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return New(KindRequestTimeout, err)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return New(KindNoInternet, err)
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ENETUNREACH) || errors.Is(err, syscall.EHOSTUNREACH) {
		return New(KindNoInternet, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return New(KindNoInternet, err)
	}

	return New(KindRemoteUnknown, err)
}

// FromStorage classifies an error returned by the favorites database.
func FromStorage(err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrFull {
		return New(KindDiskFull, err)
	}
	if errors.Is(err, syscall.ENOSPC) {
		return New(KindDiskFull, err)
	}

	return New(KindLocalUnknown, err)
}
