// Package location resolves the current user's coordinates and normalizes every failure
// into a small closed taxonomy.
package location

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"dream_weaver/internal/models"
)

type Kind string

const (
	KindUnsupported         Kind = "unsupported"
	KindPermissionDenied    Kind = "permission_denied"
	KindPositionUnavailable Kind = "position_unavailable"
	KindTimeout             Kind = "timeout"
	KindUnknown             Kind = "unknown"
)

// Error is the only error type a Provider returns.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("location %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("location %s", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// MessageKey is the localization key shown to the user for this failure.
func (k Kind) MessageKey() string {
	switch k {
	case KindUnsupported:
		return "locationError_unsupported"
	case KindPermissionDenied:
		return "locationError_permissionDenied"
	case KindPositionUnavailable:
		return "locationError_unavailable"
	case KindTimeout:
		return "locationError_timeout"
	default:
		return "locationError_unknown"
	}
}

// KindOf classifies any error. Errors that are not *Error become KindUnknown,
// except deadline and network timeouts which become KindTimeout.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var locErr *Error
	if errors.As(err, &locErr) {
		return locErr.Kind
	}
	if isTimeout(err) {
		return KindTimeout
	}
	return KindUnknown
}

func wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Request mirrors the options a platform geolocation query takes.
type Request struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

// DefaultRequest asks for a fresh, high-accuracy fix within ten seconds.
var DefaultRequest = Request{
	HighAccuracy: true,
	Timeout:      10 * time.Second,
	MaximumAge:   0,
}

type Provider interface {
	Locate(ctx context.Context, req Request) (models.Location, error)
}

// FixedProvider answers with coordinates supplied by the caller, e.g. a position the
// front end already obtained from the browser.
type FixedProvider struct {
	Location models.Location
}

func NewFixedProvider(lat, lon float64) *FixedProvider {
	return &FixedProvider{Location: models.Location{Latitude: lat, Longitude: lon}}
}

func (p *FixedProvider) Locate(ctx context.Context, _ Request) (models.Location, error) {
	if p == nil {
		return models.Location{}, wrap(KindUnsupported, errors.New("no fixed location configured"))
	}
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return models.Location{}, wrap(KindTimeout, err)
		}
		return models.Location{}, wrap(KindUnknown, err)
	}
	return p.Location, nil
}
