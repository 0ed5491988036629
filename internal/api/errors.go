package api

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork           = errors.New("ranking service unreachable")
	ErrNotFound          = errors.New("no such player")
	ErrMalformedResponse = errors.New("malformed ranking response")
)

type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindNotFound
	KindMalformed
	// KindAggregate marks a leaderboard build that failed because a member lookup did.
	KindAggregate
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindNotFound:
		return "not_found"
	case KindMalformed:
		return "malformed"
	case KindAggregate:
		return "aggregate"
	default:
		return "unknown"
	}
}

// LookupError is the single failure type of a profile lookup. Kind says why it
// failed; Err keeps the underlying cause.
type LookupError struct {
	Code string
	Kind Kind
	Err  error
}

func (e *LookupError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("lookup failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("lookup %s failed (%s): %v", e.Code, e.Kind, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

func (e *LookupError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrMalformedResponse:
		return e.Kind == KindMalformed
	}
	return false
}

// NewLookupError tags err with the kind implied by the sentinel it wraps.
func NewLookupError(code string, err error) *LookupError {
	var le *LookupError
	if errors.As(err, &le) {
		return &LookupError{Code: code, Kind: le.Kind, Err: le.Err}
	}
	return &LookupError{Code: code, Kind: classify(err), Err: err}
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformed
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	default:
		return KindUnknown
	}
}

// KindOf reports the lookup kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindUnknown
}
