package booking

import (
	"errors"
	"fmt"
)

// ErrWindowNotFound is returned by WindowStore implementations when no
// service window exists for an id.
var ErrWindowNotFound = errors.New("service window not found")

// RejectKind classifies the deterministic, input-driven admission rejections.
// These are never retried; the caller translates them into user feedback.
type RejectKind string

const (
	RejectInvalidRecurrence    RejectKind = "invalid_recurrence"
	RejectNoMatchingWindow     RejectKind = "no_matching_window"
	RejectPartyTooLarge        RejectKind = "party_too_large"
	RejectSlotFull             RejectKind = "slot_full"
	RejectOnlineAllocationFull RejectKind = "online_allocation_full"
)

type RejectionError struct {
	Kind   RejectKind
	Detail string
}

func (e *RejectionError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func reject(kind RejectKind, format string, args ...any) *RejectionError {
	return &RejectionError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Rejection unwraps err as a RejectionError, distinguishing deterministic
// rejections from opaque persistence failures.
func Rejection(err error) (*RejectionError, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
