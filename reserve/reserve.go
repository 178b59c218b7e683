// Package reserve holds the pieces shared by the facility booking and guest
// parking managers: the interval overlap predicate, reservation statuses, and
// the error kinds handlers translate into HTTP status codes.
package reserve

import (
	"fmt"
	"time"
)

// Booking statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Guest request statuses. Pending is shared.
const (
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Overlaps reports whether the half-open ranges [aStart, aEnd) and
// [bStart, bEnd) intersect. Ranges that touch at a boundary do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ---------- Error kinds ----------

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

type AuthorizationError struct {
	Msg string
}

func (e *AuthorizationError) Error() string { return e.Msg }

type NotFoundError struct {
	Kind string // "facility", "booking", "parking slot", "guest request"
	ID   string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.Kind, e.ID) }

// ConflictError reports a time conflict and carries the competing window so
// the caller can pick a different one.
type ConflictError struct {
	Start  time.Time
	End    time.Time
	Status string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicts with a %s reservation from %s to %s",
		e.Status, e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

// CapacityError is returned when the confirmed-overlap count has reached the
// facility's capacity. Distinct from ConflictError: no single booking need
// overlap exactly.
type CapacityError struct {
	Capacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("facility capacity of %d already reached for this window", e.Capacity)
}

// DuplicateRequestError means the same requester already has an overlapping
// pending request on the slot.
type DuplicateRequestError struct {
	Start time.Time
	End   time.Time
}

func (e *DuplicateRequestError) Error() string {
	return fmt.Sprintf("you already have a pending request from %s to %s",
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

// AlreadyProcessedError means an approval was attempted on a request that is
// no longer pending.
type AlreadyProcessedError struct {
	Status string
}

func (e *AlreadyProcessedError) Error() string {
	return fmt.Sprintf("request already processed: status is %q", e.Status)
}
