package parking

import (
	"context"
	"time"

	"nivaas/models"
	"nivaas/reserve"
	"nivaas/utils"
)

// Slot types
const (
	TypeResident = "resident"
	TypeGuest    = "guest"
)

// Manager owns the guest-request slate of parking slots. Overlap among
// pending requests from different residents is allowed at creation and only
// resolved when an admin approves: the first approval wins, later ones fail
// the late re-check.
type Manager struct {
	store Store
	now   func() time.Time
}

func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// CreateGuestRequest appends a pending request after checking the range
// against approved requests (conflict) and the requester's own pending
// requests (duplicate). Other residents' pendings never block creation.
func (m *Manager) CreateGuestRequest(ctx context.Context, slotID, requesterID string, from, to time.Time) (*models.GuestRequest, error) {
	if !from.Before(to) {
		return nil, &reserve.ValidationError{Msg: "fromDate must be before toDate"}
	}
	if from.Before(m.now()) {
		return nil, &reserve.ValidationError{Msg: "fromDate must not be in the past"}
	}

	var created models.GuestRequest
	_, err := m.store.Update(ctx, slotID, func(slot *models.ParkingSlot) error {
		if slot.Type != TypeGuest {
			return &reserve.ValidationError{Msg: "parking slot is not a guest slot"}
		}

		for _, req := range slot.GuestRequests {
			if req.Status == reserve.StatusApproved && reserve.Overlaps(from, to, req.FromDate, req.ToDate) {
				return &reserve.ConflictError{Start: req.FromDate, End: req.ToDate, Status: req.Status}
			}
		}
		for _, req := range slot.GuestRequests {
			if req.Status == reserve.StatusPending && req.RequestedBy == requesterID &&
				reserve.Overlaps(from, to, req.FromDate, req.ToDate) {
				return &reserve.DuplicateRequestError{Start: req.FromDate, End: req.ToDate}
			}
		}

		created = models.GuestRequest{
			ID:          utils.GenerateID(14),
			RequestedBy: requesterID,
			FromDate:    from,
			ToDate:      to,
			Status:      reserve.StatusPending,
			RequestedAt: m.now(),
		}
		slot.GuestRequests = append(slot.GuestRequests, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ApproveGuestRequest re-checks the range against every other approved
// request before transitioning. On a late conflict the request stays
// pending; the admin can reject it or the requester resubmits.
func (m *Manager) ApproveGuestRequest(ctx context.Context, slotID, requestID, adminID string) (*models.GuestRequest, error) {
	var approved models.GuestRequest
	_, err := m.store.Update(ctx, slotID, func(slot *models.ParkingSlot) error {
		idx := -1
		for i := range slot.GuestRequests {
			if slot.GuestRequests[i].ID == requestID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return &reserve.NotFoundError{Kind: "guest request", ID: requestID}
		}

		req := &slot.GuestRequests[idx]
		if req.Status != reserve.StatusPending {
			return &reserve.AlreadyProcessedError{Status: req.Status}
		}

		for i, other := range slot.GuestRequests {
			if i == idx || other.Status != reserve.StatusApproved {
				continue
			}
			if reserve.Overlaps(req.FromDate, req.ToDate, other.FromDate, other.ToDate) {
				return &reserve.ConflictError{Start: other.FromDate, End: other.ToDate, Status: other.Status}
			}
		}

		req.Status = reserve.StatusApproved
		req.ApprovedBy = adminID
		approved = *req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &approved, nil
}

// RejectGuestRequest transitions to rejected unconditionally, whatever the
// current status. Rejecting an approved request frees its window for later
// approvals, since the re-check only consults currently approved entries.
func (m *Manager) RejectGuestRequest(ctx context.Context, slotID, requestID, adminID string) (*models.GuestRequest, error) {
	var rejected models.GuestRequest
	_, err := m.store.Update(ctx, slotID, func(slot *models.ParkingSlot) error {
		for i := range slot.GuestRequests {
			if slot.GuestRequests[i].ID == requestID {
				slot.GuestRequests[i].Status = reserve.StatusRejected
				rejected = slot.GuestRequests[i]
				return nil
			}
		}
		return &reserve.NotFoundError{Kind: "guest request", ID: requestID}
	})
	if err != nil {
		return nil, err
	}
	return &rejected, nil
}

// Requests returns the slot's full guest-request slate.
func (m *Manager) Requests(ctx context.Context, slotID string) ([]models.GuestRequest, error) {
	slot, err := m.store.Get(ctx, slotID)
	if err != nil {
		return nil, err
	}
	return slot.GuestRequests, nil
}
