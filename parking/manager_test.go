package parking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"nivaas/models"
	"nivaas/reserve"
)

type memStore struct {
	mu    sync.Mutex
	slots map[string]*models.ParkingSlot
}

func newMemStore(slots ...*models.ParkingSlot) *memStore {
	s := &memStore{slots: make(map[string]*models.ParkingSlot)}
	for _, slot := range slots {
		s.slots[slot.SlotID] = slot
	}
	return s
}

func clone(slot *models.ParkingSlot) *models.ParkingSlot {
	c := *slot
	c.GuestRequests = append([]models.GuestRequest(nil), slot.GuestRequests...)
	return &c
}

func (s *memStore) Get(ctx context.Context, id string) (*models.ParkingSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[id]
	if !ok {
		return nil, &reserve.NotFoundError{Kind: "parking slot", ID: id}
	}
	return clone(slot), nil
}

func (s *memStore) Update(ctx context.Context, id string, mutate func(*models.ParkingSlot) error) (*models.ParkingSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[id]
	if !ok {
		return nil, &reserve.NotFoundError{Kind: "parking slot", ID: id}
	}
	c := clone(slot)
	if err := mutate(c); err != nil {
		return nil, err
	}
	c.Version++
	s.slots[id] = c
	return clone(c), nil
}

var base = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

func day(d int) time.Time { return base.AddDate(0, 0, d) }

func newTestManager() (*Manager, *memStore) {
	store := newMemStore(
		&models.ParkingSlot{
			SlotID:        "slot1",
			CommunityID:   "com1",
			SlotNumber:    "G-01",
			Type:          TypeGuest,
			GuestRequests: []models.GuestRequest{},
		},
		&models.ParkingSlot{
			SlotID:      "slot2",
			CommunityID: "com1",
			SlotNumber:  "R-01",
			Type:        TypeResident,
			ResidentID:  "res9",
			IsAvailable: true,
		},
	)
	mgr := &Manager{store: store, now: func() time.Time { return base }}
	return mgr, store
}

func TestCreateGuestRequest(t *testing.T) {
	mgr, store := newTestManager()
	ctx := context.Background()

	req, err := mgr.CreateGuestRequest(ctx, "slot1", "res1", day(1), day(5))
	if err != nil {
		t.Fatalf("CreateGuestRequest: %v", err)
	}
	if req.Status != reserve.StatusPending {
		t.Fatalf("status = %q, want pending", req.Status)
	}

	slot, err := store.Get(ctx, "slot1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(slot.GuestRequests) != 1 {
		t.Fatalf("persisted %d requests, want 1", len(slot.GuestRequests))
	}
	got := slot.GuestRequests[0]
	if got.ID != req.ID || got.RequestedBy != "res1" || !got.FromDate.Equal(day(1)) ||
		!got.ToDate.Equal(day(5)) || got.Status != reserve.StatusPending {
		t.Fatalf("persisted request %+v does not match returned %+v", got, req)
	}
}

func TestCreateGuestRequestValidation(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()
	var verr *reserve.ValidationError

	if _, err := mgr.CreateGuestRequest(ctx, "slot2", "res1", day(1), day(2)); !errors.As(err, &verr) {
		t.Fatalf("resident slot: got %v, want ValidationError", err)
	}
	if _, err := mgr.CreateGuestRequest(ctx, "slot1", "res1", day(3), day(3)); !errors.As(err, &verr) {
		t.Fatalf("empty range: got %v, want ValidationError", err)
	}
	if _, err := mgr.CreateGuestRequest(ctx, "slot1", "res1", day(-3), day(-1)); !errors.As(err, &verr) {
		t.Fatalf("past range: got %v, want ValidationError", err)
	}
}

func TestCreateBlockedByApprovedOverlap(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()

	a, err := mgr.CreateGuestRequest(ctx, "slot1", "res1", day(0), day(4))
	if err != nil {
		t.Fatalf("create A: %v", err)
	}
	if _, err := mgr.ApproveGuestRequest(ctx, "slot1", a.ID, "admin1"); err != nil {
		t.Fatalf("approve A: %v", err)
	}

	_, err = mgr.CreateGuestRequest(ctx, "slot1", "res2", day(2), day(6))
	var conflict *reserve.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("got %v, want ConflictError", err)
	}
	if conflict.Status != reserve.StatusApproved || !conflict.Start.Equal(day(0)) || !conflict.End.Equal(day(4)) {
		t.Fatalf("conflict payload %+v does not carry the approved window", conflict)
	}

	// touching range is fine
	if _, err := mgr.CreateGuestRequest(ctx, "slot1", "res2", day(4), day(6)); err != nil {
		t.Fatalf("touching range rejected: %v", err)
	}
}

func TestDuplicatePendingSameRequester(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()

	if _, err := mgr.CreateGuestRequest(ctx, "slot1", "res1", day(1), day(5)); err != nil {
		t.Fatalf("first: %v", err)
	}

	_, err := mgr.CreateGuestRequest(ctx, "slot1", "res1", day(3), day(7))
	var dup *reserve.DuplicateRequestError
	if !errors.As(err, &dup) {
		t.Fatalf("same requester overlap: got %v, want DuplicateRequestError", err)
	}

	// a different requester may hold an overlapping pending request
	if _, err := mgr.CreateGuestRequest(ctx, "slot1", "res2", day(3), day(7)); err != nil {
		t.Fatalf("other requester's overlapping pending rejected: %v", err)
	}
}

func TestLateConflictOnApproval(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()

	a, err := mgr.CreateGuestRequest(ctx, "slot1", "res1", day(1), day(5))
	if err != nil {
		t.Fatalf("create A: %v", err)
	}
	b, err := mgr.CreateGuestRequest(ctx, "slot1", "res2", day(3), day(7))
	if err != nil {
		t.Fatalf("create B: %v", err)
	}

	approvedA, err := mgr.ApproveGuestRequest(ctx, "slot1", a.ID, "admin1")
	if err != nil {
		t.Fatalf("approve A: %v", err)
	}
	if approvedA.Status != reserve.StatusApproved || approvedA.ApprovedBy != "admin1" {
		t.Fatalf("approved request %+v missing status/approver", approvedA)
	}

	// second approval hits the late re-check; B stays pending
	_, err = mgr.ApproveGuestRequest(ctx, "slot1", b.ID, "admin2")
	var conflict *reserve.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("approve B: got %v, want ConflictError", err)
	}
	reqs, err := mgr.Requests(ctx, "slot1")
	if err != nil {
		t.Fatalf("Requests: %v", err)
	}
	for _, req := range reqs {
		if req.ID == b.ID && req.Status != reserve.StatusPending {
			t.Fatalf("B status = %q after failed approval, want pending", req.Status)
		}
	}
}

func TestApproveNonPending(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()

	a, err := mgr.CreateGuestRequest(ctx, "slot1", "res1", day(1), day(3))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := mgr.ApproveGuestRequest(ctx, "slot1", a.ID, "admin1"); err != nil {
		t.Fatalf("approve: %v", err)
	}

	_, err = mgr.ApproveGuestRequest(ctx, "slot1", a.ID, "admin2")
	var processed *reserve.AlreadyProcessedError
	if !errors.As(err, &processed) {
		t.Fatalf("re-approve: got %v, want AlreadyProcessedError", err)
	}
	if processed.Status != reserve.StatusApproved {
		t.Fatalf("AlreadyProcessedError status = %q, want approved", processed.Status)
	}

	var nf *reserve.NotFoundError
	if _, err := mgr.ApproveGuestRequest(ctx, "slot1", "missing", "admin1"); !errors.As(err, &nf) {
		t.Fatalf("approve missing: got %v, want NotFoundError", err)
	}
}

// Reject is unconditional by design: any prior status ends rejected.
func TestRejectIsUnconditional(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()

	a, _ := mgr.CreateGuestRequest(ctx, "slot1", "res1", day(1), day(3))
	b, _ := mgr.CreateGuestRequest(ctx, "slot1", "res2", day(4), day(6))
	if _, err := mgr.ApproveGuestRequest(ctx, "slot1", b.ID, "admin1"); err != nil {
		t.Fatalf("approve B: %v", err)
	}

	for _, id := range []string{a.ID, b.ID} {
		rejected, err := mgr.RejectGuestRequest(ctx, "slot1", id, "admin1")
		if err != nil {
			t.Fatalf("reject %s: %v", id, err)
		}
		if rejected.Status != reserve.StatusRejected {
			t.Fatalf("status = %q, want rejected", rejected.Status)
		}
		// idempotent in effect
		again, err := mgr.RejectGuestRequest(ctx, "slot1", id, "admin1")
		if err != nil {
			t.Fatalf("second reject: %v", err)
		}
		if again.Status != reserve.StatusRejected {
			t.Fatalf("second reject status = %q, want rejected", again.Status)
		}
	}
}

// Rejecting an approved request frees its window: the approval re-check only
// consults currently approved entries.
func TestRejectApprovedRequestFreesWindow(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()

	a, _ := mgr.CreateGuestRequest(ctx, "slot1", "res1", day(1), day(5))
	b, _ := mgr.CreateGuestRequest(ctx, "slot1", "res2", day(3), day(7))
	if _, err := mgr.ApproveGuestRequest(ctx, "slot1", a.ID, "admin1"); err != nil {
		t.Fatalf("approve A: %v", err)
	}
	if _, err := mgr.RejectGuestRequest(ctx, "slot1", a.ID, "admin1"); err != nil {
		t.Fatalf("reject A: %v", err)
	}

	if _, err := mgr.ApproveGuestRequest(ctx, "slot1", b.ID, "admin1"); err != nil {
		t.Fatalf("approve B after A rejected: %v", err)
	}
}

func TestConcurrentApprovalsSerialize(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()

	a, _ := mgr.CreateGuestRequest(ctx, "slot1", "res1", day(1), day(5))
	b, _ := mgr.CreateGuestRequest(ctx, "slot1", "res2", day(3), day(7))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = mgr.ApproveGuestRequest(ctx, "slot1", id, "admin1")
		}(i, id)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		var conflict *reserve.ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("unexpected error kind: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("%d approvals succeeded for overlapping requests, want exactly 1", ok)
	}
}
