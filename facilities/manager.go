package facilities

import (
	"context"
	"time"

	"nivaas/models"
	"nivaas/reserve"
	"nivaas/utils"
)

// Manager owns the booking slate of facilities: overlap resolution on
// create, the loose capacity ceiling, and the admin confirm/cancel
// transitions.
type Manager struct {
	store Store
	now   func() time.Time
}

func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// CreateBooking validates the window, scans every non-cancelled booking for
// overlap, applies the capacity ceiling, then appends a pending booking.
// Nothing is persisted on any error path.
func (m *Manager) CreateBooking(ctx context.Context, facilityID, residentID string, start, end time.Time) (*models.Booking, error) {
	if !start.Before(end) {
		return nil, &reserve.ValidationError{Msg: "startTime must be before endTime"}
	}
	if start.Before(m.now()) {
		return nil, &reserve.ValidationError{Msg: "startTime must not be in the past"}
	}

	var created models.Booking
	_, err := m.store.Update(ctx, facilityID, func(f *models.Facility) error {
		// conflict: any pending or confirmed booking overlapping the window
		for _, b := range f.Bookings {
			if b.Status == reserve.StatusCancelled {
				continue
			}
			if reserve.Overlaps(start, end, b.StartTime, b.EndTime) {
				return &reserve.ConflictError{Start: b.StartTime, End: b.EndTime, Status: b.Status}
			}
		}

		// capacity ceiling: count of confirmed bookings overlapping the
		// window vs capacity. This is a count, not a max-concurrency sweep.
		if f.Capacity > 0 {
			confirmed := 0
			for _, b := range f.Bookings {
				if b.Status == reserve.StatusConfirmed && reserve.Overlaps(start, end, b.StartTime, b.EndTime) {
					confirmed++
				}
			}
			if confirmed >= f.Capacity {
				return &reserve.CapacityError{Capacity: f.Capacity}
			}
		}

		created = models.Booking{
			ID:         utils.GenerateID(14),
			ResidentID: residentID,
			StartTime:  start,
			EndTime:    end,
			Status:     reserve.StatusPending,
			BookedAt:   m.now(),
		}
		f.Bookings = append(f.Bookings, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ConfirmBooking transitions a booking to confirmed. The transition is
// unconditional once the booking is found: no overlap re-check, and a
// cancelled booking is not guarded against. That asymmetry with guest
// parking approval is deliberate.
func (m *Manager) ConfirmBooking(ctx context.Context, facilityID, bookingID, adminID string) (*models.Booking, error) {
	return m.setStatus(ctx, facilityID, bookingID, reserve.StatusConfirmed)
}

// CancelBooking transitions a booking to cancelled, from any state.
func (m *Manager) CancelBooking(ctx context.Context, facilityID, bookingID, adminID string) (*models.Booking, error) {
	return m.setStatus(ctx, facilityID, bookingID, reserve.StatusCancelled)
}

func (m *Manager) setStatus(ctx context.Context, facilityID, bookingID, status string) (*models.Booking, error) {
	var updated models.Booking
	_, err := m.store.Update(ctx, facilityID, func(f *models.Facility) error {
		for i := range f.Bookings {
			if f.Bookings[i].ID == bookingID {
				f.Bookings[i].Status = status
				updated = f.Bookings[i]
				return nil
			}
		}
		return &reserve.NotFoundError{Kind: "booking", ID: bookingID}
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Bookings returns the facility's full booking slate.
func (m *Manager) Bookings(ctx context.Context, facilityID string) ([]models.Booking, error) {
	f, err := m.store.Get(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	return f.Bookings, nil
}
