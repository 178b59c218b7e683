package parking

import (
	"context"
	"errors"
	"fmt"

	"nivaas/db"
	"nivaas/models"
	"nivaas/reserve"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store is the persistence contract for parking slots, one document per
// slot. Same atomicity contract as the facility store: Update serializes
// mutations per slot id.
type Store interface {
	Get(ctx context.Context, slotID string) (*models.ParkingSlot, error)
	Update(ctx context.Context, slotID string, mutate func(*models.ParkingSlot) error) (*models.ParkingSlot, error)
}

type MongoStore struct{}

const maxUpdateRetries = 3

func (s *MongoStore) Get(ctx context.Context, slotID string) (*models.ParkingSlot, error) {
	var slot models.ParkingSlot
	err := db.ParkingSlotCollection.FindOne(ctx, bson.M{"slotid": slotID}).Decode(&slot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &reserve.NotFoundError{Kind: "parking slot", ID: slotID}
	}
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (s *MongoStore) Update(ctx context.Context, slotID string, mutate func(*models.ParkingSlot) error) (*models.ParkingSlot, error) {
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		slot, err := s.Get(ctx, slotID)
		if err != nil {
			return nil, err
		}
		if err := mutate(slot); err != nil {
			return nil, err
		}
		res, err := db.ParkingSlotCollection.UpdateOne(ctx,
			bson.M{"slotid": slotID, "version": slot.Version},
			bson.M{
				"$set": bson.M{"guestRequests": slot.GuestRequests, "isAvailable": slot.IsAvailable},
				"$inc": bson.M{"version": 1},
			},
		)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 1 {
			slot.Version++
			return slot, nil
		}
		// lost the race to another writer; reload and retry
	}
	return nil, fmt.Errorf("parking slot %s: too many concurrent updates", slotID)
}
