package facilities

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

// Store is the persistence contract the booking manager runs against.
// Update must apply mutate to the current document and persist the result
// atomically with respect to other Update calls on the same facility id.
type Store interface {
	Get(ctx context.Context, facilityID string) (*models.Facility, error)
	Update(ctx context.Context, facilityID string, mutate func(*models.Facility) error) (*models.Facility, error)
}

// MongoStore keeps one document per facility. Serialization per facility is
// an optimistic version counter: the update filter matches id and version,
// and a missed match means another writer got in first, so the whole
// read-mutate-write cycle reruns.
type MongoStore struct{}

const maxUpdateRetries = 3

func (s *MongoStore) Get(ctx context.Context, facilityID string) (*models.Facility, error) {
	var f models.Facility
	err := db.FacilityCollection.FindOne(ctx, bson.M{"facilityid": facilityID}).Decode(&f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &reserve.NotFoundError{Kind: "facility", ID: facilityID}
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *MongoStore) Update(ctx context.Context, facilityID string, mutate func(*models.Facility) error) (*models.Facility, error) {
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		f, err := s.Get(ctx, facilityID)
		if err != nil {
			return nil, err
		}
		if err := mutate(f); err != nil {
			return nil, err
		}
		res, err := db.FacilityCollection.UpdateOne(ctx,
			bson.M{"facilityid": facilityID, "version": f.Version},
			bson.M{
				"$set": bson.M{"bookings": f.Bookings},
				"$inc": bson.M{"version": 1},
			},
		)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 1 {
			f.Version++
			return f, nil
		}
		// lost the race to another writer; reload and retry
	}
	return nil, fmt.Errorf("facility %s: too many concurrent updates", facilityID)
}
