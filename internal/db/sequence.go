package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Entity kinds with their own id sequence.
const (
	KindBooking  = "booking"
	KindBilling  = "billing"
	KindCustomer = "customer"
	KindAgency   = "agency"
	KindVehicle  = "vehicle"
)

// SequenceAllocator hands out dense increasing numeric identifiers per entity
// kind.
type SequenceAllocator interface {
	Next(ctx context.Context, kind string) (int64, error)
}

// MongoSequenceAllocator implements SequenceAllocator on a counters
// collection. Each kind has one counter document; Next is an atomic
// fetch-and-increment, so concurrent writers never observe the same value.
type MongoSequenceAllocator struct {
	Collection *mongo.Collection
}

// Next increments the counter for kind and returns the new value, starting
// at 1 for a kind that has never been seen.
func (a *MongoSequenceAllocator) Next(ctx context.Context, kind string) (int64, error) {
	if a.Collection == nil {
		return 0, fmt.Errorf("counters collection is nil")
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		ID  string `bson:"_id"`
		Seq int64  `bson:"seq"`
	}
	err := withRetry(ctx, func() error {
		return a.Collection.FindOneAndUpdate(
			ctx,
			bson.M{"_id": kind},
			bson.M{"$inc": bson.M{"seq": 1}},
			opts,
		).Decode(&counter)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", kind, err)
	}
	return counter.Seq, nil
}
