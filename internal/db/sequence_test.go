package db

import (
	"context"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestSequenceAllocator_NilCollection(t *testing.T) {
	alloc := &MongoSequenceAllocator{Collection: nil}
	if _, err := alloc.Next(context.Background(), KindBooking); err == nil {
		t.Error("expected error when collection is nil")
	}
}

// Integration test (requires running MongoDB)
func TestSequenceAllocator_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set, skipping integration test")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("failed to connect: %v, skipping integration test", err)
		return
	}
	defer client.Disconnect(ctx)

	coll := Database(client).Collection("counters_test")
	defer coll.Drop(ctx)

	alloc := &MongoSequenceAllocator{Collection: coll}
	var prev int64
	for i := 0; i < 5; i++ {
		id, err := alloc.Next(ctx, KindBooking)
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if id != prev+1 {
			t.Errorf("expected %d, got %d", prev+1, id)
		}
		prev = id
	}
}
