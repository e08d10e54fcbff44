package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/drivehub/rental-marketplace/internal/models"
)

// BillingStore defines the interface for billing persistence.
type BillingStore interface {
	Insert(ctx context.Context, billing models.Billing) error
	Exists(ctx context.Context, customerName, vehicleName string, start, end time.Time, method models.PricingMethod) (bool, error)
}

// MongoBillingStore implements BillingStore for MongoDB.
type MongoBillingStore struct {
	Collection *mongo.Collection
}

// Insert inserts a billing entry. The billing id must already be assigned.
func (s *MongoBillingStore) Insert(ctx context.Context, billing models.Billing) error {
	if s.Collection == nil {
		return fmt.Errorf("billing collection is nil")
	}
	_, err := s.Collection.InsertOne(ctx, billing)
	return err
}

// Exists reports whether an entry already covers the same customer, vehicle,
// window and pricing method. This is the pre-insert check that keeps billing
// generation idempotent per booking window.
func (s *MongoBillingStore) Exists(ctx context.Context, customerName, vehicleName string, start, end time.Time, method models.PricingMethod) (bool, error) {
	if s.Collection == nil {
		return false, fmt.Errorf("billing collection is nil")
	}
	filter := bson.M{
		"customer_name":  customerName,
		"vehicle_name":   vehicleName,
		"start_date":     start,
		"end_date":       end,
		"pricing_method": method,
	}
	count, err := s.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
