package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/drivehub/rental-marketplace/internal/domain"
	"github.com/drivehub/rental-marketplace/internal/models"
)

// CustomerStore defines the interface for customer persistence.
type CustomerStore interface {
	Insert(ctx context.Context, customer models.Customer) error
	FindByCustomerID(ctx context.Context, customerID int64) (*models.Customer, error)
	FindByEmail(ctx context.Context, email string) (*models.Customer, error)
	AppendBookingHistory(ctx context.Context, customerID, bookingID int64) error
}

// MongoCustomerStore implements CustomerStore for MongoDB.
type MongoCustomerStore struct {
	Collection *mongo.Collection
}

// Insert inserts a customer record. The customer id must already be assigned.
func (s *MongoCustomerStore) Insert(ctx context.Context, customer models.Customer) error {
	if s.Collection == nil {
		return fmt.Errorf("customers collection is nil")
	}
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = customer.CreatedAt
	_, err := s.Collection.InsertOne(ctx, customer)
	return err
}

// FindByCustomerID finds a customer by their numeric id.
func (s *MongoCustomerStore) FindByCustomerID(ctx context.Context, customerID int64) (*models.Customer, error) {
	if s.Collection == nil {
		return nil, fmt.Errorf("customers collection is nil")
	}
	var customer models.Customer
	err := s.Collection.FindOne(ctx, bson.M{"customer_id": customerID}).Decode(&customer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.NotFoundError{Resource: "customer"}
		}
		return nil, err
	}
	return &customer, nil
}

// FindByEmail finds a customer by their email.
func (s *MongoCustomerStore) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	if s.Collection == nil {
		return nil, fmt.Errorf("customers collection is nil")
	}
	var customer models.Customer
	err := s.Collection.FindOne(ctx, bson.M{"email": email}).Decode(&customer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.NotFoundError{Resource: "customer"}
		}
		return nil, err
	}
	return &customer, nil
}

// AppendBookingHistory pushes a booking id onto the customer's booking
// history.
func (s *MongoCustomerStore) AppendBookingHistory(ctx context.Context, customerID, bookingID int64) error {
	if s.Collection == nil {
		return fmt.Errorf("customers collection is nil")
	}
	result, err := s.Collection.UpdateOne(
		ctx,
		bson.M{"customer_id": customerID},
		bson.M{
			"$push": bson.M{"booking_history": bookingID},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.NotFoundError{Resource: "customer"}
	}
	return nil
}
