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

// AgencyStore defines the interface for agency persistence.
type AgencyStore interface {
	Insert(ctx context.Context, agency models.Agency) error
	FindByAgencyID(ctx context.Context, agencyID int64) (*models.Agency, error)
	FindByEmail(ctx context.Context, email string) (*models.Agency, error)
	FindDuplicate(ctx context.Context, agency models.Agency) (*models.Agency, error)
	UpdateStatus(ctx context.Context, agencyID int64, status models.AgencyStatus) (*models.Agency, error)
}

// MongoAgencyStore implements AgencyStore for MongoDB.
type MongoAgencyStore struct {
	Collection *mongo.Collection
}

// Insert inserts an agency record. The agency id must already be assigned.
func (s *MongoAgencyStore) Insert(ctx context.Context, agency models.Agency) error {
	if s.Collection == nil {
		return fmt.Errorf("agencies collection is nil")
	}
	agency.RegisteredAt = time.Now()
	agency.UpdatedAt = agency.RegisteredAt
	_, err := s.Collection.InsertOne(ctx, agency)
	return err
}

// FindByAgencyID finds an agency by its numeric id.
func (s *MongoAgencyStore) FindByAgencyID(ctx context.Context, agencyID int64) (*models.Agency, error) {
	if s.Collection == nil {
		return nil, fmt.Errorf("agencies collection is nil")
	}
	var agency models.Agency
	err := s.Collection.FindOne(ctx, bson.M{"agency_id": agencyID}).Decode(&agency)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.NotFoundError{Resource: "agency"}
		}
		return nil, err
	}
	return &agency, nil
}

// FindByEmail finds an agency by its contact email.
func (s *MongoAgencyStore) FindByEmail(ctx context.Context, email string) (*models.Agency, error) {
	if s.Collection == nil {
		return nil, fmt.Errorf("agencies collection is nil")
	}
	var agency models.Agency
	err := s.Collection.FindOne(ctx, bson.M{"contact_email": email}).Decode(&agency)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.NotFoundError{Resource: "agency"}
		}
		return nil, err
	}
	return &agency, nil
}

// FindDuplicate returns an existing agency that collides with the given one
// on name, license number, contact email or phone number.
func (s *MongoAgencyStore) FindDuplicate(ctx context.Context, agency models.Agency) (*models.Agency, error) {
	if s.Collection == nil {
		return nil, fmt.Errorf("agencies collection is nil")
	}
	filter := bson.M{"$or": []bson.M{
		{"agency_name": agency.AgencyName},
		{"business_license_number": agency.BusinessLicenseNumber},
		{"contact_email": agency.ContactEmail},
		{"phone_number": agency.PhoneNumber},
	}}
	var existing models.Agency
	err := s.Collection.FindOne(ctx, filter).Decode(&existing)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &existing, nil
}

// UpdateStatus sets the moderation status and returns the updated record.
func (s *MongoAgencyStore) UpdateStatus(ctx context.Context, agencyID int64, status models.AgencyStatus) (*models.Agency, error) {
	if s.Collection == nil {
		return nil, fmt.Errorf("agencies collection is nil")
	}
	result, err := s.Collection.UpdateOne(
		ctx,
		bson.M{"agency_id": agencyID},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
	)
	if err != nil {
		return nil, err
	}
	if result.MatchedCount == 0 {
		return nil, domain.NotFoundError{Resource: "agency"}
	}
	return s.FindByAgencyID(ctx, agencyID)
}
