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

// VehicleStore defines the interface for vehicle persistence.
type VehicleStore interface {
	Insert(ctx context.Context, vehicle models.Vehicle) error
	FindByVehicleID(ctx context.Context, vehicleID int64) (*models.Vehicle, error)
	FindByAgency(ctx context.Context, agencyID int64) ([]models.Vehicle, error)
	Update(ctx context.Context, vehicleID int64, vehicle models.Vehicle) error
	Delete(ctx context.Context, vehicleID int64) error
	CountByAgency(ctx context.Context, agencyID int64) (int64, error)
}

// MongoVehicleStore implements VehicleStore for MongoDB.
type MongoVehicleStore struct {
	Collection *mongo.Collection
}

// Insert inserts a vehicle record. The vehicle id must already be assigned.
func (s *MongoVehicleStore) Insert(ctx context.Context, vehicle models.Vehicle) error {
	if s.Collection == nil {
		return fmt.Errorf("vehicles collection is nil")
	}
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = vehicle.CreatedAt
	_, err := s.Collection.InsertOne(ctx, vehicle)
	return err
}

// FindByVehicleID finds a vehicle by its numeric id.
func (s *MongoVehicleStore) FindByVehicleID(ctx context.Context, vehicleID int64) (*models.Vehicle, error) {
	if s.Collection == nil {
		return nil, fmt.Errorf("vehicles collection is nil")
	}
	var vehicle models.Vehicle
	err := s.Collection.FindOne(ctx, bson.M{"vehicle_id": vehicleID}).Decode(&vehicle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.NotFoundError{Resource: "vehicle"}
		}
		return nil, err
	}
	return &vehicle, nil
}

// FindByAgency returns all vehicles listed by an agency.
func (s *MongoVehicleStore) FindByAgency(ctx context.Context, agencyID int64) ([]models.Vehicle, error) {
	if s.Collection == nil {
		return nil, fmt.Errorf("vehicles collection is nil")
	}
	cursor, err := s.Collection.Find(ctx, bson.M{"agency_id": agencyID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// Update replaces the mutable fields of a vehicle.
func (s *MongoVehicleStore) Update(ctx context.Context, vehicleID int64, vehicle models.Vehicle) error {
	if s.Collection == nil {
		return fmt.Errorf("vehicles collection is nil")
	}
	set := bson.M{
		"vehicle_name":   vehicle.VehicleName,
		"vehicle_number": vehicle.VehicleNumber,
		"vehicle_type":   vehicle.VehicleType,
		"capacity":       vehicle.Capacity,
		"description":    vehicle.Description,
		"price_per_day":  vehicle.PricePerDay,
		"price_per_hour": vehicle.PricePerHour,
		"availability":   vehicle.Availability,
		"features":       vehicle.Features,
		"images":         vehicle.Images,
		"updated_at":     time.Now(),
	}
	result, err := s.Collection.UpdateOne(ctx, bson.M{"vehicle_id": vehicleID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.NotFoundError{Resource: "vehicle"}
	}
	return nil
}

// Delete removes a vehicle by its numeric id.
func (s *MongoVehicleStore) Delete(ctx context.Context, vehicleID int64) error {
	if s.Collection == nil {
		return fmt.Errorf("vehicles collection is nil")
	}
	result, err := s.Collection.DeleteOne(ctx, bson.M{"vehicle_id": vehicleID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return domain.NotFoundError{Resource: "vehicle"}
	}
	return nil
}

// CountByAgency counts the vehicles listed by an agency.
func (s *MongoVehicleStore) CountByAgency(ctx context.Context, agencyID int64) (int64, error) {
	if s.Collection == nil {
		return 0, fmt.Errorf("vehicles collection is nil")
	}
	return s.Collection.CountDocuments(ctx, bson.M{"agency_id": agencyID})
}
