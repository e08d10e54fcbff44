package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/drivehub/rental-marketplace/internal/domain"
	"github.com/drivehub/rental-marketplace/internal/models"
)

// BookingStore defines the interface for booking persistence.
type BookingStore interface {
	Insert(ctx context.Context, booking models.Booking) error
	FindByBookingID(ctx context.Context, bookingID int64) (*models.Booking, error)
	UpdateFields(ctx context.Context, bookingID int64, update models.BookingUpdate) (*models.Booking, error)
	FindAll(ctx context.Context) ([]models.Booking, error)
	FindByDateRange(ctx context.Context, start, end time.Time) ([]models.Booking, error)
	FindOverlapping(ctx context.Context, vehicleID int64, start, end time.Time) ([]models.Booking, error)
	CountsByStatus(ctx context.Context, agencyID int64) (map[string]int64, error)
	CountByAgency(ctx context.Context, agencyID int64) (int64, error)
}

// MongoBookingStore implements BookingStore for MongoDB.
type MongoBookingStore struct {
	Collection *mongo.Collection
}

// Insert inserts a booking record. The booking id must already be assigned.
func (s *MongoBookingStore) Insert(ctx context.Context, booking models.Booking) error {
	if s.Collection == nil {
		return fmt.Errorf("bookings collection is nil")
	}
	_, err := s.Collection.InsertOne(ctx, booking)
	return err
}

// FindByBookingID finds a booking by its numeric id.
func (s *MongoBookingStore) FindByBookingID(ctx context.Context, bookingID int64) (*models.Booking, error) {
	if s.Collection == nil {
		return nil, fmt.Errorf("bookings collection is nil")
	}
	var booking models.Booking
	err := s.Collection.FindOne(ctx, bson.M{"booking_id": bookingID}).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.NotFoundError{Resource: "booking"}
		}
		return nil, err
	}
	return &booking, nil
}

// UpdateFields applies a partial status update and returns the updated
// record. Fields absent from the update are left untouched.
func (s *MongoBookingStore) UpdateFields(ctx context.Context, bookingID int64, update models.BookingUpdate) (*models.Booking, error) {
	if s.Collection == nil {
		return nil, fmt.Errorf("bookings collection is nil")
	}

	set := bson.M{"updated_at": time.Now()}
	if update.BookingStatus != nil {
		set["booking_status"] = *update.BookingStatus
	}
	if update.PaymentStatus != nil {
		set["payment_status"] = *update.PaymentStatus
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var booking models.Booking
	err := s.Collection.FindOneAndUpdate(
		ctx,
		bson.M{"booking_id": bookingID},
		bson.M{"$set": set},
		opts,
	).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.NotFoundError{Resource: "booking"}
		}
		return nil, err
	}
	return &booking, nil
}

// FindAll returns every booking record.
func (s *MongoBookingStore) FindAll(ctx context.Context) ([]models.Booking, error) {
	if s.Collection == nil {
		return nil, fmt.Errorf("bookings collection is nil")
	}
	cursor, err := s.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// FindByDateRange returns bookings whose window overlaps [start, end].
// Callers pass start as start-of-day and end as end-of-day; a booking
// touching either boundary is included.
func (s *MongoBookingStore) FindByDateRange(ctx context.Context, start, end time.Time) ([]models.Booking, error) {
	if s.Collection == nil {
		return nil, fmt.Errorf("bookings collection is nil")
	}
	filter := bson.M{
		"start_date": bson.M{"$lte": end},
		"end_date":   bson.M{"$gte": start},
	}
	cursor, err := s.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// FindOverlapping returns Pending or Approved bookings for a vehicle whose
// window overlaps [start, end].
func (s *MongoBookingStore) FindOverlapping(ctx context.Context, vehicleID int64, start, end time.Time) ([]models.Booking, error) {
	if s.Collection == nil {
		return nil, fmt.Errorf("bookings collection is nil")
	}
	filter := bson.M{
		"vehicle_id":     vehicleID,
		"booking_status": bson.M{"$in": []models.BookingStatus{models.BookingPending, models.BookingApproved}},
		"start_date":     bson.M{"$lte": end},
		"end_date":       bson.M{"$gte": start},
	}
	cursor, err := s.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// CountsByStatus groups an agency's bookings by status.
func (s *MongoBookingStore) CountsByStatus(ctx context.Context, agencyID int64) (map[string]int64, error) {
	if s.Collection == nil {
		return nil, fmt.Errorf("bookings collection is nil")
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"agency_id": agencyID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$booking_status",
			"count": bson.M{"$sum": 1},
		}}},
	}
	cursor, err := s.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// CountByAgency counts all bookings belonging to an agency.
func (s *MongoBookingStore) CountByAgency(ctx context.Context, agencyID int64) (int64, error) {
	if s.Collection == nil {
		return 0, fmt.Errorf("bookings collection is nil")
	}
	return s.Collection.CountDocuments(ctx, bson.M{"agency_id": agencyID})
}
