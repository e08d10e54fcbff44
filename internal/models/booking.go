package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookingStatus represents the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "Pending"
	BookingApproved  BookingStatus = "Approved"
	BookingCompleted BookingStatus = "Completed"
	BookingCancelled BookingStatus = "Cancelled"
)

// PaymentStatus represents the payment state of a booking.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentPaid      PaymentStatus = "Paid"
	PaymentCancelled PaymentStatus = "Cancelled"
)

// CanonicalBookingStatus resolves a status string case-insensitively to one of
// the four canonical booking statuses.
func CanonicalBookingStatus(s string) (BookingStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return BookingPending, true
	case "approved":
		return BookingApproved, true
	case "completed":
		return BookingCompleted, true
	case "cancelled":
		return BookingCancelled, true
	default:
		return "", false
	}
}

// IsValid reports whether the status is one of the canonical values.
func (s BookingStatus) IsValid() bool {
	_, ok := CanonicalBookingStatus(string(s))
	return ok
}

// Booking represents a customer's reservation of a vehicle for a time window.
// The window is either a calendar-day range (no hour fields) or a same-day
// hour range (start and end hour set, dates equal). CustomerName and
// CustomerNumber are snapshots taken at booking time and are not re-synced
// when the customer profile changes.
type Booking struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	BookingID      int64              `bson:"booking_id" json:"booking_id"`
	CustomerID     int64              `bson:"customer_id" json:"customer_id"`
	VehicleID      int64              `bson:"vehicle_id" json:"vehicle_id"`
	AgencyID       int64              `bson:"agency_id" json:"agency_id"`
	StartDate      time.Time          `bson:"start_date" json:"start_date"`
	EndDate        time.Time          `bson:"end_date" json:"end_date"`
	StartHour      string             `bson:"start_hour,omitempty" json:"start_hour,omitempty"` // "HH:MM", empty for day bookings
	EndHour        string             `bson:"end_hour,omitempty" json:"end_hour,omitempty"`
	CustomerName   string             `bson:"customer_name" json:"customer_name"`
	CustomerNumber string             `bson:"customer_number" json:"customer_number"`
	BookingStatus  BookingStatus      `bson:"booking_status" json:"booking_status"`
	PaymentStatus  PaymentStatus      `bson:"payment_status" json:"payment_status"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// IsHourly reports whether the booking is a same-day hour-range booking.
func (b Booking) IsHourly() bool {
	return b.StartHour != "" && b.EndHour != ""
}

// BookingUpdate carries a partial status update. A nil field is left
// untouched.
type BookingUpdate struct {
	BookingStatus *BookingStatus `json:"booking_status,omitempty"`
	PaymentStatus *PaymentStatus `json:"payment_status,omitempty"`
}

// IsEmpty reports whether the update carries no fields at all.
func (u BookingUpdate) IsEmpty() bool {
	return u.BookingStatus == nil && u.PaymentStatus == nil
}

// BookingRequest is a booking creation request as received at the boundary,
// dates as "2006-01-02" strings and hours as "HH:MM" strings.
type BookingRequest struct {
	CustomerID string `json:"customer_id"`
	VehicleID  string `json:"vehicle_id"`
	AgencyID   string `json:"agency_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	StartHour  string `json:"start_hour,omitempty"`
	EndHour    string `json:"end_hour,omitempty"`
}

// BookingDetail is a booking enriched with the referenced entities, resolved
// by id at read time.
type BookingDetail struct {
	Booking  Booking   `json:"booking"`
	Customer *Customer `json:"customer,omitempty"`
	Vehicle  *Vehicle  `json:"vehicle,omitempty"`
	Agency   *Agency   `json:"agency,omitempty"`
}
