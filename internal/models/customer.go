package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address is a postal address embedded in customer and agency records.
type Address struct {
	Street     string `bson:"street,omitempty" json:"street,omitempty"`
	City       string `bson:"city,omitempty" json:"city,omitempty"`
	State      string `bson:"state,omitempty" json:"state,omitempty"`
	PostalCode string `bson:"postal_code,omitempty" json:"postal_code,omitempty"`
	Country    string `bson:"country,omitempty" json:"country,omitempty"`
}

// Customer represents a customer account. BookingHistory is the append-only
// list of booking ids created for this customer and is the authoritative
// enumeration of their bookings for billing.
type Customer struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	CustomerID     int64              `bson:"customer_id" json:"customer_id"`
	FullName       string             `bson:"full_name" json:"full_name"`
	Email          string             `bson:"email" json:"email"`
	PhoneNumber    string             `bson:"phone_number" json:"phone_number"`
	PasswordHash   string             `bson:"password_hash" json:"-"`
	Address        Address            `bson:"address,omitempty" json:"address,omitempty"`
	BookingHistory []int64            `bson:"booking_history" json:"booking_history"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}
