package models

import (
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vehicle represents a vehicle listed by an agency. AgencyName is a snapshot
// taken when the vehicle is created. PricePerDay and PricePerHour are in
// minor currency units.
type Vehicle struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	VehicleID          int64              `bson:"vehicle_id" json:"vehicle_id"`
	AgencyID           int64              `bson:"agency_id" json:"agency_id"`
	AgencyName         string             `bson:"agency_name" json:"agency_name"`
	VehicleName        string             `bson:"vehicle_name" json:"vehicle_name"`
	VehicleNumber      string             `bson:"vehicle_number,omitempty" json:"vehicle_number,omitempty"`
	VehicleType        string             `bson:"vehicle_type,omitempty" json:"vehicle_type,omitempty"`
	Capacity           string             `bson:"capacity,omitempty" json:"capacity,omitempty"`
	Description        string             `bson:"description,omitempty" json:"description,omitempty"`
	RegistrationNumber string             `bson:"registration_number" json:"registration_number"`
	PricePerDay        int64              `bson:"price_per_day" json:"price_per_day"`
	PricePerHour       int64              `bson:"price_per_hour" json:"price_per_hour"`
	Availability       bool               `bson:"availability" json:"availability"`
	Features           []string           `bson:"features,omitempty" json:"features,omitempty"`
	Images             []string           `bson:"images,omitempty" json:"images,omitempty"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`
}

const registrationAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewRegistrationNumber generates a random 10-character registration number.
func NewRegistrationNumber() string {
	b := make([]byte, 10)
	for i := range b {
		b[i] = registrationAlphabet[rand.Intn(len(registrationAlphabet))]
	}
	return string(b)
}
