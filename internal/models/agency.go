package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AgencyStatus represents the moderation state of an agency account.
type AgencyStatus string

const (
	AgencyPending  AgencyStatus = "Pending"
	AgencyApproved AgencyStatus = "Approved"
	AgencyRejected AgencyStatus = "Rejected"
)

// CanonicalAgencyStatus resolves a status string case-insensitively.
func CanonicalAgencyStatus(s string) (AgencyStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return AgencyPending, true
	case "approved":
		return AgencyApproved, true
	case "rejected":
		return AgencyRejected, true
	default:
		return "", false
	}
}

// Agency represents a tenant that lists vehicles for rent. New agencies start
// in the Pending state until an admin approves them.
type Agency struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	AgencyID              int64              `bson:"agency_id" json:"agency_id"`
	AgencyName            string             `bson:"agency_name" json:"agency_name"`
	ContactPerson         string             `bson:"contact_person" json:"contact_person"`
	ContactEmail          string             `bson:"contact_email" json:"contact_email"`
	PhoneNumber           string             `bson:"phone_number" json:"phone_number"`
	BusinessLicenseNumber string             `bson:"business_license_number" json:"business_license_number"`
	OfficeAddress         Address            `bson:"office_address,omitempty" json:"office_address,omitempty"`
	ServiceLocations      []string           `bson:"service_locations,omitempty" json:"service_locations,omitempty"`
	Status                AgencyStatus       `bson:"status" json:"status"`
	PasswordHash          string             `bson:"password_hash" json:"-"`
	RegisteredAt          time.Time          `bson:"registered_at" json:"registered_at"`
	UpdatedAt             time.Time          `bson:"updated_at" json:"updated_at"`
}

// AgencyBookingCounts is the dashboard rollup of an agency's bookings grouped
// by status, plus the agency's vehicle count and display name.
type AgencyBookingCounts struct {
	AgencyName    string `json:"agency_name"`
	Pending       int64  `json:"pending"`
	Approved      int64  `json:"approved"`
	Completed     int64  `json:"completed"`
	Cancelled     int64  `json:"cancelled"`
	TotalBookings int64  `json:"total_bookings"`
	TotalVehicles int64  `json:"total_vehicles"`
}
