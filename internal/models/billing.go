package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PricingMethod records how a billing entry was charged.
type PricingMethod string

const (
	PricePerDay  PricingMethod = "pricePerDay"
	PricePerHour PricingMethod = "pricePerHour"
	DayHourSplit PricingMethod = "dayHourSplit"
)

// Billing is an immutable charge record derived from a booking. The name
// fields are snapshots captured at billing time; later renames of the
// customer, agency or vehicle do not touch existing entries. All monetary
// values are in minor currency units.
type Billing struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	BillingID     int64              `bson:"billing_id" json:"billing_id"`
	CustomerName  string             `bson:"customer_name" json:"customer_name"`
	AgencyName    string             `bson:"agency_name" json:"agency_name"`
	VehicleName   string             `bson:"vehicle_name" json:"vehicle_name"`
	StartDate     time.Time          `bson:"start_date" json:"start_date"`
	EndDate       time.Time          `bson:"end_date" json:"end_date"`
	StartHour     string             `bson:"start_hour,omitempty" json:"start_hour,omitempty"` // AM/PM formatted
	EndHour       string             `bson:"end_hour,omitempty" json:"end_hour,omitempty"`
	Days          int64              `bson:"days,omitempty" json:"days,omitempty"`
	Hours         int64              `bson:"hours,omitempty" json:"hours,omitempty"`
	Rate          int64              `bson:"rate" json:"rate"` // day rate for pricePerDay and dayHourSplit, hour rate for pricePerHour
	HourRate      int64              `bson:"hour_rate,omitempty" json:"hour_rate,omitempty"` // set only for dayHourSplit
	TotalAmount   int64              `bson:"total_amount" json:"total_amount"`
	PricingMethod PricingMethod      `bson:"pricing_method" json:"pricing_method"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

// BillingResult is the outcome of one billing run for a customer. Entries
// holds only the entries created by this run; bookings billed by an earlier
// run are counted in Skipped instead.
type BillingResult struct {
	CustomerName string    `json:"customer_name"`
	TotalAmount  int64     `json:"total_amount"`
	Entries      []Billing `json:"entries"`
	Skipped      int       `json:"skipped"`
}
