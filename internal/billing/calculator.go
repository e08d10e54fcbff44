package billing

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/drivehub/rental-marketplace/internal/booking"
	"github.com/drivehub/rental-marketplace/internal/db"
	"github.com/drivehub/rental-marketplace/internal/domain"
	"github.com/drivehub/rental-marketplace/internal/models"
)

// Calculator derives billing entries from a customer's booking history.
// Generation is idempotent: a booking whose window was billed by an earlier
// run is skipped rather than recomputed.
type Calculator struct {
	Customers db.CustomerStore
	Bookings  db.BookingStore
	Vehicles  db.VehicleStore
	Billings  db.BillingStore
	Sequences db.SequenceAllocator

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// customerLock serializes billing runs per customer so the pre-insert
// existence check cannot race with another in-flight run for the same
// customer. Runs for different customers proceed concurrently.
func (c *Calculator) customerLock(customerID int64) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locks == nil {
		c.locks = make(map[int64]*sync.Mutex)
	}
	lock, ok := c.locks[customerID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[customerID] = lock
	}
	return lock
}

// Generate walks the customer's booking history in order, computes a charge
// for each booking not yet billed, persists the new entries and returns them
// with the aggregate total. Bookings or vehicles that vanished from the
// store are logged and skipped rather than failing the sweep.
func (c *Calculator) Generate(ctx context.Context, customerID int64) (*models.BillingResult, error) {
	lock := c.customerLock(customerID)
	lock.Lock()
	defer lock.Unlock()

	customer, err := c.Customers.FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	bookingIDs := dedupe(customer.BookingHistory)
	if len(bookingIDs) == 0 {
		return nil, domain.ValidationError{
			Code: domain.CodeNoBookingHistory,
			Msg:  "no associated booking found for this customer",
		}
	}

	result := models.BillingResult{
		CustomerName: nameOr(customer.FullName, "Unknown Customer"),
		Entries:      []models.Billing{},
	}

	for _, bookingID := range bookingIDs {
		b, err := c.Bookings.FindByBookingID(ctx, bookingID)
		if err != nil {
			if domain.IsNotFound(err) {
				log.WithFields(log.Fields{"booking_id": bookingID, "customer_id": customerID}).
					Warn("Booking in history no longer exists, skipping")
				result.Skipped++
				continue
			}
			return nil, err
		}

		vehicle, err := c.Vehicles.FindByVehicleID(ctx, b.VehicleID)
		if err != nil {
			if domain.IsNotFound(err) {
				log.WithFields(log.Fields{"booking_id": bookingID, "vehicle_id": b.VehicleID}).
					Warn("Booked vehicle no longer exists, skipping")
				result.Skipped++
				continue
			}
			return nil, err
		}

		charge, err := computeCharge(*b, *vehicle)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{"booking_id": bookingID}).
				Warn("Booking has unusable duration data, skipping")
			result.Skipped++
			continue
		}

		exists, err := c.Billings.Exists(ctx, result.CustomerName, charge.vehicleName, b.StartDate, b.EndDate, charge.method)
		if err != nil {
			return nil, err
		}
		if exists {
			result.Skipped++
			continue
		}

		billingID, err := c.Sequences.Next(ctx, db.KindBilling)
		if err != nil {
			return nil, domain.InternalError{Msg: "failed to assign billing id", Err: err}
		}

		entry := models.Billing{
			BillingID:     billingID,
			CustomerName:  result.CustomerName,
			AgencyName:    nameOr(vehicle.AgencyName, "Unknown Agency"),
			VehicleName:   charge.vehicleName,
			StartDate:     b.StartDate,
			EndDate:       b.EndDate,
			StartHour:     amPm(b.StartHour),
			EndHour:       amPm(b.EndHour),
			Days:          charge.days,
			Hours:         charge.hours,
			Rate:          charge.rate,
			HourRate:      charge.hourRate,
			TotalAmount:   charge.amount,
			PricingMethod: charge.method,
			CreatedAt:     time.Now(),
		}
		if err := c.Billings.Insert(ctx, entry); err != nil {
			return nil, domain.InternalError{Msg: "failed to persist billing entry", Err: err}
		}

		result.TotalAmount += charge.amount
		result.Entries = append(result.Entries, entry)
	}

	log.WithFields(log.Fields{
		"customer_id":  customerID,
		"created":      len(result.Entries),
		"skipped":      result.Skipped,
		"total_amount": result.TotalAmount,
	}).Info("Billing run completed")

	return &result, nil
}

type charge struct {
	vehicleName string
	days        int64
	hours       int64
	rate        int64
	hourRate    int64
	amount      int64
	method      models.PricingMethod
}

// computeCharge derives the duration split and amount for one booking.
// Duration is the absolute difference between (startDate+startHour) and
// (endDate+endHour); partial hours are billed as a whole hour. The charge is
// whole days at the day rate plus the hour remainder at the hour rate.
func computeCharge(b models.Booking, v models.Vehicle) (charge, error) {
	start, err := at(b.StartDate, b.StartHour)
	if err != nil {
		return charge{}, err
	}
	end, err := at(b.EndDate, b.EndHour)
	if err != nil {
		return charge{}, err
	}
	if end.Before(start) {
		return charge{}, fmt.Errorf("booking window ends before it starts")
	}

	minutes := int64(end.Sub(start) / time.Minute)
	totalHours := minutes / 60
	if minutes%60 != 0 {
		totalHours++
	}
	days := totalHours / 24
	hours := totalHours % 24

	out := charge{
		vehicleName: nameOr(v.VehicleName, "Unknown Vehicle"),
		days:        days,
		hours:       hours,
		amount:      days*v.PricePerDay + hours*v.PricePerHour,
	}
	switch {
	case days > 0 && hours > 0:
		out.method = models.DayHourSplit
		out.rate = v.PricePerDay
		out.hourRate = v.PricePerHour
	case hours > 0:
		out.method = models.PricePerHour
		out.rate = v.PricePerHour
	default:
		out.method = models.PricePerDay
		out.rate = v.PricePerDay
	}
	return out, nil
}

// at combines a calendar date with an optional "HH:MM" clock value.
func at(date time.Time, clock string) (time.Time, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	if clock == "" {
		return day, nil
	}
	minutes, err := booking.ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(minutes) * time.Minute), nil
}

// amPm formats an "HH:MM" clock value as e.g. "9 AM". Empty input stays
// empty.
func amPm(clock string) string {
	if clock == "" {
		return ""
	}
	minutes, err := booking.ParseClock(clock)
	if err != nil {
		return clock
	}
	hour := minutes / 60
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d %s", display, period)
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func nameOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
