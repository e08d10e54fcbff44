package booking

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/drivehub/rental-marketplace/internal/db"
	"github.com/drivehub/rental-marketplace/internal/domain"
	"github.com/drivehub/rental-marketplace/internal/events"
	"github.com/drivehub/rental-marketplace/internal/models"
)

// Service creates and manages booking records.
type Service struct {
	Bookings  db.BookingStore
	Customers db.CustomerStore
	Vehicles  db.VehicleStore
	Agencies  db.AgencyStore
	Sequences db.SequenceAllocator
	Events    *events.Publisher

	// OverlapCheck rejects a new booking when a Pending or Approved booking
	// for the same vehicle overlaps its window.
	OverlapCheck bool
}

func (s *Service) validator() Validator {
	return Validator{Customers: s.Customers, Vehicles: s.Vehicles, Agencies: s.Agencies}
}

// Create validates the request, assigns the next booking id, persists the
// booking with a snapshot of the customer's name and phone, and appends the
// id to the customer's booking history.
func (s *Service) Create(ctx context.Context, req Request, now time.Time) (*models.Booking, error) {
	validated, err := s.validator().Validate(ctx, req, now)
	if err != nil {
		return nil, err
	}

	if s.OverlapCheck {
		existing, err := s.Bookings.FindOverlapping(ctx, req.VehicleID, validated.Window.Start, endOfDay(validated.Window.End))
		if err != nil {
			return nil, domain.InternalError{Msg: "failed to check booking overlap", Err: err}
		}
		if len(existing) > 0 {
			return nil, domain.ConflictError{Resource: "booking", Msg: "vehicle is already booked for an overlapping window"}
		}
	}

	bookingID, err := s.Sequences.Next(ctx, db.KindBooking)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to assign booking id", Err: err}
	}

	booking := models.Booking{
		BookingID:      bookingID,
		CustomerID:     req.CustomerID,
		VehicleID:      req.VehicleID,
		AgencyID:       req.AgencyID,
		StartDate:      validated.Window.Start,
		EndDate:        validated.Window.End,
		StartHour:      validated.Window.StartHour,
		EndHour:        validated.Window.EndHour,
		CustomerName:   validated.Customer.FullName,
		CustomerNumber: validated.Customer.PhoneNumber,
		BookingStatus:  models.BookingPending,
		PaymentStatus:  models.PaymentPending,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := s.Bookings.Insert(ctx, booking); err != nil {
		return nil, domain.InternalError{Msg: "failed to persist booking", Err: err}
	}

	if err := s.Customers.AppendBookingHistory(ctx, req.CustomerID, bookingID); err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NotFoundError{Resource: "customer", Err: err}
		}
		return nil, domain.InternalError{Msg: "failed to record booking history", Err: err}
	}

	log.WithFields(log.Fields{
		"booking_id":  bookingID,
		"customer_id": req.CustomerID,
		"vehicle_id":  req.VehicleID,
		"scenario":    validated.Window.Scenario,
	}).Info("Booking created")
	s.Events.BookingCreated(booking)

	return &booking, nil
}

// UpdateStatus applies a partial booking/payment status update.
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, update models.BookingUpdate) (*models.Booking, error) {
	if update.IsEmpty() {
		return nil, domain.ValidationError{
			Code: domain.CodeNoFieldsProvided,
			Msg:  "at least one of booking status or payment status must be provided",
		}
	}
	if update.BookingStatus != nil {
		status, ok := models.CanonicalBookingStatus(string(*update.BookingStatus))
		if !ok {
			return nil, domain.ValidationError{Code: domain.CodeInvalidStatus, Msg: "unknown booking status"}
		}
		update.BookingStatus = &status
	}

	booking, err := s.Bookings.UpdateFields(ctx, bookingID, update)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"booking_id":     bookingID,
		"booking_status": booking.BookingStatus,
		"payment_status": booking.PaymentStatus,
	}).Info("Booking status updated")
	s.Events.BookingStatusChanged(*booking)

	return booking, nil
}

// GetByID returns a booking enriched with its customer, vehicle and agency,
// resolved by id. A referenced entity that no longer exists is left nil.
func (s *Service) GetByID(ctx context.Context, bookingID int64) (*models.BookingDetail, error) {
	booking, err := s.Bookings.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	detail := s.enrich(ctx, *booking)
	return &detail, nil
}

// ListAll returns every booking, enriched like GetByID.
func (s *Service) ListAll(ctx context.Context) ([]models.BookingDetail, error) {
	bookings, err := s.Bookings.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	details := make([]models.BookingDetail, 0, len(bookings))
	for _, b := range bookings {
		details = append(details, s.enrich(ctx, b))
	}
	return details, nil
}

// ListByDateRange returns bookings whose window overlaps [start, end] at day
// granularity. A booking touching either boundary day is included.
func (s *Service) ListByDateRange(ctx context.Context, start, end time.Time) ([]models.Booking, error) {
	if start.After(end) {
		return nil, domain.ValidationError{Code: domain.CodeStartAfterEnd, Msg: "start date cannot be later than end date"}
	}
	bookings, err := s.Bookings.FindByDateRange(ctx, dayOf(start), endOfDay(end))
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return bookings, nil
}

func (s *Service) enrich(ctx context.Context, booking models.Booking) models.BookingDetail {
	detail := models.BookingDetail{Booking: booking}

	customer, err := s.Customers.FindByCustomerID(ctx, booking.CustomerID)
	if err != nil {
		log.WithFields(log.Fields{"booking_id": booking.BookingID, "customer_id": booking.CustomerID}).
			Warn("Booking references missing customer")
	} else {
		detail.Customer = customer
	}

	vehicle, err := s.Vehicles.FindByVehicleID(ctx, booking.VehicleID)
	if err != nil {
		log.WithFields(log.Fields{"booking_id": booking.BookingID, "vehicle_id": booking.VehicleID}).
			Warn("Booking references missing vehicle")
	} else {
		detail.Vehicle = vehicle
	}

	agency, err := s.Agencies.FindByAgencyID(ctx, booking.AgencyID)
	if err != nil {
		log.WithFields(log.Fields{"booking_id": booking.BookingID, "agency_id": booking.AgencyID}).
			Warn("Booking references missing agency")
	} else {
		detail.Agency = agency
	}

	return detail
}

// endOfDay returns the last instant of the day containing t.
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
