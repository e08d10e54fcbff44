package booking

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/drivehub/rental-marketplace/internal/db"
	"github.com/drivehub/rental-marketplace/internal/domain"
	"github.com/drivehub/rental-marketplace/internal/models"
)

// Scenario classifies a proposed booking window.
type Scenario string

const (
	ScenarioHourlySameDay Scenario = "hourly_same_day"
	ScenarioMultiDay      Scenario = "multi_day"
	ScenarioSingleDay     Scenario = "single_day"
)

// Window is a normalized, classified booking window.
type Window struct {
	Start     time.Time
	End       time.Time
	StartHour string // "HH:MM", empty for day bookings
	EndHour   string
	Scenario  Scenario
}

// Request is a booking request with ids already parsed at the boundary.
type Request struct {
	CustomerID int64
	VehicleID  int64
	AgencyID   int64
	StartDate  time.Time
	EndDate    time.Time
	StartHour  string
	EndHour    string
}

// Validated is a request that passed validation, with the referenced
// entities resolved.
type Validated struct {
	Request
	Window   Window
	Customer *models.Customer
	Vehicle  *models.Vehicle
	Agency   *models.Agency
}

// Validator decides whether a proposed booking is acceptable given "today"
// and policy rules.
type Validator struct {
	Customers db.CustomerStore
	Vehicles  db.VehicleStore
	Agencies  db.AgencyStore
}

// Validate applies the booking policy rules in order: customer resolution,
// vehicle and agency resolution, required dates, then scenario
// classification of the window against now.
func (v Validator) Validate(ctx context.Context, req Request, now time.Time) (*Validated, error) {
	if req.CustomerID <= 0 {
		return nil, domain.ValidationError{Code: domain.CodeInvalidCustomer, Msg: "customer id must be a positive number"}
	}
	customer, err := v.Customers.FindByCustomerID(ctx, req.CustomerID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.ValidationError{Code: domain.CodeInvalidCustomer, Msg: "customer not found", Err: err}
		}
		return nil, err
	}

	vehicle, err := v.Vehicles.FindByVehicleID(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	agency, err := v.Agencies.FindByAgencyID(ctx, req.AgencyID)
	if err != nil {
		return nil, err
	}

	window, err := ClassifyWindow(req.StartDate, req.EndDate, req.StartHour, req.EndHour, now)
	if err != nil {
		return nil, err
	}

	return &Validated{
		Request:  req,
		Window:   window,
		Customer: customer,
		Vehicle:  vehicle,
		Agency:   agency,
	}, nil
}

// ClassifyWindow validates a time window against now and classifies it as
// hourly-same-day, multi-day or single-day.
func ClassifyWindow(start, end time.Time, startHour, endHour string, now time.Time) (Window, error) {
	if start.IsZero() || end.IsZero() {
		return Window{}, domain.ValidationError{Code: domain.CodeMissingFields, Msg: "start date and end date are required"}
	}

	startDay := dayOf(start)
	endDay := dayOf(end)
	today := dayOf(now)

	// Hourly-same-day: both hour fields present.
	if startHour != "" || endHour != "" {
		if startHour == "" || endHour == "" {
			return Window{}, domain.ValidationError{Code: domain.CodeMissingFields, Msg: "both start hour and end hour are required for hourly bookings"}
		}
		startClock, err := ParseClock(startHour)
		if err != nil {
			return Window{}, err
		}
		endClock, err := ParseClock(endHour)
		if err != nil {
			return Window{}, err
		}
		if !startDay.Equal(endDay) {
			return Window{}, domain.ValidationError{Code: domain.CodeHourlyCrossDay, Msg: "start date and end date must be the same for hourly bookings"}
		}
		if startDay.Before(today) {
			return Window{}, domain.ValidationError{Code: domain.CodePastStart, Msg: "start date must not be in the past"}
		}
		if startDay.Equal(today) {
			nowClock := now.Hour()*60 + now.Minute()
			if startClock < nowClock {
				return Window{}, domain.ValidationError{Code: domain.CodePastHour, Msg: "start hour must not be earlier than the current time"}
			}
		}
		if endClock <= startClock {
			return Window{}, domain.ValidationError{Code: domain.CodeOrderViolation, Msg: "end hour must be after start hour"}
		}
		return Window{
			Start:     startDay,
			End:       endDay,
			StartHour: formatClock(startClock),
			EndHour:   formatClock(endClock),
			Scenario:  ScenarioHourlySameDay,
		}, nil
	}

	// Multi-day: no hours, different calendar days.
	if !startDay.Equal(endDay) {
		if startDay.After(endDay) {
			return Window{}, domain.ValidationError{Code: domain.CodeOrderViolation, Msg: "start date must be before end date for daily bookings"}
		}
		if startDay.Before(today) {
			return Window{}, domain.ValidationError{Code: domain.CodePastStart, Msg: "start date must not be in the past"}
		}
		return Window{Start: startDay, End: endDay, Scenario: ScenarioMultiDay}, nil
	}

	// Single-day: no hours, same calendar day.
	if startDay.Before(today) {
		return Window{}, domain.ValidationError{Code: domain.CodePastStart, Msg: "start date must not be in the past"}
	}
	return Window{Start: startDay, End: endDay, Scenario: ScenarioSingleDay}, nil
}

// ParseClock parses "HH:MM" (or bare "HH") into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, domain.ValidationError{Code: domain.CodeInvalidHour, Msg: fmt.Sprintf("invalid hour value %q", s)}
	}
	minute := 0
	if len(parts) == 2 {
		minute, err = strconv.Atoi(parts[1])
		if err != nil || minute < 0 || minute > 59 {
			return 0, domain.ValidationError{Code: domain.CodeInvalidHour, Msg: fmt.Sprintf("invalid minute value %q", s)}
		}
	}
	return hour*60 + minute, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// dayOf truncates a time to midnight of its calendar day.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
