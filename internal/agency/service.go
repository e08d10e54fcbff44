package agency

import (
	"context"
	"strings"

	"github.com/drivehub/rental-marketplace/internal/db"
	"github.com/drivehub/rental-marketplace/internal/domain"
	"github.com/drivehub/rental-marketplace/internal/models"
)

// Service provides agency dashboard rollups and moderation.
type Service struct {
	Agencies db.AgencyStore
	Bookings db.BookingStore
	Vehicles db.VehicleStore
}

// BookingCounts groups the agency's bookings by status. Statuses are matched
// case-insensitively against the four canonical values; a status with no
// bookings reports zero. The vehicle count is a live count of the agency's
// listed vehicles.
func (s *Service) BookingCounts(ctx context.Context, agencyID int64) (*models.AgencyBookingCounts, error) {
	ag, err := s.Agencies.FindByAgencyID(ctx, agencyID)
	if err != nil {
		return nil, err
	}

	grouped, err := s.Bookings.CountsByStatus(ctx, agencyID)
	if err != nil {
		return nil, err
	}

	counts := models.AgencyBookingCounts{AgencyName: ag.AgencyName}
	for status, n := range grouped {
		counts.TotalBookings += n
		switch strings.ToLower(status) {
		case "pending":
			counts.Pending += n
		case "approved":
			counts.Approved += n
		case "completed":
			counts.Completed += n
		case "cancelled":
			counts.Cancelled += n
		}
	}

	vehicles, err := s.Vehicles.CountByAgency(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	counts.TotalVehicles = vehicles

	return &counts, nil
}

// SetStatus moderates an agency account, moving it between Pending, Approved
// and Rejected.
func (s *Service) SetStatus(ctx context.Context, agencyID int64, status string) (*models.Agency, error) {
	canonical, ok := models.CanonicalAgencyStatus(status)
	if !ok {
		return nil, domain.ValidationError{Code: domain.CodeInvalidStatus, Msg: "unknown agency status"}
	}
	return s.Agencies.UpdateStatus(ctx, agencyID, canonical)
}
