package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/drivehub/rental-marketplace/internal/booking"
	"github.com/drivehub/rental-marketplace/internal/domain"
	"github.com/drivehub/rental-marketplace/internal/middleware"
	"github.com/drivehub/rental-marketplace/internal/models"
)

const dateLayout = "2006-01-02"

// BookingHandler handles booking requests.
type BookingHandler struct {
	service *booking.Service
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(service *booking.Service) *BookingHandler {
	return &BookingHandler{service: service}
}

// Create handles booking creation. Customers always book for themselves;
// the customer id in the body is ignored for customer tokens.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req models.BookingRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	var serviceReq booking.Request

	claims, _ := middleware.GetUserFromContext(r.Context())
	if claims != nil && claims.Role == models.RoleCustomer {
		serviceReq.CustomerID = claims.AccountID
	} else {
		id, ok := models.ParseEntityID(req.CustomerID)
		if !ok {
			writeError(w, domain.ValidationError{Code: domain.CodeInvalidCustomer, Msg: "customer id must be a positive number"})
			return
		}
		serviceReq.CustomerID = id
	}

	vehicleID, ok := models.ParseEntityID(req.VehicleID)
	if !ok {
		writeError(w, domain.ValidationError{Msg: "vehicle id must be a positive number"})
		return
	}
	agencyID, ok := models.ParseEntityID(req.AgencyID)
	if !ok {
		writeError(w, domain.ValidationError{Msg: "agency id must be a positive number"})
		return
	}
	serviceReq.VehicleID = vehicleID
	serviceReq.AgencyID = agencyID

	if req.StartDate == "" || req.EndDate == "" {
		writeError(w, domain.ValidationError{Code: domain.CodeMissingFields, Msg: "start date and end date are required"})
		return
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		writeError(w, domain.ValidationError{Code: domain.CodeInvalidDateFormat, Msg: "start date must be in YYYY-MM-DD format"})
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		writeError(w, domain.ValidationError{Code: domain.CodeInvalidDateFormat, Msg: "end date must be in YYYY-MM-DD format"})
		return
	}
	serviceReq.StartDate = start
	serviceReq.EndDate = end
	serviceReq.StartHour = req.StartHour
	serviceReq.EndHour = req.EndHour

	created, err := h.service.Create(r.Context(), serviceReq, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Booking created successfully",
		"data":    created,
	})
}

// UpdateStatus handles partial updates of booking and payment status.
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := models.ParseEntityID(r.PathValue("id"))
	if !ok {
		writeError(w, domain.ValidationError{Msg: "booking id must be a positive number"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var update models.BookingUpdate
	if err := json.Unmarshal(body, &update); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateStatus(r.Context(), bookingID, update)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Booking updated successfully",
		"data":    updated,
	})
}

// GetByID returns a single booking with its related customer, vehicle and
// agency records.
func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := models.ParseEntityID(r.PathValue("id"))
	if !ok {
		writeError(w, domain.ValidationError{Msg: "booking id must be a positive number"})
		return
	}

	detail, err := h.service.GetByID(r.Context(), bookingID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// ListAll returns all bookings with related records.
func (h *BookingHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	details, err := h.service.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(details),
		"data":  details,
	})
}

// ListByDate returns bookings whose window touches the inclusive date range
// given by the start_date and end_date query parameters.
func (h *BookingHandler) ListByDate(w http.ResponseWriter, r *http.Request) {
	startStr := r.URL.Query().Get("start_date")
	endStr := r.URL.Query().Get("end_date")
	if startStr == "" || endStr == "" {
		writeError(w, domain.ValidationError{Code: domain.CodeMissingFields, Msg: "start_date and end_date are required"})
		return
	}

	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		writeError(w, domain.ValidationError{Code: domain.CodeInvalidDateFormat, Msg: "start_date must be in YYYY-MM-DD format"})
		return
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		writeError(w, domain.ValidationError{Code: domain.CodeInvalidDateFormat, Msg: "end_date must be in YYYY-MM-DD format"})
		return
	}

	bookings, err := h.service.ListByDateRange(r.Context(), start, end)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(bookings),
		"data":  bookings,
	})
}
