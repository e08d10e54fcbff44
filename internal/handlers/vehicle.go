package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/drivehub/rental-marketplace/internal/db"
	"github.com/drivehub/rental-marketplace/internal/domain"
	"github.com/drivehub/rental-marketplace/internal/middleware"
	"github.com/drivehub/rental-marketplace/internal/models"
)

// VehicleHandler handles vehicle listing management.
type VehicleHandler struct {
	vehicles  db.VehicleStore
	agencies  db.AgencyStore
	sequences db.SequenceAllocator
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(vehicles db.VehicleStore, agencies db.AgencyStore, sequences db.SequenceAllocator) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles, agencies: agencies, sequences: sequences}
}

type vehicleRequest struct {
	VehicleName   string   `json:"vehicle_name"`
	VehicleNumber string   `json:"vehicle_number"`
	VehicleType   string   `json:"vehicle_type"`
	Capacity      string   `json:"capacity"`
	Description   string   `json:"description"`
	PricePerDay   int64    `json:"price_per_day"`
	PricePerHour  int64    `json:"price_per_hour"`
	Availability  *bool    `json:"availability"`
	Features      []string `json:"features"`
	Images        []string `json:"images"`
}

// Create lists a new vehicle under the calling agency. Admin tokens may
// pass an explicit agency_id query parameter.
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := h.resolveAgencyID(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req vehicleRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.VehicleName == "" {
		writeError(w, domain.ValidationError{Msg: "vehicle name is required"})
		return
	}
	if req.PricePerDay < 0 || req.PricePerHour < 0 {
		writeError(w, domain.ValidationError{Msg: "prices must not be negative"})
		return
	}

	owner, err := h.agencies.FindByAgencyID(r.Context(), agencyID)
	if err != nil {
		writeError(w, err)
		return
	}

	vehicleID, err := h.sequences.Next(r.Context(), db.KindVehicle)
	if err != nil {
		http.Error(w, "Failed to allocate vehicle id", http.StatusInternalServerError)
		return
	}

	availability := true
	if req.Availability != nil {
		availability = *req.Availability
	}

	vehicle := models.Vehicle{
		VehicleID:          vehicleID,
		AgencyID:           agencyID,
		AgencyName:         owner.AgencyName,
		VehicleName:        req.VehicleName,
		VehicleNumber:      req.VehicleNumber,
		VehicleType:        req.VehicleType,
		Capacity:           req.Capacity,
		Description:        req.Description,
		RegistrationNumber: models.NewRegistrationNumber(),
		PricePerDay:        req.PricePerDay,
		PricePerHour:       req.PricePerHour,
		Availability:       availability,
		Features:           req.Features,
		Images:             req.Images,
	}

	if err := h.vehicles.Insert(r.Context(), vehicle); err != nil {
		http.Error(w, "Failed to create vehicle", http.StatusInternalServerError)
		return
	}

	log.WithFields(log.Fields{
		"vehicle_id": vehicleID,
		"agency_id":  agencyID,
	}).Info("Vehicle listed")

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Vehicle created successfully",
		"data":    vehicle,
	})
}

// GetByID returns a single vehicle.
func (h *VehicleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := models.ParseEntityID(r.PathValue("id"))
	if !ok {
		writeError(w, domain.ValidationError{Msg: "vehicle id must be a positive number"})
		return
	}

	vehicle, err := h.vehicles.FindByVehicleID(r.Context(), vehicleID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, vehicle)
}

// ListByAgency returns all vehicles listed by an agency.
func (h *VehicleHandler) ListByAgency(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := models.ParseEntityID(r.PathValue("id"))
	if !ok {
		writeError(w, domain.ValidationError{Msg: "agency id must be a positive number"})
		return
	}

	vehicles, err := h.vehicles.FindByAgency(r.Context(), agencyID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(vehicles),
		"data":  vehicles,
	})
}

// Update modifies a vehicle listing owned by the calling agency.
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := models.ParseEntityID(r.PathValue("id"))
	if !ok {
		writeError(w, domain.ValidationError{Msg: "vehicle id must be a positive number"})
		return
	}

	existing, err := h.vehicles.FindByVehicleID(r.Context(), vehicleID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !h.canManage(r, existing.AgencyID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req vehicleRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.VehicleName != "" {
		existing.VehicleName = req.VehicleName
	}
	if req.VehicleNumber != "" {
		existing.VehicleNumber = req.VehicleNumber
	}
	if req.VehicleType != "" {
		existing.VehicleType = req.VehicleType
	}
	if req.Capacity != "" {
		existing.Capacity = req.Capacity
	}
	if req.Description != "" {
		existing.Description = req.Description
	}
	if req.PricePerDay > 0 {
		existing.PricePerDay = req.PricePerDay
	}
	if req.PricePerHour > 0 {
		existing.PricePerHour = req.PricePerHour
	}
	if req.Availability != nil {
		existing.Availability = *req.Availability
	}
	if req.Features != nil {
		existing.Features = req.Features
	}
	if req.Images != nil {
		existing.Images = req.Images
	}

	if err := h.vehicles.Update(r.Context(), vehicleID, *existing); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Vehicle updated successfully",
		"data":    existing,
	})
}

// Delete removes a vehicle listing owned by the calling agency.
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := models.ParseEntityID(r.PathValue("id"))
	if !ok {
		writeError(w, domain.ValidationError{Msg: "vehicle id must be a positive number"})
		return
	}

	existing, err := h.vehicles.FindByVehicleID(r.Context(), vehicleID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !h.canManage(r, existing.AgencyID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := h.vehicles.Delete(r.Context(), vehicleID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Vehicle deleted successfully"})
}

// resolveAgencyID decides which agency a mutating vehicle request acts for.
func (h *VehicleHandler) resolveAgencyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	claims, _ := middleware.GetUserFromContext(r.Context())
	if claims != nil && claims.Role == models.RoleAgency {
		return claims.AccountID, true
	}
	id, ok := models.ParseEntityID(r.URL.Query().Get("agency_id"))
	if !ok {
		writeError(w, domain.ValidationError{Msg: "agency_id must be a positive number"})
		return 0, false
	}
	return id, true
}

func (h *VehicleHandler) canManage(r *http.Request, ownerID int64) bool {
	claims, _ := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		return false
	}
	if claims.Role == models.RoleAdmin {
		return true
	}
	return claims.Role == models.RoleAgency && claims.AccountID == ownerID
}
