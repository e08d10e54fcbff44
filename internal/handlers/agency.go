package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/drivehub/rental-marketplace/internal/agency"
	"github.com/drivehub/rental-marketplace/internal/domain"
	"github.com/drivehub/rental-marketplace/internal/middleware"
	"github.com/drivehub/rental-marketplace/internal/models"
)

// AgencyHandler handles agency dashboard and moderation requests.
type AgencyHandler struct {
	service *agency.Service
}

// NewAgencyHandler creates a new agency handler
func NewAgencyHandler(service *agency.Service) *AgencyHandler {
	return &AgencyHandler{service: service}
}

// BookingCounts returns the per-status booking rollup for an agency.
// Agency tokens can only read their own counts.
func (h *AgencyHandler) BookingCounts(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := models.ParseEntityID(r.PathValue("id"))
	if !ok {
		writeError(w, domain.ValidationError{Msg: "agency id must be a positive number"})
		return
	}

	claims, _ := middleware.GetUserFromContext(r.Context())
	if claims != nil && claims.Role == models.RoleAgency && claims.AccountID != agencyID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	counts, err := h.service.BookingCounts(r.Context(), agencyID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, counts)
}

// SetStatus updates the moderation status of an agency.
func (h *AgencyHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := models.ParseEntityID(r.PathValue("id"))
	if !ok {
		writeError(w, domain.ValidationError{Msg: "agency id must be a positive number"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	updated, err := h.service.SetStatus(r.Context(), agencyID, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Agency status updated successfully",
		"data":    updated,
	})
}
