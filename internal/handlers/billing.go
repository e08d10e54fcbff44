package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/drivehub/rental-marketplace/internal/billing"
	"github.com/drivehub/rental-marketplace/internal/domain"
	"github.com/drivehub/rental-marketplace/internal/middleware"
	"github.com/drivehub/rental-marketplace/internal/models"
)

// BillingHandler handles billing generation requests.
type BillingHandler struct {
	calculator *billing.Calculator
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(calculator *billing.Calculator) *BillingHandler {
	return &BillingHandler{calculator: calculator}
}

// Generate runs billing for a customer's whole booking history. Customers
// can only bill themselves; agency and admin tokens name the customer in
// the body.
func (h *BillingHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var customerID int64

	claims, _ := middleware.GetUserFromContext(r.Context())
	if claims != nil && claims.Role == models.RoleCustomer {
		customerID = claims.AccountID
	} else {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}

		var req struct {
			CustomerID string `json:"customer_id"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		id, ok := models.ParseEntityID(req.CustomerID)
		if !ok {
			writeError(w, domain.ValidationError{Code: domain.CodeInvalidCustomer, Msg: "customer id must be a positive number"})
			return
		}
		customerID = id
	}

	result, err := h.calculator.Generate(r.Context(), customerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":       "Billing created successfully for all bookings",
		"customer_name": result.CustomerName,
		"total_amount":  result.TotalAmount,
		"entries":       result.Entries,
		"skipped":       result.Skipped,
	})
}
