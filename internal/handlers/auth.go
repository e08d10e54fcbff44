package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/drivehub/rental-marketplace/internal/auth"
	"github.com/drivehub/rental-marketplace/internal/db"
	"github.com/drivehub/rental-marketplace/internal/models"
)

// AuthHandler handles registration and login for customers and agencies.
type AuthHandler struct {
	authService *auth.Service
	customers   db.CustomerStore
	agencies    db.AgencyStore
	sequences   db.SequenceAllocator
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, customers db.CustomerStore, agencies db.AgencyStore, sequences db.SequenceAllocator) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		customers:   customers,
		agencies:    agencies,
		sequences:   sequences,
	}
}

// RegisterCustomer handles customer registration
func (h *AuthHandler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req models.CustomerRegisterRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.FullName == "" || req.PhoneNumber == "" {
		http.Error(w, "Full name and phone number are required", http.StatusBadRequest)
		return
	}
	if err := h.authService.ValidateEmail(req.Email); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.authService.ValidatePassword(req.Password); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Check if email already exists
	if _, err := h.customers.FindByEmail(r.Context(), req.Email); err == nil {
		http.Error(w, "Email already exists", http.StatusConflict)
		return
	}

	passwordHash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	customerID, err := h.sequences.Next(r.Context(), db.KindCustomer)
	if err != nil {
		http.Error(w, "Failed to allocate customer id", http.StatusInternalServerError)
		return
	}

	customer := models.Customer{
		CustomerID:     customerID,
		FullName:       req.FullName,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		PasswordHash:   passwordHash,
		Address:        req.Address,
		BookingHistory: []int64{},
	}

	if err := h.customers.Insert(r.Context(), customer); err != nil {
		http.Error(w, "Failed to create customer", http.StatusInternalServerError)
		return
	}

	token, err := h.authService.GenerateToken(customerID, customer.FullName, models.RoleCustomer)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	log.WithFields(log.Fields{
		"customer_id": customerID,
		"email":       req.Email,
	}).Info("Customer registered")

	writeJSON(w, http.StatusCreated, models.LoginResponse{
		Token:     token,
		AccountID: customerID,
		Role:      models.RoleCustomer,
		Name:      customer.FullName,
	})
}

// RegisterAgency handles agency registration. New agencies start in the
// Pending state and cannot log in until an admin approves them.
func (h *AuthHandler) RegisterAgency(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req models.AgencyRegisterRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.AgencyName == "" || req.ContactPerson == "" || req.PhoneNumber == "" || req.BusinessLicenseNumber == "" {
		http.Error(w, "Agency name, contact person, phone number and license number are required", http.StatusBadRequest)
		return
	}
	if err := h.authService.ValidateEmail(req.ContactEmail); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.authService.ValidatePassword(req.Password); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	candidate := models.Agency{
		AgencyName:            req.AgencyName,
		ContactEmail:          req.ContactEmail,
		PhoneNumber:           req.PhoneNumber,
		BusinessLicenseNumber: req.BusinessLicenseNumber,
	}
	existing, err := h.agencies.FindDuplicate(r.Context(), candidate)
	if err != nil {
		http.Error(w, "Failed to check existing agencies", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		switch {
		case existing.AgencyName == req.AgencyName:
			http.Error(w, "Agency name already exists", http.StatusConflict)
		case existing.BusinessLicenseNumber == req.BusinessLicenseNumber:
			http.Error(w, "Business license number already registered", http.StatusConflict)
		case existing.ContactEmail == req.ContactEmail:
			http.Error(w, "Email already exists", http.StatusConflict)
		default:
			http.Error(w, "Phone number already registered", http.StatusConflict)
		}
		return
	}

	passwordHash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	agencyID, err := h.sequences.Next(r.Context(), db.KindAgency)
	if err != nil {
		http.Error(w, "Failed to allocate agency id", http.StatusInternalServerError)
		return
	}

	agency := models.Agency{
		AgencyID:              agencyID,
		AgencyName:            req.AgencyName,
		ContactPerson:         req.ContactPerson,
		ContactEmail:          req.ContactEmail,
		PhoneNumber:           req.PhoneNumber,
		BusinessLicenseNumber: req.BusinessLicenseNumber,
		OfficeAddress:         req.OfficeAddress,
		ServiceLocations:      req.ServiceLocations,
		Status:                models.AgencyPending,
		PasswordHash:          passwordHash,
	}

	if err := h.agencies.Insert(r.Context(), agency); err != nil {
		http.Error(w, "Failed to create agency", http.StatusInternalServerError)
		return
	}

	log.WithFields(log.Fields{
		"agency_id":   agencyID,
		"agency_name": req.AgencyName,
	}).Info("Agency registered, pending approval")

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Agency registered successfully, awaiting approval",
		"agency_id": agencyID,
		"status":    models.AgencyPending,
	})
}

// Login handles login for all roles. The role field selects which account
// collection is consulted.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var loginReq models.LoginRequest
	if err := json.Unmarshal(body, &loginReq); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if loginReq.Email == "" || loginReq.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}
	if loginReq.Role == "" {
		loginReq.Role = models.RoleCustomer
	}

	switch loginReq.Role {
	case models.RoleCustomer:
		h.loginCustomer(w, r, loginReq)
	case models.RoleAgency:
		h.loginAgency(w, r, loginReq)
	case models.RoleAdmin:
		h.loginAdmin(w, loginReq)
	default:
		http.Error(w, "Invalid role", http.StatusBadRequest)
	}
}

func (h *AuthHandler) loginCustomer(w http.ResponseWriter, r *http.Request, req models.LoginRequest) {
	customer, err := h.customers.FindByEmail(r.Context(), req.Email)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if !h.authService.CheckPassword(req.Password, customer.PasswordHash) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.authService.GenerateToken(customer.CustomerID, customer.FullName, models.RoleCustomer)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Token:     token,
		AccountID: customer.CustomerID,
		Role:      models.RoleCustomer,
		Name:      customer.FullName,
	})
}

func (h *AuthHandler) loginAgency(w http.ResponseWriter, r *http.Request, req models.LoginRequest) {
	agency, err := h.agencies.FindByEmail(r.Context(), req.Email)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if !h.authService.CheckPassword(req.Password, agency.PasswordHash) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if agency.Status != models.AgencyApproved {
		http.Error(w, "Agency is not approved", http.StatusForbidden)
		return
	}

	token, err := h.authService.GenerateToken(agency.AgencyID, agency.AgencyName, models.RoleAgency)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Token:     token,
		AccountID: agency.AgencyID,
		Role:      models.RoleAgency,
		Name:      agency.AgencyName,
	})
}

// loginAdmin authenticates against the operator credentials configured in
// the environment. There is no admin collection.
func (h *AuthHandler) loginAdmin(w http.ResponseWriter, req models.LoginRequest) {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		http.Error(w, "Admin login is not configured", http.StatusUnauthorized)
		return
	}
	if req.Email != adminEmail || req.Password != adminPassword {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.authService.GenerateToken(1, "Administrator", models.RoleAdmin)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	log.WithField("time", time.Now().Format(time.RFC3339)).Info("Admin logged in")

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Token:     token,
		AccountID: 1,
		Role:      models.RoleAdmin,
		Name:      "Administrator",
	})
}
