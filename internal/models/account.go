package models

import (
	"strconv"
	"strings"
)

// Role represents account roles in the system.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAgency   Role = "agency"
	RoleAdmin    Role = "admin"
)

// IsValidRole checks if a role is valid.
func IsValidRole(role Role) bool {
	switch role {
	case RoleCustomer, RoleAgency, RoleAdmin:
		return true
	default:
		return false
	}
}

// Claims represents JWT claims for an authenticated account.
type Claims struct {
	AccountID int64  `json:"account_id"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	Exp       int64  `json:"exp"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// LoginResponse represents a successful login response.
type LoginResponse struct {
	Token     string `json:"token"`
	AccountID int64  `json:"account_id"`
	Role      Role   `json:"role"`
	Name      string `json:"name"`
}

// CustomerRegisterRequest represents a customer registration request.
type CustomerRegisterRequest struct {
	FullName    string  `json:"full_name"`
	Email       string  `json:"email"`
	PhoneNumber string  `json:"phone_number"`
	Password    string  `json:"password"`
	Address     Address `json:"address,omitempty"`
}

// AgencyRegisterRequest represents an agency registration request.
type AgencyRegisterRequest struct {
	AgencyName            string   `json:"agency_name"`
	ContactPerson         string   `json:"contact_person"`
	ContactEmail          string   `json:"contact_email"`
	PhoneNumber           string   `json:"phone_number"`
	BusinessLicenseNumber string   `json:"business_license_number"`
	Password              string   `json:"password"`
	OfficeAddress         Address  `json:"office_address,omitempty"`
	ServiceLocations      []string `json:"service_locations,omitempty"`
}

// ParseEntityID parses an external identifier into a positive numeric id.
// All ids arriving from requests pass through here before reaching the core.
func ParseEntityID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
