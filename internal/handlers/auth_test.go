package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/drivehub/rental-marketplace/internal/auth"
	"github.com/drivehub/rental-marketplace/internal/domain"
	"github.com/drivehub/rental-marketplace/internal/models"
)

type mockCustomerStore struct{ mock.Mock }

func (m *mockCustomerStore) Insert(ctx context.Context, customer models.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *mockCustomerStore) FindByCustomerID(ctx context.Context, customerID int64) (*models.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *mockCustomerStore) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *mockCustomerStore) AppendBookingHistory(ctx context.Context, customerID, bookingID int64) error {
	return m.Called(ctx, customerID, bookingID).Error(0)
}

type mockAgencyStore struct{ mock.Mock }

func (m *mockAgencyStore) Insert(ctx context.Context, agency models.Agency) error {
	return m.Called(ctx, agency).Error(0)
}

func (m *mockAgencyStore) FindByAgencyID(ctx context.Context, agencyID int64) (*models.Agency, error) {
	args := m.Called(ctx, agencyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agency), args.Error(1)
}

func (m *mockAgencyStore) FindByEmail(ctx context.Context, email string) (*models.Agency, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agency), args.Error(1)
}

func (m *mockAgencyStore) FindDuplicate(ctx context.Context, agency models.Agency) (*models.Agency, error) {
	args := m.Called(ctx, agency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agency), args.Error(1)
}

func (m *mockAgencyStore) UpdateStatus(ctx context.Context, agencyID int64, status models.AgencyStatus) (*models.Agency, error) {
	args := m.Called(ctx, agencyID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agency), args.Error(1)
}

type mockSequences struct{ mock.Mock }

func (m *mockSequences) Next(ctx context.Context, kind string) (int64, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).(int64), args.Error(1)
}

func newAuthFixture(t *testing.T) (*AuthHandler, *mockCustomerStore, *mockAgencyStore, *mockSequences, *auth.Service) {
	t.Helper()
	authService, err := auth.NewService()
	assert.NoError(t, err)
	customers := new(mockCustomerStore)
	agencies := new(mockAgencyStore)
	sequences := new(mockSequences)
	return NewAuthHandler(authService, customers, agencies, sequences), customers, agencies, sequences, authService
}

func postBody(t *testing.T, target string, payload interface{}) *http.Request {
	t.Helper()
	data, err := json.Marshal(payload)
	assert.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, target, bytes.NewBuffer(data))
}

func TestRegisterCustomer_Success(t *testing.T) {
	handler, customers, _, sequences, _ := newAuthFixture(t)

	customers.On("FindByEmail", mock.Anything, "ada@example.com").
		Return(nil, domain.NotFoundError{Resource: "customer"})
	sequences.On("Next", mock.Anything, "customer").Return(int64(5), nil)
	customers.On("Insert", mock.Anything, mock.MatchedBy(func(c models.Customer) bool {
		return c.CustomerID == 5 && c.Email == "ada@example.com" && c.PasswordHash != "" && c.PasswordHash != "secret123"
	})).Return(nil)

	req := postBody(t, "/api/auth/register/customer", map[string]string{
		"full_name":    "Ada Lovelace",
		"email":        "ada@example.com",
		"phone_number": "+15550001",
		"password":     "secret123",
	})
	w := httptest.NewRecorder()
	handler.RegisterCustomer(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp models.LoginResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(5), resp.AccountID)
	assert.Equal(t, models.RoleCustomer, resp.Role)
	assert.NotEmpty(t, resp.Token)
	customers.AssertExpectations(t)
}

func TestRegisterCustomer_DuplicateEmail(t *testing.T) {
	handler, customers, _, _, _ := newAuthFixture(t)

	customers.On("FindByEmail", mock.Anything, "ada@example.com").
		Return(&models.Customer{CustomerID: 1, Email: "ada@example.com"}, nil)

	req := postBody(t, "/api/auth/register/customer", map[string]string{
		"full_name":    "Ada Lovelace",
		"email":        "ada@example.com",
		"phone_number": "+15550001",
		"password":     "secret123",
	})
	w := httptest.NewRecorder()
	handler.RegisterCustomer(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterCustomer_ShortPassword(t *testing.T) {
	handler, _, _, _, _ := newAuthFixture(t)

	req := postBody(t, "/api/auth/register/customer", map[string]string{
		"full_name":    "Ada Lovelace",
		"email":        "ada@example.com",
		"phone_number": "+15550001",
		"password":     "short",
	})
	w := httptest.NewRecorder()
	handler.RegisterCustomer(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterAgency_StartsPending(t *testing.T) {
	handler, _, agencies, sequences, _ := newAuthFixture(t)

	agencies.On("FindDuplicate", mock.Anything, mock.Anything).Return(nil, nil)
	sequences.On("Next", mock.Anything, "agency").Return(int64(3), nil)
	agencies.On("Insert", mock.Anything, mock.MatchedBy(func(a models.Agency) bool {
		return a.AgencyID == 3 && a.Status == models.AgencyPending
	})).Return(nil)

	req := postBody(t, "/api/auth/register/agency", map[string]string{
		"agency_name":             "Sim Rentals",
		"contact_person":          "Sim Operator",
		"contact_email":           "ops@simrentals.com",
		"phone_number":            "+15550002",
		"business_license_number": "LIC-1",
		"password":                "secret123",
	})
	w := httptest.NewRecorder()
	handler.RegisterAgency(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	agencies.AssertExpectations(t)
}

func TestRegisterAgency_DuplicateLicense(t *testing.T) {
	handler, _, agencies, _, _ := newAuthFixture(t)

	agencies.On("FindDuplicate", mock.Anything, mock.Anything).
		Return(&models.Agency{AgencyID: 9, BusinessLicenseNumber: "LIC-1"}, nil)

	req := postBody(t, "/api/auth/register/agency", map[string]string{
		"agency_name":             "Sim Rentals",
		"contact_person":          "Sim Operator",
		"contact_email":           "ops@simrentals.com",
		"phone_number":            "+15550002",
		"business_license_number": "LIC-1",
		"password":                "secret123",
	})
	w := httptest.NewRecorder()
	handler.RegisterAgency(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_CustomerSuccess(t *testing.T) {
	handler, customers, _, _, authService := newAuthFixture(t)

	hash, err := authService.HashPassword("secret123")
	assert.NoError(t, err)
	customers.On("FindByEmail", mock.Anything, "ada@example.com").
		Return(&models.Customer{CustomerID: 5, FullName: "Ada", Email: "ada@example.com", PasswordHash: hash}, nil)

	req := postBody(t, "/api/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "secret123",
		"role":     "customer",
	})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.LoginResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(5), resp.AccountID)

	claims, err := authService.ValidateToken(resp.Token)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, claims.Role)
	assert.True(t, claims.Exp > time.Now().Unix())
}

func TestLogin_WrongPassword(t *testing.T) {
	handler, customers, _, _, authService := newAuthFixture(t)

	hash, err := authService.HashPassword("secret123")
	assert.NoError(t, err)
	customers.On("FindByEmail", mock.Anything, "ada@example.com").
		Return(&models.Customer{CustomerID: 5, PasswordHash: hash}, nil)

	req := postBody(t, "/api/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong-password",
		"role":     "customer",
	})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_PendingAgencyRejected(t *testing.T) {
	handler, _, agencies, _, authService := newAuthFixture(t)

	hash, err := authService.HashPassword("secret123")
	assert.NoError(t, err)
	agencies.On("FindByEmail", mock.Anything, "ops@simrentals.com").
		Return(&models.Agency{AgencyID: 3, Status: models.AgencyPending, PasswordHash: hash}, nil)

	req := postBody(t, "/api/auth/login", map[string]string{
		"email":    "ops@simrentals.com",
		"password": "secret123",
		"role":     "agency",
	})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLogin_AdminFromEnv(t *testing.T) {
	handler, _, _, _, _ := newAuthFixture(t)
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD", "admin-secret")

	req := postBody(t, "/api/auth/login", map[string]string{
		"email":    "admin@example.com",
		"password": "admin-secret",
		"role":     "admin",
	})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.LoginResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.RoleAdmin, resp.Role)
}
