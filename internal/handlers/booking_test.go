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

	"github.com/drivehub/rental-marketplace/internal/billing"
	"github.com/drivehub/rental-marketplace/internal/booking"
	"github.com/drivehub/rental-marketplace/internal/domain"
	"github.com/drivehub/rental-marketplace/internal/middleware"
	"github.com/drivehub/rental-marketplace/internal/models"
)

type mockBookingStore struct{ mock.Mock }

func (m *mockBookingStore) Insert(ctx context.Context, booking models.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *mockBookingStore) FindByBookingID(ctx context.Context, bookingID int64) (*models.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingStore) UpdateFields(ctx context.Context, bookingID int64, update models.BookingUpdate) (*models.Booking, error) {
	args := m.Called(ctx, bookingID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingStore) FindAll(ctx context.Context) ([]models.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *mockBookingStore) FindByDateRange(ctx context.Context, start, end time.Time) ([]models.Booking, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *mockBookingStore) FindOverlapping(ctx context.Context, vehicleID int64, start, end time.Time) ([]models.Booking, error) {
	args := m.Called(ctx, vehicleID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *mockBookingStore) CountsByStatus(ctx context.Context, agencyID int64) (map[string]int64, error) {
	args := m.Called(ctx, agencyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *mockBookingStore) CountByAgency(ctx context.Context, agencyID int64) (int64, error) {
	args := m.Called(ctx, agencyID)
	return args.Get(0).(int64), args.Error(1)
}

type mockVehicleStore struct{ mock.Mock }

func (m *mockVehicleStore) Insert(ctx context.Context, vehicle models.Vehicle) error {
	return m.Called(ctx, vehicle).Error(0)
}

func (m *mockVehicleStore) FindByVehicleID(ctx context.Context, vehicleID int64) (*models.Vehicle, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *mockVehicleStore) FindByAgency(ctx context.Context, agencyID int64) ([]models.Vehicle, error) {
	args := m.Called(ctx, agencyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vehicle), args.Error(1)
}

func (m *mockVehicleStore) Update(ctx context.Context, vehicleID int64, vehicle models.Vehicle) error {
	return m.Called(ctx, vehicleID, vehicle).Error(0)
}

func (m *mockVehicleStore) Delete(ctx context.Context, vehicleID int64) error {
	return m.Called(ctx, vehicleID).Error(0)
}

func (m *mockVehicleStore) CountByAgency(ctx context.Context, agencyID int64) (int64, error) {
	args := m.Called(ctx, agencyID)
	return args.Get(0).(int64), args.Error(1)
}

type bookingFixture struct {
	handler   *BookingHandler
	bookings  *mockBookingStore
	customers *mockCustomerStore
	vehicles  *mockVehicleStore
	agencies  *mockAgencyStore
	sequences *mockSequences
}

func newBookingFixture() bookingFixture {
	f := bookingFixture{
		bookings:  new(mockBookingStore),
		customers: new(mockCustomerStore),
		vehicles:  new(mockVehicleStore),
		agencies:  new(mockAgencyStore),
		sequences: new(mockSequences),
	}
	f.handler = NewBookingHandler(&booking.Service{
		Bookings:  f.bookings,
		Customers: f.customers,
		Vehicles:  f.vehicles,
		Agencies:  f.agencies,
		Sequences: f.sequences,
	})
	return f
}

func asCustomer(req *http.Request, customerID int64) *http.Request {
	claims := &models.Claims{AccountID: customerID, Role: models.RoleCustomer}
	return req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, claims))
}

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

func TestBookingCreate_CustomerBooksForThemselves(t *testing.T) {
	f := newBookingFixture()
	f.customers.On("FindByCustomerID", mock.Anything, int64(5)).
		Return(&models.Customer{CustomerID: 5, FullName: "Ada", PhoneNumber: "+15550001"}, nil)
	f.vehicles.On("FindByVehicleID", mock.Anything, int64(2)).
		Return(&models.Vehicle{VehicleID: 2, AgencyID: 3}, nil)
	f.agencies.On("FindByAgencyID", mock.Anything, int64(3)).
		Return(&models.Agency{AgencyID: 3}, nil)
	f.sequences.On("Next", mock.Anything, "booking").Return(int64(42), nil)
	f.bookings.On("Insert", mock.Anything, mock.MatchedBy(func(b models.Booking) bool {
		// the customer id from the token wins over the body
		return b.CustomerID == 5 && b.BookingID == 42
	})).Return(nil)
	f.customers.On("AppendBookingHistory", mock.Anything, int64(5), int64(42)).Return(nil)

	payload := map[string]string{
		"customer_id": "999",
		"vehicle_id":  "2",
		"agency_id":   "3",
		"start_date":  futureDate(2),
		"end_date":    futureDate(5),
	}
	data, _ := json.Marshal(payload)
	req := asCustomer(httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBuffer(data)), 5)
	w := httptest.NewRecorder()
	f.handler.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	f.bookings.AssertExpectations(t)
}

func TestBookingCreate_BadDateFormat(t *testing.T) {
	f := newBookingFixture()

	payload := map[string]string{
		"customer_id": "5",
		"vehicle_id":  "2",
		"agency_id":   "3",
		"start_date":  "12-03-2026",
		"end_date":    futureDate(5),
	}
	data, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBuffer(data))
	w := httptest.NewRecorder()
	f.handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "YYYY-MM-DD")
}

func TestBookingCreate_UnknownCustomerIs400(t *testing.T) {
	f := newBookingFixture()
	f.customers.On("FindByCustomerID", mock.Anything, int64(5)).
		Return(nil, domain.NotFoundError{Resource: "customer"})

	payload := map[string]string{
		"customer_id": "5",
		"vehicle_id":  "2",
		"agency_id":   "3",
		"start_date":  futureDate(2),
		"end_date":    futureDate(5),
	}
	data, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBuffer(data))
	w := httptest.NewRecorder()
	f.handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingUpdateStatus_NoFields(t *testing.T) {
	f := newBookingFixture()

	req := httptest.NewRequest(http.MethodPatch, "/api/bookings/42", bytes.NewBufferString(`{}`))
	req.SetPathValue("id", "42")
	w := httptest.NewRecorder()
	f.handler.UpdateStatus(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingUpdateStatus_NotFound(t *testing.T) {
	f := newBookingFixture()
	approved := models.BookingApproved
	f.bookings.On("UpdateFields", mock.Anything, int64(42), mock.Anything).
		Return(nil, domain.NotFoundError{Resource: "booking"})

	data, _ := json.Marshal(models.BookingUpdate{BookingStatus: &approved})
	req := httptest.NewRequest(http.MethodPatch, "/api/bookings/42", bytes.NewBuffer(data))
	req.SetPathValue("id", "42")
	w := httptest.NewRecorder()
	f.handler.UpdateStatus(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingListByDate_MissingParams(t *testing.T) {
	f := newBookingFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/search?start_date=2026-03-12", nil)
	w := httptest.NewRecorder()
	f.handler.ListByDate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingListByDate_StartAfterEnd(t *testing.T) {
	f := newBookingFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/search?start_date=2026-03-15&end_date=2026-03-12", nil)
	w := httptest.NewRecorder()
	f.handler.ListByDate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingListByDate_EmptyRangeIsOK(t *testing.T) {
	f := newBookingFixture()
	f.bookings.On("FindByDateRange", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Booking{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/search?start_date=2026-03-12&end_date=2026-03-15", nil)
	w := httptest.NewRecorder()
	f.handler.ListByDate(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Count int              `json:"count"`
		Data  []models.Booking `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
	assert.NotNil(t, resp.Data)
}

func TestBillingGenerate_NoHistoryIs404(t *testing.T) {
	customers := new(mockCustomerStore)
	calc := &billing.Calculator{
		Customers: customers,
		Bookings:  new(mockBookingStore),
		Vehicles:  new(mockVehicleStore),
		Billings:  nil,
		Sequences: new(mockSequences),
	}
	handler := NewBillingHandler(calc)

	customers.On("FindByCustomerID", mock.Anything, int64(5)).
		Return(&models.Customer{CustomerID: 5, FullName: "Ada"}, nil)

	req := asCustomer(httptest.NewRequest(http.MethodPost, "/api/billing", nil), 5)
	w := httptest.NewRecorder()
	handler.Generate(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "no associated booking")
}
