package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// The simulator drives the marketplace API end to end: it registers an
// agency and a pool of customers, lists vehicles, creates bookings at a
// steady tick, and periodically runs billing sweeps.

var httpClient = &http.Client{Timeout: 10 * time.Second}

func postJSON(url, token string, payload interface{}) (map[string]interface{}, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal payload: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(data))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, resp.StatusCode, nil
	}
	return result, resp.StatusCode, nil
}

func patchJSON(url, token string, payload interface{}) (int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequest(http.MethodPatch, url, bytes.NewBuffer(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// numField extracts a numeric field from a decoded JSON response body.
func numField(result map[string]interface{}, key string) (int64, error) {
	n, ok := result[key].(float64)
	if !ok {
		return 0, fmt.Errorf("response missing numeric %q field", key)
	}
	return int64(n), nil
}

func adminLogin(apiURL string) (string, error) {
	result, status, err := postJSON(apiURL+"/auth/login", "", map[string]string{
		"email":    os.Getenv("ADMIN_EMAIL"),
		"password": os.Getenv("ADMIN_PASSWORD"),
		"role":     "admin",
	})
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("admin login failed with status %d", status)
	}
	token, _ := result["token"].(string)
	return token, nil
}

func registerAgency(apiURL, adminToken string, run int64) (string, int64, error) {
	name := fmt.Sprintf("Sim Rentals %d", run)
	email := fmt.Sprintf("sim-agency-%d@example.com", run)
	result, status, err := postJSON(apiURL+"/auth/register/agency", "", map[string]interface{}{
		"agency_name":             name,
		"contact_person":          "Sim Operator",
		"contact_email":           email,
		"phone_number":            fmt.Sprintf("+1555%07d", run%10000000),
		"business_license_number": fmt.Sprintf("LIC-%d", run),
		"password":                "simulator1",
	})
	if err != nil {
		return "", 0, err
	}
	if status != http.StatusCreated {
		return "", 0, fmt.Errorf("agency registration failed with status %d", status)
	}
	agencyID, err := numField(result, "agency_id")
	if err != nil {
		return "", 0, fmt.Errorf("invalid agency registration response: %w", err)
	}

	// Pending agencies cannot log in, so approve it with the admin token.
	status, err = patchJSON(fmt.Sprintf("%s/agencies/%d/status", apiURL, agencyID), adminToken, map[string]string{"status": "Approved"})
	if err != nil {
		return "", 0, err
	}
	if status != http.StatusOK {
		return "", 0, fmt.Errorf("agency approval failed with status %d", status)
	}

	result, status, err = postJSON(apiURL+"/auth/login", "", map[string]string{
		"email":    email,
		"password": "simulator1",
		"role":     "agency",
	})
	if err != nil {
		return "", 0, err
	}
	if status != http.StatusOK {
		return "", 0, fmt.Errorf("agency login failed with status %d", status)
	}
	token, _ := result["token"].(string)

	log.WithFields(log.Fields{
		"agency_id":   agencyID,
		"agency_name": name,
	}).Info("Agency registered and approved")

	return token, agencyID, nil
}

var vehicleNames = []string{
	"Toyota Corolla", "Honda Civic", "Ford Transit", "Tesla Model 3",
	"Nissan Leaf", "BMW X5", "Hyundai Tucson", "Kia Sportage",
}

func createVehicle(apiURL, agencyToken string) (int64, error) {
	name := vehicleNames[rand.Intn(len(vehicleNames))]
	result, status, err := postJSON(apiURL+"/vehicles", agencyToken, map[string]interface{}{
		"vehicle_name":   name,
		"vehicle_type":   "car",
		"capacity":       "5",
		"price_per_day":  int64(3000 + rand.Intn(7000)),
		"price_per_hour": int64(300 + rand.Intn(700)),
	})
	if err != nil {
		return 0, err
	}
	if status != http.StatusCreated {
		return 0, fmt.Errorf("vehicle creation failed with status %d", status)
	}
	data, ok := result["data"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("invalid vehicle response")
	}
	vehicleID, err := numField(data, "vehicle_id")
	if err != nil {
		return 0, fmt.Errorf("invalid vehicle response: %w", err)
	}

	log.WithFields(log.Fields{
		"vehicle_id":   vehicleID,
		"vehicle_name": name,
	}).Info("Created vehicle")

	return vehicleID, nil
}

type customer struct {
	Token string
	ID    int64
}

func registerCustomer(apiURL string, run int64, n int) (*customer, error) {
	result, status, err := postJSON(apiURL+"/auth/register/customer", "", map[string]interface{}{
		"full_name":    fmt.Sprintf("Sim Customer %d-%d", run, n),
		"email":        fmt.Sprintf("sim-customer-%d-%d@example.com", run, n),
		"phone_number": fmt.Sprintf("+1556%07d", (run+int64(n))%10000000),
		"password":     "simulator1",
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated {
		return nil, fmt.Errorf("customer registration failed with status %d", status)
	}
	token, _ := result["token"].(string)
	id, err := numField(result, "account_id")
	if err != nil {
		return nil, fmt.Errorf("invalid customer registration response: %w", err)
	}
	return &customer{Token: token, ID: id}, nil
}

func createBooking(apiURL string, c *customer, agencyID, vehicleID int64) {
	start := time.Now().AddDate(0, 0, 1+rand.Intn(30))
	span := rand.Intn(5)
	end := start.AddDate(0, 0, span)

	payload := map[string]interface{}{
		"vehicle_id": strconv.FormatInt(vehicleID, 10),
		"agency_id":  strconv.FormatInt(agencyID, 10),
		"start_date": start.Format("2006-01-02"),
		"end_date":   end.Format("2006-01-02"),
	}
	if span == 0 && rand.Intn(2) == 0 {
		// hourly booking within a single day
		startHour := 8 + rand.Intn(8)
		payload["start_hour"] = fmt.Sprintf("%02d:00", startHour)
		payload["end_hour"] = fmt.Sprintf("%02d:00", startHour+1+rand.Intn(4))
	}

	result, status, err := postJSON(apiURL+"/bookings", c.Token, payload)
	if err != nil {
		log.WithError(err).Error("Failed to create booking")
		return
	}
	if status != http.StatusCreated {
		log.WithFields(log.Fields{
			"status":      status,
			"customer_id": c.ID,
			"response":    result,
		}).Warn("Booking rejected")
		return
	}

	log.WithFields(log.Fields{
		"customer_id": c.ID,
		"vehicle_id":  vehicleID,
		"start_date":  payload["start_date"],
		"end_date":    payload["end_date"],
	}).Info("Created booking")
}

func runBilling(apiURL string, c *customer) {
	result, status, err := postJSON(apiURL+"/billing", c.Token, map[string]string{})
	if err != nil {
		log.WithError(err).Error("Failed to run billing")
		return
	}
	log.WithFields(log.Fields{
		"customer_id":  c.ID,
		"status":       status,
		"total_amount": result["total_amount"],
		"skipped":      result["skipped"],
	}).Info("Billing sweep completed")
}

func main() {
	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}

	customerCount := 5
	if v := os.Getenv("SIM_CUSTOMERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			customerCount = n
		}
	}

	fleetSize := 3
	if v := os.Getenv("SIM_FLEET_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			fleetSize = n
		}
	}

	interval := 5 * time.Second
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			interval = time.Duration(n) * time.Second
		}
	}

	run := time.Now().Unix()

	log.WithFields(log.Fields{
		"api_url":   apiURL,
		"customers": customerCount,
		"fleet":     fleetSize,
		"interval":  interval,
	}).Info("Starting marketplace simulation")

	adminToken, err := adminLogin(apiURL)
	if err != nil {
		log.WithError(err).Fatal("Admin login failed. Set ADMIN_EMAIL and ADMIN_PASSWORD.")
	}

	agencyToken, agencyID, err := registerAgency(apiURL, adminToken, run)
	if err != nil {
		log.WithError(err).Fatal("Agency setup failed")
	}

	vehicleIDs := make([]int64, 0, fleetSize)
	for i := 0; i < fleetSize; i++ {
		id, err := createVehicle(apiURL, agencyToken)
		if err != nil {
			log.WithError(err).Error("Failed to create vehicle")
			continue
		}
		vehicleIDs = append(vehicleIDs, id)
	}
	if len(vehicleIDs) == 0 {
		log.Fatal("No vehicles created, exiting")
	}

	customers := make([]*customer, 0, customerCount)
	for i := 0; i < customerCount; i++ {
		c, err := registerCustomer(apiURL, run, i)
		if err != nil {
			log.WithError(err).Error("Failed to register customer")
			continue
		}
		customers = append(customers, c)
	}
	if len(customers) == 0 {
		log.Fatal("No customers registered, exiting")
	}

	log.WithFields(log.Fields{
		"agency_id": agencyID,
		"vehicles":  len(vehicleIDs),
		"customers": len(customers),
	}).Info("Simulation setup completed")

	tick := time.NewTicker(interval)
	defer tick.Stop()
	ticks := 0
	for range tick.C {
		c := customers[rand.Intn(len(customers))]
		v := vehicleIDs[rand.Intn(len(vehicleIDs))]
		createBooking(apiURL, c, agencyID, v)

		ticks++
		if ticks%10 == 0 {
			runBilling(apiURL, customers[rand.Intn(len(customers))])
		}
	}
}
