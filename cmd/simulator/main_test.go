package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPostJSON_DecodesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		if body["email"] != "sim@example.com" {
			t.Errorf("unexpected payload: %v", body)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{"account_id": 7})
	}))
	defer server.Close()

	result, status, err := postJSON(server.URL, "test-token", map[string]string{"email": "sim@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != http.StatusCreated {
		t.Errorf("expected 201, got %d", status)
	}
	if id, ok := result["account_id"].(float64); !ok || id != 7 {
		t.Errorf("unexpected result: %v", result)
	}
}

func TestNumField(t *testing.T) {
	result := map[string]interface{}{"agency_id": float64(3), "status": "Pending"}

	id, err := numField(result, "agency_id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 3 {
		t.Errorf("expected 3, got %d", id)
	}

	if _, err := numField(result, "missing"); err == nil {
		t.Error("expected error for absent field")
	}
	if _, err := numField(result, "status"); err == nil {
		t.Error("expected error for non-numeric field")
	}
}

func TestPatchJSON_SendsMethod(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	status, err := patchJSON(server.URL, "", map[string]string{"status": "Approved"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("expected 200, got %d", status)
	}
}
