package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claude/ironpath/internal/models"
)

// TestHTTPClientHistory verifies the client decodes the history endpoint.
func TestHTTPClientHistory(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/history" {
			t.Errorf("path = %q, want /api/v1/history", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"timestampMs":1700000000000,"displayDate":"Nov 14",` +
			`"totalVolume":500,"totalCalories":16,"totalXp":51,"totalMinutes":3,` +
			`"sessionType":"strength"}]`))
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL)
	history, err := c.History(context.Background())
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].TotalXP != 51 {
		t.Errorf("history = %+v, want one record with 51 XP", history)
	}
	if history[0].SessionType != models.SessionStrength {
		t.Errorf("sessionType = %q, want strength", history[0].SessionType)
	}
}

// TestHTTPClientRecords verifies the client decodes the records endpoint.
func TestHTTPClientRecords(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Bench Press":{"weight":100,"reps":5}}`))
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL)
	records, err := c.PersonalRecords(context.Background())
	if err != nil {
		t.Fatalf("PersonalRecords: %v", err)
	}
	if records["Bench Press"].WeightKg != 100 {
		t.Errorf("records = %+v, want Bench Press at 100 kg", records)
	}
}

// TestHTTPClientProgression verifies the client decodes the progression
// endpoint.
func TestHTTPClientProgression(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"totalXp":750,"level":2,"rank":"Novice","icon":"🐣",` +
			`"nextThresholdXp":1500,"progressPercent":25}`))
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL)
	lvl, err := c.Progression(context.Background())
	if err != nil {
		t.Fatalf("Progression: %v", err)
	}
	if lvl.Level != 2 || lvl.Rank != "Novice" {
		t.Errorf("level = %+v, want level 2 Novice", lvl)
	}
}

// TestHTTPClientErrorStatus verifies non-200 responses surface as errors with
// the status code and body.
func TestHTTPClientErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL)
	_, err := c.Session(context.Background())
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error = %v, want it to mention the status code", err)
	}
}

// TestHTTPClientTrailingSlash verifies the base URL is normalized so a
// trailing slash does not produce double slashes in request paths.
func TestHTTPClientTrailingSlash(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL + "/")
	if _, err := c.Session(context.Background()); err != nil {
		t.Fatalf("Session: %v", err)
	}
	if gotPath != "/api/v1/session" {
		t.Errorf("path = %q, want /api/v1/session", gotPath)
	}
}
