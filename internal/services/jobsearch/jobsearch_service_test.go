package jobsearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PrahladMehta/CareerMatch-AI/internal/common"
	"github.com/PrahladMehta/CareerMatch-AI/internal/models"
	"github.com/ternarybob/arbor"
)

const sampleResponse = `{
	"status": "OK",
	"data": [
		{
			"job_id": "abc123",
			"job_title": "Senior Go Developer",
			"employer_name": "Acme Corp",
			"job_city": "Berlin",
			"job_state": "",
			"job_country": "DE",
			"job_employment_type": "FULLTIME",
			"job_is_remote": true,
			"job_min_salary": 80000,
			"job_max_salary": 110000,
			"job_salary_currency": "EUR",
			"job_posted_at_datetime_utc": "2026-08-01T09:30:00Z",
			"job_description": "Build backend services in Go.",
			"job_apply_link": "https://example.com/apply/abc123"
		},
		{
			"job_id": "def456",
			"job_title": "Platform Engineer",
			"employer_name": "Initech",
			"job_city": "",
			"job_state": "",
			"job_country": "",
			"job_posted_at_datetime_utc": "not-a-timestamp"
		}
	]
}`

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := &common.JobSearchConfig{
		APIKey:         "test-key",
		BaseURL:        server.URL,
		RateLimit:      time.Millisecond,
		RequestTimeout: 5 * time.Second,
		MaxResults:     10,
	}

	service, err := NewService(config, arbor.NewLogger())
	if err != nil {
		t.Fatal(err)
	}
	return service
}

func TestSearchParsesPostings(t *testing.T) {
	var gotQuery, gotKey, gotHost string
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotKey = r.Header.Get("X-RapidAPI-Key")
		gotHost = r.Header.Get("X-RapidAPI-Host")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResponse))
	})

	postings, err := service.Search(context.Background(), &models.JobQuery{Title: "Go Developer", Location: "Berlin"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if gotQuery != "Go Developer in Berlin" {
		t.Errorf("Unexpected search text: %q", gotQuery)
	}
	if gotKey != "test-key" {
		t.Errorf("Expected API key header, got %q", gotKey)
	}
	if gotHost == "" {
		t.Error("Expected host header to be set")
	}

	if len(postings) != 2 {
		t.Fatalf("Expected 2 postings, got %d", len(postings))
	}

	first := postings[0]
	if first.ID != "abc123" || first.Title != "Senior Go Developer" || first.Employer != "Acme Corp" {
		t.Errorf("Unexpected first posting: %+v", first)
	}
	if first.Location != "Berlin, DE" {
		t.Errorf("Expected joined location, got %q", first.Location)
	}
	if !first.Remote || first.SalaryMin != 80000 || first.Currency != "EUR" {
		t.Errorf("Unexpected posting details: %+v", first)
	}
	if first.PostedAt == nil || first.PostedAt.Day() != 1 {
		t.Errorf("Expected parsed posting time, got %v", first.PostedAt)
	}

	// Unparseable timestamps are dropped, not fatal
	if postings[1].PostedAt != nil {
		t.Errorf("Bad timestamp should yield nil PostedAt, got %v", postings[1].PostedAt)
	}
	if postings[1].Location != "" {
		t.Errorf("All-empty location parts should join to empty, got %q", postings[1].Location)
	}
}

func TestSearchMaxResultsCap(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleResponse))
	})
	service.config.MaxResults = 1

	postings, err := service.Search(context.Background(), &models.JobQuery{Title: "engineer"})
	if err != nil {
		t.Fatal(err)
	}
	if len(postings) != 1 {
		t.Errorf("Expected results capped at 1, got %d", len(postings))
	}
}

func TestSearchNonOKStatus(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	if _, err := service.Search(context.Background(), &models.JobQuery{Title: "engineer"}); err == nil {
		t.Error("Expected error on non-200 response")
	}
}

func TestSearchNilQuery(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})

	if _, err := service.Search(context.Background(), nil); err == nil {
		t.Error("Expected error for nil query")
	}
}

func TestNewServiceRequiresAPIKey(t *testing.T) {
	if _, err := NewService(&common.JobSearchConfig{}, arbor.NewLogger()); err == nil {
		t.Error("Expected error when API key is missing")
	}
}
