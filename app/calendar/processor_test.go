package calendar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestProcessor() *Processor {
	setupTestConfig()
	fetcher := NewFetcher(&http.Client{}, 5*time.Second, 1<<20, "fical-test/1.0", true)
	return NewProcessor(fetcher)
}

func serveICS(t *testing.T, doc string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		w.Write([]byte(doc))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestProcessor_EndToEnd(t *testing.T) {
	processor := newTestProcessor()
	server := serveICS(t, icsDocument("Vacation - Alice", "Sprint Planning", "Vacation - Bob"))

	req := Request{Calendars: []Spec{{
		URL:       server.URL,
		Allowlist: []string{"vacation"},
		Blocklist: []string{"bob"},
	}}}

	document, err := processor.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.Contains(document, "SUMMARY:Vacation - Alice") {
		t.Error("Expected 'Vacation - Alice' in the output")
	}
	if strings.Contains(document, "SUMMARY:Sprint Planning") {
		t.Error("'Sprint Planning' should have been dropped by the allowlist")
	}
	if strings.Contains(document, "SUMMARY:Vacation - Bob") {
		t.Error("'Vacation - Bob' should have been dropped by the blocklist")
	}
}

func TestProcessor_MergePreservesSpecOrder(t *testing.T) {
	processor := newTestProcessor()
	serverOne := serveICS(t, icsDocument("First Source Event"))
	serverTwo := serveICS(t, icsDocument("Second Source Event"))

	req := Request{Calendars: []Spec{
		{URL: serverOne.URL},
		{URL: serverTwo.URL},
	}}

	document, err := processor.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	first := strings.Index(document, "SUMMARY:First Source Event")
	second := strings.Index(document, "SUMMARY:Second Source Event")
	if first == -1 || second == -1 {
		t.Fatal("Expected events from both sources in the output")
	}
	if first > second {
		t.Error("Merged events should appear in request order")
	}
}

func TestProcessor_PartialFailure(t *testing.T) {
	processor := newTestProcessor()
	okServer := serveICS(t, icsDocument("Vacation - Alice"))
	failServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(failServer.Close)

	req := Request{Calendars: []Spec{
		{URL: failServer.URL},
		{URL: okServer.URL},
	}}

	document, err := processor.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Request should succeed while at least one source succeeds, got %v", err)
	}
	if !strings.Contains(document, "SUMMARY:Vacation - Alice") {
		t.Error("Expected the successful source's events in the output")
	}
}

func TestProcessor_MalformedSourceIsPerSource(t *testing.T) {
	processor := newTestProcessor()
	okServer := serveICS(t, icsDocument("Vacation - Alice"))
	badServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not a calendar"))
	}))
	t.Cleanup(badServer.Close)

	req := Request{Calendars: []Spec{
		{URL: badServer.URL},
		{URL: okServer.URL},
	}}

	document, err := processor.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("A malformed source should not abort the request, got %v", err)
	}
	if !strings.Contains(document, "SUMMARY:Vacation - Alice") {
		t.Error("Expected the valid source's events in the output")
	}
}

func TestProcessor_AllSourcesFailed(t *testing.T) {
	processor := newTestProcessor()
	failServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(failServer.Close)

	req := Request{Calendars: []Spec{
		{URL: failServer.URL},
		{URL: failServer.URL},
	}}

	_, err := processor.Run(context.Background(), req)

	var allFailed *AllSourcesFailedError
	if !errors.As(err, &allFailed) {
		t.Fatalf("Expected AllSourcesFailedError, got %v", err)
	}
	if len(allFailed.Errors) != 2 {
		t.Errorf("Expected 2 underlying source errors, got %d", len(allFailed.Errors))
	}
}

func TestProcessor_Validate(t *testing.T) {
	processor := newTestProcessor()

	tests := []struct {
		name string
		req  Request
	}{
		{"no calendars", Request{}},
		{"missing url", Request{Calendars: []Spec{{URL: ""}}}},
		{"unsupported scheme", Request{Calendars: []Spec{{URL: "ftp://example.com/cal.ics"}}}},
		{"no host", Request{Calendars: []Spec{{URL: "https://"}}}},
	}

	for _, test := range tests {
		err := processor.Validate(test.req)
		var invalidErr *InvalidConfigError
		if !errors.As(err, &invalidErr) {
			t.Errorf("%s: expected InvalidConfigError, got %v", test.name, err)
		}
	}

	valid := Request{Calendars: []Spec{{URL: "https://example.com/cal.ics"}}}
	if err := processor.Validate(valid); err != nil {
		t.Errorf("Valid request should pass validation, got %v", err)
	}
}

func TestProcessor_SlowSourceDoesNotBlockSiblings(t *testing.T) {
	setupTestConfig()
	fetcher := NewFetcher(&http.Client{}, 300*time.Millisecond, 1<<20, "fical-test/1.0", true)
	processor := NewProcessor(fetcher)

	okServer := serveICS(t, icsDocument("Vacation - Alice"))
	slowServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	t.Cleanup(slowServer.Close)

	req := Request{Calendars: []Spec{
		{URL: slowServer.URL},
		{URL: okServer.URL},
	}}

	start := time.Now()
	document, err := processor.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(document, "SUMMARY:Vacation - Alice") {
		t.Error("Expected the fast source's events in the output")
	}
	if time.Since(start) > time.Second {
		t.Error("A hanging source should be bounded by the fetch timeout, not block the request")
	}
}
