package directions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benz16107/BlindSpot/pkg/geo"
)

const sampleResponse = `{
  "status": "OK",
  "routes": [{
    "summary": "Main St",
    "legs": [{
      "distance": {"text": "0.4 km", "value": 400},
      "duration": {"text": "5 mins", "value": 300},
      "steps": [{
        "html_instructions": "Head <b>north</b> on <b>Main St</b>",
        "distance": {"text": "0.4 km", "value": 400},
        "duration": {"text": "5 mins", "value": 300},
        "start_location": {"lat": 52.5200, "lng": 13.4050},
        "end_location": {"lat": 52.5236, "lng": 13.4050}
      }]
    }]
  }]
}`

func TestWalking(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"origin":      q.Get("origin"),
			"destination": q.Get("destination"),
			"mode":        q.Get("mode"),
			"key":         q.Get("key"),
		}
		w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	client, err := New(Config{APIKey: "test-key", BaseURL: srv.URL, Client: srv.Client()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	r, err := client.Walking(context.Background(), geo.Point{Lat: 52.52, Lng: 13.405}, "Central Station")
	if err != nil {
		t.Fatalf("Walking: %v", err)
	}
	if len(r.Steps()) != 1 {
		t.Fatalf("steps = %d, want 1", len(r.Steps()))
	}
	if r.TotalDistanceMeters() != 400 {
		t.Fatalf("distance = %d, want 400", r.TotalDistanceMeters())
	}

	if gotQuery["mode"] != "walking" {
		t.Fatalf("mode = %q, want walking", gotQuery["mode"])
	}
	if gotQuery["destination"] != "Central Station" {
		t.Fatalf("destination = %q", gotQuery["destination"])
	}
	if gotQuery["key"] != "test-key" {
		t.Fatalf("key = %q", gotQuery["key"])
	}
}

func TestWalkingUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client, err := New(Config{APIKey: "k", BaseURL: srv.URL, Client: srv.Client()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Walking(context.Background(), geo.Point{}, "anywhere"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestWalkingNoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ZERO_RESULTS","routes":[]}`))
	}))
	defer srv.Close()

	client, err := New(Config{APIKey: "k", BaseURL: srv.URL, Client: srv.Client()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Walking(context.Background(), geo.Point{}, "nowhere"); err == nil {
		t.Fatal("expected error for empty result")
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(DefaultConfig()); err != ErrNoAPIKey {
		t.Fatalf("err = %v, want ErrNoAPIKey", err)
	}
}
