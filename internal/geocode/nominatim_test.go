package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestParseNominatimItems(t *testing.T) {
	items := []nominatimItem{
		{
			Lat:         "37.5172",
			Lon:         "127.0473",
			DisplayName: "Gangnam-gu Office, Seoul",
			Importance:  0.61,
		},
	}
	res, err := parseNominatimItems(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Lat != 37.5172 || res.Lon != 127.0473 {
		t.Fatalf("unexpected coordinates: %+v", res)
	}
	if res.DisplayName != "Gangnam-gu Office, Seoul" {
		t.Fatalf("unexpected display name: %s", res.DisplayName)
	}
	if res.Confidence != 0.61 {
		t.Fatalf("unexpected confidence: %f", res.Confidence)
	}

	if _, err := parseNominatimItems(nil); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNominatimCachesResults(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Header.Get("User-Agent") != "planner-test" {
			t.Errorf("unexpected user agent: %s", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"37.5","lon":"127.0","display_name":"Seoul","importance":0.5}]`))
	}))
	defer srv.Close()

	g := &NominatimGeocoder{BaseURL: srv.URL, UserAgent: "planner-test", MinInterval: time.Millisecond}
	for i := 0; i < 3; i++ {
		lat, lon, _, _, err := g.Geocode(context.Background(), "Seoul")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if lat != 37.5 || lon != 127.0 {
			t.Fatalf("unexpected coordinates: %f,%f", lat, lon)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected a single upstream call, got %d", got)
	}
}
