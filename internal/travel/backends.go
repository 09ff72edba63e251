package travel

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dayplanner/backend/internal/geocode"
	"github.com/dayplanner/backend/internal/utils"
)

type BackendConfig struct {
	Service           string
	GoogleAPIKey      string
	NaverClientID     string
	NaverClientSecret string
	TmapAPIKey        string
	HTTPTimeout       time.Duration
}

// NewBackend picks the directions backend by name. A named backend without
// credentials is returned as unavailable, which always falls back.
func NewBackend(cfg BackendConfig, geocoder geocode.Geocoder) (Backend, error) {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	switch strings.ToLower(strings.TrimSpace(cfg.Service)) {
	case "", "google":
		if cfg.GoogleAPIKey == "" {
			return unavailable("google", "GOOGLE_MAPS_API_KEY not set"), nil
		}
		return &GoogleBackend{APIKey: cfg.GoogleAPIKey, Client: client}, nil
	case "naver":
		if cfg.NaverClientID == "" || cfg.NaverClientSecret == "" {
			return unavailable("naver", "NAVER_CLIENT_ID/NAVER_CLIENT_SECRET not set"), nil
		}
		return &NaverBackend{ClientID: cfg.NaverClientID, ClientSecret: cfg.NaverClientSecret, Client: client, Geocoder: geocoder}, nil
	case "tmap":
		if cfg.TmapAPIKey == "" {
			return unavailable("tmap", "TMAP_API_KEY not set"), nil
		}
		return &TmapBackend{AppKey: cfg.TmapAPIKey, Client: client, Geocoder: geocoder}, nil
	case "haversine":
		return &HaversineBackend{Geocoder: geocoder}, nil
	case "mock":
		return MockBackend{}, nil
	default:
		return nil, fmt.Errorf("unknown maps service %q", cfg.Service)
	}
}

type unavailableBackend struct {
	name   string
	reason string
}

func unavailable(name, reason string) Backend {
	return unavailableBackend{name: name, reason: reason}
}

func (b unavailableBackend) Name() string { return b.name }

func (b unavailableBackend) Directions(context.Context, string, string, Mode) (Estimate, error) {
	return Estimate{}, fmt.Errorf("%w: %s", ErrUnavailable, b.reason)
}

// MockBackend answers every lookup with a constant estimate.
type MockBackend struct{}

func (MockBackend) Name() string { return "mock" }

func (MockBackend) Directions(context.Context, string, string, Mode) (Estimate, error) {
	return Estimate{DurationMin: 15, DistanceKm: 2.5, Source: "mock"}, nil
}

// km/h
var modeSpeed = map[Mode]float64{
	ModeWalking: 4.5,
	ModeTransit: 20,
	ModeDriving: 30,
}

// HaversineBackend estimates from straight-line distance between geocoded
// addresses, scaled by a detour factor.
type HaversineBackend struct {
	Geocoder geocode.Geocoder
	Detour   float64
}

func (b *HaversineBackend) Name() string { return "haversine" }

func (b *HaversineBackend) Directions(ctx context.Context, origin, destination string, mode Mode) (Estimate, error) {
	oLat, oLon, err := coordinates(ctx, b.Geocoder, origin)
	if err != nil {
		return Estimate{}, err
	}
	dLat, dLon, err := coordinates(ctx, b.Geocoder, destination)
	if err != nil {
		return Estimate{}, err
	}
	detour := b.Detour
	if detour <= 0 {
		detour = 1.3
	}
	km := utils.HaversineKm(oLat, oLon, dLat, dLon) * detour
	speed, ok := modeSpeed[mode]
	if !ok {
		speed = modeSpeed[ModeTransit]
	}
	return Estimate{
		DurationMin: minutesFromSeconds(km / speed * 3600),
		DistanceKm:  utils.RoundTo(km, 2),
		Source:      "haversine",
	}, nil
}

func coordinates(ctx context.Context, g geocode.Geocoder, address string) (float64, float64, error) {
	if g == nil {
		return 0, 0, fmt.Errorf("%w: no geocoder configured", ErrUnavailable)
	}
	lat, lon, _, _, err := g.Geocode(ctx, address)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode %q: %w", address, err)
	}
	return lat, lon, nil
}
