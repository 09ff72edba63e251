package travel

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dayplanner/backend/internal/geocode"
)

// NaverBackend uses the Naver Cloud driving directions API. Naver routes
// between coordinates, so addresses are geocoded first.
type NaverBackend struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	Client       *http.Client
	Geocoder     geocode.Geocoder
}

type naverDirections struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Route   map[string][]struct {
		Summary struct {
			Distance float64 `json:"distance"` // m
			Duration float64 `json:"duration"` // ms
		} `json:"summary"`
	} `json:"route"`
}

func (b *NaverBackend) Name() string { return "naver" }

func (b *NaverBackend) Directions(ctx context.Context, origin, destination string, mode Mode) (Estimate, error) {
	oLat, oLon, err := coordinates(ctx, b.Geocoder, origin)
	if err != nil {
		return Estimate{}, err
	}
	dLat, dLon, err := coordinates(ctx, b.Geocoder, destination)
	if err != nil {
		return Estimate{}, err
	}

	base := b.BaseURL
	if base == "" {
		base = "https://naveropenapi.apigw.ntruss.com"
	}
	q := url.Values{}
	q.Set("start", fmt.Sprintf("%f,%f", oLon, oLat))
	q.Set("goal", fmt.Sprintf("%f,%f", dLon, dLat))
	q.Set("option", "traoptimal")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/map-direction/v1/driving?"+q.Encode(), nil)
	if err != nil {
		return Estimate{}, err
	}
	req.Header.Set("X-NCP-APIGW-API-KEY-ID", b.ClientID)
	req.Header.Set("X-NCP-APIGW-API-KEY", b.ClientSecret)

	var out naverDirections
	if err := doJSON(b.Client, req, &out); err != nil {
		return Estimate{}, err
	}
	routes := out.Route["traoptimal"]
	if out.Code != 0 || len(routes) == 0 {
		return Estimate{}, fmt.Errorf("naver directions code %d: %s", out.Code, out.Message)
	}
	sum := routes[0].Summary
	return Estimate{
		DurationMin: minutesFromSeconds(sum.Duration / 1000),
		DistanceKm:  sum.Distance / 1000,
		Source:      "naver",
	}, nil
}
