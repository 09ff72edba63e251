package travel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dayplanner/backend/internal/geocode"
)

type TmapBackend struct {
	AppKey   string
	BaseURL  string
	Client   *http.Client
	Geocoder geocode.Geocoder
}

type tmapRequest struct {
	StartX       float64 `json:"startX"`
	StartY       float64 `json:"startY"`
	EndX         float64 `json:"endX"`
	EndY         float64 `json:"endY"`
	ReqCoordType string  `json:"reqCoordType"`
	ResCoordType string  `json:"resCoordType"`
}

type tmapRoutes struct {
	Features []struct {
		Properties struct {
			TotalTime     float64 `json:"totalTime"`     // s
			TotalDistance float64 `json:"totalDistance"` // m
		} `json:"properties"`
	} `json:"features"`
}

func (b *TmapBackend) Name() string { return "tmap" }

func (b *TmapBackend) Directions(ctx context.Context, origin, destination string, mode Mode) (Estimate, error) {
	oLat, oLon, err := coordinates(ctx, b.Geocoder, origin)
	if err != nil {
		return Estimate{}, err
	}
	dLat, dLon, err := coordinates(ctx, b.Geocoder, destination)
	if err != nil {
		return Estimate{}, err
	}

	body, err := json.Marshal(tmapRequest{
		StartX: oLon, StartY: oLat,
		EndX: dLon, EndY: dLat,
		ReqCoordType: "WGS84GEO",
		ResCoordType: "WGS84GEO",
	})
	if err != nil {
		return Estimate{}, err
	}
	base := b.BaseURL
	if base == "" {
		base = "https://apis.openapi.sk.com"
	}
	path := "/tmap/routes?version=1"
	if mode == ModeWalking {
		path = "/tmap/routes/pedestrian?version=1"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+path, bytes.NewReader(body))
	if err != nil {
		return Estimate{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("appKey", b.AppKey)

	var out tmapRoutes
	if err := doJSON(b.Client, req, &out); err != nil {
		return Estimate{}, err
	}
	if len(out.Features) == 0 {
		return Estimate{}, errors.New("tmap returned no route features")
	}
	props := out.Features[0].Properties
	return Estimate{
		DurationMin: minutesFromSeconds(props.TotalTime),
		DistanceKm:  props.TotalDistance / 1000,
		Source:      "tmap",
	}, nil
}
