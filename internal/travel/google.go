package travel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

type GoogleBackend struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

type googleDirections struct {
	Status string `json:"status"`
	Routes []struct {
		Legs []struct {
			Duration struct {
				Value float64 `json:"value"`
			} `json:"duration"`
			Distance struct {
				Value float64 `json:"value"`
			} `json:"distance"`
		} `json:"legs"`
	} `json:"routes"`
}

func (b *GoogleBackend) Name() string { return "google" }

func (b *GoogleBackend) Directions(ctx context.Context, origin, destination string, mode Mode) (Estimate, error) {
	base := b.BaseURL
	if base == "" {
		base = "https://maps.googleapis.com"
	}
	q := url.Values{}
	q.Set("origin", origin)
	q.Set("destination", destination)
	q.Set("mode", string(mode))
	q.Set("language", "ko")
	q.Set("key", b.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/maps/api/directions/json?"+q.Encode(), nil)
	if err != nil {
		return Estimate{}, err
	}
	var out googleDirections
	if err := doJSON(b.Client, req, &out); err != nil {
		return Estimate{}, err
	}
	if out.Status != "OK" || len(out.Routes) == 0 || len(out.Routes[0].Legs) == 0 {
		return Estimate{}, fmt.Errorf("google directions status %q", out.Status)
	}
	leg := out.Routes[0].Legs[0]
	return Estimate{
		DurationMin: minutesFromSeconds(leg.Duration.Value),
		DistanceKm:  leg.Distance.Value / 1000,
		Source:      "google",
	}, nil
}

func doJSON(client *http.Client, req *http.Request, out any) error {
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("directions http error: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
