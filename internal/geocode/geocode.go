package geocode

import (
	"context"
	"errors"
	"strings"

	"github.com/dayplanner/backend/internal/models"
)

var ErrNotFound = errors.New("geocode not found")

type Geocoder interface {
	Geocode(ctx context.Context, query string) (lat float64, lon float64, displayName string, confidence float64, err error)
}

func BuildGeocodeQuery(country string, district string, address string) string {
	country = strings.TrimSpace(country)
	district = strings.TrimSpace(district)
	address = strings.TrimSpace(address)
	parts := []string{}
	if country != "" {
		parts = append(parts, country)
	}
	// Catalog addresses usually already start with the district.
	if district != "" && !strings.Contains(address, district) {
		parts = append(parts, district)
	}
	if address != "" {
		parts = append(parts, address)
	}
	return strings.Join(parts, ", ")
}

func ShouldGeocode(loc models.Location, force bool) bool {
	if force {
		return true
	}
	return loc.Lat == nil || loc.Lon == nil
}

// Finder looks up a stored location by address.
type Finder interface {
	FindByAddress(ctx context.Context, address string) (models.Location, error)
}

// Stored answers from coordinates kept with catalog locations, so imported
// or previously geocoded coordinates need no external lookup.
type Stored struct {
	Finder Finder
}

func (s Stored) Geocode(ctx context.Context, query string) (float64, float64, string, float64, error) {
	if s.Finder == nil {
		return 0, 0, "", 0, ErrNotFound
	}
	loc, err := s.Finder.FindByAddress(ctx, NormalizeAddress(query))
	if err != nil {
		return 0, 0, "", 0, err
	}
	if loc.Lat == nil || loc.Lon == nil {
		return 0, 0, "", 0, ErrNotFound
	}
	return *loc.Lat, *loc.Lon, loc.Name, 1, nil
}

// Chain asks each geocoder in order and returns the first hit.
type Chain []Geocoder

func (c Chain) Geocode(ctx context.Context, query string) (float64, float64, string, float64, error) {
	lastErr := ErrNotFound
	for _, g := range c {
		if g == nil {
			continue
		}
		lat, lon, name, conf, err := g.Geocode(ctx, query)
		if err == nil {
			return lat, lon, name, conf, nil
		}
		lastErr = err
	}
	return 0, 0, "", 0, lastErr
}

// NormalizeAddress trims and collapses whitespace.
func NormalizeAddress(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
