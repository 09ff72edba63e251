// Package travel estimates travel time and distance between two addresses.
//
// Provider.Lookup never fails: any backend problem (missing credentials,
// HTTP error, timeout, unparseable response) resolves to the fixed fallback
// estimate so planning can always continue.
package travel

import (
	"context"
	"errors"
	"math"
)

type Mode string

const (
	ModeTransit Mode = "transit"
	ModeDriving Mode = "driving"
	ModeWalking Mode = "walking"
)

const (
	FallbackDurationMin = 20
	FallbackDistanceKm  = 3.0

	SourceFallback = "fallback"
)

var ErrUnavailable = errors.New("travel backend unavailable")

type Estimate struct {
	DurationMin int     `json:"duration_min"`
	DistanceKm  float64 `json:"distance_km"`
	Source      string  `json:"source"`
}

func Fallback() Estimate {
	return Estimate{DurationMin: FallbackDurationMin, DistanceKm: FallbackDistanceKm, Source: SourceFallback}
}

type Provider interface {
	Lookup(ctx context.Context, origin, destination string, mode Mode) Estimate
}

// Backend is one directions source. Errors are handled by Service.
type Backend interface {
	Name() string
	Directions(ctx context.Context, origin, destination string, mode Mode) (Estimate, error)
}

func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeDriving, ModeWalking:
		return Mode(s)
	default:
		return ModeTransit
	}
}

func minutesFromSeconds(sec float64) int {
	return int(math.Ceil(sec / 60))
}

func valid(e Estimate) bool {
	return e.DurationMin >= 0 && e.DistanceKm >= 0 && !math.IsNaN(e.DistanceKm) && !math.IsInf(e.DistanceKm, 0)
}
