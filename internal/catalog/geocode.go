package catalog

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dayplanner/backend/internal/geocode"
	"github.com/dayplanner/backend/internal/models"
)

// FillCoordinates geocodes locations missing lat/lon in place and returns
// how many were resolved. Failures are logged and left without coordinates.
func FillCoordinates(ctx context.Context, g geocode.Geocoder, locations []models.Location, country string, force bool, logger zerolog.Logger) int {
	if g == nil {
		return 0
	}
	resolved := 0
	for i := range locations {
		loc := &locations[i]
		if !geocode.ShouldGeocode(*loc, force) {
			continue
		}
		if ctx.Err() != nil {
			return resolved
		}
		query := geocode.BuildGeocodeQuery(country, loc.District, loc.Address)
		lat, lon, _, _, err := g.Geocode(ctx, query)
		if err != nil {
			logger.Warn().Err(err).Str("location", loc.Name).Str("query", query).Msg("geocode failed")
			continue
		}
		loc.Lat = &lat
		loc.Lon = &lon
		resolved++
	}
	return resolved
}
