package catalog

import "github.com/dayplanner/backend/internal/models"

func Statistics(district string, locations []models.Location) models.LocationStats {
	stats := models.LocationStats{
		District:       district,
		TotalLocations: len(locations),
		ByType:         map[models.LocationType]models.TypeStats{},
	}
	for _, loc := range locations {
		ts := stats.ByType[loc.Type]
		ts.Count++
		ts.TotalExposure += loc.Exposure
		stats.ByType[loc.Type] = ts
		stats.TotalExposure += loc.Exposure
	}
	return stats
}
