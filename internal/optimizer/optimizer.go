// Package optimizer builds visit plans from a district catalog.
package optimizer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dayplanner/backend/internal/catalog"
	"github.com/dayplanner/backend/internal/civil"
	"github.com/dayplanner/backend/internal/models"
	"github.com/dayplanner/backend/internal/scoring"
	"github.com/dayplanner/backend/internal/travel"
)

const (
	DayStartHour = 9
	DayEndHour   = 18
)

type Optimizer struct {
	Catalog catalog.Provider
	Travel  travel.Provider
	Zone    civil.Zone
	Mode    travel.Mode
	Now     func() time.Time
	Logger  zerolog.Logger
}

func New(cat catalog.Provider, tp travel.Provider, zone civil.Zone, logger zerolog.Logger) *Optimizer {
	return &Optimizer{
		Catalog: cat,
		Travel:  tp,
		Zone:    zone,
		Mode:    travel.ModeTransit,
		Now:     time.Now,
		Logger:  logger.With().Str("component", "optimizer").Logger(),
	}
}

// OptimizePlan builds a single-day visit plan for date between 09:00 and
// 18:00. existing is accepted for callers that track the current plan; it
// does not influence selection.
func (o *Optimizer) OptimizePlan(ctx context.Context, profile models.UserProfile, date time.Time, existing []models.VisitPlanItem) ([]models.VisitPlanItem, error) {
	locs, err := o.locations(ctx, profile.District)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		o.Logger.Debug().Int("existing", len(existing)).Str("district", profile.District).Msg("optimize with existing visits")
	}
	date = o.Zone.Normalize(date)
	return o.plan(ctx, locs, profile.ActivityLevel.Rules(), o.Zone.At(date, DayStartHour, 0), o.Zone.At(date, DayEndHour, 0)), nil
}

// Reoptimize keeps visits that already started and replans the rest of the
// day from now (shifted by delay). Progress of the kept visits (distance,
// break timing) is not carried into the new plan.
func (o *Optimizer) Reoptimize(ctx context.Context, profile models.UserProfile, current []models.VisitPlanItem, delayMin int, currentLocation string) ([]models.VisitPlanItem, error) {
	now := o.Zone.Normalize(o.now().Add(time.Duration(delayMin) * time.Minute))

	var completed []models.VisitPlanItem
	pending := 0
	for _, it := range current {
		if o.Zone.Normalize(it.Start).After(now) {
			pending++
			continue
		}
		completed = append(completed, it)
	}
	if pending == 0 {
		return current, nil
	}

	locs, err := o.locations(ctx, profile.District)
	if err != nil {
		return nil, err
	}
	o.Logger.Info().
		Int("delay_min", delayMin).
		Int("completed", len(completed)).
		Int("discarded", pending).
		Str("current_location", currentLocation).
		Msg("reoptimizing remaining plan")

	start := o.Zone.At(now, DayStartHour, 0)
	if now.After(start) {
		start = now
	}
	fresh := o.plan(ctx, locs, profile.ActivityLevel.Rules(), start, o.Zone.At(now, DayEndHour, 0))

	out := make([]models.VisitPlanItem, 0, len(completed)+len(fresh))
	out = append(out, completed...)
	return append(out, fresh...), nil
}

func (o *Optimizer) plan(ctx context.Context, locs []models.Location, rules models.TierRules, start, end time.Time) []models.VisitPlanItem {
	items := []models.VisitPlanItem{}
	if len(locs) == 0 || !start.Before(end) {
		return items
	}

	ranking := scoring.NewRanking(locs, scoring.Narrow, o.Zone.Hour(start))
	current := start
	prevAddress := ""
	distance := 0.0
	remaining := rules.MaxVisits

	for remaining > 0 {
		c, ok := ranking.Pop()
		if !ok {
			break
		}
		loc := c.Location

		var leg travel.Estimate
		if prevAddress != "" {
			leg = o.Travel.Lookup(ctx, prevAddress, loc.Address, o.Mode)
		}
		if distance+leg.DistanceKm > rules.MaxDistanceKm {
			continue
		}

		visitStart := current.Add(time.Duration(leg.DurationMin) * time.Minute)
		visitEnd := visitStart.Add(loc.Type.VisitDuration())
		if visitEnd.After(end) {
			continue
		}

		items = append(items, visitItem(loc, visitStart, visitEnd, c.Score, leg))
		current = visitEnd.Add(rules.BreakTime)
		prevAddress = loc.Address
		distance += leg.DistanceKm
		remaining--
	}
	return items
}

func (o *Optimizer) locations(ctx context.Context, district string) ([]models.Location, error) {
	if o.Catalog == nil {
		return nil, nil
	}
	locs, err := o.Catalog.ListByDistrict(ctx, district)
	if err != nil {
		return nil, fmt.Errorf("list locations for %q: %w", district, err)
	}
	return locs, nil
}

func (o *Optimizer) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func visitItem(loc models.Location, start, end time.Time, score float64, leg travel.Estimate) models.VisitPlanItem {
	return models.VisitPlanItem{
		Title:          loc.Name + " visit",
		Location:       loc.Name,
		Address:        loc.Address,
		LocationType:   loc.Type,
		Priority:       loc.Priority,
		Exposure:       loc.Exposure,
		Start:          start,
		End:            end,
		TravelTimeMin:  leg.DurationMin,
		TravelDistance: leg.DistanceKm,
		Score:          score,
		Description:    fmt.Sprintf("%s (%s, priority %d, exposure %d)", loc.Address, loc.Type, loc.Priority, loc.Exposure),
	}
}
