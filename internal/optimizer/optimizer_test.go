package optimizer

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dayplanner/backend/internal/catalog"
	"github.com/dayplanner/backend/internal/civil"
	"github.com/dayplanner/backend/internal/models"
	"github.com/dayplanner/backend/internal/travel"
)

var kst = civil.FixedZone("KST", 9*3600)

type fixedTravel struct {
	est   travel.Estimate
	calls int
}

func (f *fixedTravel) Lookup(_ context.Context, _, _ string, _ travel.Mode) travel.Estimate {
	f.calls++
	return f.est
}

func day(d, hour, minute int) time.Time {
	return time.Date(2025, 9, d, hour, minute, 0, 0, kst.Location())
}

func newTestOptimizer(locs []models.Location, tp travel.Provider, now time.Time) *Optimizer {
	o := New(catalog.NewMemory(locs), tp, kst, zerolog.Nop())
	o.Now = func() time.Time { return now }
	return o
}

func locations(district string, n int, typ models.LocationType) []models.Location {
	out := make([]models.Location, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Location{
			District: district,
			Name:     fmt.Sprintf("loc-%02d", i),
			Address:  fmt.Sprintf("address %02d", i),
			Type:     typ,
			Priority: 5 - i%5,
			Exposure: 100 - i,
		})
	}
	return out
}

func TestOptimizePlanSingleLocation(t *testing.T) {
	locs := []models.Location{{District: "D", Name: "City Hall", Address: "Main 1", Type: models.LocationGovernment, Priority: 5, Exposure: 80}}
	tp := &fixedTravel{est: travel.Fallback()}
	o := newTestOptimizer(locs, tp, day(1, 7, 0))

	items, err := o.OptimizePlan(context.Background(), models.UserProfile{District: "D", ActivityLevel: models.TierEasy}, day(1, 0, 0), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected exactly one visit, got %d", len(items))
	}
	it := items[0]
	if it.TravelTimeMin != 0 || it.TravelDistance != 0 || tp.calls != 0 {
		t.Fatalf("first visit must not have travel: %+v (calls=%d)", it, tp.calls)
	}
	if !it.Start.Equal(day(1, 9, 0)) || !it.End.Equal(day(1, 9, 45)) {
		t.Fatalf("unexpected times: %v - %v", it.Start, it.End)
	}
	if it.Title != "City Hall visit" || it.Score != 60 {
		t.Fatalf("unexpected item: %+v", it)
	}
}

func TestOptimizePlanEmptyCatalog(t *testing.T) {
	o := newTestOptimizer(nil, &fixedTravel{}, day(1, 7, 0))
	items, err := o.OptimizePlan(context.Background(), models.UserProfile{District: "none"}, day(1, 0, 0), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil plan, got %#v", items)
	}
}

func TestOptimizePlanDistanceBudget(t *testing.T) {
	locs := locations("D", 10, models.LocationTransport)
	tp := &fixedTravel{est: travel.Estimate{DurationMin: 10, DistanceKm: 3.0}}
	o := newTestOptimizer(locs, tp, day(1, 7, 0))

	items, err := o.OptimizePlan(context.Background(), models.UserProfile{District: "D", ActivityLevel: models.TierEasy}, day(1, 0, 0), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 0 km for the first visit, 3 km for the second, a third leg would reach 6 km.
	if len(items) != 2 {
		t.Fatalf("expected 2 visits within 5 km, got %d", len(items))
	}
	total := 0.0
	for _, it := range items {
		total += it.TravelDistance
	}
	if total > models.TierEasy.Rules().MaxDistanceKm {
		t.Fatalf("distance budget exceeded: %f", total)
	}
}

func TestOptimizePlanVisitCap(t *testing.T) {
	locs := locations("D", 20, models.LocationTransport)
	o := newTestOptimizer(locs, &fixedTravel{est: travel.Estimate{DurationMin: 1}}, day(1, 7, 0))

	for _, tier := range []models.ActivityTier{models.TierEasy, models.TierMedium, models.TierHard, "unknown"} {
		items, err := o.OptimizePlan(context.Background(), models.UserProfile{District: "D", ActivityLevel: tier}, day(1, 0, 0), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := tier.Rules().MaxVisits; len(items) != want {
			t.Fatalf("tier %s: expected %d visits, got %d", tier, want, len(items))
		}
	}
}

func TestOptimizePlanRespectsDayEnd(t *testing.T) {
	locs := locations("D", 6, models.LocationEducation)
	o := newTestOptimizer(locs, &fixedTravel{est: travel.Estimate{DurationMin: 20}}, day(1, 7, 0))

	items, err := o.OptimizePlan(context.Background(), models.UserProfile{District: "D", ActivityLevel: models.TierMedium}, day(1, 0, 0), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 visits before 18:00, got %d", len(items))
	}
	for i, it := range items {
		if it.End.After(day(1, 18, 0)) {
			t.Fatalf("visit %d ends after 18:00: %v", i, it.End)
		}
		if i > 0 && it.Start.Before(items[i-1].End.Add(45*time.Minute)) {
			t.Fatalf("visit %d ignores the break", i)
		}
	}
}

func TestOptimizePlanDeterministic(t *testing.T) {
	locs := locations("D", 12, models.LocationPublic)
	o := newTestOptimizer(locs, &fixedTravel{est: travel.Estimate{DurationMin: 12, DistanceKm: 1.1}}, day(1, 7, 0))
	profile := models.UserProfile{District: "D", ActivityLevel: models.TierHard}

	first, _ := o.OptimizePlan(context.Background(), profile, day(1, 0, 0), nil)
	second, _ := o.OptimizePlan(context.Background(), profile, day(1, 0, 0), nil)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("plans differ between identical calls")
	}
}

func TestReoptimizeKeepsStartedVisits(t *testing.T) {
	locs := locations("D", 6, models.LocationTransport)
	o := newTestOptimizer(locs, &fixedTravel{est: travel.Estimate{DurationMin: 5, DistanceKm: 0.5}}, day(1, 11, 0))
	current := []models.VisitPlanItem{
		{Title: "a visit", Start: day(1, 9, 0), End: day(1, 9, 15)},
		{Title: "b visit", Start: day(1, 10, 30), End: day(1, 10, 45)},
		{Title: "c visit", Start: day(1, 13, 0), End: day(1, 13, 15)},
	}

	items, err := o.Reoptimize(context.Background(), models.UserProfile{District: "D", ActivityLevel: models.TierEasy}, current, 30, "address 00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) < 3 || items[0].Title != "a visit" || items[1].Title != "b visit" {
		t.Fatalf("expected completed visits first, got %+v", items)
	}
	for _, it := range items[2:] {
		if it.Start.Before(day(1, 11, 30)) {
			t.Fatalf("replanned visit starts before now: %v", it.Start)
		}
		if it.Title == "c visit" {
			t.Fatalf("pending visit should be discarded")
		}
	}
	if len(items)-2 > models.TierEasy.Rules().MaxVisits {
		t.Fatalf("replanned tail exceeds visit cap")
	}
}

func TestReoptimizeNothingPending(t *testing.T) {
	o := newTestOptimizer(locations("D", 3, models.LocationPublic), &fixedTravel{}, day(1, 17, 0))
	current := []models.VisitPlanItem{{Title: "a visit", Start: day(1, 9, 0), End: day(1, 9, 30)}}
	items, err := o.Reoptimize(context.Background(), models.UserProfile{District: "D"}, current, 0, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(items, current) {
		t.Fatalf("plan should be returned unchanged, got %+v", items)
	}
}
