package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/dayplanner/backend/internal/catalog"
	"github.com/dayplanner/backend/internal/civil"
	"github.com/dayplanner/backend/internal/db"
	"github.com/dayplanner/backend/internal/geocode"
	"github.com/dayplanner/backend/internal/metrics"
	"github.com/dayplanner/backend/internal/models"
	"github.com/dayplanner/backend/internal/optimizer"
	"github.com/dayplanner/backend/internal/scheduler"
)

var ErrInvalidTask = errors.New("invalid task")

type PlanningService struct {
	Store     db.Repository
	Scheduler *scheduler.Scheduler
	Optimizer *optimizer.Optimizer
	Zone      civil.Zone
	Geocoder  geocode.Geocoder
	Country   string
	Logger    zerolog.Logger
}

type ScheduleResult struct {
	Items       []models.ScheduledItem `json:"items"`
	Unscheduled []string               `json:"unscheduled"`
	Reasons     map[string]string      `json:"reasons"`
	Warnings    []string               `json:"warnings,omitempty"`
}

type PlanResult struct {
	Profile models.UserProfile     `json:"profile"`
	Plan    []models.VisitPlanItem `json:"plan"`
	models.PlanSummary
}

type ImportSummary struct {
	Parsed    int      `json:"parsed"`
	Geocoded  int      `json:"geocoded"`
	Inserted  int64    `json:"inserted"`
	Districts []string `json:"districts"`
}

func (s *PlanningService) ListTasks(ctx context.Context, owner string) ([]models.Task, error) {
	tasks, err := s.Store.ListTasks(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// CreateTask applies defaults, checks bounds and stores the task under the
// owner's next id.
func (s *PlanningService) CreateTask(ctx context.Context, owner string, task models.Task) (models.Task, error) {
	if task.DurationMin < 0 {
		return models.Task{}, fmt.Errorf("%w: duration_min must not be negative", ErrInvalidTask)
	}
	if task.DurationMin == 0 {
		task.DurationMin = models.DefaultTaskDurationMin
	}
	if task.Priority == 0 {
		task.Priority = models.DefaultTaskPriority
	}
	task.Earliest = s.Zone.NormalizePtr(task.Earliest)
	task.Latest = s.Zone.NormalizePtr(task.Latest)
	task.WindowFrom = s.Zone.NormalizePtr(task.WindowFrom)
	task.WindowTo = s.Zone.NormalizePtr(task.WindowTo)
	if task.Earliest != nil && task.Latest != nil && task.Earliest.After(*task.Latest) {
		return models.Task{}, fmt.Errorf("%w: earliest is after latest", ErrInvalidTask)
	}
	if task.WindowFrom != nil && task.WindowTo != nil && task.WindowFrom.After(*task.WindowTo) {
		return models.Task{}, fmt.Errorf("%w: window_from is after window_to", ErrInvalidTask)
	}

	created, err := s.Store.CreateTask(ctx, owner, task)
	if err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}
	s.Logger.Info().Str("owner", owner).Str("task_id", created.ID).Msg("task created")
	return created, nil
}

func (s *PlanningService) DeleteTask(ctx context.Context, owner, id string) error {
	return s.Store.DeleteTask(ctx, owner, id)
}

// BuildSchedule places inline tasks, or the owner's stored tasks when inline
// is empty, between dayStart and dayEnd.
func (s *PlanningService) BuildSchedule(ctx context.Context, owner string, inline []models.Task, dayStart, dayEnd time.Time) (ScheduleResult, error) {
	tasks := inline
	if len(tasks) == 0 {
		stored, err := s.ListTasks(ctx, owner)
		if err != nil {
			return ScheduleResult{}, err
		}
		tasks = stored
	}

	out := ScheduleResult{}
	if err := scheduler.VerifyDAG(tasks); err != nil {
		s.Logger.Warn().Err(err).Str("owner", owner).Msg("task dependencies contain a cycle")
		out.Warnings = append(out.Warnings, err.Error())
	}

	res, err := s.Scheduler.Build(tasks, dayStart, dayEnd)
	if err != nil {
		return ScheduleResult{}, err
	}
	out.Items = res.Items
	out.Unscheduled = res.Unscheduled
	out.Reasons = res.Reasons

	metrics.PlanRuns.WithLabelValues("schedule").Inc()
	metrics.PlanItems.WithLabelValues("schedule").Observe(float64(len(res.Items)))
	s.Logger.Info().
		Str("owner", owner).
		Int("tasks", len(tasks)).
		Int("placed", len(res.Items)).
		Int("unscheduled", len(res.Unscheduled)).
		Msg("schedule built")
	return out, nil
}

func (s *PlanningService) OptimizePlan(ctx context.Context, profile models.UserProfile, date time.Time, existing []models.VisitPlanItem) (PlanResult, error) {
	plan, err := s.Optimizer.OptimizePlan(ctx, profile, date, existing)
	if err != nil {
		return PlanResult{}, err
	}
	return s.result("optimize", profile, plan), nil
}

func (s *PlanningService) Reoptimize(ctx context.Context, profile models.UserProfile, current []models.VisitPlanItem, delayMin int, currentLocation string) (PlanResult, error) {
	plan, err := s.Optimizer.Reoptimize(ctx, profile, current, delayMin, currentLocation)
	if err != nil {
		return PlanResult{}, err
	}
	return s.result("reoptimize", profile, plan), nil
}

// Suggest fills explicit slots, or slots derived from busy events over the
// next three weeks when none are given.
func (s *PlanningService) Suggest(ctx context.Context, profile models.UserProfile, slots, busy []models.TimeSlot, weekStart time.Time) (PlanResult, error) {
	if len(slots) == 0 {
		from := weekStart
		if from.IsZero() {
			from = s.Optimizer.Now()
		}
		slots = s.Optimizer.FindEmptySlots(busy, from, optimizer.DefaultSlotDays)
		s.Logger.Debug().Int("busy", len(busy)).Int("slots", len(slots)).Msg("derived empty slots")
	}
	plan, err := s.Optimizer.Suggest(ctx, profile, slots, weekStart)
	if err != nil {
		return PlanResult{}, err
	}
	return s.result("suggest", profile, plan), nil
}

func (s *PlanningService) ListLocations(ctx context.Context, district string) ([]models.Location, error) {
	locs, err := s.Store.ListByDistrict(ctx, district)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locs, nil
}

func (s *PlanningService) LocationStats(ctx context.Context, district string) (models.LocationStats, error) {
	locs, err := s.ListLocations(ctx, district)
	if err != nil {
		return models.LocationStats{}, err
	}
	if len(locs) == 0 {
		return models.LocationStats{}, db.ErrNotFound
	}
	return catalog.Statistics(district, locs), nil
}

// ImportCatalog replaces the catalog of every district in the document.
// Locations without coordinates are geocoded when geocodeMissing is set.
func (s *PlanningService) ImportCatalog(ctx context.Context, r io.Reader, geocodeMissing bool) (ImportSummary, error) {
	locs, err := catalog.Decode(r)
	if err != nil {
		return ImportSummary{}, err
	}
	summary := ImportSummary{Parsed: len(locs), Districts: []string{}}
	seen := map[string]bool{}
	for _, l := range locs {
		if !seen[l.District] {
			seen[l.District] = true
			summary.Districts = append(summary.Districts, l.District)
		}
	}
	if geocodeMissing {
		summary.Geocoded = catalog.FillCoordinates(ctx, s.Geocoder, locs, s.Country, false, s.Logger)
	}
	inserted, err := s.Store.ReplaceLocations(ctx, locs)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("store locations: %w", err)
	}
	summary.Inserted = inserted
	s.Logger.Info().Int("parsed", summary.Parsed).Int("geocoded", summary.Geocoded).Strs("districts", summary.Districts).Msg("catalog imported")
	return summary, nil
}

func (s *PlanningService) result(op string, profile models.UserProfile, plan []models.VisitPlanItem) PlanResult {
	metrics.PlanRuns.WithLabelValues(op).Inc()
	metrics.PlanItems.WithLabelValues(op).Observe(float64(len(plan)))
	summary := models.Summarize(plan)
	s.Logger.Info().
		Str("op", op).
		Str("district", profile.District).
		Str("tier", string(profile.ActivityLevel)).
		Int("visits", summary.Visits).
		Float64("total_distance", summary.TotalDistance).
		Msg("plan ready")
	return PlanResult{Profile: profile, Plan: plan, PlanSummary: summary}
}
