// Package scheduler places tasks on a single day's timeline with one greedy
// pass: highest priority first, each task at the earliest start its bounds
// allow after the previous placement, no retries.
package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dayplanner/backend/internal/civil"
	"github.com/dayplanner/backend/internal/models"
)

var ErrInvalidInput = errors.New("invalid scheduling input")

const (
	ReasonOutOfHours       = "out_of_working_hours"
	ReasonDependency       = "dep_not_done"
	ReasonBeforeWindowFrom = "before_window_from"
	ReasonAfterWindowTo    = "after_window_to"
	ReasonBeforeEarliest   = "before_earliest"
	ReasonAfterLatest      = "after_latest"
)

type Result struct {
	Items       []models.ScheduledItem `json:"items"`
	Unscheduled []string               `json:"unscheduled"`
	// Reasons holds the first failed check for every unscheduled task.
	Reasons map[string]string `json:"reasons"`
}

type Scheduler struct {
	Zone civil.Zone
}

func New(zone civil.Zone) *Scheduler {
	return &Scheduler{Zone: zone}
}

type entry struct {
	id         string
	title      string
	duration   time.Duration
	priority   int
	earliest   *time.Time
	latest     *time.Time
	windowFrom *time.Time
	windowTo   *time.Time
	dependsOn  []string
	oversized  bool
}

// Build places tasks between dayStart and dayEnd. A task whose dependency
// is not placed before it in priority order is reported unscheduled, which
// includes every task on a dependency cycle.
func (s *Scheduler) Build(tasks []models.Task, dayStart, dayEnd time.Time) (Result, error) {
	dayStart = s.Zone.Normalize(dayStart)
	dayEnd = s.Zone.Normalize(dayEnd)
	if dayStart.IsZero() || dayEnd.IsZero() || !dayEnd.After(dayStart) {
		return Result{}, fmt.Errorf("%w: day end must be after day start", ErrInvalidInput)
	}

	entries, err := s.prepare(tasks, dayEnd.Sub(dayStart))
	if err != nil {
		return Result{}, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].priority > entries[j].priority
	})

	result := Result{
		Items:       []models.ScheduledItem{},
		Unscheduled: []string{},
		Reasons:     map[string]string{},
	}
	placed := make(map[string]bool, len(entries))
	cursor := dayStart

	for _, e := range entries {
		start := cursor
		if e.windowFrom != nil && start.Before(*e.windowFrom) {
			start = *e.windowFrom
		}
		if e.earliest != nil && start.Before(*e.earliest) {
			start = *e.earliest
		}

		if reason := check(e, start, dayStart, dayEnd, placed); reason != "" {
			result.Unscheduled = append(result.Unscheduled, e.id)
			result.Reasons[e.id] = reason
			continue
		}

		end := start.Add(e.duration)
		result.Items = append(result.Items, models.ScheduledItem{
			TaskID: e.id,
			Title:  e.title,
			Start:  start,
			End:    end,
		})
		placed[e.id] = true
		cursor = end
	}
	return result, nil
}

func check(e entry, start, dayStart, dayEnd time.Time, placed map[string]bool) string {
	end := start.Add(e.duration)
	if e.oversized || start.Before(dayStart) || end.After(dayEnd) {
		return ReasonOutOfHours
	}
	for _, dep := range e.dependsOn {
		if !placed[dep] {
			return ReasonDependency + ":" + dep
		}
	}
	if e.windowFrom != nil && start.Before(*e.windowFrom) {
		return ReasonBeforeWindowFrom
	}
	if e.windowTo != nil && end.After(*e.windowTo) {
		return ReasonAfterWindowTo
	}
	if e.earliest != nil && start.Before(*e.earliest) {
		return ReasonBeforeEarliest
	}
	if e.latest != nil && end.After(*e.latest) {
		return ReasonAfterLatest
	}
	return ""
}

// prepare validates tasks and converts them to entries. Durations longer
// than span are marked oversized and never converted, so they cannot
// overflow time.Duration.
func (s *Scheduler) prepare(tasks []models.Task, span time.Duration) ([]entry, error) {
	seen := make(map[string]bool, len(tasks))
	out := make([]entry, 0, len(tasks))
	for i, t := range tasks {
		if t.ID == "" {
			return nil, fmt.Errorf("%w: task %d has no id", ErrInvalidInput, i)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("%w: duplicate task id %s", ErrInvalidInput, t.ID)
		}
		seen[t.ID] = true

		duration := t.DurationMin
		if duration < 0 {
			return nil, fmt.Errorf("%w: task %s has negative duration", ErrInvalidInput, t.ID)
		}
		if duration == 0 {
			duration = models.DefaultTaskDurationMin
		}
		oversized := int64(duration) > int64(span/time.Minute)
		length := span
		if !oversized {
			length = time.Duration(duration) * time.Minute
		}
		priority := t.Priority
		if priority == 0 {
			priority = models.DefaultTaskPriority
		}

		e := entry{
			id:         t.ID,
			title:      t.Title,
			duration:   length,
			oversized:  oversized,
			priority:   priority,
			earliest:   s.Zone.NormalizePtr(t.Earliest),
			latest:     s.Zone.NormalizePtr(t.Latest),
			windowFrom: s.Zone.NormalizePtr(t.WindowFrom),
			windowTo:   s.Zone.NormalizePtr(t.WindowTo),
			dependsOn:  t.DependsOn,
		}
		if e.earliest != nil && e.latest != nil && e.earliest.After(*e.latest) {
			return nil, fmt.Errorf("%w: task %s has earliest after latest", ErrInvalidInput, t.ID)
		}
		if e.windowFrom != nil && e.windowTo != nil && e.windowFrom.After(*e.windowTo) {
			return nil, fmt.Errorf("%w: task %s has window_from after window_to", ErrInvalidInput, t.ID)
		}
		out = append(out, e)
	}
	return out, nil
}
