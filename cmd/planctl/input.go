package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dayplanner/backend/internal/civil"
	"github.com/dayplanner/backend/internal/models"
)

// Timestamps stay strings until the zone is known so offset-less values
// are read as local civil time.

type taskFile struct {
	DayStart string      `yaml:"day_start"`
	DayEnd   string      `yaml:"day_end"`
	Tasks    []taskInput `yaml:"tasks"`
}

type taskInput struct {
	ID          string   `yaml:"task_id"`
	Title       string   `yaml:"title"`
	DurationMin int      `yaml:"duration_min"`
	Priority    int      `yaml:"priority"`
	Earliest    string   `yaml:"earliest"`
	Latest      string   `yaml:"latest"`
	WindowFrom  string   `yaml:"window_from"`
	WindowTo    string   `yaml:"window_to"`
	DependsOn   []string `yaml:"depends_on"`
}

type slotFile struct {
	WeekStart  string      `yaml:"week_start"`
	EmptySlots []slotInput `yaml:"empty_slots"`
	BusyEvents []slotInput `yaml:"busy_events"`
}

type slotInput struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
	Day   string `yaml:"day"`
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func optionalTime(z civil.Zone, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := z.Parse(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (f taskFile) tasks(z civil.Zone) ([]models.Task, error) {
	out := make([]models.Task, 0, len(f.Tasks))
	for _, in := range f.Tasks {
		t := models.Task{
			ID:          in.ID,
			Title:       in.Title,
			DurationMin: in.DurationMin,
			Priority:    in.Priority,
			DependsOn:   in.DependsOn,
		}
		var err error
		if t.Earliest, err = optionalTime(z, in.Earliest); err != nil {
			return nil, fmt.Errorf("task %s: %w", in.ID, err)
		}
		if t.Latest, err = optionalTime(z, in.Latest); err != nil {
			return nil, fmt.Errorf("task %s: %w", in.ID, err)
		}
		if t.WindowFrom, err = optionalTime(z, in.WindowFrom); err != nil {
			return nil, fmt.Errorf("task %s: %w", in.ID, err)
		}
		if t.WindowTo, err = optionalTime(z, in.WindowTo); err != nil {
			return nil, fmt.Errorf("task %s: %w", in.ID, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func slots(z civil.Zone, in []slotInput) ([]models.TimeSlot, error) {
	out := make([]models.TimeSlot, 0, len(in))
	for _, s := range in {
		start, err := z.Parse(s.Start)
		if err != nil {
			return nil, err
		}
		end, err := z.Parse(s.End)
		if err != nil {
			return nil, err
		}
		out = append(out, models.TimeSlot{Start: start, End: end, Day: s.Day})
	}
	return out, nil
}
