package optimizer

import (
	"context"
	"sort"
	"time"

	"github.com/dayplanner/backend/internal/models"
	"github.com/dayplanner/backend/internal/scoring"
	"github.com/dayplanner/backend/internal/travel"
)

const (
	MaxSuggestions  = 5
	SuggestLeadTime = 2 * time.Hour
	DefaultSlotDays = 21
)

const (
	slotFirstHour = 5
	slotLastHour  = 22
	slotLength    = 2 * time.Hour
	eventBuffer   = 30 * time.Minute
)

// Suggest proposes at most one visit per calendar day into the given free
// slots. Slots starting before now+2h, or before weekStart when set, are
// ignored.
func (o *Optimizer) Suggest(ctx context.Context, profile models.UserProfile, slots []models.TimeSlot, weekStart time.Time) ([]models.VisitPlanItem, error) {
	out := []models.VisitPlanItem{}
	cutoff := o.Zone.Normalize(o.now()).Add(SuggestLeadTime)
	if !weekStart.IsZero() {
		weekStart = o.Zone.Normalize(weekStart)
	}

	byDay := map[string][]models.TimeSlot{}
	for _, s := range slots {
		s.Start = o.Zone.Normalize(s.Start)
		s.End = o.Zone.Normalize(s.End)
		if s.Start.Before(cutoff) || !s.End.After(s.Start) {
			continue
		}
		if !weekStart.IsZero() && s.Start.Before(weekStart) {
			continue
		}
		key := o.Zone.DateKey(s.Start)
		byDay[key] = append(byDay[key], s)
	}
	if len(byDay) == 0 {
		return out, nil
	}

	locs, err := o.locations(ctx, profile.District)
	if err != nil {
		return nil, err
	}
	if len(locs) == 0 {
		return out, nil
	}

	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)

	limit := min(profile.ActivityLevel.Rules().MaxVisits, len(days), MaxSuggestions)
	used := make([]bool, len(locs))

	for _, day := range days {
		if len(out) >= limit {
			break
		}
		daySlots := byDay[day]
		sort.SliceStable(daySlots, func(i, j int) bool { return daySlots[i].Start.Before(daySlots[j].Start) })

		for _, slot := range daySlots {
			available, index := unused(locs, used)
			if len(available) == 0 {
				return out, nil
			}
			top, _ := scoring.NewRanking(available, scoring.Extended, o.Zone.Hour(slot.Start)).Pop()
			dur := top.Location.Type.VisitDuration()
			if dur > slot.End.Sub(slot.Start) {
				continue
			}
			used[index[top.Index]] = true

			item := visitItem(top.Location, slot.Start, slot.Start.Add(dur), top.Score, travel.Estimate{})
			item.Day = slot.Day
			if item.Day == "" {
				item.Day = o.Zone.DayLabel(slot.Start)
			}
			out = append(out, item)
			break
		}
	}
	return out, nil
}

// FindEmptySlots lists 2-hour slots from 05:00 (last one starting at 21:00)
// for days consecutive days starting on the Sunday of from's week, skipping
// slots that start within the lead time and slots within 30 minutes of a
// busy event.
func (o *Optimizer) FindEmptySlots(busy []models.TimeSlot, from time.Time, days int) []models.TimeSlot {
	if days <= 0 {
		days = DefaultSlotDays
	}
	cutoff := o.Zone.Normalize(o.now()).Add(SuggestLeadTime)
	day := o.Zone.StartOfDay(from)
	weekStart := day.AddDate(0, 0, -int(day.Weekday()))

	var out []models.TimeSlot
	for d := 0; d < days; d++ {
		date := weekStart.AddDate(0, 0, d)
		for h := slotFirstHour; h < slotLastHour; h += 2 {
			start := o.Zone.At(date, h, 0)
			end := start.Add(slotLength)
			if !start.After(cutoff) {
				continue
			}
			if conflicts(busy, start.Add(-eventBuffer), end.Add(eventBuffer)) {
				continue
			}
			out = append(out, models.TimeSlot{Start: start, End: end, Day: o.Zone.DayLabel(start)})
		}
	}
	return out
}

func conflicts(busy []models.TimeSlot, start, end time.Time) bool {
	for _, ev := range busy {
		if start.Before(ev.End) && end.After(ev.Start) {
			return true
		}
	}
	return false
}

func unused(locs []models.Location, used []bool) ([]models.Location, []int) {
	available := make([]models.Location, 0, len(locs))
	index := make([]int, 0, len(locs))
	for i, loc := range locs {
		if used[i] {
			continue
		}
		available = append(available, loc)
		index = append(index, i)
	}
	return available, index
}
