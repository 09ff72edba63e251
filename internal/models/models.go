package models

import "time"

const (
	DefaultTaskDurationMin = 30
	DefaultTaskPriority    = 50
)

type Task struct {
	ID          string     `json:"task_id" yaml:"task_id"`
	Title       string     `json:"title" yaml:"title"`
	DurationMin int        `json:"duration_min" yaml:"duration_min"`
	Priority    int        `json:"priority" yaml:"priority"`
	Earliest    *time.Time `json:"earliest,omitempty" yaml:"earliest,omitempty"`
	Latest      *time.Time `json:"latest,omitempty" yaml:"latest,omitempty"`
	WindowFrom  *time.Time `json:"window_from,omitempty" yaml:"window_from,omitempty"`
	WindowTo    *time.Time `json:"window_to,omitempty" yaml:"window_to,omitempty"`
	DependsOn   []string   `json:"depends_on" yaml:"depends_on"`
	PlaceID     string     `json:"place_id,omitempty" yaml:"place_id,omitempty"`
	District    string     `json:"district,omitempty" yaml:"district,omitempty"`
}

type ScheduledItem struct {
	TaskID string    `json:"task_id"`
	Title  string    `json:"title"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

type LocationType string

const (
	LocationGovernment LocationType = "government"
	LocationTransport  LocationType = "transport"
	LocationPublic     LocationType = "public"
	LocationCommercial LocationType = "commercial"
	LocationEducation  LocationType = "education"
)

// VisitDuration is the time budgeted for one stop at a location of this type.
func (t LocationType) VisitDuration() time.Duration {
	switch t {
	case LocationGovernment:
		return 45 * time.Minute
	case LocationTransport:
		return 15 * time.Minute
	case LocationPublic:
		return 30 * time.Minute
	case LocationCommercial:
		return 60 * time.Minute
	case LocationEducation:
		return 90 * time.Minute
	default:
		return 30 * time.Minute
	}
}

func (t LocationType) Valid() bool {
	switch t {
	case LocationGovernment, LocationTransport, LocationPublic, LocationCommercial, LocationEducation:
		return true
	}
	return false
}

type Location struct {
	ID       string       `json:"id" yaml:"id"`
	District string       `json:"district" yaml:"district"`
	Name     string       `json:"name" yaml:"name" validate:"required"`
	Address  string       `json:"address" yaml:"address" validate:"required"`
	Type     LocationType `json:"type" yaml:"type" validate:"required"`
	Priority int          `json:"priority" yaml:"priority" validate:"min=1,max=5"`
	Exposure int          `json:"exposure" yaml:"exposure" validate:"min=0"`
	Lat      *float64     `json:"lat,omitempty" yaml:"lat,omitempty"`
	Lon      *float64     `json:"lon,omitempty" yaml:"lon,omitempty"`
}

type ActivityTier string

const (
	TierEasy   ActivityTier = "easy"
	TierMedium ActivityTier = "medium"
	TierHard   ActivityTier = "hard"
)

type TierRules struct {
	MaxVisits     int           `json:"max_visits"`
	MaxDistanceKm float64       `json:"max_distance_km"`
	BreakTime     time.Duration `json:"break_time"`
}

var tierRules = map[ActivityTier]TierRules{
	TierEasy:   {MaxVisits: 3, MaxDistanceKm: 5, BreakTime: 60 * time.Minute},
	TierMedium: {MaxVisits: 6, MaxDistanceKm: 8, BreakTime: 45 * time.Minute},
	TierHard:   {MaxVisits: 8, MaxDistanceKm: 12, BreakTime: 30 * time.Minute},
}

// Rules returns the limits for the tier. Unknown tiers get the medium rules.
func (t ActivityTier) Rules() TierRules {
	if r, ok := tierRules[t]; ok {
		return r
	}
	return tierRules[TierMedium]
}

func (t ActivityTier) Known() bool {
	_, ok := tierRules[t]
	return ok
}

type UserProfile struct {
	UserID        string       `json:"user_id"`
	District      string       `json:"district"`
	ActivityLevel ActivityTier `json:"activity_level"`
}

type VisitPlanItem struct {
	Title          string       `json:"title"`
	Location       string       `json:"location"`
	Address        string       `json:"address"`
	LocationType   LocationType `json:"location_type"`
	Priority       int          `json:"priority"`
	Exposure       int          `json:"exposure"`
	Start          time.Time    `json:"start_time"`
	End            time.Time    `json:"end_time"`
	TravelTimeMin  int          `json:"travel_time"`
	TravelDistance float64      `json:"travel_distance"`
	Score          float64      `json:"score"`
	Day            string       `json:"day,omitempty"`
	Description    string       `json:"description,omitempty"`
}

type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Day   string    `json:"day"`
}

type PlanSummary struct {
	TotalDistance     float64 `json:"total_distance"`
	EstimatedExposure int     `json:"estimated_exposure"`
	Visits            int     `json:"visits"`
}

func Summarize(items []VisitPlanItem) PlanSummary {
	s := PlanSummary{Visits: len(items)}
	for _, it := range items {
		s.TotalDistance += it.TravelDistance
		s.EstimatedExposure += it.Exposure
	}
	return s
}

type TypeStats struct {
	Count         int `json:"count"`
	TotalExposure int `json:"total_exposure"`
}

type LocationStats struct {
	District       string                     `json:"district"`
	TotalLocations int                        `json:"total_locations"`
	TotalExposure  int                        `json:"total_exposure"`
	ByType         map[LocationType]TypeStats `json:"by_type"`
}
