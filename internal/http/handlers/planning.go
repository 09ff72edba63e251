package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dayplanner/backend/internal/models"
)

type ProfileRequest struct {
	District      string `json:"district" validate:"required,max=100"`
	ActivityLevel string `json:"activity_level" validate:"omitempty,oneof=easy medium hard"`
}

// PlanTarget carries optional profile overrides for a planning request.
type PlanTarget struct {
	District      string `json:"district"`
	ActivityLevel string `json:"activity_level"`
}

type PlanItemRequest struct {
	Title          string  `json:"title"`
	Location       string  `json:"location" validate:"required"`
	Address        string  `json:"address"`
	LocationType   string  `json:"location_type"`
	Priority       int     `json:"priority"`
	Exposure       int     `json:"exposure"`
	StartTime      string  `json:"start_time" validate:"required"`
	EndTime        string  `json:"end_time" validate:"required"`
	TravelTime     int     `json:"travel_time"`
	TravelDistance float64 `json:"travel_distance"`
	Score          float64 `json:"score"`
	Day            string  `json:"day"`
}

type OptimizeRequest struct {
	PlanTarget
	Date           string            `json:"date"`
	ExistingVisits []PlanItemRequest `json:"existing_visits" validate:"dive"`
}

type ReoptimizeRequest struct {
	PlanTarget
	CurrentPlan     []PlanItemRequest `json:"current_plan" validate:"dive"`
	DelayMinutes    int               `json:"delay_minutes" validate:"min=0"`
	CurrentLocation string            `json:"current_location"`
}

type SlotRequest struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
	Day   string `json:"day"`
}

type SuggestRequest struct {
	PlanTarget
	EmptySlots []SlotRequest `json:"empty_slots" validate:"dive"`
	BusyEvents []SlotRequest `json:"busy_events" validate:"dive"`
	WeekStart  string        `json:"week_start"`
}

func (h *Handler) profile(c *gin.Context, target PlanTarget) (models.UserProfile, bool) {
	p, err := h.Service.ResolveProfile(c.Request.Context(), userID(c), target.District, models.ActivityTier(target.ActivityLevel))
	if err != nil {
		h.fail(c, "Profile required", err)
		return models.UserProfile{}, false
	}
	return p, true
}

func (h *Handler) planItems(in []PlanItemRequest) ([]models.VisitPlanItem, error) {
	out := make([]models.VisitPlanItem, 0, len(in))
	for _, it := range in {
		start, err := h.Zone.Parse(it.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := h.Zone.Parse(it.EndTime)
		if err != nil {
			return nil, err
		}
		out = append(out, models.VisitPlanItem{
			Title:          it.Title,
			Location:       it.Location,
			Address:        it.Address,
			LocationType:   models.LocationType(it.LocationType),
			Priority:       it.Priority,
			Exposure:       it.Exposure,
			Start:          start,
			End:            end,
			TravelTimeMin:  it.TravelTime,
			TravelDistance: it.TravelDistance,
			Score:          it.Score,
			Day:            it.Day,
		})
	}
	return out, nil
}

func (h *Handler) slots(in []SlotRequest) ([]models.TimeSlot, error) {
	out := make([]models.TimeSlot, 0, len(in))
	for _, s := range in {
		start, err := h.Zone.Parse(s.Start)
		if err != nil {
			return nil, err
		}
		end, err := h.Zone.Parse(s.End)
		if err != nil {
			return nil, err
		}
		out = append(out, models.TimeSlot{Start: start, End: end, Day: s.Day})
	}
	return out, nil
}

// @Summary Get profile
// @Tags profile
// @Produce json
// @Param X-User-Id header string true "owner"
// @Success 200 {object} models.UserProfile
// @Failure 404 {object} map[string]any
// @Router /api/profile [get]
func (h *Handler) ProfileGet(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}
	p, err := h.Service.GetProfile(c.Request.Context(), owner)
	if err != nil {
		h.fail(c, "Profile not found", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Set profile
// @Tags profile
// @Accept json
// @Produce json
// @Param X-User-Id header string true "owner"
// @Param payload body ProfileRequest true "profile"
// @Success 200 {object} models.UserProfile
// @Router /api/profile [put]
func (h *Handler) ProfilePut(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}
	var req ProfileRequest
	if !h.bind(c, &req) {
		return
	}
	p, err := h.Service.SaveProfile(c.Request.Context(), models.UserProfile{
		UserID:        owner,
		District:      req.District,
		ActivityLevel: models.ActivityTier(req.ActivityLevel),
	})
	if err != nil {
		h.fail(c, "Failed to save profile", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Optimize a day plan
// @Description Greedy visit plan for the date (default today) within 09:00-18:00.
// @Tags plans
// @Accept json
// @Produce json
// @Param X-User-Id header string false "owner"
// @Param payload body OptimizeRequest true "request"
// @Success 200 {object} service.PlanResult
// @Failure 400 {object} map[string]any
// @Router /api/optimize [post]
func (h *Handler) Optimize(c *gin.Context) {
	var req OptimizeRequest
	if !h.bind(c, &req) {
		return
	}
	p, ok := h.profile(c, req.PlanTarget)
	if !ok {
		return
	}
	date := h.Service.Optimizer.Now()
	if t, err := h.parseTime(req.Date); err != nil {
		h.fail(c, "Invalid date", err)
		return
	} else if t != nil {
		date = *t
	}
	existing, err := h.planItems(req.ExistingVisits)
	if err != nil {
		h.fail(c, "Invalid existing_visits", err)
		return
	}
	res, err := h.Service.OptimizePlan(c.Request.Context(), p, date, existing)
	if err != nil {
		h.fail(c, "Failed to optimize plan", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Re-optimize after a delay
// @Tags plans
// @Accept json
// @Produce json
// @Param X-User-Id header string false "owner"
// @Param payload body ReoptimizeRequest true "request"
// @Success 200 {object} service.PlanResult
// @Router /api/reoptimize [post]
func (h *Handler) Reoptimize(c *gin.Context) {
	var req ReoptimizeRequest
	if !h.bind(c, &req) {
		return
	}
	p, ok := h.profile(c, req.PlanTarget)
	if !ok {
		return
	}
	current, err := h.planItems(req.CurrentPlan)
	if err != nil {
		h.fail(c, "Invalid current_plan", err)
		return
	}
	res, err := h.Service.Reoptimize(c.Request.Context(), p, current, req.DelayMinutes, req.CurrentLocation)
	if err != nil {
		h.fail(c, "Failed to reoptimize plan", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Suggest visits for free slots
// @Description Fills empty_slots, or slots derived from busy_events over three weeks when none are given.
// @Tags plans
// @Accept json
// @Produce json
// @Param X-User-Id header string false "owner"
// @Param payload body SuggestRequest true "request"
// @Success 200 {object} service.PlanResult
// @Router /api/suggest [post]
func (h *Handler) Suggest(c *gin.Context) {
	var req SuggestRequest
	if !h.bind(c, &req) {
		return
	}
	p, ok := h.profile(c, req.PlanTarget)
	if !ok {
		return
	}
	empty, err := h.slots(req.EmptySlots)
	if err != nil {
		h.fail(c, "Invalid empty_slots", err)
		return
	}
	busy, err := h.slots(req.BusyEvents)
	if err != nil {
		h.fail(c, "Invalid busy_events", err)
		return
	}
	var weekStart time.Time
	if t, err := h.parseTime(req.WeekStart); err != nil {
		h.fail(c, "Invalid week_start", err)
		return
	} else if t != nil {
		weekStart = *t
	}
	res, err := h.Service.Suggest(c.Request.Context(), p, empty, busy, weekStart)
	if err != nil {
		h.fail(c, "Failed to suggest visits", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary List catalog locations
// @Tags locations
// @Produce json
// @Param district query string true "district"
// @Success 200 {array} models.Location
// @Router /api/locations [get]
func (h *Handler) LocationsList(c *gin.Context) {
	district := c.Query("district")
	if district == "" {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "district is required", nil)
		return
	}
	locs, err := h.Service.ListLocations(c.Request.Context(), district)
	if err != nil {
		h.fail(c, "Failed to load locations", err)
		return
	}
	c.JSON(http.StatusOK, locs)
}

// @Summary District statistics
// @Tags locations
// @Produce json
// @Param district path string true "district"
// @Success 200 {object} models.LocationStats
// @Failure 404 {object} map[string]any
// @Router /api/locations/statistics/{district} [get]
func (h *Handler) LocationStats(c *gin.Context) {
	stats, err := h.Service.LocationStats(c.Request.Context(), c.Param("district"))
	if err != nil {
		h.fail(c, "District not found", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary Import location catalog
// @Description Multipart upload (field "file") of a YAML or JSON catalog. Replaces every district in the file.
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param X-Admin-Key header string true "admin key"
// @Param file formData file true "catalog file"
// @Param geocode query bool false "geocode locations without coordinates"
// @Success 200 {object} service.ImportSummary
// @Failure 400 {object} map[string]any
// @Router /api/admin/catalog/import [post]
func (h *Handler) CatalogImport(c *gin.Context) {
	if h.MaxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUpload)
	}
	file, err := c.FormFile("file")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "file is required", err.Error())
		return
	}
	f, err := file.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "cannot open file", err.Error())
		return
	}
	defer f.Close()

	geocodeMissing := true
	if v := c.Query("geocode"); v != "" {
		if geocodeMissing, err = strconv.ParseBool(v); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "geocode must be a boolean", err.Error())
			return
		}
	}
	summary, err := h.Service.ImportCatalog(c.Request.Context(), f, geocodeMissing)
	if err != nil {
		h.fail(c, "Catalog import failed", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
