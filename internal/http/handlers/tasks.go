package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dayplanner/backend/internal/models"
	"github.com/dayplanner/backend/internal/optimizer"
)

type TaskRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	DurationMin int      `json:"duration_min" validate:"min=0,max=1440"`
	Priority    int      `json:"priority" validate:"min=0"`
	Earliest    string   `json:"earliest"`
	Latest      string   `json:"latest"`
	WindowFrom  string   `json:"window_from"`
	WindowTo    string   `json:"window_to"`
	DependsOn   []string `json:"depends_on"`
	PlaceID     string   `json:"place_id"`
	District    string   `json:"district"`
}

type InlineTask struct {
	TaskID string `json:"task_id" validate:"required"`
	TaskRequest
}

type BuildScheduleRequest struct {
	DayStart string       `json:"day_start"`
	DayEnd   string       `json:"day_end"`
	Tasks    []InlineTask `json:"tasks" validate:"dive"`
}

func (h *Handler) toTask(req TaskRequest) (models.Task, error) {
	t := models.Task{
		Title:       req.Title,
		DurationMin: req.DurationMin,
		Priority:    req.Priority,
		DependsOn:   req.DependsOn,
		PlaceID:     req.PlaceID,
		District:    req.District,
	}
	if t.DependsOn == nil {
		t.DependsOn = []string{}
	}
	var err error
	if t.Earliest, err = h.parseTime(req.Earliest); err != nil {
		return models.Task{}, err
	}
	if t.Latest, err = h.parseTime(req.Latest); err != nil {
		return models.Task{}, err
	}
	if t.WindowFrom, err = h.parseTime(req.WindowFrom); err != nil {
		return models.Task{}, err
	}
	if t.WindowTo, err = h.parseTime(req.WindowTo); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// @Summary List tasks
// @Tags tasks
// @Produce json
// @Param X-User-Id header string true "owner"
// @Success 200 {array} models.Task
// @Router /api/tasks [get]
func (h *Handler) TasksList(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}
	tasks, err := h.Service.ListTasks(c.Request.Context(), owner)
	if err != nil {
		h.fail(c, "Failed to load tasks", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// @Summary Create task
// @Description The id is assigned by the server (T0001, T0002, ...). Unknown dependencies are dropped.
// @Tags tasks
// @Accept json
// @Produce json
// @Param X-User-Id header string true "owner"
// @Param payload body TaskRequest true "task"
// @Success 201 {object} models.Task
// @Failure 400 {object} map[string]any
// @Router /api/tasks [post]
func (h *Handler) TaskCreate(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}
	var req TaskRequest
	if !h.bind(c, &req) {
		return
	}
	task, err := h.toTask(req)
	if err != nil {
		h.fail(c, "Invalid timestamp", err)
		return
	}
	created, err := h.Service.CreateTask(c.Request.Context(), owner, task)
	if err != nil {
		h.fail(c, "Failed to create task", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// @Summary Delete task
// @Tags tasks
// @Param X-User-Id header string true "owner"
// @Param id path string true "task id"
// @Success 204
// @Failure 404 {object} map[string]any
// @Router /api/tasks/{id} [delete]
func (h *Handler) TaskDelete(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.Service.DeleteTask(c.Request.Context(), owner, c.Param("id")); err != nil {
		h.fail(c, "Task not deleted", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Build day schedule
// @Description Places inline tasks, or the stored tasks when none are given. Day bounds default to 09:00-18:00 today.
// @Tags schedule
// @Accept json
// @Produce json
// @Param X-User-Id header string false "owner"
// @Param payload body BuildScheduleRequest true "request"
// @Success 200 {object} service.ScheduleResult
// @Failure 400 {object} map[string]any
// @Router /api/schedule/build [post]
func (h *Handler) ScheduleBuild(c *gin.Context) {
	var req BuildScheduleRequest
	if !h.bind(c, &req) {
		return
	}
	owner := userID(c)
	if owner == "" && len(req.Tasks) == 0 {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "tasks or "+UserIDHeader+" header required", nil)
		return
	}

	now := h.Zone.Normalize(time.Now())
	dayStart := h.Zone.At(now, optimizer.DayStartHour, 0)
	dayEnd := h.Zone.At(now, optimizer.DayEndHour, 0)
	if t, err := h.parseTime(req.DayStart); err != nil {
		h.fail(c, "Invalid day_start", err)
		return
	} else if t != nil {
		dayStart = *t
	}
	if t, err := h.parseTime(req.DayEnd); err != nil {
		h.fail(c, "Invalid day_end", err)
		return
	} else if t != nil {
		dayEnd = *t
	}

	tasks := make([]models.Task, 0, len(req.Tasks))
	for _, in := range req.Tasks {
		task, err := h.toTask(in.TaskRequest)
		if err != nil {
			h.fail(c, "Invalid timestamp", err)
			return
		}
		task.ID = in.TaskID
		tasks = append(tasks, task)
	}

	res, err := h.Service.BuildSchedule(c.Request.Context(), owner, tasks, dayStart, dayEnd)
	if err != nil {
		h.fail(c, "Failed to build schedule", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
