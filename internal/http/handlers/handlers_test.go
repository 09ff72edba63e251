package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/dayplanner/backend/internal/civil"
	"github.com/dayplanner/backend/internal/db"
	"github.com/dayplanner/backend/internal/models"
	"github.com/dayplanner/backend/internal/optimizer"
	"github.com/dayplanner/backend/internal/scheduler"
	"github.com/dayplanner/backend/internal/service"
	"github.com/dayplanner/backend/internal/travel"
)

var kst = civil.FixedZone("KST", 9*3600)

func newTestRouter(t *testing.T, locs []models.Location) (*gin.Engine, *db.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := db.NewMemory(locs)
	tp := travel.NewService(travel.MockBackend{}, travel.Options{Logger: zerolog.Nop()})
	opt := optimizer.New(store, tp, kst, zerolog.Nop())
	opt.Now = func() time.Time { return time.Date(2025, 9, 1, 8, 0, 0, 0, kst.Location()) }
	svc := &service.PlanningService{
		Store:     store,
		Scheduler: scheduler.New(kst),
		Optimizer: opt,
		Zone:      kst,
		Logger:    zerolog.Nop(),
	}
	h := &Handler{Service: svc, Store: store, Zone: kst, Validator: validator.New(), Logger: zerolog.Nop(), MaxUpload: 1 << 20}

	r := gin.New()
	r.GET("/healthz", h.Healthz)
	r.GET("/api/tasks", h.TasksList)
	r.POST("/api/tasks", h.TaskCreate)
	r.DELETE("/api/tasks/:id", h.TaskDelete)
	r.POST("/api/schedule/build", h.ScheduleBuild)
	r.GET("/api/profile", h.ProfileGet)
	r.PUT("/api/profile", h.ProfilePut)
	r.POST("/api/optimize", h.Optimize)
	r.POST("/api/reoptimize", h.Reoptimize)
	r.POST("/api/suggest", h.Suggest)
	r.GET("/api/locations", h.LocationsList)
	r.GET("/api/locations/statistics/:district", h.LocationStats)
	r.POST("/api/admin/catalog/import", h.CatalogImport)
	return r, store
}

func sampleLocations() []models.Location {
	return []models.Location{
		{ID: "1", District: "Gunpo-si", Name: "City Hall", Address: "Cheongbaengni-gil 6", Type: models.LocationGovernment, Priority: 5, Exposure: 80},
		{ID: "2", District: "Gunpo-si", Name: "Gunpo Station", Address: "Gongdan-ro 137", Type: models.LocationTransport, Priority: 3, Exposure: 120},
		{ID: "3", District: "Gunpo-si", Name: "Sanbon Market", Address: "Gosan-ro 712", Type: models.LocationCommercial, Priority: 4, Exposure: 180},
	}
}

func do(r *gin.Engine, method, path, user string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(UserIDHeader, user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, w.Body.String())
	}
	return env.Error.Code
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	w := do(r, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestTasksCRUD(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := do(r, http.MethodPost, "/api/tasks", "u1", map[string]any{"title": "report", "earliest": "2025-09-01T10:00:00"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID != "T0001" || created.DurationMin != 30 {
		t.Fatalf("unexpected task: %+v", created)
	}
	if created.Earliest == nil || created.Earliest.Hour() != 10 {
		t.Fatalf("expected offset-less earliest read as local 10:00, got %v", created.Earliest)
	}

	w = do(r, http.MethodGet, "/api/tasks", "u1", nil)
	var tasks []models.Task
	_ = json.Unmarshal(w.Body.Bytes(), &tasks)
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if w := do(r, http.MethodGet, "/api/tasks", "u2", nil); strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("tasks leaked across owners: %s", w.Body.String())
	}

	if w := do(r, http.MethodDelete, "/api/tasks/T0001", "u1", nil); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	w = do(r, http.MethodDelete, "/api/tasks/T0001", "u1", nil)
	if w.Code != http.StatusNotFound || errorCode(t, w) != "NOT_FOUND" {
		t.Fatalf("expected 404 NOT_FOUND, got %d %s", w.Code, w.Body.String())
	}
}

func TestTaskCreateRequiresUser(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	w := do(r, http.MethodPost, "/api/tasks", "", map[string]any{"title": "x"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestTaskCreateValidation(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	cases := []struct {
		name string
		body map[string]any
		code string
	}{
		{"missing title", map[string]any{"duration_min": 10}, "VALIDATION_ERROR"},
		{"bad timestamp", map[string]any{"title": "x", "earliest": "soon"}, "INVALID_REQUEST"},
		{"earliest after latest", map[string]any{"title": "x", "earliest": "2025-09-01T12:00:00", "latest": "2025-09-01T11:00:00"}, "INVALID_REQUEST"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/tasks", "u1", tc.body)
			if w.Code != http.StatusBadRequest || errorCode(t, w) != tc.code {
				t.Fatalf("expected 400 %s, got %d %s", tc.code, w.Code, w.Body.String())
			}
		})
	}
}

func TestScheduleBuildInline(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	body := map[string]any{
		"day_start": "2025-09-01T09:00:00+09:00",
		"day_end":   "2025-09-01T18:00:00+09:00",
		"tasks": []map[string]any{
			{"task_id": "A", "title": "a", "duration_min": 60, "priority": 10},
			{"task_id": "B", "title": "b", "duration_min": 30, "priority": 90, "depends_on": []string{"A"}},
			{"task_id": "C", "title": "c", "duration_min": 30, "window_from": "2025-09-01T17:50:00", "window_to": "2025-09-01T18:00:00"},
		},
	}
	w := do(r, http.MethodPost, "/api/schedule/build", "", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res service.ScheduleResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Items) != 2 || res.Items[0].TaskID != "A" || res.Items[1].TaskID != "B" {
		t.Fatalf("unexpected items: %+v", res.Items)
	}
	if len(res.Unscheduled) != 1 || res.Unscheduled[0] != "C" {
		t.Fatalf("unexpected unscheduled: %v", res.Unscheduled)
	}
}

func TestScheduleBuildInvertedDay(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	body := map[string]any{
		"day_start": "2025-09-01T18:00:00",
		"day_end":   "2025-09-01T09:00:00",
		"tasks":     []map[string]any{{"task_id": "A", "title": "a"}},
	}
	w := do(r, http.MethodPost, "/api/schedule/build", "", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	if w := do(r, http.MethodGet, "/api/profile", "u1", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	w := do(r, http.MethodPut, "/api/profile", "u1", map[string]any{"district": "Gunpo-si", "activity_level": "hard"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = do(r, http.MethodGet, "/api/profile", "u1", nil)
	var p models.UserProfile
	_ = json.Unmarshal(w.Body.Bytes(), &p)
	if p.District != "Gunpo-si" || p.ActivityLevel != models.TierHard {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if w := do(r, http.MethodPut, "/api/profile", "u1", map[string]any{"district": "Gunpo-si", "activity_level": "extreme"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown tier, got %d", w.Code)
	}
}

func TestOptimizeUsesStoredProfile(t *testing.T) {
	r, _ := newTestRouter(t, sampleLocations())
	do(r, http.MethodPut, "/api/profile", "u1", map[string]any{"district": "Gunpo-si", "activity_level": "medium"})

	w := do(r, http.MethodPost, "/api/optimize", "u1", map[string]any{"date": "2025-09-02"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res service.PlanResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Profile.District != "Gunpo-si" || len(res.Plan) == 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Visits != len(res.Plan) {
		t.Fatalf("summary visits %d != plan length %d", res.Visits, len(res.Plan))
	}
	first := res.Plan[0].Start.In(kst.Location())
	if first.Day() != 2 || first.Hour() != 9 {
		t.Fatalf("expected first visit at 09:00 on the 2nd, got %v", first)
	}
}

func TestOptimizeWithoutProfile(t *testing.T) {
	r, _ := newTestRouter(t, sampleLocations())
	w := do(r, http.MethodPost, "/api/optimize", "u1", map[string]any{})
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "INVALID_REQUEST" {
		t.Fatalf("expected 400, got %d %s", w.Code, w.Body.String())
	}
}

func TestReoptimizeNothingPending(t *testing.T) {
	r, _ := newTestRouter(t, sampleLocations())
	body := map[string]any{
		"district":      "Gunpo-si",
		"delay_minutes": 30,
		"current_plan": []map[string]any{
			{"title": "City Hall visit", "location": "City Hall", "start_time": "2025-09-01T07:00:00", "end_time": "2025-09-01T07:30:00"},
		},
	}
	w := do(r, http.MethodPost, "/api/reoptimize", "", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res service.PlanResult
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if len(res.Plan) != 1 || res.Plan[0].Location != "City Hall" {
		t.Fatalf("expected plan unchanged, got %+v", res.Plan)
	}
}

func TestSuggestExplicitSlots(t *testing.T) {
	r, _ := newTestRouter(t, sampleLocations())
	body := map[string]any{
		"district": "Gunpo-si",
		"empty_slots": []map[string]any{
			{"start": "2025-09-02T14:00:00", "end": "2025-09-02T16:00:00"},
			{"start": "2025-09-03T14:00:00", "end": "2025-09-03T16:00:00"},
		},
	}
	w := do(r, http.MethodPost, "/api/suggest", "", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res service.PlanResult
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if len(res.Plan) != 2 {
		t.Fatalf("expected one suggestion per day, got %+v", res.Plan)
	}
	if res.Plan[0].Location == res.Plan[1].Location {
		t.Fatalf("location suggested twice: %s", res.Plan[0].Location)
	}
}

func TestLocationsAndStats(t *testing.T) {
	r, _ := newTestRouter(t, sampleLocations())

	if w := do(r, http.MethodGet, "/api/locations", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without district, got %d", w.Code)
	}
	w := do(r, http.MethodGet, "/api/locations?district=Gunpo-si", "", nil)
	var locs []models.Location
	_ = json.Unmarshal(w.Body.Bytes(), &locs)
	if len(locs) != 3 {
		t.Fatalf("expected 3 locations, got %d", len(locs))
	}

	w = do(r, http.MethodGet, "/api/locations/statistics/Gunpo-si", "", nil)
	var stats models.LocationStats
	_ = json.Unmarshal(w.Body.Bytes(), &stats)
	if stats.TotalLocations != 3 || stats.TotalExposure != 380 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if w := do(r, http.MethodGet, "/api/locations/statistics/Nowhere", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCatalogImport(t *testing.T) {
	r, store := newTestRouter(t, sampleLocations())

	doc := "districts:\n  Gunpo-si:\n    - name: Sanbon Library\n      address: Sanbon-ro 1\n      type: education\n      priority: 3\n      exposure: 60\n"
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "catalog.yaml")
	_, _ = fw.Write([]byte(doc))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/catalog/import?geocode=false", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var summary service.ImportSummary
	_ = json.Unmarshal(w.Body.Bytes(), &summary)
	if summary.Parsed != 1 || summary.Inserted != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	locs, _ := store.ListByDistrict(context.Background(), "Gunpo-si")
	if len(locs) != 1 || locs[0].Name != "Sanbon Library" {
		t.Fatalf("expected district replaced, got %+v", locs)
	}
}

func TestCatalogImportRejectsInvalid(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "catalog.yaml")
	_, _ = fw.Write([]byte("districts:\n  X:\n    - name: nope\n      type: spaceport\n"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/catalog/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}
