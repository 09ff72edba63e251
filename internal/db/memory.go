package db

import (
	"context"
	"sync"

	"github.com/dayplanner/backend/internal/catalog"
	"github.com/dayplanner/backend/internal/models"
)

// Memory is a Repository kept in process, used when DATABASE_URL is unset.
type Memory struct {
	*catalog.Memory

	mu       sync.Mutex
	tasks    map[string][]models.Task
	counters map[string]int
	profiles map[string]models.UserProfile
}

func NewMemory(locations []models.Location) *Memory {
	return &Memory{
		Memory:   catalog.NewMemory(locations),
		tasks:    map[string][]models.Task{},
		counters: map[string]int{},
		profiles: map[string]models.UserProfile{},
	}
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) ListTasks(_ context.Context, owner string) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Task, 0, len(m.tasks[owner]))
	for _, t := range m.tasks[owner] {
		t.DependsOn = append([]string{}, t.DependsOn...)
		out = append(out, t)
	}
	return out, nil
}

func (m *Memory) CreateTask(_ context.Context, owner string, task models.Task) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[owner]++
	task.ID = taskID(m.counters[owner])

	known := map[string]bool{}
	for _, t := range m.tasks[owner] {
		known[t.ID] = true
	}
	deps := []string{}
	for _, d := range task.DependsOn {
		if known[d] && !contains(deps, d) {
			deps = append(deps, d)
		}
	}
	task.DependsOn = deps
	m.tasks[owner] = append(m.tasks[owner], task)

	task.DependsOn = append([]string{}, deps...)
	return task, nil
}

func (m *Memory) DeleteTask(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := m.tasks[owner]
	kept := tasks[:0]
	found := false
	for _, t := range tasks {
		if t.ID == id {
			found = true
			continue
		}
		deps := t.DependsOn[:0]
		for _, d := range t.DependsOn {
			if d != id {
				deps = append(deps, d)
			}
		}
		t.DependsOn = deps
		kept = append(kept, t)
	}
	if !found {
		return ErrNotFound
	}
	m.tasks[owner] = kept
	return nil
}

func (m *Memory) GetProfile(_ context.Context, userID string) (models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return models.UserProfile{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) UpsertProfile(_ context.Context, p models.UserProfile) (models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.UserID] = p
	return p, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (m *Memory) FindByAddress(ctx context.Context, address string) (models.Location, error) {
	loc, err := m.Memory.FindByAddress(ctx, address)
	if err != nil {
		return models.Location{}, ErrNotFound
	}
	return loc, nil
}
