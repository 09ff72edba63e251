package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/dayplanner/backend/internal/models"
)

var ErrNotFound = errors.New("not found")

// Repository is the storage used by the planning service and HTTP handlers.
type Repository interface {
	Ping(ctx context.Context) error

	ListTasks(ctx context.Context, owner string) ([]models.Task, error)
	CreateTask(ctx context.Context, owner string, task models.Task) (models.Task, error)
	DeleteTask(ctx context.Context, owner, id string) error

	GetProfile(ctx context.Context, userID string) (models.UserProfile, error)
	UpsertProfile(ctx context.Context, profile models.UserProfile) (models.UserProfile, error)

	ListByDistrict(ctx context.Context, district string) ([]models.Location, error)
	ReplaceLocations(ctx context.Context, locations []models.Location) (int64, error)
	// FindByAddress returns a location with coordinates at address.
	FindByAddress(ctx context.Context, address string) (models.Location, error)
}

var (
	_ Repository = (*Store)(nil)
	_ Repository = (*Memory)(nil)
)

func taskID(seq int) string {
	return fmt.Sprintf("T%04d", seq)
}
