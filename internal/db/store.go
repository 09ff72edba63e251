package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dayplanner/backend/internal/geocode"
	"github.com/dayplanner/backend/internal/models"
)

//go:embed schema.sql
var schemaSQL string

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.Pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) ListTasks(ctx context.Context, owner string) ([]models.Task, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, title, duration_min, priority, earliest, latest, window_from, window_to, place_id, district
		FROM tasks WHERE owner_id = $1 ORDER BY created_at ASC, id ASC`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Task{}
	index := map[string]int{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.DurationMin, &t.Priority, &t.Earliest, &t.Latest, &t.WindowFrom, &t.WindowTo, &t.PlaceID, &t.District); err != nil {
			return nil, err
		}
		t.DependsOn = []string{}
		index[t.ID] = len(out)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	depRows, err := s.Pool.Query(ctx, `SELECT task_id, depends_on FROM task_dependencies WHERE owner_id = $1 ORDER BY task_id, depends_on`, owner)
	if err != nil {
		return nil, err
	}
	defer depRows.Close()
	for depRows.Next() {
		var taskID, dep string
		if err := depRows.Scan(&taskID, &dep); err != nil {
			return nil, err
		}
		if i, ok := index[taskID]; ok {
			out[i].DependsOn = append(out[i].DependsOn, dep)
		}
	}
	return out, depRows.Err()
}

// CreateTask assigns the owner's next T0001-style id. Dependencies on ids the
// owner does not have are dropped.
func (s *Store) CreateTask(ctx context.Context, owner string, task models.Task) (models.Task, error) {
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		var seq int
		if err := tx.QueryRow(ctx, `INSERT INTO task_counters (owner_id, last_seq) VALUES ($1, 1)
			ON CONFLICT (owner_id) DO UPDATE SET last_seq = task_counters.last_seq + 1
			RETURNING last_seq`, owner).Scan(&seq); err != nil {
			return fmt.Errorf("next task id: %w", err)
		}
		task.ID = taskID(seq)

		if _, err := tx.Exec(ctx, `INSERT INTO tasks (owner_id, id, title, duration_min, priority, earliest, latest, window_from, window_to, place_id, district)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			owner, task.ID, task.Title, task.DurationMin, task.Priority, task.Earliest, task.Latest, task.WindowFrom, task.WindowTo, task.PlaceID, task.District); err != nil {
			return fmt.Errorf("insert task: %w", err)
		}

		deps := []string{}
		if len(task.DependsOn) > 0 {
			rows, err := tx.Query(ctx, `SELECT id FROM tasks WHERE owner_id = $1 AND id = ANY($2) ORDER BY id`, owner, task.DependsOn)
			if err != nil {
				return err
			}
			for rows.Next() {
				var id string
				if err := rows.Scan(&id); err != nil {
					rows.Close()
					return err
				}
				if id != task.ID {
					deps = append(deps, id)
				}
			}
			rows.Close()
			if err := rows.Err(); err != nil {
				return err
			}
		}
		for _, dep := range deps {
			if _, err := tx.Exec(ctx, `INSERT INTO task_dependencies (owner_id, task_id, depends_on) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`, owner, task.ID, dep); err != nil {
				return fmt.Errorf("insert dependency: %w", err)
			}
		}
		task.DependsOn = deps
		return nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *Store) DeleteTask(ctx context.Context, owner, id string) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM tasks WHERE owner_id = $1 AND id = $2`, owner, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, userID string) (models.UserProfile, error) {
	p := models.UserProfile{UserID: userID}
	err := s.Pool.QueryRow(ctx, `SELECT district, activity_level FROM profiles WHERE user_id = $1`, userID).Scan(&p.District, &p.ActivityLevel)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.UserProfile{}, ErrNotFound
	}
	if err != nil {
		return models.UserProfile{}, err
	}
	return p, nil
}

func (s *Store) UpsertProfile(ctx context.Context, p models.UserProfile) (models.UserProfile, error) {
	_, err := s.Pool.Exec(ctx, `INSERT INTO profiles (user_id, district, activity_level, updated_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET district = EXCLUDED.district, activity_level = EXCLUDED.activity_level, updated_at = EXCLUDED.updated_at`,
		p.UserID, p.District, string(p.ActivityLevel), time.Now().UTC())
	if err != nil {
		return models.UserProfile{}, err
	}
	return p, nil
}

func (s *Store) ListByDistrict(ctx context.Context, district string) ([]models.Location, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, district, name, address, type, priority, exposure, lat, lon
		FROM locations WHERE district = $1 ORDER BY position ASC`, district)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Location{}
	for rows.Next() {
		var l models.Location
		if err := rows.Scan(&l.ID, &l.District, &l.Name, &l.Address, &l.Type, &l.Priority, &l.Exposure, &l.Lat, &l.Lon); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) FindByAddress(ctx context.Context, address string) (models.Location, error) {
	var l models.Location
	err := s.Pool.QueryRow(ctx, `SELECT id, district, name, address, type, priority, exposure, lat, lon
		FROM locations
		WHERE lower(regexp_replace(btrim(address), '\s+', ' ', 'g')) = lower($1)
			AND lat IS NOT NULL AND lon IS NOT NULL
		ORDER BY district, position
		LIMIT 1`, geocode.NormalizeAddress(address)).
		Scan(&l.ID, &l.District, &l.Name, &l.Address, &l.Type, &l.Priority, &l.Exposure, &l.Lat, &l.Lon)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Location{}, ErrNotFound
	}
	if err != nil {
		return models.Location{}, err
	}
	return l, nil
}

// ReplaceLocations swaps the catalog of every district present in locations.
func (s *Store) ReplaceLocations(ctx context.Context, locations []models.Location) (int64, error) {
	districts := []string{}
	seen := map[string]bool{}
	position := map[string]int{}
	rows := make([][]any, 0, len(locations))
	for _, l := range locations {
		if !seen[l.District] {
			seen[l.District] = true
			districts = append(districts, l.District)
		}
		rows = append(rows, []any{l.ID, l.District, position[l.District], l.Name, l.Address, string(l.Type), l.Priority, l.Exposure, l.Lat, l.Lon})
		position[l.District]++
	}

	var copied int64
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM locations WHERE district = ANY($1)`, districts); err != nil {
			return err
		}
		n, err := tx.CopyFrom(ctx, pgx.Identifier{"locations"}, []string{"id", "district", "position", "name", "address", "type", "priority", "exposure", "lat", "lon"}, pgx.CopyFromRows(rows))
		copied = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return copied, nil
}
