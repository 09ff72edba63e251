package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	_ "time/tzdata"

	"github.com/rs/zerolog"

	"github.com/dayplanner/backend/internal/catalog"
	"github.com/dayplanner/backend/internal/civil"
	"github.com/dayplanner/backend/internal/config"
	"github.com/dayplanner/backend/internal/db"
	"github.com/dayplanner/backend/internal/geocode"
	"github.com/dayplanner/backend/internal/models"
	"github.com/dayplanner/backend/internal/optimizer"
	"github.com/dayplanner/backend/internal/scheduler"
	"github.com/dayplanner/backend/internal/service"
	"github.com/dayplanner/backend/internal/travel"
)

// App is the assembled planning service plus whatever needs closing.
type App struct {
	Service *service.PlanningService
	Travel  *travel.Service
	closers []func()
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// New wires storage, geocoding, travel and the planners from cfg. Without a
// DATABASE_URL everything lives in memory, seeded from CATALOG_FILE.
func New(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*App, error) {
	a := &App{}
	zone, err := civil.Load(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	seed, err := loadSeed(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}

	var repo db.Repository
	if cfg.DatabaseURL == "" {
		repo = db.NewMemory(seed)
		logger.Info().Int("locations", len(seed)).Msg("using in-memory store")
	} else {
		store, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect db: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		if err := store.Migrate(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		if err := seedMissing(ctx, store, seed, logger); err != nil {
			a.Close()
			return nil, err
		}
		repo = store
	}

	geocoder := geocode.Chain{
		geocode.Stored{Finder: repo},
		&geocode.NominatimGeocoder{BaseURL: cfg.NominatimURL},
	}

	backend, err := travel.NewBackend(travel.BackendConfig{
		Service:           cfg.MapsService,
		GoogleAPIKey:      cfg.GoogleMapsAPIKey,
		NaverClientID:     cfg.NaverClientID,
		NaverClientSecret: cfg.NaverClientSecret,
		TmapAPIKey:        cfg.TmapAPIKey,
		HTTPTimeout:       cfg.TravelTimeout,
	}, geocoder)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := travel.Options{
		Timeout:    cfg.TravelTimeout,
		CacheSize:  cfg.TravelCacheSize,
		RatePerSec: cfg.TravelRatePerSec,
		Logger:     logger,
	}
	if cfg.RedisURL != "" {
		shared, err := travel.NewRedisStore(cfg.RedisURL, cfg.TravelCacheTTL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		if err := shared.Ping(ctx); err != nil {
			logger.Warn().Err(err).Msg("redis unreachable; travel cache stays process-local")
			_ = shared.Close()
		} else {
			a.closers = append(a.closers, func() { _ = shared.Close() })
			opts.Shared = shared
		}
	}
	a.Travel = travel.NewService(backend, opts)
	logger.Info().Str("backend", backend.Name()).Msg("travel provider ready")

	opt := optimizer.New(repo, a.Travel, zone, logger)
	opt.Mode = travel.ParseMode(cfg.TransportMode)

	a.Service = &service.PlanningService{
		Store:     repo,
		Scheduler: scheduler.New(zone),
		Optimizer: opt,
		Zone:      zone,
		Geocoder:  geocoder,
		Country:   cfg.CountryDefault,
		Logger:    logger,
	}
	return a, nil
}

func loadSeed(path string) ([]models.Location, error) {
	if path == "" {
		return nil, nil
	}
	locs, err := catalog.LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return locs, nil
}

// seedMissing copies seed districts the database does not know yet.
func seedMissing(ctx context.Context, repo db.Repository, seed []models.Location, logger zerolog.Logger) error {
	byDistrict := map[string][]models.Location{}
	var order []string
	for _, l := range seed {
		if _, ok := byDistrict[l.District]; !ok {
			order = append(order, l.District)
		}
		byDistrict[l.District] = append(byDistrict[l.District], l)
	}
	var missing []models.Location
	for _, d := range order {
		existing, err := repo.ListByDistrict(ctx, d)
		if err != nil {
			return fmt.Errorf("check catalog: %w", err)
		}
		if len(existing) == 0 {
			missing = append(missing, byDistrict[d]...)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	n, err := repo.ReplaceLocations(ctx, missing)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	logger.Info().Int64("locations", n).Msg("seeded catalog")
	return nil
}
