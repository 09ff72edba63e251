package app

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dayplanner/backend/internal/config"
	"github.com/dayplanner/backend/internal/db"
	"github.com/dayplanner/backend/internal/models"
)

func testConfig() config.Config {
	return config.Config{
		Timezone:        "Asia/Seoul",
		MapsService:     "mock",
		TravelCacheSize: 10,
		TransportMode:   "walking",
		CatalogFile:     "../catalog/testdata/catalog.yaml",
	}
}

func TestNewInMemory(t *testing.T) {
	a, err := New(context.Background(), testConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	if a.Travel.Backend() != "mock" {
		t.Fatalf("expected mock backend, got %s", a.Travel.Backend())
	}
	if a.Service.Optimizer.Mode != "walking" {
		t.Fatalf("expected walking mode, got %s", a.Service.Optimizer.Mode)
	}
	locs, err := a.Service.ListLocations(context.Background(), "Seodaemun-gu")
	if err != nil || len(locs) != 3 {
		t.Fatalf("expected seeded catalog, got %d (%v)", len(locs), err)
	}
}

func TestNewMissingCatalogFile(t *testing.T) {
	cfg := testConfig()
	cfg.CatalogFile = "does-not-exist.yaml"
	a, err := New(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()
	locs, _ := a.Service.ListLocations(context.Background(), "Seodaemun-gu")
	if len(locs) != 0 {
		t.Fatalf("expected empty catalog, got %d", len(locs))
	}
}

func TestNewBadTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.Timezone = "Mars/Olympus"
	if _, err := New(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Fatalf("expected timezone error")
	}
}

func TestSeedMissingKeepsExistingDistricts(t *testing.T) {
	ctx := context.Background()
	repo := db.NewMemory([]models.Location{
		{ID: "x", District: "Gunpo-si", Name: "Existing", Address: "a", Type: models.LocationPublic, Priority: 1},
	})
	seed := []models.Location{
		{ID: "1", District: "Gunpo-si", Name: "Seeded", Address: "b", Type: models.LocationPublic, Priority: 1},
		{ID: "2", District: "Seodaemun-gu", Name: "New", Address: "c", Type: models.LocationPublic, Priority: 1},
	}
	if err := seedMissing(ctx, repo, seed, zerolog.Nop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gunpo, _ := repo.ListByDistrict(ctx, "Gunpo-si")
	if len(gunpo) != 1 || gunpo[0].Name != "Existing" {
		t.Fatalf("existing district overwritten: %+v", gunpo)
	}
	sdm, _ := repo.ListByDistrict(ctx, "Seodaemun-gu")
	if len(sdm) != 1 {
		t.Fatalf("expected new district seeded, got %+v", sdm)
	}
}
