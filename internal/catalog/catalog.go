// Package catalog holds the candidate visit locations per district.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/dayplanner/backend/internal/geocode"
	"github.com/dayplanner/backend/internal/models"
)

var ErrInvalidCatalog = errors.New("invalid catalog")

// Provider lists candidate locations for a district in catalog order.
// An unknown district yields an empty list.
type Provider interface {
	ListByDistrict(ctx context.Context, district string) ([]models.Location, error)
}

type File struct {
	Districts map[string][]models.Location `yaml:"districts" json:"districts"`
}

var validate = validator.New()

// Decode reads a YAML (or JSON) catalog and returns its locations with
// district and stable ids filled in.
func Decode(r io.Reader) ([]models.Location, error) {
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidCatalog)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	districts := make([]string, 0, len(f.Districts))
	for d := range f.Districts {
		districts = append(districts, d)
	}
	sort.Strings(districts)

	var out []models.Location
	for _, d := range districts {
		for i, loc := range f.Districts[d] {
			loc.District = d
			if err := Validate(loc); err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", d, i, err)
			}
			if loc.ID == "" {
				loc.ID = LocationID(loc)
			}
			out = append(out, loc)
		}
	}
	return out, nil
}

func LoadFile(path string) ([]models.Location, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

func Validate(loc models.Location) error {
	if err := validate.Struct(loc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if !loc.Type.Valid() {
		return fmt.Errorf("%w: unknown location type %q", ErrInvalidCatalog, loc.Type)
	}
	if strings.TrimSpace(loc.District) == "" {
		return fmt.Errorf("%w: district is required", ErrInvalidCatalog)
	}
	return nil
}

// LocationID derives a deterministic id so re-imports keep the same keys.
func LocationID(loc models.Location) string {
	key := strings.Join([]string{loc.District, loc.Name, loc.Address, string(loc.Type)}, "|")
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// Memory is an in-process Provider.
type Memory struct {
	mu        sync.RWMutex
	districts map[string][]models.Location
}

func NewMemory(locations []models.Location) *Memory {
	m := &Memory{districts: map[string][]models.Location{}}
	for _, loc := range locations {
		m.districts[loc.District] = append(m.districts[loc.District], loc)
	}
	return m
}

func (m *Memory) ListByDistrict(_ context.Context, district string) ([]models.Location, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	locs := m.districts[district]
	out := make([]models.Location, len(locs))
	copy(out, locs)
	return out, nil
}

// ReplaceLocations swaps the catalog of every district present in locations.
func (m *Memory) ReplaceLocations(_ context.Context, locations []models.Location) (int64, error) {
	next := map[string][]models.Location{}
	for _, loc := range locations {
		next[loc.District] = append(next[loc.District], loc)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for d, locs := range next {
		m.districts[d] = locs
	}
	return int64(len(locations)), nil
}

func (m *Memory) sortedDistricts() []string {
	out := make([]string, 0, len(m.districts))
	for d := range m.districts {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// FindByAddress returns the first location with coordinates whose address
// matches, ignoring case and repeated whitespace. Districts are searched in
// name order.
func (m *Memory) FindByAddress(_ context.Context, address string) (models.Location, error) {
	address = geocode.NormalizeAddress(address)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.sortedDistricts() {
		for _, loc := range m.districts[d] {
			if loc.Lat != nil && loc.Lon != nil && strings.EqualFold(geocode.NormalizeAddress(loc.Address), address) {
				return loc, nil
			}
		}
	}
	return models.Location{}, geocode.ErrNotFound
}
