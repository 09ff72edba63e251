package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dayplanner/backend/internal/db"
	"github.com/dayplanner/backend/internal/models"
)

var ErrProfileRequired = errors.New("profile required")

func (s *PlanningService) GetProfile(ctx context.Context, userID string) (models.UserProfile, error) {
	return s.Store.GetProfile(ctx, userID)
}

func (s *PlanningService) SaveProfile(ctx context.Context, p models.UserProfile) (models.UserProfile, error) {
	p = NormalizeProfile(p)
	if p.District == "" {
		return models.UserProfile{}, fmt.Errorf("%w: district is required", ErrProfileRequired)
	}
	return s.Store.UpsertProfile(ctx, p)
}

// ResolveProfile merges request overrides onto the stored profile. A request
// with a district needs no stored profile.
func (s *PlanningService) ResolveProfile(ctx context.Context, userID, district string, tier models.ActivityTier) (models.UserProfile, error) {
	p := models.UserProfile{UserID: userID}
	if userID != "" {
		stored, err := s.Store.GetProfile(ctx, userID)
		switch {
		case err == nil:
			p = stored
		case errors.Is(err, db.ErrNotFound):
		default:
			return models.UserProfile{}, fmt.Errorf("load profile: %w", err)
		}
	}
	if district != "" {
		p.District = district
	}
	if tier != "" {
		p.ActivityLevel = tier
	}
	if p.District == "" {
		return models.UserProfile{}, fmt.Errorf("%w: set a district on the profile or in the request", ErrProfileRequired)
	}
	return NormalizeProfile(p), nil
}

// NormalizeProfile trims input and maps unknown tiers to medium.
func NormalizeProfile(p models.UserProfile) models.UserProfile {
	p.District = strings.TrimSpace(p.District)
	p.ActivityLevel = models.ActivityTier(strings.ToLower(strings.TrimSpace(string(p.ActivityLevel))))
	if !p.ActivityLevel.Known() {
		p.ActivityLevel = models.TierMedium
	}
	return p
}
