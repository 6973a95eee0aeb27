package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fortuna/nbastats/internal/cache"
	"github.com/fortuna/nbastats/internal/season"
	"github.com/fortuna/nbastats/internal/store"
	"github.com/fortuna/nbastats/internal/store/repository"
)

const seasonCacheTTL = 24 * time.Hour

// SeasonService resolves season identifiers against stored seasons
type SeasonService struct {
	seasonRepo *repository.SeasonRepository
	cache      *cache.RedisCache
}

// NewSeasonService creates a new season service. rc may be nil.
func NewSeasonService(db *store.Database, rc *cache.RedisCache) *SeasonService {
	return &SeasonService{
		seasonRepo: repository.NewSeasonRepository(db),
		cache:      rc,
	}
}

// Range lists season labels from from toward to. An empty to means
// "through the current season" and a zero step means 1.
func (s *SeasonService) Range(from, to string, step int) ([]string, error) {
	return SeasonLabels(from, to, step)
}

// SeasonLabels is the storage-free part of Range.
func SeasonLabels(from, to string, step int) ([]string, error) {
	if step == 0 {
		step = 1
	}
	stop := season.FromString(to)
	if to == "" {
		current, err := season.Of(season.FromString(season.Current(0)))
		if err != nil {
			return nil, err
		}
		if step > 0 {
			stop = season.FromYear(current.EndYear() + 1)
		} else {
			stop = season.FromYear(current.EndYear())
		}
	}
	return season.Seasons(season.FromString(from), stop, step)
}

// Current returns the current season label shifted by offset years
func (s *SeasonService) Current(offset int) string {
	return season.Current(offset)
}

// Get returns the stored season for any accepted identifier text
func (s *SeasonService) Get(ctx context.Context, text string) (*store.Season, error) {
	label, err := season.Normalize(text)
	if err != nil {
		return nil, err
	}

	key := cache.Key("season", label)
	if s.cache != nil {
		var cached store.Season
		err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.Printf("[seasons] cache read %s: %v", key, err)
		}
	}

	stored, err := s.seasonRepo.GetByLabel(ctx, label)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, stored, seasonCacheTTL); err != nil {
			log.Printf("[seasons] cache write %s: %v", key, err)
		}
	}
	return stored, nil
}

// Ensure returns the stored season for text, creating it when missing
func (s *SeasonService) Ensure(ctx context.Context, text string) (*store.Season, error) {
	sn, err := season.Of(season.FromString(text))
	if err != nil {
		return nil, err
	}
	stored, err := s.seasonRepo.Ensure(ctx, sn)
	if err != nil {
		return nil, fmt.Errorf("ensuring season: %w", err)
	}
	return stored, nil
}

// List returns all stored seasons
func (s *SeasonService) List(ctx context.Context) ([]*store.Season, error) {
	return s.seasonRepo.List(ctx)
}
