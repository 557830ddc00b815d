package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TrafficLight/internal/domain/models"
	drepo "TrafficLight/internal/domain/repository"
	"TrafficLight/pkg/cache"
)

// ErrNoStatus is returned by Load before the loop has reported anything.
var ErrNoStatus = errors.New("status not yet reported")

const statusKey = "status:latest"

// CacheStatusStore keeps the latest snapshot in a cache.Service.
type CacheStatusStore struct {
	cache cache.Service
	ttl   time.Duration
}

// NewCacheStatusStore creates a status store. A zero ttl keeps the entry until overwritten.
func NewCacheStatusStore(c cache.Service, ttl time.Duration) *CacheStatusStore {
	return &CacheStatusStore{cache: c, ttl: ttl}
}

func (s *CacheStatusStore) Save(ctx context.Context, snap models.StatusSnapshot) error {
	if err := s.cache.Set(ctx, statusKey, snap, s.ttl); err != nil {
		return fmt.Errorf("save status: %w", err)
	}
	return nil
}

func (s *CacheStatusStore) Load(ctx context.Context) (models.StatusSnapshot, error) {
	var snap models.StatusSnapshot
	if err := s.cache.Get(ctx, statusKey, &snap); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return snap, ErrNoStatus
		}
		return snap, fmt.Errorf("load status: %w", err)
	}
	return snap, nil
}

var _ drepo.StatusStore = (*CacheStatusStore)(nil)
