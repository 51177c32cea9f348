package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kidsevents/marketplace_backend/internal/domain"
	"github.com/kidsevents/marketplace_backend/internal/logging"
	"github.com/kidsevents/marketplace_backend/internal/repository/ports"
)

var ErrProfilesUnavailable = errors.New("public profiles unavailable")

const (
	DefaultProfileCacheTTL     = 5 * time.Minute
	DefaultProfileFetchTimeout = 15 * time.Second
	DefaultProfilePhotoLimit   = 5

	publicProfilesKey = "public-profiles"
	catalogLocation   = "service.ProfileCatalogService.PublicProfiles"
)

type ProfileCatalogDeps struct {
	Profiles        ports.ProfileRepository
	Services        ports.ServiceRepository
	Reviews         ports.ReviewRepository
	ExternalReviews ports.ExternalReviewRepository
	Media           ports.ObjectURLResolver
	Debug           logging.DebugSink
}

type ProfileCatalogConfig struct {
	TTL          time.Duration
	FetchTimeout time.Duration
	PhotoLimit   int
	Now          func() time.Time
}

type profileSnapshot struct {
	items     []domain.ProfileListItem
	fetchedAt time.Time
}

// ProfileCatalogService serves the public profile listing from a process-local
// snapshot. Concurrent misses share one aggregation.
type ProfileCatalogService struct {
	profiles        ports.ProfileRepository
	services        ports.ServiceRepository
	reviews         ports.ReviewRepository
	externalReviews ports.ExternalReviewRepository
	media           ports.ObjectURLResolver
	debug           logging.DebugSink

	ttl          time.Duration
	fetchTimeout time.Duration
	photoLimit   int
	now          func() time.Time

	mu       sync.RWMutex
	snapshot *profileSnapshot
	flight   singleflight.Group
}

func NewProfileCatalogService(deps ProfileCatalogDeps, cfg ProfileCatalogConfig) *ProfileCatalogService {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultProfileCacheTTL
	}
	if cfg.FetchTimeout < 0 {
		cfg.FetchTimeout = 0
	} else if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = DefaultProfileFetchTimeout
	}
	if cfg.PhotoLimit <= 0 {
		cfg.PhotoLimit = DefaultProfilePhotoLimit
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	debug := deps.Debug
	if debug == nil {
		debug = logging.NopSink{}
	}
	return &ProfileCatalogService{
		profiles:        deps.Profiles,
		services:        deps.Services,
		reviews:         deps.Reviews,
		externalReviews: deps.ExternalReviews,
		media:           deps.Media,
		debug:           debug,
		ttl:             cfg.TTL,
		fetchTimeout:    cfg.FetchTimeout,
		photoLimit:      cfg.PhotoLimit,
		now:             cfg.Now,
	}
}

// PublicProfiles returns the cached listing while it is younger than the TTL.
// Otherwise it joins the running aggregation or starts one. forceRefresh skips
// the cached snapshot but still joins a running aggregation.
//
// The returned slice is shared between callers and must not be modified.
func (s *ProfileCatalogService) PublicProfiles(ctx context.Context, forceRefresh bool) ([]domain.ProfileListItem, error) {
	if !forceRefresh {
		if items, age, ok := s.cached(); ok {
			s.debug.Debug(ctx, logging.Event{
				Location: catalogLocation,
				Message:  "cache hit",
				Data: map[string]any{
					"profiles": len(items),
					"age_ms":   age.Milliseconds(),
				},
			})
			return items, nil
		}
	}

	waitStart := s.now()
	leader := false
	ch := s.flight.DoChan(publicProfilesKey, func() (any, error) {
		leader = true
		// A fetch may have finished between the cache check above and
		// joining the flight.
		if !forceRefresh {
			if items, _, ok := s.cached(); ok {
				return items, nil
			}
		}
		return s.refresh(ctx, forceRefresh)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if !leader {
			s.debug.Debug(ctx, logging.Event{
				Location: catalogLocation,
				Message:  "reused in-flight fetch",
				Data: map[string]any{
					"force_refresh": forceRefresh,
					"waited_ms":     s.now().Sub(waitStart).Milliseconds(),
					"failed":        res.Err != nil,
				},
			})
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.ProfileListItem), nil
	}
}

// Invalidate drops the cached snapshot. A running aggregation still stores its
// result when it finishes.
func (s *ProfileCatalogService) Invalidate() {
	s.mu.Lock()
	s.snapshot = nil
	s.mu.Unlock()
}

func (s *ProfileCatalogService) cached() ([]domain.ProfileListItem, time.Duration, bool) {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()
	if snap == nil || snap.items == nil {
		return nil, 0, false
	}
	age := s.now().Sub(snap.fetchedAt)
	if age >= s.ttl {
		return nil, age, false
	}
	return snap.items, age, true
}

func (s *ProfileCatalogService) store(items []domain.ProfileListItem) {
	s.mu.Lock()
	s.snapshot = &profileSnapshot{items: items, fetchedAt: s.now()}
	s.mu.Unlock()
}

// refresh runs detached from the caller's cancellation so one disconnecting
// client does not fail everyone waiting on the same fetch.
func (s *ProfileCatalogService) refresh(ctx context.Context, forced bool) ([]domain.ProfileListItem, error) {
	fetchCtx := context.WithoutCancel(ctx)
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(fetchCtx, s.fetchTimeout)
		defer cancel()
	}

	start := s.now()
	items, stats, err := s.aggregate(fetchCtx)
	elapsed := s.now().Sub(start)
	if err != nil {
		s.debug.Debug(ctx, logging.Event{
			Location: catalogLocation,
			Message:  "fetch failed",
			Data: map[string]any{
				"force_refresh": forced,
				"duration_ms":   elapsed.Milliseconds(),
				"error":         err.Error(),
			},
		})
		return nil, fmt.Errorf("%w: %v", ErrProfilesUnavailable, err)
	}

	s.store(items)
	s.debug.Debug(ctx, logging.Event{
		Location: catalogLocation,
		Message:  "fetched profiles",
		Data: map[string]any{
			"force_refresh":    forced,
			"duration_ms":      elapsed.Milliseconds(),
			"profiles":         stats.Profiles,
			"locations":        stats.Locations,
			"services":         stats.Services,
			"reviews":          stats.Reviews,
			"external_reviews": stats.ExternalReviews,
		},
	})
	return items, nil
}
