package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kidsevents/marketplace_backend/internal/domain"
	"github.com/kidsevents/marketplace_backend/internal/logging"
)

type memoryProfileRepo struct {
	mu       sync.Mutex
	profiles []domain.Profile
	err      error
	calls    atomic.Int32
	// gate, when set, blocks ListPublished until closed.
	gate    chan struct{}
	started chan struct{}
}

func (r *memoryProfileRepo) ListPublished(ctx context.Context) ([]domain.Profile, error) {
	r.calls.Add(1)
	if r.started != nil {
		select {
		case r.started <- struct{}{}:
		default:
		}
	}
	if r.gate != nil {
		select {
		case <-r.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.Profile, len(r.profiles))
	copy(out, r.profiles)
	return out, nil
}

func (r *memoryProfileRepo) setErr(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

type memoryServiceRepo struct {
	services []domain.Service
	err      error
	calls    atomic.Int32
}

func (r *memoryServiceRepo) ListActiveByProfiles(_ context.Context, profileIDs []uuid.UUID) ([]domain.Service, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	wanted := idSet(profileIDs)
	var out []domain.Service
	for _, svc := range r.services {
		if _, ok := wanted[svc.ProfileID]; ok {
			out = append(out, svc)
		}
	}
	return out, nil
}

type memoryReviewRepo struct {
	reviews []domain.Review
	err     error
	calls   atomic.Int32
}

func (r *memoryReviewRepo) ListVisibleByProfiles(_ context.Context, profileIDs []uuid.UUID) ([]domain.Review, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	wanted := idSet(profileIDs)
	var out []domain.Review
	for _, rev := range r.reviews {
		if _, ok := wanted[rev.ProfileID]; ok {
			out = append(out, rev)
		}
	}
	return out, nil
}

type memoryExternalReviewRepo struct {
	rows  []domain.ExternalReview
	err   error
	calls atomic.Int32
	asked []uuid.UUID
}

func (r *memoryExternalReviewRepo) ListByLocations(_ context.Context, locationIDs []uuid.UUID) ([]domain.ExternalReview, error) {
	r.calls.Add(1)
	r.asked = append([]uuid.UUID(nil), locationIDs...)
	if r.err != nil {
		return nil, r.err
	}
	// Unfiltered on purpose so orphan rows reach the aggregation.
	return r.rows, nil
}

type prefixResolver struct {
	prefix string
}

func (p prefixResolver) PublicURL(ref string) string {
	return p.prefix + ref
}

type recordingDebugSink struct {
	mu     sync.Mutex
	events []logging.Event
}

func (r *recordingDebugSink) Debug(_ context.Context, ev logging.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recordingDebugSink) count(message string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Message == message {
			n++
		}
	}
	return n
}

func (r *recordingDebugSink) last(message string) (logging.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Message == message {
			return r.events[i], true
		}
	}
	return logging.Event{}, false
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time

	// pauseNext makes the next Now call signal paused and wait for release.
	pauseNext bool
	paused    chan struct{}
	release   chan struct{}
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	if c.pauseNext {
		c.pauseNext = false
		paused, release := c.paused, c.release
		c.mu.Unlock()
		paused <- struct{}{}
		<-release
		c.mu.Lock()
	}
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) PauseNext() (paused, release chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pauseNext = true
	c.paused = make(chan struct{}, 1)
	c.release = make(chan struct{})
	return c.paused, c.release
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type catalogFixture struct {
	profiles *memoryProfileRepo
	services *memoryServiceRepo
	reviews  *memoryReviewRepo
	external *memoryExternalReviewRepo
	debug    *recordingDebugSink
}

func newCatalogFixture(profiles ...domain.Profile) *catalogFixture {
	return &catalogFixture{
		profiles: &memoryProfileRepo{profiles: profiles},
		services: &memoryServiceRepo{},
		reviews:  &memoryReviewRepo{},
		external: &memoryExternalReviewRepo{},
		debug:    &recordingDebugSink{},
	}
}

func (f *catalogFixture) service(cfg ProfileCatalogConfig) *ProfileCatalogService {
	return NewProfileCatalogService(ProfileCatalogDeps{
		Profiles:        f.profiles,
		Services:        f.services,
		Reviews:         f.reviews,
		ExternalReviews: f.external,
		Media:           prefixResolver{prefix: "https://cdn.test/"},
		Debug:           f.debug,
	}, cfg)
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	out := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func intPtr(i int) *int { return &i }
