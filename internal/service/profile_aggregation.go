package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kidsevents/marketplace_backend/internal/domain"
)

type aggregationStats struct {
	Profiles        int
	Locations       int
	Services        int
	Reviews         int
	ExternalReviews int
}

func (s *ProfileCatalogService) aggregate(ctx context.Context) ([]domain.ProfileListItem, aggregationStats, error) {
	var stats aggregationStats

	profiles, err := s.profiles.ListPublished(ctx)
	if err != nil {
		return nil, stats, fmt.Errorf("list profiles: %w", err)
	}
	stats.Profiles = len(profiles)
	if len(profiles) == 0 {
		return []domain.ProfileListItem{}, stats, nil
	}

	profileIDs, locationIDs, owners := collectIDs(profiles)
	stats.Locations = len(locationIDs)

	var (
		services []domain.Service
		reviews  []domain.Review
		external []domain.ExternalReview
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.services.ListActiveByProfiles(gctx, profileIDs)
		if err != nil {
			return fmt.Errorf("list services: %w", err)
		}
		services = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.reviews.ListVisibleByProfiles(gctx, profileIDs)
		if err != nil {
			return fmt.Errorf("list reviews: %w", err)
		}
		reviews = rows
		return nil
	})
	if len(locationIDs) > 0 {
		g.Go(func() error {
			rows, err := s.externalReviews.ListByLocations(gctx, locationIDs)
			if err != nil {
				return fmt.Errorf("list external reviews: %w", err)
			}
			external = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}
	stats.Services = len(services)
	stats.Reviews = len(reviews)
	stats.ExternalReviews = len(external)

	in := listingInputs{
		minPrices: minServicePrices(services),
		photos:    collectServicePhotos(services, s.photoLimit),
		internal:  aggregateInternalReviews(reviews),
		external:  aggregateExternalReviews(external, owners),
	}

	items := make([]domain.ProfileListItem, 0, len(profiles))
	for i := range profiles {
		items = append(items, s.buildListItem(&profiles[i], in))
	}
	return items, stats, nil
}

// collectIDs returns every profile id, the ids of active locations and a
// location -> owning profile lookup.
func collectIDs(profiles []domain.Profile) ([]uuid.UUID, []uuid.UUID, map[uuid.UUID]uuid.UUID) {
	profileIDs := make([]uuid.UUID, 0, len(profiles))
	var locationIDs []uuid.UUID
	owners := make(map[uuid.UUID]uuid.UUID)
	for _, p := range profiles {
		profileIDs = append(profileIDs, p.ID)
		for _, loc := range p.Locations {
			owners[loc.ID] = p.ID
			if loc.IsActive {
				locationIDs = append(locationIDs, loc.ID)
			}
		}
	}
	return profileIDs, locationIDs, owners
}

func minServicePrices(services []domain.Service) map[uuid.UUID]float64 {
	out := make(map[uuid.UUID]float64)
	for _, svc := range services {
		if !svc.IsActive || svc.IsAdditional || svc.Price == nil || *svc.Price < 0 {
			continue
		}
		if current, ok := out[svc.ProfileID]; !ok || *svc.Price < current {
			out[svc.ProfileID] = *svc.Price
		}
	}
	return out
}

// collectServicePhotos keeps the first limit distinct photos per profile in
// service order.
func collectServicePhotos(services []domain.Service, limit int) map[uuid.UUID][]string {
	out := make(map[uuid.UUID][]string)
	seen := make(map[uuid.UUID]map[string]struct{})
	for _, svc := range services {
		if !svc.IsActive || svc.IsAdditional {
			continue
		}
		for _, photo := range svc.Photos {
			photo = strings.TrimSpace(photo)
			if photo == "" || len(out[svc.ProfileID]) >= limit {
				continue
			}
			if seen[svc.ProfileID] == nil {
				seen[svc.ProfileID] = make(map[string]struct{})
			}
			if _, dup := seen[svc.ProfileID][photo]; dup {
				continue
			}
			seen[svc.ProfileID][photo] = struct{}{}
			out[svc.ProfileID] = append(out[svc.ProfileID], photo)
		}
	}
	return out
}

func aggregateInternalReviews(reviews []domain.Review) map[uuid.UUID]domain.ReviewAggregate {
	sums := make(map[uuid.UUID]float64)
	counts := make(map[uuid.UUID]int)
	for _, r := range reviews {
		sums[r.ProfileID] += r.Rating
		counts[r.ProfileID]++
	}
	out := make(map[uuid.UUID]domain.ReviewAggregate, len(counts))
	for id, n := range counts {
		out[id] = domain.ReviewAggregate{Rating: round1(sums[id] / float64(n)), Count: n}
	}
	return out
}

// aggregateExternalReviews weights each location rating by its review count.
// Rows without an owning profile or without a rating are skipped. When every
// row has zero reviews the plain mean of the ratings is used.
func aggregateExternalReviews(rows []domain.ExternalReview, owners map[uuid.UUID]uuid.UUID) map[uuid.UUID]domain.ReviewAggregate {
	type acc struct {
		weighted float64
		total    int
		plain    float64
		rows     int
	}
	accs := make(map[uuid.UUID]*acc)
	for _, row := range rows {
		profileID, ok := owners[row.LocationID]
		if !ok || row.Rating == nil {
			continue
		}
		count := 0
		if row.ReviewsCount != nil && *row.ReviewsCount > 0 {
			count = *row.ReviewsCount
		}
		a := accs[profileID]
		if a == nil {
			a = &acc{}
			accs[profileID] = a
		}
		a.weighted += *row.Rating * float64(count)
		a.total += count
		a.plain += *row.Rating
		a.rows++
	}
	out := make(map[uuid.UUID]domain.ReviewAggregate, len(accs))
	for id, a := range accs {
		if a.total > 0 {
			out[id] = domain.ReviewAggregate{Rating: round1(a.weighted / float64(a.total)), Count: a.total}
			continue
		}
		out[id] = domain.ReviewAggregate{Rating: round1(a.plain / float64(a.rows)), Count: 0}
	}
	return out
}

// pickRating prefers the external aggregate for "yandex" profiles and the
// internal one otherwise, then falls back to the stored profile values.
func pickRating(p *domain.Profile, internal, external map[uuid.UUID]domain.ReviewAggregate) domain.ReviewAggregate {
	if strings.EqualFold(strings.TrimSpace(p.Details.ReviewsSource), domain.ReviewsSourceYandex) {
		if agg, ok := external[p.ID]; ok {
			return agg
		}
	}
	if agg, ok := internal[p.ID]; ok {
		return agg
	}
	var fallback domain.ReviewAggregate
	if p.Rating != nil {
		fallback.Rating = *p.Rating
	}
	if p.ReviewsCount != nil {
		fallback.Count = *p.ReviewsCount
	}
	return fallback
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
