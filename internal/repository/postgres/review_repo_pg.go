package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/kidsevents/marketplace_backend/internal/domain"
	"github.com/kidsevents/marketplace_backend/internal/repository/ports"
)

type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepo(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) ListVisibleByProfiles(ctx context.Context, profileIDs []uuid.UUID) ([]domain.Review, error) {
	if len(profileIDs) == 0 {
		return []domain.Review{}, nil
	}

	const query = `
		SELECT r.profile_id, r.rating::float8 AS rating
		FROM reviews r
		WHERE r.profile_id = ANY($1)
		  AND r.is_moderated = true
		  AND r.is_visible = true
	`

	reviews := []domain.Review{}
	if err := r.db.SelectContext(ctx, &reviews, query, pq.Array(profileIDs)); err != nil {
		return nil, err
	}
	return reviews, nil
}

type ExternalReviewRepository struct {
	db *sqlx.DB
}

func NewExternalReviewRepo(db *sqlx.DB) *ExternalReviewRepository {
	return &ExternalReviewRepository{db: db}
}

func (r *ExternalReviewRepository) ListByLocations(ctx context.Context, locationIDs []uuid.UUID) ([]domain.ExternalReview, error) {
	if len(locationIDs) == 0 {
		return []domain.ExternalReview{}, nil
	}

	const query = `
		SELECT
			y.location_id,
			y.rating::float8 AS rating,
			y.reviews_count,
			y.updated_at
		FROM yandex_reviews_cache y
		WHERE y.location_id = ANY($1)
	`

	rows := []domain.ExternalReview{}
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(locationIDs)); err != nil {
		return nil, err
	}
	return rows, nil
}

var (
	_ ports.ReviewRepository         = (*ReviewRepository)(nil)
	_ ports.ExternalReviewRepository = (*ExternalReviewRepository)(nil)
)
