package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/kidsevents/marketplace_backend/internal/domain"
)

type ReviewRepository interface {
	ListVisibleByProfiles(ctx context.Context, profileIDs []uuid.UUID) ([]domain.Review, error)
}

type ExternalReviewRepository interface {
	ListByLocations(ctx context.Context, locationIDs []uuid.UUID) ([]domain.ExternalReview, error)
}
