package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/kidsevents/marketplace_backend/internal/domain"
)

type ServiceRepository interface {
	// ListActiveByProfiles returns active, non-additional services, newest first.
	ListActiveByProfiles(ctx context.Context, profileIDs []uuid.UUID) ([]domain.Service, error)
}
