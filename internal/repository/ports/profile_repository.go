package ports

import (
	"context"

	"github.com/kidsevents/marketplace_backend/internal/domain"
)

type ProfileRepository interface {
	// ListPublished returns published profiles with all of their locations attached.
	ListPublished(ctx context.Context) ([]domain.Profile, error)
}
