package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/kidsevents/marketplace_backend/internal/domain"
	"github.com/kidsevents/marketplace_backend/internal/repository/ports"
)

type ServiceRepository struct {
	db *sqlx.DB
}

func NewServiceRepo(db *sqlx.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) ListActiveByProfiles(ctx context.Context, profileIDs []uuid.UUID) ([]domain.Service, error) {
	if len(profileIDs) == 0 {
		return []domain.Service{}, nil
	}

	const query = `
		SELECT
			s.id,
			s.profile_id,
			s.price::float8 AS price,
			s.is_additional,
			s.is_active,
			COALESCE(s.photos, '{}'::text[]) AS photos,
			s.created_at
		FROM services s
		WHERE s.profile_id = ANY($1)
		  AND s.is_active = true
		  AND s.is_additional = false
		ORDER BY s.created_at DESC, s.id
	`

	services := []domain.Service{}
	if err := r.db.SelectContext(ctx, &services, query, pq.Array(profileIDs)); err != nil {
		return nil, err
	}
	return services, nil
}

var _ ports.ServiceRepository = (*ServiceRepository)(nil)
