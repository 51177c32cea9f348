package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/kidsevents/marketplace_backend/internal/domain"
	"github.com/kidsevents/marketplace_backend/internal/repository/ports"
)

type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepo(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) ListPublished(ctx context.Context) ([]domain.Profile, error) {
	const profilesQuery = `
		SELECT
			p.id,
			p.name,
			p.slug,
			p.category,
			p.city,
			p.rating::float8 AS rating,
			p.reviews_count,
			p.cover_image,
			p.is_published,
			COALESCE(p.details, '{}'::jsonb) AS details,
			p.bio,
			p.description,
			p.created_at
		FROM profiles p
		WHERE p.is_published = true
		ORDER BY p.created_at DESC, p.id
	`

	profiles := []domain.Profile{}
	if err := r.db.SelectContext(ctx, &profiles, profilesQuery); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return profiles, nil
	}

	ids := make([]uuid.UUID, 0, len(profiles))
	index := make(map[uuid.UUID]int, len(profiles))
	for i, p := range profiles {
		ids = append(ids, p.ID)
		index[p.ID] = i
	}

	const locationsQuery = `
		SELECT
			l.id,
			l.profile_id,
			l.city,
			l.address,
			l.point::text AS point,
			l.is_main,
			l.is_active,
			COALESCE(l.details, '{}'::jsonb) AS details
		FROM profile_locations l
		WHERE l.profile_id = ANY($1)
		ORDER BY l.created_at ASC, l.id
	`

	locations := []domain.ProfileLocation{}
	if err := r.db.SelectContext(ctx, &locations, locationsQuery, pq.Array(ids)); err != nil {
		return nil, err
	}
	for _, loc := range locations {
		if i, ok := index[loc.ProfileID]; ok {
			profiles[i].Locations = append(profiles[i].Locations, loc)
		}
	}
	return profiles, nil
}

var _ ports.ProfileRepository = (*ProfileRepository)(nil)
