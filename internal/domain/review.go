package domain

import (
	"time"

	"github.com/google/uuid"
)

// Review is an internal rating left on a profile. Only moderated, visible rows
// are loaded.
type Review struct {
	ProfileID uuid.UUID `db:"profile_id" json:"profile_id"`
	Rating    float64   `db:"rating" json:"rating"`
}

// ExternalReview is a cached snapshot of the map provider rating for one location.
type ExternalReview struct {
	LocationID   uuid.UUID `db:"location_id" json:"location_id"`
	Rating       *float64  `db:"rating" json:"rating,omitempty"`
	ReviewsCount *int      `db:"reviews_count" json:"reviews_count,omitempty"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type ReviewAggregate struct {
	Rating float64 `json:"rating"`
	Count  int     `json:"count"`
}
