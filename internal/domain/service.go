package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Service is a sellable offering of a profile.
type Service struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	ProfileID    uuid.UUID      `db:"profile_id" json:"profile_id"`
	Price        *float64       `db:"price" json:"price,omitempty"`
	IsAdditional bool           `db:"is_additional" json:"is_additional"`
	IsActive     bool           `db:"is_active" json:"is_active"`
	Photos       pq.StringArray `db:"photos" json:"photos"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}
