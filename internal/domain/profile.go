package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	CategoryVenue = "venue"

	ReviewsSourceYandex   = "yandex"
	ReviewsSourceInternal = "internal"
)

type Profile struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	Name         string         `db:"name" json:"name"`
	Slug         *string        `db:"slug" json:"slug,omitempty"`
	Category     string         `db:"category" json:"category"`
	City         *string        `db:"city" json:"city,omitempty"`
	Rating       *float64       `db:"rating" json:"rating,omitempty"`
	ReviewsCount *int           `db:"reviews_count" json:"reviews_count,omitempty"`
	CoverImage   *string        `db:"cover_image" json:"cover_image,omitempty"`
	IsPublished  bool           `db:"is_published" json:"is_published"`
	Details      ProfileDetails `db:"details" json:"details"`
	Bio          *string        `db:"bio" json:"bio,omitempty"`
	Description  *string        `db:"description" json:"description,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`

	Locations []ProfileLocation `db:"-" json:"locations,omitempty"`
}

func (p *Profile) IsVenue() bool {
	return p.Category == CategoryVenue
}

// ActiveLocations keeps the stored order.
func (p *Profile) ActiveLocations() []ProfileLocation {
	out := make([]ProfileLocation, 0, len(p.Locations))
	for _, loc := range p.Locations {
		if loc.IsActive {
			out = append(out, loc)
		}
	}
	return out
}

// MainLocation returns the first active location flagged is_main, then the
// first active location, then the first location of any kind.
func (p *Profile) MainLocation() (*ProfileLocation, bool) {
	if len(p.Locations) == 0 {
		return nil, false
	}
	for i := range p.Locations {
		if p.Locations[i].IsActive && p.Locations[i].IsMain {
			return &p.Locations[i], true
		}
	}
	for i := range p.Locations {
		if p.Locations[i].IsActive {
			return &p.Locations[i], true
		}
	}
	return &p.Locations[0], true
}

// ProfileDetails is the free-form jsonb column of a profile. Unknown keys are
// ignored.
type ProfileDetails struct {
	Tags          []string `json:"tags,omitempty"`
	Verified      bool     `json:"verified,omitempty"`
	Featured      bool     `json:"featured,omitempty"`
	ReviewsSource string   `json:"reviews_source,omitempty"`
	PriceRange    string   `json:"price_range,omitempty"`
}

func (d ProfileDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *ProfileDetails) Scan(value any) error {
	return scanJSON(value, d)
}

type ProfileLocation struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	ProfileID uuid.UUID       `db:"profile_id" json:"profile_id"`
	City      *string         `db:"city" json:"city,omitempty"`
	Address   *string         `db:"address" json:"address,omitempty"`
	Point     *string         `db:"point" json:"point,omitempty"`
	IsMain    bool            `db:"is_main" json:"is_main"`
	IsActive  bool            `db:"is_active" json:"is_active"`
	Details   LocationDetails `db:"details" json:"details"`
}

type LocationDetails struct {
	VenueType string `json:"venue_type,omitempty"`
}

func (d LocationDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *LocationDetails) Scan(value any) error {
	return scanJSON(value, d)
}

func scanJSON[T any](value any, dst *T) error {
	var zero T
	var data []byte
	switch v := value.(type) {
	case nil:
		*dst = zero
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("details must be []byte or string")
	}
	if len(data) == 0 || string(data) == "null" {
		*dst = zero
		return nil
	}
	*dst = zero
	return json.Unmarshal(data, dst)
}
