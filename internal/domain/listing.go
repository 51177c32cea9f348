package domain

import "github.com/google/uuid"

// ProfileListItem is the flattened public listing entry.
type ProfileListItem struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	Slug         string            `json:"slug"`
	Category     string            `json:"category"`
	Image        string            `json:"image"`
	Rating       float64           `json:"rating"`
	ReviewsCount int               `json:"reviews_count"`
	PriceRange   string            `json:"price_range"`
	PriceFrom    *float64          `json:"price_from"`
	Tags         []string          `json:"tags"`
	Verified     bool              `json:"verified"`
	Featured     bool              `json:"featured"`
	VenueType    *string           `json:"venue_type"`
	Photos       []string          `json:"photos"`
	Locations    []ListingLocation `json:"locations"`
	Lat          *float64          `json:"lat"`
	Lng          *float64          `json:"lng"`
	City         string            `json:"city"`
	Description  string            `json:"description"`
}

type ListingLocation struct {
	ID      uuid.UUID `json:"id"`
	City    string    `json:"city"`
	Address string    `json:"address"`
	Lat     float64   `json:"lat"`
	Lng     float64   `json:"lng"`
	IsMain  bool      `json:"is_main"`
}
