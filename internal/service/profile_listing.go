package service

import (
	"math"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kidsevents/marketplace_backend/internal/domain"
	"github.com/kidsevents/marketplace_backend/internal/geo"
)

type listingInputs struct {
	minPrices map[uuid.UUID]float64
	photos    map[uuid.UUID][]string
	internal  map[uuid.UUID]domain.ReviewAggregate
	external  map[uuid.UUID]domain.ReviewAggregate
}

var pricePrinter = message.NewPrinter(language.Russian)

func (s *ProfileCatalogService) buildListItem(p *domain.Profile, in listingInputs) domain.ProfileListItem {
	rating := pickRating(p, in.internal, in.external)

	item := domain.ProfileListItem{
		ID:           p.ID,
		Name:         p.Name,
		Slug:         p.ID.String(),
		Category:     p.Category,
		Rating:       rating.Rating,
		ReviewsCount: rating.Count,
		Tags:         nonNilStrings(p.Details.Tags),
		Verified:     p.Details.Verified,
		Featured:     p.Details.Featured,
		Photos:       s.resolvePhotos(in.photos[p.ID]),
		Locations:    []domain.ListingLocation{},
		City:         strings.TrimSpace(deref(p.City)),
		Description:  firstNonEmpty(deref(p.Description), deref(p.Bio)),
	}
	if slug := strings.TrimSpace(deref(p.Slug)); slug != "" {
		item.Slug = slug
	}
	if price, ok := in.minPrices[p.ID]; ok {
		item.PriceFrom = &price
	}
	item.PriceRange = priceLabel(p.Details.PriceRange, item.PriceFrom)

	item.Image = s.resolveMedia(deref(p.CoverImage))
	if item.Image == "" && len(item.Photos) > 0 {
		item.Image = item.Photos[0]
	}

	if p.IsVenue() {
		applyVenueLocations(&item, p)
	}
	return item
}

// applyVenueLocations fills coordinates, venue type and the "city, address"
// label from the main location, plus every active location. An inactive
// fallback main location is listed first.
func applyVenueLocations(item *domain.ProfileListItem, p *domain.Profile) {
	main, ok := p.MainLocation()
	if !ok {
		return
	}

	city := locationCity(main, p)
	pt := geo.Resolve(main.Point, city)
	item.Lat = &pt.Lat
	item.Lng = &pt.Lng
	if vt := strings.TrimSpace(main.Details.VenueType); vt != "" {
		item.VenueType = &vt
	}
	if addr := strings.TrimSpace(deref(main.Address)); addr != "" {
		if city != "" {
			item.City = city + ", " + addr
		} else {
			item.City = addr
		}
	} else if city != "" {
		item.City = city
	}

	// The coordinates always come from a listed location, even when the
	// venue has no active one.
	if !main.IsActive {
		item.Locations = append(item.Locations, listingLocation(main, p, true))
	}
	for _, loc := range p.ActiveLocations() {
		item.Locations = append(item.Locations, listingLocation(&loc, p, loc.ID == main.ID))
	}
}

func listingLocation(loc *domain.ProfileLocation, p *domain.Profile, isMain bool) domain.ListingLocation {
	city := locationCity(loc, p)
	pt := geo.Resolve(loc.Point, city)
	return domain.ListingLocation{
		ID:      loc.ID,
		City:    city,
		Address: strings.TrimSpace(deref(loc.Address)),
		Lat:     pt.Lat,
		Lng:     pt.Lng,
		IsMain:  isMain,
	}
}

func locationCity(loc *domain.ProfileLocation, p *domain.Profile) string {
	return firstNonEmpty(deref(loc.City), deref(p.City))
}

func (s *ProfileCatalogService) resolveMedia(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || s.media == nil {
		return ref
	}
	return s.media.PublicURL(ref)
}

func (s *ProfileCatalogService) resolvePhotos(refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if u := s.resolveMedia(ref); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// priceLabel prefers the label stored on the profile, then "от <min> ₽".
func priceLabel(stored string, from *float64) string {
	if label := strings.TrimSpace(stored); label != "" {
		return label
	}
	if from == nil {
		return ""
	}
	return pricePrinter.Sprintf("от %d ₽", int64(math.Round(*from)))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
