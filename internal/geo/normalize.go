package geo

import (
	"math"
	"strings"
)

const (
	earthRadiusKm = 6371.0

	// SwapThresholdKm is how much closer a swapped pair must land to the city
	// before it is taken as the real position.
	SwapThresholdKm = 5.0
)

// DefaultPoint is used when a point cannot be decoded and its city is unknown.
var DefaultPoint = Point{Lat: 55.755826, Lng: 37.6173}

var cityPoints = map[string]Point{
	"москва":            {Lat: 55.755826, Lng: 37.6173},
	"moscow":            {Lat: 55.755826, Lng: 37.6173},
	"санкт петербург":   {Lat: 59.93428, Lng: 30.335099},
	"saint petersburg":  {Lat: 59.93428, Lng: 30.335099},
	"st petersburg":     {Lat: 59.93428, Lng: 30.335099},
	"спб":               {Lat: 59.93428, Lng: 30.335099},
	"новосибирск":       {Lat: 55.008353, Lng: 82.935733},
	"novosibirsk":       {Lat: 55.008353, Lng: 82.935733},
	"екатеринбург":      {Lat: 56.838926, Lng: 60.605703},
	"yekaterinburg":     {Lat: 56.838926, Lng: 60.605703},
	"казань":            {Lat: 55.796127, Lng: 49.106414},
	"kazan":             {Lat: 55.796127, Lng: 49.106414},
	"нижний новгород":   {Lat: 56.296504, Lng: 43.936059},
	"nizhny novgorod":   {Lat: 56.296504, Lng: 43.936059},
	"челябинск":         {Lat: 55.164442, Lng: 61.436843},
	"chelyabinsk":       {Lat: 55.164442, Lng: 61.436843},
	"самара":            {Lat: 53.195878, Lng: 50.100202},
	"samara":            {Lat: 53.195878, Lng: 50.100202},
	"омск":              {Lat: 54.988480, Lng: 73.324236},
	"omsk":              {Lat: 54.988480, Lng: 73.324236},
	"ростов на дону":    {Lat: 47.235714, Lng: 39.701505},
	"rostov on don":     {Lat: 47.235714, Lng: 39.701505},
	"уфа":               {Lat: 54.738762, Lng: 55.972055},
	"ufa":               {Lat: 54.738762, Lng: 55.972055},
	"красноярск":        {Lat: 56.015283, Lng: 92.893248},
	"krasnoyarsk":       {Lat: 56.015283, Lng: 92.893248},
	"воронеж":           {Lat: 51.660781, Lng: 39.200269},
	"voronezh":          {Lat: 51.660781, Lng: 39.200269},
	"пермь":             {Lat: 58.010450, Lng: 56.229434},
	"perm":              {Lat: 58.010450, Lng: 56.229434},
	"волгоград":         {Lat: 48.708048, Lng: 44.513303},
	"volgograd":         {Lat: 48.708048, Lng: 44.513303},
	"краснодар":         {Lat: 45.035470, Lng: 38.975313},
	"krasnodar":         {Lat: 45.035470, Lng: 38.975313},
	"сочи":              {Lat: 43.585472, Lng: 39.723098},
	"sochi":             {Lat: 43.585472, Lng: 39.723098},
	"тюмень":            {Lat: 57.152985, Lng: 65.541227},
	"tyumen":            {Lat: 57.152985, Lng: 65.541227},
	"калининград":       {Lat: 54.710426, Lng: 20.452214},
	"kaliningrad":       {Lat: 54.710426, Lng: 20.452214},
	"иркутск":           {Lat: 52.289588, Lng: 104.280606},
	"irkutsk":           {Lat: 52.289588, Lng: 104.280606},
}

// LookupCity returns the reference point of a known city. Matching ignores
// case, the "г." prefix, hyphens and ё/е.
func LookupCity(name string) (Point, bool) {
	p, ok := cityPoints[cityKey(name)]
	return p, ok
}

func cityKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimPrefix(key, "г.")
	key = strings.ReplaceAll(key, "ё", "е")
	key = strings.ReplaceAll(key, "-", " ")
	key = strings.ReplaceAll(key, ".", "")
	return strings.Join(strings.Fields(key), " ")
}

// HaversineKm is the great-circle distance between two points.
func HaversineKm(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	h = math.Min(1, math.Max(0, h))
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// NormalizeCoords swaps lat/lng when the swapped pair is more than
// SwapThresholdKm closer to the city. Unknown cities leave p unchanged.
func NormalizeCoords(p Point, city string) Point {
	ref, ok := LookupCity(city)
	if !ok {
		return p
	}
	swapped := p.Swapped()
	if HaversineKm(p, ref)-HaversineKm(swapped, ref) > SwapThresholdKm {
		return swapped
	}
	return p
}

// Resolve decodes and normalizes a stored point. Undecodable input falls back
// to the city reference point, then to DefaultPoint.
func Resolve(raw any, city string) Point {
	p, err := ParsePoint(raw)
	if err != nil {
		if ref, ok := LookupCity(city); ok {
			return ref
		}
		return DefaultPoint
	}
	return NormalizeCoords(p, city)
}
