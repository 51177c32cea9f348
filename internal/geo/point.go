// Package geo decodes stored location points and repairs swapped coordinates.
package geo

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

var ErrInvalidPoint = errors.New("invalid point")

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p Point) Swapped() Point {
	return Point{Lat: p.Lng, Lng: p.Lat}
}

func (p Point) valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lng) && !math.IsInf(p.Lat, 0) && !math.IsInf(p.Lng, 0)
}

// ParsePoint decodes a location point stored as WKT text, hex EWKB, raw EWKB
// bytes or a GeoJSON-like object with coordinates [lng, lat].
func ParsePoint(raw any) (Point, error) {
	var (
		p   Point
		err error
	)
	switch v := raw.(type) {
	case nil:
		return Point{}, fmt.Errorf("%w: empty value", ErrInvalidPoint)
	case Point:
		p = v
	case *Point:
		if v == nil {
			return Point{}, fmt.Errorf("%w: empty value", ErrInvalidPoint)
		}
		p = *v
	case *string:
		if v == nil {
			return Point{}, fmt.Errorf("%w: empty value", ErrInvalidPoint)
		}
		p, err = parseText(*v)
	case string:
		p, err = parseText(v)
	case []byte:
		p, err = parseBytes(v)
	case json.RawMessage:
		p, err = parseBytes(v)
	case map[string]any:
		p, err = parseCoordinates(v["coordinates"])
	default:
		return Point{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidPoint, raw)
	}
	if err != nil {
		return Point{}, err
	}
	if !p.valid() {
		return Point{}, fmt.Errorf("%w: non-finite coordinate", ErrInvalidPoint)
	}
	return p, nil
}

func parseBytes(b []byte) (Point, error) {
	if len(b) > 0 && (b[0] == 0x00 || b[0] == 0x01) {
		return DecodeEWKBHex(hex.EncodeToString(b))
	}
	if !utf8.Valid(b) {
		return Point{}, fmt.Errorf("%w: unreadable bytes", ErrInvalidPoint)
	}
	return parseText(string(b))
}

func parseText(s string) (Point, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Point{}, fmt.Errorf("%w: empty value", ErrInvalidPoint)
	}
	if strings.HasPrefix(s, "{") {
		var obj struct {
			Coordinates []json.Number `json:"coordinates"`
		}
		dec := json.NewDecoder(strings.NewReader(s))
		dec.UseNumber()
		if err := dec.Decode(&obj); err != nil {
			return Point{}, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
		}
		items := make([]any, len(obj.Coordinates))
		for i, n := range obj.Coordinates {
			items[i] = n
		}
		return parseCoordinates(items)
	}

	upper := strings.ToUpper(s)
	if strings.HasPrefix(upper, "SRID=") {
		idx := strings.IndexByte(upper, ';')
		if idx < 0 {
			return Point{}, fmt.Errorf("%w: malformed srid prefix", ErrInvalidPoint)
		}
		s = strings.TrimSpace(s[idx+1:])
		upper = strings.ToUpper(s)
	}
	if strings.HasPrefix(upper, "POINT") {
		return parseWKT(s)
	}
	return DecodeEWKBHex(s)
}

// parseWKT reads POINT(lng lat).
func parseWKT(s string) (Point, error) {
	open := strings.IndexByte(s, '(')
	end := strings.LastIndexByte(s, ')')
	if open < 0 || end <= open {
		return Point{}, fmt.Errorf("%w: malformed wkt %q", ErrInvalidPoint, s)
	}
	fields := strings.Fields(strings.ReplaceAll(s[open+1:end], ",", " "))
	if len(fields) < 2 {
		return Point{}, fmt.Errorf("%w: wkt needs two ordinates", ErrInvalidPoint)
	}
	lng, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
	}
	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
	}
	return Point{Lat: lat, Lng: lng}, nil
}

func parseCoordinates(raw any) (Point, error) {
	items, ok := raw.([]any)
	if !ok {
		if floats, isFloats := raw.([]float64); isFloats {
			items = make([]any, len(floats))
			for i, f := range floats {
				items[i] = f
			}
		} else {
			return Point{}, fmt.Errorf("%w: missing coordinates", ErrInvalidPoint)
		}
	}
	if len(items) < 2 {
		return Point{}, fmt.Errorf("%w: coordinates need two values", ErrInvalidPoint)
	}
	lng, err := toFloat(items[0])
	if err != nil {
		return Point{}, err
	}
	lat, err := toFloat(items[1])
	if err != nil {
		return Point{}, err
	}
	return Point{Lat: lat, Lng: lng}, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: coordinate of type %T", ErrInvalidPoint, v)
	}
}
