package geo

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
)

// ewkbPointHeader is a little-endian point with SRID 4326.
const ewkbPointHeader = "0101000020E6100000"

const (
	ewkbHeaderLen  = 18
	ewkbOrdinalLen = 16
)

// DecodeEWKBHex reads a little-endian EWKB point: 18 hex chars of header, then
// 16 hex chars for longitude and 16 for latitude.
func DecodeEWKBHex(s string) (Point, error) {
	s = strings.TrimSpace(s)
	if len(s) < ewkbHeaderLen+2*ewkbOrdinalLen {
		return Point{}, fmt.Errorf("%w: ewkb too short (%d chars)", ErrInvalidPoint, len(s))
	}
	lng, err := decodeOrdinal(s[ewkbHeaderLen : ewkbHeaderLen+ewkbOrdinalLen])
	if err != nil {
		return Point{}, err
	}
	lat, err := decodeOrdinal(s[ewkbHeaderLen+ewkbOrdinalLen : ewkbHeaderLen+2*ewkbOrdinalLen])
	if err != nil {
		return Point{}, err
	}
	return Point{Lat: lat, Lng: lng}, nil
}

// EncodeEWKBHex is the inverse of DecodeEWKBHex, in the form PostGIS prints
// geography(Point, 4326) values.
func EncodeEWKBHex(p Point) string {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(p.Lng))
	binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(p.Lat))
	return ewkbPointHeader + strings.ToUpper(hex.EncodeToString(buf))
}

func decodeOrdinal(chunk string) (float64, error) {
	raw, err := hex.DecodeString(chunk)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(raw)), nil
}
