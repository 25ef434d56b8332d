// Package geo extracts decimal coordinates from the free-text venue location
// strings providers return. Matching is purely syntactic; no geocoding.
package geo

import (
	"regexp"
	"strconv"
	"strings"
)

// Point is a decimal latitude/longitude pair
type Point struct {
	Lat float64
	Lon float64
}

// The six location formats seen in provider map strings, in priority order.
// Prime and double-prime marks appear both as unicode and as ASCII quotes.
var (
	// "30.3877, -97.7195"
	decimalPairRe = regexp.MustCompile(`^([+-]?\d{1,3}(?:\.\d+)?)\s*,\s*([+-]?\d{1,3}(?:\.\d+)?)$`)

	// mapping-service URLs with a q=lat,lon query parameter
	urlQueryRe = regexp.MustCompile(`[?&]q=([+-]?\d{1,3}(?:\.\d+)?)\s*,\s*([+-]?\d{1,3}(?:\.\d+)?)`)

	// "34.013°N 118.285°W"
	decimalDegreesRe = regexp.MustCompile(`(\d{1,3}(?:\.\d+)?)°\s*([NS])[\s,]+(\d{1,3}(?:\.\d+)?)°\s*([EW])`)

	// "29°45.132′N 95°21.144′W" (degrees + decimal minutes, no seconds)
	degreesMinutesRe = regexp.MustCompile(`(\d{1,3})°\s*(\d{1,2}(?:\.\d+)?)[′']\s*([NS])[\s,]+(\d{1,3})°\s*(\d{1,2}(?:\.\d+)?)[′']\s*([EW])`)

	// "39°28′29″N 0°21′30″W" (full DMS, integer seconds)
	dmsRe = regexp.MustCompile(`(\d{1,3})°\s*(\d{1,2})[′']\s*(\d{1,2})[″"]\s*([NS])[\s,]+(\d{1,3})°\s*(\d{1,2})[′']\s*(\d{1,2})[″"]\s*([EW])`)

	// "39°58′6.46″N 83°1′1.52″W" (DMS with fractional seconds)
	dmsFractionalRe = regexp.MustCompile(`(\d{1,3})°\s*(\d{1,2})[′']\s*(\d{1,2}(?:\.\d+)?)[″"]\s*([NS])[\s,]+(\d{1,3})°\s*(\d{1,2})[′']\s*(\d{1,2}(?:\.\d+)?)[″"]\s*([EW])`)
)

// Extract parses a raw location string into decimal coordinates. Each format
// is tried in fixed priority order and the first structurally valid match
// within range wins; a match that converts to an out-of-range coordinate is
// treated as no match and the remaining formats are still tried.
func Extract(raw string) (Point, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Point{}, false
	}

	if m := decimalPairRe.FindStringSubmatch(raw); m != nil {
		if pt, ok := decimalPoint(m[1], m[2]); ok {
			return pt, true
		}
	}

	if m := urlQueryRe.FindStringSubmatch(raw); m != nil {
		if pt, ok := decimalPoint(m[1], m[2]); ok {
			return pt, true
		}
	}

	if m := decimalDegreesRe.FindStringSubmatch(raw); m != nil {
		lat := dmsToDecimal(m[1], "0", "0", m[2])
		lon := dmsToDecimal(m[3], "0", "0", m[4])
		if pt, ok := validPoint(lat, lon); ok {
			return pt, true
		}
	}

	if m := degreesMinutesRe.FindStringSubmatch(raw); m != nil {
		lat := dmsToDecimal(m[1], m[2], "0", m[3])
		lon := dmsToDecimal(m[4], m[5], "0", m[6])
		if pt, ok := validPoint(lat, lon); ok {
			return pt, true
		}
	}

	if m := dmsRe.FindStringSubmatch(raw); m != nil {
		lat := dmsToDecimal(m[1], m[2], m[3], m[4])
		lon := dmsToDecimal(m[5], m[6], m[7], m[8])
		if pt, ok := validPoint(lat, lon); ok {
			return pt, true
		}
	}

	if m := dmsFractionalRe.FindStringSubmatch(raw); m != nil {
		lat := dmsToDecimal(m[1], m[2], m[3], m[4])
		lon := dmsToDecimal(m[5], m[6], m[7], m[8])
		if pt, ok := validPoint(lat, lon); ok {
			return pt, true
		}
	}

	return Point{}, false
}

// dmsToDecimal converts degrees/minutes/seconds plus a cardinal direction to
// a signed decimal coordinate: degrees + minutes/60 + seconds/3600, negated
// for S and W.
func dmsToDecimal(degrees, minutes, seconds, direction string) float64 {
	deg, _ := strconv.ParseFloat(degrees, 64)
	min, _ := strconv.ParseFloat(minutes, 64)
	sec, _ := strconv.ParseFloat(seconds, 64)

	value := deg + min/60 + sec/3600
	if direction == "S" || direction == "W" {
		value = -value
	}
	return value
}

// FromDecimal validates an already-numeric coordinate pair
func FromDecimal(lat, lon float64) (Point, bool) {
	return validPoint(lat, lon)
}

func decimalPoint(latStr, lonStr string) (Point, bool) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return Point{}, false
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return Point{}, false
	}
	return validPoint(lat, lon)
}

func validPoint(lat, lon float64) (Point, bool) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Point{}, false
	}
	return Point{Lat: lat, Lon: lon}, true
}
