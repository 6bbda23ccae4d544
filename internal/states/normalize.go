package states

import (
	"fmt"
	"strings"
)

// ValidationError reports a structurally invalid snapshot batch. The whole
// batch is rejected; no rows from it are ever written.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid snapshot batch: %s", e.Reason)
}

// Normalize converts raw OpenSky state arrays into persisted rows, all sharing
// the given snapshot time.
//
// Records that are not arrays of at least MinRawFields elements are skipped
// and counted, not treated as errors. A nil snapshot time rejects the whole
// batch with a ValidationError, since every row must carry one.
//
// The positional mapping follows the OpenSky /states/all response. Raw index
// 12 (the sensors field) has no column and is dropped; indices 13-16 map to
// geo_altitude, squawk, spi and position_source.
func Normalize(snapshotTime *int64, raw []RawRecord) ([]Row, int, error) {
	if snapshotTime == nil {
		return nil, 0, &ValidationError{Reason: "snapshot time is missing"}
	}

	rows := make([]Row, 0, len(raw))
	skipped := 0

	for _, s := range raw {
		if len(s) < MinRawFields {
			skipped++
			continue
		}

		rows = append(rows, Row{
			SnapshotTime:   *snapshotTime,
			Icao24:         asString(s[0]),
			Callsign:       asCallsign(s[1]),
			OriginCountry:  asString(s[2]),
			TimePosition:   asInt64(s[3]),
			LastContact:    asInt64(s[4]),
			Longitude:      asFloat64(s[5]),
			Latitude:       asFloat64(s[6]),
			BaroAltitude:   asFloat64(s[7]),
			OnGround:       asBool(s[8]),
			Velocity:       asFloat64(s[9]),
			TrueTrack:      asFloat64(s[10]),
			VerticalRate:   asFloat64(s[11]),
			GeoAltitude:    asFloat64(s[13]),
			Squawk:         asStringPtr(s[14]),
			SPI:            asBool(s[15]),
			PositionSource: asInt64(s[16]),
		})
	}

	return rows, skipped, nil
}

// asCallsign trims surrounding whitespace from a non-empty callsign. Null or
// empty raw values become nil; a whitespace-only callsign trims to the empty
// string and is kept, matching the upstream feed's padding behaviour.
func asCallsign(v any) *string {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	trimmed := strings.TrimSpace(s)
	return &trimmed
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStringPtr(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func asFloat64(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case int64:
		f := float64(t)
		return &f
	}
	return nil
}

// asInt64 converts a raw numeric value to an integer. JSON numbers always
// decode as float64, so the float case is the common one.
func asInt64(v any) *int64 {
	switch t := v.(type) {
	case float64:
		i := int64(t)
		return &i
	case int64:
		return &t
	}
	return nil
}

// asBool coerces a raw value to a tri-state boolean: nil stays nil (unknown),
// anything else maps by truthiness. Zero and the empty string are false; any
// other non-null value is true.
func asBool(v any) *bool {
	if v == nil {
		return nil
	}
	var b bool
	switch t := v.(type) {
	case bool:
		b = t
	case float64:
		b = t != 0
	case string:
		b = t != ""
	default:
		b = true
	}
	return &b
}
