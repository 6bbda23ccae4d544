package states

import (
	"errors"
	"testing"
)

// fullRecord returns a well-formed 17-element raw state with distinct
// sentinel values per index.
func fullRecord() RawRecord {
	return RawRecord{
		"abc123",        // 0  icao24
		"  KLM1023  ",   // 1  callsign
		"Netherlands",   // 2  origin_country
		float64(1001),   // 3  time_position
		float64(1002),   // 4  last_contact
		float64(4.76),   // 5  longitude
		float64(52.31),  // 6  latitude
		float64(1100.5), // 7  baro_altitude
		false,           // 8  on_ground
		float64(251.2),  // 9  velocity
		float64(183.7),  // 10 true_track
		float64(-4.5),   // 11 vertical_rate
		[]any{1, 2},     // 12 sensors, dropped
		float64(1207.3), // 13 geo_altitude
		"1000",          // 14 squawk
		true,            // 15 spi
		float64(2),      // 16 position_source
	}
}

func TestNormalize_PositionalMapping(t *testing.T) {
	ts := int64(1700000000)
	rows, skipped, err := Normalize(&ts, []RawRecord{fullRecord()})
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}

	r := rows[0]
	if r.SnapshotTime != ts {
		t.Errorf("SnapshotTime = %d, want %d", r.SnapshotTime, ts)
	}
	if r.Icao24 != "abc123" {
		t.Errorf("Icao24 = %q, want %q", r.Icao24, "abc123")
	}
	if r.Callsign == nil || *r.Callsign != "KLM1023" {
		t.Errorf("Callsign = %v, want trimmed %q", r.Callsign, "KLM1023")
	}
	if r.OriginCountry != "Netherlands" {
		t.Errorf("OriginCountry = %q, want %q", r.OriginCountry, "Netherlands")
	}
	if r.TimePosition == nil || *r.TimePosition != 1001 {
		t.Errorf("TimePosition = %v, want 1001", r.TimePosition)
	}
	if r.LastContact == nil || *r.LastContact != 1002 {
		t.Errorf("LastContact = %v, want 1002", r.LastContact)
	}
	if r.Longitude == nil || *r.Longitude != 4.76 {
		t.Errorf("Longitude = %v, want 4.76", r.Longitude)
	}
	if r.Latitude == nil || *r.Latitude != 52.31 {
		t.Errorf("Latitude = %v, want 52.31", r.Latitude)
	}
	if r.BaroAltitude == nil || *r.BaroAltitude != 1100.5 {
		t.Errorf("BaroAltitude = %v, want 1100.5", r.BaroAltitude)
	}
	if r.OnGround == nil || *r.OnGround != false {
		t.Errorf("OnGround = %v, want false", r.OnGround)
	}
	if r.Velocity == nil || *r.Velocity != 251.2 {
		t.Errorf("Velocity = %v, want 251.2", r.Velocity)
	}
	if r.TrueTrack == nil || *r.TrueTrack != 183.7 {
		t.Errorf("TrueTrack = %v, want 183.7", r.TrueTrack)
	}
	if r.VerticalRate == nil || *r.VerticalRate != -4.5 {
		t.Errorf("VerticalRate = %v, want -4.5", r.VerticalRate)
	}
	// Raw index 12 is dropped: geo_altitude must come from index 13.
	if r.GeoAltitude == nil || *r.GeoAltitude != 1207.3 {
		t.Errorf("GeoAltitude = %v, want 1207.3", r.GeoAltitude)
	}
	if r.Squawk == nil || *r.Squawk != "1000" {
		t.Errorf("Squawk = %v, want %q", r.Squawk, "1000")
	}
	if r.SPI == nil || *r.SPI != true {
		t.Errorf("SPI = %v, want true", r.SPI)
	}
	if r.PositionSource == nil || *r.PositionSource != 2 {
		t.Errorf("PositionSource = %v, want 2", r.PositionSource)
	}
}

func TestNormalize_BoolCoercion(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want *bool // nil means normalized null
	}{
		{"null stays null", nil, nil},
		{"false stays false", false, boolPtr(false)},
		{"true stays true", true, boolPtr(true)},
		{"zero is false", float64(0), boolPtr(false)},
		{"nonzero is true", float64(1), boolPtr(true)},
		{"empty string is false", "", boolPtr(false)},
		{"nonempty string is true", "yes", boolPtr(true)},
	}

	ts := int64(1700000000)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := fullRecord()
			rec[8] = tt.raw
			rec[15] = tt.raw

			rows, _, err := Normalize(&ts, []RawRecord{rec})
			if err != nil {
				t.Fatalf("Normalize returned error: %v", err)
			}
			for _, got := range []*bool{rows[0].OnGround, rows[0].SPI} {
				if tt.want == nil {
					if got != nil {
						t.Errorf("coerced %v, want nil", *got)
					}
				} else if got == nil || *got != *tt.want {
					t.Errorf("coerced %v, want %v", got, *tt.want)
				}
			}
		})
	}
}

func TestNormalize_Callsign(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want *string
	}{
		{"trimmed", "  AFR66  ", strPtr("AFR66")},
		{"null stays null", nil, nil},
		{"empty stays null", "", nil},
		{"whitespace only trims to empty", "   ", strPtr("")},
	}

	ts := int64(1700000000)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := fullRecord()
			rec[1] = tt.raw

			rows, _, err := Normalize(&ts, []RawRecord{rec})
			if err != nil {
				t.Fatalf("Normalize returned error: %v", err)
			}
			got := rows[0].Callsign
			if tt.want == nil {
				if got != nil {
					t.Errorf("Callsign = %q, want nil", *got)
				}
			} else if got == nil || *got != *tt.want {
				t.Errorf("Callsign = %v, want %q", got, *tt.want)
			}
		})
	}
}

func TestNormalize_SkipsMalformedRecords(t *testing.T) {
	ts := int64(1700000000)

	raw := make([]RawRecord, 0, 10)
	for i := 0; i < 7; i++ {
		raw = append(raw, fullRecord())
	}
	raw = append(raw, fullRecord()[:16]) // one element short
	raw = append(raw, RawRecord{"abc123", "XYZ"})
	raw = append(raw, nil)

	rows, skipped, err := Normalize(&ts, raw)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if len(rows) != 7 {
		t.Errorf("len(rows) = %d, want 7", len(rows))
	}
	if skipped != 3 {
		t.Errorf("skipped = %d, want 3", skipped)
	}
}

func TestNormalize_MissingSnapshotTime(t *testing.T) {
	_, _, err := Normalize(nil, []RawRecord{fullRecord()})
	if err == nil {
		t.Fatal("expected error for missing snapshot time")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %T, want *ValidationError", err)
	}
}

func TestNormalize_EmptyStates(t *testing.T) {
	ts := int64(1700000000)
	rows, skipped, err := Normalize(&ts, nil)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if len(rows) != 0 || skipped != 0 {
		t.Errorf("rows = %d, skipped = %d, want 0 and 0", len(rows), skipped)
	}
}

func TestNormalize_NullFieldsPreserved(t *testing.T) {
	ts := int64(1700000000)
	rec := RawRecord{
		"abc123", nil, "France",
		nil, nil, nil, nil, nil, nil, nil, nil, nil,
		nil, nil, nil, nil, nil,
	}

	rows, _, err := Normalize(&ts, []RawRecord{rec})
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	r := rows[0]
	if r.Callsign != nil || r.TimePosition != nil || r.LastContact != nil ||
		r.Longitude != nil || r.Latitude != nil || r.BaroAltitude != nil ||
		r.OnGround != nil || r.Velocity != nil || r.TrueTrack != nil ||
		r.VerticalRate != nil || r.GeoAltitude != nil || r.Squawk != nil ||
		r.SPI != nil || r.PositionSource != nil {
		t.Errorf("expected all nullable fields to stay nil: %+v", r)
	}
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }
