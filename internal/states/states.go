// Package states defines the normalized aircraft state vector model and the
// conversion from raw OpenSky state arrays into strictly typed rows.
package states

// MinRawFields is the minimum number of positional elements a raw OpenSky
// state array must carry to be accepted. Shorter arrays are skipped.
const MinRawFields = 17

// RawRecord is one aircraft state as delivered by the OpenSky API: a
// heterogeneous positional array of strings, numbers, booleans and nulls.
type RawRecord []any

// Row is one normalized state vector as persisted in the states_raw table.
// Pointer fields are nullable; a nil pointer is stored as SQL NULL.
type Row struct {
	SnapshotTime   int64
	Icao24         string
	Callsign       *string
	OriginCountry  string
	TimePosition   *int64
	LastContact    *int64
	Longitude      *float64
	Latitude       *float64
	BaroAltitude   *float64
	OnGround       *bool
	Velocity       *float64
	TrueTrack      *float64
	VerticalRate   *float64
	GeoAltitude    *float64
	Squawk         *string
	SPI            *bool
	PositionSource *int64
}

// Columns lists the states_raw column names in persisted order. Every storage
// backend must create and insert columns in exactly this order; downstream
// consumers depend on it.
var Columns = []string{
	"snapshot_time",
	"icao24",
	"callsign",
	"origin_country",
	"time_position",
	"last_contact",
	"longitude",
	"latitude",
	"baro_altitude",
	"on_ground",
	"velocity",
	"true_track",
	"vertical_rate",
	"geo_altitude",
	"squawk",
	"spi",
	"position_source",
}
