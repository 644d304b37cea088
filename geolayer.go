// Package geolayer loads remote and file based map layers, bootstraps the
// schema of every sublayer and streams their attribute tables into memory.
package geolayer

// Version is set at build time.
var Version = "version not set"

const (
	// WebMercator is the SRID of web mercator
	WebMercator = 3857
	// WGS84 is the SRID of lat/lng
	WGS84 = 4326
)
