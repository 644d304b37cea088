package layer

import "fmt"

// ErrMetadataLoad is returned when a feature class's describe request fails.
// It affects that feature class only.
type ErrMetadataLoad struct {
	URL string
	Err error
}

func (e ErrMetadataLoad) Error() string {
	return fmt.Sprintf("layer: loading metadata from %v: %v", e.URL, e.Err)
}

func (e ErrMetadataLoad) Unwrap() error { return e.Err }

// ErrMissingIdentityField is returned when a tabular schema names no object id field.
// The feature class keeps its display metadata but gets no attribute loader.
type ErrMissingIdentityField struct {
	URL string
}

func (e ErrMissingIdentityField) Error() string {
	return fmt.Sprintf("layer: no object id field in the schema of %v", e.URL)
}

// ErrMissingSublayer is returned when no feature class exists at an index.
// An Index of -1 means the record has no feature classes at all.
type ErrMissingSublayer struct {
	LayerID string
	Index   int
}

func (e ErrMissingSublayer) Error() string {
	return fmt.Sprintf("layer: attempt to access non-existing layer index [layerid %v, index %v]", e.LayerID, e.Index)
}

// ErrLayerLoad is the error a record's readiness fails with when its engine layer fails to load.
type ErrLayerLoad struct {
	LayerID string
	Err     error
}

func (e ErrLayerLoad) Error() string {
	return fmt.Sprintf("layer: %v failed to load: %v", e.LayerID, e.Err)
}

func (e ErrLayerLoad) Unwrap() error { return e.Err }

// ErrInvalidConfig is returned by NewRecord.
type ErrInvalidConfig struct {
	LayerID string
	Reason  string
}

func (e ErrInvalidConfig) Error() string {
	return fmt.Sprintf("layer: invalid config for %q: %v", e.LayerID, e.Reason)
}

// ErrUnknownKind is returned when parsing an unrecognised layer kind.
type ErrUnknownKind string

func (e ErrUnknownKind) Error() string {
	return fmt.Sprintf("layer: unknown kind %q", string(e))
}

// ErrMissingSourceLayer is returned when a file source has no layer by the configured name.
type ErrMissingSourceLayer struct {
	Driver string
	Layer  string
}

func (e ErrMissingSourceLayer) Error() string {
	if e.Layer == "" {
		return fmt.Sprintf("layer: %v source has no layers", e.Driver)
	}
	return fmt.Sprintf("layer: %v source has no layer %q", e.Driver, e.Layer)
}
