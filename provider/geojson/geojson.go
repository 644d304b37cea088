// Package geojson reads a GeoJSON FeatureCollection file into memory.
package geojson

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/geojson"
	"github.com/pkg/errors"

	"github.com/atlasdatatech/geolayer"
	"github.com/atlasdatatech/geolayer/internal/log"
	"github.com/atlasdatatech/geolayer/provider"
)

const (
	Name               = "geojson"
	DefaultIDFieldName = "id"
)

// config keys
const (
	ConfigKeyFilePath    = "filepath"
	ConfigKeyLayerName   = "name"
	ConfigKeyGeomIDField = "id_fieldname"
)

func init() {
	if err := provider.Register(Name, NewFeatureProvider); err != nil {
		log.Fatal(err)
	}
}

type Layer struct {
	name          string
	idFieldname   string
	tagFieldnames []string
	geomType      geom.Geometry
}

func (l Layer) ID() string              { return l.name }
func (l Layer) Name() string            { return l.name }
func (l Layer) GeomType() geom.Geometry { return l.geomType }
func (l Layer) SRID() uint64            { return geolayer.WGS84 }
func (l Layer) IDFieldname() string     { return l.idFieldname }
func (l Layer) Fields() []string        { return l.tagFieldnames }

// Provider holds the decoded features of one file as a single layer.
type Provider struct {
	layer    Layer
	features []provider.Feature
}

type rawCollection struct {
	Type     string       `json:"type"`
	Features []rawFeature `json:"features"`
}

type rawFeature struct {
	ID         json.RawMessage        `json:"id"`
	Geometry   json.RawMessage        `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// NewFeatureProvider reads the file named by the filepath key.
func NewFeatureProvider(config provider.Config) (provider.Collection, error) {
	path, err := config.String(ConfigKeyFilePath, nil)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if name, err = config.String(ConfigKeyLayerName, &name); err != nil {
		return nil, err
	}
	idField := DefaultIDFieldName
	if idField, err = config.String(ConfigKeyGeomIDField, &idField); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading geojson %v", path)
	}
	p, err := Decode(data, name, idField)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding geojson %v", path)
	}
	return p, nil
}

// Decode builds a provider from the bytes of a FeatureCollection.
func Decode(data []byte, name, idField string) (*Provider, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw rawCollection
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw.Type != "FeatureCollection" {
		return nil, fmt.Errorf("expected a FeatureCollection got %q", raw.Type)
	}

	p := &Provider{
		layer: Layer{name: name, idFieldname: idField},
	}
	fields := map[string]struct{}{}

	for i, rf := range raw.Features {
		f := provider.Feature{
			SRID: geolayer.WGS84,
			Tags: map[string]interface{}{},
		}

		id, err := featureID(rf, idField, uint64(i+1))
		if err != nil {
			return nil, fmt.Errorf("feature %v: %v", i, err)
		}
		f.ID = id

		if len(rf.Geometry) > 0 && string(rf.Geometry) != "null" {
			var g geojson.Geometry
			if err := json.Unmarshal(rf.Geometry, &g); err != nil {
				return nil, fmt.Errorf("feature %v: %v", i, err)
			}
			f.Geometry = g.Geometry
			if p.layer.geomType == nil {
				p.layer.geomType = g.Geometry
			}
		}

		for k, v := range rf.Properties {
			if k == idField {
				continue
			}
			f.Tags[k] = v
			fields[k] = struct{}{}
		}
		p.features = append(p.features, f)
	}

	for k := range fields {
		p.layer.tagFieldnames = append(p.layer.tagFieldnames, k)
	}
	sort.Strings(p.layer.tagFieldnames)
	return p, nil
}

// featureID prefers the id property, then the feature id member, then the fallback.
func featureID(rf rawFeature, idField string, fallback uint64) (uint64, error) {
	if v, ok := rf.Properties[idField]; ok && v != nil {
		if n, ok := v.(json.Number); ok {
			return provider.ConvertFeatureID(n.String())
		}
		return provider.ConvertFeatureID(v)
	}
	if len(rf.ID) == 0 || string(rf.ID) == "null" {
		return fallback, nil
	}

	var v interface{}
	if err := json.Unmarshal(rf.ID, &v); err != nil {
		return 0, err
	}
	if f, ok := v.(float64); ok {
		return provider.ConvertFeatureID(f)
	}
	if s, ok := v.(string); ok {
		if id, err := provider.ConvertFeatureID(s); err == nil {
			return id, nil
		}
	}
	// non numeric ids are replaced by position
	return fallback, nil
}

func (p *Provider) Layers() ([]provider.LayerInfo, error) {
	return []provider.LayerInfo{p.layer}, nil
}

func (p *Provider) Features(ctx context.Context, layer string, fn func(f *provider.Feature) error) error {
	if layer != p.layer.name {
		return fmt.Errorf("geojson: no layer %q", layer)
	}
	for i := range p.features {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(&p.features[i]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provider) Close() error { return nil }
