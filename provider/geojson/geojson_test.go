package geojson_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-spatial/geom"
	"github.com/go-test/deep"

	"github.com/atlasdatatech/geolayer/provider"
	"github.com/atlasdatatech/geolayer/provider/geojson"
)

const collection = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": 10, "geometry": {"type": "Point", "coordinates": [1, 2]}, "properties": {"name": "a", "pop": 12}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [3, 4]}, "properties": {"name": "b", "id": 42}},
    {"type": "Feature", "id": "x-1", "geometry": null, "properties": {"name": "c", "kind": "road"}}
  ]
}`

func TestNewFeatureProvider(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "towns.geojson")
	if err := os.WriteFile(path, []byte(collection), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := provider.For(geojson.Name, provider.Config{"filepath": path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()

	layers, err := p.Layers()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(layers) != 1 || layers[0].Name() != "towns" {
		t.Fatalf("expected one layer named towns got %v", layers)
	}
	if _, ok := layers[0].GeomType().(geom.Point); !ok {
		t.Errorf("geom type, expected point got %T", layers[0].GeomType())
	}
	if diff := deep.Equal(layers[0].Fields(), []string{"kind", "name", "pop"}); diff != nil {
		t.Errorf("fields: %v", diff)
	}

	var ids []uint64
	var names []string
	err = p.Features(context.Background(), "towns", func(f *provider.Feature) error {
		ids = append(ids, f.ID)
		names = append(names, f.Tags["name"].(string))
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := deep.Equal(ids, []uint64{10, 42, 3}); diff != nil {
		t.Errorf("ids: %v", diff)
	}
	if diff := deep.Equal(names, []string{"a", "b", "c"}); diff != nil {
		t.Errorf("names: %v", diff)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := geojson.Decode([]byte(`{"type":"Feature"}`), "x", "id"); err == nil {
		t.Error("expected error for a non collection")
	}
	if _, err := geojson.Decode([]byte(`{`), "x", "id"); err == nil {
		t.Error("expected error for bad json")
	}
	if _, err := provider.For(geojson.Name, provider.Config{}); err == nil {
		t.Error("expected error for missing filepath")
	}
}
