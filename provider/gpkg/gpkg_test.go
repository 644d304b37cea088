//go:build cgo
// +build cgo

package gpkg_test

import (
	"context"
	"database/sql"
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"

	"github.com/go-spatial/geom"
	"github.com/go-test/deep"

	"github.com/atlasdatatech/geolayer/provider"
	"github.com/atlasdatatech/geolayer/provider/gpkg"
)

// pointBlob encodes a GeoPackage geometry blob (no envelope) holding a WKB point.
func pointBlob(srid int32, x, y float64) []byte {
	b := []byte{'G', 'P', 0, 0x01}
	b = binary.LittleEndian.AppendUint32(b, uint32(srid))
	b = append(b, 0x01)
	b = binary.LittleEndian.AppendUint32(b, 1)
	b = binary.LittleEndian.AppendUint64(b, math.Float64bits(x))
	b = binary.LittleEndian.AppendUint64(b, math.Float64bits(y))
	return b
}

func buildGeoPackage(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "test.gpkg")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE gpkg_contents (table_name TEXT NOT NULL PRIMARY KEY, data_type TEXT NOT NULL,
			min_x DOUBLE, min_y DOUBLE, max_x DOUBLE, max_y DOUBLE, srs_id INTEGER)`,
		`CREATE TABLE gpkg_geometry_columns (table_name TEXT NOT NULL, column_name TEXT NOT NULL,
			geometry_type_name TEXT NOT NULL, srs_id INTEGER NOT NULL, z TINYINT NOT NULL, m TINYINT NOT NULL)`,
		`CREATE TABLE stations (fid INTEGER PRIMARY KEY AUTOINCREMENT, geom BLOB, name TEXT, riders INTEGER)`,
		`INSERT INTO gpkg_contents VALUES ('stations', 'features', 0, 0, 10, 10, 4326)`,
		`INSERT INTO gpkg_geometry_columns VALUES ('stations', 'geom', 'POINT', 4326, 0, 0)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("%v: %v", s, err)
		}
	}

	rows := []struct {
		name   string
		riders int64
		x, y   float64
	}{
		{"union", 100, 1, 1},
		{"king", 55, 2, 3},
	}
	for _, r := range rows {
		if _, err := db.Exec(`INSERT INTO stations (geom, name, riders) VALUES (?, ?, ?)`,
			pointBlob(4326, r.x, r.y), r.name, r.riders); err != nil {
			t.Fatal(err)
		}
	}
	return path
}

func TestProvider(t *testing.T) {
	p, err := provider.For(gpkg.Name, provider.Config{"filepath": buildGeoPackage(t)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()

	layers, err := p.Layers()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(layers) != 1 {
		t.Fatalf("expected 1 layer got %v", len(layers))
	}
	l := layers[0]
	if l.Name() != "stations" || l.IDFieldname() != "fid" || l.SRID() != 4326 {
		t.Errorf("unexpected layer %v %v %v", l.Name(), l.IDFieldname(), l.SRID())
	}
	if diff := deep.Equal(l.Fields(), []string{"name", "riders"}); diff != nil {
		t.Errorf("fields: %v", diff)
	}

	var got []provider.Feature
	err = p.Features(context.Background(), "stations", func(f *provider.Feature) error {
		got = append(got, *f)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []provider.Feature{
		{ID: 1, SRID: 4326, Geometry: geom.Point{1, 1}, Tags: map[string]interface{}{"name": "union", "riders": int64(100)}},
		{ID: 2, SRID: 4326, Geometry: geom.Point{2, 3}, Tags: map[string]interface{}{"name": "king", "riders": int64(55)}},
	}
	if diff := deep.Equal(got, expected); diff != nil {
		t.Errorf("features: %v", diff)
	}
}

func TestProviderMissingTable(t *testing.T) {
	_, err := provider.For(gpkg.Name, provider.Config{"filepath": buildGeoPackage(t), "tablename": "nope"})
	if err == nil {
		t.Error("expected error for a missing table")
	}
}

func TestBinaryHeader(t *testing.T) {
	h, err := gpkg.NewBinaryHeader(pointBlob(3857, 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.SRSId() != 3857 || h.Size() != 8 || h.IsEmpty() {
		t.Errorf("unexpected header srid %v size %v", h.SRSId(), h.Size())
	}

	if _, err := gpkg.NewBinaryHeader([]byte("XX000000")); err == nil {
		t.Error("expected error for bad magic")
	}
}
