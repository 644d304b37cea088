//go:build cgo
// +build cgo

// Package gpkg reads the feature tables of a GeoPackage file.
package gpkg

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/wkb"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/atlasdatatech/geolayer/internal/log"
	"github.com/atlasdatatech/geolayer/provider"
)

const (
	Name               = "gpkg"
	DefaultIDFieldName = "fid"
)

// config keys
const (
	ConfigKeyFilePath    = "filepath"
	ConfigKeyTableName   = "tablename"
	ConfigKeyGeomIDField = "id_fieldname"
	ConfigKeyFields      = "fields"
)

func init() {
	if err := provider.Register(Name, NewFeatureProvider); err != nil {
		log.Fatal(err)
	}
}

func decodeGeometry(bytes []byte) (*BinaryHeader, geom.Geometry, error) {
	h, err := NewBinaryHeader(bytes)
	if err != nil {
		log.Errorf("error decoding geometry header: %v", err)
		return h, nil, err
	}
	if h.IsEmpty() {
		return h, nil, nil
	}

	geo, err := wkb.DecodeBytes(bytes[h.Size():])
	if err != nil {
		log.Errorf("error decoding geometry: %v", err)
		return h, nil, err
	}

	return h, geo, nil
}

type Provider struct {
	// path to the geopackage file
	Filepath string
	// layers by table name, in discovery order
	layers map[string]Layer
	order  []string
	// reference to the database connection
	db *sql.DB
}

// NewFeatureProvider opens the GeoPackage named by the filepath key. All feature
// tables are exposed unless tablename picks one.
func NewFeatureProvider(config provider.Config) (provider.Collection, error) {
	path, err := config.String(ConfigKeyFilePath, nil)
	if err != nil {
		return nil, err
	}
	var table string
	if table, err = config.String(ConfigKeyTableName, &table); err != nil {
		return nil, err
	}
	var idField string
	if idField, err = config.String(ConfigKeyGeomIDField, &idField); err != nil {
		return nil, err
	}
	fields, err := config.StringSlice(ConfigKeyFields)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening geopackage %v", path)
	}

	p := &Provider{
		Filepath: path,
		layers:   map[string]Layer{},
		db:       db,
	}
	if err := p.discover(table, idField, fields); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "reading geopackage %v", path)
	}
	return p, nil
}

func (p *Provider) discover(table, idField string, fields []string) error {
	qtext := `
		SELECT
			c.table_name, c.min_x, c.min_y, c.max_x, c.max_y, c.srs_id, gc.column_name, gc.geometry_type_name
		FROM
			gpkg_contents c JOIN gpkg_geometry_columns gc ON c.table_name = gc.table_name
		WHERE
			c.data_type = 'features'`
	args := []interface{}{}
	if table != "" {
		qtext += ` AND c.table_name = ?`
		args = append(args, table)
	}
	qtext += ` ORDER BY c.table_name`

	rows, err := p.db.Query(qtext, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	var layers []Layer
	for rows.Next() {
		var (
			tablename, geomCol, geomType sql.NullString
			minX, minY, maxX, maxY       sql.NullFloat64
			srid                         sql.NullInt64
		)
		if err := rows.Scan(&tablename, &minX, &minY, &maxX, &maxY, &srid, &geomCol, &geomType); err != nil {
			return err
		}

		// map the returned geom type to a geom type
		tg, err := geomNameToGeom(geomType.String)
		if err != nil {
			log.Errorf("error mapping geom type (%v): %v", geomType.String, err)
			return err
		}

		bbox := geom.NewExtent(
			[2]float64{minX.Float64, minY.Float64},
			[2]float64{maxX.Float64, maxY.Float64},
		)
		layers = append(layers, Layer{
			name:          tablename.String,
			tablename:     tablename.String,
			geomFieldname: geomCol.String,
			geomType:      tg,
			srid:          uint64(srid.Int64),
			bbox:          *bbox,
		})
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if table != "" && len(layers) == 0 {
		return fmt.Errorf("no feature table named %q", table)
	}

	for _, l := range layers {
		cols, pk, err := p.tableColumns(l.tablename)
		if err != nil {
			return err
		}
		l.idFieldname = pk
		if idField != "" {
			l.idFieldname = idField
		}
		if l.idFieldname == "" {
			l.idFieldname = DefaultIDFieldName
		}
		for _, c := range cols {
			if c == l.idFieldname || c == l.geomFieldname {
				continue
			}
			if len(fields) > 0 && !contains(fields, c) {
				continue
			}
			l.tagFieldnames = append(l.tagFieldnames, c)
		}
		p.layers[l.name] = l
		p.order = append(p.order, l.name)
	}
	return nil
}

// tableColumns returns the columns of a table in declaration order and its primary key.
func (p *Provider) tableColumns(table string) (cols []string, pk string, err error) {
	rows, err := p.db.Query(fmt.Sprintf("PRAGMA table_info(`%v`)", table))
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid, notnull, pkFlag int
			name, ctype          string
			dflt                 sql.NullString
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pkFlag); err != nil {
			return nil, "", err
		}
		cols = append(cols, name)
		if pkFlag == 1 {
			pk = name
		}
	}
	return cols, pk, rows.Err()
}

func (p *Provider) Layers() ([]provider.LayerInfo, error) {
	log.Debug("attempting gpkg.Layers()")

	ls := make([]provider.LayerInfo, 0, len(p.order))
	for _, name := range p.order {
		ls = append(ls, p.layers[name])
	}
	return ls, nil
}

func (p *Provider) Features(ctx context.Context, layer string, fn func(f *provider.Feature) error) error {
	log.Debugf("fetching layer %v", layer)

	pLayer, ok := p.layers[layer]
	if !ok {
		return fmt.Errorf("gpkg: no layer %q in %v", layer, p.Filepath)
	}

	selectClause := fmt.Sprintf("SELECT `%v`, `%v`", pLayer.idFieldname, pLayer.geomFieldname)
	for _, tf := range pLayer.tagFieldnames {
		selectClause += fmt.Sprintf(", `%v`", tf)
	}
	qtext := fmt.Sprintf("%v FROM `%v` ORDER BY `%v`", selectClause, pLayer.tablename, pLayer.idFieldname)

	log.Debugf("qtext: %v", qtext)

	rows, err := p.db.QueryContext(ctx, qtext)
	if err != nil {
		log.Errorf("err during query: %v - %v", qtext, err)
		return err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}

	for rows.Next() {
		// check if the context cancelled or timed out
		if ctx.Err() != nil {
			return ctx.Err()
		}

		vals := make([]interface{}, len(cols))
		valPtrs := make([]interface{}, len(cols))
		for i := 0; i < len(cols); i++ {
			valPtrs[i] = &vals[i]
		}

		if err = rows.Scan(valPtrs...); err != nil {
			log.Errorf("err reading row values: %v", err)
			return err
		}

		feature := provider.Feature{
			SRID: pLayer.srid,
			Tags: map[string]interface{}{},
		}

		for i := range cols {
			if vals[i] == nil {
				continue
			}

			switch cols[i] {
			case pLayer.idFieldname:
				feature.ID, err = provider.ConvertFeatureID(vals[i])
				if err != nil {
					return err
				}

			case pLayer.geomFieldname:
				geomData, ok := vals[i].([]byte)
				if !ok {
					log.Errorf("unexpected column type for geom field. got %T", vals[i])
					return errors.New("unexpected column type for geom field. expected blob")
				}

				h, geo, err := decodeGeometry(geomData)
				if err != nil {
					return err
				}

				feature.SRID = uint64(h.SRSId())
				feature.Geometry = geo

			default:
				switch v := vals[i].(type) {
				case []uint8:
					feature.Tags[cols[i]] = string(v)
				case int64, float64, string, bool:
					feature.Tags[cols[i]] = v
				default:
					log.Errorf("unexpected type for sqlite column data: %v: %T", cols[i], v)
				}
			}
		}

		// pass the feature to the provided call back
		if err = fn(&feature); err != nil {
			return err
		}
	}

	return rows.Err()
}

// Close will close the Provider's database connection
func (p *Provider) Close() error {
	return p.db.Close()
}

func geomNameToGeom(name string) (geom.Geometry, error) {
	switch name {
	case "POINT":
		return geom.Point{}, nil
	case "LINESTRING":
		return geom.LineString{}, nil
	case "POLYGON":
		return geom.Polygon{}, nil
	case "MULTIPOINT":
		return geom.MultiPoint{}, nil
	case "MULTILINESTRING":
		return geom.MultiLineString{}, nil
	case "MULTIPOLYGON":
		return geom.MultiPolygon{}, nil
	}

	return nil, fmt.Errorf("unsupported geometry type: %v", name)
}

func contains(ss []string, s string) bool {
	for i := range ss {
		if ss[i] == s {
			return true
		}
	}
	return false
}
