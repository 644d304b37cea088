package gpkg

import "github.com/go-spatial/geom"

type Layer struct {
	name          string
	tablename     string
	tagFieldnames []string
	idFieldname   string
	geomFieldname string
	geomType      geom.Geometry
	srid          uint64
	bbox          geom.Extent
}

func (l Layer) ID() string              { return l.name }
func (l Layer) Name() string            { return l.name }
func (l Layer) GeomType() geom.Geometry { return l.geomType }
func (l Layer) SRID() uint64            { return l.srid }
func (l Layer) IDFieldname() string     { return l.idFieldname }
func (l Layer) Fields() []string        { return l.tagFieldnames }

// Extent is the bounding box recorded in gpkg_contents.
func (l Layer) Extent() geom.Extent { return l.bbox }
