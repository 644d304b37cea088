package provider

import (
	"github.com/go-spatial/geom"
)

// LayerInfo is the important information about a layer
type LayerInfo interface {
	// ID is the id of the layer
	ID() string
	// Name is the name of the layer
	Name() string
	// GeomType is the geometry type of the layer
	GeomType() geom.Geometry
	// SRID is the srid of all the points in the layer
	SRID() uint64
	// IDFieldname is the column holding each feature's id
	IDFieldname() string
	// Fields are the attribute columns carried as feature tags
	Fields() []string
}

// LayerInfoFindByID returns the layer with the given id, or nil.
func LayerInfoFindByID(infos []LayerInfo, lyrID string) LayerInfo {
	for i := range infos {
		if infos[i].ID() == lyrID {
			return infos[i]
		}
	}
	return nil
}
