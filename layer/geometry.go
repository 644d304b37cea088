package layer

import (
	"encoding/json"

	"github.com/go-spatial/geom"

	"github.com/atlasdatatech/geolayer/arcgis"
)

// geometryFromEsri maps a service geometry type onto a geom prototype. Unknown
// types, and tables, map to nil.
func geometryFromEsri(t string) geom.Geometry {
	switch t {
	case "esriGeometryPoint":
		return geom.Point{}
	case "esriGeometryMultipoint":
		return geom.MultiPoint{}
	case "esriGeometryPolyline":
		return geom.MultiLineString{}
	case "esriGeometryPolygon":
		return geom.MultiPolygon{}
	default:
		return nil
	}
}

// GeometryName returns the name of a geometry prototype.
func GeometryName(g geom.Geometry) string {
	switch g.(type) {
	case geom.Point, *geom.Point:
		return "Point"
	case geom.MultiPoint, *geom.MultiPoint:
		return "MultiPoint"
	case geom.LineString, *geom.LineString:
		return "LineString"
	case geom.MultiLineString, *geom.MultiLineString:
		return "MultiLineString"
	case geom.Polygon, *geom.Polygon:
		return "Polygon"
	case geom.MultiPolygon, *geom.MultiPolygon:
		return "MultiPolygon"
	case geom.Collection, *geom.Collection:
		return "GeometryCollection"
	default:
		return ""
	}
}

func extentFromEsri(e *arcgis.Extent) (*geom.Extent, uint64) {
	if e == nil {
		return nil, 0
	}
	var srid uint64
	if sr := e.SpatialReference; sr != nil {
		switch {
		case sr.LatestWKID > 0:
			srid = uint64(sr.LatestWKID)
		case sr.WKID > 0:
			srid = uint64(sr.WKID)
		}
	}
	return geom.NewExtent([2]float64{e.XMin, e.YMin}, [2]float64{e.XMax, e.YMax}), srid
}

// fieldType guesses a service field type from a sample tag value.
func fieldType(v interface{}) string {
	switch n := v.(type) {
	case string:
		return arcgis.FieldTypeString
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return arcgis.FieldTypeInteger
	case float32, float64:
		return arcgis.FieldTypeDouble
	case json.Number:
		if _, err := n.Int64(); err == nil {
			return arcgis.FieldTypeInteger
		}
		return arcgis.FieldTypeDouble
	default:
		return arcgis.FieldTypeString
	}
}
