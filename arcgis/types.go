package arcgis

import (
	"net/url"
	"strconv"
)

// Field type names used by the REST API.
const (
	FieldTypeOID      = "esriFieldTypeOID"
	FieldTypeString   = "esriFieldTypeString"
	FieldTypeInteger  = "esriFieldTypeInteger"
	FieldTypeDouble   = "esriFieldTypeDouble"
	FieldTypeDate     = "esriFieldTypeDate"
	FieldTypeGeometry = "esriFieldTypeGeometry"
)

// Layer type names reported by a layer endpoint.
const (
	LayerTypeFeature = "Feature Layer"
	LayerTypeTable   = "Table"
	LayerTypeRaster  = "Raster Layer"
	LayerTypeGroup   = "Group Layer"
)

// Field is one entry of a layer's field list.
type Field struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Alias string `json:"alias,omitempty"`
}

// SpatialReference of an extent.
type SpatialReference struct {
	WKID       int `json:"wkid,omitempty"`
	LatestWKID int `json:"latestWkid,omitempty"`
}

// Extent is the envelope reported by a service.
type Extent struct {
	XMin             float64           `json:"xmin"`
	YMin             float64           `json:"ymin"`
	XMax             float64           `json:"xmax"`
	YMax             float64           `json:"ymax"`
	SpatialReference *SpatialReference `json:"spatialReference,omitempty"`
}

// SublayerInfo is one entry of a map service's layer list.
type SublayerInfo struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	ParentLayerID int    `json:"parentLayerId"`
	SubLayerIDs   []int  `json:"subLayerIds"`
	Type          string `json:"type,omitempty"`
}

// IsGroup reports whether the sublayer has children.
func (s SublayerInfo) IsGroup() bool { return len(s.SubLayerIDs) > 0 }

// Description is the response of a describe (?f=json) request. Layer endpoints fill the
// schema fields, service roots fill Layers and MapName.
type Description struct {
	CurrentVersion float64 `json:"currentVersion"`

	ID           int    `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	GeometryType string `json:"geometryType"`

	MinScale          *float64 `json:"minScale"`
	MaxScale          *float64 `json:"maxScale"`
	EffectiveMinScale *float64 `json:"effectiveMinScale"`
	EffectiveMaxScale *float64 `json:"effectiveMaxScale"`

	Extent        *Extent `json:"extent"`
	Fields        []Field `json:"fields"`
	DisplayField  string  `json:"displayField"`
	ObjectIDField string  `json:"objectIdField"`

	MapName string         `json:"mapName"`
	Layers  []SublayerInfo `json:"layers"`
}

// IsTabular reports whether the endpoint serves attribute records.
func (d *Description) IsTabular() bool {
	return d.Type == LayerTypeFeature || d.Type == LayerTypeTable
}

// Query is a tabular query against <serviceUrl>/query.
type Query struct {
	Where          string
	OutFields      string
	ReturnGeometry bool
}

func (q Query) values() url.Values {
	v := url.Values{}
	where := q.Where
	if where == "" {
		where = "1=1"
	}
	outFields := q.OutFields
	if outFields == "" {
		outFields = "*"
	}
	v.Set("where", where)
	v.Set("outFields", outFields)
	v.Set("returnGeometry", strconv.FormatBool(q.ReturnGeometry))
	v.Set("f", "json")
	return v
}

// Feature is a single query result record.
type Feature struct {
	Attributes map[string]interface{} `json:"attributes"`
}

// FeatureSet is one page of query results.
type FeatureSet struct {
	ObjectIDFieldName     string    `json:"objectIdFieldName,omitempty"`
	Features              []Feature `json:"features"`
	ExceededTransferLimit bool      `json:"exceededTransferLimit"`
}
