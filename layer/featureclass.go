package layer

import (
	"context"
	"sync"

	"github.com/go-spatial/geom"

	"github.com/atlasdatatech/geolayer/arcgis"
	"github.com/atlasdatatech/geolayer/attribs"
	"github.com/atlasdatatech/geolayer/internal/log"
	"github.com/atlasdatatech/geolayer/provider"
)

// Service is the remote endpoint a record talks to. *arcgis.Client satisfies it.
type Service interface {
	Describe(ctx context.Context, url string) (*arcgis.Description, error)
	attribs.Querier
}

// Metadata is what a feature class learns about itself during bootstrap.
type Metadata struct {
	LayerType     string         `json:"layerType"`
	GeomType      geom.Geometry  `json:"-"`
	Fields        []arcgis.Field `json:"fields,omitempty"`
	ObjectIDField string         `json:"objectIdField,omitempty"`
	NameField     string         `json:"nameField,omitempty"`
	TooltipField  string         `json:"tooltipField,omitempty"`
	Extent        *geom.Extent   `json:"extent,omitempty"`
	SRID          uint64         `json:"srid,omitempty"`
	ScaleSet      ScaleSet       `json:"scaleSet"`
	// SupportsFeatures is set for tabular sources with an object id field.
	SupportsFeatures bool `json:"supportsFeatures"`
}

// FeatureClass is one attribute bearing sublayer of a record.
type FeatureClass struct {
	parent *Record
	index  int
	url    string

	mu      sync.RWMutex
	name    string
	meta    Metadata
	loader  attribs.Loader
	err     error
	settled bool
}

func newFeatureClass(parent *Record, index int, name, url string) *FeatureClass {
	return &FeatureClass{
		parent: parent,
		index:  index,
		name:   name,
		url:    url,
	}
}

// Index is the sublayer index within the parent record.
func (fc *FeatureClass) Index() int { return fc.index }

// URL of the sublayer endpoint. Empty for file sources.
func (fc *FeatureClass) URL() string { return fc.url }

func (fc *FeatureClass) Name() string {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return fc.name
}

// Metadata returns a copy of the bootstrapped metadata.
func (fc *FeatureClass) Metadata() Metadata {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	m := fc.meta
	m.Fields = append([]arcgis.Field(nil), fc.meta.Fields...)
	return m
}

// Loader returns the attribute loader, or nil if the feature class has no attributes.
func (fc *FeatureClass) Loader() attribs.Loader {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return fc.loader
}

// Err is the bootstrap error, if any.
func (fc *FeatureClass) Err() error {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return fc.err
}

// Settled reports whether bootstrap has finished, successfully or not.
func (fc *FeatureClass) Settled() bool {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return fc.settled
}

// Visible mirrors the parent record.
func (fc *FeatureClass) Visible() bool { return fc.parent.Visible() }

// SetVisible sets the parent record's visibility.
func (fc *FeatureClass) SetVisible(v bool) { fc.parent.SetVisible(v) }

// IsOffScale tests mapScale against the feature class's scale set.
func (fc *FeatureClass) IsOffScale(mapScale float64) OffScale {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return fc.meta.ScaleSet.IsOffScale(mapScale)
}

// LoadMetadata describes the sublayer and, for tabular sources, sets up an
// attribute loader. A feature class with no URL settles without a request.
// The returned error is also kept on the feature class.
func (fc *FeatureClass) LoadMetadata(ctx context.Context, svc Service) error {
	if fc.url == "" {
		fc.settle(Metadata{}, nil, nil)
		return nil
	}

	desc, err := svc.Describe(ctx, fc.url)
	if err != nil {
		err = ErrMetadataLoad{URL: fc.url, Err: err}
		counterMetadataErrors.WithLabelValues("describe").Inc()
		fc.settle(Metadata{}, nil, err)
		return err
	}

	meta := Metadata{
		LayerType: desc.Type,
		GeomType:  geometryFromEsri(desc.GeometryType),
		ScaleSet: ScaleSet{
			MinScale: scaleOf(desc.EffectiveMinScale, desc.MinScale),
			MaxScale: scaleOf(desc.EffectiveMaxScale, desc.MaxScale),
		},
	}
	meta.Extent, meta.SRID = extentFromEsri(desc.Extent)

	fc.mu.Lock()
	if fc.name == "" {
		fc.name = desc.Name
	}
	fc.mu.Unlock()

	if !desc.IsTabular() {
		fc.settle(meta, nil, nil)
		return nil
	}

	meta.Fields = desc.Fields
	meta.NameField = desc.DisplayField

	oidField := identityField(desc)
	if oidField == "" {
		err := ErrMissingIdentityField{URL: fc.url}
		counterMetadataErrors.WithLabelValues("identity").Inc()
		fc.settle(meta, nil, err)
		return err
	}
	meta.ObjectIDField = oidField
	meta.SupportsFeatures = true

	// ctx only bounds bootstrap; attribute loads live as long as the record.
	loader := attribs.NewRemoteLoader(fc.parent.life, svc, attribs.Details{
		URL:           fc.url,
		OIDField:      oidField,
		OutFields:     fc.parent.cfg.OutFields,
		SupportsLimit: attribs.SupportsLimit(desc.CurrentVersion),
	})
	fc.settle(meta, loader, nil)
	return nil
}

// extenter is implemented by sources that record a layer extent.
type extenter interface {
	Extent() geom.Extent
}

// loadLocal fills metadata from features already in memory. The extent comes
// from the source when it records one, else from the feature geometries.
func (fc *FeatureClass) loadLocal(info provider.LayerInfo, features []provider.Feature) error {
	oidField := info.IDFieldname()
	if oidField == "" {
		err := ErrMissingIdentityField{URL: info.Name()}
		counterMetadataErrors.WithLabelValues("identity").Inc()
		fc.settle(Metadata{}, nil, err)
		return err
	}

	meta := Metadata{
		LayerType:        arcgis.LayerTypeFeature,
		GeomType:         info.GeomType(),
		SRID:             info.SRID(),
		ObjectIDField:    oidField,
		SupportsFeatures: true,
		Fields:           []arcgis.Field{{Name: oidField, Type: arcgis.FieldTypeOID}},
	}

	for _, name := range info.Fields() {
		if name == oidField {
			continue
		}
		meta.Fields = append(meta.Fields, arcgis.Field{Name: name, Type: sampleType(features, name)})
	}

	if e, ok := info.(extenter); ok {
		ext := e.Extent()
		meta.Extent = &ext
	} else {
		meta.Extent = featuresExtent(info.Name(), features)
	}

	fc.mu.Lock()
	if fc.name == "" {
		fc.name = info.Name()
	}
	fc.mu.Unlock()

	fc.settle(meta, attribs.NewLocalLoader(oidField, features), nil)
	return nil
}

// applyFields sets the name and tooltip fields, preferring configured values.
func (fc *FeatureClass) applyFields(nameField, tooltipField string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if nameField != "" {
		fc.meta.NameField = nameField
	}
	fc.meta.TooltipField = fc.meta.NameField
	if tooltipField != "" {
		fc.meta.TooltipField = tooltipField
	}
}

func (fc *FeatureClass) settle(meta Metadata, loader attribs.Loader, err error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	fc.meta = meta
	fc.loader = loader
	fc.err = err
	fc.settled = true
}

// identityField finds the field of type OID, falling back to the schema's objectIdField.
func identityField(desc *arcgis.Description) string {
	for _, f := range desc.Fields {
		if f.Type == arcgis.FieldTypeOID {
			return f.Name
		}
	}
	return desc.ObjectIDField
}

func scaleOf(effective, nominal *float64) float64 {
	switch {
	case effective != nil:
		return *effective
	case nominal != nil:
		return *nominal
	}
	return 0
}

func sampleType(features []provider.Feature, name string) string {
	for i := range features {
		if v, ok := features[i].Tags[name]; ok && v != nil {
			return fieldType(v)
		}
	}
	return arcgis.FieldTypeString
}

// featuresExtent is the union of the feature geometries' extents, or nil.
func featuresExtent(name string, features []provider.Feature) *geom.Extent {
	var extent *geom.Extent
	for i := range features {
		if features[i].Geometry == nil {
			continue
		}
		ext, err := geom.NewExtentFromGeometry(features[i].Geometry)
		if err != nil {
			log.Debugf("layer: no extent for feature %v of %v: %v", features[i].ID, name, err)
			continue
		}
		if extent == nil {
			extent = ext
			continue
		}
		extent.Add(ext)
	}
	return extent
}
