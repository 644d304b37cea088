// Package atlas holds the configured layer records of a process.
package atlas

import (
	"context"
	"sort"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/atlasdatatech/geolayer/internal/log"
	"github.com/atlasdatatech/geolayer/layer"
)

// defaultAtlas is instantiated for convenience
var defaultAtlas = &Atlas{}

// Atlas is a concurrent registry of layer records keyed by id. The zero value is ready to use.
type Atlas struct {
	once   sync.Once
	layers *xsync.MapOf[string, *layer.Record]
}

// New returns an empty atlas.
func New() *Atlas {
	a := &Atlas{}
	a.init()
	return a
}

func (a *Atlas) init() {
	a.once.Do(func() {
		if a.layers == nil {
			a.layers = xsync.NewMapOf[string, *layer.Record]()
		}
	})
}

// AddLayer registers r. Ids are unique within an atlas.
func (a *Atlas) AddLayer(r *layer.Record) error {
	if a == nil {
		return defaultAtlas.AddLayer(r)
	}
	a.init()

	if _, loaded := a.layers.LoadOrStore(r.ID(), r); loaded {
		return ErrDuplicateLayer{ID: r.ID()}
	}
	return nil
}

// RemoveLayer drops the record with id and closes it, aborting any attribute
// loads it has running.
func (a *Atlas) RemoveLayer(id string) {
	if a == nil {
		defaultAtlas.RemoveLayer(id)
		return
	}
	a.init()

	r, ok := a.layers.LoadAndDelete(id)
	if !ok {
		return
	}
	r.Close()
}

// Layer returns the record with id.
func (a *Atlas) Layer(id string) (*layer.Record, error) {
	if a == nil {
		return defaultAtlas.Layer(id)
	}
	a.init()

	r, ok := a.layers.Load(id)
	if !ok {
		return nil, ErrLayerNotFound{ID: id}
	}
	return r, nil
}

// Layers returns all records sorted by id.
func (a *Atlas) Layers() []*layer.Record {
	if a == nil {
		return defaultAtlas.Layers()
	}
	a.init()

	var records []*layer.Record
	a.layers.Range(func(_ string, r *layer.Record) bool {
		records = append(records, r)
		return true
	})
	sort.Slice(records, func(i, j int) bool { return records[i].ID() < records[j].ID() })
	return records
}

// LoadAll starts loading every record.
func (a *Atlas) LoadAll(ctx context.Context) {
	if a == nil {
		defaultAtlas.LoadAll(ctx)
		return
	}
	for _, r := range a.Layers() {
		log.Debugf("atlas: loading %v (%v)", r.ID(), r.Kind())
		r.Load(ctx)
	}
}

// WaitReady blocks until every record is ready. Records whose engine layer
// failed are collected into ErrLayersFailed.
func (a *Atlas) WaitReady(ctx context.Context) error {
	if a == nil {
		return defaultAtlas.WaitReady(ctx)
	}

	failed := map[string]error{}
	for _, r := range a.Layers() {
		err := r.WaitReady(ctx)
		switch err.(type) {
		case nil:
		case layer.ErrLayerLoad:
			failed[r.ID()] = err
		default:
			// context done
			return err
		}
	}
	if len(failed) > 0 {
		return ErrLayersFailed{Errs: failed}
	}
	return nil
}

// AddLayer registers r with the default atlas.
func AddLayer(r *layer.Record) error {
	return defaultAtlas.AddLayer(r)
}

// GetLayer returns a record from the default atlas.
func GetLayer(id string) (*layer.Record, error) {
	return defaultAtlas.Layer(id)
}

// AllLayers returns the records of the default atlas.
func AllLayers() []*layer.Record {
	return defaultAtlas.Layers()
}
