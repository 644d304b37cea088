// Package layer wraps a service or file backed map layer in a record that
// tracks its readiness, owns its feature classes and exposes its layer tree.
package layer

import (
	"context"
	"sort"
	"sync"

	"github.com/atlasdatatech/geolayer/arcgis"
	"github.com/atlasdatatech/geolayer/internal/log"
	"github.com/atlasdatatech/geolayer/provider"
)

// Config describes a record.
type Config struct {
	ID   string
	Name string
	Kind Kind
	// URL of the sublayer (FeatureService) or service root (ImageService).
	URL string
	// NameField and TooltipField override the service's display field.
	NameField    string
	TooltipField string
	// OutFields is the comma separated field list for attribute queries, "*" by default.
	OutFields string
	// Sublayers restricts an ImageService to the listed sublayer ids.
	Sublayers []int
	// Driver, Source and SourceLayer configure a FileSource.
	Driver      string
	Source      provider.Config
	SourceLayer string
	Hidden      bool
}

// Record is a single configured layer. Its state is driven by the engine
// handle's load status and by map views reporting their updating status.
type Record struct {
	cfg    Config
	svc    Service
	handle handle

	// emitMu serializes state changes with their notifications.
	emitMu sync.Mutex

	mu         sync.RWMutex
	state      State
	sawLoad    bool
	sawRefresh bool
	name       string
	visible    bool
	tree       *Node
	fcs        map[int]*FeatureClass
	updating   map[string]bool
	pending    int
	gen        int
	loadCtx    context.Context

	// life bounds the attribute loaders. It outlives any single Load call
	// and ends with Close.
	life context.Context
	stop context.CancelFunc

	subsMu  sync.Mutex
	subs    map[int]func(StateEvent)
	nextSub int

	readyOnce sync.Once
	ready     chan struct{}
	readyErr  error
}

// NewRecord builds a record and its engine handle. Nothing is loaded until Load.
func NewRecord(cfg Config, svc Service) (*Record, error) {
	if cfg.ID == "" {
		return nil, ErrInvalidConfig{Reason: "missing id"}
	}

	var h handle
	switch cfg.Kind {
	case FeatureService, ImageService:
		if cfg.URL == "" {
			return nil, ErrInvalidConfig{LayerID: cfg.ID, Reason: "missing url"}
		}
		if svc == nil {
			return nil, ErrInvalidConfig{LayerID: cfg.ID, Reason: "no service client"}
		}
		h = &serviceHandle{url: cfg.URL, svc: svc}
	case FileSource:
		if cfg.Driver == "" {
			return nil, ErrInvalidConfig{LayerID: cfg.ID, Reason: "missing driver"}
		}
		h = &fileHandle{driver: cfg.Driver, config: cfg.Source, layer: cfg.SourceLayer}
	default:
		return nil, ErrUnknownKind(cfg.Kind.String())
	}

	life, stop := context.WithCancel(context.Background())
	return &Record{
		life:     life,
		stop:     stop,
		cfg:      cfg,
		svc:      svc,
		handle:   h,
		state:    New,
		name:     cfg.Name,
		visible:  !cfg.Hidden,
		fcs:      map[int]*FeatureClass{},
		updating: map[string]bool{},
		subs:     map[int]func(StateEvent){},
		ready:    make(chan struct{}),
		loadCtx:  context.Background(),
	}, nil
}

func (r *Record) ID() string     { return r.cfg.ID }
func (r *Record) Kind() Kind     { return r.cfg.Kind }
func (r *Record) URL() string    { return r.cfg.URL }
func (r *Record) Config() Config { return r.cfg }

// Name is the configured name, or the title the engine layer reported.
func (r *Record) Name() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.name
}

// State returns the current state.
func (r *Record) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// InitLoadDone reports whether the engine layer has loaded and a view has drawn it,
// each at least once.
func (r *Record) InitLoadDone() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sawLoad && r.sawRefresh
}

// Tree returns the layer tree built on the last load, or nil before the first.
func (r *Record) Tree() *Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tree
}

// FeatureClass returns the feature class at idx.
func (r *Record) FeatureClass(idx int) (*FeatureClass, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fc, ok := r.fcs[idx]
	if !ok {
		return nil, ErrMissingSublayer{LayerID: r.cfg.ID, Index: idx}
	}
	return fc, nil
}

// DefaultFeatureClass returns the feature class with the lowest index.
func (r *Record) DefaultFeatureClass() (*FeatureClass, error) {
	fcs := r.FeatureClasses()
	if len(fcs) == 0 {
		return nil, ErrMissingSublayer{LayerID: r.cfg.ID, Index: -1}
	}
	return fcs[0], nil
}

// FeatureClasses returns all feature classes ordered by index.
func (r *Record) FeatureClasses() []*FeatureClass {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fcs := make([]*FeatureClass, 0, len(r.fcs))
	for _, fc := range r.fcs {
		fcs = append(fcs, fc)
	}
	sort.Slice(fcs, func(i, j int) bool { return fcs[i].index < fcs[j].index })
	return fcs
}

func (r *Record) Visible() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.visible
}

func (r *Record) SetVisible(v bool) {
	r.mu.Lock()
	r.visible = v
	r.mu.Unlock()
}

// Ready is closed once the first load's feature classes have all settled, or the
// engine layer failed, after the matching state notification was delivered.
func (r *Record) Ready() <-chan struct{} { return r.ready }

// WaitReady blocks until Ready is closed and returns ErrLayerLoad if the engine layer failed.
// Per feature class failures are reported by FeatureClass.Err, not here.
func (r *Record) WaitReady(ctx context.Context) error {
	select {
	case <-r.ready:
		return r.readyErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnStateChanged registers fn for state notifications and returns a func that removes it.
// fn is called synchronously and must not drive the record's state itself.
func (r *Record) OnStateChanged(fn func(StateEvent)) (remove func()) {
	r.subsMu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.subsMu.Unlock()

	return func() {
		r.subsMu.Lock()
		delete(r.subs, id)
		r.subsMu.Unlock()
	}
}

// Close aborts running attribute loads and cancels their requests. Loaders
// built after Close fail immediately.
func (r *Record) Close() {
	r.stop()
	for _, fc := range r.FeatureClasses() {
		if l := fc.Loader(); l != nil {
			l.Abort()
		}
	}
}

// Load loads the engine layer in the background. Calling it again reloads,
// replacing the tree and feature classes once the new load completes.
func (r *Record) Load(ctx context.Context) {
	r.mu.Lock()
	r.loadCtx = ctx
	r.mu.Unlock()

	go r.handle.Load(ctx, r)
}

// LoadStatusChanged applies a load status reported by the engine layer.
func (r *Record) LoadStatusChanged(status LoadStatus) {
	r.emitMu.Lock()
	defer r.emitMu.Unlock()

	r.mu.Lock()
	if r.state == Error {
		r.mu.Unlock()
		return
	}

	switch status {
	case StatusLoaded:
		r.sawLoad = true
		r.gen++
		gen, ctx := r.gen, r.loadCtx
		jobs := r.rebuild()
		r.pending = len(jobs)
		r.state = Loading
		r.mu.Unlock()

		log.Infof("layer: %v loaded, bootstrapping %v feature class(es)", r.cfg.ID, len(jobs))
		if len(jobs) == 0 {
			r.settle(gen)
			return
		}
		for _, job := range jobs {
			go func(job func(context.Context)) {
				job(ctx)
				r.bootstrapDone(gen)
			}(job)
		}

	case StatusFailed:
		r.state = Error
		r.mu.Unlock()

		err := ErrLayerLoad{LayerID: r.cfg.ID, Err: r.handle.Err()}
		log.Errorf("%v", err)
		r.emit(Error)
		r.resolveReady(err)

	default:
		// bootstraps still running belong to the load being replaced
		r.gen++
		changed := r.state != Loading
		r.state = Loading
		r.mu.Unlock()
		if changed {
			r.emit(Loading)
		}
	}
}

// UpdatingChanged records whether a view is drawing the layer. While loaded, a
// view starting to update moves the record to refresh, and all views finishing
// moves it back. Changes during bootstrap are applied when bootstrap settles.
func (r *Record) UpdatingChanged(viewID string, updating bool) {
	r.emitMu.Lock()
	defer r.emitMu.Unlock()

	r.mu.Lock()
	if r.state == Error {
		r.mu.Unlock()
		return
	}
	if updating {
		r.updating[viewID] = true
		r.sawRefresh = true
	} else {
		delete(r.updating, viewID)
	}

	next := r.state
	switch {
	case r.state == Loaded && len(r.updating) > 0:
		next = Refresh
	case r.state == Refresh && len(r.updating) == 0:
		next = Loaded
	}
	changed := next != r.state
	r.state = next
	r.mu.Unlock()

	if changed {
		r.emit(next)
	}
}

func (r *Record) bootstrapDone(gen int) {
	r.mu.Lock()
	if gen != r.gen {
		r.mu.Unlock()
		return
	}
	r.pending--
	left := r.pending
	r.mu.Unlock()

	if left == 0 {
		r.emitMu.Lock()
		defer r.emitMu.Unlock()
		r.settle(gen)
	}
}

// settle finishes a load once every bootstrap of generation gen is done.
// emitMu must be held.
func (r *Record) settle(gen int) {
	r.mu.Lock()
	if gen != r.gen || r.state == Error || r.pending > 0 {
		r.mu.Unlock()
		return
	}
	r.state = Loaded
	refreshing := len(r.updating) > 0
	if refreshing {
		r.state = Refresh
	}
	r.mu.Unlock()

	r.emit(Loaded)
	if refreshing {
		r.emit(Refresh)
	}
	r.resolveReady(nil)
}

// rebuild replaces the tree and feature classes from the engine handle and
// returns the bootstrap jobs for the new feature classes. r.mu must be held.
func (r *Record) rebuild() []func(context.Context) {
	if r.name == "" {
		r.name = r.handle.Title()
	}
	r.fcs = map[int]*FeatureClass{}

	switch r.cfg.Kind {
	case FeatureService:
		idx := 0
		if _, i, ok := arcgis.ParseURLIndex(r.cfg.URL); ok {
			idx = i
		}
		fc := newFeatureClass(r, idx, r.name, r.cfg.URL)
		r.fcs[idx] = fc
		r.tree = NewLeaf(idx, r.name)
		return []func(context.Context){r.remoteJob(fc)}

	case ImageService:
		var layers []arcgis.SublayerInfo
		if desc := r.handle.(*serviceHandle).Description(); desc != nil {
			layers = desc.Layers
		}
		tree, leaves := buildServiceTree(r.name, layers, r.cfg.Sublayers)
		r.tree = tree

		jobs := make([]func(context.Context), 0, len(leaves))
		for _, leaf := range leaves {
			fc := newFeatureClass(r, leaf.ID, leaf.Name, arcgis.SublayerURL(r.cfg.URL, leaf.ID))
			r.fcs[leaf.ID] = fc
			jobs = append(jobs, r.remoteJob(fc))
		}
		return jobs

	case FileSource:
		info, features := r.handle.(*fileHandle).Contents()
		fc := newFeatureClass(r, 0, r.name, "")
		r.fcs[0] = fc
		r.tree = NewLeaf(0, r.name)
		return []func(context.Context){func(context.Context) {
			if err := fc.loadLocal(info, features); err != nil {
				log.Warnf("layer: %v: %v", r.cfg.ID, err)
				return
			}
			fc.applyFields(r.cfg.NameField, r.cfg.TooltipField)
		}}
	}
	return nil
}

func (r *Record) remoteJob(fc *FeatureClass) func(context.Context) {
	return func(ctx context.Context) {
		if err := fc.LoadMetadata(ctx, r.svc); err != nil {
			log.Warnf("layer: %v sublayer %v: %v", r.cfg.ID, fc.index, err)
			if _, ok := err.(ErrMetadataLoad); ok {
				return
			}
		}
		fc.applyFields(r.cfg.NameField, r.cfg.TooltipField)
	}
}

func (r *Record) resolveReady(err error) {
	r.readyOnce.Do(func() {
		r.readyErr = err
		close(r.ready)
	})
}

// emit delivers a state notification. emitMu must be held.
func (r *Record) emit(s State) {
	counterStateChanges.WithLabelValues(s.String()).Inc()

	r.subsMu.Lock()
	ids := make([]int, 0, len(r.subs))
	for id := range r.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(StateEvent), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, r.subs[id])
	}
	r.subsMu.Unlock()

	ev := StateEvent{LayerID: r.cfg.ID, State: s}
	for _, fn := range fns {
		fn(ev)
	}
}
