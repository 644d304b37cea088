package layer

import (
	"context"
	"sync"

	"github.com/atlasdatatech/geolayer/arcgis"
	"github.com/atlasdatatech/geolayer/internal/log"
	"github.com/atlasdatatech/geolayer/provider"
)

// Watcher receives the notifications of an engine layer handle. Record implements it.
type Watcher interface {
	LoadStatusChanged(status LoadStatus)
	UpdatingChanged(viewID string, updating bool)
}

var _ Watcher = (*Record)(nil)

// handle is the engine layer a record wraps. Load reports progress through the watcher.
type handle interface {
	Title() string
	Err() error
	Load(ctx context.Context, w Watcher)
}

// serviceHandle describes the service URL a record was configured with.
type serviceHandle struct {
	url string
	svc Service

	mu   sync.RWMutex
	desc *arcgis.Description
	err  error
}

func (h *serviceHandle) Title() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.desc == nil {
		return ""
	}
	if h.desc.Name != "" {
		return h.desc.Name
	}
	return h.desc.MapName
}

func (h *serviceHandle) Err() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.err
}

// Description is the service description from the last successful load.
func (h *serviceHandle) Description() *arcgis.Description {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.desc
}

func (h *serviceHandle) Load(ctx context.Context, w Watcher) {
	w.LoadStatusChanged(StatusLoading)

	desc, err := h.svc.Describe(ctx, h.url)

	h.mu.Lock()
	h.desc, h.err = desc, err
	h.mu.Unlock()

	if err != nil {
		log.Errorf("layer: describing %v: %v", h.url, err)
		w.LoadStatusChanged(StatusFailed)
		return
	}
	w.LoadStatusChanged(StatusLoaded)
}

// fileHandle reads a provider layer fully into memory.
type fileHandle struct {
	driver string
	config provider.Config
	layer  string

	mu       sync.RWMutex
	info     provider.LayerInfo
	features []provider.Feature
	err      error
}

func (h *fileHandle) Title() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.info == nil {
		return ""
	}
	return h.info.Name()
}

func (h *fileHandle) Err() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.err
}

// Contents returns the layer info and features from the last successful load.
func (h *fileHandle) Contents() (provider.LayerInfo, []provider.Feature) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.info, h.features
}

func (h *fileHandle) Load(ctx context.Context, w Watcher) {
	w.LoadStatusChanged(StatusLoading)

	info, features, err := h.read(ctx)

	h.mu.Lock()
	h.info, h.features, h.err = info, features, err
	h.mu.Unlock()

	if err != nil {
		log.Errorf("layer: reading %v source: %v", h.driver, err)
		w.LoadStatusChanged(StatusFailed)
		return
	}
	w.LoadStatusChanged(StatusLoaded)
}

func (h *fileHandle) read(ctx context.Context) (provider.LayerInfo, []provider.Feature, error) {
	col, err := provider.For(h.driver, h.config)
	if err != nil {
		return nil, nil, err
	}
	defer col.Close()

	infos, err := col.Layers()
	if err != nil {
		return nil, nil, err
	}

	var info provider.LayerInfo
	switch {
	case h.layer != "":
		info = provider.LayerInfoFindByID(infos, h.layer)
	case len(infos) > 0:
		info = infos[0]
	}
	if info == nil {
		return nil, nil, ErrMissingSourceLayer{Driver: h.driver, Layer: h.layer}
	}

	var features []provider.Feature
	err = col.Features(ctx, info.ID(), func(f *provider.Feature) error {
		features = append(features, *f)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return info, features, nil
}
