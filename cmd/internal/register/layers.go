package register

import (
	"net/http"

	"github.com/atlasdatatech/geolayer/arcgis"
	"github.com/atlasdatatech/geolayer/atlas"
	"github.com/atlasdatatech/geolayer/config"
	"github.com/atlasdatatech/geolayer/layer"
	"github.com/atlasdatatech/geolayer/provider"
)

// Client builds the service client from the [client] section.
func Client(cfg config.Client) *arcgis.Client {
	cc := arcgis.ClientConfig{
		RetryMax:     cfg.RetryMax,
		RetryWaitMin: cfg.RetryWaitMin.Duration,
		RetryWaitMax: cfg.RetryWaitMax.Duration,
		UserAgent:    cfg.UserAgent,
	}
	if cfg.Timeout.Duration > 0 {
		cc.HTTPClient = &http.Client{Timeout: cfg.Timeout.Duration}
	}
	return arcgis.NewClient(cc)
}

func driverRegistered(name string) bool {
	for _, d := range provider.Drivers() {
		if d == name {
			return true
		}
	}
	return false
}

// sourceConfig strips the driver key from a layer's source table.
func sourceConfig(src map[string]interface{}) provider.Config {
	pcfg := make(provider.Config, len(src))
	for k, v := range src {
		if k == config.SourceKeyType {
			continue
		}
		pcfg[k] = v
	}
	return pcfg
}

func recordFromConfigLayer(cfg config.Layer, svc layer.Service) (*layer.Record, error) {
	kind, err := layer.ParseKind(cfg.Kind)
	if err != nil {
		return nil, err
	}

	lcfg := layer.Config{
		ID:           cfg.ID,
		Name:         cfg.Name,
		Kind:         kind,
		URL:          cfg.URL,
		NameField:    cfg.NameField,
		TooltipField: cfg.TooltipField,
		OutFields:    cfg.OutFields,
		Sublayers:    cfg.Sublayers,
		Hidden:       cfg.Hidden,
	}

	if kind == layer.FileSource {
		driver := cfg.Driver()
		if !driverRegistered(driver) {
			return nil, ErrProviderNotFound{Driver: driver, LayerID: cfg.ID}
		}
		lcfg.Driver = driver
		lcfg.Source = sourceConfig(cfg.Source)
		lcfg.SourceLayer = cfg.SourceLayer
		// file sources never talk to a service
		svc = nil
	}

	r, err := layer.NewRecord(lcfg, svc)
	if err != nil {
		return nil, ErrInvalidLayer{LayerID: cfg.ID, Err: err}
	}
	return r, nil
}

// Layers registers the configured layers with the atlas.
func Layers(a *atlas.Atlas, layers []config.Layer, svc layer.Service) error {
	for _, l := range layers {
		r, err := recordFromConfigLayer(l, svc)
		if err != nil {
			return err
		}
		if err := a.AddLayer(r); err != nil {
			return err
		}
	}
	return nil
}
