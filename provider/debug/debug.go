// The debug provider generates a grid of features covering the web mercator
// extent, which is handy for exercising file layers without a file.
package debug

import (
	"context"
	"fmt"

	"github.com/go-spatial/geom"

	"github.com/atlasdatatech/geolayer"
	"github.com/atlasdatatech/geolayer/internal/log"
	"github.com/atlasdatatech/geolayer/provider"
)

const Name = "debug"

const (
	LayerDebugGridCells  = "debug-grid-cells"
	LayerDebugGridCenter = "debug-grid-center"
)

// config keys
const (
	ConfigKeyRows = "rows"
	ConfigKeyCols = "cols"
)

const defaultGridSize = 4

// webMercatorExtent is the full web mercator square.
var webMercatorExtent = geom.Extent{-20037508.3427892, -20037508.3427892, 20037508.3427892, 20037508.3427892}

func init() {
	if err := provider.Register(Name, NewFeatureProvider); err != nil {
		log.Fatal(err)
	}
}

// NewFeatureProvider sets up a debug provider with an optional grid size.
func NewFeatureProvider(config provider.Config) (provider.Collection, error) {
	rows, cols := defaultGridSize, defaultGridSize
	var err error
	if rows, err = config.Int(ConfigKeyRows, &rows); err != nil {
		return nil, err
	}
	if cols, err = config.Int(ConfigKeyCols, &cols); err != nil {
		return nil, err
	}
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("debug: grid must be at least 1x1, got %vx%v", rows, cols)
	}
	return &Provider{rows: rows, cols: cols}, nil
}

// Provider provides the debug provider
type Provider struct {
	rows, cols int
}

// Features yields one feature per grid cell.
func (p *Provider) Features(ctx context.Context, lyrID string, fn func(f *provider.Feature) error) error {
	if lyrID != LayerDebugGridCells && lyrID != LayerDebugGridCenter {
		return fmt.Errorf("debug: no layer %q", lyrID)
	}

	xstep := webMercatorExtent.XSpan() / float64(p.cols)
	ystep := webMercatorExtent.YSpan() / float64(p.rows)

	var id uint64
	for r := 0; r < p.rows; r++ {
		for c := 0; c < p.cols; c++ {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			id++

			cell := geom.Extent{
				webMercatorExtent.MinX() + float64(c)*xstep,
				webMercatorExtent.MinY() + float64(r)*ystep,
				webMercatorExtent.MinX() + float64(c+1)*xstep,
				webMercatorExtent.MinY() + float64(r+1)*ystep,
			}

			f := provider.Feature{
				ID:   id,
				SRID: geolayer.WebMercator,
				Tags: map[string]interface{}{
					"name": fmt.Sprintf("r%v-c%v", r, c),
					"row":  int64(r),
					"col":  int64(c),
				},
			}
			if lyrID == LayerDebugGridCells {
				f.Geometry = cell.AsPolygon()
			} else {
				f.Geometry = geom.Point{
					cell.MinX() + (cell.XSpan() / 2),
					cell.MinY() + (cell.YSpan() / 2),
				}
			}

			if err := fn(&f); err != nil {
				return err
			}
		}
	}
	return nil
}

// Layers returns information about the various layers the provider supports
func (p *Provider) Layers() ([]provider.LayerInfo, error) {
	return []provider.LayerInfo{
		Layer{
			name:     LayerDebugGridCells,
			geomType: geom.Polygon{},
			srid:     geolayer.WebMercator,
		},
		Layer{
			name:     LayerDebugGridCenter,
			geomType: geom.Point{},
			srid:     geolayer.WebMercator,
		},
	}, nil
}

func (p *Provider) Close() error { return nil }
