package layer

// ScaleSet holds the scale range a feature class is drawn at. Scale grows as
// the map zooms out; 0 for either bound means no limit on that side.
type ScaleSet struct {
	// MinScale hides the feature class when zoomed out past it.
	MinScale float64 `json:"minScale"`
	// MaxScale hides the feature class when zoomed in past it.
	MaxScale float64 `json:"maxScale"`
}

// OffScale is the result of a scale test.
type OffScale struct {
	OffScale bool `json:"offScale"`
	// ZoomIn is set when zooming in brings the feature class back into range.
	ZoomIn bool `json:"zoomIn"`
}

// IsOffScale reports whether mapScale falls outside the set, and which way to zoom.
func (s ScaleSet) IsOffScale(mapScale float64) OffScale {
	switch {
	case s.MaxScale != 0 && mapScale < s.MaxScale:
		return OffScale{OffScale: true, ZoomIn: false}
	case s.MinScale != 0 && mapScale > s.MinScale:
		return OffScale{OffScale: true, ZoomIn: true}
	}
	return OffScale{}
}
