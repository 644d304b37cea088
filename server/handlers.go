package server

import (
	"net/http"
	"strconv"

	"github.com/atlasdatatech/geolayer/atlas"
	"github.com/atlasdatatech/geolayer/attribs"
	"github.com/atlasdatatech/geolayer/layer"
)

type layerSummary struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Kind         layer.Kind  `json:"kind"`
	URL          string      `json:"url,omitempty"`
	State        layer.State `json:"state"`
	InitLoadDone bool        `json:"initLoadDone"`
	Visible      bool        `json:"visible"`
	Sublayers    []int       `json:"sublayers"`
}

type layerDetail struct {
	layerSummary
	Error     string         `json:"error,omitempty"`
	Sublayers []sublayerView `json:"sublayers"`
}

type attributeStatus struct {
	Loaded int  `json:"loaded"`
	Done   bool `json:"done"`
}

type sublayerView struct {
	Index        int              `json:"index"`
	Name         string           `json:"name"`
	URL          string           `json:"url,omitempty"`
	GeometryType string           `json:"geometryType,omitempty"`
	Metadata     layer.Metadata   `json:"metadata"`
	Error        string           `json:"error,omitempty"`
	Attributes   *attributeStatus `json:"attributes,omitempty"`
	OffScale     *layer.OffScale  `json:"offScale,omitempty"`
}

type attributesBody struct {
	OIDField  string               `json:"oidField"`
	Count     int                  `json:"count"`
	Features  []attribs.Attributes `json:"features"`
	Unindexed []int                `json:"unindexed,omitempty"`
}

func summarize(rec *layer.Record) layerSummary {
	s := layerSummary{
		ID:           rec.ID(),
		Name:         rec.Name(),
		Kind:         rec.Kind(),
		URL:          rec.URL(),
		State:        rec.State(),
		InitLoadDone: rec.InitLoadDone(),
		Visible:      rec.Visible(),
		Sublayers:    []int{},
	}
	for _, fc := range rec.FeatureClasses() {
		s.Sublayers = append(s.Sublayers, fc.Index())
	}
	return s
}

func viewSublayer(fc *layer.FeatureClass) sublayerView {
	meta := fc.Metadata()
	v := sublayerView{
		Index:        fc.Index(),
		Name:         fc.Name(),
		URL:          fc.URL(),
		GeometryType: layer.GeometryName(meta.GeomType),
		Metadata:     meta,
	}
	if err := fc.Err(); err != nil {
		v.Error = err.Error()
	}
	if l := fc.Loader(); l != nil {
		v.Attributes = &attributeStatus{Loaded: l.LoadedCount(), Done: l.Done()}
	}
	return v
}

// HandleLayers lists every record.
type HandleLayers struct {
	Atlas *atlas.Atlas
}

func (req HandleLayers) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	records := req.Atlas.Layers()

	out := make([]layerSummary, 0, len(records))
	for _, rec := range records {
		out = append(out, summarize(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleLayer describes a record and its feature classes.
type HandleLayer struct {
	Atlas *atlas.Atlas
}

func (req HandleLayer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec, err := lookupRecord(req.Atlas, r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	d := layerDetail{layerSummary: summarize(rec), Sublayers: []sublayerView{}}
	select {
	case <-rec.Ready():
		if err := rec.WaitReady(r.Context()); err != nil {
			d.Error = err.Error()
		}
	default:
	}
	for _, fc := range rec.FeatureClasses() {
		d.Sublayers = append(d.Sublayers, viewSublayer(fc))
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleTree returns a record's layer tree.
type HandleTree struct {
	Atlas *atlas.Atlas
}

func (req HandleTree) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec, err := lookupRecord(req.Atlas, r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	tree := rec.Tree()
	if tree == nil {
		// not loaded yet
		writeJSON(w, http.StatusOK, layer.NewGroup(layer.RootKey, rec.Name()))
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

// HandleSublayer describes a feature class. A scale query param adds a scale test.
type HandleSublayer struct {
	Atlas *atlas.Atlas
}

func (req HandleSublayer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fc, err := lookupFeatureClass(req.Atlas, r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	v := viewSublayer(fc)
	if s := r.URL.Query().Get("scale"); s != "" {
		scale, err := strconv.ParseFloat(s, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrBadParam{Param: "scale", Value: s})
			return
		}
		off := fc.IsOffScale(scale)
		v.OffScale = &off
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleAttributes serves a feature class's attribute set and controls its loader.
type HandleAttributes struct {
	Atlas *atlas.Atlas
}

func (req HandleAttributes) loader(w http.ResponseWriter, r *http.Request) (*layer.FeatureClass, attribs.Loader, bool) {
	fc, err := lookupFeatureClass(req.Atlas, r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return nil, nil, false
	}
	l := fc.Loader()
	if l == nil {
		rec, _ := lookupRecord(req.Atlas, r)
		writeError(w, http.StatusConflict, ErrNoAttributes{LayerID: rec.ID(), Index: fc.Index()})
		return nil, nil, false
	}
	return fc, l, true
}

// ServeHTTP loads the attributes, or joins the load in progress, and returns
// the set. An oid query param returns that single record.
func (req HandleAttributes) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fc, l, ok := req.loader(w, r)
	if !ok {
		return
	}

	set, err := l.Attributes().Wait(r.Context())
	if err != nil {
		if r.Context().Err() != nil {
			// client went away
			return
		}
		writeError(w, http.StatusBadGateway, err)
		return
	}

	if s := r.URL.Query().Get("oid"); s != "" {
		oid, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrBadParam{Param: "oid", Value: s})
			return
		}
		rec, ok := set.Lookup(oid)
		if !ok {
			writeError(w, http.StatusNotFound, ErrBadParam{Param: "oid", Value: s})
			return
		}
		writeJSON(w, http.StatusOK, rec)
		return
	}

	writeJSON(w, http.StatusOK, attributesBody{
		OIDField:  fc.Metadata().ObjectIDField,
		Count:     set.Len(),
		Features:  set.Features,
		Unindexed: set.Unindexed,
	})
}

// Abort stops the running load. Waiting requests get the records fetched so far.
func (req HandleAttributes) Abort(w http.ResponseWriter, r *http.Request) {
	_, l, ok := req.loader(w, r)
	if !ok {
		return
	}
	l.Abort()
	writeJSON(w, http.StatusAccepted, attributeStatus{Loaded: l.LoadedCount(), Done: l.Done()})
}

// Reset drops the cached set so the next request loads afresh.
func (req HandleAttributes) Reset(w http.ResponseWriter, r *http.Request) {
	_, l, ok := req.loader(w, r)
	if !ok {
		return
	}
	l.Reset()
	w.WriteHeader(http.StatusNoContent)
}
