// Package server exposes the atlas over HTTP.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dimfeld/httptreemux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atlasdatatech/geolayer/atlas"
	"github.com/atlasdatatech/geolayer/internal/log"
	"github.com/atlasdatatech/geolayer/layer"
)

const (
	// HTTPErrorHeader is set on error responses alongside the json body.
	HTTPErrorHeader = "X-Geolayer-Error"

	paramLayerID = "layer_id"
	paramIndex   = "idx"
)

// NewRouter wires the layer endpoints for a.
func NewRouter(a *atlas.Atlas) *httptreemux.ContextMux {
	r := httptreemux.NewContextMux()

	r.GET("/layers", HandleLayers{Atlas: a}.ServeHTTP)
	r.GET("/layers/:layer_id", HandleLayer{Atlas: a}.ServeHTTP)
	r.GET("/layers/:layer_id/tree", HandleTree{Atlas: a}.ServeHTTP)
	r.GET("/layers/:layer_id/sublayers/:idx", HandleSublayer{Atlas: a}.ServeHTTP)

	attrs := HandleAttributes{Atlas: a}
	r.GET("/layers/:layer_id/sublayers/:idx/attributes", attrs.ServeHTTP)
	r.POST("/layers/:layer_id/sublayers/:idx/attributes/abort", attrs.Abort)
	r.DELETE("/layers/:layer_id/sublayers/:idx/attributes", attrs.Reset)

	r.Handler(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// Start starts the server on addr. Errors other than a clean shutdown are fatal.
func Start(a *atlas.Atlas, addr string) *http.Server {
	srv := &http.Server{Addr: addr, Handler: NewRouter(a)}

	log.Infof("starting geolayer server on %v", addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()
	return srv
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("server: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set(HTTPErrorHeader, err.Error())
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// statusFor maps lookup errors onto a response status.
func statusFor(err error) int {
	switch err.(type) {
	case atlas.ErrLayerNotFound, layer.ErrMissingSublayer:
		return http.StatusNotFound
	case ErrBadParam:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// lookupRecord returns the record named by the layer_id path param.
func lookupRecord(a *atlas.Atlas, r *http.Request) (*layer.Record, error) {
	params := httptreemux.ContextParams(r.Context())
	return a.Layer(params[paramLayerID])
}

// lookupFeatureClass returns the feature class named by the layer_id and idx path params.
func lookupFeatureClass(a *atlas.Atlas, r *http.Request) (*layer.FeatureClass, error) {
	rec, err := lookupRecord(a, r)
	if err != nil {
		return nil, err
	}
	params := httptreemux.ContextParams(r.Context())
	idx, err := strconv.Atoi(params[paramIndex])
	if err != nil {
		return nil, ErrBadParam{Param: paramIndex, Value: params[paramIndex]}
	}
	return rec.FeatureClass(idx)
}
