package layer_test

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/atlasdatatech/geolayer/arcgis"
	"github.com/atlasdatatech/geolayer/layer"
)

const root = "https://example.com/arcgis/rest/services/City/MapServer"

// fakeService answers describe requests from a table and serves three records
// from every tabular endpoint.
type fakeService struct {
	mu    sync.Mutex
	descs map[string]*arcgis.Description
	errs  map[string]error
	// gates block describe requests for a url until closed.
	gates map[string]chan struct{}
	calls []string
}

func newFakeService() *fakeService {
	return &fakeService{
		descs: map[string]*arcgis.Description{},
		errs:  map[string]error{},
		gates: map[string]chan struct{}{},
	}
}

func (f *fakeService) Describe(ctx context.Context, url string) (*arcgis.Description, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	gate := f.gates[url]
	desc, err := f.descs[url], f.errs[url]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if desc == nil {
		return nil, arcgis.ErrStatus{URL: url, StatusCode: 404}
	}
	return desc, nil
}

func (f *fakeService) Query(ctx context.Context, serviceURL string, q arcgis.Query) (*arcgis.FeatureSet, error) {
	parts := strings.SplitN(q.Where, ">", 2)
	if len(parts) != 2 {
		return nil, errors.New("unexpected where " + q.Where)
	}
	after, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, err
	}

	fs := &arcgis.FeatureSet{Features: []arcgis.Feature{}}
	for oid := after + 1; oid <= 3; oid++ {
		if oid < 1 {
			continue
		}
		fs.Features = append(fs.Features, arcgis.Feature{Attributes: map[string]interface{}{
			parts[0]: json.Number(strconv.FormatInt(oid, 10)),
			"NAME":   "record " + strconv.FormatInt(oid, 10),
		}})
	}
	return fs, nil
}

func (f *fakeService) gate(url string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := make(chan struct{})
	f.gates[url] = g
	return g
}

func float(v float64) *float64 { return &v }

// tabular returns a feature layer description with an OID typed field.
func tabular(name string) *arcgis.Description {
	return &arcgis.Description{
		CurrentVersion: 10.81,
		Name:           name,
		Type:           arcgis.LayerTypeFeature,
		GeometryType:   "esriGeometryPolygon",
		DisplayField:   "NAME",
		MinScale:       float(1000000),
		MaxScale:       float(0),
		Fields: []arcgis.Field{
			{Name: "FID", Type: arcgis.FieldTypeOID},
			{Name: "NAME", Type: arcgis.FieldTypeString},
		},
		Extent: &arcgis.Extent{
			XMin: -10, YMin: -5, XMax: 10, YMax: 5,
			SpatialReference: &arcgis.SpatialReference{WKID: 102100, LatestWKID: 3857},
		},
	}
}

// events collects state notifications.
type events struct {
	ch chan layer.State
}

func watch(r *layer.Record) *events {
	e := &events{ch: make(chan layer.State, 32)}
	r.OnStateChanged(func(ev layer.StateEvent) { e.ch <- ev.State })
	return e
}

// next returns the next state, failing the test after a second.
func (e *events) next(t *testing.T) layer.State {
	t.Helper()
	select {
	case s := <-e.ch:
		return s
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a state notification")
		return layer.New
	}
}

// none fails if a notification is pending.
func (e *events) none(t *testing.T) {
	t.Helper()
	select {
	case s := <-e.ch:
		t.Fatalf("unexpected state notification %v", s)
	case <-time.After(20 * time.Millisecond):
	}
}

func waitReady(t *testing.T, r *layer.Record) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := r.WaitReady(ctx)
	if err == context.DeadlineExceeded {
		t.Fatalf("%v never became ready", r.ID())
	}
	return err
}
