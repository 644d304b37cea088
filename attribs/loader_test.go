package attribs_test

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/go-spatial/geom"
	"github.com/go-test/deep"

	"github.com/atlasdatatech/geolayer/attribs"
	"github.com/atlasdatatech/geolayer/provider"
)

func wait(t *testing.T, res *attribs.Result) *attribs.Set {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	set, err := res.Wait(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return set
}

func TestRemoteLoaderSharesOneLoad(t *testing.T) {
	svc := &fakeService{total: 25, pageSize: 10, reportLimit: true, gate: make(chan struct{})}
	l := attribs.NewRemoteLoader(context.Background(), svc, details(true))

	const callers = 8
	results := make([]*attribs.Result, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = l.Attributes()
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		if results[i] != results[0] {
			t.Fatalf("[%v] expected the cached result to be returned", i)
		}
	}

	close(svc.gate)
	set := wait(t, results[0])

	if set.Len() != 25 {
		t.Errorf("records, expected 25 got %v", set.Len())
	}
	if got := len(svc.requests()); got != 3 {
		t.Errorf("requests, expected a single pagination of 3 got %v", got)
	}
	if l.LoadedCount() != 25 || !l.Done() {
		t.Errorf("progress, expected 25 done got %v %v", l.LoadedCount(), l.Done())
	}
	if l.Attributes() != results[0] {
		t.Error("expected the completed result to stay cached")
	}
}

func TestRemoteLoaderReset(t *testing.T) {
	svc := &fakeService{total: 15, pageSize: 10, reportLimit: true}
	l := attribs.NewRemoteLoader(context.Background(), svc, details(true))

	first := l.Attributes()
	wait(t, first)

	l.Reset()
	if l.LoadedCount() != 0 || l.Done() {
		t.Errorf("expected counters cleared, got %v %v", l.LoadedCount(), l.Done())
	}

	second := l.Attributes()
	if second == first {
		t.Fatal("expected a fresh result after reset")
	}
	if set := wait(t, second); set.Len() != 15 {
		t.Errorf("records, expected 15 got %v", set.Len())
	}
	if got := len(svc.requests()); got != 4 {
		t.Errorf("requests, expected two paginations of 2 got %v", got)
	}
}

func TestRemoteLoaderAbort(t *testing.T) {
	svc := &fakeService{total: 35, pageSize: 10, reportLimit: true}
	l := attribs.NewRemoteLoader(context.Background(), svc, details(true))
	svc.onQuery = func(n int) {
		if n == 1 {
			l.Abort()
		}
	}

	set := wait(t, l.Attributes())
	if set.Len() != 10 {
		t.Errorf("records, expected the first page of 10 got %v", set.Len())
	}
	if !l.Done() {
		t.Error("expected an aborted load to be done")
	}

	// reset clears the abort for the next cycle
	svc.onQuery = nil
	l.Reset()
	if set := wait(t, l.Attributes()); set.Len() != 35 {
		t.Errorf("records, expected 35 after reset got %v", set.Len())
	}
}

func TestRemoteLoaderOutFields(t *testing.T) {
	d := details(true)
	d.OutFields = "NAME"
	l := attribs.NewRemoteLoader(context.Background(), &fakeService{}, d)
	if got := l.Details().OutFields; got != "NAME,OBJECTID" {
		t.Errorf("out fields, expected NAME,OBJECTID got %v", got)
	}
}

func TestResultWaitContext(t *testing.T) {
	svc := &fakeService{total: 5, pageSize: 10, gate: make(chan struct{})}
	defer close(svc.gate)
	l := attribs.NewRemoteLoader(context.Background(), svc, details(false))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Attributes().Wait(ctx); err != context.Canceled {
		t.Errorf("expected context.Canceled got %v", err)
	}
}

func TestLocalLoader(t *testing.T) {
	features := []provider.Feature{
		{ID: 1, Geometry: geom.Point{1, 1}, Tags: map[string]interface{}{"name": "a"}},
		{ID: 2, Geometry: geom.Point{2, 2}, Tags: map[string]interface{}{"name": "b", "fid": int64(20)}},
	}
	l := attribs.NewLocalLoader("fid", features)

	res := l.Attributes()
	select {
	case <-res.Done():
	default:
		t.Fatal("expected a local load to resolve immediately")
	}
	if l.Attributes() != res {
		t.Error("expected the cached result to be returned")
	}

	set := wait(t, res)
	expected := []attribs.Attributes{
		{"name": "a", "fid": int64(1)},
		{"name": "b", "fid": int64(20)},
	}
	if diff := deep.Equal(set.Features, expected); diff != nil {
		t.Errorf("features: %v", diff)
	}
	if _, ok := set.Lookup(20); !ok {
		t.Error("expected object id 20 in the index")
	}
	if l.LoadedCount() != 2 || !l.Done() {
		t.Errorf("progress, expected 2 done got %v %v", l.LoadedCount(), l.Done())
	}

	// source tags are not modified
	if _, ok := features[0].Tags["fid"]; ok {
		t.Error("source feature tags were modified")
	}

	l.Reset()
	l.Abort()
	if set := wait(t, l.Attributes()); set.Len() != 0 {
		t.Errorf("expected an aborted local load to be empty, got %v", set.Len())
	}
}

func TestLocalLoaderOverflowID(t *testing.T) {
	features := []provider.Feature{
		{ID: 7, Tags: map[string]interface{}{"name": "a"}},
		{ID: math.MaxUint64, Tags: map[string]interface{}{"name": "b"}},
	}
	set := wait(t, attribs.NewLocalLoader("fid", features).Attributes())

	if _, ok := set.Lookup(7); !ok {
		t.Error("expected object id 7 in the index")
	}
	if _, ok := set.Features[1]["fid"]; ok {
		t.Errorf("expected no object id for an overflowing id, got %v", set.Features[1]["fid"])
	}
	if diff := deep.Equal(set.Unindexed, []int{1}); diff != nil {
		t.Errorf("unindexed: %v", diff)
	}
	if len(set.OIDIndex) != 1 {
		t.Errorf("index, expected 1 entry got %v", len(set.OIDIndex))
	}
}

func TestRemoteLoaderFailureIsDone(t *testing.T) {
	svc := &fakeService{total: 15, pageSize: 10, reportLimit: true, failOn: 2}
	l := attribs.NewRemoteLoader(context.Background(), svc, details(true))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := l.Attributes().Wait(ctx); err == nil {
		t.Fatal("expected the load to fail")
	}
	if !l.Done() {
		t.Error("expected a failed load to be done")
	}
	if l.LoadedCount() != 10 {
		t.Errorf("loaded, expected 10 got %v", l.LoadedCount())
	}
}

func TestLoaderVariants(t *testing.T) {
	var _ attribs.Loader = (*attribs.RemoteLoader)(nil)
	var _ attribs.Loader = (*attribs.LocalLoader)(nil)
}
