package attribs_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/atlasdatatech/geolayer/arcgis"
)

// fakeService serves records with object ids 1..total in pages of pageSize.
type fakeService struct {
	total    int
	pageSize int
	// reportLimit sets exceededTransferLimit on truncated pages.
	reportLimit bool
	// ignoreWhere always answers with the first page.
	ignoreWhere bool
	// failOn fails the nth (1 based) request.
	failOn int
	// onQuery runs before the nth request is answered.
	onQuery func(n int)
	// gate, when set, blocks every request until it is closed.
	gate chan struct{}

	mu     sync.Mutex
	wheres []string
}

func (f *fakeService) Query(ctx context.Context, serviceURL string, q arcgis.Query) (*arcgis.FeatureSet, error) {
	f.mu.Lock()
	f.wheres = append(f.wheres, q.Where)
	n := len(f.wheres)
	f.mu.Unlock()

	if f.gate != nil {
		<-f.gate
	}
	if f.onQuery != nil {
		f.onQuery(n)
	}
	if f.failOn == n {
		return nil, errors.New("connection reset")
	}

	parts := strings.SplitN(q.Where, ">", 2)
	if len(parts) != 2 || parts[0] != "OBJECTID" {
		return nil, fmt.Errorf("unexpected where %q", q.Where)
	}
	after, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, err
	}
	if f.ignoreWhere {
		after = -1
	}

	fs := &arcgis.FeatureSet{Features: []arcgis.Feature{}}
	for oid := after + 1; oid <= int64(f.total); oid++ {
		if oid < 1 {
			continue
		}
		if len(fs.Features) == f.pageSize {
			fs.ExceededTransferLimit = f.reportLimit
			break
		}
		fs.Features = append(fs.Features, arcgis.Feature{Attributes: map[string]interface{}{
			"OBJECTID": json.Number(strconv.FormatInt(oid, 10)),
			"NAME":     fmt.Sprintf("feature %v", oid),
		}})
	}
	return fs, nil
}

func (f *fakeService) requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.wheres...)
}
