package attribs

import (
	"context"
	"fmt"
	"strings"

	"github.com/atlasdatatech/geolayer/arcgis"
	"github.com/atlasdatatech/geolayer/internal/log"
)

// limitVersion is the first server version that reports exceededTransferLimit.
const limitVersion = 10.1

// SupportsLimit reports whether a server of the given version flags truncated pages.
func SupportsLimit(currentVersion float64) bool {
	return currentVersion >= limitVersion
}

// Querier runs a single tabular query. *arcgis.Client satisfies it.
type Querier interface {
	Query(ctx context.Context, serviceURL string, q arcgis.Query) (*arcgis.FeatureSet, error)
}

// Details describes what a remote fetch reads.
type Details struct {
	// URL is the sublayer endpoint; pages are read from <URL>/query.
	URL       string
	OIDField  string
	OutFields string
	// SupportsLimit selects the exceededTransferLimit termination rule over the
	// batch size heuristic.
	SupportsLimit bool
}

// Cursor is the pagination position of one fetch.
type Cursor struct {
	// MaxObjectID is the exclusive lower bound of the next page, -1 for none.
	MaxObjectID int64
	// BatchSize is the length of the first page, -1 until it is known.
	// Only used when the server does not report exceededTransferLimit.
	BatchSize int
}

// NewCursor returns a cursor positioned before the first record.
func NewCursor() Cursor {
	return Cursor{MaxObjectID: -1, BatchSize: -1}
}

// Where is the predicate selecting the page after the cursor.
func (c Cursor) Where(oidField string) string {
	return fmt.Sprintf("%v>%d", oidField, c.MaxObjectID)
}

// next decides whether another page is needed after one of length n.
func (c *Cursor) next(d Details, page *arcgis.FeatureSet) bool {
	if d.SupportsLimit {
		return page.ExceededTransferLimit
	}
	n := len(page.Features)
	if c.BatchSize == -1 {
		c.BatchSize = n
	}
	// a full page means there may be more
	return n >= c.BatchSize
}

// Fetch reads every record of the sublayer in d, one page at a time, ordered by
// object id. tok is checked before each page request; once aborted, the records
// gathered so far are returned without error. Any failed request fails the
// whole fetch with ErrAttributeFetch. prog may be nil.
func Fetch(ctx context.Context, q Querier, d Details, tok *Token, prog *Progress) (*Set, error) {
	if prog == nil {
		prog = &Progress{}
	}

	records, err := fetchPages(ctx, q, d, NewCursor(), tok, prog)
	prog.finish()
	if err != nil {
		counterFetchErrors.Inc()
		return nil, ErrAttributeFetch{URL: d.URL, Err: err}
	}
	return NewSet(d.OIDField, records), nil
}

func fetchPages(ctx context.Context, q Querier, d Details, cur Cursor, tok *Token, prog *Progress) ([]Attributes, error) {
	var records []Attributes

	for {
		if tok.Aborted() {
			counterAborts.Inc()
			log.Debugf("attribs: load of %v aborted after %v records", d.URL, len(records))
			return records, nil
		}

		page, err := q.Query(ctx, d.URL, arcgis.Query{
			Where:     cur.Where(d.OIDField),
			OutFields: d.OutFields,
		})
		if err != nil {
			return nil, err
		}

		n := len(page.Features)
		if n == 0 {
			return records, nil
		}

		counterPages.Inc()
		counterRecords.Add(float64(n))
		prog.add(n)

		for _, f := range page.Features {
			records = append(records, Attributes(f.Attributes))
		}

		if !cur.next(d, page) {
			return records, nil
		}

		last, err := ConvertObjectID(page.Features[n-1].Attributes[d.OIDField])
		if err != nil {
			return nil, err
		}
		if last <= cur.MaxObjectID {
			return nil, ErrCursorStalled{MaxObjectID: cur.MaxObjectID, LastID: last}
		}
		cur.MaxObjectID = last

		log.Debugf("attribs: %v loaded %v records, continuing after %v", d.URL, prog.Loaded(), last)
	}
}

// NormalizeOutFields makes sure a field list names the object id field.
func NormalizeOutFields(outFields, oidField string) string {
	outFields = strings.TrimSpace(outFields)
	if outFields == "" || outFields == "*" {
		return "*"
	}

	fields := strings.Split(outFields, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
		if fields[i] == oidField {
			return strings.Join(fields, ",")
		}
	}
	return strings.Join(append(fields, oidField), ",")
}
