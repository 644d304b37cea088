package attribs

import (
	"github.com/atlasdatatech/geolayer/internal/log"
)

// Attributes is a single tabular record keyed by field name.
type Attributes map[string]interface{}

// Set is the full attribute table of a feature class, in object id page order,
// with an index from object id to position.
type Set struct {
	OIDField string
	Features []Attributes
	OIDIndex map[int64]int
	// Unindexed holds the positions of records whose object id was missing,
	// not an integer or a duplicate of an earlier record.
	Unindexed []int
}

// NewSet wraps features and builds the object id index.
func NewSet(oidField string, features []Attributes) *Set {
	s := &Set{
		OIDField: oidField,
		Features: features,
		OIDIndex: make(map[int64]int, len(features)),
	}
	if s.Features == nil {
		s.Features = []Attributes{}
	}

	for i, f := range features {
		oid, err := ConvertObjectID(f[oidField])
		if err != nil {
			s.Unindexed = append(s.Unindexed, i)
			continue
		}
		if _, dup := s.OIDIndex[oid]; dup {
			s.Unindexed = append(s.Unindexed, i)
			continue
		}
		s.OIDIndex[oid] = i
	}

	if len(s.Unindexed) > 0 {
		log.Warnf("attribs: %v of %v records could not be indexed by %q", len(s.Unindexed), len(features), oidField)
	}
	return s
}

// Len is the number of records.
func (s *Set) Len() int { return len(s.Features) }

// Lookup returns the record with the given object id.
func (s *Set) Lookup(oid int64) (Attributes, bool) {
	i, ok := s.OIDIndex[oid]
	if !ok {
		return nil, false
	}
	return s.Features[i], true
}
