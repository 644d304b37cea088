package attribs

import (
	"github.com/atlasdatatech/geolayer/provider"
)

// LocalLoader serves the attributes of features already held in memory, such as
// those read from a file source. Its result is resolved before Attributes returns.
type LocalLoader struct {
	cycle

	oidField string
	features []provider.Feature
}

// NewLocalLoader returns a loader over features. Each feature's ID is exposed
// under oidField unless its tags already carry that field. An ID that does not
// fit an int64 is left out, so the record ends up unindexed.
func NewLocalLoader(oidField string, features []provider.Feature) *LocalLoader {
	return &LocalLoader{
		oidField: oidField,
		features: features,
	}
}

func (l *LocalLoader) Attributes() *Result {
	return l.get(func(tok *Token, prog *Progress, res *Result) {
		var records []Attributes
		if !tok.Aborted() {
			records = make([]Attributes, 0, len(l.features))
			for i := range l.features {
				f := &l.features[i]
				a := make(Attributes, len(f.Tags)+1)
				for k, v := range f.Tags {
					a[k] = v
				}
				if _, ok := a[l.oidField]; !ok {
					// ids past MaxInt64 stay out of the index
					if oid, err := ConvertObjectID(f.ID); err == nil {
						a[l.oidField] = oid
					}
				}
				records = append(records, a)
			}
			prog.add(len(records))
		}
		prog.finish()
		res.resolve(NewSet(l.oidField, records), nil)
	})
}
