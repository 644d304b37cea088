package attribs

import "context"

// RemoteLoader pages a sublayer's records out of a map or feature service.
type RemoteLoader struct {
	cycle

	ctx     context.Context
	querier Querier
	details Details
}

// NewRemoteLoader returns a loader for the sublayer in d. ctx bounds every load
// the loader runs; it is not tied to any single caller of Attributes.
func NewRemoteLoader(ctx context.Context, q Querier, d Details) *RemoteLoader {
	d.OutFields = NormalizeOutFields(d.OutFields, d.OIDField)
	return &RemoteLoader{
		ctx:     ctx,
		querier: q,
		details: d,
	}
}

// Details returns what the loader fetches.
func (l *RemoteLoader) Details() Details { return l.details }

func (l *RemoteLoader) Attributes() *Result {
	return l.get(func(tok *Token, prog *Progress, res *Result) {
		go func() {
			res.resolve(Fetch(l.ctx, l.querier, l.details, tok, prog))
		}()
	})
}
