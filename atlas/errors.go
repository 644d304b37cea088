package atlas

import (
	"fmt"
	"sort"
	"strings"
)

type ErrLayerNotFound struct {
	ID string
}

func (e ErrLayerNotFound) Error() string {
	return fmt.Sprintf("atlas: layer (%v) not found", e.ID)
}

type ErrDuplicateLayer struct {
	ID string
}

func (e ErrDuplicateLayer) Error() string {
	return fmt.Sprintf("atlas: layer (%v) already registered", e.ID)
}

// ErrLayersFailed lists the records whose engine layer failed to load, by id.
type ErrLayersFailed struct {
	Errs map[string]error
}

func (e ErrLayersFailed) Error() string {
	ids := make([]string, 0, len(e.Errs))
	for id := range e.Errs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	msgs := make([]string, 0, len(ids))
	for _, id := range ids {
		msgs = append(msgs, e.Errs[id].Error())
	}
	return fmt.Sprintf("atlas: %v layer(s) failed: %v", len(ids), strings.Join(msgs, "; "))
}
