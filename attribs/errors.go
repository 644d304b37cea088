package attribs

import "fmt"

// ErrAttributeFetch is returned when any page request of a fetch fails.
// No partial result accompanies it.
type ErrAttributeFetch struct {
	URL string
	Err error
}

func (e ErrAttributeFetch) Error() string {
	return fmt.Sprintf("attribs: loading attributes from %v: %v", e.URL, e.Err)
}

func (e ErrAttributeFetch) Unwrap() error { return e.Err }

// ErrCursorStalled is returned when a page does not move the object id cursor forward,
// which happens when a server ignores the where clause.
type ErrCursorStalled struct {
	MaxObjectID int64
	LastID      int64
}

func (e ErrCursorStalled) Error() string {
	return fmt.Sprintf("attribs: page ended at object id %v which is not past the cursor %v", e.LastID, e.MaxObjectID)
}
