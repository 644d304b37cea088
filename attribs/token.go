package attribs

import "sync/atomic"

// Token is a cooperative abort flag for one load cycle. A fetch checks it before
// issuing each page request; a request already in flight is never interrupted.
type Token struct {
	aborted atomic.Bool
}

// Abort asks the owning fetch to stop before its next page.
func (t *Token) Abort() {
	if t == nil {
		return
	}
	t.aborted.Store(true)
}

// Aborted reports whether Abort was called.
func (t *Token) Aborted() bool {
	if t == nil {
		return false
	}
	return t.aborted.Load()
}

// Progress counts the records delivered by one load cycle.
type Progress struct {
	loaded atomic.Int64
	done   atomic.Bool
}

func (p *Progress) add(n int) { p.loaded.Add(int64(n)) }

func (p *Progress) finish() { p.done.Store(true) }

// Loaded is the number of records received so far.
func (p *Progress) Loaded() int { return int(p.loaded.Load()) }

// Done reports whether the cycle has ended, whether it completed, failed or was aborted.
func (p *Progress) Done() bool { return p.done.Load() }
