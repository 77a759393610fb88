package diag

// DedupReporter forwards each distinct diagnostic once. Diagnostics are
// compared as whole values. Not safe for concurrent use.
type DedupReporter struct {
	next Reporter
	seen map[Diagnostic]struct{}
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[Diagnostic]struct{})}
}

func (r *DedupReporter) Report(d Diagnostic) {
	if r == nil {
		return
	}
	if _, dup := r.seen[d]; dup {
		return
	}
	r.seen[d] = struct{}{}
	if r.next != nil {
		r.next.Report(d)
	}
}

// Forget starts a new build: everything may be reported again.
func (r *DedupReporter) Forget() {
	if r != nil {
		clear(r.seen)
	}
}
