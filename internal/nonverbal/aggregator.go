package nonverbal

import "sync"

// Counters maps category -> label -> number of observed transitions into that
// label. Counts are proportional to behavior changes, not frame rate: a label
// is counted only when it differs from the previously recorded label for its
// category.
type Counters map[Category]map[string]int

// NewCounters returns counters with every in-domain label preinitialized to
// zero, so evidence listings always have a defined count per pair.
func NewCounters() Counters {
	c := make(Counters, len(categories))
	for _, cat := range categories {
		labels := make(map[string]int, len(allowed[cat]))
		for _, l := range allowed[cat] {
			labels[l] = 0
		}
		c[cat] = labels
	}
	return c
}

// Get returns the count for a (category, label) pair. Absent pairs are zero.
func (c Counters) Get(cat Category, label string) int {
	return c[cat][label]
}

// Total sums every counter across every category.
func (c Counters) Total() int {
	total := 0
	for _, labels := range c {
		for _, n := range labels {
			total += n
		}
	}
	return total
}

// Snapshot returns a deep copy of the counters.
func (c Counters) Snapshot() Counters {
	out := make(Counters, len(c))
	for cat, labels := range c {
		cp := make(map[string]int, len(labels))
		for l, n := range labels {
			cp[l] = n
		}
		out[cat] = cp
	}
	return out
}

// Aggregator reduces the classified-state event stream into transition
// counters. The reduction itself is pure: no I/O, no clocks, deterministic
// over an ordered input sequence. Calls must arrive in order; the event
// delivery path provides that ordering. The mutex only covers readers on
// other goroutines taking a snapshot mid-session.
type Aggregator struct {
	mu       sync.Mutex
	counters Counters
	last     ClassifiedState
}

// NewAggregator returns an aggregator with zeroed counters and no last-seen
// state.
func NewAggregator() *Aggregator {
	return &Aggregator{counters: NewCounters()}
}

// Record folds one classified state into the counters and returns the
// categories that transitioned (at most one entry per category).
//
// Per category: the counter increments only when the new label differs from
// the last recorded label AND is in the category's domain. Out-of-domain
// labels are never counted, but the full incoming state (unknowns included)
// becomes the last-seen state afterwards, so a label that returns after an
// unknown reading registers as a fresh transition.
func (a *Aggregator) Record(s ClassifiedState) []Category {
	a.mu.Lock()
	defer a.mu.Unlock()

	var transitions []Category
	for _, cat := range categories {
		next := s.Label(cat)
		if next != a.last.Label(cat) && InDomain(cat, next) {
			a.counters[cat][next]++
			transitions = append(transitions, cat)
		}
	}
	a.last = s
	return transitions
}

// Counters exposes the live counters. Single-writer: only Record mutates
// them; readers on other goroutines must use Snapshot instead.
func (a *Aggregator) Counters() Counters {
	return a.counters
}

// Snapshot returns a deep copy of the counters, safe to read while Record
// keeps running.
func (a *Aggregator) Snapshot() Counters {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counters.Snapshot()
}
