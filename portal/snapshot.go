package portal

// =============================================================================
// SNAPSHOT - Consistent view of all six slices
// =============================================================================

// Snapshot bundles the current value of every slice. The contained maps
// and lists are the live copy-on-write values: they are never mutated
// after being published, so a snapshot stays internally consistent for
// as long as a consumer holds it.
//
// Snapshots are memoized per generation. Consumers must not compare
// snapshot identity to decide staleness; the memoization is an
// efficiency property, not a contract.
type Snapshot struct {
	Generation uint64

	ProjectStatuses map[string]ProjectStatus
	ProjectEdits    map[string]ProjectEdits
	Invoices        []Invoice
	InvoiceStatuses map[string]InvoiceStatus
	Notes           []Note
	Activity        []ActivityEvent
}

// Snapshot returns the current snapshot, rebuilding it only when a
// slice changed since the last call.
func (s *Session) Snapshot() *Snapshot {
	s.mu.RLock()
	if s.snap != nil && s.snap.Generation == s.gen {
		snap := s.snap
		s.mu.RUnlock()
		return snap
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap != nil && s.snap.Generation == s.gen {
		return s.snap
	}
	s.snap = &Snapshot{
		Generation:      s.gen,
		ProjectStatuses: s.statuses,
		ProjectEdits:    s.edits,
		Invoices:        s.invoices,
		InvoiceStatuses: s.invoiceStatuses,
		Notes:           s.notes,
		Activity:        s.activity,
	}
	return s.snap
}

// Subscribe returns a channel that receives a (coalesced) signal after
// every committed mutation, plus a cancel function that detaches the
// subscription. The channel is buffered; a slow consumer misses
// intermediate signals, never the latest state.
func (s *Session) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
	return ch, cancel
}

// commitLocked finishes a mutation: bump the generation (invalidating
// the memoized snapshot) and signal subscribers. Callers hold the write
// lock.
func (s *Session) commitLocked() {
	s.gen++
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
