package listview

// EmptyStates holds the copy for the two reasons a list can be empty: nothing
// exists yet, or nothing matches the current search and filters.
type EmptyStates struct {
	Initial  EmptyState
	Filtered EmptyState
}

// For selects the empty state matching q.
func (e EmptyStates) For(s Schema, q QueryState) *EmptyState {
	if s.IsFiltered(q) {
		es := e.Filtered
		return &es
	}
	es := e.Initial
	return &es
}
