package result

// TrackedBattles returns the number of battle ids held for duplicate suppression.
func (r *Reporter) TrackedBattles() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reported)
}
