package images

// UsageCounts is an in-memory Usage backed by a map. Counts only grow.
type UsageCounts map[string]int

// Count implements Usage.
func (u UsageCounts) Count(id string) int {
	return u[id]
}

// Increment implements Usage. The default image is never tracked.
func (u UsageCounts) Increment(id string) {
	if id == "" || id == defaultID {
		return
	}
	u[id]++
}
