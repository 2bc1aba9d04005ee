package migration

// InstanceIDs hands out per-key generation counters. The first allocation for
// a key returns 0 and every later one returns the previous value plus one.
//
// The zero value is ready to use. InstanceIDs is not safe for concurrent use.
type InstanceIDs struct {
	counts map[string]int
}

// Next allocates the next instance id for key.
func (a *InstanceIDs) Next(key string) int {
	if a.counts == nil {
		a.counts = make(map[string]int)
	}
	n, seen := a.counts[key]
	if seen {
		n++
	}
	a.counts[key] = n
	return n
}

// Current returns the last id allocated for key and whether one exists.
func (a *InstanceIDs) Current(key string) (int, bool) {
	n, ok := a.counts[key]
	return n, ok
}
