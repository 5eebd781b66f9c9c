package core

// AutoIncrementID issues monotonic pair-scoped ids starting from a seed.
// Seeding lets a pair continue its numbering after a migration. It is not
// safe for concurrent use; the owning Pair serializes access.
type AutoIncrementID struct {
	initial int64
	count   int64
}

// NewAutoIncrementID creates an id source seeded at initial
func NewAutoIncrementID(initial int64) *AutoIncrementID {
	return &AutoIncrementID{initial: initial}
}

// Next issues and returns the next id
func (a *AutoIncrementID) Next() int64 {
	id := a.initial + a.count
	a.count++
	return id
}

// Current returns the id that Next would issue, without advancing
func (a *AutoIncrementID) Current() int64 {
	return a.initial + a.count
}

// Initial returns the seed
func (a *AutoIncrementID) Initial() int64 {
	return a.initial
}

// Count returns how many ids have been issued
func (a *AutoIncrementID) Count() int64 {
	return a.count
}

// Exists reports whether id has been issued. Ids below the seed are never
// considered issued.
func (a *AutoIncrementID) Exists(id int64) bool {
	return id >= a.initial && id < a.Current()
}
