package densityfield

// Cell is a value paired with a generation counter. Consumers remember the
// version they last observed and use ChangedSince to decide whether a
// dependent resource (a GPU uniform, a cached boundary) needs refreshing.
//
// A freshly constructed Cell has version 1 so that a consumer starting from
// version 0 always observes the initial value as a change.
//
// Cell is not synchronized; callers that share a Cell across goroutines must
// serialize access, matching the single-flight discipline of the density
// pipeline.
type Cell[T any] struct {
	value   T
	version uint64
}

// NewCell creates a cell holding the given initial value.
func NewCell[T any](value T) *Cell[T] {
	return &Cell[T]{value: value, version: 1}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	return c.value
}

// Set stores a new value and advances the version.
func (c *Cell[T]) Set(value T) {
	c.value = value
	c.version++
}

// Version returns the current generation counter.
func (c *Cell[T]) Version() uint64 {
	return c.version
}

// ChangedSince reports whether the cell was written after the given version.
func (c *Cell[T]) ChangedSince(version uint64) bool {
	return c.version != version
}
