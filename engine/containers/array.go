package containers

// DefaultArrayCapacity is the capacity an Array initializes to when grown
// from empty or created without an explicit reservation.
const DefaultArrayCapacity = 4

// Array is a growable array with an explicit doubling policy. Growth never
// moves previously pushed elements relative to their index, so an index
// obtained from Push stays valid for the lifetime of the array.
//
// The doubling policy is an invariant, not an implementation detail: resource
// containers rely on "reuse before grow" scans over the populated prefix and
// on capacity doubling exactly once per overflow.
type Array[T any] struct {
	data []T
	size int
}

// NewArray creates an array with the given reserved capacity. A reservation
// below the default minimum is raised to it.
func NewArray[T any](reserve int) *Array[T] {
	if reserve < DefaultArrayCapacity {
		reserve = DefaultArrayCapacity
	}
	return &Array[T]{
		data: make([]T, reserve),
	}
}

// Push appends a value, doubling capacity when full, and returns its index.
func (a *Array[T]) Push(value T) int {
	if a.size == len(a.data) {
		a.grow()
	}
	a.data[a.size] = value
	a.size++
	return a.size - 1
}

// Get returns the element at index i. Panics on out-of-range, matching the
// behavior of a raw slice index.
func (a *Array[T]) Get(i int) T {
	if i >= a.size {
		panic("containers: array index out of range")
	}
	return a.data[i]
}

// Set replaces the element at index i.
func (a *Array[T]) Set(i int, value T) {
	if i >= a.size {
		panic("containers: array index out of range")
	}
	a.data[i] = value
}

// Len returns the number of pushed elements.
func (a *Array[T]) Len() int {
	return a.size
}

// Cap returns the current capacity.
func (a *Array[T]) Cap() int {
	return len(a.data)
}

func (a *Array[T]) grow() {
	capacity := len(a.data) * 2
	if capacity == 0 {
		capacity = DefaultArrayCapacity
	}
	data := make([]T, capacity)
	copy(data, a.data)
	a.data = data
}
