package indicator

import (
	"errors"
	"time"

	"go.uber.org/atomic"
)

// Point represents a unit indicator reading for an instrument.
type Point struct {
	Value float64
	Date  time.Time
}

// Snapshot represents a bounded window of indicator readings.
type Snapshot struct {
	data  []*Point
	start atomic.Int32
	count atomic.Int32
	size  atomic.Int32
}

// NewSnapshot initializes a new indicator snapshot.
func NewSnapshot(size int32) (*Snapshot, error) {
	if size < 0 {
		return nil, errors.New("snapshot size cannot be negative")
	}
	if size == 0 {
		return nil, errors.New("snapshot size cannot be zero")
	}

	snapshot := &Snapshot{
		data: make([]*Point, size),
	}
	snapshot.size.Store(size)

	return snapshot, nil
}

// Update adds the provided point to the snapshot.
func (s *Snapshot) Update(point *Point) {
	start := s.start.Load()
	count := s.count.Load()
	size := s.size.Load()
	end := (start + count) % size
	s.data[end] = point

	if count == size {
		// Overwrite the oldest entry when the snapshot is at capacity.
		s.start.Store((start + 1) % size)
	} else {
		s.count.Add(1)
	}
}

// Last returns the last added entry for the snapshot.
func (s *Snapshot) Last() *Point {
	start := s.start.Load()
	count := s.count.Load()
	size := s.size.Load()
	if count == 0 {
		return nil
	}

	end := (start + count - 1) % size
	return s.data[end]
}

// LastN fetches the last n number of elements from the snapshot.
func (s *Snapshot) LastN(n int32) []*Point {
	if n <= 0 {
		return nil
	}

	start := s.start.Load()
	count := s.count.Load()
	size := s.size.Load()

	// Clamp the number of elements expected if it is greater than the snapshot count.
	if n > count {
		n = count
	}

	set := make([]*Point, n)
	start = (start + count - n + size) % size

	for i := range n {
		idx := (start + i) % size
		set[i] = s.data[idx]
	}

	return set
}
