package bitmap

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// SlotSet is a set of query-index slot numbers backed by a 32-bit
// Roaring Bitmap. It wraps the official roaring implementation.
type SlotSet struct {
	rb *roaring.Bitmap
}

// New creates a new empty slot set.
func New() *SlotSet {
	return &SlotSet{
		rb: roaring.New(),
	}
}

// Add adds a slot to the set.
func (s *SlotSet) Add(slot uint32) {
	s.rb.Add(slot)
}

// Contains checks if a slot is in the set.
func (s *SlotSet) Contains(slot uint32) bool {
	return s.rb.Contains(slot)
}

// IsEmpty returns true if the set is empty.
func (s *SlotSet) IsEmpty() bool {
	return s.rb.IsEmpty()
}

// Cardinality returns the number of slots in the set.
func (s *SlotSet) Cardinality() uint64 {
	return s.rb.GetCardinality()
}

// Clone returns a deep copy of the set.
func (s *SlotSet) Clone() *SlotSet {
	return &SlotSet{
		rb: s.rb.Clone(),
	}
}

// AndNot removes every slot present in other.
func (s *SlotSet) AndNot(other *SlotSet) {
	s.rb.AndNot(other.rb)
}

// Clear removes all slots from the set.
func (s *SlotSet) Clear() {
	s.rb.Clear()
}

// Iterator returns an iterator over the set in ascending order.
func (s *SlotSet) Iterator() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		it := s.rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}
