// Package nulls wraps the roaring bitmap library to track which
// rows of a column hold missing values.
package nulls

import (
	"github.com/RoaringBitmap/roaring"
)

// Nulls records the set of missing rows within a single column.
// The zero-size bitmap is allocated lazily.
type Nulls struct {
	bm *roaring.Bitmap
}

// New creates an empty null set
func New() *Nulls {
	return &Nulls{}
}

// Build creates a null set containing the given rows
func Build(rows ...int) *Nulls {
	n := New()
	for _, row := range rows {
		n.Add(row)
	}
	return n
}

// Clone returns a copy of this null set
func (n *Nulls) Clone() *Nulls {
	if n == nil || n.bm == nil {
		return New()
	}
	return &Nulls{bm: n.bm.Clone()}
}

// Add marks a row missing
func (n *Nulls) Add(row int) {
	if n.bm == nil {
		n.bm = roaring.New()
	}
	n.bm.Add(uint32(row))
}

// Del marks a row present
func (n *Nulls) Del(row int) {
	if n.bm == nil {
		return
	}
	n.bm.Remove(uint32(row))
}

// Contains returns true iff a row is missing
func (n *Nulls) Contains(row int) bool {
	return n != nil && n.bm != nil && n.bm.Contains(uint32(row))
}

// Any returns true iff at least one row is missing
func (n *Nulls) Any() bool {
	return n != nil && n.bm != nil && !n.bm.IsEmpty()
}

// Count returns the number of missing rows
func (n *Nulls) Count() int {
	if n == nil || n.bm == nil {
		return 0
	}
	return int(n.bm.GetCardinality())
}

// Project builds the null set of a projection: for each position in
// rows, the result is missing iff the source row was missing.
func (n *Nulls) Project(rows []int) *Nulls {
	out := New()
	if n == nil || n.bm == nil {
		return out
	}
	for i, row := range rows {
		if n.bm.Contains(uint32(row)) {
			out.Add(i)
		}
	}
	return out
}
