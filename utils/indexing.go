package utils

import (
	"fmt"
	"sort"
)

type Index []int

func NewIndex(N int) (I Index) {
	return make(Index, N)
}

func NewRange(rmin, rmax int) (r Index) {
	var (
		size = rmax - rmin + 1 // INCLUSIVE RANGE
	)
	r = make(Index, size)
	for i := range r {
		r[i] = i + rmin
	}
	return
}

func (I Index) Add(val int) (r Index) {
	r = make(Index, len(I))
	for i, ival := range I {
		r[i] = val + ival
	}
	return r
}

func (I Index) Copy() (r Index) {
	r = make(Index, len(I))
	copy(r, I)
	return
}

func (I Index) Contains(val int) bool {
	for _, ival := range I {
		if ival == val {
			return true
		}
	}
	return false
}

// Sorted returns an ascending copy with duplicates removed, used to
// canonicalize DOF and face sets so iteration order is stable.
func (I Index) Sorted() (r Index) {
	r = I.Copy()
	sort.Ints(r)
	n := 0
	for i, val := range r {
		if i == 0 || val != r[n-1] {
			r[n] = val
			n++
		}
	}
	return r[:n]
}

// PositionOf returns the ordinal of val within the index set, or -1.
func (I Index) PositionOf(val int) (pos int) {
	for i, ival := range I {
		if ival == val {
			return i
		}
	}
	return -1
}

func (I Index) Validate(min, max int) (err error) {
	for i, val := range I {
		if val < min || val >= max {
			err = fmt.Errorf("index entry %d out of range: %d not in [%d,%d)", i, val, min, max)
			return
		}
	}
	return
}
