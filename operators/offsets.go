package operators

import (
	"fmt"
)

// Offsets partitions a flat vector space into contiguous blocks:
// block i spans [Offsets[i], Offsets[i+1]). Offsets[0] is always zero and
// entries are non-decreasing.
type Offsets []int

func (o Offsets) NumBlocks() int { return len(o) - 1 }

func (o Offsets) Last() int {
	if len(o) == 0 {
		return 0
	}
	return o[len(o)-1]
}

// Block returns the half-open range of block i.
func (o Offsets) Block(i int) (lo, hi int) {
	return o[i], o[i+1]
}

func (o Offsets) BlockSize(i int) int {
	return o[i+1] - o[i]
}

func (o Offsets) Check() (err error) {
	if len(o) < 1 {
		return fmt.Errorf("offsets must have at least one entry")
	}
	if o[0] != 0 {
		return fmt.Errorf("offsets must start at zero, got %d", o[0])
	}
	for i := 1; i < len(o); i++ {
		if o[i] < o[i-1] {
			return fmt.Errorf("offsets must be non-decreasing: offsets[%d]=%d < offsets[%d]=%d",
				i, o[i], i-1, o[i-1])
		}
	}
	return
}

// OffsetsBuilder accumulates block sizes and produces the prefix-sum offset
// array, replacing hand-maintained running totals during block layout.
type OffsetsBuilder struct {
	sizes []int
}

func NewOffsetsBuilder() *OffsetsBuilder { return &OffsetsBuilder{} }

func (b *OffsetsBuilder) Append(size int) *OffsetsBuilder {
	if size < 0 {
		panic(fmt.Errorf("block size must be non-negative, got %d", size))
	}
	b.sizes = append(b.sizes, size)
	return b
}

// AppendTo grows the most recently appended block. Used where a logical
// block aggregates several trace spaces.
func (b *OffsetsBuilder) AppendTo(size int) *OffsetsBuilder {
	if len(b.sizes) == 0 {
		return b.Append(size)
	}
	b.sizes[len(b.sizes)-1] += size
	return b
}

func (b *OffsetsBuilder) Build() (o Offsets) {
	o = make(Offsets, len(b.sizes)+1)
	for i, size := range b.sizes {
		o[i+1] = o[i] + size
	}
	return
}
