package operators

import (
	"fmt"
)

type blockEntry struct {
	op   Operator
	coef float64
}

// BlockOperator dispatches to sub-operators registered at block coordinates
// of a row/column offset partition. Blocks are stored sparsely, keyed on the
// block coordinate; absent blocks act as zero.
type BlockOperator struct {
	RowOffsets, ColOffsets Offsets

	blocks map[[2]int]blockEntry
	work   []float64
}

func NewBlockOperator(rowOffsets, colOffsets Offsets) (b *BlockOperator) {
	if err := rowOffsets.Check(); err != nil {
		panic(fmt.Errorf("row offsets: %w", err))
	}
	if err := colOffsets.Check(); err != nil {
		panic(fmt.Errorf("col offsets: %w", err))
	}
	maxDim := rowOffsets.Last()
	if colOffsets.Last() > maxDim {
		maxDim = colOffsets.Last()
	}
	b = &BlockOperator{
		RowOffsets: rowOffsets,
		ColOffsets: colOffsets,
		blocks:     make(map[[2]int]blockEntry),
		work:       make([]float64, maxDim),
	}
	return
}

// NewSquareBlockOperator uses the same offsets for rows and columns.
func NewSquareBlockOperator(offsets Offsets) *BlockOperator {
	return NewBlockOperator(offsets, offsets)
}

func (b *BlockOperator) Height() int { return b.RowOffsets.Last() }
func (b *BlockOperator) Width() int  { return b.ColOffsets.Last() }

// SetBlock registers op (scaled by the optional coefficient) at block
// coordinate (i, j). The operator's dimensions must match the block.
func (b *BlockOperator) SetBlock(i, j int, op Operator, coefO ...float64) {
	if i < 0 || i >= b.RowOffsets.NumBlocks() || j < 0 || j >= b.ColOffsets.NumBlocks() {
		panic(fmt.Errorf("block coordinate (%d,%d) outside %dx%d block structure",
			i, j, b.RowOffsets.NumBlocks(), b.ColOffsets.NumBlocks()))
	}
	if op.Height() != b.RowOffsets.BlockSize(i) || op.Width() != b.ColOffsets.BlockSize(j) {
		panic(fmt.Errorf("block (%d,%d) expects a %dx%d operator, got %dx%d",
			i, j, b.RowOffsets.BlockSize(i), b.ColOffsets.BlockSize(j), op.Height(), op.Width()))
	}
	coef := 1.0
	if len(coefO) != 0 {
		coef = coefO[0]
	}
	b.blocks[[2]int{i, j}] = blockEntry{op: op, coef: coef}
}

func (b *BlockOperator) GetBlock(i, j int) (op Operator, ok bool) {
	entry, ok := b.blocks[[2]int{i, j}]
	return entry.op, ok
}

func (b *BlockOperator) Mult(x, y []float64) {
	checkMult(b, x, y)
	for i := range y {
		y[i] = 0
	}
	for key, entry := range b.blocks {
		i, j := key[0], key[1]
		rlo, rhi := b.RowOffsets.Block(i)
		clo, chi := b.ColOffsets.Block(j)
		w := b.work[:rhi-rlo]
		entry.op.Mult(x[clo:chi], w)
		yb := y[rlo:rhi]
		for k, val := range w {
			yb[k] += entry.coef * val
		}
	}
}

func (b *BlockOperator) MultTranspose(x, y []float64) {
	checkMultTranspose(b, x, y)
	for i := range y {
		y[i] = 0
	}
	for key, entry := range b.blocks {
		i, j := key[0], key[1]
		rlo, rhi := b.RowOffsets.Block(i)
		clo, chi := b.ColOffsets.Block(j)
		w := b.work[:chi-clo]
		entry.op.MultTranspose(x[rlo:rhi], w)
		yb := y[clo:chi]
		for k, val := range w {
			yb[k] += entry.coef * val
		}
	}
}

// BlockDiagonal applies one operator per diagonal block, the preconditioner
// counterpart of BlockOperator.
type BlockDiagonal struct {
	Offsets Offsets

	diag []Operator
}

func NewBlockDiagonal(offsets Offsets) (b *BlockDiagonal) {
	if err := offsets.Check(); err != nil {
		panic(fmt.Errorf("diagonal offsets: %w", err))
	}
	b = &BlockDiagonal{
		Offsets: offsets,
		diag:    make([]Operator, offsets.NumBlocks()),
	}
	return
}

func (b *BlockDiagonal) Height() int { return b.Offsets.Last() }
func (b *BlockDiagonal) Width() int  { return b.Offsets.Last() }

func (b *BlockDiagonal) SetDiagonalBlock(i int, op Operator) {
	if op.Height() != b.Offsets.BlockSize(i) || op.Width() != b.Offsets.BlockSize(i) {
		panic(fmt.Errorf("diagonal block %d expects a square %d operator, got %dx%d",
			i, b.Offsets.BlockSize(i), op.Height(), op.Width()))
	}
	b.diag[i] = op
}

func (b *BlockDiagonal) Mult(x, y []float64) {
	checkMult(b, x, y)
	for i, op := range b.diag {
		lo, hi := b.Offsets.Block(i)
		if op == nil {
			copy(y[lo:hi], x[lo:hi])
			continue
		}
		op.Mult(x[lo:hi], y[lo:hi])
	}
}

func (b *BlockDiagonal) MultTranspose(x, y []float64) {
	checkMultTranspose(b, x, y)
	for i, op := range b.diag {
		lo, hi := b.Offsets.Block(i)
		if op == nil {
			copy(y[lo:hi], x[lo:hi])
			continue
		}
		op.MultTranspose(x[lo:hi], y[lo:hi])
	}
}
