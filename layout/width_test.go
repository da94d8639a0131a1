package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sumWidths(cols []Column) float64 {
	s := 0.0
	for _, c := range cols {
		s += c.WrappedWidth
	}
	return s
}

func TestAllocateWidthsFixedAndWrap(t *testing.T) {
	cols := []Column{
		{Index: 0, Width: FixedWidth(20)},
		{Index: 1, Width: WrapWidth(), ContentWidth: 15},
		{Index: 2, Width: FixedWidth(5), MinWidth: 8},
	}
	alloc := AllocateWidths(cols, 100)
	assert.InDelta(t, 20, cols[0].WrappedWidth, 1e-9)
	assert.InDelta(t, 15, cols[1].WrappedWidth, 1e-9)
	assert.InDelta(t, 8, cols[2].WrappedWidth, 1e-9, "固定宽度不小于最小宽度")
	assert.InDelta(t, 43, alloc.Sum, 1e-9, "只有固定与 wrap 列时总宽可以小于可用宽度")
	assert.Zero(t, alloc.Overflow)
}

func TestAllocateWidthsAutoFillsTotal(t *testing.T) {
	cols := []Column{
		{Index: 0, Width: FixedWidth(20)},
		{Index: 1, Width: AutoWidth(), ContentWidth: 10},
		{Index: 2, Width: AutoWidth(), ContentWidth: 30},
	}
	AllocateWidths(cols, 100)
	assert.InDelta(t, 100, sumWidths(cols), 1e-9)
	assert.InDelta(t, 20, cols[1].WrappedWidth, 1e-9)
	assert.InDelta(t, 60, cols[2].WrappedWidth, 1e-9)
}

func TestAllocateWidthsMinClamp(t *testing.T) {
	cols := []Column{
		{Index: 0, Width: AutoWidth(), ContentWidth: 1, MinWidth: 30},
		{Index: 1, Width: AutoWidth(), ContentWidth: 99},
	}
	AllocateWidths(cols, 100)
	assert.InDelta(t, 30, cols[0].WrappedWidth, 1e-9)
	assert.InDelta(t, 70, cols[1].WrappedWidth, 1e-9)
	assert.InDelta(t, 100, sumWidths(cols), 1e-9)
}

func TestAllocateWidthsEqualSplitWithoutContent(t *testing.T) {
	cols := []Column{{Index: 0}, {Index: 1}, {Index: 2}, {Index: 3}}
	AllocateWidths(cols, 100)
	for _, c := range cols {
		assert.InDelta(t, 25, c.WrappedWidth, 1e-9)
	}
}

func TestAllocateWidthsNegativeRemaining(t *testing.T) {
	cols := []Column{
		{Index: 0, Width: FixedWidth(90)},
		{Index: 1, Width: AutoWidth(), ContentWidth: 40, MinWidth: 10},
		{Index: 2, Width: AutoWidth(), ContentWidth: 40, MinWidth: 15},
	}
	alloc := AllocateWidths(cols, 100)
	assert.InDelta(t, 10, cols[1].WrappedWidth, 1e-9)
	assert.InDelta(t, 15, cols[2].WrappedWidth, 1e-9)
	assert.InDelta(t, 15, alloc.Overflow, 1e-9, "超出量对调用方可见")
}

func TestAllocateWidthsIdempotent(t *testing.T) {
	cols := []Column{
		{Index: 0, Width: AutoWidth(), ContentWidth: 13, MinWidth: 4},
		{Index: 1, Width: WrapWidth(), ContentWidth: 21},
		{Index: 2, Width: AutoWidth(), ContentWidth: 7, MinWidth: 40},
		{Index: 3, Width: FixedWidth(11)},
	}
	AllocateWidths(cols, 123.4)
	first := append([]Column(nil), cols...)
	AllocateWidths(cols, 123.4)
	assert.Equal(t, first, cols)
}
