package layout

import "math"

// Allocation 是列宽分配的结果摘要。
type Allocation struct {
	Total    float64 `json:"total"`
	Sum      float64 `json:"sum"`
	Overflow float64 `json:"overflow"`
}

// AllocateWidths 按列宽模式写入每列的 WrappedWidth。
// 固定列保持声明值，wrap 列取内容宽度，auto 列按内容宽度比例分享剩余宽度；
// 剩余宽度为负时 auto 列全部取最小宽度，并通过 Overflow 报告超出量。
// 函数只依赖列的声明与内容宽度，重复调用结果相同。
func AllocateWidths(columns []Column, total float64) Allocation {
	remaining := total
	var auto []int
	for i := range columns {
		c := &columns[i]
		switch c.Width.Kind {
		case WidthFixed:
			c.WrappedWidth = math.Max(c.Width.Value, c.MinWidth)
			remaining -= c.WrappedWidth
		case WidthWrap:
			c.WrappedWidth = math.Max(c.ContentWidth, c.MinWidth)
			remaining -= c.WrappedWidth
		default:
			auto = append(auto, i)
		}
	}
	if len(auto) > 0 {
		shareAuto(columns, auto, remaining)
	}

	sum := 0.0
	for _, c := range columns {
		sum += c.WrappedWidth
	}
	alloc := Allocation{Total: total, Sum: sum}
	if sum > total+epsilon {
		alloc.Overflow = sum - total
	}
	return alloc
}

const epsilon = 1e-6

// shareAuto 把 remaining 按内容宽度比例分给 auto 列；低于最小宽度的列被钉住后重新分配。
func shareAuto(columns []Column, auto []int, remaining float64) {
	minSum := 0.0
	for _, i := range auto {
		minSum += columns[i].MinWidth
	}
	if remaining <= minSum {
		for _, i := range auto {
			columns[i].WrappedWidth = columns[i].MinWidth
		}
		return
	}

	pinned := make(map[int]bool, len(auto))
	for {
		free := remaining
		weight := 0.0
		var open []int
		for _, i := range auto {
			if pinned[i] {
				free -= columns[i].MinWidth
				continue
			}
			open = append(open, i)
			weight += columns[i].ContentWidth
		}
		changed := false
		assigned := 0.0
		for n, i := range open {
			var w float64
			switch {
			case n == len(open)-1:
				w = free - assigned
			case weight > 0:
				w = free * columns[i].ContentWidth / weight
			default:
				w = free / float64(len(open))
			}
			if w < columns[i].MinWidth {
				pinned[i] = true
				changed = true
			}
			columns[i].WrappedWidth = w
			assigned += w
		}
		if !changed {
			break
		}
	}
	for _, i := range auto {
		if pinned[i] {
			columns[i].WrappedWidth = columns[i].MinWidth
		}
	}
}
