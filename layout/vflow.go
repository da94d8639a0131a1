package layout

import "math"

// FlowCell 描述行内一个单元格的可拆分信息。
type FlowCell struct {
	Lines      int     `json:"lines"`
	LineHeight float64 `json:"lineHeight"`
	Padding    float64 `json:"padding"` // 上下内边距之和
}

// FlowRow 是纵向分页的输入单元。Block>1 表示从该行起的 Block 行因跨行单元格必须整体放置。
type FlowRow struct {
	Height float64    `json:"height"`
	Block  int        `json:"block"`
	Cells  []FlowCell `json:"cells,omitempty"`
}

// FlowOptions 是纵向分页参数，坐标均为页面坐标（mm）。
type FlowOptions struct {
	Limit        float64 // 可用区域底部
	Top          float64 // 新页内容起点
	StartCursor  float64 // 第一页的起始位置
	HeadHeight   float64
	FootHeight   float64
	ShowHead     ShowHead
	ShowFoot     ShowFoot
	PageBreak    PageBreak
	RowPageBreak RowPageBreak
}

// LineRange 是单元格显示行的半开区间。
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Placement 记录一行（或一行片段）在页内的位置。Split 非空时按单元格给出本片段的行区间。
type Placement struct {
	Row      int         `json:"row"`
	Y        float64     `json:"y"`
	Height   float64     `json:"height"`
	Split    []LineRange `json:"split,omitempty"`
	Overflow float64     `json:"overflow,omitempty"`
}

// FlowPage 是纵向分页的一页。Page 从 0 开始，相对于表格起始页。
type FlowPage struct {
	Page     int         `json:"page"`
	DrawHead bool        `json:"drawHead"`
	HeadY    float64     `json:"headY"`
	DrawFoot bool        `json:"drawFoot"`
	FootY    float64     `json:"footY"`
	Rows     []Placement `json:"rows"`
	EndY     float64     `json:"endY"`
}

// RowRange 返回本页放置的首行与末行（含），无行时 ok=false。
func (p FlowPage) RowRange() (first, last int, ok bool) {
	if len(p.Rows) == 0 {
		return 0, 0, false
	}
	return p.Rows[0].Row, p.Rows[len(p.Rows)-1].Row, true
}

// Top 返回本页表格内容的起始 y。
func (p FlowPage) Top() float64 {
	switch {
	case p.DrawHead:
		return p.HeadY
	case len(p.Rows) > 0:
		return p.Rows[0].Y
	case p.DrawFoot:
		return p.FootY
	}
	return p.EndY
}

// flowState 跟踪当前页与游标，分页逻辑都挂在它上面。
type flowState struct {
	opts   FlowOptions
	pages  []FlowPage
	cur    FlowPage
	cursor float64
	startY float64
	first  bool
}

// PlanRows 按顺序把行分配到页面，页码单调不减。
// 放不下时另起一页；PageBreakAvoid 时仍放在当前页并记录溢出；
// RowPageBreakAuto 下比整页还高的行按行拆分到多页，每个片段至少一行。
func PlanRows(rows []FlowRow, opts FlowOptions) []FlowPage {
	st := &flowState{opts: opts, first: true}
	page := 0
	start := opts.StartCursor
	if opts.PageBreak == PageBreakAlways && start > opts.Top+epsilon {
		page, start = 1, opts.Top
	}
	if opts.PageBreak == PageBreakAuto && start > opts.Top+epsilon && st.orphanHead(rows, start) {
		page, start = 1, opts.Top
	}
	st.open(page, start)

	for i := 0; i < len(rows); {
		n := max(rows[i].Block, 1)
		if i+n > len(rows) {
			n = len(rows) - i
		}
		unit := rows[i : i+n]
		h := 0.0
		for _, r := range unit {
			h += r.Height
		}

		switch {
		case st.fits(h):
			st.place(i, unit, 0)
		case opts.PageBreak == PageBreakAvoid:
			st.place(i, unit, st.cursor+h-st.limit())
		case st.splittable(unit, h):
			st.split(i, unit[0])
		case st.fresh():
			st.place(i, unit, st.cursor+h-st.limit())
		default:
			st.newPage()
			switch {
			case st.fits(h):
				st.place(i, unit, 0)
			case st.splittable(unit, h):
				st.split(i, unit[0])
			default:
				st.place(i, unit, st.cursor+h-st.limit())
			}
		}
		i += n
	}
	st.close(true)

	// 去掉既无行也无表头表尾的空页（例如首页剩余空间不足而被跳过的情况）。
	pages := st.pages[:0]
	for _, p := range st.pages {
		if p.DrawHead || p.DrawFoot || len(p.Rows) > 0 {
			pages = append(pages, p)
		}
	}
	return pages
}

func (st *flowState) headOn(first bool) bool {
	if st.opts.HeadHeight <= 0 {
		return false
	}
	switch st.opts.ShowHead {
	case ShowHeadEveryPage:
		return true
	case ShowHeadFirstPage:
		return first
	}
	return false
}

func (st *flowState) footReserve() float64 {
	if st.opts.ShowFoot == ShowFootEveryPage {
		return st.opts.FootHeight
	}
	return 0
}

func (st *flowState) limit() float64 { return st.opts.Limit - st.footReserve() }

func (st *flowState) fits(h float64) bool { return st.cursor+h <= st.limit()+epsilon }

// capacity 是一张新页（非首页）上可供行使用的高度。
func (st *flowState) capacity() float64 {
	top := st.opts.Top
	if st.headOn(false) {
		top += st.opts.HeadHeight
	}
	return st.limit() - top
}

// orphanHead 报告首页在放下表头后连第一行都放不下的情况。
func (st *flowState) orphanHead(rows []FlowRow, start float64) bool {
	if !st.headOn(true) {
		return false
	}
	need := st.opts.HeadHeight
	if len(rows) > 0 {
		first := rows[0].Height
		if rows[0].Block > 1 {
			for _, r := range rows[1:min(rows[0].Block, len(rows))] {
				first += r.Height
			}
		}
		if first > st.capacity() && len(rows[0].Cells) > 0 && st.opts.RowPageBreak == RowPageBreakAuto {
			first = minLineHeight(rows[0])
		}
		need += first
	} else if st.opts.ShowFoot != ShowFootNever {
		need += st.opts.FootHeight
	}
	return start+need > st.limit()+epsilon
}

func (st *flowState) open(page int, cursor float64) {
	st.cur = FlowPage{Page: page}
	st.cursor = cursor
	st.startY = cursor
	if st.headOn(st.first) {
		st.cur.DrawHead = true
		st.cur.HeadY = cursor
		st.cursor += st.opts.HeadHeight
	}
	st.first = false
}

func (st *flowState) close(last bool) {
	if st.opts.FootHeight > 0 {
		switch st.opts.ShowFoot {
		case ShowFootEveryPage:
			st.cur.DrawFoot = true
		case ShowFootLastPage:
			st.cur.DrawFoot = last
		}
	}
	if st.cur.DrawFoot {
		if last && st.opts.ShowFoot == ShowFootLastPage && len(st.cur.Rows) > 0 &&
			st.cursor+st.opts.FootHeight > st.opts.Limit+epsilon {
			// 表尾放不下时单独另起一页。
			st.cur.DrawFoot = false
			st.cur.EndY = st.cursor
			st.pages = append(st.pages, st.cur)
			st.open(st.cur.Page+1, st.opts.Top)
			st.cur.DrawFoot = true
		}
		st.cur.FootY = st.cursor
		st.cursor += st.opts.FootHeight
	}
	st.cur.EndY = st.cursor
	st.pages = append(st.pages, st.cur)
}

// fresh 报告当前页是否从页顶开始且尚未放置任何行。
func (st *flowState) fresh() bool {
	return len(st.cur.Rows) == 0 && st.startY <= st.opts.Top+epsilon
}

func (st *flowState) newPage() {
	next := st.cur.Page + 1
	st.close(false)
	st.open(next, st.opts.Top)
}

func (st *flowState) place(i int, unit []FlowRow, overflow float64) {
	for n, r := range unit {
		p := Placement{Row: i + n, Y: st.cursor, Height: r.Height}
		if n == len(unit)-1 && overflow > epsilon {
			p.Overflow = overflow
		}
		st.cur.Rows = append(st.cur.Rows, p)
		st.cursor += r.Height
	}
}

func (st *flowState) splittable(unit []FlowRow, h float64) bool {
	if st.opts.RowPageBreak != RowPageBreakAuto || len(unit) != 1 {
		return false
	}
	lines := 0
	for _, c := range unit[0].Cells {
		lines = max(lines, c.Lines)
	}
	if lines < 2 {
		return false
	}
	return h > st.capacity()+epsilon
}

// split 把一行按单元格的显示行拆成多个片段，从当前页剩余空间开始。
func (st *flowState) split(i int, row FlowRow) {
	done := make([]int, len(row.Cells))
	for {
		avail := st.limit() - st.cursor
		taken := make([]LineRange, len(row.Cells))
		progressed := false
		for c, cell := range row.Cells {
			rest := cell.Lines - done[c]
			n := 0
			if cell.LineHeight > 0 {
				n = int(math.Floor((avail - cell.Padding + epsilon) / cell.LineHeight))
			}
			n = max(min(n, rest), 0)
			taken[c] = LineRange{Start: done[c], End: done[c] + n}
			if n > 0 {
				progressed = true
			}
		}
		if !progressed {
			if !st.fresh() {
				st.newPage()
				continue
			}
			// 新页连一行都放不下：每个单元格强制放一行以保证前进。
			for c, cell := range row.Cells {
				if cell.Lines-done[c] > 0 {
					taken[c].End = taken[c].Start + 1
				}
			}
		}
		h := 0.0
		remaining := false
		for c, cell := range row.Cells {
			lines := taken[c].End - taken[c].Start
			if lines > 0 {
				h = math.Max(h, float64(lines)*cell.LineHeight+cell.Padding)
			}
			done[c] = taken[c].End
			if done[c] < cell.Lines {
				remaining = true
			}
		}
		p := Placement{Row: i, Y: st.cursor, Height: h, Split: taken}
		if over := st.cursor + h - st.limit(); over > epsilon {
			p.Overflow = over
		}
		st.cur.Rows = append(st.cur.Rows, p)
		st.cursor += h
		if !remaining {
			return
		}
		st.newPage()
	}
}

func minLineHeight(r FlowRow) float64 {
	h := 0.0
	for _, c := range r.Cells {
		if c.Lines > 0 {
			h = math.Max(h, c.LineHeight+c.Padding)
		}
	}
	return h
}
