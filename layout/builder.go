package layout

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
)

// Build 根据规范化的表格输入生成分页布局计划。
// 结构性输入错误以 *InputError 返回，此时不会产出任何部分结果；
// 无效配置与溢出只记录在 Plan 中。
func Build(in TableInput, opts TableOptions, bo BuildOptions) (*Plan, error) {
	logger := bo.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	surface := bo.Surface
	if surface == nil {
		surface = EstimateSurface{}
	}
	startPage := bo.StartPage
	if startPage < 1 {
		startPage = 1
	}

	// 在入口处捕获配置副本，之后调用方对配置的修改不会影响本次布局。
	cfg := bo.Config.clone()
	eff := cfg.Global.Merge(cfg.Document).Merge(opts)
	settings := eff.settings()

	b := &tableBuilder{
		settings:  settings,
		page:      bo.Page,
		startPage: startPage,
		surface:   surface,
		logger:    logger,
	}
	if err := b.checkPage(); err != nil {
		return nil, err
	}

	table, err := b.parse(in, cfg, eff)
	if err != nil {
		return nil, err
	}
	b.measure(table)
	b.allocate(table)
	b.wrap(table)
	b.heights(table)

	plan := b.plan(table)
	logger.Debug("表格布局完成",
		zap.Int("columns", len(plan.Columns)),
		zap.Int("groups", len(plan.Groups)),
		zap.Int("sections", len(plan.Sections)),
		zap.Int("pages", plan.PageCount),
		zap.Int("overflow", len(plan.Overflow)))
	return plan, nil
}

// tableBuilder 持有一次布局调用的全部状态，不在调用之间共享。
type tableBuilder struct {
	settings  Settings
	page      PageSize
	startPage int
	surface   Surface
	logger    *zap.Logger
	resolver  *StyleResolver
	warnings  []ConfigError
	overflow  []OverflowReport
}

func (b *tableBuilder) availableWidth() float64 {
	return b.page.Width - b.settings.Margin.Left - b.settings.Margin.Right
}

func (b *tableBuilder) checkPage() error {
	m := b.settings.Margin
	if b.page.Width <= 0 || b.page.Height <= 0 {
		return &InputError{Err: ErrInvalidPage, Detail: fmt.Sprintf("页面尺寸 %.2fx%.2f", b.page.Width, b.page.Height)}
	}
	if b.availableWidth() <= 0 || b.page.Height-m.Top-m.Bottom <= 0 {
		return &InputError{Err: ErrInvalidPage, Detail: fmt.Sprintf("边距 %+v 超出页面", m)}
	}
	return nil
}

func (b *tableBuilder) warn(w ConfigError) {
	b.warnings = append(b.warnings, w)
	b.logger.Warn("忽略无效配置", zap.String("option", w.Option), zap.String("value", w.Value), zap.String("reason", w.Message))
}

// parse 校验跨度并构造表格模型，同时完成样式层叠。
func (b *tableBuilder) parse(in TableInput, cfg Config, eff TableOptions) (*Table, error) {
	ncols := len(in.Columns)
	if ncols == 0 {
		ncols = inferColumnCount(in)
	}
	columns := make([]Column, ncols)
	for i := range columns {
		columns[i] = Column{Index: i}
		if i < len(in.Columns) {
			columns[i].DataKey = in.Columns[i].DataKey
		}
	}

	head, foot := in.Head, in.Foot
	if len(head) == 0 {
		head = synthesizeRow(in.Columns, func(c ColumnInput) string { return c.Header })
	}
	if len(foot) == 0 {
		foot = synthesizeRow(in.Columns, func(c ColumnInput) string { return c.Footer })
	}

	b.resolver = NewStyleResolver(cfg, eff, columns, b.surface, b.logger)
	t := &Table{Columns: columns, Settings: b.settings}
	var err error
	if t.Head, err = b.parseSection(SectionHead, head, ncols); err != nil {
		return nil, err
	}
	if t.Body, err = b.parseSection(SectionBody, in.Body, ncols); err != nil {
		return nil, err
	}
	if t.Foot, err = b.parseSection(SectionFoot, foot, ncols); err != nil {
		return nil, err
	}
	return t, nil
}

func inferColumnCount(in TableInput) int {
	for _, rows := range [][]RowInput{in.Head, in.Body, in.Foot} {
		if len(rows) == 0 {
			continue
		}
		n := 0
		for _, c := range rows[0].Cells {
			n += max(c.ColSpan, 1)
		}
		return n
	}
	return 0
}

// synthesizeRow 在列声明了表头/表尾文本时生成一行；全部为空时返回 nil。
func synthesizeRow(columns []ColumnInput, text func(ColumnInput) string) []RowInput {
	found := false
	cells := make([]CellInput, len(columns))
	for i, c := range columns {
		cells[i] = CellInput{Text: text(c)}
		if cells[i].Text != "" {
			found = true
		}
	}
	if !found {
		return nil
	}
	return []RowInput{{Cells: cells}}
}

// parseSection 把输入行放入列位网格，要求跨列/跨行恰好覆盖每个列位一次。
func (b *tableBuilder) parseSection(section Section, rows []RowInput, ncols int) ([]*Row, error) {
	covered := make([]int, ncols)
	out := make([]*Row, 0, len(rows))
	for r, in := range rows {
		row := &Row{Section: section, Index: r, Cells: make([]*Cell, ncols)}
		slot := 0
		for _, ci := range in.Cells {
			for slot < ncols && covered[slot] > 0 {
				slot++
			}
			if ci.ColSpan < 0 || ci.RowSpan < 0 {
				return nil, &InputError{Section: section, Row: r, Err: ErrInvalidSpan, Detail: "跨度不能为负数"}
			}
			colSpan, rowSpan := max(ci.ColSpan, 1), max(ci.RowSpan, 1)
			if slot+colSpan > ncols {
				return nil, &InputError{Section: section, Row: r, Err: ErrInvalidSpan,
					Detail: fmt.Sprintf("第 %d 列起跨 %d 列超出列数 %d", slot, colSpan, ncols)}
			}
			for k := slot; k < slot+colSpan; k++ {
				if covered[k] > 0 {
					return nil, &InputError{Section: section, Row: r, Err: ErrInvalidSpan,
						Detail: fmt.Sprintf("第 %d 列已被上方单元格跨越", k)}
				}
			}
			if r+rowSpan > len(rows) {
				b.warn(ConfigError{
					Option:  "rowSpan",
					Value:   fmt.Sprintf("%s[%d][%d]=%d", section, r, slot, rowSpan),
					Message: "超出分区行数，已截断",
				})
				rowSpan = len(rows) - r
			}
			row.Cells[slot] = b.newCell(section, r, slot, ci, colSpan, rowSpan)
			for k := slot; k < slot+colSpan; k++ {
				covered[k] = rowSpan
			}
			slot += colSpan
		}
		for k := range covered {
			if covered[k] == 0 {
				return nil, &InputError{Section: section, Row: r, Err: ErrInvalidSpan,
					Detail: fmt.Sprintf("第 %d 列没有单元格", k)}
			}
			covered[k]--
		}
		out = append(out, row)
	}
	return out, nil
}

func (b *tableBuilder) newCell(section Section, row, slot int, in CellInput, colSpan, rowSpan int) *Cell {
	text := strings.Split(strings.ReplaceAll(in.Text, "\r\n", "\n"), "\n")
	return &Cell{
		Styles:  b.resolver.Resolve(section, slot, row, in.Styles),
		Text:    text,
		ColSpan: colSpan,
		RowSpan: rowSpan,
		Column:  slot,
	}
}

func (t *Table) eachCell(fn func(*Cell)) {
	for _, rows := range [][]*Row{t.Head, t.Body, t.Foot} {
		for _, row := range rows {
			for _, c := range row.Cells {
				if c != nil {
					fn(c)
				}
			}
		}
	}
}

// measure 计算每列的内容宽度（最长未折行文本加左右内边距）与最小宽度。
func (b *tableBuilder) measure(t *Table) {
	for i := range t.Columns {
		s := b.resolver.Resolve(SectionBody, i, 0, StyleOverrides{})
		t.Columns[i].Width = s.CellWidth
		t.Columns[i].MinWidth = s.MinCellWidth
	}
	var spanning []*Cell
	t.eachCell(func(c *Cell) {
		if c.ColSpan > 1 {
			spanning = append(spanning, c)
			return
		}
		col := &t.Columns[c.Column]
		col.ContentWidth = math.Max(col.ContentWidth, b.contentWidth(c))
		col.MinWidth = math.Max(col.MinWidth, c.Styles.MinCellWidth)
	})
	// 跨列单元格的内容宽度不足时平均摊到所跨的列上。
	for _, c := range spanning {
		need := b.contentWidth(c)
		have := 0.0
		for k := c.Column; k < c.Column+c.ColSpan; k++ {
			have += t.Columns[k].ContentWidth
		}
		if need <= have {
			continue
		}
		extra := (need - have) / float64(c.ColSpan)
		for k := c.Column; k < c.Column+c.ColSpan; k++ {
			t.Columns[k].ContentWidth += extra
		}
	}
}

func (b *tableBuilder) contentWidth(c *Cell) float64 {
	w := 0.0
	for _, line := range c.Text {
		w = math.Max(w, b.surface.TextWidth(line, c.Styles))
	}
	return w + c.Styles.CellPadding.Horizontal()
}

// allocate 确定表格总宽并分配列宽。
func (b *tableBuilder) allocate(t *Table) {
	avail := b.availableWidth()
	ideal := 0.0
	for _, c := range t.Columns {
		if c.Width.Kind == WidthFixed {
			ideal += math.Max(c.Width.Value, c.MinWidth)
		} else {
			ideal += math.Max(c.ContentWidth, c.MinWidth)
		}
	}
	total := avail
	switch t.Settings.TableWidth.Kind {
	case WidthFixed:
		total = t.Settings.TableWidth.Value
	case WidthWrap:
		total = ideal
	default:
		if t.Settings.HorizontalPageBreak {
			total = math.Max(avail, ideal)
		}
	}
	alloc := AllocateWidths(t.Columns, total)
	over := alloc.Overflow
	if !t.Settings.HorizontalPageBreak {
		over = math.Max(over, alloc.Sum-avail)
	}
	if over > epsilon {
		b.overflow = append(b.overflow, OverflowReport{Kind: OverflowWidth, Amount: over, Row: -1})
		b.logger.Warn("表格宽度超出可用宽度", zap.Float64("available", avail), zap.Float64("width", alloc.Sum))
	}
}

func (t *Table) spanWidth(c *Cell) float64 {
	w := 0.0
	for k := c.Column; k < c.Column+c.ColSpan; k++ {
		w += t.Columns[k].WrappedWidth
	}
	return w
}

// wrap 按 overflow 模式把文本折成显示行，并计算单元格高度。
func (b *tableBuilder) wrap(t *Table) {
	t.eachCell(func(c *Cell) {
		s := c.Styles
		avail := t.spanWidth(c) - s.CellPadding.Horizontal()
		c.Lines = b.fit(c.Text, avail, s)
		c.LineHeight = b.surface.LineHeight(s)
		c.Height = math.Max(s.MinCellHeight, float64(len(c.Lines))*c.LineHeight+s.CellPadding.Vertical())
	})
}

func (b *tableBuilder) fit(text []string, width float64, s Styles) []string {
	switch s.Overflow {
	case OverflowVisible:
		return append([]string(nil), text...)
	case OverflowEllipsize, OverflowHidden:
		suffix := ""
		if s.Overflow == OverflowEllipsize {
			suffix = "..."
		}
		out := make([]string, len(text))
		for i, line := range text {
			out[i] = b.truncate(line, width, suffix, s)
		}
		return out
	case OverflowCustom:
		if s.Transform != nil {
			return s.Transform(append([]string(nil), text...), width)
		}
	}
	var out []string
	for _, line := range text {
		parts := b.surface.SplitText(line, width, s)
		if len(parts) == 0 {
			parts = []string{""}
		}
		out = append(out, parts...)
	}
	return out
}

// truncate 逐字符截短直到加上 suffix 后能放进 width。
func (b *tableBuilder) truncate(line string, width float64, suffix string, s Styles) string {
	if b.surface.TextWidth(line, s) <= width+epsilon {
		return line
	}
	runes := []rune(line)
	for n := len(runes) - 1; n > 0; n-- {
		cand := strings.TrimRight(string(runes[:n]), " ") + suffix
		if b.surface.TextWidth(cand, s) <= width+epsilon {
			return cand
		}
	}
	if b.surface.TextWidth(suffix, s) <= width+epsilon {
		return suffix
	}
	return ""
}

// heights 计算行高：取单行单元格的最大高度，再为跨行单元格补足差额到其最后一行。
func (b *tableBuilder) heights(t *Table) {
	for _, rows := range [][]*Row{t.Head, t.Body, t.Foot} {
		for _, row := range rows {
			for _, c := range row.Cells {
				if c != nil && c.RowSpan == 1 {
					row.Height = math.Max(row.Height, c.Height)
				}
			}
		}
		for r, row := range rows {
			for _, c := range row.Cells {
				if c == nil || c.RowSpan < 2 {
					continue
				}
				sum := 0.0
				for k := r; k < r+c.RowSpan; k++ {
					sum += rows[k].Height
				}
				if c.Height > sum {
					rows[r+c.RowSpan-1].Height += c.Height - sum
				}
			}
		}
	}
}

func sectionHeight(rows []*Row) float64 {
	h := 0.0
	for _, r := range rows {
		h += r.Height
	}
	return h
}

// flowRows 把表体转换为纵向分页输入；跨行单元格所在的行合并为一个整体。
func flowRows(body []*Row) []FlowRow {
	out := make([]FlowRow, len(body))
	for i := 0; i < len(body); {
		end := i + 1
		for j := i; j < end; j++ {
			for _, c := range body[j].Cells {
				if c != nil {
					end = max(end, j+c.RowSpan)
				}
			}
		}
		for j := i; j < end; j++ {
			out[j] = FlowRow{Height: body[j].Height}
		}
		out[i].Block = end - i
		if end-i == 1 {
			for _, c := range body[i].Cells {
				if c != nil {
					out[i].Cells = append(out[i].Cells, FlowCell{
						Lines:      len(c.Lines),
						LineHeight: c.LineHeight,
						Padding:    c.Styles.CellPadding.Vertical(),
					})
				}
			}
		}
		i = end
	}
	return out
}

// plan 规划水平分组与纵向分页，并按分组顺序策略输出页面分段。
func (b *tableBuilder) plan(t *Table) *Plan {
	plan := &Plan{
		PageWidth:  b.page.Width,
		PageHeight: b.page.Height,
		StartPage:  b.startPage,
		Columns:    t.Columns,
		Settings:   t.Settings,
		FinalY:     t.Settings.StartY,
	}
	avail := b.availableWidth()
	var groups []ColumnGroup
	switch {
	case len(t.Columns) == 0:
	case t.Settings.HorizontalPageBreak:
		var warnings []ConfigError
		groups, warnings = PlanHorizontalGroups(t.Columns, avail, t.Settings.HorizontalPageBreakRepeat)
		for _, w := range warnings {
			b.warn(w)
		}
	default:
		all := ColumnGroup{LastIndex: len(t.Columns) - 1}
		for i := range t.Columns {
			all.Columns = append(all.Columns, i)
		}
		groups = []ColumnGroup{all}
	}
	plan.Groups = groups
	for g, group := range groups {
		if w := group.Width(t.Columns); t.Settings.HorizontalPageBreak && w > avail+epsilon {
			b.overflow = append(b.overflow, OverflowReport{Kind: OverflowWidth, Group: g, Row: -1, Amount: w - avail})
		}
	}
	if len(groups) == 0 || len(t.Head)+len(t.Body)+len(t.Foot) == 0 {
		plan.Overflow, plan.Warnings = b.overflow, b.warnings
		return plan
	}

	m := t.Settings.Margin
	fo := FlowOptions{
		Limit:        b.page.Height - m.Bottom,
		Top:          m.Top,
		StartCursor:  t.Settings.StartY,
		HeadHeight:   sectionHeight(t.Head),
		FootHeight:   sectionHeight(t.Foot),
		ShowHead:     t.Settings.ShowHead,
		ShowFoot:     t.Settings.ShowFoot,
		PageBreak:    t.Settings.PageBreak,
		RowPageBreak: t.Settings.RowPageBreak,
	}
	rows := flowRows(t.Body)

	if t.Settings.HorizontalPageBreakBehaviour == HorizontalImmediately && len(groups) > 1 {
		pages := PlanRows(rows, fo)
		page := b.startPage
		if len(pages) > 0 {
			page += pages[0].Page
		}
		for _, fp := range pages {
			for g, group := range groups {
				shift := 0.0
				if g > 0 {
					shift = fo.Top - fp.Top()
				}
				plan.Sections = append(plan.Sections, b.section(t, group, g, page, fp, shift))
				page++
			}
		}
	} else {
		base := b.startPage
		for g, group := range groups {
			gfo := fo
			if g > 0 {
				gfo.StartCursor = fo.Top
				if n := len(plan.Sections); n > 0 {
					base = plan.Sections[n-1].Page + 1
				}
			}
			for _, fp := range PlanRows(rows, gfo) {
				plan.Sections = append(plan.Sections, b.section(t, group, g, base+fp.Page, fp, 0))
			}
		}
	}

	if len(plan.Sections) == 0 {
		plan.Overflow, plan.Warnings = b.overflow, b.warnings
		return plan
	}
	prev := b.startPage
	pages := map[int]bool{}
	for i := range plan.Sections {
		s := &plan.Sections[i]
		s.NewPage = s.Page != prev
		prev = s.Page
		pages[s.Page] = true
	}
	last := plan.Sections[len(plan.Sections)-1]
	plan.PageCount = len(pages)
	plan.FinalY = last.Bounds.Y + last.Bounds.Height
	plan.Overflow, plan.Warnings = b.overflow, b.warnings
	return plan
}

// section 在一页上放置一个分组的表头、表体（片段）与表尾；shift 为整体纵向平移量。
func (b *tableBuilder) section(t *Table, group ColumnGroup, g, page int, fp FlowPage, shift float64) PageSection {
	sec := PageSection{
		Page:    page,
		Group:   g,
		Columns: append([]int(nil), group.Columns...),
		X:       t.Settings.Margin.Left,
	}
	if fp.DrawHead {
		y := fp.HeadY + shift
		for _, row := range t.Head {
			sec.Head = append(sec.Head, b.placeRow(t, t.Head, row, group, sec.X, y, row.Height, nil))
			y += row.Height
		}
	}
	for _, p := range fp.Rows {
		row := t.Body[p.Row]
		sec.Body = append(sec.Body, b.placeRow(t, t.Body, row, group, sec.X, p.Y+shift, p.Height, p.Split))
		if p.Overflow > 0 {
			b.overflow = append(b.overflow, OverflowReport{
				Kind: OverflowHeight, Page: page, Group: g, Section: SectionBody, Row: p.Row, Amount: p.Overflow,
			})
			b.logger.Warn("行高度超出页面可用区域", zap.Int("page", page), zap.Int("row", p.Row), zap.Float64("amount", p.Overflow))
		}
	}
	if fp.DrawFoot {
		y := fp.FootY + shift
		for _, row := range t.Foot {
			sec.Foot = append(sec.Foot, b.placeRow(t, t.Foot, row, group, sec.X, y, row.Height, nil))
			y += row.Height
		}
	}
	top := fp.Top() + shift
	sec.Bounds = Geometry{X: sec.X, Y: top, Width: group.Width(t.Columns), Height: fp.EndY + shift - top}
	return sec
}

// placeRow 计算一行在分组内的单元格几何。跨列单元格从分组中第一个出现的所跨列开始绘制，
// 宽度为紧随其后仍属于该跨度的列宽之和。
func (b *tableBuilder) placeRow(t *Table, rows []*Row, row *Row, group ColumnGroup, x, y, height float64, split []LineRange) PlacedRow {
	pr := PlacedRow{Section: row.Section, Index: row.Index, Y: y, Height: height, Fragment: split != nil}
	offsets := make([]float64, len(group.Columns)+1)
	for j, col := range group.Columns {
		offsets[j+1] = offsets[j] + t.Columns[col].WrappedWidth
	}
	n := 0
	for _, c := range row.Cells {
		if c == nil {
			continue
		}
		idx := n
		n++
		start := -1
		for j, col := range group.Columns {
			if col >= c.Column && col < c.Column+c.ColSpan {
				start = j
				break
			}
		}
		if start < 0 {
			continue
		}
		end := start + 1
		for end < len(group.Columns) && group.Columns[end] >= c.Column && group.Columns[end] < c.Column+c.ColSpan {
			end++
		}
		h := height
		if c.RowSpan > 1 {
			h = 0
			for k := row.Index; k < row.Index+c.RowSpan; k++ {
				h += rows[k].Height
			}
		}
		lines := c.Lines
		if split != nil {
			lines = c.Lines[split[idx].Start:split[idx].End]
		}
		pr.Cells = append(pr.Cells, PlacedCell{
			Column:  c.Column,
			ColSpan: c.ColSpan,
			RowSpan: c.RowSpan,
			Geom:    Geometry{X: x + offsets[start], Y: y, Width: offsets[end] - offsets[start], Height: h},
			Styles:  c.Styles,
			Lines:   append([]string(nil), lines...),
		})
	}
	return pr
}

// Replay 按计划顺序驱动绘制端：每个新页调用一次 BeginPage，每个单元格调用一次 DrawCell。
// 若 d 同时实现 BorderDrawer 且设置了 tableLineWidth，则为每个分段绘制外框。
func Replay(plan *Plan, d Drawer) error {
	if plan == nil {
		return nil
	}
	border, hasBorder := d.(BorderDrawer)
	hasBorder = hasBorder && plan.Settings.TableLineWidth > 0 && plan.Settings.TableLineColor.Paints()
	for _, sec := range plan.Sections {
		if sec.NewPage {
			if err := d.BeginPage(sec.Page); err != nil {
				return fmt.Errorf("开始第 %d 页失败: %w", sec.Page, err)
			}
		}
		for _, row := range sec.Rows() {
			for _, c := range row.Cells {
				if err := d.DrawCell(c.Geom, c.Styles, c.Lines); err != nil {
					return fmt.Errorf("绘制 %s 第 %d 行第 %d 列失败: %w", row.Section, row.Index, c.Column, err)
				}
			}
		}
		if hasBorder {
			if err := border.DrawTableBorder(sec.Bounds, plan.Settings.TableLineWidth, plan.Settings.TableLineColor); err != nil {
				return fmt.Errorf("绘制第 %d 页表格外框失败: %w", sec.Page, err)
			}
		}
	}
	return nil
}
