package layout

// 该文件定义表格输入、布局期间的表格模型以及布局结果，供布局计算、绘制与调试 JSON 共用。

// Section 标识行所在的表格分区。
type Section string

const (
	SectionHead Section = "head"
	SectionBody Section = "body"
	SectionFoot Section = "foot"
)

// ColumnInput 描述一列的声明；Header/Footer 非空时可自动生成表头/表尾行。
type ColumnInput struct {
	DataKey string `json:"dataKey,omitempty"`
	Header  string `json:"header,omitempty"`
	Footer  string `json:"footer,omitempty"`
}

// CellInput 是规范化后的单元格输入，Text 中的换行符表示强制换行。
type CellInput struct {
	Text    string
	ColSpan int
	RowSpan int
	Styles  StyleOverrides
}

// RowInput 按列顺序列出单元格；被上方行跨越的列位不再出现。
type RowInput struct {
	Cells []CellInput
}

// TableInput 是布局的输入。
type TableInput struct {
	Columns []ColumnInput
	Head    []RowInput
	Body    []RowInput
	Foot    []RowInput
}

// Table 是一次布局调用独占的表格模型。
type Table struct {
	Columns  []Column
	Head     []*Row
	Body     []*Row
	Foot     []*Row
	Settings Settings
}

// Column 记录列的身份与宽度信息（mm）。
type Column struct {
	Index        int       `json:"index"`
	DataKey      string    `json:"dataKey,omitempty"`
	ContentWidth float64   `json:"contentWidth"`
	MinWidth     float64   `json:"minWidth"`
	Width        CellWidth `json:"width"`
	WrappedWidth float64   `json:"wrappedWidth"`
}

// Row 的 Cells 按列位索引，被跨越的列位为 nil。
type Row struct {
	Section Section `json:"section"`
	Index   int     `json:"index"`
	Cells   []*Cell `json:"cells"`
	Height  float64 `json:"height"`
}

// Cell 保存层叠后的样式、原始文本与折行后的显示行。
type Cell struct {
	Styles     Styles   `json:"styles"`
	Text       []string `json:"text"`
	Lines      []string `json:"lines"`
	ColSpan    int      `json:"colSpan"`
	RowSpan    int      `json:"rowSpan"`
	Column     int      `json:"column"`
	LineHeight float64  `json:"lineHeight"`
	Height     float64  `json:"height"`
}

// Geometry 是页面坐标下的矩形（mm，y 轴向下）。
type Geometry struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PlacedCell 是绘制端需要的一切：几何、样式与本页显示的行。
type PlacedCell struct {
	Column  int      `json:"column"`
	ColSpan int      `json:"colSpan"`
	RowSpan int      `json:"rowSpan"`
	Geom    Geometry `json:"geometry"`
	Styles  Styles   `json:"styles"`
	Lines   []string `json:"lines"`
}

// PlacedRow 是放置到某页的一行或一行的片段。
type PlacedRow struct {
	Section  Section      `json:"section"`
	Index    int          `json:"index"`
	Y        float64      `json:"y"`
	Height   float64      `json:"height"`
	Fragment bool         `json:"fragment,omitempty"`
	Cells    []PlacedCell `json:"cells"`
}

// PageSection 是某一页上某个水平分组的绘制指令。
type PageSection struct {
	Page    int         `json:"page"`
	NewPage bool        `json:"newPage"`
	Group   int         `json:"group"`
	Columns []int       `json:"columns"`
	X       float64     `json:"x"`
	Head    []PlacedRow `json:"head,omitempty"`
	Body    []PlacedRow `json:"body,omitempty"`
	Foot    []PlacedRow `json:"foot,omitempty"`
	Bounds  Geometry    `json:"bounds"`
}

// Rows 按绘制顺序返回该分段的全部行。
func (s PageSection) Rows() []PlacedRow {
	out := make([]PlacedRow, 0, len(s.Head)+len(s.Body)+len(s.Foot))
	out = append(out, s.Head...)
	out = append(out, s.Body...)
	return append(out, s.Foot...)
}

// Plan 是一次布局的只读结果。
type Plan struct {
	PageWidth  float64          `json:"pageWidth"`
	PageHeight float64          `json:"pageHeight"`
	StartPage  int              `json:"startPage"`
	PageCount  int              `json:"pageCount"`
	Columns    []Column         `json:"columns"`
	Groups     []ColumnGroup    `json:"groups"`
	Sections   []PageSection    `json:"sections"`
	Overflow   []OverflowReport `json:"overflow,omitempty"`
	Warnings   []ConfigError    `json:"warnings,omitempty"`
	FinalY     float64          `json:"finalY"`
	Settings   Settings         `json:"settings"`
}

// LastPage 返回表格占用的最后一页页码；空计划返回 StartPage。
func (p *Plan) LastPage() int {
	if len(p.Sections) == 0 {
		return p.StartPage
	}
	return p.Sections[len(p.Sections)-1].Page
}
