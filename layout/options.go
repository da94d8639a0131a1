package layout

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Theme 为内置配色主题。
type Theme string

const (
	ThemeStriped Theme = "striped"
	ThemeGrid    Theme = "grid"
	ThemePlain   Theme = "plain"
	ThemeNone    Theme = "none"
)

// PageBreak 是表格级分页策略。
type PageBreak string

const (
	PageBreakAuto   PageBreak = "auto"
	PageBreakAvoid  PageBreak = "avoid"
	PageBreakAlways PageBreak = "always"
)

// RowPageBreak 决定超高行能否跨页拆分。
type RowPageBreak string

const (
	RowPageBreakAuto  RowPageBreak = "auto"
	RowPageBreakAvoid RowPageBreak = "avoid"
)

// ShowHead 控制表头在哪些页重复绘制。
type ShowHead string

const (
	ShowHeadEveryPage ShowHead = "everyPage"
	ShowHeadFirstPage ShowHead = "firstPage"
	ShowHeadNever     ShowHead = "never"
)

// ShowFoot 控制表尾在哪些页重复绘制。
type ShowFoot string

const (
	ShowFootEveryPage ShowFoot = "everyPage"
	ShowFootLastPage  ShowFoot = "lastPage"
	ShowFootNever     ShowFoot = "never"
)

// HorizontalBehaviour 决定多个水平分组的输出顺序。
type HorizontalBehaviour string

const (
	HorizontalImmediately  HorizontalBehaviour = "immediately"
	HorizontalAfterAllRows HorizontalBehaviour = "afterAllRows"
)

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// ParseMargin 与 ParsePadding 语义一致（1/2/3/4 个值）。
func ParseMargin(value string) (Margin, error) {
	p, err := ParsePadding(value)
	if err != nil {
		return Margin{}, fmt.Errorf("margin: %w", err)
	}
	return Margin(p), nil
}

// ColumnRef 通过数据键或列序号引用一列。
type ColumnRef struct {
	Key   string `json:"key,omitempty"`
	Index int    `json:"index"`
	ByKey bool   `json:"byKey"`
}

func KeyRef(key string) ColumnRef { return ColumnRef{Key: key, ByKey: true} }
func IndexRef(i int) ColumnRef    { return ColumnRef{Index: i} }

// ParseColumnRef 把纯数字解析为列序号，其余视为数据键。
func ParseColumnRef(s string) ColumnRef {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return IndexRef(n)
	}
	return KeyRef(s)
}

func (r ColumnRef) String() string {
	if r.ByKey {
		return r.Key
	}
	return strconv.Itoa(r.Index)
}

// TableOptions 是用户可声明的表格选项；nil 字段表示未设置，沿用下层默认值。
type TableOptions struct {
	Theme                        *Theme
	StartY                       *float64
	Margin                       *Margin
	PageBreak                    *PageBreak
	RowPageBreak                 *RowPageBreak
	TableWidth                   *CellWidth
	ShowHead                     *ShowHead
	ShowFoot                     *ShowFoot
	TableLineWidth               *float64
	TableLineColor               *Color
	HorizontalPageBreak          *bool
	HorizontalPageBreakRepeat    []ColumnRef
	HorizontalPageBreakBehaviour *HorizontalBehaviour

	Styles             StyleOverrides
	HeadStyles         StyleOverrides
	BodyStyles         StyleOverrides
	FootStyles         StyleOverrides
	AlternateRowStyles StyleOverrides
	// ColumnStyles 的键为列的数据键或列序号字符串。
	ColumnStyles map[string]StyleOverrides
}

// Clone 深拷贝选项，使调用方之后的修改不影响已捕获的副本。
func (o TableOptions) Clone() TableOptions {
	out := TableOptions{
		Theme:                        clonePtr(o.Theme),
		StartY:                       clonePtr(o.StartY),
		Margin:                       clonePtr(o.Margin),
		PageBreak:                    clonePtr(o.PageBreak),
		RowPageBreak:                 clonePtr(o.RowPageBreak),
		TableWidth:                   clonePtr(o.TableWidth),
		ShowHead:                     clonePtr(o.ShowHead),
		ShowFoot:                     clonePtr(o.ShowFoot),
		TableLineWidth:               clonePtr(o.TableLineWidth),
		TableLineColor:               clonePtr(o.TableLineColor),
		HorizontalPageBreak:          clonePtr(o.HorizontalPageBreak),
		HorizontalPageBreakBehaviour: clonePtr(o.HorizontalPageBreakBehaviour),
		Styles:                       o.Styles.clone(),
		HeadStyles:                   o.HeadStyles.clone(),
		BodyStyles:                   o.BodyStyles.clone(),
		FootStyles:                   o.FootStyles.clone(),
		AlternateRowStyles:           o.AlternateRowStyles.clone(),
	}
	if o.HorizontalPageBreakRepeat != nil {
		out.HorizontalPageBreakRepeat = append([]ColumnRef(nil), o.HorizontalPageBreakRepeat...)
	}
	if o.ColumnStyles != nil {
		out.ColumnStyles = make(map[string]StyleOverrides, len(o.ColumnStyles))
		for k, v := range o.ColumnStyles {
			out.ColumnStyles[k] = v.clone()
		}
	}
	return out
}

// Merge 返回以 o 为底、over 覆盖的选项；样式按字段合并。
func (o TableOptions) Merge(over TableOptions) TableOptions {
	out := o.Clone()
	if over.Theme != nil {
		out.Theme = clonePtr(over.Theme)
	}
	if over.StartY != nil {
		out.StartY = clonePtr(over.StartY)
	}
	if over.Margin != nil {
		out.Margin = clonePtr(over.Margin)
	}
	if over.PageBreak != nil {
		out.PageBreak = clonePtr(over.PageBreak)
	}
	if over.RowPageBreak != nil {
		out.RowPageBreak = clonePtr(over.RowPageBreak)
	}
	if over.TableWidth != nil {
		out.TableWidth = clonePtr(over.TableWidth)
	}
	if over.ShowHead != nil {
		out.ShowHead = clonePtr(over.ShowHead)
	}
	if over.ShowFoot != nil {
		out.ShowFoot = clonePtr(over.ShowFoot)
	}
	if over.TableLineWidth != nil {
		out.TableLineWidth = clonePtr(over.TableLineWidth)
	}
	if over.TableLineColor != nil {
		out.TableLineColor = clonePtr(over.TableLineColor)
	}
	if over.HorizontalPageBreak != nil {
		out.HorizontalPageBreak = clonePtr(over.HorizontalPageBreak)
	}
	if over.HorizontalPageBreakRepeat != nil {
		out.HorizontalPageBreakRepeat = append([]ColumnRef(nil), over.HorizontalPageBreakRepeat...)
	}
	if over.HorizontalPageBreakBehaviour != nil {
		out.HorizontalPageBreakBehaviour = clonePtr(over.HorizontalPageBreakBehaviour)
	}
	out.Styles = out.Styles.Merge(over.Styles)
	out.HeadStyles = out.HeadStyles.Merge(over.HeadStyles)
	out.BodyStyles = out.BodyStyles.Merge(over.BodyStyles)
	out.FootStyles = out.FootStyles.Merge(over.FootStyles)
	out.AlternateRowStyles = out.AlternateRowStyles.Merge(over.AlternateRowStyles)
	for k, v := range over.ColumnStyles {
		if out.ColumnStyles == nil {
			out.ColumnStyles = map[string]StyleOverrides{}
		}
		out.ColumnStyles[k] = out.ColumnStyles[k].Merge(v)
	}
	return out
}

// Settings 是合并默认值之后的具体表格设置。
type Settings struct {
	Theme                        Theme               `json:"theme"`
	StartY                       float64             `json:"startY"`
	Margin                       Margin              `json:"margin"`
	PageBreak                    PageBreak           `json:"pageBreak"`
	RowPageBreak                 RowPageBreak        `json:"rowPageBreak"`
	TableWidth                   CellWidth           `json:"tableWidth"`
	ShowHead                     ShowHead            `json:"showHead"`
	ShowFoot                     ShowFoot            `json:"showFoot"`
	TableLineWidth               float64             `json:"tableLineWidth"`
	TableLineColor               Color               `json:"tableLineColor"`
	HorizontalPageBreak          bool                `json:"horizontalPageBreak"`
	HorizontalPageBreakRepeat    []ColumnRef         `json:"horizontalPageBreakRepeat,omitempty"`
	HorizontalPageBreakBehaviour HorizontalBehaviour `json:"horizontalPageBreakBehaviour"`
}

// defaultMargin 约为 40pt。
var defaultMargin = 40 * PtToMm

func (o TableOptions) settings() Settings {
	s := Settings{
		Theme:                        ThemeStriped,
		Margin:                       Margin{Top: defaultMargin, Right: defaultMargin, Bottom: defaultMargin, Left: defaultMargin},
		PageBreak:                    PageBreakAuto,
		RowPageBreak:                 RowPageBreakAuto,
		TableWidth:                   AutoWidth(),
		ShowHead:                     ShowHeadEveryPage,
		ShowFoot:                     ShowFootEveryPage,
		TableLineColor:               Grey(200),
		HorizontalPageBreakBehaviour: HorizontalAfterAllRows,
		HorizontalPageBreakRepeat:    append([]ColumnRef(nil), o.HorizontalPageBreakRepeat...),
	}
	if o.Theme != nil {
		s.Theme = *o.Theme
	}
	if o.Margin != nil {
		s.Margin = *o.Margin
	}
	s.StartY = s.Margin.Top
	if o.StartY != nil {
		s.StartY = *o.StartY
	}
	if o.PageBreak != nil {
		s.PageBreak = *o.PageBreak
	}
	if o.RowPageBreak != nil {
		s.RowPageBreak = *o.RowPageBreak
	}
	if o.TableWidth != nil {
		s.TableWidth = *o.TableWidth
	}
	if o.ShowHead != nil {
		s.ShowHead = *o.ShowHead
	}
	if o.ShowFoot != nil {
		s.ShowFoot = *o.ShowFoot
	}
	if o.TableLineWidth != nil {
		s.TableLineWidth = *o.TableLineWidth
	}
	if o.TableLineColor != nil {
		s.TableLineColor = *o.TableLineColor
	}
	if o.HorizontalPageBreak != nil {
		s.HorizontalPageBreak = *o.HorizontalPageBreak
	}
	if o.HorizontalPageBreakBehaviour != nil {
		s.HorizontalPageBreakBehaviour = *o.HorizontalPageBreakBehaviour
	}
	return s
}

// Config 携带进程级与文档级默认选项，在每次 Build 开始时被复制捕获。
type Config struct {
	Global   TableOptions
	Document TableOptions
	// DocumentStyles 是宿主文档当前的字体、颜色等状态。
	DocumentStyles StyleOverrides
}

func (c Config) clone() Config {
	return Config{
		Global:         c.Global.Clone(),
		Document:       c.Document.Clone(),
		DocumentStyles: c.DocumentStyles.clone(),
	}
}

// PageSize 以毫米表示页面宽高。
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// BuildOptions 配置布局阶段所需的依赖，例如排版后端。
type BuildOptions struct {
	Surface Surface
	Page    PageSize
	Config  Config
	// StartPage 是宿主当前所在页的页码，默认 1。
	StartPage int
	Logger    *zap.Logger
}

// Surface 由宿主渲染面实现，负责字体度量与折行。
type Surface interface {
	// TextWidth 返回单行文本在给定样式下的宽度（mm）。
	TextWidth(text string, style Styles) float64
	// SplitText 将单行文本按宽度拆成多行。
	SplitText(text string, width float64, style Styles) []string
	// LineHeight 返回给定样式下的行高（mm）。
	LineHeight(style Styles) float64
	// FontStyles 列出字体族可用的样式；返回空表示未知，不做校验。
	FontStyles(font string) []FontStyle
}

// Drawer 由绘制端实现，按顺序重放 Plan。
type Drawer interface {
	BeginPage(page int) error
	DrawCell(geom Geometry, style Styles, lines []string) error
}

// BorderDrawer 是可选接口：实现后 Replay 会为每个分段绘制表格外框。
type BorderDrawer interface {
	DrawTableBorder(geom Geometry, width float64, color Color) error
}

// ParseTheme 解析主题名称；空字符串与 "null" 视为 none。
func ParseTheme(s string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "striped":
		return ThemeStriped, nil
	case "grid":
		return ThemeGrid, nil
	case "plain":
		return ThemePlain, nil
	case "none", "null", "":
		return ThemeNone, nil
	}
	return "", fmt.Errorf("未知的 theme %q", s)
}

func ParsePageBreak(s string) (PageBreak, error) {
	switch v := PageBreak(strings.ToLower(strings.TrimSpace(s))); v {
	case PageBreakAuto, PageBreakAvoid, PageBreakAlways:
		return v, nil
	}
	return "", fmt.Errorf("未知的 pageBreak %q", s)
}

func ParseRowPageBreak(s string) (RowPageBreak, error) {
	switch v := RowPageBreak(strings.ToLower(strings.TrimSpace(s))); v {
	case RowPageBreakAuto, RowPageBreakAvoid:
		return v, nil
	}
	return "", fmt.Errorf("未知的 rowPageBreak %q", s)
}

// ParseShowHead 还接受布尔值：true 等价 everyPage，false 等价 never。
func ParseShowHead(s string) (ShowHead, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "everypage", "true":
		return ShowHeadEveryPage, nil
	case "firstpage":
		return ShowHeadFirstPage, nil
	case "never", "false":
		return ShowHeadNever, nil
	}
	return "", fmt.Errorf("未知的 showHead %q", s)
}

// ParseShowFoot 还接受布尔值：true 等价 everyPage，false 等价 never。
func ParseShowFoot(s string) (ShowFoot, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "everypage", "true":
		return ShowFootEveryPage, nil
	case "lastpage":
		return ShowFootLastPage, nil
	case "never", "false":
		return ShowFootNever, nil
	}
	return "", fmt.Errorf("未知的 showFoot %q", s)
}

func ParseHorizontalBehaviour(s string) (HorizontalBehaviour, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "immediately":
		return HorizontalImmediately, nil
	case "afterallrows":
		return HorizontalAfterAllRows, nil
	}
	return "", fmt.Errorf("未知的 horizontalPageBreakBehaviour %q", s)
}

func ParseFontStyle(s string) (FontStyle, error) {
	switch v := FontStyle(strings.ToLower(strings.TrimSpace(s))); v {
	case FontNormal, FontBold, FontItalic, FontBoldItalic:
		return v, nil
	}
	return "", fmt.Errorf("未知的 fontStyle %q", s)
}

func ParseHAlign(s string) (HAlign, error) {
	switch v := HAlign(strings.ToLower(strings.TrimSpace(s))); v {
	case AlignLeft, AlignCenter, AlignRight, AlignJustify:
		return v, nil
	}
	return "", fmt.Errorf("未知的 halign %q", s)
}

func ParseVAlign(s string) (VAlign, error) {
	switch v := VAlign(strings.ToLower(strings.TrimSpace(s))); v {
	case AlignTop, AlignMiddle, AlignBottom:
		return v, nil
	}
	return "", fmt.Errorf("未知的 valign %q", s)
}

// ParseOverflow 接受 linebreak/ellipsize/visible/hidden；custom 只能通过 Transform 设置。
func ParseOverflow(s string) (Overflow, error) {
	switch v := Overflow(strings.ToLower(strings.TrimSpace(s))); v {
	case OverflowLinebreak, OverflowEllipsize, OverflowVisible, OverflowHidden:
		return v, nil
	}
	return "", fmt.Errorf("未知的 overflow %q", s)
}
