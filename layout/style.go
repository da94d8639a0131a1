package layout

import (
	"fmt"
	"strings"
)

// 该文件定义单元格样式记录、部分样式覆盖以及内置主题。

// FontStyle 对应宿主字体的样式变体。
type FontStyle string

const (
	FontNormal     FontStyle = "normal"
	FontBold       FontStyle = "bold"
	FontItalic     FontStyle = "italic"
	FontBoldItalic FontStyle = "bolditalic"
)

// HAlign 为单元格内文本的水平对齐方式。
type HAlign string

const (
	AlignLeft    HAlign = "left"
	AlignCenter  HAlign = "center"
	AlignRight   HAlign = "right"
	AlignJustify HAlign = "justify"
)

// VAlign 为单元格内文本的垂直对齐方式。
type VAlign string

const (
	AlignTop    VAlign = "top"
	AlignMiddle VAlign = "middle"
	AlignBottom VAlign = "bottom"
)

// Overflow 决定文本超出单元格宽度时的处理方式。
type Overflow string

const (
	OverflowLinebreak Overflow = "linebreak"
	OverflowEllipsize Overflow = "ellipsize"
	OverflowVisible   Overflow = "visible"
	OverflowHidden    Overflow = "hidden"
	OverflowCustom    Overflow = "custom"
)

// TransformFunc 是 overflow=custom 时的文本变换，入参为原始行与可用宽度（mm）。
type TransformFunc func(lines []string, width float64) []string

// WidthKind 区分列宽模式。
type WidthKind int

const (
	WidthAuto WidthKind = iota
	WidthWrap
	WidthFixed
)

// CellWidth 是列宽声明：auto、wrap 或固定数值（mm）。
type CellWidth struct {
	Kind  WidthKind `json:"kind"`
	Value float64   `json:"value,omitempty"`
}

func AutoWidth() CellWidth           { return CellWidth{Kind: WidthAuto} }
func WrapWidth() CellWidth           { return CellWidth{Kind: WidthWrap} }
func FixedWidth(mm float64) CellWidth { return CellWidth{Kind: WidthFixed, Value: mm} }

func (w CellWidth) String() string {
	switch w.Kind {
	case WidthWrap:
		return "wrap"
	case WidthFixed:
		return fmt.Sprintf("%gmm", w.Value)
	default:
		return "auto"
	}
}

// ParseCellWidth 接受 auto、wrap 或长度值。
func ParseCellWidth(value string) (CellWidth, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "auto", "":
		return AutoWidth(), nil
	case "wrap":
		return WrapWidth(), nil
	}
	mm, err := ParseMM(value)
	if err != nil {
		return CellWidth{}, fmt.Errorf("cellWidth: %w", err)
	}
	if mm < 0 {
		return CellWidth{}, fmt.Errorf("cellWidth 不能为负数: %s", value)
	}
	return FixedWidth(mm), nil
}

// Padding 描述四边内边距（mm）。
type Padding struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

func UniformPadding(v float64) Padding { return Padding{Top: v, Right: v, Bottom: v, Left: v} }

func (p Padding) Horizontal() float64 { return p.Left + p.Right }
func (p Padding) Vertical() float64   { return p.Top + p.Bottom }

// ParsePadding 按 CSS 语义解析 1/2/3/4 个长度值。
func ParsePadding(value string) (Padding, error) {
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == ' ' || r == ',' })
	vals := make([]float64, 0, 4)
	for _, p := range parts {
		mm, err := ParseMM(p)
		if err != nil {
			return Padding{}, err
		}
		vals = append(vals, mm)
	}
	switch len(vals) {
	case 1:
		return UniformPadding(vals[0]), nil
	case 2:
		return Padding{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}, nil
	case 3:
		return Padding{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}, nil
	case 4:
		return Padding{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}, nil
	default:
		return Padding{}, fmt.Errorf("无法解析内边距 %q", value)
	}
}

// LineWidths 描述单元格四边线宽（mm），0 表示不画该边。
type LineWidths Padding

func UniformLineWidth(v float64) LineWidths { return LineWidths(UniformPadding(v)) }

// Any 报告是否至少有一条边需要绘制。
func (l LineWidths) Any() bool { return l.Top > 0 || l.Right > 0 || l.Bottom > 0 || l.Left > 0 }

// Styles 是层叠合并后的具体样式记录。
type Styles struct {
	Font          string        `json:"font"`
	FontStyle     FontStyle     `json:"fontStyle"`
	FontSize      float64       `json:"fontSize"` // pt
	Overflow      Overflow      `json:"overflow"`
	Transform     TransformFunc `json:"-"`
	FillColor     Color         `json:"fillColor"`
	TextColor     Color         `json:"textColor"`
	LineColor     Color         `json:"lineColor"`
	LineWidth     LineWidths    `json:"lineWidth"`
	HAlign        HAlign        `json:"halign"`
	VAlign        VAlign        `json:"valign"`
	CellPadding   Padding       `json:"cellPadding"`
	CellWidth     CellWidth     `json:"cellWidth"`
	MinCellHeight float64       `json:"minCellHeight"`
	MinCellWidth  float64       `json:"minCellWidth"`
}

// StyleOverrides 是部分样式：nil 字段表示未定义，合并时不会覆盖已定义的值。
type StyleOverrides struct {
	Font          *string
	FontStyle     *FontStyle
	FontSize      *float64
	Overflow      *Overflow
	Transform     TransformFunc
	FillColor     *Color
	TextColor     *Color
	LineColor     *Color
	LineWidth     *LineWidths
	HAlign        *HAlign
	VAlign        *VAlign
	CellPadding   *Padding
	CellWidth     *CellWidth
	MinCellHeight *float64
	MinCellWidth  *float64
}

// Ptr 便于构造 StyleOverrides 字面量。
func Ptr[T any](v T) *T { return &v }

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// IsZero 报告是否没有任何已定义字段。
func (o StyleOverrides) IsZero() bool {
	return o.Font == nil && o.FontStyle == nil && o.FontSize == nil && o.Overflow == nil &&
		o.Transform == nil && o.FillColor == nil && o.TextColor == nil && o.LineColor == nil &&
		o.LineWidth == nil && o.HAlign == nil && o.VAlign == nil && o.CellPadding == nil &&
		o.CellWidth == nil && o.MinCellHeight == nil && o.MinCellWidth == nil
}

// Merge 返回 o 与 over 的合并结果，over 中已定义的字段优先。
func (o StyleOverrides) Merge(over StyleOverrides) StyleOverrides {
	out := o.clone()
	if over.Font != nil {
		out.Font = clonePtr(over.Font)
	}
	if over.FontStyle != nil {
		out.FontStyle = clonePtr(over.FontStyle)
	}
	if over.FontSize != nil {
		out.FontSize = clonePtr(over.FontSize)
	}
	if over.Overflow != nil {
		out.Overflow = clonePtr(over.Overflow)
	}
	if over.Transform != nil {
		out.Transform = over.Transform
	}
	if over.FillColor != nil {
		out.FillColor = clonePtr(over.FillColor)
	}
	if over.TextColor != nil {
		out.TextColor = clonePtr(over.TextColor)
	}
	if over.LineColor != nil {
		out.LineColor = clonePtr(over.LineColor)
	}
	if over.LineWidth != nil {
		out.LineWidth = clonePtr(over.LineWidth)
	}
	if over.HAlign != nil {
		out.HAlign = clonePtr(over.HAlign)
	}
	if over.VAlign != nil {
		out.VAlign = clonePtr(over.VAlign)
	}
	if over.CellPadding != nil {
		out.CellPadding = clonePtr(over.CellPadding)
	}
	if over.CellWidth != nil {
		out.CellWidth = clonePtr(over.CellWidth)
	}
	if over.MinCellHeight != nil {
		out.MinCellHeight = clonePtr(over.MinCellHeight)
	}
	if over.MinCellWidth != nil {
		out.MinCellWidth = clonePtr(over.MinCellWidth)
	}
	return out
}

func (o StyleOverrides) clone() StyleOverrides {
	return StyleOverrides{
		Font:          clonePtr(o.Font),
		FontStyle:     clonePtr(o.FontStyle),
		FontSize:      clonePtr(o.FontSize),
		Overflow:      clonePtr(o.Overflow),
		Transform:     o.Transform,
		FillColor:     clonePtr(o.FillColor),
		TextColor:     clonePtr(o.TextColor),
		LineColor:     clonePtr(o.LineColor),
		LineWidth:     clonePtr(o.LineWidth),
		HAlign:        clonePtr(o.HAlign),
		VAlign:        clonePtr(o.VAlign),
		CellPadding:   clonePtr(o.CellPadding),
		CellWidth:     clonePtr(o.CellWidth),
		MinCellHeight: clonePtr(o.MinCellHeight),
		MinCellWidth:  clonePtr(o.MinCellWidth),
	}
}

// apply 把已定义字段写入具体样式。
func (o StyleOverrides) apply(s *Styles) {
	if o.Font != nil {
		s.Font = *o.Font
	}
	if o.FontStyle != nil {
		s.FontStyle = *o.FontStyle
	}
	if o.FontSize != nil {
		s.FontSize = *o.FontSize
	}
	if o.Overflow != nil {
		s.Overflow = *o.Overflow
	}
	if o.Transform != nil {
		s.Transform = o.Transform
	}
	if o.FillColor != nil {
		s.FillColor = *o.FillColor
	}
	if o.TextColor != nil {
		s.TextColor = *o.TextColor
	}
	if o.LineColor != nil {
		s.LineColor = *o.LineColor
	}
	if o.LineWidth != nil {
		s.LineWidth = *o.LineWidth
	}
	if o.HAlign != nil {
		s.HAlign = *o.HAlign
	}
	if o.VAlign != nil {
		s.VAlign = *o.VAlign
	}
	if o.CellPadding != nil {
		s.CellPadding = *o.CellPadding
	}
	if o.CellWidth != nil {
		s.CellWidth = *o.CellWidth
	}
	if o.MinCellHeight != nil {
		s.MinCellHeight = *o.MinCellHeight
	}
	if o.MinCellWidth != nil {
		s.MinCellWidth = *o.MinCellWidth
	}
}

// DefaultStyles 返回内置默认样式（层叠的最底层）。
func DefaultStyles() Styles {
	return Styles{
		Font:        "helvetica",
		FontStyle:   FontNormal,
		FontSize:    10,
		Overflow:    OverflowLinebreak,
		FillColor:   NoColor(),
		TextColor:   Grey(20),
		LineColor:   Grey(200),
		HAlign:      AlignLeft,
		VAlign:      AlignTop,
		CellPadding: UniformPadding(5 * PtToMm),
		CellWidth:   AutoWidth(),
	}
}

// themeStyles 是主题在各层级提供的样式。
type themeStyles struct {
	table, head, body, foot, alternateRow StyleOverrides
}

func themeFor(t Theme) themeStyles {
	switch t {
	case ThemeStriped:
		head := StyleOverrides{TextColor: Ptr(Grey(255)), FillColor: Ptr(RGB(41, 128, 185)), FontStyle: Ptr(FontBold)}
		return themeStyles{
			table:        StyleOverrides{FillColor: Ptr(Grey(255)), TextColor: Ptr(Grey(80)), FontStyle: Ptr(FontNormal)},
			head:         head,
			foot:         head.clone(),
			alternateRow: StyleOverrides{FillColor: Ptr(Grey(245))},
		}
	case ThemeGrid:
		head := StyleOverrides{
			TextColor: Ptr(Grey(255)),
			FillColor: Ptr(RGB(26, 188, 156)),
			FontStyle: Ptr(FontBold),
			LineWidth: Ptr(UniformLineWidth(0)),
		}
		return themeStyles{
			table: StyleOverrides{
				FillColor: Ptr(Grey(255)),
				TextColor: Ptr(Grey(80)),
				FontStyle: Ptr(FontNormal),
				LineWidth: Ptr(UniformLineWidth(0.1)),
			},
			head: head,
			foot: head.clone(),
		}
	case ThemePlain:
		return themeStyles{
			head: StyleOverrides{FontStyle: Ptr(FontBold)},
			foot: StyleOverrides{FontStyle: Ptr(FontBold)},
		}
	default:
		return themeStyles{}
	}
}
