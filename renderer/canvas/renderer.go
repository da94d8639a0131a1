package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"go.uber.org/zap"

	"github.com/ByLCY/autotable/fonts"
	"github.com/ByLCY/autotable/layout"
	"github.com/ByLCY/autotable/renderer"
)

// DefaultLineHeightFactor 是行高与字号之比。
const DefaultLineHeightFactor = 1.15

// Renderer 基于 github.com/tdewolff/canvas 测量并绘制表格。
// 测量方法可并发调用；绘制状态（页面列表）只属于一次 Render。
type Renderer struct {
	fonts            *fonts.Registry
	lineHeightFactor float64
	meta             Meta
	logger           *zap.Logger

	fontMu   sync.Mutex
	families map[string]*fontFamilyEntry

	page  layout.PageSize
	pages []*canvas.Canvas
	ctx   *canvas.Context
}

var (
	_ renderer.Renderer   = (*Renderer)(nil)
	_ layout.Surface      = (*Renderer)(nil)
	_ layout.Drawer       = (*Renderer)(nil)
	_ layout.BorderDrawer = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Meta 写入 PDF 文档信息。
type Meta struct {
	Title    string
	Subject  string
	Author   string
	Creator  string
	Keywords []string
}

// Options 配置 canvas 渲染器。
type Options struct {
	Fonts            *fonts.Registry
	LineHeightFactor float64
	Meta             Meta
	Logger           *zap.Logger
}

// NewRenderer 使用默认字体注册表创建渲染器。
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions 按选项创建渲染器，零值字段取默认值。
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		fonts:            opts.Fonts,
		lineHeightFactor: opts.LineHeightFactor,
		meta:             opts.Meta,
		logger:           opts.Logger,
		families:         map[string]*fontFamilyEntry{},
	}
	if r.fonts == nil {
		r.fonts = fonts.Default()
	}
	if r.lineHeightFactor <= 0 {
		r.lineHeightFactor = DefaultLineHeightFactor
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r
}

// Render 重放布局计划并输出 PDF 字节。
func (r *Renderer) Render(plan *layout.Plan) ([]byte, error) {
	if plan == nil {
		return nil, fmt.Errorf("布局计划为空")
	}
	if len(plan.Sections) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}
	r.page = layout.PageSize{Width: plan.PageWidth, Height: plan.PageHeight}
	r.pages, r.ctx = nil, nil
	defer func() { r.pages, r.ctx = nil, nil }()

	// 首个分段位于宿主当前页，由渲染器自己开页。
	if !plan.Sections[0].NewPage {
		if err := r.BeginPage(plan.StartPage); err != nil {
			return nil, err
		}
	}
	if err := layout.Replay(plan, r); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, r.page.Width, r.page.Height, nil)
	keywords := strings.Join(r.meta.Keywords, ", ")
	writer.SetInfo(r.meta.Title, r.meta.Subject, keywords, r.meta.Author, r.meta.Creator)
	for i, c := range r.pages {
		if i > 0 {
			writer.NewPage(r.page.Width, r.page.Height)
		}
		c.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	r.logger.Debug("PDF 渲染完成", zap.Int("pages", len(r.pages)), zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// BeginPage 实现 layout.Drawer，开始新的一页画布。
func (r *Renderer) BeginPage(page int) error {
	if r.page.Width <= 0 || r.page.Height <= 0 {
		return fmt.Errorf("页面尺寸无效: %gx%g", r.page.Width, r.page.Height)
	}
	c := canvas.New(r.page.Width, r.page.Height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点
	r.pages = append(r.pages, c)
	r.ctx = ctx
	r.logger.Debug("开始新页", zap.Int("page", page))
	return nil
}

// DrawCell 实现 layout.Drawer：先填充背景，再描边，最后绘制文本。
func (r *Renderer) DrawCell(geom layout.Geometry, style layout.Styles, lines []string) error {
	if r.ctx == nil {
		return fmt.Errorf("绘制单元格前未开始页面")
	}
	ctx := r.ctx
	if fill, ok := toColor(style.FillColor); ok {
		ctx.SetFillColor(fill)
		ctx.SetStrokeColor(transparent)
		ctx.DrawPath(geom.X, geom.Y, canvas.Rectangle(geom.Width, geom.Height))
	}
	if stroke, ok := toColor(style.LineColor); ok && style.LineWidth.Any() {
		r.drawEdges(geom, style.LineWidth, stroke)
	}
	if len(lines) == 0 {
		return nil
	}
	ink, ok := toColor(style.TextColor)
	if !ok {
		return nil
	}
	face, err := r.face(style, ink)
	if err != nil {
		return err
	}
	pad := style.CellPadding
	lh := r.LineHeight(style)
	content := float64(len(lines)) * lh

	top := geom.Y + pad.Top
	switch style.VAlign {
	case layout.AlignMiddle:
		top = geom.Y + (geom.Height-content)/2
	case layout.AlignBottom:
		top = geom.Y + geom.Height - pad.Bottom - content
	}

	align, anchorX := canvas.Left, geom.X+pad.Left
	switch style.HAlign {
	case layout.AlignCenter:
		align, anchorX = canvas.Center, geom.X+geom.Width/2
	case layout.AlignRight:
		align, anchorX = canvas.Right, geom.X+geom.Width-pad.Right
	}

	// 基线：行顶加上字体上升部，并在行高内垂直居中字形。
	m := face.Metrics()
	offset := m.Ascent + math.Max(lh-(m.Ascent+m.Descent), 0)/2
	for i, line := range lines {
		if line == "" {
			continue
		}
		ctx.DrawText(anchorX, top+float64(i)*lh+offset, canvas.NewTextLine(face, line, align))
	}
	return nil
}

// DrawTableBorder 实现 layout.BorderDrawer。
func (r *Renderer) DrawTableBorder(geom layout.Geometry, width float64, col layout.Color) error {
	if r.ctx == nil {
		return fmt.Errorf("绘制外框前未开始页面")
	}
	stroke, ok := toColor(col)
	if !ok || width <= 0 {
		return nil
	}
	r.ctx.SetFillColor(transparent)
	r.ctx.SetStrokeColor(stroke)
	r.ctx.SetStrokeWidth(width)
	r.ctx.DrawPath(geom.X, geom.Y, canvas.Rectangle(geom.Width, geom.Height))
	return nil
}

// drawEdges 按各边线宽分别描边，线宽为 0 的边跳过。
func (r *Renderer) drawEdges(g layout.Geometry, w layout.LineWidths, stroke color.Color) {
	edges := []struct {
		width          float64
		x1, y1, x2, y2 float64
	}{
		{w.Top, g.X, g.Y, g.X + g.Width, g.Y},
		{w.Right, g.X + g.Width, g.Y, g.X + g.Width, g.Y + g.Height},
		{w.Bottom, g.X, g.Y + g.Height, g.X + g.Width, g.Y + g.Height},
		{w.Left, g.X, g.Y, g.X, g.Y + g.Height},
	}
	r.ctx.SetFillColor(transparent)
	r.ctx.SetStrokeColor(stroke)
	for _, e := range edges {
		if e.width <= 0 {
			continue
		}
		r.ctx.SetStrokeWidth(e.width)
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(e.x2-e.x1, e.y2-e.y1)
		r.ctx.DrawPath(e.x1, e.y1, p)
	}
}

// TextWidth 实现 layout.Surface，返回 mm。
func (r *Renderer) TextWidth(text string, style layout.Styles) float64 {
	face, err := r.face(style, canvas.Black)
	if err != nil {
		return layout.EstimateSurface{}.TextWidth(text, style)
	}
	return face.TextWidth(text)
}

// LineHeight 实现 layout.Surface：字号（pt）换算为 mm 后乘以行高系数。
func (r *Renderer) LineHeight(style layout.Styles) float64 {
	return style.FontSize * layout.PtToMm * r.lineHeightFactor
}

// SplitText 实现 layout.Surface，使用贪心换行算法。
func (r *Renderer) SplitText(text string, width float64, style layout.Styles) []string {
	face, err := r.face(style, canvas.Black)
	if err != nil {
		return layout.EstimateSurface{}.SplitText(text, width, style)
	}
	return greedyWrap(text, width, face.TextWidth)
}

// FontStyles 实现 layout.Surface。
func (r *Renderer) FontStyles(font string) []layout.FontStyle {
	styles := r.fonts.Styles(font)
	if styles == nil {
		return nil
	}
	out := make([]layout.FontStyle, 0, len(styles))
	for _, s := range styles {
		out = append(out, layout.FontStyle(s))
	}
	return out
}

func (r *Renderer) face(style layout.Styles, col color.Color) (*canvas.FontFace, error) {
	family, fs, err := r.ensureFontFamily(style.Font, style.FontStyle)
	if err != nil {
		return nil, err
	}
	return family.Face(style.FontSize, col, fs, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(name string, style layout.FontStyle) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := strings.ToLower(name) + "|" + string(style)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.families[key]; ok {
		return entry.family, entry.style, nil
	}
	fs := parseFontStyle(style)
	data, err := r.fonts.Load(name, string(style))
	if err != nil {
		r.logger.Debug("字体不可用，回退到默认字体", zap.String("font", name), zap.String("style", string(style)), zap.Error(err))
		if data, err = r.fonts.Load("helvetica", fonts.StyleNormal); err != nil {
			return nil, canvas.FontRegular, err
		}
		fs = canvas.FontRegular
	}
	family := canvas.NewFontFamily(key)
	if err := family.LoadFont(data, 0, fs); err != nil {
		return nil, canvas.FontRegular, fmt.Errorf("加载字体 %s 失败: %w", name, err)
	}
	r.families[key] = &fontFamilyEntry{family: family, style: fs}
	return family, fs, nil
}

func parseFontStyle(style layout.FontStyle) canvas.FontStyle {
	switch style {
	case layout.FontBold:
		return canvas.FontBold
	case layout.FontItalic:
		return canvas.FontRegular | canvas.FontItalic
	case layout.FontBoldItalic:
		return canvas.FontBold | canvas.FontItalic
	}
	return canvas.FontRegular
}

var transparent = color.RGBA{0, 0, 0, 0}

// toColor 把布局颜色转为 canvas 颜色；不绘制的颜色返回 ok=false。
func toColor(c layout.Color) (color.Color, bool) {
	if !c.Paints() {
		return nil, false
	}
	red, green, blue, ok := c.RGBA()
	if !ok {
		return nil, false
	}
	return canvas.RGBA(float64(red)/255.0, float64(green)/255.0, float64(blue)/255.0, 1.0), true
}

// greedyWrap 优先在空白处分割，单词超过宽度时在词内拆分。
// 行首与行尾的空白会被去掉；宽度单位为 mm。
func greedyWrap(content string, width float64, measure func(string) float64) []string {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}

	var lines []string
	var builder strings.Builder
	current := 0.0

	emit := func() {
		lines = append(lines, strings.TrimRightFunc(builder.String(), unicode.IsSpace))
		builder.Reset()
		current = 0
	}
	appendToken := func(token string, w float64) {
		builder.WriteString(token)
		current += w
	}

	for _, token := range tokenizeContent(content) {
		blank := strings.TrimSpace(token) == ""
		if blank && builder.Len() == 0 && len(lines) > 0 {
			continue
		}
		w := measure(token)
		if current > 0 && current+w > limit+1e-9 {
			if blank {
				emit()
				continue
			}
			emit()
		}
		if w <= limit+1e-9 {
			appendToken(token, w)
			continue
		}
		for _, chunk := range splitTokenByWidth(token, limit, measure) {
			cw := measure(chunk)
			if current > 0 && current+cw > limit+1e-9 {
				emit()
			}
			appendToken(chunk, cw)
		}
	}
	if builder.Len() > 0 || len(lines) == 0 {
		emit()
	}
	return lines
}

func tokenizeContent(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}

	for _, r := range s {
		if r == '\r' || r == '\n' {
			continue
		}
		isSpace := unicode.IsSpace(r)
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

func splitTokenByWidth(token string, limit float64, measure func(string) float64) []string {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []string{token}
	}
	var parts []string
	var runes []rune
	for _, r := range token {
		runes = append(runes, r)
		if len(runes) > 1 && measure(string(runes)) > limit+1e-9 {
			parts = append(parts, string(runes[:len(runes)-1]))
			runes = runes[len(runes)-1:]
		}
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
