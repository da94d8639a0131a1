package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestResolveCascadeOrder(t *testing.T) {
	cfg := Config{DocumentStyles: StyleOverrides{Font: Ptr("times"), FontSize: Ptr(12.0)}}
	opts := TableOptions{
		Styles:             StyleOverrides{FontSize: Ptr(9.0), HAlign: Ptr(AlignCenter)},
		BodyStyles:         StyleOverrides{TextColor: Ptr(Named("navy"))},
		AlternateRowStyles: StyleOverrides{TextColor: Ptr(RGB(1, 2, 3))},
		ColumnStyles: map[string]StyleOverrides{
			"id": {HAlign: Ptr(AlignRight)},
			"1":  {HAlign: Ptr(AlignLeft), MinCellWidth: Ptr(12.0)},
		},
	}
	cols := []Column{{Index: 0, DataKey: "id"}, {Index: 1, DataKey: "name"}}
	r := NewStyleResolver(cfg, opts, cols, nil, nil)

	even := r.Resolve(SectionBody, 0, 0, StyleOverrides{})
	assert.Equal(t, "times", even.Font, "文档样式覆盖默认字体")
	assert.Equal(t, 9.0, even.FontSize, "用户表格样式覆盖文档样式")
	assert.Equal(t, Grey(255), even.FillColor, "条纹主题的表格底色")
	assert.Equal(t, Named("navy"), even.TextColor)
	assert.Equal(t, AlignRight, even.HAlign, "按数据键查找列样式")

	odd := r.Resolve(SectionBody, 1, 1, StyleOverrides{})
	assert.Equal(t, Grey(245), odd.FillColor, "奇数行使用主题隔行底色")
	assert.Equal(t, RGB(1, 2, 3), odd.TextColor, "用户隔行样式优先于分区样式")
	assert.Equal(t, AlignLeft, odd.HAlign, "数据键未配置时按序号查找")
	assert.Equal(t, 12.0, odd.MinCellWidth)

	inline := r.Resolve(SectionBody, 0, 1, StyleOverrides{FillColor: Ptr(NoColor()), HAlign: Ptr(AlignJustify)})
	assert.False(t, inline.FillColor.Paints(), "内联 false 表示不填充")
	assert.Equal(t, AlignJustify, inline.HAlign)

	head := r.Resolve(SectionHead, 0, 1, StyleOverrides{})
	assert.Equal(t, RGB(41, 128, 185), head.FillColor, "隔行样式只作用于表体")
	assert.Equal(t, FontBold, head.FontStyle)
}

func TestResolveUndefinedNeverOverrides(t *testing.T) {
	r := NewStyleResolver(Config{}, TableOptions{Theme: Ptr(ThemeNone), Styles: StyleOverrides{FontSize: Ptr(7.0)}}, nil, nil, nil)
	s := r.Resolve(SectionBody, 0, 0, StyleOverrides{HAlign: Ptr(AlignCenter)})
	assert.Equal(t, 7.0, s.FontSize)
	assert.Equal(t, DefaultStyles().Font, s.Font)
	assert.Equal(t, DefaultStyles().CellPadding, s.CellPadding)
	assert.False(t, s.FillColor.Paints())
}

func TestResolveThemes(t *testing.T) {
	grid := NewStyleResolver(Config{}, TableOptions{Theme: Ptr(ThemeGrid)}, nil, nil, nil)
	assert.Equal(t, UniformLineWidth(0.1), grid.Resolve(SectionBody, 0, 0, StyleOverrides{}).LineWidth)
	assert.False(t, grid.Resolve(SectionHead, 0, 0, StyleOverrides{}).LineWidth.Any())
	assert.Equal(t, Grey(255), grid.Resolve(SectionBody, 0, 1, StyleOverrides{}).FillColor, "grid 主题没有隔行底色")

	plain := NewStyleResolver(Config{}, TableOptions{Theme: Ptr(ThemePlain)}, nil, nil, nil)
	assert.Equal(t, FontBold, plain.Resolve(SectionFoot, 0, 0, StyleOverrides{}).FontStyle)
	assert.False(t, plain.Resolve(SectionBody, 0, 0, StyleOverrides{}).FillColor.Paints())
}

func TestResolveFontStyleFallback(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	surface := &stubSurface{styles: map[string][]FontStyle{"courier": {FontNormal, FontItalic}}}
	opts := TableOptions{Styles: StyleOverrides{Font: Ptr("courier")}}
	r := NewStyleResolver(Config{}, opts, nil, surface, zap.New(core))

	assert.Equal(t, FontNormal, r.Resolve(SectionHead, 0, 0, StyleOverrides{}).FontStyle)
	assert.Equal(t, FontItalic, r.Resolve(SectionBody, 0, 0, StyleOverrides{FontStyle: Ptr(FontItalic)}).FontStyle)
	assert.Equal(t, 1, logs.FilterMessage("字体样式不可用，回退到首个可用样式").Len())
}
