package layout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableOptionsSet(t *testing.T) {
	var o TableOptions
	require.NoError(t, o.Set("theme", "grid"))
	require.NoError(t, o.Set("horizontal_page_break", "true"))
	require.NoError(t, o.Set("horizontalPageBreakRepeat", "id, 0"))
	require.NoError(t, o.Set("margin", "10mm 5"))
	require.NoError(t, o.Set("showFoot", "lastPage"))
	require.NoError(t, o.Set("tableWidth", "wrap"))

	s := o.settings()
	assert.Equal(t, ThemeGrid, s.Theme)
	assert.True(t, s.HorizontalPageBreak)
	assert.Equal(t, []ColumnRef{KeyRef("id"), IndexRef(0)}, s.HorizontalPageBreakRepeat)
	assert.Equal(t, Margin{Top: 10, Right: 5, Bottom: 10, Left: 5}, s.Margin)
	assert.Equal(t, 10.0, s.StartY, "startY 默认取上边距")
	assert.Equal(t, ShowFootLastPage, s.ShowFoot)
	assert.Equal(t, WrapWidth(), s.TableWidth)
}

func TestTableOptionsSetRejects(t *testing.T) {
	var o TableOptions
	require.NoError(t, o.Set("pageBreak", "avoid"))

	err := o.Set("pageBreak", "sometimes")
	var ce ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "pageBreak", ce.Option)
	assert.Equal(t, PageBreakAvoid, *o.PageBreak, "无效值不修改已有选项")

	assert.Error(t, o.Set("colour", "red"))
}

func TestStyleOverridesSet(t *testing.T) {
	var o StyleOverrides
	require.NoError(t, o.Set("fontSize", "9"))
	require.NoError(t, o.Set("fill-color", "#2980b9"))
	require.NoError(t, o.Set("cellPadding", "1 2"))
	require.NoError(t, o.Set("lineWidth", "0.1"))
	require.NoError(t, o.Set("fontStyle", "Bold"))

	s := DefaultStyles()
	o.apply(&s)
	assert.Equal(t, 9.0, s.FontSize)
	assert.Equal(t, RGB(41, 128, 185), s.FillColor)
	assert.Equal(t, Padding{Top: 1, Right: 2, Bottom: 1, Left: 2}, s.CellPadding)
	assert.Equal(t, UniformLineWidth(0.1), s.LineWidth)
	assert.Equal(t, FontBold, s.FontStyle)

	assert.Error(t, o.Set("fontSize", "-1"))
	assert.Error(t, o.Set("overflow", "custom"))
	assert.Error(t, o.Set("border", "1"))
	assert.True(t, IsStyleKey("minCellHeight"))
	assert.False(t, IsStyleKey("colSpan"))
}

func TestSectionAndColumnStyles(t *testing.T) {
	var o TableOptions
	head, ok := o.SectionStyles("head")
	require.True(t, ok)
	require.NoError(t, head.Set("fontStyle", "bold"))
	assert.Equal(t, FontBold, *o.HeadStyles.FontStyle)

	_, ok = o.SectionStyles("caption")
	assert.False(t, ok)

	require.NoError(t, o.SetColumnStyle("id", "cellWidth", "20"))
	assert.Equal(t, FixedWidth(20), *o.ColumnStyles["id"].CellWidth)
	assert.Error(t, o.SetColumnStyle("id", "cellWidth", "-3"))
}
