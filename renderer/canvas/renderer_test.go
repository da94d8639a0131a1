package canvasrenderer

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/autotable/layout"
)

// runeWidth 让每个字符宽 1mm，便于验证换行逻辑。
func runeWidth(s string) float64 { return float64(len([]rune(s))) }

func TestGreedyWrapBreaksAtSpaces(t *testing.T) {
	lines := greedyWrap("hello world again", 11, runeWidth)
	assert.Equal(t, []string{"hello world", "again"}, lines)
}

func TestGreedyWrapSplitsLongWords(t *testing.T) {
	lines := greedyWrap("abcdefghij xy", 4, runeWidth)
	assert.Equal(t, []string{"abcd", "efgh", "ij", "xy"}, lines)
}

func TestGreedyWrapKeepsEmptyLine(t *testing.T) {
	assert.Equal(t, []string{""}, greedyWrap("", 10, runeWidth))
	assert.Equal(t, []string{"a  b"}, greedyWrap("a  b", 0, runeWidth), "宽度不大于 0 时不折行")
}

// 当文本宽度与容器宽度恰好相等时不应产生额外的行。
func TestNoExtraLineWhenEqualWidth(t *testing.T) {
	r := NewRenderer()
	style := layout.DefaultStyles()
	first := "SAMPLE-A"
	limit := r.TextWidth(first, style)
	require.Greater(t, limit, 0.0)

	assert.Equal(t, []string{first}, r.SplitText(first, limit, style))
	assert.Len(t, r.SplitText(first+" "+first, limit, style), 2)
}

func TestTextWidthScalesWithFontSize(t *testing.T) {
	r := NewRenderer()
	small := layout.DefaultStyles()
	large := small
	large.FontSize = small.FontSize * 2

	w1 := r.TextWidth("hello", small)
	w2 := r.TextWidth("hello", large)
	assert.InEpsilon(t, 2*w1, w2, 1e-3)

	unknown := small
	unknown.Font = "comic"
	assert.InDelta(t, w1, r.TextWidth("hello", unknown), 1e-6, "未知字体回退到默认字体")
}

func TestLineHeightAndFontStyles(t *testing.T) {
	r := NewRendererWithOptions(Options{LineHeightFactor: 1.5})
	style := layout.DefaultStyles()
	assert.InDelta(t, style.FontSize*layout.PtToMm*1.5, r.LineHeight(style), 1e-9)

	assert.ElementsMatch(t,
		[]layout.FontStyle{layout.FontNormal, layout.FontBold, layout.FontItalic, layout.FontBoldItalic},
		r.FontStyles("helvetica"))
	assert.Nil(t, r.FontStyles("comic"))
}

func TestRenderProducesPDF(t *testing.T) {
	r := NewRendererWithOptions(Options{Meta: Meta{Title: "Report"}})
	in := layout.TableInput{
		Columns: []layout.ColumnInput{{DataKey: "id", Header: "ID"}, {DataKey: "name", Header: "Name"}},
	}
	for i := range 120 {
		in.Body = append(in.Body, layout.RowInput{Cells: []layout.CellInput{
			{Text: fmt.Sprint(i)},
			{Text: fmt.Sprintf("row %d with some text", i)},
		}})
	}
	plan, err := layout.Build(in, layout.TableOptions{}, layout.BuildOptions{
		Surface: r,
		Page:    layout.PageSize{Width: 210, Height: 297},
	})
	require.NoError(t, err)
	require.Greater(t, plan.PageCount, 1)

	out, err := r.Render(plan)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "输出应为 PDF")
}

func TestRenderRejectsEmptyPlan(t *testing.T) {
	r := NewRenderer()
	_, err := r.Render(nil)
	assert.Error(t, err)
	_, err = r.Render(&layout.Plan{PageWidth: 210, PageHeight: 297})
	assert.Error(t, err)
}

func TestDrawCellRequiresPage(t *testing.T) {
	r := NewRenderer()
	err := r.DrawCell(layout.Geometry{Width: 10, Height: 5}, layout.DefaultStyles(), []string{"x"})
	assert.Error(t, err)
	assert.Error(t, r.BeginPage(1), "页面尺寸未知时无法开始页面")
}

func TestToColor(t *testing.T) {
	_, ok := toColor(layout.NoColor())
	assert.False(t, ok)
	_, ok = toColor(layout.Named("nosuch"))
	assert.False(t, ok)
	_, ok = toColor(layout.Grey(200))
	assert.True(t, ok)
}
