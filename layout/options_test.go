package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	cases := map[string]Color{
		"#2980b9":    RGB(41, 128, 185),
		"#fff":       RGB(255, 255, 255),
		"26,188,156": RGB(26, 188, 156),
		"26 188 156": RGB(26, 188, 156),
		"245":        Grey(245),
		"false":      NoColor(),
		"none":       NoColor(),
		"Navy":       Named("navy"),
		"300":        Grey(255),
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "#12", "1,2"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}

	r, g, b, ok := Named("navy").RGBA()
	assert.True(t, ok)
	assert.Equal(t, []int{0, 0, 128}, []int{r, g, b})
	_, _, _, ok = NoColor().RGBA()
	assert.False(t, ok)
}

func TestParseCellWidthAndPadding(t *testing.T) {
	w, err := ParseCellWidth("wrap")
	require.NoError(t, err)
	assert.Equal(t, WrapWidth(), w)
	w, err = ParseCellWidth("2cm")
	require.NoError(t, err)
	assert.Equal(t, FixedWidth(20), w)
	_, err = ParseCellWidth("-3")
	assert.Error(t, err)

	p, err := ParsePadding("1 2")
	require.NoError(t, err)
	assert.Equal(t, Padding{Top: 1, Right: 2, Bottom: 1, Left: 2}, p)
	p, err = ParsePadding("1,2,3")
	require.NoError(t, err)
	assert.Equal(t, Padding{Top: 1, Right: 2, Bottom: 3, Left: 2}, p)
	_, err = ParsePadding("1 2 3 4 5")
	assert.Error(t, err)
}

func TestParseEnums(t *testing.T) {
	sh, err := ParseShowHead("true")
	require.NoError(t, err)
	assert.Equal(t, ShowHeadEveryPage, sh)
	sf, err := ParseShowFoot("lastPage")
	require.NoError(t, err)
	assert.Equal(t, ShowFootLastPage, sf)
	_, err = ParseShowFoot("firstPage")
	assert.Error(t, err, "firstPage 只适用于表头")

	th, err := ParseTheme("")
	require.NoError(t, err)
	assert.Equal(t, ThemeNone, th)
	hb, err := ParseHorizontalBehaviour("afterAllRows")
	require.NoError(t, err)
	assert.Equal(t, HorizontalAfterAllRows, hb)
	_, err = ParseOverflow("custom")
	assert.Error(t, err)
	assert.Equal(t, KeyRef("id"), ParseColumnRef("id"))
	assert.Equal(t, IndexRef(3), ParseColumnRef(" 3 "))
}

func TestTableOptionsMergeAndSettings(t *testing.T) {
	global := TableOptions{
		Theme:        Ptr(ThemeGrid),
		Margin:       Ptr(Margin{Top: 5, Right: 5, Bottom: 5, Left: 5}),
		Styles:       StyleOverrides{FontSize: Ptr(8.0), Font: Ptr("times")},
		ColumnStyles: map[string]StyleOverrides{"0": {HAlign: Ptr(AlignRight)}},
	}
	table := TableOptions{
		PageBreak:    Ptr(PageBreakAvoid),
		Styles:       StyleOverrides{FontSize: Ptr(11.0)},
		ColumnStyles: map[string]StyleOverrides{"0": {VAlign: Ptr(AlignBottom)}},
	}
	merged := global.Merge(table)
	assert.Equal(t, 11.0, *merged.Styles.FontSize)
	assert.Equal(t, "times", *merged.Styles.Font)
	assert.Equal(t, AlignRight, *merged.ColumnStyles["0"].HAlign)
	assert.Equal(t, AlignBottom, *merged.ColumnStyles["0"].VAlign)

	*global.Styles.FontSize = 99
	assert.Equal(t, 11.0, *merged.Styles.FontSize, "合并结果与输入互不共享")

	s := merged.settings()
	assert.Equal(t, ThemeGrid, s.Theme)
	assert.Equal(t, PageBreakAvoid, s.PageBreak)
	assert.Equal(t, 5.0, s.StartY, "未设置 startY 时取上边距")
	assert.Equal(t, ShowHeadEveryPage, s.ShowHead)
	assert.Equal(t, HorizontalAfterAllRows, s.HorizontalPageBreakBehaviour)
}
