package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateSurfaceWideRunes(t *testing.T) {
	s := EstimateSurface{}
	st := Styles{FontSize: 10}
	narrow := s.TextWidth("ab", st)
	assert.InDelta(t, 2*10*PtToMm*0.5, narrow, 1e-9)
	assert.InDelta(t, 2*narrow, s.TextWidth("表格", st), 1e-9, "东亚宽字符按双倍计宽")
}

func TestEstimateSurfaceSplitText(t *testing.T) {
	s := EstimateSurface{}
	st := Styles{FontSize: 10}
	unit := s.TextWidth("a", st)

	assert.Equal(t, []string{"aa bb", "cc"}, s.SplitText("aa bb cc", 5.5*unit, st))
	assert.Equal(t, []string{"aaa", "aaa", "a"}, s.SplitText("aaaaaaa", 3.5*unit, st), "过长的词按字符拆分")
	assert.Equal(t, []string{""}, s.SplitText("", 3*unit, st))
}
