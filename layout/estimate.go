package layout

import (
	"strings"

	"golang.org/x/text/width"
)

// EstimateSurface 是不依赖字体文件的度量实现：半角字符按字号的一半计宽，
// 东亚宽字符与全角字符计双倍。未提供 Surface 时 Build 使用它。
type EstimateSurface struct{}

const (
	estimateAdvance    = 0.5
	estimateLineFactor = 1.15
)

func runeUnits(r rune) float64 {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}

func (EstimateSurface) TextWidth(text string, style Styles) float64 {
	units := 0.0
	for _, r := range text {
		units += runeUnits(r)
	}
	return units * style.FontSize * PtToMm * estimateAdvance
}

func (EstimateSurface) LineHeight(style Styles) float64 {
	return style.FontSize * PtToMm * estimateLineFactor
}

func (EstimateSurface) FontStyles(string) []FontStyle { return nil }

// SplitText 按空格贪心折行，单个过长的词再按字符拆开。
func (s EstimateSurface) SplitText(text string, maxWidth float64, style Styles) []string {
	if maxWidth <= 0 || s.TextWidth(text, style) <= maxWidth {
		return []string{text}
	}
	var (
		lines []string
		cur   string
	)
	for _, word := range strings.Fields(text) {
		cand := word
		if cur != "" {
			cand = cur + " " + word
		}
		if s.TextWidth(cand, style) <= maxWidth {
			cur = cand
			continue
		}
		if cur != "" {
			lines = append(lines, cur)
			cur = ""
		}
		for s.TextWidth(word, style) > maxWidth {
			var b strings.Builder
			rest := word
			for i, r := range word {
				if b.Len() > 0 && s.TextWidth(b.String()+string(r), style) > maxWidth {
					rest = word[i:]
					break
				}
				b.WriteRune(r)
				rest = ""
			}
			lines = append(lines, b.String())
			word = rest
			if word == "" {
				break
			}
		}
		cur = word
	}
	if cur != "" || len(lines) == 0 {
		lines = append(lines, cur)
	}
	return lines
}
