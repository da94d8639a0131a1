package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// ColorKind 标识 Color 的取值形态。
type ColorKind int

const (
	ColorNone  ColorKind = iota // 不填充/不描边
	ColorRGB                    // 三元组
	ColorGrey                   // 灰度标量
	ColorNamed                  // 命名颜色或宿主可识别的字符串
)

func (k ColorKind) String() string {
	switch k {
	case ColorRGB:
		return "rgb"
	case ColorGrey:
		return "grey"
	case ColorNamed:
		return "named"
	default:
		return "none"
	}
}

// MarshalText 让调试 JSON 输出可读的种类名。
func (k ColorKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Color 是带显式判别字段的颜色值。零值为 ColorNone，表示不绘制。
type Color struct {
	Kind ColorKind `json:"kind"`
	R    int       `json:"r,omitempty"`
	G    int       `json:"g,omitempty"`
	B    int       `json:"b,omitempty"`
	Grey int       `json:"grey,omitempty"`
	Name string    `json:"name,omitempty"`
}

func RGB(r, g, b int) Color { return Color{Kind: ColorRGB, R: clampByte(r), G: clampByte(g), B: clampByte(b)} }
func Grey(v int) Color      { return Color{Kind: ColorGrey, Grey: clampByte(v)} }
func Named(name string) Color {
	return Color{Kind: ColorNamed, Name: strings.ToLower(strings.TrimSpace(name))}
}
func NoColor() Color { return Color{Kind: ColorNone} }

// Paints 为 false 时对应的填充或描边调用必须被跳过，而不是退化为黑色。
func (c Color) Paints() bool { return c.Kind != ColorNone }

var namedColors = map[string][3]int{
	"black":  {0, 0, 0},
	"white":  {255, 255, 255},
	"red":    {255, 0, 0},
	"green":  {0, 128, 0},
	"blue":   {0, 0, 255},
	"gray":   {128, 128, 128},
	"grey":   {128, 128, 128},
	"silver": {192, 192, 192},
	"navy":   {0, 0, 128},
	"teal":   {0, 128, 128},
	"orange": {255, 165, 0},
	"yellow": {255, 255, 0},
}

// RGBA 把颜色展开为 0-255 的分量；ColorNone 或未知名称返回 ok=false。
func (c Color) RGBA() (r, g, b int, ok bool) {
	switch c.Kind {
	case ColorRGB:
		return c.R, c.G, c.B, true
	case ColorGrey:
		return c.Grey, c.Grey, c.Grey, true
	case ColorNamed:
		if strings.HasPrefix(c.Name, "#") {
			if parsed, err := parseHexColor(c.Name); err == nil {
				return parsed.R, parsed.G, parsed.B, true
			}
			return 0, 0, 0, false
		}
		if v, found := namedColors[c.Name]; found {
			return v[0], v[1], v[2], true
		}
	}
	return 0, 0, 0, false
}

// ParseColor 支持 #rgb/#rrggbb、"r,g,b"、0-255 灰度标量、false/none 以及颜色名称。
func ParseColor(value string) (Color, error) {
	v := strings.TrimSpace(value)
	switch strings.ToLower(v) {
	case "":
		return Color{}, fmt.Errorf("颜色值为空")
	case "false", "none", "transparent":
		return NoColor(), nil
	}
	if strings.HasPrefix(v, "#") {
		return parseHexColor(v)
	}
	if strings.ContainsAny(v, ", ") {
		parts := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' })
		if len(parts) != 3 {
			return Color{}, fmt.Errorf("颜色值 %s 需要三个分量", value)
		}
		var rgb [3]int
		for i, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil {
				return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
			}
			rgb[i] = n
		}
		return RGB(rgb[0], rgb[1], rgb[2]), nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return Grey(n), nil
	}
	return Named(v), nil
}

func parseHexColor(value string) (Color, error) {
	value = strings.TrimPrefix(value, "#")
	switch len(value) {
	case 3:
		return RGB(
			mustHex(strings.Repeat(string(value[0]), 2)),
			mustHex(strings.Repeat(string(value[1]), 2)),
			mustHex(strings.Repeat(string(value[2]), 2)),
		), nil
	case 6, 8:
		return RGB(mustHex(value[0:2]), mustHex(value[2:4]), mustHex(value[4:6])), nil
	default:
		return Color{}, fmt.Errorf("颜色值 #%s 无法解析", value)
	}
}

func mustHex(s string) int {
	v, _ := strconv.ParseInt(s, 16, 64)
	return int(v)
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
