package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 若 data 为空或路径不存在，则返回原占位符。
func Interpolate(text string, data any) string {
	if data == nil {
		return text
	}
	return interpolate(text, func(path string) (any, bool) { return resolvePath(data, path) })
}

// Lookup 按 a.b[0].c 形式的路径读取 data 中的值。
func Lookup(data any, path string) (any, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return data, data != nil
	}
	return resolvePath(data, path)
}

// Scope 是行模板的绑定作用域：先在当前元素中查找，找不到再回退到根数据。
// 路径 "." 表示当前元素本身。
type Scope struct {
	Item any
	Root any
}

// Lookup 在作用域内解析路径。
func (s Scope) Lookup(path string) (any, bool) {
	path = strings.TrimSpace(path)
	if path == "." {
		return s.Item, s.Item != nil
	}
	if s.Item != nil {
		if v, ok := resolvePath(s.Item, path); ok {
			return v, true
		}
	}
	if s.Root != nil {
		return resolvePath(s.Root, path)
	}
	return nil, false
}

// Interpolate 使用作用域替换文本中的占位符。
func (s Scope) Interpolate(text string) string {
	return interpolate(text, s.Lookup)
}

func interpolate(text string, lookup func(string) (any, bool)) string {
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path := strings.TrimSpace(groups[1])
		if path == "" {
			return match
		}
		if val, ok := lookup(path); ok {
			return format(val)
		}
		return match
	})
}

// format 把绑定值转为文本；nil 输出为空串，整数值的浮点数不带小数。
func format(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []string) {
	name := segment
	indexes := []string{}
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 {
			if rest[0] != '[' {
				break
			}
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]interface{}:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []interface{}:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}

// Items 把绑定值视为数组，支持 []any 与 []map[string]any。
func Items(v any) ([]any, bool) {
	switch c := v.(type) {
	case []interface{}:
		return c, true
	case []map[string]interface{}:
		out := make([]any, len(c))
		for i, m := range c {
			out[i] = m
		}
		return out, true
	default:
		return nil, false
	}
}
