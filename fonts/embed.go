package fonts

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// 样式名与 layout.FontStyle 的取值保持一致。
const (
	StyleNormal     = "normal"
	StyleBold       = "bold"
	StyleItalic     = "italic"
	StyleBoldItalic = "bolditalic"
)

// Registry 按字体族与样式保存 TTF 数据，可并发读取。
type Registry struct {
	mu       sync.RWMutex
	families map[string]map[string][]byte
	aliases  map[string]string
}

// NewRegistry 返回预装 Go 字体的注册表：
// helvetica/times/go 映射到 Go 比例字体，courier/mono 映射到 Go Mono。
func NewRegistry() *Registry {
	r := &Registry{
		families: map[string]map[string][]byte{},
		aliases:  map[string]string{},
	}
	r.families["go"] = map[string][]byte{
		StyleNormal:     goregular.TTF,
		StyleBold:       gobold.TTF,
		StyleItalic:     goitalic.TTF,
		StyleBoldItalic: gobolditalic.TTF,
	}
	r.families["gomono"] = map[string][]byte{
		StyleNormal:     gomono.TTF,
		StyleBold:       gomonobold.TTF,
		StyleItalic:     gomonoitalic.TTF,
		StyleBoldItalic: gomonobolditalic.TTF,
	}
	for _, name := range []string{"helvetica", "times", "sans", "serif"} {
		r.aliases[name] = "go"
	}
	for _, name := range []string{"courier", "mono", "monospace"} {
		r.aliases[name] = "gomono"
	}
	return r
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default 返回进程级共享的注册表。
func Default() *Registry {
	defaultOnce.Do(func() { defaultRegistry = NewRegistry() })
	return defaultRegistry
}

func (r *Registry) canonical(family string) string {
	name := strings.ToLower(strings.TrimSpace(family))
	if alias, ok := r.aliases[name]; ok {
		return alias
	}
	return name
}

// Register 为字体族登记一个样式的字体数据，覆盖同名样式。
func (r *Registry) Register(family, style string, data []byte) error {
	name := strings.ToLower(strings.TrimSpace(family))
	if name == "" {
		return fmt.Errorf("字体族名称不能为空")
	}
	if len(data) == 0 {
		return fmt.Errorf("字体 %s/%s 数据为空", family, style)
	}
	style = normalizeStyle(style)
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.aliases, name)
	if r.families[name] == nil {
		r.families[name] = map[string][]byte{}
	}
	r.families[name][style] = data
	return nil
}

// RegisterFile 从磁盘读取字体文件并登记。
func (r *Registry) RegisterFile(family, style, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取字体文件 %s 失败: %w", path, err)
	}
	return r.Register(family, style, data)
}

// Load 返回字体族指定样式的数据。
func (r *Registry) Load(family, style string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	styles, ok := r.families[r.canonical(family)]
	if !ok {
		return nil, fmt.Errorf("未知字体族 %s", family)
	}
	data, ok := styles[normalizeStyle(style)]
	if !ok {
		return nil, fmt.Errorf("字体族 %s 不支持样式 %s", family, style)
	}
	return data, nil
}

// Styles 列出字体族可用的样式，未知字体族返回 nil。
func (r *Registry) Styles(family string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	styles, ok := r.families[r.canonical(family)]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(styles))
	for s := range styles {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Load 从默认注册表读取字体数据。
func Load(family, style string) ([]byte, error) { return Default().Load(family, style) }

func normalizeStyle(style string) string {
	s := strings.ToLower(strings.TrimSpace(style))
	s = strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
	switch s {
	case "", "regular", "normal":
		return StyleNormal
	case "italicbold", "bolditalic":
		return StyleBoldItalic
	}
	return s
}
