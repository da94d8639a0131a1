package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// 该文件把文本形式的键值（来自 DSL 或配置文件）写入选项与样式。
// 键名大小写不敏感，并忽略 '-' 与 '_'，因此 fontSize、font_size 与 fontsize 等价。

func normalizeKey(key string) string {
	return strings.NewReplacer("-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(key)))
}

// IsStyleKey 报告 key 是否为单元格样式属性。
func IsStyleKey(key string) bool {
	_, ok := styleSetters[normalizeKey(key)]
	return ok
}

var styleSetters = map[string]func(o *StyleOverrides, v string) error{
	"font": func(o *StyleOverrides, v string) error {
		o.Font = Ptr(strings.ToLower(strings.TrimSpace(v)))
		return nil
	},
	"fontstyle": func(o *StyleOverrides, v string) error {
		fs, err := ParseFontStyle(v)
		o.FontStyle = &fs
		return err
	},
	"fontsize": func(o *StyleOverrides, v string) error {
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "pt"), 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("字号必须为正数: %q", v)
		}
		o.FontSize = &f
		return nil
	},
	"overflow": func(o *StyleOverrides, v string) error {
		ov, err := ParseOverflow(v)
		o.Overflow = &ov
		return err
	},
	"fillcolor": func(o *StyleOverrides, v string) error {
		c, err := ParseColor(v)
		o.FillColor = &c
		return err
	},
	"textcolor": func(o *StyleOverrides, v string) error {
		c, err := ParseColor(v)
		o.TextColor = &c
		return err
	},
	"linecolor": func(o *StyleOverrides, v string) error {
		c, err := ParseColor(v)
		o.LineColor = &c
		return err
	},
	"linewidth": func(o *StyleOverrides, v string) error {
		p, err := ParsePadding(v)
		lw := LineWidths(p)
		o.LineWidth = &lw
		return err
	},
	"halign": func(o *StyleOverrides, v string) error {
		a, err := ParseHAlign(v)
		o.HAlign = &a
		return err
	},
	"valign": func(o *StyleOverrides, v string) error {
		a, err := ParseVAlign(v)
		o.VAlign = &a
		return err
	},
	"cellpadding": func(o *StyleOverrides, v string) error {
		p, err := ParsePadding(v)
		o.CellPadding = &p
		return err
	},
	"cellwidth": func(o *StyleOverrides, v string) error {
		w, err := ParseCellWidth(v)
		o.CellWidth = &w
		return err
	},
	"mincellheight": func(o *StyleOverrides, v string) error {
		mm, err := ParseMM(v)
		o.MinCellHeight = &mm
		return err
	},
	"mincellwidth": func(o *StyleOverrides, v string) error {
		mm, err := ParseMM(v)
		o.MinCellWidth = &mm
		return err
	},
}

// Set 解析并写入一个样式属性；值无效时 o 保持不变。
func (o *StyleOverrides) Set(key, value string) error {
	setter, ok := styleSetters[normalizeKey(key)]
	if !ok {
		return ConfigError{Option: key, Value: value, Message: "未知的样式属性"}
	}
	next := o.clone()
	if err := setter(&next, value); err != nil {
		return ConfigError{Option: key, Value: value, Message: err.Error()}
	}
	*o = next
	return nil
}

var optionSetters = map[string]func(o *TableOptions, v string) error{
	"theme": func(o *TableOptions, v string) error {
		t, err := ParseTheme(v)
		o.Theme = &t
		return err
	},
	"starty": func(o *TableOptions, v string) error {
		mm, err := ParseMM(v)
		o.StartY = &mm
		return err
	},
	"margin": func(o *TableOptions, v string) error {
		m, err := ParseMargin(v)
		o.Margin = &m
		return err
	},
	"pagebreak": func(o *TableOptions, v string) error {
		p, err := ParsePageBreak(v)
		o.PageBreak = &p
		return err
	},
	"rowpagebreak": func(o *TableOptions, v string) error {
		p, err := ParseRowPageBreak(v)
		o.RowPageBreak = &p
		return err
	},
	"tablewidth": func(o *TableOptions, v string) error {
		w, err := ParseCellWidth(v)
		o.TableWidth = &w
		return err
	},
	"showhead": func(o *TableOptions, v string) error {
		s, err := ParseShowHead(v)
		o.ShowHead = &s
		return err
	},
	"showfoot": func(o *TableOptions, v string) error {
		s, err := ParseShowFoot(v)
		o.ShowFoot = &s
		return err
	},
	"tablelinewidth": func(o *TableOptions, v string) error {
		mm, err := ParseMM(v)
		o.TableLineWidth = &mm
		return err
	},
	"tablelinecolor": func(o *TableOptions, v string) error {
		c, err := ParseColor(v)
		o.TableLineColor = &c
		return err
	},
	"horizontalpagebreak": func(o *TableOptions, v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		o.HorizontalPageBreak = &b
		return err
	},
	"horizontalpagebreakrepeat": func(o *TableOptions, v string) error {
		refs := []ColumnRef{}
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				refs = append(refs, ParseColumnRef(part))
			}
		}
		o.HorizontalPageBreakRepeat = refs
		return nil
	},
	"horizontalpagebreakbehaviour": func(o *TableOptions, v string) error {
		b, err := ParseHorizontalBehaviour(v)
		o.HorizontalPageBreakBehaviour = &b
		return err
	},
}

// Set 解析并写入一个表格选项，repeat 列表以逗号分隔；值无效时 o 保持不变。
func (o *TableOptions) Set(key, value string) error {
	setter, ok := optionSetters[normalizeKey(key)]
	if !ok {
		return ConfigError{Option: key, Value: value, Message: "未知的表格选项"}
	}
	next := o.Clone()
	if err := setter(&next, value); err != nil {
		return ConfigError{Option: key, Value: value, Message: err.Error()}
	}
	*o = next
	return nil
}

// SectionStyles 返回 section 对应的分区样式（head/body/foot/alternateRow 或 table）。
func (o *TableOptions) SectionStyles(name string) (*StyleOverrides, bool) {
	switch normalizeKey(name) {
	case "table", "styles":
		return &o.Styles, true
	case "head", "headstyles":
		return &o.HeadStyles, true
	case "body", "bodystyles":
		return &o.BodyStyles, true
	case "foot", "footstyles":
		return &o.FootStyles, true
	case "alternaterow", "alternaterowstyles":
		return &o.AlternateRowStyles, true
	}
	return nil, false
}

// SetColumnStyle 为 ColumnStyles[ref] 写入一个样式属性。
func (o *TableOptions) SetColumnStyle(ref, key, value string) error {
	cs := o.ColumnStyles[ref]
	if err := cs.Set(key, value); err != nil {
		return err
	}
	if o.ColumnStyles == nil {
		o.ColumnStyles = map[string]StyleOverrides{}
	}
	o.ColumnStyles[ref] = cs
	return nil
}
