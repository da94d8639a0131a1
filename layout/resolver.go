package layout

import (
	"strconv"

	"go.uber.org/zap"
)

// StyleResolver 按固定的层叠顺序为每个单元格合并出具体样式。
// 解析器在构造时捕获配置副本，之后对调用方配置的修改不会影响它。
type StyleResolver struct {
	base    Styles
	theme   themeStyles
	opts    TableOptions
	columns []Column
	surface Surface
	logger  *zap.Logger
}

// NewStyleResolver 以 cfg 的文档样式为底、opts 为表格选项构造解析器。
// opts 应当已经合并了 cfg.Global 与 cfg.Document；surface 与 logger 可为 nil。
func NewStyleResolver(cfg Config, opts TableOptions, columns []Column, surface Surface, logger *zap.Logger) *StyleResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := DefaultStyles()
	cfg.DocumentStyles.apply(&base)
	theme := ThemeStriped
	if opts.Theme != nil {
		theme = *opts.Theme
	}
	return &StyleResolver{
		base:    base,
		theme:   themeFor(theme),
		opts:    opts.Clone(),
		columns: append([]Column(nil), columns...),
		surface: surface,
		logger:  logger,
	}
}

// Resolve 返回 section 中第 row 行、第 column 列单元格的样式。
// 层叠顺序：默认值、文档样式、主题表格样式、主题分区样式、主题隔行样式、
// 用户表格样式、用户分区样式、用户隔行样式、列样式、单元格内联样式。
func (r *StyleResolver) Resolve(section Section, column, row int, inline StyleOverrides) Styles {
	s := r.base
	alternate := section == SectionBody && row%2 == 1

	r.theme.table.apply(&s)
	switch section {
	case SectionHead:
		r.theme.head.apply(&s)
	case SectionFoot:
		r.theme.foot.apply(&s)
	default:
		r.theme.body.apply(&s)
	}
	if alternate {
		r.theme.alternateRow.apply(&s)
	}

	r.opts.Styles.apply(&s)
	switch section {
	case SectionHead:
		r.opts.HeadStyles.apply(&s)
	case SectionFoot:
		r.opts.FootStyles.apply(&s)
	default:
		r.opts.BodyStyles.apply(&s)
	}
	if alternate {
		r.opts.AlternateRowStyles.apply(&s)
	}

	if cs, ok := r.columnStyles(column); ok {
		cs.apply(&s)
	}
	inline.apply(&s)

	s.FontStyle = r.availableFontStyle(s.Font, s.FontStyle)
	return s
}

// columnStyles 先按数据键查找，找不到再按列序号查找。
func (r *StyleResolver) columnStyles(column int) (StyleOverrides, bool) {
	if len(r.opts.ColumnStyles) == 0 {
		return StyleOverrides{}, false
	}
	if column >= 0 && column < len(r.columns) && r.columns[column].DataKey != "" {
		if cs, ok := r.opts.ColumnStyles[r.columns[column].DataKey]; ok {
			return cs, true
		}
	}
	cs, ok := r.opts.ColumnStyles[strconv.Itoa(column)]
	return cs, ok
}

func (r *StyleResolver) availableFontStyle(font string, want FontStyle) FontStyle {
	if r.surface == nil {
		return want
	}
	available := r.surface.FontStyles(font)
	if len(available) == 0 {
		return want
	}
	for _, fs := range available {
		if fs == want {
			return want
		}
	}
	r.logger.Debug("字体样式不可用，回退到首个可用样式",
		zap.String("font", font),
		zap.String("requested", string(want)),
		zap.String("fallback", string(available[0])))
	return available[0]
}
