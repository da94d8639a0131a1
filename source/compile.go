package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/autotable/binding"
	"github.com/ByLCY/autotable/dsl"
	"github.com/ByLCY/autotable/layout"
)

// Compile 把表格文档与绑定数据转换为布局输入与表格选项。
// 带数据路径的 head/body/foot 分区会对路径处数组的每个元素重复其行模板。
func Compile(doc *dsl.Document, data any) (layout.TableInput, layout.TableOptions, error) {
	if doc == nil {
		return layout.TableInput{}, layout.TableOptions{}, fmt.Errorf("文档为空")
	}
	c := &compiler{data: data}
	for _, sec := range doc.Sections {
		var err error
		switch {
		case sec.Options != nil:
			err = c.options(sec.Options.Block)
		case sec.Styles != nil:
			err = c.styles(sec.Styles.Block)
		case sec.Columns != nil:
			err = c.columns(sec.Columns.Block)
		case sec.Rows != nil:
			err = c.rows(sec.Rows)
		}
		if err != nil {
			return layout.TableInput{}, layout.TableOptions{}, fmt.Errorf("%s 分区: %w", sec.Kind(), err)
		}
	}
	return c.input, c.opts, nil
}

type compiler struct {
	data  any
	input layout.TableInput
	opts  layout.TableOptions
}

func (c *compiler) options(block *dsl.Block) error {
	for _, st := range statements(block) {
		if st.Assignment == nil {
			return fmt.Errorf("options 中只允许 key: value 形式的赋值")
		}
		value, err := valueText(st.Assignment.Value)
		if err != nil {
			return fmt.Errorf("%s: %w", st.Assignment.Key, err)
		}
		if err := c.opts.Set(st.Assignment.Key, value); err != nil {
			return err
		}
	}
	return nil
}

// styles 处理 table/head/body/foot/alternateRow 样式块与 column <ref> 样式块；
// 直接写在 styles 下的赋值视为 table 样式。
func (c *compiler) styles(block *dsl.Block) error {
	for _, st := range statements(block) {
		switch {
		case st.Assignment != nil:
			if err := setStyle(&c.opts.Styles, st.Assignment); err != nil {
				return err
			}
		case st.Command != nil && st.Command.Name == "column":
			cmd := st.Command
			if len(cmd.Args) != 1 {
				return fmt.Errorf("%s: column 样式需要一个列引用", cmd.Pos)
			}
			ref := cmd.Args[0].Value
			for _, inner := range statements(cmd.Block) {
				if inner.Assignment == nil {
					return fmt.Errorf("%s: column %s 样式块只允许赋值", cmd.Pos, ref)
				}
				value, err := valueText(inner.Assignment.Value)
				if err != nil {
					return err
				}
				if err := c.opts.SetColumnStyle(ref, inner.Assignment.Key, value); err != nil {
					return err
				}
			}
		case st.Command != nil:
			target, ok := c.opts.SectionStyles(st.Command.Name)
			if !ok {
				return fmt.Errorf("%s: 未知的样式块 %s", st.Command.Pos, st.Command.Name)
			}
			for _, inner := range statements(st.Command.Block) {
				if inner.Assignment == nil {
					return fmt.Errorf("%s: %s 样式块只允许赋值", st.Command.Pos, st.Command.Name)
				}
				if err := setStyle(target, inner.Assignment); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("styles 中不允许文本字面量")
		}
	}
	return nil
}

// columns 处理 column <key> { header: ...; footer: ...; <样式> }。
func (c *compiler) columns(block *dsl.Block) error {
	for _, st := range statements(block) {
		cmd := st.Command
		if cmd == nil || cmd.Name != "column" {
			return fmt.Errorf("columns 中只允许 column 声明")
		}
		col := layout.ColumnInput{}
		if len(cmd.Args) > 0 {
			col.DataKey = cmd.Args[0].Value
		}
		ref := col.DataKey
		if ref == "" {
			ref = strconv.Itoa(len(c.input.Columns))
		}
		for _, inner := range statements(cmd.Block) {
			if inner.Assignment == nil {
				return fmt.Errorf("%s: column 声明只允许赋值", cmd.Pos)
			}
			value, err := valueText(inner.Assignment.Value)
			if err != nil {
				return err
			}
			switch strings.ToLower(inner.Assignment.Key) {
			case "header", "title":
				col.Header = binding.Interpolate(value, c.data)
			case "footer":
				col.Footer = binding.Interpolate(value, c.data)
			default:
				if err := c.opts.SetColumnStyle(ref, inner.Assignment.Key, value); err != nil {
					return err
				}
			}
		}
		c.input.Columns = append(c.input.Columns, col)
	}
	return nil
}

func (c *compiler) rows(sec *dsl.RowsSection) error {
	scopes := []binding.Scope{{Root: c.data}}
	if path := sec.Path(); path != "" {
		val, ok := binding.Lookup(c.data, path)
		if !ok {
			return fmt.Errorf("%s: 数据路径 %s 不存在", sec.Pos, path)
		}
		items, ok := binding.Items(val)
		if !ok {
			return fmt.Errorf("%s: 数据路径 %s 不是数组", sec.Pos, path)
		}
		scopes = scopes[:0]
		for _, item := range items {
			scopes = append(scopes, binding.Scope{Item: item, Root: c.data})
		}
	}

	var out []layout.RowInput
	for _, scope := range scopes {
		for _, st := range statements(sec.Block) {
			if st.Command == nil || st.Command.Name != "row" {
				return fmt.Errorf("%s 中只允许 row 声明", sec.Kind)
			}
			row, err := compileRow(st.Command, scope)
			if err != nil {
				return err
			}
			out = append(out, row)
		}
	}

	switch sec.Kind {
	case "head":
		c.input.Head = append(c.input.Head, out...)
	case "foot":
		c.input.Foot = append(c.input.Foot, out...)
	default:
		c.input.Body = append(c.input.Body, out...)
	}
	return nil
}

// compileRow 处理 row [样式参数] { cell ... }；行级样式作为每个单元格的底层样式。
func compileRow(cmd *dsl.Command, scope binding.Scope) (layout.RowInput, error) {
	base := layout.CellInput{}
	if err := applyArgs(&base, cmd, scope, false); err != nil {
		return layout.RowInput{}, err
	}
	var row layout.RowInput
	for _, st := range statements(cmd.Block) {
		if st.Command == nil || st.Command.Name != "cell" {
			return layout.RowInput{}, fmt.Errorf("%s: row 中只允许 cell 声明", cmd.Pos)
		}
		cell := layout.CellInput{Styles: base.Styles}
		if err := applyArgs(&cell, st.Command, scope, true); err != nil {
			return layout.RowInput{}, err
		}
		for _, inner := range statements(st.Command.Block) {
			switch {
			case inner.Text != nil:
				cell.Text = appendLine(cell.Text, scope.Interpolate(string(inner.Text.Value)))
			case inner.Assignment != nil:
				value, err := valueText(inner.Assignment.Value)
				if err != nil {
					return layout.RowInput{}, err
				}
				if err := setCellAttr(&cell, inner.Assignment.Key, scope.Interpolate(value)); err != nil {
					return layout.RowInput{}, fmt.Errorf("%s: %w", st.Command.Pos, err)
				}
			default:
				return layout.RowInput{}, fmt.Errorf("%s: cell 块中不允许嵌套命令", st.Command.Pos)
			}
		}
		row.Cells = append(row.Cells, cell)
	}
	return row, nil
}

// applyArgs 解析命令参数：属性名后跟一个值；allowText 时其余参数为单元格文本。
func applyArgs(cell *layout.CellInput, cmd *dsl.Command, scope binding.Scope, allowText bool) error {
	args := cmd.Args
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg.Type == "Ident" && isCellAttr(arg.Value) {
			if i+1 >= len(args) {
				return fmt.Errorf("%s: 属性 %s 缺少取值", arg.Pos, arg.Value)
			}
			i++
			if err := setCellAttr(cell, arg.Value, scope.Interpolate(args[i].Value)); err != nil {
				return fmt.Errorf("%s: %w", arg.Pos, err)
			}
			continue
		}
		if !allowText || arg.Type == "Ident" {
			return fmt.Errorf("%s: 未知的%s参数 %s", arg.Pos, cmd.Name, arg.Raw)
		}
		cell.Text = appendLine(cell.Text, scope.Interpolate(arg.Value))
	}
	return nil
}

func isCellAttr(key string) bool {
	switch strings.ToLower(key) {
	case "colspan", "rowspan", "content", "text":
		return true
	}
	return layout.IsStyleKey(key)
}

func setCellAttr(cell *layout.CellInput, key, value string) error {
	switch strings.ToLower(key) {
	case "colspan", "rowspan":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s 必须为整数: %q", key, value)
		}
		if strings.EqualFold(key, "colspan") {
			cell.ColSpan = n
		} else {
			cell.RowSpan = n
		}
		return nil
	case "content", "text":
		cell.Text = appendLine(cell.Text, value)
		return nil
	}
	return cell.Styles.Set(key, value)
}

func setStyle(target *layout.StyleOverrides, a *dsl.Assignment) error {
	value, err := valueText(a.Value)
	if err != nil {
		return fmt.Errorf("%s: %w", a.Key, err)
	}
	return target.Set(a.Key, value)
}

// valueText 把值转为文本；数组元素以逗号连接。
func valueText(v *dsl.Value) (string, error) {
	if v == nil {
		return "", fmt.Errorf("缺少取值")
	}
	if v.Object != nil {
		return "", fmt.Errorf("不支持内联对象")
	}
	if v.Array == nil {
		s, ok := v.Scalar()
		if !ok {
			return "", fmt.Errorf("无法解析取值")
		}
		return s, nil
	}
	parts := make([]string, 0, len(v.Array.Values))
	for _, item := range v.Array.Values {
		s, err := valueText(item)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ","), nil
}

func statements(b *dsl.Block) []*dsl.Statement {
	if b == nil {
		return nil
	}
	return b.Statements
}

func appendLine(text, line string) string {
	if text == "" {
		return line
	}
	return text + "\n" + line
}
