package layout

import "fmt"

// ColumnGroup 是一个水平分组：重复列在前（按声明顺序），其余列保持原始顺序。
// LastIndex 为该组放入的最后一个非重复列的序号；排在它之后、被跳过的重复列不计入。
// 只有当所有列都是重复列时，LastIndex 才指向最后一个重复列。
type ColumnGroup struct {
	Columns   []int `json:"columns"`
	LastIndex int   `json:"lastIndex"`
}

// Width 返回分组内各列已分配宽度之和。
func (g ColumnGroup) Width(columns []Column) float64 {
	w := 0.0
	for _, i := range g.Columns {
		w += columns[i].WrappedWidth
	}
	return w
}

// PlanHorizontalGroups 把列划分为若干个各自适配 available 宽度的分组。
// 每组的第一个非重复列总会被接纳，因此比页面更宽的列会独占一组而不会被丢弃。
// 无法匹配任何列的 repeat 引用会被忽略并以 ConfigError 返回。
func PlanHorizontalGroups(columns []Column, available float64, repeat []ColumnRef) ([]ColumnGroup, []ConfigError) {
	if len(columns) == 0 {
		return nil, nil
	}
	repeated, warnings := resolveRepeat(columns, repeat)
	isRepeated := make(map[int]bool, len(repeated))
	budget := available
	for _, i := range repeated {
		isRepeated[i] = true
		budget -= columns[i].WrappedWidth
	}

	var groups []ColumnGroup
	next := 0
	for {
		for next < len(columns) && isRepeated[next] {
			next++
		}
		if next >= len(columns) {
			break
		}
		group := ColumnGroup{Columns: append([]int(nil), repeated...)}
		remaining := budget
		admitted := 0
		for ; next < len(columns); next++ {
			if isRepeated[next] {
				continue
			}
			w := columns[next].WrappedWidth
			if admitted > 0 && remaining < w {
				break
			}
			group.Columns = append(group.Columns, next)
			group.LastIndex = next
			remaining -= w
			admitted++
		}
		groups = append(groups, group)
	}

	if len(groups) == 0 {
		// 所有列都被声明为重复列。
		all := ColumnGroup{Columns: append([]int(nil), repeated...)}
		all.LastIndex = repeated[len(repeated)-1]
		groups = append(groups, all)
	}
	return groups, warnings
}

// resolveRepeat 把按数据键或序号声明的引用解析为去重后的有序列序号。
func resolveRepeat(columns []Column, refs []ColumnRef) ([]int, []ConfigError) {
	var (
		out      []int
		warnings []ConfigError
		seen     = make(map[int]bool, len(refs))
	)
	for _, ref := range refs {
		idx := -1
		if ref.ByKey {
			for _, c := range columns {
				if c.DataKey == ref.Key {
					idx = c.Index
					break
				}
			}
		} else if ref.Index >= 0 && ref.Index < len(columns) {
			idx = ref.Index
		}
		if idx < 0 {
			warnings = append(warnings, ConfigError{
				Option:  "horizontalPageBreakRepeat",
				Value:   ref.String(),
				Message: "未匹配任何列，已忽略",
			})
			continue
		}
		if seen[idx] {
			warnings = append(warnings, ConfigError{
				Option:  "horizontalPageBreakRepeat",
				Value:   ref.String(),
				Message: fmt.Sprintf("列 %d 重复声明，已合并", idx),
			})
			continue
		}
		seen[idx] = true
		out = append(out, idx)
	}
	return out, warnings
}
