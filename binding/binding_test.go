package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleData() map[string]any {
	return map[string]any{
		"title": "Q3",
		"meta":  map[string]any{"currency": "CNY", "rate": 6.5},
		"items": []any{
			map[string]any{"id": float64(1), "name": "Widget", "tags": []any{"a", "b"}},
			map[string]any{"id": float64(2), "name": nil},
		},
	}
}

func TestInterpolate(t *testing.T) {
	data := sampleData()
	assert.Equal(t, "Q3 in CNY @ 6.5", Interpolate("${title} in ${ meta.currency } @ ${meta.rate}", data))
	assert.Equal(t, "b", Interpolate("${items[0].tags[1]}", data))
	assert.Equal(t, "${missing}", Interpolate("${missing}", data), "路径不存在时保留占位符")
	assert.Equal(t, "${title}", Interpolate("${title}", nil))
}

func TestLookup(t *testing.T) {
	data := sampleData()
	items, ok := Lookup(data, "items")
	require.True(t, ok)
	assert.Len(t, items, 2)

	_, ok = Lookup(data, "items[5]")
	assert.False(t, ok)
	_, ok = Lookup(data, "title.length")
	assert.False(t, ok)

	root, ok := Lookup(data, "")
	assert.True(t, ok)
	assert.Equal(t, data, root)
}

func TestScope(t *testing.T) {
	data := sampleData()
	items := data["items"].([]any)

	s := Scope{Item: items[0], Root: data}
	assert.Equal(t, "1 Widget CNY", s.Interpolate("${id} ${name} ${meta.currency}"), "元素优先，根数据兜底")

	s = Scope{Item: items[1], Root: data}
	assert.Equal(t, "2: ", s.Interpolate("${id}: ${name}"), "nil 值输出为空串")

	s = Scope{Item: "plain", Root: data}
	assert.Equal(t, "plain/Q3", s.Interpolate("${.}/${title}"))
}

func TestItems(t *testing.T) {
	items, ok := Items(sampleData()["items"])
	require.True(t, ok)
	assert.Len(t, items, 2)

	items, ok = Items([]map[string]any{{"a": 1}})
	require.True(t, ok)
	assert.Equal(t, []any{map[string]any{"a": 1}}, items)

	_, ok = Items("nope")
	assert.False(t, ok)
}
