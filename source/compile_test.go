package source

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/autotable/dsl"
	"github.com/ByLCY/autotable/layout"
)

const invoiceDSL = `
table Invoice v1 {
  options {
    theme: grid
    horizontalPageBreak: true
    horizontalPageBreakRepeat: [id, 0]
    margin: "10mm 5mm"
    showFoot: lastPage
  }

  styles {
    fontSize: 9
    head { fillColor: #2980b9; fontStyle: bold }
    alternateRow { fillColor: 245 }
    column id { cellWidth: wrap }
  }

  columns {
    column id { header: "ID" }
    column name { header: "Name"; footer: "${currency}"; halign: right }
  }

  body items {
    row {
      cell "${id}"
      cell "${name}" textColor "${color}"
    }
  }

  foot {
    row fontStyle bold {
      cell colSpan 2 halign right { "Total:"; "${total}" }
    }
  }
}
`

func compile(t *testing.T, src string, data any) (layout.TableInput, layout.TableOptions) {
	t.Helper()
	doc, err := dsl.ParseString(src)
	require.NoError(t, err)
	in, opts, err := Compile(doc, data)
	require.NoError(t, err)
	return in, opts
}

func invoiceData() map[string]any {
	return map[string]any{
		"currency": "CNY",
		"total":    float64(42),
		"items": []any{
			map[string]any{"id": float64(1), "name": "Widget", "color": "red"},
			map[string]any{"id": float64(2), "name": "Gadget", "color": "#000"},
		},
	}
}

func TestCompileInvoice(t *testing.T) {
	in, opts := compile(t, invoiceDSL, invoiceData())

	wantColumns := []layout.ColumnInput{
		{DataKey: "id", Header: "ID"},
		{DataKey: "name", Header: "Name", Footer: "CNY"},
	}
	if diff := cmp.Diff(wantColumns, in.Columns); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, in.Body, 2, "每个数组元素生成一行")
	assert.Equal(t, "1", in.Body[0].Cells[0].Text)
	assert.Equal(t, "Gadget", in.Body[1].Cells[1].Text)
	assert.Equal(t, layout.Named("red"), *in.Body[0].Cells[1].Styles.TextColor)
	assert.Equal(t, layout.RGB(0, 0, 0), *in.Body[1].Cells[1].Styles.TextColor)
	assert.Empty(t, in.Head, "表头由列声明生成")

	require.Len(t, in.Foot, 1)
	total := in.Foot[0].Cells[0]
	assert.Equal(t, "Total:\n42", total.Text)
	assert.Equal(t, 2, total.ColSpan)
	assert.Equal(t, layout.FontBold, *total.Styles.FontStyle, "行级样式作为单元格底层样式")
	assert.Equal(t, layout.AlignRight, *total.Styles.HAlign)

	assert.Equal(t, layout.ThemeGrid, *opts.Theme)
	assert.True(t, *opts.HorizontalPageBreak)
	assert.Equal(t, []layout.ColumnRef{layout.KeyRef("id"), layout.IndexRef(0)}, opts.HorizontalPageBreakRepeat)
	assert.Equal(t, layout.Margin{Top: 10, Right: 5, Bottom: 10, Left: 5}, *opts.Margin)
	assert.Equal(t, layout.ShowFootLastPage, *opts.ShowFoot)
	assert.Equal(t, 9.0, *opts.Styles.FontSize)
	assert.Equal(t, layout.RGB(41, 128, 185), *opts.HeadStyles.FillColor)
	assert.Equal(t, layout.Grey(245), *opts.AlternateRowStyles.FillColor)
	assert.Equal(t, layout.WrapWidth(), *opts.ColumnStyles["id"].CellWidth)
	assert.Equal(t, layout.AlignRight, *opts.ColumnStyles["name"].HAlign)
}

func TestCompileStaticRowsInterpolateRoot(t *testing.T) {
	src := `table T v1 {
  body {
    row { cell "Total ${total}"; cell rowSpan 2 "x" }
  }
}`
	in, _ := compile(t, src, invoiceData())
	require.Len(t, in.Body, 1)
	assert.Equal(t, "Total 42", in.Body[0].Cells[0].Text)
	assert.Equal(t, 2, in.Body[0].Cells[1].RowSpan)
}

func TestCompileFeedsLayout(t *testing.T) {
	in, opts := compile(t, invoiceDSL, invoiceData())
	plan, err := layout.Build(in, opts, layout.BuildOptions{Page: layout.PageSize{Width: 210, Height: 297}})
	require.NoError(t, err)
	assert.Equal(t, 1, plan.PageCount)
	require.NotEmpty(t, plan.Sections)
	assert.Len(t, plan.Sections[0].Head, 1)
	assert.Len(t, plan.Sections[0].Body, 2)
}

func TestCompileErrors(t *testing.T) {
	cases := map[string]string{
		"unknown option":  `table T v1 { options { colour: red } }`,
		"bad option":      `table T v1 { options { pageBreak: sometimes } }`,
		"unknown style":   `table T v1 { styles { caption { fontSize: 9 } } }`,
		"missing path":    `table T v1 { body missing { row { cell "x" } } }`,
		"not an array":    `table T v1 { body total { row { cell "x" } } }`,
		"unknown cell":    `table T v1 { body { row { cell bogus 1 } } }`,
		"bad span":        `table T v1 { body { row { cell colSpan two "x" } } }`,
		"dangling attr":   `table T v1 { body { row { cell "x" colSpan } } }`,
		"non-row in body": `table T v1 { body { cell "x" } }`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			doc, err := dsl.ParseString(src)
			require.NoError(t, err)
			_, _, err = Compile(doc, invoiceData())
			assert.Error(t, err)
		})
	}

	_, _, err := Compile(nil, nil)
	assert.Error(t, err)
}
