package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/autotable/fonts"
	"github.com/ByLCY/autotable/layout"
)

const sampleYAML = `
logger:
  level: debug
  format: json
page:
  size: A4
  orientation: landscape
defaults:
  options:
    theme: grid
    horizontalPageBreak: true
    horizontalPageBreakRepeat: "id,0"
    margin: 10
  styles:
    table:
      fontSize: 8
    alternateRow:
      fillColor: 240
  columns:
    id:
      cellWidth: 20
document:
  options:
    showFoot: lastPage
document_styles:
  textColor: "#333333"
`

func fromYAML(t *testing.T, doc string) (*Config, error) {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(doc)))
	return NewConfigFromViper(v)
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "autotable", cfg.Logger.ServiceName)
	assert.Equal(t, "A4", cfg.Page.Size)
	assert.Equal(t, 1, cfg.Page.StartPage)
	assert.Equal(t, 1.15, cfg.Render.LineHeightFactor)
	require.NoError(t, cfg.Validate())

	size, err := cfg.PageSize()
	require.NoError(t, err)
	assert.Equal(t, layout.PageSize{Width: 210, Height: 297}, size)
}

func TestConfigFromYAML(t *testing.T) {
	cfg, err := fromYAML(t, sampleYAML)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	size, err := cfg.PageSize()
	require.NoError(t, err)
	assert.Equal(t, layout.PageSize{Width: 297, Height: 210}, size, "横向交换宽高")

	lc, err := cfg.LayoutConfig()
	require.NoError(t, err)
	assert.Equal(t, layout.ThemeGrid, *lc.Global.Theme)
	assert.True(t, *lc.Global.HorizontalPageBreak)
	assert.Equal(t, []layout.ColumnRef{layout.KeyRef("id"), layout.IndexRef(0)}, lc.Global.HorizontalPageBreakRepeat)
	assert.Equal(t, layout.Margin{Top: 10, Right: 10, Bottom: 10, Left: 10}, *lc.Global.Margin)
	assert.Equal(t, 8.0, *lc.Global.Styles.FontSize)
	assert.Equal(t, layout.Grey(240), *lc.Global.AlternateRowStyles.FillColor)
	assert.Equal(t, layout.FixedWidth(20), *lc.Global.ColumnStyles["id"].CellWidth)
	assert.Equal(t, layout.ShowFootLastPage, *lc.Document.ShowFoot)
	assert.Equal(t, layout.RGB(0x33, 0x33, 0x33), *lc.DocumentStyles.TextColor)
}

func TestConfigValidation(t *testing.T) {
	cases := map[string]string{
		"level":       "logger:\n  level: loud\n",
		"format":      "logger:\n  format: xml\n",
		"page size":   "page:\n  size: B7\n",
		"orientation": "page:\n  orientation: sideways\n",
		"start page":  "page:\n  start_page: 0\n",
		"option":      "defaults:\n  options:\n    theme: neon\n",
		"section":     "defaults:\n  styles:\n    caption:\n      fontSize: 9\n",
		"doc style":   "document_styles:\n  fontSize: huge\n",
		"font":        "fonts:\n  - family: brand\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := fromYAML(t, doc)
			assert.Error(t, err)
		})
	}
}

func TestCustomPageSize(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Page.Size = "custom"
	cfg.Page.Width, cfg.Page.Height = 100, 50
	size, err := cfg.PageSize()
	require.NoError(t, err)
	assert.Equal(t, layout.PageSize{Width: 100, Height: 50}, size)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "autotable.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))
	t.Setenv("AUTOTABLE_PAGE_SIZE", "Letter")
	t.Setenv("AUTOTABLE_PAGE_ORIENTATION", "portrait")

	cfg, err := Load(path)
	require.NoError(t, err)
	size, err := cfg.PageSize()
	require.NoError(t, err)
	assert.Equal(t, layout.PageSize{Width: 215.9, Height: 279.4}, size)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err, "显式指定的配置文件必须存在")
}

func TestRegisterFonts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brand.ttf")
	require.NoError(t, os.WriteFile(path, []byte{0, 1, 0, 0}, 0o644))

	cfg := NewDefaultConfig()
	cfg.Fonts = []FontConfig{{Family: "brand", Style: "bold", Path: path}}
	r := fonts.NewRegistry()
	require.NoError(t, cfg.RegisterFonts(r))
	assert.Equal(t, []string{fonts.StyleBold}, r.Styles("brand"))

	cfg.Fonts[0].Path = filepath.Join(dir, "missing.ttf")
	assert.Error(t, cfg.RegisterFonts(r))
}
