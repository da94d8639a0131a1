package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ByLCY/autotable/config"
	canvasrenderer "github.com/ByLCY/autotable/renderer/canvas"
)

func TestRunRendersExample(t *testing.T) {
	dir := t.TempDir()
	data, err := loadData(runOptions{dataFile: "examples/invoice.json"})
	require.NoError(t, err)

	o := runOptions{
		input:  "examples/invoice.atl",
		output: filepath.Join(dir, "out", "invoice.pdf"),
		plan:   filepath.Join(dir, "out", "plan.json"),
	}
	err = run(o, config.NewDefaultConfig(), data, canvasrenderer.NewRenderer(), zaptest.NewLogger(t))
	require.NoError(t, err)

	pdf, err := os.ReadFile(o.output)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	raw, err := os.ReadFile(o.plan)
	require.NoError(t, err)
	var plan struct {
		PageCount int `json:"pageCount"`
		Sections  []struct {
			Page int `json:"page"`
		} `json:"sections"`
	}
	require.NoError(t, jsoniter.Unmarshal(raw, &plan))
	assert.Greater(t, plan.PageCount, 1, "80 行数据应跨页")
	assert.NotEmpty(t, plan.Sections)
}

func TestRunPlanOnly(t *testing.T) {
	dir := t.TempDir()
	o := runOptions{input: "examples/invoice.atl", plan: filepath.Join(dir, "plan.json")}
	data := map[string]any{"currency": "CNY", "total": 0.0, "items": []any{}}
	require.NoError(t, run(o, config.NewDefaultConfig(), data, canvasrenderer.NewRenderer(), zaptest.NewLogger(t)))
	_, err := os.Stat(o.plan)
	assert.NoError(t, err)
}

func TestRunErrors(t *testing.T) {
	cfg := config.NewDefaultConfig()
	logger := zaptest.NewLogger(t)
	r := canvasrenderer.NewRenderer()

	assert.Error(t, run(runOptions{input: "examples/invoice.atl"}, cfg, nil, nil, logger))
	assert.Error(t, run(runOptions{input: "does-not-exist.atl"}, cfg, nil, r, logger))
	// 缺少 items 数据时编译失败。
	assert.Error(t, run(runOptions{input: "examples/invoice.atl"}, cfg, map[string]any{}, r, logger))
}

func TestLoadData(t *testing.T) {
	data, err := loadData(runOptions{data: `{"a": [1, 2]}`})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": []any{1.0, 2.0}}, data)

	data, err = loadData(runOptions{})
	require.NoError(t, err)
	assert.Nil(t, data)

	_, err = loadData(runOptions{data: `{`})
	assert.Error(t, err)
	_, err = loadData(runOptions{dataFile: "missing.json"})
	assert.Error(t, err)
}

func TestPlanCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "plan.json")
	cmd := newRootCmd()
	cmd.SetArgs([]string{"plan", "--in", "examples/invoice.atl", "--data-file", "examples/invoice.json", "--out", out})
	require.NoError(t, cmd.Execute())
	_, err := os.Stat(out)
	assert.NoError(t, err)

	cmd = newRootCmd()
	cmd.SetArgs([]string{"render", "--data", "{}", "--data-file", "x.json"})
	assert.Error(t, cmd.Execute(), "data 与 data-file 互斥")
}
