package main

import (
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ByLCY/autotable/config"
	"github.com/ByLCY/autotable/dsl"
	"github.com/ByLCY/autotable/fonts"
	"github.com/ByLCY/autotable/layout"
	"github.com/ByLCY/autotable/observability"
	"github.com/ByLCY/autotable/renderer"
	canvasrenderer "github.com/ByLCY/autotable/renderer/canvas"
	"github.com/ByLCY/autotable/source"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}

// runOptions 是 render/plan 子命令共用的参数。
type runOptions struct {
	input    string
	output   string
	plan     string
	data     string
	dataFile string
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:           "autotable",
		Short:         "将表格描述文件排版并分页输出为 PDF",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径（默认查找 ./autotable.yaml）")

	var ro runOptions
	render := &cobra.Command{
		Use:   "render",
		Short: "生成 PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cfgFile, ro, true)
		},
	}
	addInputFlags(render, &ro)
	render.Flags().StringVar(&ro.output, "out", "output/table.pdf", "PDF 输出路径")
	render.Flags().StringVar(&ro.plan, "plan", "", "布局计划 JSON 输出路径")

	var po runOptions
	plan := &cobra.Command{
		Use:   "plan",
		Short: "只输出布局计划 JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cfgFile, po, false)
		},
	}
	addInputFlags(plan, &po)
	plan.Flags().StringVar(&po.plan, "out", "output/plan.json", "布局计划 JSON 输出路径")

	root.AddCommand(render, plan)
	return root
}

func addInputFlags(cmd *cobra.Command, o *runOptions) {
	cmd.Flags().StringVar(&o.input, "in", "examples/invoice.atl", "表格描述文件路径")
	cmd.Flags().StringVar(&o.data, "data", "", "绑定到表格的 JSON 数据")
	cmd.Flags().StringVar(&o.dataFile, "data-file", "", "绑定数据的 JSON 文件路径")
	cmd.MarkFlagsMutuallyExclusive("data", "data-file")
}

// execute 加载配置与日志后调用 run；pdf 为 false 时不渲染 PDF。
func execute(cfgFile string, o runOptions, pdf bool) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer observability.Sync(logger)

	data, err := loadData(o)
	if err != nil {
		return err
	}

	registry := fonts.NewRegistry()
	if err := cfg.RegisterFonts(registry); err != nil {
		return err
	}
	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		Fonts:            registry,
		LineHeightFactor: cfg.Render.LineHeightFactor,
		Meta:             canvasrenderer.Meta{Title: cfg.Render.Title, Author: cfg.Render.Author, Creator: cfg.Render.Creator},
		Logger:           logger.Named("render"),
	})
	if !pdf {
		o.output = ""
	}
	if err := run(o, cfg, data, r, logger); err != nil {
		logger.Error("生成失败", zap.Error(err))
		return err
	}
	return nil
}

func loadData(o runOptions) (any, error) {
	raw := []byte(o.data)
	if o.dataFile != "" {
		b, err := os.ReadFile(o.dataFile)
		if err != nil {
			return nil, fmt.Errorf("读取数据文件 %s 失败: %w", o.dataFile, err)
		}
		raw = b
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var data any
	if err := jsoniter.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("解析 data JSON 失败: %w", err)
	}
	return data, nil
}

// run 串联解析、编译、布局与渲染。o.output 为空时跳过 PDF 输出。
func run(o runOptions, cfg *config.Config, data any, r renderer.Renderer, logger *zap.Logger) error {
	if r == nil {
		return fmt.Errorf("renderer 不能为空")
	}
	file, err := os.Open(o.input)
	if err != nil {
		return fmt.Errorf("无法打开表格描述文件 %s: %w", o.input, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return fmt.Errorf("解析表格描述失败: %w", err)
	}
	in, opts, err := source.Compile(doc, data)
	if err != nil {
		return fmt.Errorf("编译表格描述失败: %w", err)
	}

	lc, err := cfg.LayoutConfig()
	if err != nil {
		return err
	}
	page, err := cfg.PageSize()
	if err != nil {
		return err
	}
	bo := layout.BuildOptions{Page: page, Config: lc, StartPage: cfg.Page.StartPage, Logger: logger.Named("layout")}
	if surface, ok := r.(layout.Surface); ok {
		bo.Surface = surface
	}
	plan, err := layout.Build(in, opts, bo)
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}
	logger.Info("布局完成",
		zap.String("table", doc.Name),
		zap.Int("pages", plan.PageCount),
		zap.Int("groups", len(plan.Groups)),
		zap.Int("warnings", len(plan.Warnings)),
		zap.Int("overflow", len(plan.Overflow)))

	if o.plan != "" {
		if err := writePlan(plan, o.plan); err != nil {
			return err
		}
	}
	if o.output == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(o.output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	pdfBytes, err := r.Render(plan)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(o.output, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	logger.Info("已生成 PDF", zap.String("path", o.output))
	return nil
}

func writePlan(plan *layout.Plan, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(plan, path); err != nil {
		return fmt.Errorf("输出布局计划 JSON 失败: %w", err)
	}
	return nil
}
