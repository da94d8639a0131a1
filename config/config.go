package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/ByLCY/autotable/fonts"
	"github.com/ByLCY/autotable/layout"
)

// EnvPrefix 是环境变量前缀，例如 AUTOTABLE_PAGE_SIZE=Letter。
const EnvPrefix = "AUTOTABLE"

// Config 是命令行工具的全部配置。
type Config struct {
	Logger   LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Page     PageConfig    `mapstructure:"page" yaml:"page"`
	Render   RenderConfig  `mapstructure:"render" yaml:"render"`
	Fonts    []FontConfig  `mapstructure:"fonts" yaml:"fonts"`
	Defaults TableDefaults `mapstructure:"defaults" yaml:"defaults"`
	Document TableDefaults `mapstructure:"document" yaml:"document"`
	// DocumentStyles 模拟宿主文档当前的字体、颜色等状态。
	DocumentStyles map[string]string `mapstructure:"document_styles" yaml:"document_styles"`
}

// LoggerConfig 配置 zap 日志。
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig 为控制台输出的各级别指定颜色名称。
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn"`
	Error string `mapstructure:"error" yaml:"error"`
}

// PageConfig 描述页面尺寸；Width/Height 非零时覆盖预设（mm）。
type PageConfig struct {
	Size        string  `mapstructure:"size" yaml:"size"`
	Orientation string  `mapstructure:"orientation" yaml:"orientation"`
	Width       float64 `mapstructure:"width" yaml:"width"`
	Height      float64 `mapstructure:"height" yaml:"height"`
	StartPage   int     `mapstructure:"start_page" yaml:"start_page"`
}

// RenderConfig 配置 PDF 输出。
type RenderConfig struct {
	LineHeightFactor float64 `mapstructure:"line_height_factor" yaml:"line_height_factor"`
	Title            string  `mapstructure:"title" yaml:"title"`
	Author           string  `mapstructure:"author" yaml:"author"`
	Creator          string  `mapstructure:"creator" yaml:"creator"`
}

// FontConfig 从磁盘登记额外的字体文件。
type FontConfig struct {
	Family string `mapstructure:"family" yaml:"family"`
	Style  string `mapstructure:"style" yaml:"style"`
	Path   string `mapstructure:"path" yaml:"path"`
}

// TableDefaults 以文本形式保存表格选项，键名与 DSL 相同。
// Styles 的键为 table/head/body/foot/alternateRow；Columns 的键为列数据键或序号。
type TableDefaults struct {
	Options map[string]string            `mapstructure:"options" yaml:"options"`
	Styles  map[string]map[string]string `mapstructure:"styles" yaml:"styles"`
	Columns map[string]map[string]string `mapstructure:"columns" yaml:"columns"`
}

var pagePresets = map[string]layout.PageSize{
	"a3":     {Width: 297, Height: 420},
	"a4":     {Width: 210, Height: 297},
	"a5":     {Width: 148, Height: 210},
	"letter": {Width: 215.9, Height: 279.4},
	"legal":  {Width: 215.9, Height: 355.6},
}

// NewDefaultConfig 返回只包含默认值的配置。
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("解析默认配置失败: %v", err))
	}
	return &cfg
}

// SetDefaults 写入各配置项的默认值。
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "autotable")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")

	v.SetDefault("page.size", "A4")
	v.SetDefault("page.orientation", "portrait")
	v.SetDefault("page.width", 0)
	v.SetDefault("page.height", 0)
	v.SetDefault("page.start_page", 1)

	v.SetDefault("render.line_height_factor", 1.15)
	v.SetDefault("render.creator", "autotable")
}

// Load 读取配置文件（path 为空时在当前目录查找 autotable.yaml，找不到则只用默认值），
// 并叠加 AUTOTABLE_ 前缀的环境变量。
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("autotable")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}
	return NewConfigFromViper(v)
}

// NewConfigFromViper 从 viper 实例解析并校验配置。
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置无效: %w", err)
	}
	return &cfg, nil
}

// Validate 检查日志级别、页面尺寸与表格默认选项。
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Logger.Level); err != nil {
		return fmt.Errorf("logger.level: %w", err)
	}
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format 只能为 console 或 json: %q", c.Logger.Format)
	}
	if _, err := c.PageSize(); err != nil {
		return err
	}
	if c.Page.StartPage < 1 {
		return fmt.Errorf("page.start_page 必须为正整数")
	}
	if c.Render.LineHeightFactor <= 0 {
		return fmt.Errorf("render.line_height_factor 必须为正数")
	}
	for i, f := range c.Fonts {
		if f.Family == "" || f.Path == "" {
			return fmt.Errorf("fonts[%d] 需要 family 与 path", i)
		}
	}
	if _, err := c.LayoutConfig(); err != nil {
		return err
	}
	return nil
}

// PageSize 返回页面宽高（mm），横向时交换宽高。
func (c *Config) PageSize() (layout.PageSize, error) {
	size, ok := pagePresets[strings.ToLower(strings.TrimSpace(c.Page.Size))]
	if !ok && (c.Page.Width <= 0 || c.Page.Height <= 0) {
		return layout.PageSize{}, fmt.Errorf("page.size 未知: %q", c.Page.Size)
	}
	if c.Page.Width > 0 {
		size.Width = c.Page.Width
	}
	if c.Page.Height > 0 {
		size.Height = c.Page.Height
	}
	switch strings.ToLower(c.Page.Orientation) {
	case "", "portrait", "p":
	case "landscape", "l":
		size.Width, size.Height = size.Height, size.Width
	default:
		return layout.PageSize{}, fmt.Errorf("page.orientation 只能为 portrait 或 landscape: %q", c.Page.Orientation)
	}
	return size, nil
}

// LayoutConfig 把文本形式的默认值转换为布局配置。
func (c *Config) LayoutConfig() (layout.Config, error) {
	var out layout.Config
	var err error
	if out.Global, err = c.Defaults.TableOptions(); err != nil {
		return layout.Config{}, fmt.Errorf("defaults: %w", err)
	}
	if out.Document, err = c.Document.TableOptions(); err != nil {
		return layout.Config{}, fmt.Errorf("document: %w", err)
	}
	for _, key := range sortedKeys(c.DocumentStyles) {
		if err := out.DocumentStyles.Set(key, c.DocumentStyles[key]); err != nil {
			return layout.Config{}, fmt.Errorf("document_styles: %w", err)
		}
	}
	return out, nil
}

// RegisterFonts 把配置中的字体文件登记到 r。
func (c *Config) RegisterFonts(r *fonts.Registry) error {
	for _, f := range c.Fonts {
		if err := r.RegisterFile(f.Family, f.Style, f.Path); err != nil {
			return err
		}
	}
	return nil
}

// TableOptions 解析选项、分区样式与列样式。
func (d TableDefaults) TableOptions() (layout.TableOptions, error) {
	var opts layout.TableOptions
	for _, key := range sortedKeys(d.Options) {
		if err := opts.Set(key, d.Options[key]); err != nil {
			return layout.TableOptions{}, err
		}
	}
	for _, section := range sortedKeys(d.Styles) {
		target, ok := opts.SectionStyles(section)
		if !ok {
			return layout.TableOptions{}, fmt.Errorf("未知的样式分区 %q", section)
		}
		for _, key := range sortedKeys(d.Styles[section]) {
			if err := target.Set(key, d.Styles[section][key]); err != nil {
				return layout.TableOptions{}, err
			}
		}
	}
	for _, ref := range sortedKeys(d.Columns) {
		for _, key := range sortedKeys(d.Columns[ref]) {
			if err := opts.SetColumnStyle(ref, key, d.Columns[ref][key]); err != nil {
				return layout.TableOptions{}, err
			}
		}
	}
	return opts, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
