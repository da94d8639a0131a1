package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSpan 表示某行的跨列/跨行无法无缝划分列集合。
	ErrInvalidSpan = errors.New("单元格跨度无法划分列集合")
	// ErrInvalidPage 表示页面尺寸或边距使可用区域为空。
	ErrInvalidPage = errors.New("页面可用区域无效")
)

// InputError 是结构性输入错误，会中止整个布局。
type InputError struct {
	Section Section
	Row     int
	Err     error
	Detail  string
}

func (e *InputError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("layout: %v: %s", e.Err, e.Detail)
	}
	return fmt.Sprintf("layout: %s 第 %d 行: %v: %s", e.Section, e.Row, e.Err, e.Detail)
}

func (e *InputError) Unwrap() error { return e.Err }

// ConfigError 记录被忽略的无效配置，不会中止布局。
type ConfigError struct {
	Option  string `json:"option"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

func (e ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Option, e.Message)
	}
	return fmt.Sprintf("%s=%s: %s", e.Option, e.Value, e.Message)
}

// OverflowKind 区分宽度溢出与高度溢出。
type OverflowKind string

const (
	OverflowWidth  OverflowKind = "width"
	OverflowHeight OverflowKind = "height"
)

// OverflowReport 是可报告的溢出状态：内容超出可用空间但仍被完整绘制。
type OverflowReport struct {
	Kind    OverflowKind `json:"kind"`
	Page    int          `json:"page,omitempty"`
	Group   int          `json:"group"`
	Section Section      `json:"section,omitempty"`
	Row     int          `json:"row"`
	Amount  float64      `json:"amount"`
}
