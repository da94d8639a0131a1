package renderer

import "github.com/ByLCY/autotable/layout"

// Renderer 将布局计划输出为最终文件，例如 PDF。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(plan *layout.Plan) ([]byte, error)
}
