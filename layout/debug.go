package layout

import (
	"os"

	jsoniter "github.com/json-iterator/go"
)

var debugJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// MarshalDebugJSON 将布局计划编码为缩进 JSON。
func MarshalDebugJSON(plan *Plan) ([]byte, error) {
	return debugJSON.MarshalIndent(plan, "", "  ")
}

// WriteDebugJSON 将布局计划输出为 JSON，便于调试或可视化。
func WriteDebugJSON(plan *Plan, path string) error {
	if plan == nil {
		return nil
	}
	data, err := MarshalDebugJSON(plan)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
