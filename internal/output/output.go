package output

import (
	"encoding/json"
	"fmt"
	"io"
)

const (
	FormatNDJSON = "ndjson"
	FormatJSON   = "json"
)

func ValidateFormat(f string) error {
	switch f {
	case FormatNDJSON, FormatJSON:
		return nil
	default:
		return fmt.Errorf("--format 只能是 ndjson 或 json，当前是：%s", f)
	}
}

// Write 按格式输出事件。ndjson 每行一个事件，json 包成 {"events": [...]}。
func Write(w io.Writer, format string, events []map[string]any) error {
	switch format {
	case FormatNDJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		for _, e := range events {
			if err := enc.Encode(e); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		b, err := json.MarshalIndent(map[string]any{"events": events}, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	default:
		return fmt.Errorf("不支持的输出格式：%s", format)
	}
}

// WriteEvent 输出单个事件，show/input/toggle 用。
func WriteEvent(w io.Writer, format string, e map[string]any) error {
	if format == FormatJSON {
		b, err := json.MarshalIndent(e, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}
	return Write(w, format, []map[string]any{e})
}
