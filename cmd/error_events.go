package cmd

import (
	"io"

	"char-count/internal/output"
)

type cliErrorHint struct {
	NextAction  string
	FixExample  string
	DocKey      string
	Recoverable bool
}

// writeCLIError 在命令还没开始统计就失败时输出 meta/error/summary 三个事件，
// 让调用方（包括 AI）始终能拿到结构化的错误。
func writeCLIError(w io.Writer, format string, mode string, args []string, code, category, path, detail string, exitCode int) {
	h := cliHintByCode(code)
	events := []map[string]any{
		{
			"type":          "meta",
			"tool":          "char-count",
			"version":       Version,
			"mode":          mode,
			"args":          args,
			"output_format": normalizeFormat(format),
		},
		{
			"type":        "error",
			"code":        code,
			"category":    category,
			"path":        path,
			"detail":      detail,
			"next_action": h.NextAction,
			"fix_example": h.FixExample,
			"doc_key":     h.DocKey,
			"recoverable": h.Recoverable,
		},
		{
			"type":            "summary",
			"mode":            mode,
			"total_files":     0,
			"processed_files": 0,
			"skipped_files":   0,
			"error_count":     1,
			"exit_code":       exitCode,
		},
	}
	_ = output.Write(w, normalizeFormat(format), events)
}

func normalizeFormat(format string) string {
	if format == output.FormatJSON {
		return output.FormatJSON
	}
	return output.FormatNDJSON
}

func cliHintByCode(code string) cliErrorHint {
	switch code {
	case "arg_missing_paths":
		return cliErrorHint{
			NextAction:  "至少传一个文件或目录路径，或者通过管道传入文本",
			FixExample:  "char-count /path/to/input_dir",
			DocKey:      "arg.missing_paths",
			Recoverable: true,
		}
	case "invalid_output_format":
		return cliErrorHint{
			NextAction:  "把 --format 改为 ndjson 或 json",
			FixExample:  "char-count /path/to/input_dir --format ndjson",
			DocKey:      "arg.invalid_output_format",
			Recoverable: true,
		}
	case "invalid_max_file_size":
		return cliErrorHint{
			NextAction:  "把 --max-file-size 改成合法大小（如 10MB）",
			FixExample:  "char-count /path/to/input_dir --max-file-size 20MB",
			DocKey:      "arg.invalid_max_file_size",
			Recoverable: true,
		}
	case "invalid_input_paths":
		return cliErrorHint{
			NextAction:  "检查输入路径是否为空、是否可解析为绝对路径",
			FixExample:  "char-count /path/to/input_dir /path/to/file.md",
			DocKey:      "arg.invalid_input_paths",
			Recoverable: true,
		}
	case "invalid_toggle_flag", "invalid_toggle_value":
		return cliErrorHint{
			NextAction:  "开关名用 spaces/newlines/tabs，值用 on/off",
			FixExample:  "char-count toggle spaces on",
			DocKey:      "arg.invalid_toggle",
			Recoverable: true,
		}
	case "config_invalid":
		return cliErrorHint{
			NextAction:  "修正配置文件或 CHARCOUNT_* 环境变量后重试",
			FixExample:  "char-count show --config /path/to/char-count.yaml",
			DocKey:      "config.invalid",
			Recoverable: true,
		}
	case "stdin_read_failed":
		return cliErrorHint{
			NextAction:  "确认管道输入可读，或改为传文件路径",
			FixExample:  "char-count input /path/to/file.txt",
			DocKey:      "input.stdin_read_failed",
			Recoverable: true,
		}
	case "input_path_not_found", "file_read_failed":
		return cliErrorHint{
			NextAction:  "检查文件路径是否存在且可读",
			FixExample:  "char-count input /path/to/file.txt",
			DocKey:      "input.file_read_failed",
			Recoverable: true,
		}
	case "skipped_large_file":
		return cliErrorHint{
			NextAction:  "调大 --max-file-size 后重试",
			FixExample:  "char-count input /path/to/file.txt --max-file-size 50MB",
			DocKey:      "input.skipped_large_file",
			Recoverable: true,
		}
	case "skipped_binary_file", "decode_failed":
		return cliErrorHint{
			NextAction:  "只支持文本输入（UTF-8/UTF-16 或常见中日文编码）",
			FixExample:  "iconv -f <原编码> -t UTF-8 in.txt | char-count input -",
			DocKey:      "input.not_text",
			Recoverable: false,
		}
	case "cwd_failed":
		return cliErrorHint{
			NextAction:  "确认当前工作目录可访问，或切换到可访问目录",
			FixExample:  "cd /path/to/workspace && char-count /path/to/input_dir",
			DocKey:      "runtime.cwd_failed",
			Recoverable: true,
		}
	default:
		return cliErrorHint{
			NextAction:  "根据 detail 修正参数或配置后重试",
			FixExample:  "char-count --help",
			DocKey:      "general.error",
			Recoverable: true,
		}
	}
}
