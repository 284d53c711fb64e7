package app

type errorHint struct {
	NextAction  string
	FixExample  string
	DocKey      string
	Recoverable bool
}

// 批量统计里出错的文件只跳过自己，其余文件照常统计，所以都是可恢复的。
var inputHints = map[string]errorHint{
	"input_path_not_found": {
		NextAction: "确认路径存在且拼写正确；相对路径按当前目录解析",
		FixExample: "char-count ./docs/chapter1.txt",
		DocKey:     "input.path_not_found",
	},
	"input_abs_failed": {
		NextAction: "当前目录可能已被删除或不可访问，换到有效目录后重试，或改传绝对路径",
		FixExample: "cd \"$HOME\" && char-count /abs/path/to/text.txt",
		DocKey:     "input.path_resolve",
	},
	"input_stat_failed": {
		NextAction: "检查路径所在目录是否有执行（进入）权限",
		FixExample: "ls -ld /path/to && char-count /path/to/text.txt",
		DocKey:     "input.path_access",
	},
	"walk_error": {
		NextAction: "目录中有子目录无法读取，已跳过；不需要统计的目录可以用 --ignore-patterns 排除",
		FixExample: "char-count ./docs --ignore-patterns 'private/**'",
		DocKey:     "input.walk_error",
	},
	"file_stat_failed": {
		NextAction: "文件在扫描后被移动或删除，确认后重新统计",
		FixExample: "char-count ./docs",
		DocKey:     "input.file_changed",
	},
	"file_read_failed": {
		NextAction: "检查文件读权限",
		FixExample: "chmod +r ./docs/chapter1.txt && char-count ./docs/chapter1.txt",
		DocKey:     "input.file_read",
	},
	"symlink_skipped": {
		NextAction: "char-count 不跟随软链接，请直接传链接指向的文件",
		FixExample: "char-count \"$(readlink -f ./latest.txt)\"",
		DocKey:     "input.symlink_skipped",
	},
	"skipped_large_file": {
		NextAction: "增大 --max-file-size，或用 --ignore-patterns 排除该文件",
		FixExample: "char-count ./docs --max-file-size 50MB",
		DocKey:     "input.max_file_size",
	},
	"skipped_binary_file": {
		NextAction: "只统计文本文件，图片、压缩包等用 --ignore-patterns 排除",
		FixExample: "char-count ./docs --ignore-patterns '**/*.{png,jpg,zip,pdf}'",
		DocKey:     "input.binary_skipped",
	},
	"decode_failed": {
		NextAction: "支持 utf-8（含 BOM）、utf-16、shift_jis、euc-jp，其他编码先转成 utf-8",
		FixExample: "iconv -f cp932 -t utf-8 in.txt > out.txt && char-count out.txt",
		DocKey:     "input.decode_failed",
	},
}

func hintByCode(code string) errorHint {
	h, ok := inputHints[code]
	if !ok {
		h = errorHint{
			NextAction: "根据 detail 修正输入后重试",
			FixExample: "char-count --help",
			DocKey:     "general.error",
		}
	}
	h.Recoverable = true
	return h
}

func buildErrorEvent(category, code, path, detail string) map[string]any {
	h := hintByCode(code)
	return map[string]any{
		"type":        "error",
		"code":        code,
		"category":    category,
		"path":        path,
		"detail":      detail,
		"next_action": h.NextAction,
		"fix_example": h.FixExample,
		"doc_key":     h.DocKey,
		"recoverable": h.Recoverable,
	}
}
