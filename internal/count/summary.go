package count

import (
	"fmt"
	"strings"
)

const summarySeparator = "------------------"

// FormatSummary 生成复制用的结果文本，首尾不留空行。
func FormatSummary(r Result) string {
	var b strings.Builder
	b.WriteString("\n文字数カウント結果\n")
	b.WriteString(summarySeparator + "\n")
	fmt.Fprintf(&b, "総数（設定適用）: %d\n", r.Main)
	fmt.Fprintf(&b, "空白除外: %d\n", r.NoSpace)
	fmt.Fprintf(&b, "改行除外: %d\n", r.NoNewline)
	fmt.Fprintf(&b, "行数: %d\n", r.Lines)
	b.WriteString(summarySeparator + "\n")
	return strings.TrimSpace(b.String())
}
