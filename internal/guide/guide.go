package guide

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"char-count/internal/count"
)

const (
	DefaultCharsPerLine = 40
	// 一个参考线字宽按 1em 计，终端里是两个半角单元格。
	CellsPerEm = 2
)

// Spec 描述参考线：每行字数、行高、起始偏移和中线位置。
type Spec struct {
	CharsPerLine int     `json:"chars_per_line"`
	WidthEm      int     `json:"width_em"`
	RowHeightRem float64 `json:"row_height_rem"`
	OffsetRem    float64 `json:"offset_rem"`
	CenterColumn int     `json:"center_column"`
}

func Layout(charsPerLine int) Spec {
	if charsPerLine <= 0 {
		charsPerLine = DefaultCharsPerLine
	}
	return Spec{
		CharsPerLine: charsPerLine,
		WidthEm:      charsPerLine,
		RowHeightRem: 2,
		OffsetRem:    1,
		CenterColumn: charsPerLine / 2,
	}
}

// Cells 每行的终端单元格数。
func (s Spec) Cells() int {
	return s.WidthEm * CellsPerEm
}

// Wrap 按显示宽度折行。制表符按 1 个单元格算，宽字符不会被拆到两行。
func Wrap(text string, s Spec) []string {
	if text == "" {
		return []string{""}
	}
	limit := s.Cells()
	if limit <= 0 {
		limit = Layout(0).Cells()
	}
	var rows []string
	for _, line := range count.SplitLines(text) {
		rows = append(rows, wrapLine(line, limit)...)
	}
	return rows
}

// Rows 是文本占用的参考线行数，空文本为 0。
func Rows(text string, s Spec) int {
	if text == "" {
		return 0
	}
	return len(Wrap(text, s))
}

func wrapLine(line string, limit int) []string {
	if line == "" {
		return []string{""}
	}
	var rows []string
	var cur strings.Builder
	w := 0
	for _, r := range line {
		rw := cellWidth(r)
		if w+rw > limit && w > 0 {
			rows = append(rows, cur.String())
			cur.Reset()
			w = 0
		}
		cur.WriteRune(r)
		w += rw
	}
	return append(rows, cur.String())
}

func cellWidth(r rune) int {
	w := runewidth.RuneWidth(r)
	if w <= 0 {
		return 1
	}
	return w
}

// Ruler 画一条参考线，中线位置用 ┼ 标出。
func Ruler(s Spec) string {
	cells := s.Cells()
	if cells <= 0 {
		return ""
	}
	center := s.CenterColumn * CellsPerEm
	var b strings.Builder
	for i := 0; i < cells; i++ {
		if i == center {
			b.WriteRune('┼')
			continue
		}
		b.WriteRune('─')
	}
	return b.String()
}
