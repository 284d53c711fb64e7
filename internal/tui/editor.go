package tui

import (
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"char-count/internal/guide"
)

// editor 直接编辑原始文本，不做任何规整：制表符、CR、CRLF 和非法字节都原样保留。
// pos 是字节偏移，CRLF 作为一个整体移动和删除。
type editor struct {
	text string
	pos  int
}

func newEditor(text string) editor {
	return editor{text: text, pos: len(text)}
}

// handle 处理编辑类按键，返回按键是否被消费。
func (e *editor) handle(msg tea.KeyMsg) bool {
	if msg.Alt && !msg.Paste {
		return false
	}
	switch msg.Type {
	case tea.KeyRunes:
		e.insert(string(msg.Runes))
	case tea.KeySpace:
		e.insert(" ")
	case tea.KeyTab:
		e.insert("\t")
	case tea.KeyEnter:
		e.insert("\n")
	case tea.KeyBackspace, tea.KeyCtrlH:
		if e.pos > 0 {
			start := prevBoundary(e.text, e.pos)
			e.text = e.text[:start] + e.text[e.pos:]
			e.pos = start
		}
	case tea.KeyDelete, tea.KeyCtrlD:
		if e.pos < len(e.text) {
			end := nextBoundary(e.text, e.pos)
			e.text = e.text[:e.pos] + e.text[end:]
		}
	case tea.KeyLeft, tea.KeyCtrlB:
		if e.pos > 0 {
			e.pos = prevBoundary(e.text, e.pos)
		}
	case tea.KeyRight, tea.KeyCtrlF:
		if e.pos < len(e.text) {
			e.pos = nextBoundary(e.text, e.pos)
		}
	case tea.KeyHome, tea.KeyCtrlA:
		e.pos = lineStart(e.text, e.pos)
	case tea.KeyEnd, tea.KeyCtrlE:
		e.pos = lineEnd(e.text, e.pos)
	case tea.KeyUp:
		e.lineUp()
	case tea.KeyDown:
		e.lineDown()
	default:
		return false
	}
	return true
}

func (e *editor) insert(s string) {
	e.text = e.text[:e.pos] + s + e.text[e.pos:]
	e.pos += len(s)
}

func (e *editor) lineUp() {
	start := lineStart(e.text, e.pos)
	if start == 0 {
		e.pos = 0
		return
	}
	col := utf8.RuneCountInString(e.text[start:e.pos])
	prev := lineStart(e.text, prevBoundary(e.text, start))
	e.pos = advance(e.text, prev, col)
}

func (e *editor) lineDown() {
	end := lineEnd(e.text, e.pos)
	if end == len(e.text) {
		e.pos = end
		return
	}
	col := utf8.RuneCountInString(e.text[lineStart(e.text, e.pos):e.pos])
	e.pos = advance(e.text, nextBoundary(e.text, end), col)
}

func prevBoundary(s string, pos int) int {
	if pos >= 2 && s[pos-2:pos] == "\r\n" {
		return pos - 2
	}
	_, w := utf8.DecodeLastRuneInString(s[:pos])
	return pos - w
}

func nextBoundary(s string, pos int) int {
	if strings.HasPrefix(s[pos:], "\r\n") {
		return pos + 2
	}
	_, w := utf8.DecodeRuneInString(s[pos:])
	return pos + w
}

func lineStart(s string, pos int) int {
	return strings.LastIndexAny(s[:pos], "\r\n") + 1
}

func lineEnd(s string, pos int) int {
	if i := strings.IndexAny(s[pos:], "\r\n"); i >= 0 {
		return pos + i
	}
	return len(s)
}

// advance 从行首向后走 n 个字符，不越过行尾。
func advance(s string, from, n int) int {
	end := lineEnd(s, from)
	pos := from
	for i := 0; i < n && pos < end; i++ {
		_, w := utf8.DecodeRuneInString(s[pos:])
		pos += w
	}
	return pos
}

// render 按参考线宽度折行，返回各行和光标所在行。
// 制表符显示为一个空格，和 guide.Wrap 的宽度计算一致。
func (e editor) render(spec guide.Spec, cursor lipgloss.Style) ([]string, int) {
	rows := guide.Wrap(displayText(e.text), spec)
	before := guide.Wrap(displayText(e.text[:e.pos]), spec)
	row := len(before) - 1
	col := utf8.RuneCountInString(before[row])
	if row >= len(rows) {
		rows = append(rows, "")
	}

	line := []rune(rows[row])
	if col < len(line) {
		rows[row] = string(line[:col]) + cursor.Render(string(line[col])) + string(line[col+1:])
	} else {
		rows[row] = rows[row] + cursor.Render(" ")
	}
	return rows, row
}

func displayText(s string) string {
	return strings.ReplaceAll(s, "\t", " ")
}
