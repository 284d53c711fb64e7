package count

import (
	"strings"
	"unicode/utf8"
)

const (
	ideographicSpace = '　'
)

type Flags struct {
	ExcludeSpaces   bool `json:"excludeSpaces"`
	ExcludeNewlines bool `json:"excludeNewlines"`
	ExcludeTabs     bool `json:"excludeTabs"`
}

func DefaultFlags() Flags {
	return Flags{ExcludeSpaces: false, ExcludeNewlines: false, ExcludeTabs: true}
}

func (f Flags) Any() bool {
	return f.ExcludeSpaces || f.ExcludeNewlines || f.ExcludeTabs
}

type Result struct {
	Total     int `json:"total"`
	NoSpace   int `json:"no_space"`
	NoNewline int `json:"no_newline"`
	Lines     int `json:"lines"`
	Main      int `json:"main"`
}

// Count 计算全部指标。NoSpace/NoNewline 固定口径，不受 flags 影响。
// NoSpace 同时去掉空格和制表符。
func Count(text string, flags Flags) Result {
	res := Result{
		Total:     Length(text),
		NoSpace:   Length(RemoveTabs(RemoveSpaces(text))),
		NoNewline: Length(RemoveNewlines(text)),
		Lines:     Lines(text),
	}
	if !flags.Any() {
		res.Main = res.Total
		return res
	}
	main := text
	if flags.ExcludeSpaces {
		main = RemoveSpaces(main)
	}
	if flags.ExcludeTabs {
		main = RemoveTabs(main)
	}
	if flags.ExcludeNewlines {
		main = RemoveNewlines(main)
	}
	res.Main = Length(main)
	return res
}

// Length 按 UTF-16 code unit 计数：BMP 外的字符算 2。
func Length(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 && r <= utf8.MaxRune {
			n += 2
			continue
		}
		n++
	}
	return n
}

func IsSpace(r rune) bool {
	return r == ' ' || r == ideographicSpace
}

func IsTab(r rune) bool {
	return r == '\t'
}

func RemoveSpaces(s string) string {
	return removeRunes(s, IsSpace)
}

func RemoveTabs(s string) string {
	return removeRunes(s, IsTab)
}

// RemoveNewlines 去掉 CRLF、CR、LF。三种都由 \r 和 \n 组成，逐字符删除与按整段匹配删除结果一致。
func RemoveNewlines(s string) string {
	return removeRunes(s, func(r rune) bool { return r == '\r' || r == '\n' })
}

// Lines 按 CRLF/CR/LF 切分后的段数；空文本为 0，末尾换行会多出一个空段。
func Lines(s string) int {
	if s == "" {
		return 0
	}
	return len(SplitLines(s))
}

// SplitLines 按 CRLF/CR/LF 切分，CRLF 优先整体匹配。
func SplitLines(s string) []string {
	out := make([]string, 0, strings.Count(s, "\n")+1)
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\r':
			out = append(out, s[start:i])
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			start = i + 1
		case '\n':
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

func removeRunes(s string, drop func(rune) bool) string {
	if strings.IndexFunc(s, drop) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if drop(r) {
			return -1
		}
		return r
	}, s)
}
