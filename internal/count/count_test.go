package count

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func allFlags() []Flags {
	out := make([]Flags, 0, 8)
	for i := 0; i < 8; i++ {
		out = append(out, Flags{
			ExcludeSpaces:   i&1 != 0,
			ExcludeNewlines: i&2 != 0,
			ExcludeTabs:     i&4 != 0,
		})
	}
	return out
}

var samples = []string{
	"",
	" ",
	"\t\t",
	"\r\n",
	"ab cd\tef\n",
	"line1\r\nline2\rline3\nline4",
	"全角　スペース　と\t混在\r\n",
	"😀 emoji\n",
	"\n\n\n",
	"\r\r\n\n",
}

func TestCountDefaultScenario(t *testing.T) {
	got := Count("ab cd\tef\n", DefaultFlags())
	want := Result{Total: 9, NoSpace: 7, NoNewline: 8, Lines: 2, Main: 8}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("count mismatch (-want +got):\n%s", diff)
	}
}

func TestCountEmpty(t *testing.T) {
	for _, f := range allFlags() {
		if got := Count("", f); got != (Result{}) {
			t.Fatalf("empty text flags=%+v got %+v", f, got)
		}
	}
}

func TestLinesMixedTerminators(t *testing.T) {
	if n := Lines("line1\r\nline2\rline3\nline4"); n != 4 {
		t.Fatalf("expected 4 lines, got %d", n)
	}
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"a\nb", 2},
		{"a\nb\n", 3},
		{"\r\n", 2},
		{"\r\r\n", 3},
		{"\n\r", 3},
		{"   ", 1},
	}
	for _, c := range cases {
		if got := Lines(c.in); got != c.want {
			t.Fatalf("Lines(%q) got %d want %d", c.in, got, c.want)
		}
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("a\r\nb\rc\nd\n")
	want := []string{"a", "b", "c", "d", ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("split mismatch (-want +got):\n%s", diff)
	}
}

func TestLengthUTF16(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abc", 3},
		{"日本語", 3},
		{"😀", 2},
		{"a😀b", 4},
		{"\xff", 1},
	}
	for _, c := range cases {
		if got := Length(c.in); got != c.want {
			t.Fatalf("Length(%q) got %d want %d", c.in, got, c.want)
		}
	}
}

func TestNoSpaceRemovesSpacesAndTabs(t *testing.T) {
	for _, s := range samples {
		n := 0
		for _, r := range s {
			if IsSpace(r) || IsTab(r) {
				n++
			}
		}
		got := Count(s, Flags{}).NoSpace
		if got != Length(s)-n {
			t.Fatalf("NoSpace(%q) got %d want %d", s, got, Length(s)-n)
		}
	}
}

func TestFixedMetricsIgnoreFlags(t *testing.T) {
	for _, s := range samples {
		base := Count(s, Flags{})
		for _, f := range allFlags() {
			r := Count(s, f)
			if r.Total != base.Total || r.NoSpace != base.NoSpace || r.NoNewline != base.NoNewline || r.Lines != base.Lines {
				t.Fatalf("fixed metrics changed with flags=%+v text=%q: %+v vs %+v", f, s, r, base)
			}
		}
	}
}

func TestMainBoundedByTotal(t *testing.T) {
	s := "a b\tc\nd"
	for _, f := range allFlags() {
		r := Count(s, f)
		if r.Main > r.Total {
			t.Fatalf("main > total for flags=%+v: %+v", f, r)
		}
		if (r.Main == r.Total) != !f.Any() {
			t.Fatalf("main==total should hold only without flags, flags=%+v r=%+v", f, r)
		}
	}
	for _, s := range samples {
		if r := Count(s, Flags{}); r.Main != r.Total {
			t.Fatalf("no flags: main %d != total %d for %q", r.Main, r.Total, s)
		}
	}
}

func TestMainFlagCombinations(t *testing.T) {
	s := "a b　c\td\r\ne"
	cases := []struct {
		flags Flags
		want  int
	}{
		{Flags{}, 10},
		{Flags{ExcludeSpaces: true}, 8},
		{Flags{ExcludeTabs: true}, 9},
		{Flags{ExcludeNewlines: true}, 8},
		{Flags{ExcludeSpaces: true, ExcludeTabs: true, ExcludeNewlines: true}, 5},
	}
	for _, c := range cases {
		if got := Count(s, c.flags).Main; got != c.want {
			t.Fatalf("flags=%+v got %d want %d", c.flags, got, c.want)
		}
	}
}

func TestRemovalIdempotentAndCommutative(t *testing.T) {
	removals := []func(string) string{RemoveSpaces, RemoveTabs, RemoveNewlines}
	for _, s := range samples {
		for _, rm := range removals {
			once := rm(s)
			if rm(once) != once {
				t.Fatalf("removal not idempotent for %q", s)
			}
		}
		want := RemoveNewlines(RemoveTabs(RemoveSpaces(s)))
		orders := [][3]int{{0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
		for _, o := range orders {
			got := removals[o[2]](removals[o[1]](removals[o[0]](s)))
			if got != want {
				t.Fatalf("order %v changed result for %q: %q vs %q", o, s, got, want)
			}
		}
	}
}

func TestTabIsNotSpace(t *testing.T) {
	if IsSpace('\t') {
		t.Fatalf("tab must not be in space class")
	}
	if got := RemoveSpaces("a\tb"); got != "a\tb" {
		t.Fatalf("RemoveSpaces touched tab: %q", got)
	}
	if got := RemoveSpaces("a\u00a0b"); got != "a\u00a0b" {
		t.Fatalf("only ASCII and ideographic spaces are removed: %q", got)
	}
}

func TestFormatSummary(t *testing.T) {
	got := FormatSummary(Result{Total: 9, NoSpace: 7, NoNewline: 8, Lines: 2, Main: 8})
	want := strings.Join([]string{
		"文字数カウント結果",
		"------------------",
		"総数（設定適用）: 8",
		"空白除外: 7",
		"改行除外: 8",
		"行数: 2",
		"------------------",
	}, "\n")
	if got != want {
		t.Fatalf("summary mismatch:\n%s\nwant:\n%s", got, want)
	}
}
