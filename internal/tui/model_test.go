package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"

	"char-count/internal/app"
	"char-count/internal/clipboard"
	"char-count/internal/count"
	"char-count/internal/kv"
	"char-count/internal/logging"
	"char-count/internal/prefs"
)

type fakeClipboard struct {
	got string
	err error
}

func (f *fakeClipboard) WriteText(_ context.Context, s string) error {
	if f.err != nil {
		return f.err
	}
	f.got = s
	return nil
}

func newTestModel(t *testing.T, cb *fakeClipboard) (Model, *app.Controller) {
	t.Helper()
	store := prefs.NewStore(kv.NewFileStore(afero.NewMemMapFs(), "/state"), logging.Discard())
	ctrl := app.NewController(store, logging.Discard())
	copier := &clipboard.Copier{Primary: cb, Logger: logging.Discard()}
	return New(ctrl, copier, logging.Discard()), ctrl
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return nm, cmd
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		var msg tea.KeyMsg
		if r == '\n' {
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		} else {
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
		}
		m, _ = send(t, m, msg)
	}
	return m
}

func TestTypingRecounts(t *testing.T) {
	m, ctrl := newTestModel(t, &fakeClipboard{})
	m = typeText(t, m, "ab c")
	if ctrl.Text() != "ab c" {
		t.Fatalf("controller text not updated: %q", ctrl.Text())
	}
	want := count.Result{Total: 4, NoSpace: 3, NoNewline: 4, Lines: 1, Main: 4}
	if ctrl.Result() != want {
		t.Fatalf("unexpected result: %+v", ctrl.Result())
	}
	if !m.popping {
		t.Fatalf("counter should pop after recount")
	}
	if !strings.Contains(m.View(), "文字数: 4") {
		t.Fatalf("view missing main count:\n%s", m.View())
	}
}

func TestToggleKeys(t *testing.T) {
	m, ctrl := newTestModel(t, &fakeClipboard{})
	m = typeText(t, m, "a b")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if !ctrl.Flags().ExcludeSpaces || ctrl.Result().Main != 2 {
		t.Fatalf("ctrl+s should exclude spaces: %+v %+v", ctrl.Flags(), ctrl.Result())
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	if ctrl.Flags().ExcludeTabs {
		t.Fatalf("ctrl+t should turn tabs off")
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	if !ctrl.Flags().ExcludeNewlines {
		t.Fatalf("ctrl+n should turn newlines on")
	}
	if ctrl.Text() != "a b" {
		t.Fatalf("toggles must not edit text: %q", ctrl.Text())
	}
	if !strings.Contains(m.View(), "[x] 空白を除外") {
		t.Fatalf("toggle state not rendered:\n%s", m.View())
	}
}

func TestPopEndsOnlyForLatestRecount(t *testing.T) {
	m, _ := newTestModel(t, &fakeClipboard{})
	m = typeText(t, m, "ab")
	m, _ = send(t, m, popEndMsg{id: m.popID - 1})
	if !m.popping {
		t.Fatalf("stale pop end must be ignored")
	}
	m, _ = send(t, m, popEndMsg{id: m.popID})
	if m.popping {
		t.Fatalf("pop should end")
	}
}

func TestCopyShowsFeedback(t *testing.T) {
	cb := &fakeClipboard{}
	m, _ := newTestModel(t, cb)
	m = typeText(t, m, "hello")

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	if cmd == nil {
		t.Fatalf("copy should return a command")
	}
	msg := cmd()
	if cb.got != "hello" {
		t.Fatalf("clipboard got %q", cb.got)
	}
	m, tick := send(t, m, msg)
	if m.feedback != feedbackText || tick == nil {
		t.Fatalf("expected success feedback, got %q", m.feedback)
	}
	m, _ = send(t, m, feedbackEndMsg{id: m.feedbackID})
	if m.feedback != "" {
		t.Fatalf("feedback should clear")
	}
}

func TestCopySummary(t *testing.T) {
	cb := &fakeClipboard{}
	m, ctrl := newTestModel(t, cb)
	m = typeText(t, m, "ab")
	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	cmd()
	if cb.got != ctrl.Summary() || !strings.HasPrefix(cb.got, "文字数カウント結果") {
		t.Fatalf("unexpected summary copy: %q", cb.got)
	}
}

func TestCopyFailureShowsNothing(t *testing.T) {
	m, _ := newTestModel(t, &fakeClipboard{err: errors.New("no display")})
	m = typeText(t, m, "x")
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	m, _ = send(t, m, cmd())
	if m.feedback != "" {
		t.Fatalf("failed copy must not show feedback")
	}

	empty, _ := newTestModel(t, &fakeClipboard{})
	_, cmd = send(t, empty, tea.KeyMsg{Type: tea.KeyCtrlY})
	if done, ok := cmd().(copyDoneMsg); !ok || !errors.Is(done.err, clipboard.ErrEmpty) {
		t.Fatalf("empty copy should report ErrEmpty: %#v", done)
	}
}

func TestClearConfirmation(t *testing.T) {
	m, ctrl := newTestModel(t, &fakeClipboard{})
	m = typeText(t, m, "abc")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	if !m.confirming || !strings.Contains(m.View(), app.ClearPrompt) {
		t.Fatalf("ctrl+l should ask for confirmation")
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if !m.confirming || ctrl.Text() != "abc" {
		t.Fatalf("other keys must be ignored while confirming")
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if m.confirming || ctrl.Text() != "abc" {
		t.Fatalf("n should cancel")
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	if ctrl.Text() != "" || m.edit.text != "" || m.edit.pos != 0 {
		t.Fatalf("y should clear: %q %q", ctrl.Text(), m.edit.text)
	}
	if ctrl.Result() != (count.Result{}) {
		t.Fatalf("result should be zero after clear: %+v", ctrl.Result())
	}
}

func TestQuitKeys(t *testing.T) {
	m, _ := newTestModel(t, &fakeClipboard{})
	for _, k := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		_, cmd := send(t, m, tea.KeyMsg{Type: k})
		if cmd == nil {
			t.Fatalf("%v should quit", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%v should return tea.Quit", k)
		}
	}
}

func TestRestoredTextShownInArea(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := prefs.NewStore(kv.NewFileStore(fs, "/state"), logging.Discard())
	if err := store.Save(count.DefaultFlags(), "saved"); err != nil {
		t.Fatal(err)
	}
	ctrl := app.NewController(store, logging.Discard())
	m := New(ctrl, nil, logging.Discard())
	if m.edit.text != "saved" || m.edit.pos != len("saved") {
		t.Fatalf("editor should hold restored text with cursor at end: %+v", m.edit)
	}
	if !strings.Contains(m.View(), "saved") {
		t.Fatalf("view should show restored text:\n%s", m.View())
	}
}

func restoredModel(t *testing.T, text string) (Model, *app.Controller, *prefs.Store) {
	t.Helper()
	store := prefs.NewStore(kv.NewFileStore(afero.NewMemMapFs(), "/state"), logging.Discard())
	if err := store.Save(count.DefaultFlags(), text); err != nil {
		t.Fatal(err)
	}
	ctrl := app.NewController(store, logging.Discard())
	return New(ctrl, nil, logging.Discard()), ctrl, store
}

func TestEditKeepsTabsAndCRLF(t *testing.T) {
	m, ctrl, store := restoredModel(t, "a\tb\r\nc")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})

	if ctrl.Text() != "a\tb\r\ncx" {
		t.Fatalf("text rewritten: %q", ctrl.Text())
	}
	if r := ctrl.Result(); r.Total != 7 || r.Lines != 2 {
		t.Fatalf("unexpected result: %+v", r)
	}
	if _, text := store.Load(); text != "a\tb\r\ncx" {
		t.Fatalf("persisted text rewritten: %q", text)
	}
	if !strings.Contains(m.View(), "文字数: 6") {
		t.Fatalf("default flags should exclude the tab:\n%s", m.View())
	}
}

func TestTabKeyAndPastePreserveControlChars(t *testing.T) {
	m, ctrl := newTestModel(t, &fakeClipboard{})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p\tq\r\n"), Paste: true})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if ctrl.Text() != "p\tq\r\n\t" {
		t.Fatalf("paste or tab rewritten: %q", ctrl.Text())
	}
	if r := ctrl.Result(); r.Lines != 2 || r.Main != 4 {
		t.Fatalf("unexpected result: %+v", r)
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	if ctrl.Result().Main != 6 {
		t.Fatalf("ctrl+t should count tabs again: %+v", ctrl.Result())
	}
	_ = m
}

func TestCursorMovesOverCRLFAsOneBreak(t *testing.T) {
	m, ctrl, _ := restoredModel(t, "ab\r\ncd")
	for _, k := range []tea.KeyType{tea.KeyLeft, tea.KeyLeft, tea.KeyLeft} {
		m, _ = send(t, m, tea.KeyMsg{Type: k})
	}
	if m.edit.pos != len("ab") {
		t.Fatalf("cursor should sit before CRLF: %d", m.edit.pos)
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDelete})
	if ctrl.Text() != "abcd" {
		t.Fatalf("delete should drop the whole CRLF: %q", ctrl.Text())
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	if ctrl.Text() != "abcd" || m.edit.pos != 2 {
		t.Fatalf("backspace should undo the newline: %q pos=%d", ctrl.Text(), m.edit.pos)
	}
}

func TestCursorLineUpDown(t *testing.T) {
	m, _, _ := restoredModel(t, "abc\rde\nfghi")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.edit.pos != len("abc\rde") {
		t.Fatalf("up should clamp to shorter line end: %d", m.edit.pos)
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.edit.pos != 2 {
		t.Fatalf("up should keep column 2: %d", m.edit.pos)
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyHome})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.edit.pos != len("abc\r") {
		t.Fatalf("down should land on second line start: %d", m.edit.pos)
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnd})
	if m.edit.pos != len("abc\rde") {
		t.Fatalf("end should stop before the break: %d", m.edit.pos)
	}
}

func TestInvalidBytesSurviveEditing(t *testing.T) {
	m, ctrl, _ := restoredModel(t, "a\xffb")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	if ctrl.Text() != "ab" {
		t.Fatalf("backspace should remove one invalid byte: %q", ctrl.Text())
	}
	_ = m
}
