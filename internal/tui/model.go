package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"char-count/internal/app"
	"char-count/internal/clipboard"
	"char-count/internal/count"
	"char-count/internal/guide"
	"char-count/internal/prefs"
)

const (
	feedbackText     = "✓ 完了"
	feedbackDuration = 1500 * time.Millisecond
	popDuration      = 200 * time.Millisecond
	areaHeight       = 10
	placeholder      = "ここにテキストを入力..."
)

var (
	accentColor = lipgloss.Color("205")
	mutedColor  = lipgloss.Color("240")
	okColor     = lipgloss.Color("46")

	titleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

	mainStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

	popStyle = mainStyle.Foreground(accentColor)

	detailStyle = lipgloss.NewStyle().Foreground(mutedColor).Padding(0, 1)

	rulerStyle = lipgloss.NewStyle().Foreground(mutedColor)

	feedbackStyle = lipgloss.NewStyle().Foreground(okColor).Padding(0, 1)

	confirmStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor).Padding(0, 1)

	helpStyle = lipgloss.NewStyle().Foreground(mutedColor).Italic(true).Padding(0, 1)

	cursorStyle = lipgloss.NewStyle().Reverse(true)

	placeholderStyle = lipgloss.NewStyle().Foreground(mutedColor)
)

type copyDoneMsg struct{ err error }

type feedbackEndMsg struct{ id int }

type popEndMsg struct{ id int }

// Model 是 bubbletea 模型；Controller 只在 Update 中被修改。
type Model struct {
	ctrl   *app.Controller
	copier *clipboard.Copier
	logger *slog.Logger

	edit  editor
	area  viewport.Model
	guide guide.Spec

	confirming bool
	feedback   string
	feedbackID int
	popping    bool
	popID      int
	width      int
}

func New(ctrl *app.Controller, copier *clipboard.Copier, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}
	spec := guide.Layout(prefs.CharsPerLine)

	m := Model{
		ctrl:   ctrl,
		copier: copier,
		logger: logger,
		edit:   newEditor(ctrl.Text()),
		area:   viewport.New(spec.Cells()+1, areaHeight),
		guide:  spec,
	}
	m.syncArea()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		// 终端比指南线窄时收窄输入框，折行照常按 40 字计算。多留一格给行尾光标。
		w := m.guide.Cells() + 1
		if m.width > 0 && m.width < w {
			w = m.width
		}
		m.area.Width = w
		m.syncArea()
		return m, nil

	case copyDoneMsg:
		if msg.err != nil {
			if !errors.Is(msg.err, clipboard.ErrEmpty) {
				m.logger.Error("copy failed", slog.Any("error", msg.err))
			}
			return m, nil
		}
		m.feedbackID++
		m.feedback = feedbackText
		id := m.feedbackID
		return m, tea.Tick(feedbackDuration, func(time.Time) tea.Msg { return feedbackEndMsg{id: id} })

	case feedbackEndMsg:
		if msg.id == m.feedbackID {
			m.feedback = ""
		}
		return m, nil

	case popEndMsg:
		if msg.id == m.popID {
			m.popping = false
		}
		return m, nil

	case tea.KeyMsg:
		if m.confirming {
			return m.handleConfirm(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "ctrl+s":
		return m.toggle(app.FlagSpaces)
	case "ctrl+n":
		return m.toggle(app.FlagNewlines)
	case "ctrl+t":
		return m.toggle(app.FlagTabs)
	case "ctrl+y":
		return m, copyCmd(m.copier, m.ctrl.Text())
	case "ctrl+r":
		return m, copyCmd(m.copier, m.ctrl.Summary())
	case "ctrl+l":
		m.confirming = true
		return m, nil
	}

	if !m.edit.handle(msg) {
		return m, nil
	}
	m.syncArea()
	if m.edit.text != m.ctrl.Text() {
		m.ctrl.ApplyTextChange(m.edit.text)
		return m, m.pop()
	}
	return m, nil
}

// syncArea 把编辑内容渲染进视口，并让光标所在行保持可见。
func (m *Model) syncArea() {
	if m.edit.text == "" {
		m.area.SetContent(cursorStyle.Render(" ") + placeholderStyle.Render(placeholder))
		m.area.SetYOffset(0)
		return
	}
	rows, row := m.edit.render(m.guide, cursorStyle)
	m.area.SetContent(strings.Join(rows, "\n"))
	if row < m.area.YOffset {
		m.area.SetYOffset(row)
	} else if row >= m.area.YOffset+m.area.Height {
		m.area.SetYOffset(row - m.area.Height + 1)
	}
}

// handleConfirm 处理清空确认：y 清空，n/esc 取消，其他键忽略。
func (m Model) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var answer bool
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		answer = true
	case "n", "esc":
		answer = false
	case "ctrl+c":
		return m, tea.Quit
	default:
		return m, nil
	}
	m.confirming = false
	if _, cleared := m.ctrl.Clear(app.ConfirmFunc(func(string) bool { return answer })); cleared {
		m.edit = newEditor("")
		m.syncArea()
		return m, m.pop()
	}
	return m, nil
}

func (m Model) toggle(flag app.Flag) (tea.Model, tea.Cmd) {
	m.ctrl.ApplyFlagChange(flag, !m.ctrl.FlagValue(flag))
	return m, m.pop()
}

func (m *Model) pop() tea.Cmd {
	m.popID++
	m.popping = true
	id := m.popID
	return tea.Tick(popDuration, func(time.Time) tea.Msg { return popEndMsg{id: id} })
}

func copyCmd(c *clipboard.Copier, s string) tea.Cmd {
	return func() tea.Msg {
		if c == nil {
			return copyDoneMsg{err: errors.New("没有配置剪贴板")}
		}
		return copyDoneMsg{err: c.Copy(context.Background(), s)}
	}
}

func (m Model) View() string {
	var b strings.Builder
	res := m.ctrl.Result()

	b.WriteString(titleStyle.Render("文字数カウント"))
	b.WriteString("\n\n")

	counter := mainStyle
	if m.popping {
		counter = popStyle
	}
	b.WriteString(counter.Render(fmt.Sprintf("文字数: %d", res.Main)))
	if m.feedback != "" {
		b.WriteString(feedbackStyle.Render(m.feedback))
	}
	b.WriteString("\n")
	b.WriteString(detailStyle.Render(detailLine(res, guide.Rows(m.ctrl.Text(), m.guide))))
	b.WriteString("\n")
	b.WriteString(detailStyle.Render(toggleLine(m.ctrl.Flags())))
	b.WriteString("\n\n")

	b.WriteString(rulerStyle.Render(guide.Ruler(m.guide)))
	b.WriteString("\n")
	b.WriteString(m.area.View())
	b.WriteString("\n\n")

	if m.confirming {
		b.WriteString(confirmStyle.Render(app.ClearPrompt + " (y/n)"))
	} else {
		b.WriteString(helpStyle.Render("ctrl+s/n/t 切替 • ctrl+y テキストをコピー • ctrl+r 結果をコピー • ctrl+l 消去 • esc 終了"))
	}
	b.WriteString("\n")
	return b.String()
}

func detailLine(r count.Result, rows int) string {
	return fmt.Sprintf("総数 %d • 空白除外 %d • 改行除外 %d • 行数 %d • ガイド %d 行", r.Total, r.NoSpace, r.NoNewline, r.Lines, rows)
}

func toggleLine(f count.Flags) string {
	box := func(on bool) string {
		if on {
			return "[x]"
		}
		return "[ ]"
	}
	return fmt.Sprintf("%s 空白を除外  %s 改行を除外  %s タブを除外",
		box(f.ExcludeSpaces), box(f.ExcludeNewlines), box(f.ExcludeTabs))
}

// Run 启动交互会话，直到用户退出。
func Run(ctx context.Context, ctrl *app.Controller, copier *clipboard.Copier, logger *slog.Logger) error {
	p := tea.NewProgram(New(ctrl, copier, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
