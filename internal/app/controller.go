package app

import (
	"fmt"
	"log/slog"

	"char-count/internal/count"
	"char-count/internal/guide"
	"char-count/internal/prefs"
)

const ClearPrompt = "テキストを消去しますか？"

type Flag string

const (
	FlagSpaces   Flag = "spaces"
	FlagNewlines Flag = "newlines"
	FlagTabs     Flag = "tabs"
)

func ParseFlag(s string) (Flag, error) {
	switch Flag(s) {
	case FlagSpaces, FlagNewlines, FlagTabs:
		return Flag(s), nil
	}
	return "", fmt.Errorf("未知的开关：%s（可选 spaces/newlines/tabs）", s)
}

// Confirmer 在清空前询问用户，返回 true 才继续。
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Controller 持有当前文本、开关和最近一次结果。
// 每次状态变化都整体重算一次并写一次持久化。
type Controller struct {
	store  *prefs.Store
	logger *slog.Logger
	text   string
	flags  count.Flags
	result count.Result
	saved  bool
}

func NewController(store *prefs.Store, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	flags, text := store.Load()
	c := &Controller{store: store, logger: logger, text: text, flags: flags}
	c.result = count.Count(text, flags)
	return c
}

func (c *Controller) Text() string         { return c.text }
func (c *Controller) Flags() count.Flags   { return c.flags }
func (c *Controller) Result() count.Result { return c.result }

// Saved 报告最近一次持久化是否成功；还没发生过状态变化时为 false。
func (c *Controller) Saved() bool { return c.saved }

// Update 设置文本和开关，重算并保存。第二个返回值表示保存是否成功。
func (c *Controller) Update(text string, flags count.Flags) (count.Result, bool) {
	c.text = text
	c.flags = flags
	c.result = count.Count(text, flags)
	c.saved = true
	if err := c.store.Save(flags, text); err != nil {
		c.logger.Warn("failed to persist session", slog.Any("error", err))
		c.saved = false
	}
	return c.result, c.saved
}

func (c *Controller) Recount() count.Result {
	res, _ := c.Update(c.text, c.flags)
	return res
}

func (c *Controller) ApplyTextChange(text string) count.Result {
	res, _ := c.Update(text, c.flags)
	return res
}

func (c *Controller) ApplyFlagChange(flag Flag, on bool) count.Result {
	flags := c.flags
	switch flag {
	case FlagSpaces:
		flags.ExcludeSpaces = on
	case FlagNewlines:
		flags.ExcludeNewlines = on
	case FlagTabs:
		flags.ExcludeTabs = on
	default:
		c.logger.Warn("unknown flag ignored", slog.String("flag", string(flag)))
	}
	res, _ := c.Update(c.text, flags)
	return res
}

// Clear 需要确认；用户拒绝时不重算也不写入。
func (c *Controller) Clear(confirm Confirmer) (count.Result, bool) {
	if confirm == nil || !confirm.Confirm(ClearPrompt) {
		return c.result, false
	}
	return c.ApplyTextChange(""), true
}

// FlagValue 返回某个开关的当前值。
func (c *Controller) FlagValue(flag Flag) bool {
	switch flag {
	case FlagSpaces:
		return c.flags.ExcludeSpaces
	case FlagNewlines:
		return c.flags.ExcludeNewlines
	case FlagTabs:
		return c.flags.ExcludeTabs
	}
	return false
}

func (c *Controller) Summary() string {
	return count.FormatSummary(c.result)
}

// SessionEvent 描述当前会话的状态，供 show/input/toggle 输出。
func SessionEvent(c *Controller) map[string]any {
	r := c.Result()
	return map[string]any{
		"type":       "session_stats",
		"flags":      c.Flags(),
		"total":      r.Total,
		"no_space":   r.NoSpace,
		"no_newline": r.NoNewline,
		"lines":      r.Lines,
		"main":       r.Main,
		"guide_rows": guide.Rows(c.Text(), guide.Layout(prefs.CharsPerLine)),
		"persisted":  c.Saved(),
	}
}
