package prefs

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"char-count/internal/count"
	"char-count/internal/kv"
)

const (
	KeyText     = "charCount_text"
	KeySettings = "charCount_settings"

	// 固定显示设置：始终开启参考线，每行 40 字。
	ShowGuide    = true
	CharsPerLine = 40
)

type Settings struct {
	count.Flags
	ShowGuide    bool `json:"showGuide"`
	CharsPerLine int  `json:"charsPerLine"`
}

func SettingsFor(flags count.Flags) Settings {
	return Settings{Flags: flags, ShowGuide: ShowGuide, CharsPerLine: CharsPerLine}
}

type Store struct {
	kv     kv.Store
	logger *slog.Logger
}

func NewStore(store kv.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: store, logger: logger}
}

// Load 读取上次保存的文本和开关。读取或解析失败只记日志，回退默认值。
func (s *Store) Load() (count.Flags, string) {
	text, _, err := s.kv.Get(KeyText)
	if err != nil {
		s.logger.Error("failed to read saved text", slog.String("key", KeyText), slog.Any("error", err))
		text = ""
	}
	raw, ok, err := s.kv.Get(KeySettings)
	if err != nil {
		s.logger.Error("failed to read saved settings", slog.String("key", KeySettings), slog.Any("error", err))
		return count.DefaultFlags(), text
	}
	if !ok || raw == "" {
		return count.DefaultFlags(), text
	}
	flags, err := ParseFlags(raw)
	if err != nil {
		s.logger.Error("failed to parse settings", slog.Any("error", err))
	}
	return flags, text
}

// Save 每次都写文本和设置。
func (s *Store) Save(flags count.Flags, text string) error {
	if err := s.kv.Set(KeyText, text); err != nil {
		return err
	}
	b, err := json.Marshal(SettingsFor(flags))
	if err != nil {
		return fmt.Errorf("序列化设置失败：%w", err)
	}
	return s.kv.Set(KeySettings, string(b))
}

// ParseFlags 逐字段解析：只有缺失的字段回退默认值，出现的字段按真值判断
// （null、false、0、"" 为假，其余为真），未知字段忽略。
// 整体不是 JSON 对象时返回默认值和错误。
func ParseFlags(raw string) (count.Flags, error) {
	flags := count.DefaultFlags()
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return flags, fmt.Errorf("设置不是有效 JSON 对象：%w", err)
	}
	pick := func(name string, dst *bool) {
		if v, ok := fields[name]; ok {
			*dst = truthy(v)
		}
	}
	pick("excludeSpaces", &flags.ExcludeSpaces)
	pick("excludeNewlines", &flags.ExcludeNewlines)
	pick("excludeTabs", &flags.ExcludeTabs)
	return flags, nil
}

func truthy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return true
	}
}
