package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "CHARCOUNT"

// 配置键，同时是命令行参数名；环境变量为 CHARCOUNT_ 加大写下划线形式。
const (
	KeyConfig           = "config"
	KeyStateDir         = "state-dir"
	KeyLogLevel         = "log-level"
	KeyLogFile          = "log-file"
	KeyClipboardTimeout = "clipboard-timeout"
	KeyMaxFileSize      = "max-file-size"
	KeyFormat           = "format"
	KeyIgnorePatterns   = "ignore-patterns"
)

// NewViper 返回绑定了 CHARCOUNT_* 环境变量的 viper 实例。
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Resolve 按 默认值 < 配置文件 < 环境变量 < 命令行参数 的顺序得到最终配置。
// 配置文件路径取 --config 或 CHARCOUNT_CONFIG。
func Resolve(v *viper.Viper) (Config, string, error) {
	cfg := Default()
	path := strings.TrimSpace(v.GetString(KeyConfig))
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return cfg, path, err
		}
		cfg = Merge(cfg, loaded)
	}
	cfg = ApplyOverrides(cfg, v)
	if err := cfg.Validate(); err != nil {
		return cfg, path, err
	}
	return cfg, path, nil
}

// ApplyOverrides 只覆盖在环境变量或命令行中显式设置过的键。
func ApplyOverrides(cfg Config, v *viper.Viper) Config {
	over := Config{}
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	str(KeyStateDir, &over.StateDir)
	str(KeyLogLevel, &over.LogLevel)
	str(KeyLogFile, &over.LogFile)
	str(KeyClipboardTimeout, &over.ClipboardTimeout)
	str(KeyMaxFileSize, &over.MaxFileSize)
	str(KeyFormat, &over.Format)
	if v.IsSet(KeyIgnorePatterns) {
		over.IgnorePatterns = splitCSV(strings.Join(v.GetStringSlice(KeyIgnorePatterns), ","))
	}
	return Merge(cfg, over)
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func ParseBool(v string) (bool, error) {
	s := strings.ToLower(strings.TrimSpace(v))
	switch s {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool: %s", v)
	}
}
