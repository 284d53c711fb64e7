package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultClipboardTimeout = 2 * time.Second
	DefaultMaxFileSize      = "10MB"
	DefaultFormat           = "ndjson"
)

type Config struct {
	StateDir         string   `yaml:"state_dir"`
	LogLevel         string   `yaml:"log_level"`
	LogFile          string   `yaml:"log_file"`
	ClipboardTimeout string   `yaml:"clipboard_timeout"`
	MaxFileSize      string   `yaml:"max_file_size"`
	Format           string   `yaml:"format"`
	IgnorePatterns   []string `yaml:"ignore_patterns"`
}

// Default 返回内置默认值；状态目录放在用户配置目录下。
func Default() Config {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, "char-count")
	return Config{
		StateDir:         dir,
		LogLevel:         "info",
		LogFile:          defaultLogFile(dir),
		ClipboardTimeout: DefaultClipboardTimeout.String(),
		MaxFileSize:      DefaultMaxFileSize,
		Format:           DefaultFormat,
	}
}

func Load(path string) (Config, error) {
	var cfg Config
	if strings.TrimSpace(path) == "" {
		return cfg, fmt.Errorf("配置文件路径为空")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("读取配置文件失败：%w", err)
	}
	expanded, err := expandEnv(string(b))
	if err != nil {
		return cfg, err
	}
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("解析配置文件失败：%w", err)
	}
	return cfg, nil
}

// Merge 用 over 中非空的字段覆盖 base。日志文件未单独指定时跟随状态目录。
func Merge(base, over Config) Config {
	out := base
	followLog := strings.TrimSpace(over.LogFile) == "" && base.LogFile == defaultLogFile(base.StateDir)
	set := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&out.StateDir, over.StateDir)
	set(&out.LogLevel, over.LogLevel)
	set(&out.LogFile, over.LogFile)
	set(&out.ClipboardTimeout, over.ClipboardTimeout)
	set(&out.MaxFileSize, over.MaxFileSize)
	set(&out.Format, over.Format)
	if len(over.IgnorePatterns) > 0 {
		out.IgnorePatterns = append([]string(nil), over.IgnorePatterns...)
	}
	if followLog {
		out.LogFile = defaultLogFile(out.StateDir)
	}
	return out
}

func defaultLogFile(stateDir string) string {
	return filepath.Join(stateDir, "char-count.log")
}

func (c Config) Validate() error {
	if c.Format != "ndjson" && c.Format != "json" {
		return fmt.Errorf("不支持的输出格式：%s（仅支持 ndjson/json）", c.Format)
	}
	if strings.TrimSpace(c.StateDir) == "" {
		return fmt.Errorf("state_dir 不能为空")
	}
	if _, err := ParseSizeToBytes(c.MaxFileSize); err != nil {
		return fmt.Errorf("max_file_size 配置错误：%w", err)
	}
	if _, err := c.ClipboardTimeoutDuration(); err != nil {
		return err
	}
	return nil
}

func (c Config) ClipboardTimeoutDuration() (time.Duration, error) {
	s := strings.TrimSpace(c.ClipboardTimeout)
	if s == "" {
		return DefaultClipboardTimeout, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("clipboard_timeout 配置错误：%s", c.ClipboardTimeout)
	}
	return d, nil
}

var envExpr = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

func expandEnv(src string) (string, error) {
	var out strings.Builder
	last := 0
	for _, idx := range envExpr.FindAllStringSubmatchIndex(src, -1) {
		out.WriteString(src[last:idx[0]])
		name := src[idx[2]:idx[3]]
		hasDefault := idx[4] >= 0 && idx[5] >= 0
		defVal := ""
		if hasDefault && idx[6] >= 0 && idx[7] >= 0 {
			defVal = src[idx[6]:idx[7]]
		}
		if v, ok := os.LookupEnv(name); ok {
			out.WriteString(v)
		} else if hasDefault {
			out.WriteString(defVal)
		} else {
			return "", fmt.Errorf("配置中引用了未设置的环境变量：%s", name)
		}
		last = idx[1]
	}
	out.WriteString(src[last:])
	return out.String(), nil
}

func ParseSizeToBytes(s string) (int64, error) {
	v := strings.TrimSpace(strings.ToUpper(s))
	if v == "" {
		return 0, nil
	}
	units := []struct {
		U string
		M int64
	}{
		{"GB", 1024 * 1024 * 1024},
		{"MB", 1024 * 1024},
		{"KB", 1024},
		{"B", 1},
	}
	for _, unit := range units {
		if strings.HasSuffix(v, unit.U) {
			n := strings.TrimSpace(strings.TrimSuffix(v, unit.U))
			f, err := strconv.ParseFloat(n, 64)
			if err != nil || f < 0 {
				return 0, fmt.Errorf("无效大小值：%s", s)
			}
			return int64(f * float64(unit.M)), nil
		}
	}
	// 纯数字按字节
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("无效大小值：%s", s)
	}
	return n, nil
}
