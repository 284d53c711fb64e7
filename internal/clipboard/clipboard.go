package clipboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/sony/gobreaker"
	"golang.org/x/term"
)

const (
	breakerTrips    = 2
	breakerCooldown = 30 * time.Second
)

var ErrEmpty = errors.New("没有可复制的内容")

var isTerminal = func(f *os.File) bool { return term.IsTerminal(int(f.Fd())) }

type Writer interface {
	WriteText(ctx context.Context, s string) error
}

type WriterFunc func(ctx context.Context, s string) error

func (f WriterFunc) WriteText(ctx context.Context, s string) error { return f(ctx, s) }

// SystemWriter 使用 xclip/xsel/pbcopy/Windows API。
type SystemWriter struct{}

func (SystemWriter) WriteText(_ context.Context, s string) error {
	if clipboard.Unsupported {
		return errors.New("当前环境不支持系统剪贴板")
	}
	return clipboard.WriteAll(s)
}

// OSC52Writer 把 OSC 52 序列写到终端，由终端负责复制。
// Out 是文件但不是终端时（重定向到文件或 /dev/null）直接报错，不能假装复制成功。
type OSC52Writer struct {
	Out io.Writer
}

func (w OSC52Writer) WriteText(_ context.Context, s string) error {
	if w.Out == nil {
		return errors.New("没有可写的终端")
	}
	if f, ok := w.Out.(*os.File); ok && !isTerminal(f) {
		return fmt.Errorf("%s 不是终端，无法通过 OSC 52 复制", f.Name())
	}
	_, err := osc52.New(s).WriteTo(w.Out)
	return err
}

type Copier struct {
	Primary  Writer
	Fallback Writer
	Timeout  time.Duration
	Logger   *slog.Logger

	// breaker 在系统剪贴板连续失败后暂时跳过它，直接走 OSC 52。
	breaker *gobreaker.CircuitBreaker
}

func NewCopier(out io.Writer, timeout time.Duration, logger *slog.Logger) *Copier {
	return &Copier{
		Primary:  SystemWriter{},
		Fallback: OSC52Writer{Out: out},
		Timeout:  timeout,
		Logger:   logger,
		breaker:  newBreaker(logger),
	}
}

func newBreaker(logger *slog.Logger) *gobreaker.CircuitBreaker {
	if logger == nil {
		logger = slog.Default()
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "system-clipboard",
		MaxRequests: 1,
		Timeout:     breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTrips
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("clipboard breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
}

// Copy 返回 nil 表示任一途径成功。两条路径都失败时返回错误，调用方不应显示成功。
func (c *Copier) Copy(ctx context.Context, s string) error {
	if s == "" {
		return ErrEmpty
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if c.Primary != nil {
		err := c.guardedPrimary(ctx, s)
		if err == nil {
			return nil
		}
		logger.Warn("clipboard write failed, trying fallback", slog.Any("error", err))
	}
	if c.Fallback == nil {
		return errors.New("复制失败：没有可用的剪贴板")
	}
	if err := c.Fallback.WriteText(ctx, s); err != nil {
		logger.Error("clipboard fallback failed", slog.Any("error", err))
		return fmt.Errorf("复制失败：%w", err)
	}
	return nil
}

func (c *Copier) guardedPrimary(ctx context.Context, s string) error {
	if c.breaker == nil {
		return c.primary(ctx, s)
	}
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.primary(ctx, s)
	})
	return err
}

func (c *Copier) primary(ctx context.Context, s string) error {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- c.Primary.WriteText(ctx, s)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("系统剪贴板无响应：%w", ctx.Err())
	}
}
