package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"char-count/internal/app"
	"char-count/internal/clipboard"
	"char-count/internal/config"
	"char-count/internal/output"
	"char-count/internal/textutil"
	"char-count/internal/tui"
)

const sessionMode = "session"

var runTUI = tui.Run

func newTUICmd(st *runtimeState) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "打开交互式计数会话",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, ok := st.stdout.(*os.File)
			if !ok || !isTerminal(f) {
				return &ExitError{Code: ExitArg, Msg: "tui 需要在终端中运行；非交互场景请用 show/input/toggle"}
			}
			copier, err := st.newCopier()
			if err != nil {
				return &ExitError{Code: ExitConfig, Msg: err.Error()}
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			// 启动时先统计并保存一次，首次运行也会落盘设置。
			ctrl := st.openController()
			ctrl.Recount()
			if err := runTUI(ctx, ctrl, copier, st.logger); err != nil {
				return &ExitError{Code: ExitInternal, Msg: fmt.Sprintf("交互会话异常退出：%v", err)}
			}
			return nil
		},
	}
}

func newShowCmd(st *runtimeState) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "重新统计已保存的会话并输出 session_stats 事件",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := st.openController()
			ctrl.Recount()
			return writeSession(st, ctrl)
		},
	}
}

func newInputCmd(st *runtimeState) *cobra.Command {
	return &cobra.Command{
		Use:   "input [file|-]",
		Short: "用文件或标准输入替换会话文本",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := app.StdinPath
			if len(args) == 1 {
				src = args[0]
			}
			text, err := readSessionInput(st, cmd.InOrStdin(), src)
			if err != nil {
				return err
			}
			ctrl := st.openController()
			ctrl.ApplyTextChange(text)
			return writeSession(st, ctrl)
		},
	}
}

func newToggleCmd(st *runtimeState) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <spaces|newlines|tabs> <on|off>",
		Short: "切换排除开关并重新统计",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			flag, err := app.ParseFlag(args[0])
			if err != nil {
				writeCLIError(st.stdout, st.cfg.Format, sessionMode, args, "invalid_toggle_flag", "arg", "", err.Error(), ExitArg)
				return &ExitError{Code: ExitArg, Msg: err.Error()}
			}
			on, err := config.ParseBool(args[1])
			if err != nil {
				msg := fmt.Sprintf("开关值只能是 on/off：%s", args[1])
				writeCLIError(st.stdout, st.cfg.Format, sessionMode, args, "invalid_toggle_value", "arg", "", msg, ExitArg)
				return &ExitError{Code: ExitArg, Msg: msg}
			}
			ctrl := st.openController()
			ctrl.ApplyFlagChange(flag, on)
			return writeSession(st, ctrl)
		},
	}
}

func newSummaryCmd(st *runtimeState) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "输出会话的统计摘要文本",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(st.stdout, st.openController().Summary())
			return err
		},
	}
}

func newCopyCmd(st *runtimeState) *cobra.Command {
	var result bool
	c := &cobra.Command{
		Use:   "copy",
		Short: "把会话文本（或 --result 时的统计摘要）复制到剪贴板",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			copier, err := st.newCopier()
			if err != nil {
				return &ExitError{Code: ExitConfig, Msg: err.Error()}
			}
			ctrl := st.openController()
			text := ctrl.Text()
			if result {
				text = ctrl.Summary()
			}
			if err := copier.Copy(cmd.Context(), text); err != nil {
				if errors.Is(err, clipboard.ErrEmpty) {
					return &ExitError{Code: ExitInput, Msg: err.Error()}
				}
				return &ExitError{Code: ExitInternal, Msg: err.Error()}
			}
			fmt.Fprintln(st.stdout, "✓ 完了")
			return nil
		},
	}
	c.Flags().BoolVar(&result, "result", false, "复制统计摘要而不是文本")
	return c
}

func newClearCmd(st *runtimeState) *cobra.Command {
	var yes bool
	c := &cobra.Command{
		Use:   "clear",
		Short: "清空会话文本（需要确认）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := st.openController()
			confirm := app.Confirmer(stdinConfirmer{in: bufio.NewReader(cmd.InOrStdin()), out: st.stderr})
			if yes {
				confirm = app.ConfirmFunc(func(string) bool { return true })
			}
			if _, cleared := ctrl.Clear(confirm); !cleared {
				fmt.Fprintln(st.stderr, "已取消，文本保持不变")
				return nil
			}
			return writeSession(st, ctrl)
		},
	}
	c.Flags().BoolVarP(&yes, "yes", "y", false, "跳过确认")
	return c
}

// stdinConfirmer 读一行回答，只有 y/yes 算同意。
type stdinConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func (c stdinConfirmer) Confirm(prompt string) bool {
	fmt.Fprintf(c.out, "%s [y/N] ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func readSessionInput(st *runtimeState, stdin io.Reader, src string) (string, error) {
	fail := func(code, detail string, exit int) error {
		writeCLIError(st.stdout, st.cfg.Format, sessionMode, []string{src}, code, "input", src, detail, exit)
		return &ExitError{Code: exit, Msg: detail}
	}
	maxBytes, err := config.ParseSizeToBytes(st.cfg.MaxFileSize)
	if err != nil {
		return "", fail("invalid_max_file_size", err.Error(), ExitArg)
	}

	var data []byte
	if src == app.StdinPath {
		data, err = io.ReadAll(stdin)
		if err != nil {
			return "", fail("stdin_read_failed", err.Error(), ExitInput)
		}
	} else {
		data, err = os.ReadFile(src)
		if err != nil {
			if os.IsNotExist(err) {
				return "", fail("input_path_not_found", "路径不存在", ExitInput)
			}
			return "", fail("file_read_failed", err.Error(), ExitInput)
		}
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", fail("skipped_large_file", fmt.Sprintf("文件大小 %d 超过上限 %d", len(data), maxBytes), ExitInput)
	}
	if textutil.DetectBinary(data) {
		return "", fail("skipped_binary_file", "识别为二进制文件，不能作为会话文本", ExitInput)
	}
	decoded, err := textutil.Decode(data)
	if err != nil {
		return "", fail("decode_failed", err.Error(), ExitInput)
	}
	return decoded.Text, nil
}

func writeSession(st *runtimeState, ctrl *app.Controller) error {
	if err := output.WriteEvent(st.stdout, st.cfg.Format, app.SessionEvent(ctrl)); err != nil {
		return &ExitError{Code: ExitInternal, Msg: fmt.Sprintf("输出结果失败：%v", err)}
	}
	return nil
}
