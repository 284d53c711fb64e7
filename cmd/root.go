package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"char-count/internal/app"
	"char-count/internal/clipboard"
	"char-count/internal/config"
	"char-count/internal/kv"
	"char-count/internal/logging"
	"char-count/internal/output"
	"char-count/internal/prefs"
)

type commonFlags struct {
	Jobs            int
	ShowVersion     bool
	ExcludeSpaces   bool
	ExcludeNewlines bool
	ExcludeTabs     bool
}

// runtimeState 在 PersistentPreRunE 中按 默认值 < 配置文件 < 环境变量 < 参数 解析一次。
type runtimeState struct {
	v       *viper.Viper
	cfg     config.Config
	cfgPath string
	logger  *slog.Logger
	closer  io.Closer
	fs      afero.Fs
	stdout  io.Writer
	stderr  io.Writer
}

// 测试里替换。
var isTerminal = func(f *os.File) bool { return term.IsTerminal(int(f.Fd())) }

func Execute() int {
	return execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := NewRootCmd(stdout, stderr)
	root.SetIn(stdin)
	root.SetArgs(normalizeArgs(args))
	if err := root.Execute(); err != nil {
		var ee *ExitError
		if errors.As(err, &ee) {
			if ee.Msg != "" {
				fmt.Fprintln(stderr, ee.Msg)
			}
			return ee.Code
		}
		fmt.Fprintln(stderr, err.Error())
		return ExitInternal
	}
	return ExitOK
}

func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &commonFlags{}
	st := &runtimeState{v: config.NewViper(), fs: afero.NewOsFs(), stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "char-count [paths...]",
		Short:         "统计文本字数（UTF-16 计数，可排除空格/换行/制表符），支持交互会话",
		Long:          rootLongHelp(),
		Example:       rootExampleHelp(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			st.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.ShowVersion {
				fmt.Fprintln(stdout, versionText())
				return nil
			}
			if len(args) == 0 {
				data, piped, err := readPipedStdin(cmd.InOrStdin())
				if err != nil {
					return &ExitError{Code: ExitInput, Msg: fmt.Sprintf("读取标准输入失败：%v", err)}
				}
				if piped {
					return runBatch(cmd, st, flags, nil, data)
				}
				_ = cmd.Help()
				return &ExitError{Code: ExitArg, Msg: "还没传输入路径，至少要给一个文件或目录，或者通过管道传入文本"}
			}
			return runBatch(cmd, st, flags, args, nil)
		},
	}
	root.CompletionOptions.HiddenDefaultCmd = true
	root.SetOut(stdout)
	root.SetErr(stderr)
	bindCommon(root, st, flags)

	countCmd := &cobra.Command{
		Use:           "__count [paths...]",
		Short:         "internal count entry",
		Hidden:        true,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, st, flags, args, nil)
		},
	}
	bindCountFlags(countCmd.Flags(), flags)
	root.AddCommand(countCmd)

	root.AddCommand(
		newTUICmd(st),
		newShowCmd(st),
		newInputCmd(st),
		newToggleCmd(st),
		newSummaryCmd(st),
		newCopyCmd(st),
		newClearCmd(st),
	)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(stdout, versionText())
		},
	}
	root.AddCommand(versionCmd)
	return root
}

func bindCommon(cmd *cobra.Command, st *runtimeState, flags *commonFlags) {
	pf := cmd.PersistentFlags()
	pf.String(config.KeyConfig, "", "YAML 配置文件路径（也可用 CHARCOUNT_CONFIG）")
	pf.String(config.KeyFormat, "", "输出格式：ndjson/json（默认 ndjson）")
	pf.String(config.KeyStateDir, "", "会话状态目录（默认在用户配置目录下）")
	pf.String(config.KeyLogLevel, "", "日志级别：debug/info/warn/error")
	pf.String(config.KeyLogFile, "", "tui 模式的日志文件（默认在状态目录下）")
	pf.String(config.KeyMaxFileSize, "", "单文件最大处理大小，超出则跳过（默认 10MB）")
	pf.String(config.KeyClipboardTimeout, "", "系统剪贴板超时（默认 2s）")
	pf.StringSlice(config.KeyIgnorePatterns, nil, "额外忽略路径模式（glob，可重复或逗号分隔）")
	pf.IntVar(&flags.Jobs, "jobs", app.DefaultJobs(), "并发任务数（默认 min(8, CPU核数)）")
	pf.BoolVarP(&flags.ShowVersion, "version", "v", false, "显示版本信息")

	bindCountFlags(cmd.Flags(), flags)

	for _, key := range []string{
		config.KeyConfig, config.KeyFormat, config.KeyStateDir, config.KeyLogLevel,
		config.KeyLogFile, config.KeyMaxFileSize, config.KeyClipboardTimeout, config.KeyIgnorePatterns,
	} {
		_ = st.v.BindPFlag(key, pf.Lookup(key))
	}
}

func bindCountFlags(fs *pflag.FlagSet, flags *commonFlags) {
	fs.BoolVar(&flags.ExcludeSpaces, "exclude-spaces", false, "批量统计时排除空格（覆盖会话设置）")
	fs.BoolVar(&flags.ExcludeNewlines, "exclude-newlines", false, "批量统计时排除换行（覆盖会话设置）")
	fs.BoolVar(&flags.ExcludeTabs, "exclude-tabs", false, "批量统计时排除制表符（覆盖会话设置）")
}

func (st *runtimeState) init(cmd *cobra.Command) error {
	if st.v.IsSet(config.KeyFormat) {
		if err := output.ValidateFormat(st.v.GetString(config.KeyFormat)); err != nil {
			writeCLIError(st.stdout, output.FormatNDJSON, cmd.Name(), os.Args[1:], "invalid_output_format", "arg", "", err.Error(), ExitArg)
			return &ExitError{Code: ExitArg, Msg: err.Error()}
		}
	}
	cfg, path, err := config.Resolve(st.v)
	st.cfgPath = path
	if err != nil {
		format := output.FormatNDJSON
		if output.ValidateFormat(cfg.Format) == nil {
			format = cfg.Format
		}
		writeCLIError(st.stdout, format, cmd.Name(), os.Args[1:], "config_invalid", "config", path, err.Error(), ExitConfig)
		return &ExitError{Code: ExitConfig, Msg: err.Error()}
	}
	st.cfg = cfg

	// tui 占用终端，日志写文件；其他命令写 stderr。
	if cmd.Name() == "tui" {
		logger, closer, lerr := logging.NewFile(cfg.LogFile, cfg.LogLevel)
		if lerr != nil {
			return &ExitError{Code: ExitConfig, Msg: lerr.Error()}
		}
		st.logger, st.closer = logger, closer
	} else {
		st.logger = logging.New(st.stderr, cfg.LogLevel)
	}
	st.logger.Debug("config resolved", slog.String("config_path", path), slog.String("state_dir", cfg.StateDir))
	return nil
}

func (st *runtimeState) close() {
	if st.closer != nil {
		_ = st.closer.Close()
		st.closer = nil
	}
}

func (st *runtimeState) openController() *app.Controller {
	fileStore := kv.NewFileStore(st.fs, st.cfg.StateDir)
	st.logger.Debug("session store opened", slog.String("dir", fileStore.Dir()))
	return app.NewController(prefs.NewStore(fileStore, st.logger), st.logger)
}

func (st *runtimeState) newCopier() (*clipboard.Copier, error) {
	timeout, err := st.cfg.ClipboardTimeoutDuration()
	if err != nil {
		return nil, err
	}
	return clipboard.NewCopier(st.stderr, timeout, st.logger), nil
}

// readPipedStdin 只在标准输入不是终端时读取。空输入视为没有输入。
func readPipedStdin(in io.Reader) ([]byte, bool, error) {
	if in == nil {
		return nil, false, nil
	}
	if f, ok := in.(*os.File); ok && isTerminal(f) {
		return nil, false, nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, false, err
	}
	if len(data) == 0 {
		return nil, false, nil
	}
	return data, true, nil
}

func runBatch(cmd *cobra.Command, st *runtimeState, flags *commonFlags, args []string, stdin []byte) error {
	format := st.cfg.Format
	if err := output.ValidateFormat(format); err != nil {
		writeCLIError(st.stdout, format, "stats", args, "invalid_output_format", "arg", "", err.Error(), ExitArg)
		return &ExitError{Code: ExitArg, Msg: err.Error()}
	}
	maxBytes, err := config.ParseSizeToBytes(st.cfg.MaxFileSize)
	if err != nil {
		writeCLIError(st.stdout, format, "stats", args, "invalid_max_file_size", "arg", "", err.Error(), ExitArg)
		return &ExitError{Code: ExitArg, Msg: err.Error()}
	}
	cwd, err := os.Getwd()
	if err != nil {
		writeCLIError(st.stdout, format, "stats", args, "cwd_failed", "runtime", "", err.Error(), ExitInternal)
		return &ExitError{Code: ExitInternal, Msg: "读取当前目录失败"}
	}

	var paths []string
	if stdin == nil {
		paths = app.NormalizePaths(args, cwd)
		if len(paths) == 0 {
			writeCLIError(st.stdout, format, "stats", args, "invalid_input_paths", "arg", "", "输入路径为空或无效", ExitArg)
			return &ExitError{Code: ExitArg, Msg: "输入路径为空或无效"}
		}
	}

	// 批量统计沿用会话里的开关，命令行显式传入的开关优先。
	countFlags := st.openController().Flags()
	fs := cmd.Flags()
	if fs.Changed("exclude-spaces") {
		countFlags.ExcludeSpaces = flags.ExcludeSpaces
	}
	if fs.Changed("exclude-newlines") {
		countFlags.ExcludeNewlines = flags.ExcludeNewlines
	}
	if fs.Changed("exclude-tabs") {
		countFlags.ExcludeTabs = flags.ExcludeTabs
	}

	res, err := app.Run(app.Options{
		Paths:            paths,
		CWD:              cwd,
		ConfigPath:       st.cfgPath,
		Format:           format,
		Jobs:             flags.Jobs,
		MaxFileSizeBytes: maxBytes,
		Flags:            countFlags,
		IgnorePatterns:   st.cfg.IgnorePatterns,
		Version:          Version,
		Args:             os.Args[1:],
		Stdin:            stdin,
	})
	if err != nil {
		var ae *app.ArgErr
		if errors.As(err, &ae) {
			writeCLIError(st.stdout, format, "stats", args, "arg_missing_paths", "arg", "", err.Error(), ExitArg)
			return &ExitError{Code: ExitArg, Msg: err.Error()}
		}
		return &ExitError{Code: ExitInternal, Msg: err.Error()}
	}
	if werr := output.Write(st.stdout, format, res.Events); werr != nil {
		return &ExitError{Code: ExitInternal, Msg: fmt.Sprintf("输出结果失败：%v", werr)}
	}
	if res.HasInputErr {
		return &ExitError{Code: ExitInput}
	}
	return nil
}

func normalizeArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	first := args[0]
	switch first {
	case "tui", "show", "input", "toggle", "summary", "copy", "clear",
		"version", "help", "completion", "__count":
		return args
	}
	if strings.HasPrefix(first, "-") {
		return args
	}
	return append([]string{"__count"}, args...)
}
