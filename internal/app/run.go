package app

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"char-count/internal/count"
	"char-count/internal/scan"
	"char-count/internal/textutil"
)

const StdinPath = "-"

type fileResult struct {
	Path        string
	Events      []map[string]any
	HasInputErr bool
	Skipped     bool
	Processed   bool
	Counts      count.Result
}

func DefaultJobs() int {
	n := runtime.NumCPU()
	if n > 8 {
		return 8
	}
	if n < 1 {
		return 1
	}
	return n
}

// Run 批量统计文件（或一段标准输入）。不读写会话持久化。
func Run(opts Options) (Result, error) {
	res := Result{Events: make([]map[string]any, 0)}
	if opts.Jobs <= 0 {
		opts.Jobs = DefaultJobs()
	}
	if opts.MaxFileSizeBytes <= 0 {
		opts.MaxFileSizeBytes = 10 * 1024 * 1024
	}
	if opts.Stdin == nil && len(opts.Paths) == 0 {
		return res, &ArgErr{Msg: "还没传输入路径，至少要给一个文件或目录"}
	}

	meta := map[string]any{
		"type":             "meta",
		"tool":             "char-count",
		"version":          opts.Version,
		"mode":             "stats",
		"cwd":              opts.CWD,
		"args":             opts.Args,
		"config_path":      opts.ConfigPath,
		"output_format":    opts.Format,
		"follow_symlinks":  false,
		"max_file_size":    opts.MaxFileSizeBytes,
		"flags":            opts.Flags,
		"exit_code_policy": map[string]int{"ok": 0, "arg_error": 2, "input_error": 3, "config_error": 4, "internal_error": 5},
	}
	res.Events = append(res.Events, meta)

	var results []fileResult
	if opts.Stdin != nil {
		res.Summary.TotalFiles = 1
		results = []fileResult{processData(StdinPath, opts.Stdin, opts)}
	} else {
		scanRes := scan.Collect(scan.Options{
			Paths:          opts.Paths,
			CWD:            opts.CWD,
			FollowSymlinks: false,
			IgnorePatterns: opts.IgnorePatterns,
		})
		for _, se := range scanRes.Errors {
			res.Events = append(res.Events, buildErrorEvent("input", se.Code, se.Path, se.Detail))
			res.HasInputErr = true
		}
		res.Summary.TotalFiles = len(scanRes.Files)
		results = processAll(scanRes.Files, opts)
	}

	for _, fr := range results {
		res.Events = append(res.Events, fr.Events...)
		if fr.Processed {
			res.Summary.Processed++
			addCounts(&res.Summary.Totals, fr.Counts)
		}
		if fr.Skipped {
			res.Summary.Skipped++
		}
		if fr.HasInputErr {
			res.HasInputErr = true
		}
	}
	for _, e := range res.Events {
		if t, _ := e["type"].(string); t == "error" {
			res.Summary.Errors++
		}
	}

	res.Events = append(res.Events, buildSummary(res.Summary, decideExitCode(res)))
	return res, nil
}

// processAll 按排序后的路径顺序返回结果，与并发完成顺序无关。
func processAll(paths []string, opts Options) []fileResult {
	if len(paths) == 0 {
		return nil
	}
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	results := make([]fileResult, len(sorted))
	var eg errgroup.Group
	eg.SetLimit(opts.Jobs)
	for i, p := range sorted {
		i, p := i, p
		eg.Go(func() error {
			results[i] = processFile(p, opts)
			return nil
		})
	}
	_ = eg.Wait()
	return results
}

func processFile(path string, opts Options) fileResult {
	fr := fileResult{Path: path, Events: make([]map[string]any, 0)}
	info, err := os.Stat(path)
	if err != nil {
		fr.HasInputErr = true
		fr.Events = append(fr.Events, buildErrorEvent("input", "file_stat_failed", path, err.Error()))
		return fr
	}
	if info.IsDir() {
		return fr
	}

	if info.Size() > opts.MaxFileSizeBytes {
		fr.Skipped = true
		fr.Events = append(fr.Events, buildErrorEvent("input", "skipped_large_file", path, fmt.Sprintf("文件大小 %d 超过上限 %d", info.Size(), opts.MaxFileSizeBytes)))
		return fr
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fr.HasInputErr = true
		fr.Events = append(fr.Events, buildErrorEvent("input", "file_read_failed", path, err.Error()))
		return fr
	}
	return processData(path, data, opts)
}

func processData(path string, data []byte, opts Options) fileResult {
	fr := fileResult{Path: path, Events: make([]map[string]any, 0)}
	if int64(len(data)) > opts.MaxFileSizeBytes {
		fr.Skipped = true
		fr.Events = append(fr.Events, buildErrorEvent("input", "skipped_large_file", path, fmt.Sprintf("文件大小 %d 超过上限 %d", len(data), opts.MaxFileSizeBytes)))
		return fr
	}
	sample := data
	if len(sample) > 8192 {
		sample = sample[:8192]
	}
	if textutil.DetectBinary(sample) {
		fr.Skipped = true
		fr.Events = append(fr.Events, buildErrorEvent("input", "skipped_binary_file", path, "识别为二进制文件，已跳过"))
		return fr
	}

	decoded, err := textutil.Decode(data)
	if err != nil {
		fr.Skipped = true
		fr.Events = append(fr.Events, buildErrorEvent("input", "decode_failed", path, err.Error()))
		return fr
	}
	c := count.Count(decoded.Text, opts.Flags)
	fr.Counts = c
	fr.Events = append(fr.Events, map[string]any{
		"type":       "file_stats",
		"path":       path,
		"status":     "ok",
		"encoding":   decoded.Encoding,
		"file_size":  len(data),
		"hash":       textutil.HashSHA256(data),
		"total":      c.Total,
		"no_space":   c.NoSpace,
		"no_newline": c.NoNewline,
		"lines":      c.Lines,
		"main":       c.Main,
	})
	fr.Processed = true
	return fr
}

func addCounts(dst *count.Result, c count.Result) {
	dst.Total += c.Total
	dst.NoSpace += c.NoSpace
	dst.NoNewline += c.NoNewline
	dst.Lines += c.Lines
	dst.Main += c.Main
}

func buildSummary(s Summary, exitCode int) map[string]any {
	return map[string]any{
		"type":            "summary",
		"mode":            "stats",
		"total_files":     s.TotalFiles,
		"processed_files": s.Processed,
		"skipped_files":   s.Skipped,
		"error_count":     s.Errors,
		"total":           s.Totals.Total,
		"no_space":        s.Totals.NoSpace,
		"no_newline":      s.Totals.NoNewline,
		"lines":           s.Totals.Lines,
		"main":            s.Totals.Main,
		"exit_code":       exitCode,
	}
}

type ArgErr struct{ Msg string }

func (e *ArgErr) Error() string { return e.Msg }

func decideExitCode(res Result) int {
	if res.HasInputErr {
		return 3
	}
	return 0
}

func NormalizePaths(paths []string, cwd string) []string {
	out := make([]string, 0, len(paths))
	seen := map[string]struct{}{}
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(cwd, p)
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		out = append(out, abs)
	}
	sort.Strings(out)
	return out
}
