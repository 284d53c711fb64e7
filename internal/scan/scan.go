package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var defaultIgnoreDirs = map[string]struct{}{
	".git":         {},
	".svn":         {},
	".hg":          {},
	"node_modules": {},
	"vendor":       {},
}

var defaultIgnoreFiles = map[string]struct{}{
	".DS_Store": {},
	"Thumbs.db": {},
}

type Options struct {
	Paths          []string
	CWD            string
	FollowSymlinks bool
	IgnorePatterns []string
}

type ScanResult struct {
	Files  []string
	Errors []ScanError
}

type ScanError struct {
	Code   string
	Path   string
	Detail string
}

// ignoreSet 收集 --ignore-patterns 和各级 .gitignore 的规则。
type ignoreSet struct {
	cwd      string
	extra    []string
	gitRules []gitRule
}

type gitRule struct {
	base     string
	patterns []string
}

func Collect(opts Options) ScanResult {
	found := make(map[string]struct{})
	var errs []ScanError
	ig := newIgnoreSet(opts)

	for _, in := range opts.Paths {
		abs, err := filepath.Abs(in)
		if err != nil {
			errs = append(errs, ScanError{Code: "input_abs_failed", Path: in, Detail: err.Error()})
			continue
		}
		info, err := os.Lstat(abs)
		if err != nil {
			if os.IsNotExist(err) {
				errs = append(errs, ScanError{Code: "input_path_not_found", Path: abs, Detail: "路径不存在"})
				continue
			}
			errs = append(errs, ScanError{Code: "input_stat_failed", Path: abs, Detail: err.Error()})
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 && !opts.FollowSymlinks {
			errs = append(errs, ScanError{Code: "symlink_skipped", Path: abs, Detail: "默认不跟随软链接"})
			continue
		}
		if info.IsDir() {
			errs = append(errs, walkDir(abs, opts, ig, found)...)
			continue
		}
		// 显式传入的文件不看 .gitignore，只看默认忽略和 --ignore-patterns。
		if _, skip := defaultIgnoreFiles[info.Name()]; skip || ig.matchExtra(abs) {
			continue
		}
		found[abs] = struct{}{}
	}

	files := make([]string, 0, len(found))
	for p := range found {
		files = append(files, p)
	}
	sort.Strings(files)
	return ScanResult{Files: files, Errors: errs}
}

func walkDir(root string, opts Options, ig *ignoreSet, out map[string]struct{}) []ScanError {
	var errs []ScanError
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, ScanError{Code: "walk_error", Path: path, Detail: err.Error()})
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if _, ok := defaultIgnoreDirs[name]; ok && path != root {
				return fs.SkipDir
			}
			if path != root && ig.match(path, true) {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 && !opts.FollowSymlinks {
			return nil
		}
		if _, ok := defaultIgnoreFiles[name]; ok {
			return nil
		}
		if name == ".gitignore" || ig.match(path, false) {
			return nil
		}
		abs, aerr := filepath.Abs(path)
		if aerr != nil {
			errs = append(errs, ScanError{Code: "input_abs_failed", Path: path, Detail: aerr.Error()})
			return nil
		}
		out[abs] = struct{}{}
		return nil
	})
	return errs
}

func newIgnoreSet(opts Options) *ignoreSet {
	ig := &ignoreSet{cwd: opts.CWD, extra: opts.IgnorePatterns}
	seen := map[string]struct{}{}
	addBase := func(b string) {
		if b == "" {
			return
		}
		if _, ok := seen[b]; ok {
			return
		}
		seen[b] = struct{}{}
		if r, ok := readGitIgnore(b); ok {
			ig.gitRules = append(ig.gitRules, r)
		}
	}
	addBase(opts.CWD)
	for _, p := range opts.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil {
			continue
		}
		if info.IsDir() {
			addBase(abs)
		} else {
			addBase(filepath.Dir(abs))
		}
	}
	return ig
}

// readGitIgnore 只支持常见子集：忽略注释和取反规则，目录规则展开为 dir/**。
func readGitIgnore(base string) (gitRule, bool) {
	b, err := os.ReadFile(filepath.Join(base, ".gitignore"))
	if err != nil {
		return gitRule{}, false
	}
	r := gitRule{base: base}
	for _, raw := range strings.Split(string(b), "\n") {
		p := strings.TrimSpace(raw)
		if p == "" || strings.HasPrefix(p, "#") || strings.HasPrefix(p, "!") {
			continue
		}
		p = strings.TrimPrefix(filepath.ToSlash(p), "/")
		if strings.HasSuffix(p, "/") {
			p += "**"
		}
		r.patterns = append(r.patterns, p)
		if !strings.Contains(strings.TrimSuffix(p, "/**"), "/") {
			r.patterns = append(r.patterns, "**/"+p)
		}
	}
	return r, len(r.patterns) > 0
}

func (ig *ignoreSet) matchExtra(absPath string) bool {
	for _, p := range ig.extra {
		if ok, err := doublestar.Match(p, filepath.ToSlash(absPath)); err == nil && ok {
			return true
		}
		if ig.cwd == "" {
			continue
		}
		if rel, err := filepath.Rel(ig.cwd, absPath); err == nil {
			if ok, err := doublestar.Match(p, filepath.ToSlash(rel)); err == nil && ok {
				return true
			}
		}
	}
	return false
}

func (ig *ignoreSet) match(absPath string, isDir bool) bool {
	if ig.matchExtra(absPath) {
		return true
	}
	for _, r := range ig.gitRules {
		rel, err := filepath.Rel(r.base, absPath)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)
		for _, p := range r.patterns {
			if ok, err := doublestar.Match(p, rel); err == nil && ok {
				return true
			}
			if isDir {
				if ok, err := doublestar.Match(p, rel+"/"); err == nil && ok {
					return true
				}
			}
		}
	}
	return false
}
