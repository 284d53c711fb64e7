package kv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Store 是最小的键值持久化接口。
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// FileStore 每个键一个文件，放在 Dir 下。
type FileStore struct {
	fs  afero.Fs
	dir string
}

func NewFileStore(fs afero.Fs, dir string) *FileStore {
	return &FileStore{fs: fs, dir: dir}
}

func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) Get(key string) (string, bool, error) {
	p, err := s.path(key)
	if err != nil {
		return "", false, err
	}
	b, err := afero.ReadFile(s.fs, p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("读取 %s 失败：%w", key, err)
	}
	return string(b), true, nil
}

// Set 先写临时文件再改名，避免中途失败留下半截内容。
func (s *FileStore) Set(key, value string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("创建状态目录失败：%w", err)
	}
	tmp := p + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, []byte(value), 0o644); err != nil {
		return fmt.Errorf("写入 %s 失败：%w", key, err)
	}
	if err := s.fs.Rename(tmp, p); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("写入 %s 失败：%w", key, err)
	}
	return nil
}

func (s *FileStore) path(key string) (string, error) {
	k := strings.TrimSpace(key)
	if k == "" || strings.ContainsAny(k, `/\`) || k == "." || k == ".." {
		return "", fmt.Errorf("无效的键：%q", key)
	}
	return filepath.Join(s.dir, k), nil
}
