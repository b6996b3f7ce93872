package reconcile

import (
	"os"
	"path/filepath"
)

// Store 本地快照的字节级存取。浏览器端对应 localStorage，
// 桌面/测试环境用文件实现。
type Store interface {
	Load() ([]byte, error)
	Save(data []byte) error
	Clear() error
}

// FileStore 单文件 JSON 快照
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) Load() ([]byte, error) {
	return os.ReadFile(s.Path)
}

func (s *FileStore) Save(data []byte) error {
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.Path, data, 0644)
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.Path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// MemoryStore 测试用
type MemoryStore struct {
	data []byte
	ok   bool
}

func (s *MemoryStore) Load() ([]byte, error) {
	if !s.ok {
		return nil, os.ErrNotExist
	}
	return s.data, nil
}

func (s *MemoryStore) Save(data []byte) error {
	s.data = append([]byte(nil), data...)
	s.ok = true
	return nil
}

func (s *MemoryStore) Clear() error {
	s.data = nil
	s.ok = false
	return nil
}
