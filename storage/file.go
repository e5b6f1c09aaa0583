package storage

import (
	"context"
	"path/filepath"

	"intlist/types"
)

// FileStore keeps lists as text dumps in a local directory. Absolute names
// are used as they are.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Load(_ context.Context, name string, list *types.IntegerList) (int, error) {
	if err := checkName("load", name); err != nil {
		return 0, err
	}
	return list.LoadFromFile(s.path(name))
}

func (s *FileStore) Save(_ context.Context, name string, list *types.IntegerList) error {
	if err := checkName("save", name); err != nil {
		return err
	}
	return list.SaveToFile(s.path(name))
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(name string) string {
	if s.dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}
