package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"questgen/internal/safeio"
)

// FileStorage keeps the snapshot as one JSON file inside a root-locked
// data directory. Writes are atomic (temp file + rename), so a crashed
// save never corrupts the previous snapshot.
type FileStorage struct {
	fs   *safeio.SafeFS
	path string
}

// NewFileStorage binds the storage to path relative to the data dir root.
func NewFileStorage(root, path string) (*FileStorage, error) {
	fsys, err := safeio.NewSafeFS(root)
	if err != nil {
		return nil, fmt.Errorf("snapshot dir %s: %w", root, err)
	}
	return &FileStorage{fs: fsys, path: path}, nil
}

func (s *FileStorage) Name() string { return "file" }

func (s *FileStorage) Save(_ context.Context, data []byte) error {
	return s.fs.SafeWriteFile(s.path, data)
}

func (s *FileStorage) Load(_ context.Context) ([]byte, error) {
	data, err := s.fs.SafeReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", s.path, ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}

func (s *FileStorage) Close() error { return nil }
