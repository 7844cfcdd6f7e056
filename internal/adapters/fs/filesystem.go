// Package fs provides the local filesystem adapter.
package fs

import (
	"os"
	"path/filepath"

	"go.trai.ch/berth/internal/core/domain"
	"go.trai.ch/berth/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FileSystem = (*FileSystem)(nil)

// FileSystem implements ports.FileSystem on top of the os package.
type FileSystem struct{}

// NewFileSystem creates a new FileSystem.
func NewFileSystem() *FileSystem {
	return &FileSystem{}
}

// WriteFile writes content to path, creating missing parent directories.
// An existing file is replaced, so writing the same content twice is harmless.
func (f *FileSystem) WriteFile(path string, content []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to create parent directory"), "path", dir)
		}
	}

	if err := os.WriteFile(path, content, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write file"), "path", path)
	}
	return nil
}

// Exists reports whether path names a file or a directory.
func (f *FileSystem) Exists(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", path)
	}
	return true, nil
}

// Differ reports whether left and right have different contents.
// Files of different sizes differ without being read.
func (f *FileSystem) Differ(left, right string) (bool, error) {
	leftInfo, err := statFile(left)
	if err != nil {
		return false, err
	}
	rightInfo, err := statFile(right)
	if err != nil {
		return false, err
	}

	if leftInfo.Size() != rightInfo.Size() {
		return true, nil
	}

	leftHash, err := ComputeFileHash(left)
	if err != nil {
		return false, err
	}
	rightHash, err := ComputeFileHash(right)
	if err != nil {
		return false, err
	}

	return leftHash != rightHash, nil
}

func statFile(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", path)
	}
	if info.IsDir() {
		return nil, zerr.With(zerr.New("path is a directory"), "path", path)
	}
	return info, nil
}
