package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	tempPrefix = ".upload-"
	filePerm   = 0o640
)

type LocalStorage struct {
	basePath string
}

// NewLocalStorage expects basePath to exist already; config.Provision creates it.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("storage directory %s: %w", basePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage path %s is not a directory", basePath)
	}
	return &LocalStorage{basePath: basePath}, nil
}

func (ls *LocalStorage) path(name string) (string, error) {
	if !ValidName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(ls.basePath, name), nil
}

// Save writes data to a temporary file in the same directory and renames it
// into place, so readers never observe a partially written file.
func (ls *LocalStorage) Save(_ context.Context, name string, data io.Reader) error {
	filePath, err := ls.path(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(ls.basePath, tempPrefix+"*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		return err
	}
	if err := os.Rename(tmpName, filePath); err != nil {
		return err
	}

	committed = true
	return nil
}

func (ls *LocalStorage) Open(_ context.Context, name string) (io.ReadCloser, error) {
	filePath, err := ls.path(name)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file %s: %w", name, ErrNotFound)
		}
		return nil, err
	}

	return file, nil
}

func (ls *LocalStorage) Exists(_ context.Context, name string) (bool, error) {
	filePath, err := ls.path(name)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return info.Mode().IsRegular(), nil
}

func (ls *LocalStorage) Delete(_ context.Context, name string) error {
	filePath, err := ls.path(name)
	if err != nil {
		return err
	}

	err = os.Remove(filePath)
	if os.IsNotExist(err) {
		return nil
	}

	return err
}

// List returns the regular files in the base directory, skipping hidden
// entries such as in-flight temporary files.
func (ls *LocalStorage) List(_ context.Context) ([]Object, error) {
	entries, err := os.ReadDir(ls.basePath)
	if err != nil {
		return nil, err
	}

	objects := make([]Object, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		objects = append(objects, Object{Name: entry.Name(), ModTime: info.ModTime()})
	}

	return objects, nil
}
