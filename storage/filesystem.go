package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"groovy/logger"
)

const tempPrefix = ".upload-"

// FileSystem stores files below a root directory.
type FileSystem struct {
	root string
}

func NewFileSystem(root string) *FileSystem {
	return &FileSystem{root: root}
}

// Root returns the upload directory.
func (f *FileSystem) Root() string {
	return f.root
}

// Init creates the upload directory.
func (f *FileSystem) Init(ctx context.Context) error {
	if err := os.MkdirAll(f.root, 0o755); err != nil {
		return fmt.Errorf("could not initialize storage: %w", err)
	}
	logger.Info("File storage ready", logger.String("root", f.root))
	return nil
}

func (f *FileSystem) Store(ctx context.Context, name string, r io.Reader, size int64) (string, error) {
	if size == 0 {
		return "", ErrEmptyFile
	}
	stored, err := UniqueName(name)
	if err != nil {
		return "", err
	}
	if err := f.write(stored, r); err != nil {
		return "", err
	}
	return stored, nil
}

func (f *FileSystem) StoreAs(ctx context.Context, filename string, r io.Reader, size int64) (string, error) {
	if size == 0 {
		return "", ErrEmptyFile
	}
	name, err := flatName(filename)
	if err != nil {
		return "", err
	}
	if err := f.write(name, r); err != nil {
		return "", err
	}
	return name, nil
}

// write copies r into a temp file in root and renames it over name, so
// readers never observe a partial file.
func (f *FileSystem) write(name string, r io.Reader) error {
	tmp, err := os.CreateTemp(f.root, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to store file %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to store file %s: %w", name, err)
	}
	if n == 0 {
		return ErrEmptyFile
	}
	if err := os.Rename(tmpName, filepath.Join(f.root, name)); err != nil {
		return fmt.Errorf("failed to store file %s: %w", name, err)
	}
	return nil
}

func (f *FileSystem) resolve(filename string) (string, error) {
	name, err := cleanName(filename)
	if err != nil {
		return "", err
	}
	return filepath.Join(f.root, filepath.FromSlash(name)), nil
}

func (f *FileSystem) Open(ctx context.Context, filename string) (io.ReadSeekCloser, FileInfo, error) {
	p, err := f.resolve(filename)
	if err != nil {
		return nil, FileInfo{}, err
	}
	file, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, FileInfo{}, fmt.Errorf("%w: %s", ErrNotFound, filename)
		}
		return nil, FileInfo{}, fmt.Errorf("could not read file %s: %w", filename, err)
	}
	st, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, FileInfo{}, fmt.Errorf("could not read file %s: %w", filename, err)
	}
	if st.IsDir() {
		file.Close()
		return nil, FileInfo{}, fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	return file, FileInfo{
		Name:        filename,
		Size:        st.Size(),
		ModTime:     st.ModTime(),
		ContentType: DetermineMediaType(filename),
	}, nil
}

// Delete removes filename, recursively when it is a directory.
func (f *FileSystem) Delete(ctx context.Context, filename string) error {
	p, err := f.resolve(filename)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(p); err != nil {
		return fmt.Errorf("could not delete file %s: %w", filename, err)
	}
	return nil
}

func (f *FileSystem) List(ctx context.Context, prefix string) ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), tempPrefix) {
			return nil
		}
		rel, err := filepath.Rel(f.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !strings.HasPrefix(rel, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileInfo{
			Name:        rel,
			Size:        info.Size(),
			ModTime:     info.ModTime(),
			ContentType: DetermineMediaType(rel),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}
