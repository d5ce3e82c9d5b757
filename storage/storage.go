// Package storage keeps uploaded cover art and audio files, either on the
// local filesystem or in a MinIO bucket. Stored names are flat.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"groovy/config"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("file not found")
	ErrEmptyFile   = errors.New("failed to store empty file")
	ErrInvalidPath = errors.New("cannot store file with relative path outside current directory")
)

// FileInfo describes a stored object.
type FileInfo struct {
	Name        string
	Size        int64
	ModTime     time.Time
	ContentType string
}

// Storage is implemented by every backend.
type Storage interface {
	// Init prepares the backend (creates the directory or bucket).
	Init(ctx context.Context) error
	// Store saves r under a new unique name derived from name and returns it.
	Store(ctx context.Context, name string, r io.Reader, size int64) (string, error)
	// StoreAs saves r under filename, replacing any previous object, and
	// returns the cleaned name it used.
	StoreAs(ctx context.Context, filename string, r io.Reader, size int64) (string, error)
	// Open returns a seekable reader over the object. The caller closes it.
	Open(ctx context.Context, filename string) (io.ReadSeekCloser, FileInfo, error)
	// Delete removes the object. A missing object is not an error.
	Delete(ctx context.Context, filename string) error
	List(ctx context.Context, prefix string) ([]FileInfo, error)
}

// New builds the backend selected by cfg.StorageBackend.
func New(cfg *config.Config) (Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageFS, "":
		return NewFileSystem(cfg.UploadDir), nil
	case config.StorageMinio:
		return NewMinioStore(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// cleanName normalises a client supplied name and rejects parent references.
func cleanName(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	if strings.Contains(name, "..") {
		return "", fmt.Errorf("%w %s", ErrInvalidPath, name)
	}
	cleaned := path.Clean("/" + name)[1:]
	if cleaned == "" {
		return "", fmt.Errorf("%w %q", ErrInvalidPath, name)
	}
	return cleaned, nil
}

// flatName is cleanName plus the requirement that no directory is involved.
func flatName(name string) (string, error) {
	cleaned, err := cleanName(name)
	if err != nil {
		return "", err
	}
	if strings.Contains(cleaned, "/") {
		return "", fmt.Errorf("%w %s", ErrInvalidPath, name)
	}
	return cleaned, nil
}

// UniqueName returns "<uuid>_<basename of name>".
func UniqueName(name string) (string, error) {
	cleaned, err := cleanName(name)
	if err != nil {
		return "", err
	}
	return uuid.NewString() + "_" + path.Base(cleaned), nil
}

// DetermineMediaType maps a file extension to the Content-Type served for it.
func DetermineMediaType(filename string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "mp3":
		return "audio/mpeg"
	case "wav":
		return "audio/wav"
	case "ogg":
		return "audio/ogg"
	case "flac":
		return "audio/flac"
	default:
		return "application/octet-stream"
	}
}

// FormatSize 格式化文件大小
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
