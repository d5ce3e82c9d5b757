package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSystemStoreAndOpen(t *testing.T) {
	ctx := context.Background()
	fsys := NewFileSystem(t.TempDir())
	require.NoError(t, fsys.Init(ctx))

	name, err := fsys.Store(ctx, "dir/track.mp3", strings.NewReader("audio-bytes"), 11)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, "_track.mp3"), name)
	assert.Len(t, strings.TrimSuffix(name, "_track.mp3"), 36)

	rc, info, err := fsys.Open(ctx, name)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, int64(11), info.Size)
	assert.Equal(t, "audio/mpeg", info.ContentType)

	_, err = rc.Seek(6, io.SeekStart)
	require.NoError(t, err)
	rest, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "bytes", string(rest))
}

func TestFileSystemRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	fsys := NewFileSystem(t.TempDir())
	require.NoError(t, fsys.Init(ctx))

	_, err := fsys.Store(ctx, "empty.mp3", strings.NewReader(""), 0)
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = fsys.Store(ctx, "empty.mp3", strings.NewReader(""), -1)
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = fsys.Store(ctx, "../escape.mp3", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = fsys.StoreAs(ctx, "nested/cover.jpg", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, _, err = fsys.Open(ctx, "missing.mp3")
	assert.ErrorIs(t, err, ErrNotFound)

	entries, err := os.ReadDir(fsys.Root())
	require.NoError(t, err)
	assert.Empty(t, entries, "temp files must be cleaned up")
}

func TestFileSystemStoreAsOverwritesAndDelete(t *testing.T) {
	ctx := context.Background()
	fsys := NewFileSystem(t.TempDir())
	require.NoError(t, fsys.Init(ctx))

	name, err := fsys.StoreAs(ctx, "./album1.jpg", strings.NewReader("old"), 3)
	require.NoError(t, err)
	assert.Equal(t, "album1.jpg", name)
	_, err = fsys.StoreAs(ctx, "album1.jpg", strings.NewReader("newer"), 5)
	require.NoError(t, err)

	files, err := fsys.List(ctx, "album")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, int64(5), files[0].Size)

	require.NoError(t, fsys.Delete(ctx, "album1.jpg"))
	require.NoError(t, fsys.Delete(ctx, "album1.jpg"))
	_, err = os.Stat(filepath.Join(fsys.Root(), "album1.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestDetermineMediaType(t *testing.T) {
	cases := map[string]string{
		"a.JPG":  "image/jpeg",
		"a.jpeg": "image/jpeg",
		"a.png":  "image/png",
		"a.mp3":  "audio/mpeg",
		"a.wav":  "audio/wav",
		"a.ogg":  "audio/ogg",
		"a.flac": "audio/flac",
		"a.txt":  "application/octet-stream",
		"noext":  "application/octet-stream",
	}
	for name, want := range cases {
		assert.Equal(t, want, DetermineMediaType(name), name)
	}
}

func TestWatcherReportsRemovedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gone.mp3"), []byte("x"), 0o644))

	removed := make(chan string, 1)
	w, err := NewWatcher(dir, func(_ context.Context, name string) { removed <- name })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.Remove(filepath.Join(dir, "gone.mp3")))
	select {
	case name := <-removed:
		assert.Equal(t, "gone.mp3", name)
	case <-time.After(5 * time.Second):
		t.Fatal("no remove event")
	}
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1.5 KB", FormatSize(1536))
	assert.Equal(t, "2.0 MB", FormatSize(2<<20))
}
