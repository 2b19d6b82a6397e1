package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	json "github.com/goccy/go-json"

	"livenotes/internal/storage/interfaces"
)

const FileBackendName = "file"

var ErrValueTooLarge = errors.New("value exceeds the per-value size limit")

// FileBackend is the fallback store: every key lives in one compressed JSON
// map that is rewritten atomically on each mutation. Operations complete
// synchronously and values larger than maxValueBytes are rejected.
type FileBackend struct {
	mu            sync.Mutex
	path          string
	maxValueBytes int
	compressor    interfaces.CompressorInterface
	data          map[string]string
}

// NewFileBackend loads path if it exists. A missing file is an empty store.
func NewFileBackend(path string, maxValueBytes int, compressor interfaces.CompressorInterface) (*FileBackend, error) {
	fb := &FileBackend{
		path:          path,
		maxValueBytes: maxValueBytes,
		compressor:    compressor,
		data:          make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fb, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(raw) == 0 {
		return fb, nil
	}

	decompressed, err := compressor.Decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", path, err)
	}
	if err := json.Unmarshal(decompressed, &fb.data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if fb.data == nil {
		fb.data = make(map[string]string)
	}
	return fb, nil
}

func (fb *FileBackend) Name() string {
	return FileBackendName
}

func (fb *FileBackend) Get(ctx context.Context, key, def string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if v, ok := fb.data[key]; ok {
		return v, nil
	}
	return def, nil
}

func (fb *FileBackend) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(value) > fb.maxValueBytes {
		return fmt.Errorf("set %s (%d bytes, limit %d): %w", key, len(value), fb.maxValueBytes, ErrValueTooLarge)
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()

	prev, existed := fb.data[key]
	fb.data[key] = value
	if err := fb.persist(); err != nil {
		if existed {
			fb.data[key] = prev
		} else {
			delete(fb.data, key)
		}
		return err
	}
	return nil
}

func (fb *FileBackend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()

	prev, existed := fb.data[key]
	if !existed {
		return nil
	}
	delete(fb.data, key)
	if err := fb.persist(); err != nil {
		fb.data[key] = prev
		return err
	}
	return nil
}

// Keys returns the stored keys in sorted order.
func (fb *FileBackend) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()

	keys := make([]string, 0, len(fb.data))
	for k := range fb.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

func (fb *FileBackend) Close() error {
	return nil
}

// persist writes the whole map through a temp file and renames it into
// place. An empty map removes the file. Must be called with fb.mu held.
func (fb *FileBackend) persist() error {
	if len(fb.data) == 0 {
		if err := os.Remove(fb.path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}

	jsonData, err := json.Marshal(fb.data)
	if err != nil {
		return err
	}
	data, err := fb.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fb.path), 0755); err != nil {
		return err
	}

	tmpFile := fb.path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fb.path)
}
