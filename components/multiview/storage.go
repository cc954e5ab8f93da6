package multiview

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// MemoryStorage provides a concurrency-safe in-process Storage.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStorage creates an empty storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

// Load returns a copy of the bytes saved under key.
func (s *MemoryStorage) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[key]
	if !ok {
		return nil, ErrStorageKeyNotFound
	}
	return append([]byte{}, data...), nil
}

// Save replaces the bytes stored under key.
func (s *MemoryStorage) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte{}, data...)
	return nil
}

// FileStorage keeps one JSON file per key inside a directory.
type FileStorage struct {
	dir string
	mu  sync.Mutex
}

// NewFileStorage creates the directory if needed.
func NewFileStorage(dir string) (*FileStorage, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("multiview: file storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("multiview: create storage dir %s: %w", dir, err)
	}
	return &FileStorage{dir: dir}, nil
}

// Path returns the file backing key.
func (s *FileStorage) Path(key string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_")
	return filepath.Join(s.dir, replacer.Replace(key)+".json")
}

// Load reads the file backing key.
func (s *FileStorage) Load(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrStorageKeyNotFound
		}
		return nil, fmt.Errorf("multiview: read %s: %w", key, err)
	}
	return data, nil
}

// Save writes to a temp file and renames it over the target.
func (s *FileStorage) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := s.Path(key)
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("multiview: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("multiview: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("multiview: close %s: %w", key, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("multiview: replace %s: %w", key, err)
	}
	return nil
}

// Watch calls onChange whenever the file backing key is written, created or
// renamed into place. It blocks until ctx is done.
func (s *FileStorage) Watch(ctx context.Context, key string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("multiview: create watcher: %w", err)
	}
	defer watcher.Close()
	// Watch the directory: atomic renames replace the inode.
	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("multiview: watch %s: %w", s.dir, err)
	}
	target := filepath.Clean(s.Path(key))
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				onChange()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("multiview: watch %s: %w", key, err)
		}
	}
}
