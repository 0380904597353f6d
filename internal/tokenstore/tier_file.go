package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileTier keeps keys in a single JSON document. Every mutation rewrites the
// whole document through a temp file and rename, so a multi-key change is
// observed either fully or not at all.
type FileTier struct {
	mu   sync.Mutex
	path string
}

// NewFileTier returns a tier stored at path. The parent directory is created lazily.
func NewFileTier(path string) *FileTier {
	return &FileTier{path: path}
}

// Path reports the backing file.
func (t *FileTier) Path() string {
	return t.path
}

func (t *FileTier) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	values, err := t.load()
	if err != nil {
		return "", false, err
	}
	val, ok := values[key]
	return val, ok, nil
}

func (t *FileTier) Set(ctx context.Context, key, value string) error {
	return t.SetMany(ctx, map[string]string{key: value})
}

func (t *FileTier) SetMany(ctx context.Context, updates map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	values, err := t.load()
	if err != nil {
		return err
	}
	for k, v := range updates {
		values[k] = v
	}
	return t.write(values)
}

func (t *FileTier) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	values, err := t.load()
	if err != nil {
		// An unreadable document cannot hold anything worth keeping.
		if removeErr := os.Remove(t.path); removeErr != nil && !errors.Is(removeErr, fs.ErrNotExist) {
			return errors.Join(err, removeErr)
		}
		return nil
	}
	for _, k := range keys {
		delete(values, k)
	}
	if len(values) == 0 {
		if err := os.Remove(t.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", t.path, err)
		}
		return nil
	}
	return t.write(values)
}

func (t *FileTier) load() (map[string]string, error) {
	raw, err := os.ReadFile(t.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("read %s: %w", t.path, err)
	}
	values := make(map[string]string)
	if len(raw) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode %s: %w", t.path, err)
	}
	return values, nil
}

func (t *FileTier) write(values map[string]string) error {
	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	raw, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tokens-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, t.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
