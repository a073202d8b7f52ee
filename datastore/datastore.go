// Package datastore is a small JSON document store: named documents kept in
// memory, written to a single file atomically with rolling backups.
package datastore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("datastore: closed")

// Config holds configuration options for the DataStore
type Config struct {
	FilePath         string
	AutoSaveInterval time.Duration // 0 disables autosave
	BackupCount      int           // backups kept next to the file
}

// DefaultConfig returns a default configuration
func DefaultConfig(filePath string) *Config {
	return &Config{
		FilePath:         filePath,
		AutoSaveInterval: 10 * time.Second,
		BackupCount:      3,
	}
}

type DataStore struct {
	mu           sync.RWMutex
	docs         map[string]json.RawMessage
	config       *Config
	lastChecksum string
	closed       bool
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// New opens (or creates) a store with the default configuration.
func New(filePath string) (*DataStore, error) {
	return NewWithConfig(DefaultConfig(filePath))
}

// NewWithConfig opens (or creates) a store.
func NewWithConfig(config *Config) (*DataStore, error) {
	if config == nil || config.FilePath == "" {
		return nil, fmt.Errorf("datastore: file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("datastore: create directory: %w", err)
	}

	ds := &DataStore{docs: make(map[string]json.RawMessage), config: config}

	switch _, err := os.Stat(config.FilePath); {
	case errors.Is(err, os.ErrNotExist):
		if err := ds.writeFileAtomic([]byte("{}")); err != nil {
			return nil, fmt.Errorf("datastore: create file: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("datastore: stat file: %w", err)
	default:
		if err := ds.load(); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	ds.cancel = cancel
	if config.AutoSaveInterval > 0 {
		ds.wg.Add(1)
		go ds.autoSave(ctx)
	}
	return ds, nil
}

// Put stores v under key as JSON.
func (ds *DataStore) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("datastore: marshal %q: %w", key, err)
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.closed {
		return ErrClosed
	}
	ds.docs[key] = raw
	return nil
}

// Decode unmarshals the document under key into out. found is false when
// the key does not exist.
func (ds *DataStore) Decode(key string, out any) (found bool, err error) {
	ds.mu.RLock()
	raw, ok := ds.docs[key]
	ds.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("datastore: decode %q: %w", key, err)
	}
	return true, nil
}

// Delete removes a document.
func (ds *DataStore) Delete(key string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	delete(ds.docs, key)
}

// Keys lists stored document names, sorted.
func (ds *DataStore) Keys() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	keys := make([]string, 0, len(ds.docs))
	for k := range ds.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Flush writes the store to disk now.
func (ds *DataStore) Flush() error {
	ds.mu.RLock()
	closed := ds.closed
	ds.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	return ds.save()
}

// Close stops autosave and writes a final snapshot.
func (ds *DataStore) Close() error {
	ds.mu.Lock()
	if ds.closed {
		ds.mu.Unlock()
		return nil
	}
	ds.closed = true
	ds.mu.Unlock()

	ds.cancel()
	ds.wg.Wait()
	return ds.save()
}

func (ds *DataStore) save() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	data, err := json.MarshalIndent(ds.docs, "", "  ")
	if err != nil {
		return fmt.Errorf("datastore: marshal: %w", err)
	}

	sum := checksum(data)
	if sum == ds.lastChecksum {
		return nil
	}

	if ds.config.BackupCount > 0 {
		if err := ds.backup(); err != nil {
			log.Warn().Err(err).Str("file", ds.config.FilePath).Msg("[DATASTORE] Failed to create backup")
		}
	}
	if err := ds.writeFileAtomic(data); err != nil {
		return err
	}

	written, err := os.ReadFile(ds.config.FilePath)
	if err != nil {
		return fmt.Errorf("datastore: verify: %w", err)
	}
	if !bytes.Equal(written, data) {
		return fmt.Errorf("datastore: verify: checksum mismatch")
	}

	ds.lastChecksum = sum
	return nil
}

func (ds *DataStore) load() error {
	data, err := os.ReadFile(ds.config.FilePath)
	if err != nil {
		return fmt.Errorf("datastore: read: %w", err)
	}
	docs := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &docs); err != nil {
		return fmt.Errorf("datastore: invalid JSON in %s: %w", ds.config.FilePath, err)
	}
	ds.docs = docs
	ds.lastChecksum = checksum(data)
	return nil
}

// writeFileAtomic writes through a synced temp file and a rename.
func (ds *DataStore) writeFileAtomic(data []byte) error {
	tmp := ds.config.FilePath + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("datastore: open temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("datastore: write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("datastore: sync temp file: %w", err)
	}
	f.Close()

	if err := os.Rename(tmp, ds.config.FilePath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("datastore: rename temp file: %w", err)
	}
	return nil
}

func (ds *DataStore) backup() error {
	src, err := os.Open(ds.config.FilePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer src.Close()

	name := fmt.Sprintf("%s.backup.%s", ds.config.FilePath, time.Now().Format("20060102_150405.000"))
	dst, err := os.Create(name)
	if err != nil {
		return err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return err
	}

	ds.pruneBackups()
	return nil
}

// pruneBackups keeps the newest BackupCount backups.
func (ds *DataStore) pruneBackups() {
	matches, err := filepath.Glob(ds.config.FilePath + ".backup.*")
	if err != nil || len(matches) <= ds.config.BackupCount {
		return
	}
	// Timestamped names sort oldest first.
	sort.Strings(matches)
	for _, old := range matches[:len(matches)-ds.config.BackupCount] {
		os.Remove(old)
	}
}

func (ds *DataStore) autoSave(ctx context.Context) {
	defer ds.wg.Done()

	ticker := time.NewTicker(ds.config.AutoSaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ds.save(); err != nil {
				log.Error().Err(err).Msg("[DATASTORE] Auto-save failed")
			}
		}
	}
}

func checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
