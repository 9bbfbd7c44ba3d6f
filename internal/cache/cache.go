// Package cache implements the append-only, content-addressed stores used
// for extracted article text (keyed by URL) and generated summaries (keyed
// by fingerprint). Entries are JSON lines; the whole file is loaded at open
// and appends are idempotent, so concurrent writers never need coordination
// beyond the store's own mutex.
package cache

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Store is a best-effort key-value cache. A missing or corrupt backing file
// is treated as empty, never as a fatal condition.
type Store struct {
	path    string
	mu      sync.RWMutex
	entries map[string]string
}

// Open loads the store at path into memory. Lines that fail to parse
// (for example a partial trailing line after a crash) are skipped.
// An empty path yields a memory-only store.
func Open(path string) *Store {
	s := &Store{
		path:    path,
		entries: make(map[string]string),
	}
	if path == "" {
		return s
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("⚠️ cache dir %s: %v", dir, err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️ cache %s unreadable, starting empty: %v", path, err)
		}
		return s
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	skipped := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e entry
		if err := json.Unmarshal([]byte(line), &e); err != nil || e.Key == "" {
			skipped++
			continue
		}
		s.entries[e.Key] = e.Value
	}
	if skipped > 0 {
		log.Printf("⚠️ cache %s: skipped %d corrupt line(s)", path, skipped)
	}
	return s
}

func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok
}

// Put stores the value in memory and appends it to the backing file.
// Keys are content-derived, so re-writing an existing key is a benign
// duplicate and is not appended again.
func (s *Store) Put(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[key]; ok && old == value {
		return nil
	}
	s.entries[key] = value

	if s.path == "" {
		return nil
	}

	line, err := json.Marshal(entry{Key: key, Value: value})
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open cache %s: %w", s.path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append cache %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Fingerprint derives a stable cache key from its parts.
func Fingerprint(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
