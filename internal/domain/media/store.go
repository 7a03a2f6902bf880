package media

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

const maxNameLen = 100

// Store keeps files in one flat directory. Keys are "<unix-nano>-<name>" where
// the timestamp strictly increases across calls, so concurrent uploads of the
// same file name never collide.
type Store struct {
	dir     string
	urlBase string
	last    atomic.Int64
}

func NewStore(dir, urlBase string) *Store {
	return &Store{dir: dir, urlBase: strings.TrimSuffix(urlBase, "/")}
}

// Dir returns the backing directory.
func (s *Store) Dir() string { return s.dir }

// Save copies r into a new file and returns its key and the byte count.
func (s *Store) Save(r io.Reader, suggestedName string) (string, int64, error) {
	if err := s.ensureDir(); err != nil {
		return "", 0, err
	}

	name := SanitizeName(suggestedName)
	for attempt := 0; attempt < 5; attempt++ {
		key := strconv.FormatInt(s.nextStamp(), 10) + "-" + name
		path := s.Resolve(key)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", 0, fmt.Errorf("create %s: %w", key, err)
		}

		n, err := io.Copy(f, r)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
			return "", n, fmt.Errorf("write %s: %w", key, err)
		}
		return key, n, nil
	}
	return "", 0, fmt.Errorf("could not allocate a unique key for %q", name)
}

// Delete removes key. A missing file is not an error.
func (s *Store) Delete(key string) error {
	if key == "" {
		return nil
	}
	err := os.Remove(s.Resolve(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Resolve returns the absolute on-disk path of key.
func (s *Store) Resolve(key string) string {
	p := filepath.Join(s.dir, filepath.Base(key))
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// URL returns the public URL key is served under.
func (s *Store) URL(key string) string {
	return s.urlBase + "/" + url.PathEscape(key)
}

// Exists reports whether key is present on disk.
func (s *Store) Exists(key string) bool {
	_, err := os.Stat(s.Resolve(key))
	return err == nil
}

type StoredFile struct {
	Key     string
	ModTime time.Time
}

// List returns the regular files directly inside the store. A missing
// directory is treated as empty.
func (s *Store) List() ([]StoredFile, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list media directory: %w", err)
	}

	files := make([]StoredFile, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, StoredFile{Key: e.Name(), ModTime: info.ModTime()})
	}
	return files, nil
}

func (s *Store) ensureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create media directory: %w", err)
	}
	return nil
}

func (s *Store) nextStamp() int64 {
	for {
		last := s.last.Load()
		now := time.Now().UnixNano()
		if now <= last {
			now = last + 1
		}
		if s.last.CompareAndSwap(last, now) {
			return now
		}
	}
}

// SanitizeName keeps ASCII letters, digits, '.' and '-'; everything else
// becomes '-'. Leading dots are dropped so a key can never be hidden or
// climb directories.
func SanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return '-'
	}, name)
	name = strings.TrimLeft(name, ".")
	if len(name) > maxNameLen {
		name = name[len(name)-maxNameLen:]
	}
	if name == "" {
		return "file"
	}
	return name
}
