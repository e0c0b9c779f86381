// Package library keeps generated study material on disk, one JSON file per
// entry, named after the entry title and id.
package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Nephrolytics-ai/auralex/pkg/logging"
	"github.com/Nephrolytics-ai/auralex/pkg/model"
	"github.com/Nephrolytics-ai/auralex/pkg/utils"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("library entry not found")

var unsafeTitleChars = regexp.MustCompile(`[^a-z0-9]`)

// Entry is a saved result. The content fields are flattened into the entry
// when serialized.
type Entry struct {
	ID     string    `json:"id"`
	Date   time.Time `json:"date"`
	Source string    `json:"source,omitempty"`
	model.GeneratedContent
}

type Store struct {
	mu  sync.RWMutex
	dir string
	now func() time.Time
}

func NewStore(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, utils.WrapIfNotNil(errors.New("library directory is required"))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, utils.WrapIfNotNil(fmt.Errorf("create library directory: %w", err))
	}
	return &Store{dir: dir, now: time.Now}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Save stores content under a fresh id and returns the new entry.
func (s *Store) Save(ctx context.Context, content model.GeneratedContent, source string) (Entry, error) {
	log := logging.NewLogger(ctx)
	entry := Entry{
		ID:               uuid.NewString(),
		Date:             s.now().UTC(),
		Source:           source,
		GeneratedContent: content,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, FileName(entry))
	if err := writeEntry(path, entry); err != nil {
		log.Errorf("error: %v", err)
		return Entry{}, utils.WrapIfNotNil(err)
	}
	log.Infof("library.Save id=%s path=%s", entry.ID, path)
	return entry, nil
}

// List returns every readable entry, newest first. Files that fail to decode
// are skipped.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	log := logging.NewLogger(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()

	paths, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		log.Errorf("error: %v", err)
		return nil, utils.WrapIfNotNil(err)
	}

	entries := make([]Entry, 0, len(paths))
	for _, path := range paths {
		entry, err := readEntry(path)
		if err != nil {
			log.Warnf("library.List skipping %s: %v", path, err)
			continue
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	return entries, nil
}

func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return Entry{}, utils.WrapIfNotNil(fmt.Errorf("invalid entry id %q: %w", id, ErrNotFound))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches, err := filepath.Glob(filepath.Join(s.dir, "*-"+id+".json"))
	if err != nil {
		return Entry{}, utils.WrapIfNotNil(err)
	}
	for _, path := range matches {
		entry, err := readEntry(path)
		if err != nil {
			logging.NewLogger(ctx).Warnf("library.Get unreadable %s: %v", path, err)
			continue
		}
		if entry.ID == id {
			return entry, nil
		}
	}
	return Entry{}, utils.WrapIfNotNil(fmt.Errorf("entry %s: %w", id, ErrNotFound))
}

// Export writes the entry as indented JSON, the same form Save puts on disk.
func Export(entry Entry, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(entry); err != nil {
		return utils.WrapIfNotNil(fmt.Errorf("encode entry: %w", err))
	}
	return nil
}

// FileName is the sanitized title followed by the entry id.
func FileName(entry Entry) string {
	return SanitizeTitle(entry.Title) + "-" + entry.ID + ".json"
}

// SanitizeTitle lowercases the title and replaces anything outside [a-z0-9]
// with an underscore.
func SanitizeTitle(title string) string {
	sanitized := unsafeTitleChars.ReplaceAllString(strings.ToLower(title), "_")
	if sanitized == "" {
		return "untitled"
	}
	return sanitized
}

func writeEntry(path string, entry Entry) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "entry-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp entry: %w", err)
	}

	if err := Export(entry, tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename entry: %w", err)
	}
	return nil
}

func readEntry(path string) (Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return Entry{}, fmt.Errorf("open entry: %w", err)
	}
	defer file.Close()

	var entry Entry
	if err := json.NewDecoder(file).Decode(&entry); err != nil {
		return Entry{}, fmt.Errorf("decode entry: %w", err)
	}
	if entry.ID == "" {
		return Entry{}, errors.New("entry has no id")
	}
	return entry, nil
}
