// Package syncstate implements locsync.lock, which records the MD5 checksum
// of every file written by a pull. It lets pull report whether a download
// changed the local file, and warn before overwriting a file that was
// edited locally since the last pull.
//
// The lock file is stored next to the configuration file.
package syncstate

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileName is the lock file name.
const FileName = "locsync.lock"

// Version is the lock file format version.
const Version = 1

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Entry is the recorded state of one pulled file.
type Entry struct {
	Language string `yaml:"language"`
	Version  string `yaml:"version,omitempty"`
	Checksum string `yaml:"checksum"`
}

// Status is the outcome of recording a download.
type Status int

const (
	// New: the file was not tracked before.
	New Status = iota
	// Changed: the download differs from the last recorded content.
	Changed
	// Unchanged: the download is identical to the last recorded content.
	Unchanged
)

func (s Status) String() string {
	switch s {
	case New:
		return "new"
	case Changed:
		return "changed"
	case Unchanged:
		return "unchanged"
	}
	return "unknown"
}

// State is the locsync.lock file structure.
type State struct {
	Version int `yaml:"version"`
	// Files maps section -> file key -> entry.
	Files map[string]map[string]Entry `yaml:"files"`

	mu   sync.Mutex `yaml:"-"`
	dir  string     `yaml:"-"`
	path string     `yaml:"-"`
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads the lock file from dir.
// Returns an empty state if the file doesn't exist.
func Load(dir string) (*State, error) {
	path := filepath.Join(dir, FileName)
	s := &State{
		Version: Version,
		Files:   make(map[string]map[string]Entry),
		dir:     dir,
		path:    path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if s.Files == nil {
		s.Files = make(map[string]map[string]Entry)
	}
	return s, nil
}

// Save writes the lock file to disk.
func (s *State) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return fmt.Errorf("lock file path not set")
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}

// Path returns the lock file path.
func (s *State) Path() string {
	return s.path
}

// ---------------------------------------------------------------------------
// Checksum operations
// ---------------------------------------------------------------------------

// Hash computes the MD5 hex digest of data.
func Hash(data []byte) string {
	return fmt.Sprintf("%x", md5.Sum(data))
}

// Key returns the key a file path is stored under: relative to the lock
// file directory when possible, always with forward slashes.
func (s *State) Key(path string) string {
	if s.dir != "" {
		if abs, err := filepath.Abs(path); err == nil {
			if dir, err := filepath.Abs(s.dir); err == nil {
				if rel, err := filepath.Rel(dir, abs); err == nil && !strings.HasPrefix(rel, "..") {
					path = rel
				}
			}
		}
	}
	return filepath.ToSlash(filepath.Clean(path))
}

// Record stores the checksum of content written to path and reports how it
// compares to the previous record.
func (s *State) Record(section, path, language, version string, content []byte) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.Key(path)
	hash := Hash(content)

	files := s.Files[section]
	if files == nil {
		files = make(map[string]Entry)
		s.Files[section] = files
	}

	status := New
	if old, ok := files[key]; ok {
		status = Changed
		if old.Checksum == hash {
			status = Unchanged
		}
	}
	files[key] = Entry{Language: language, Version: version, Checksum: hash}
	return status
}

// LocallyModified reports whether the file at path differs from what the
// last pull wrote. Untracked or missing files are not modified.
func (s *State) LocallyModified(section, path string) bool {
	s.mu.Lock()
	entry, ok := s.Files[section][s.Key(path)]
	s.mu.Unlock()
	if !ok {
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return Hash(data) != entry.Checksum
}

// Clean removes the entries of section whose files no longer exist.
// Returns the number of removed entries.
func (s *State) Clean(section string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.Files[section] {
		path := filepath.FromSlash(key)
		if !filepath.IsAbs(path) && s.dir != "" {
			path = filepath.Join(s.dir, path)
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			delete(s.Files[section], key)
			removed++
		}
	}
	if len(s.Files[section]) == 0 {
		delete(s.Files, section)
	}
	return removed
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Stats returns the number of sections and total files in the lock file.
func (s *State) Stats() (sections, files int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sections = len(s.Files)
	for _, m := range s.Files {
		files += len(m)
	}
	return
}

// Sections returns the sorted list of sections.
func (s *State) Sections() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	sections := make([]string, 0, len(s.Files))
	for sec := range s.Files {
		sections = append(sections, sec)
	}
	sort.Strings(sections)
	return sections
}

// Summary returns a human-readable summary string.
func (s *State) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.Files) == 0 {
		return "empty"
	}

	sections := make([]string, 0, len(s.Files))
	files := 0
	for sec, m := range s.Files {
		sections = append(sections, sec)
		files += len(m)
	}
	sort.Strings(sections)

	parts := make([]string, 0, len(sections))
	for _, sec := range sections {
		parts = append(parts, fmt.Sprintf("%s: %d files", sec, len(s.Files[sec])))
	}
	return fmt.Sprintf("%d files (%s)", files, strings.Join(parts, ", "))
}
