package settings

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirName is the per-project directory holding all driftscan files.
const DirName = ".driftscan"

const fileName = "settings.md"

// Store reads and writes the settings document for one project root.
type Store struct {
	root string
}

// NewStore returns a store rooted at the given project directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Path returns the settings document location.
func (s *Store) Path() string {
	return filepath.Join(s.root, DirName, fileName)
}

// Read returns the persisted settings merged over defaults. A missing file
// is not an error: it yields the defaults. Every field of the result is
// populated.
func (s *Store) Read() (Settings, error) {
	data, err := os.ReadFile(s.Path())
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("reading settings: %w", err)
	}
	return merge(Default(), parseDocument(string(data))), nil
}

// Write persists the settings as the canonical document. Writing the same
// settings twice produces byte-identical output. The write is atomic: the
// document is staged to a temp file and renamed over the old one, so a
// failed write never truncates a previously valid document.
func (s *Store) Write(cfg Settings) error {
	dir := filepath.Join(s.root, DirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("writing settings: creating %s: %w", dir, err)
	}
	return writeFileAtomic(s.Path(), []byte(formatDocument(cfg)))
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return nil
}
