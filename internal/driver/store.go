package driver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/ZebulonRouseFrantzich/driverman/internal/version"
)

// RecordFile is the name of the version record inside the store.
const RecordFile = "version.json"

// record is the on-disk format of the version record.
type record struct {
	Version version.Version `json:"version"`
}

// Store is the driver store directory and its version record.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore returns the store rooted at dir on fs.
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// RecordPath returns the path of the version record.
func (s *Store) RecordPath() string {
	return filepath.Join(s.dir, RecordFile)
}

// CachedVersion returns the recorded driver version, or the zero Version
// when the record is absent or cannot be read.
func (s *Store) CachedVersion() version.Version {
	v, err := s.ReadVersion()
	if err != nil {
		return version.Version{}
	}
	return v
}

// ReadVersion reads the version record. A missing record is returned as
// the zero Version with no error.
func (s *Store) ReadVersion() (version.Version, error) {
	data, err := afero.ReadFile(s.fs, s.RecordPath())
	if err != nil {
		if os.IsNotExist(err) {
			return version.Version{}, nil
		}
		return version.Version{}, fmt.Errorf("read version record: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return version.Version{}, fmt.Errorf("parse version record: %w", err)
	}
	return rec.Version, nil
}

// WriteVersion replaces the version record with v. The record is written
// to a temporary file and renamed into place.
func (s *Store) WriteVersion(v version.Version) error {
	if v.IsZero() {
		return fmt.Errorf("write version record: version is required")
	}

	data, err := json.Marshal(record{Version: v})
	if err != nil {
		return fmt.Errorf("marshal version record: %w", err)
	}

	if err := s.EnsureDir(); err != nil {
		return err
	}

	path := s.RecordPath()
	tmpPath := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp record: %w", err)
	}
	if err := s.fs.Rename(tmpPath, path); err != nil {
		_ = s.fs.Remove(tmpPath)
		return fmt.Errorf("rename temp record: %w", err)
	}
	return nil
}

// EnsureDir creates the store directory if it does not exist.
func (s *Store) EnsureDir() error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	return nil
}
