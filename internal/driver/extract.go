package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

// ErrExtractionFailed is returned when the archive is corrupt or cannot be
// unpacked.
var ErrExtractionFailed = errors.New("driver extraction failed")

// Extractor unpacks zip archives on an afero filesystem.
type Extractor struct {
	fs afero.Fs
}

// NewExtractor creates a new extractor
func NewExtractor(fs afero.Fs) *Extractor {
	return &Extractor{fs: fs}
}

// ExtractZip extracts archivePath into destDir, overwriting existing files.
// Every failure wraps ErrExtractionFailed.
func (e *Extractor) ExtractZip(archivePath, destDir string) error {
	if err := e.extractZip(archivePath, destDir); err != nil {
		return fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	return nil
}

func (e *Extractor) extractZip(archivePath, destDir string) error {
	archiveFile, err := e.fs.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archiveFile.Close()

	info, err := archiveFile.Stat()
	if err != nil {
		return fmt.Errorf("stat archive: %w", err)
	}

	zr, err := zip.NewReader(archiveFile, info.Size())
	if err != nil {
		return fmt.Errorf("read zip: %w", err)
	}

	if err := e.fs.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	for _, f := range zr.File {
		target := filepath.Join(destDir, filepath.FromSlash(f.Name))

		// Security check: prevent path traversal
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("illegal file path: %s", f.Name)
		}

		mode := f.Mode()
		switch {
		case mode.IsDir():
			if err := e.fs.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
		case mode.IsRegular():
			if err := e.writeFile(f, target); err != nil {
				return err
			}
		default:
			// Symlinks and devices are not part of driver archives.
			continue
		}
	}

	return nil
}

func (e *Extractor) writeFile(f *zip.File, target string) error {
	if err := e.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", target, err)
	}

	perm := f.Mode().Perm()
	if perm == 0 {
		perm = 0o644
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	outFile, err := e.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create file %s: %w", target, err)
	}

	if _, err := io.Copy(outFile, rc); err != nil {
		outFile.Close()
		return fmt.Errorf("write file %s: %w", target, err)
	}

	if err := outFile.Close(); err != nil {
		return fmt.Errorf("close file %s: %w", target, err)
	}

	// OpenFile keeps the old mode of a file it truncates.
	if err := e.fs.Chmod(target, perm); err != nil {
		return fmt.Errorf("chmod %s: %w", target, err)
	}
	return nil
}

// SetExecutable sets executable permissions on a file
func SetExecutable(fs afero.Fs, path string) error {
	if err := fs.Chmod(path, 0o755); err != nil {
		return fmt.Errorf("set executable: %w", err)
	}
	return nil
}
