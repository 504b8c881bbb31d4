//go:build windows

package browser

import (
	"context"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/ZebulonRouseFrantzich/driverman/internal/version"
)

// fileVersionDetector reads the fixed file version from the PE version
// resource of chrome.exe.
type fileVersionDetector struct {
	path string
}

func newDetector(path string) Detector {
	return &fileVersionDetector{path: path}
}

func (d *fileVersionDetector) Version(ctx context.Context) (version.Version, error) {
	if err := ctx.Err(); err != nil {
		return version.Version{}, err
	}
	if err := checkExists(d.path); err != nil {
		return version.Version{}, err
	}

	size, err := windows.GetFileVersionInfoSize(d.path, nil)
	if err != nil {
		return version.Version{}, fmt.Errorf("get version info size: %w", err)
	}
	if size == 0 {
		return version.Version{}, fmt.Errorf("%s has no version resource", d.path)
	}

	buf := make([]byte, size)
	if err := windows.GetFileVersionInfo(d.path, 0, size, unsafe.Pointer(&buf[0])); err != nil {
		return version.Version{}, fmt.Errorf("get version info: %w", err)
	}

	var fixed *windows.VS_FIXEDFILEINFO
	var fixedLen uint32
	if err := windows.VerQueryValue(unsafe.Pointer(&buf[0]), `\`, unsafe.Pointer(&fixed), &fixedLen); err != nil {
		return version.Version{}, fmt.Errorf("query fixed file info: %w", err)
	}
	if fixed == nil || fixedLen == 0 {
		return version.Version{}, fmt.Errorf("%s has no fixed file info", d.path)
	}

	return version.New(
		int(fixed.FileVersionMS>>16),
		int(fixed.FileVersionMS&0xffff),
		int(fixed.FileVersionLS>>16),
		int(fixed.FileVersionLS&0xffff),
	), nil
}
