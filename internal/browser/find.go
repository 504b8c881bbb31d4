package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// FindExecutable returns the first default Chrome install location that
// exists on this machine.
func FindExecutable() (string, error) {
	for _, candidate := range candidates(runtime.GOOS, os.Getenv) {
		if fileExists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: no Chrome installation found in default locations", ErrNotFound)
}

// DefaultPath returns the conventional Chrome location for this platform,
// whether or not it exists.
func DefaultPath() string {
	paths := candidates(runtime.GOOS, os.Getenv)
	if len(paths) == 0 {
		return ""
	}
	return paths[0]
}

// candidates lists Chrome locations in preference order.
func candidates(goos string, getenv func(string) string) []string {
	switch goos {
	case "windows":
		programFiles := getenv("ProgramFiles")
		if programFiles == "" {
			programFiles = `C:\Program Files`
		}
		programFilesX86 := getenv("ProgramFiles(x86)")
		if programFilesX86 == "" {
			programFilesX86 = `C:\Program Files (x86)`
		}
		paths := []string{
			filepath.Join(programFiles, "Google", "Chrome", "Application", "chrome.exe"),
			filepath.Join(programFilesX86, "Google", "Chrome", "Application", "chrome.exe"),
		}
		if localAppData := getenv("LOCALAPPDATA"); localAppData != "" {
			paths = append(paths, filepath.Join(localAppData, "Google", "Chrome", "Application", "chrome.exe"))
		}
		return paths
	case "darwin":
		paths := []string{"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"}
		if home := getenv("HOME"); home != "" {
			paths = append(paths, filepath.Join(home, "Applications/Google Chrome.app/Contents/MacOS/Google Chrome"))
		}
		return paths
	case "linux":
		return []string{
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/opt/google/chrome/chrome",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/snap/bin/chromium",
		}
	default:
		return nil
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
