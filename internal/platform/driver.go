package platform

import "fmt"

// Driver distribution platform segments.
const (
	DriverLinux64  = "linux64"
	DriverMacX64   = "mac-x64"
	DriverMacArm64 = "mac-arm64"
	DriverWin32    = "win32"
	DriverWin64    = "win64"
)

var driverPlatforms = map[string]bool{
	DriverLinux64:  true,
	DriverMacX64:   true,
	DriverMacArm64: true,
	DriverWin32:    true,
	DriverWin64:    true,
}

// DriverPlatform maps detected OS/arch to the distribution platform segment.
// Windows on arm64 runs the win64 build under emulation.
func DriverPlatform(info *Info) (string, error) {
	if info == nil {
		return "", fmt.Errorf("platform info is required")
	}

	switch info.OS {
	case "linux":
		if info.Arch == "amd64" {
			return DriverLinux64, nil
		}
	case "darwin":
		switch info.Arch {
		case "amd64":
			return DriverMacX64, nil
		case "arm64":
			return DriverMacArm64, nil
		}
	case "windows":
		switch info.Arch {
		case "amd64", "arm64":
			return DriverWin64, nil
		case "386":
			return DriverWin32, nil
		}
	}

	return "", fmt.Errorf("no driver published for %s/%s", info.OS, info.Arch)
}

// ValidDriverPlatform reports whether name is a known platform segment.
func ValidDriverPlatform(name string) bool {
	return driverPlatforms[name]
}

// InfoForDriverPlatform returns the Info a platform segment stands for. It
// backs the platform override in configuration.
func InfoForDriverPlatform(name string) (*Info, error) {
	switch name {
	case DriverLinux64:
		return &Info{OS: "linux", Arch: "amd64", ArchRaw: "amd64"}, nil
	case DriverMacX64:
		return &Info{OS: "darwin", Arch: "amd64", ArchRaw: "amd64"}, nil
	case DriverMacArm64:
		return &Info{OS: "darwin", Arch: "arm64", ArchRaw: "arm64"}, nil
	case DriverWin32:
		return &Info{OS: "windows", Arch: "386", ArchRaw: "386"}, nil
	case DriverWin64:
		return &Info{OS: "windows", Arch: "amd64", ArchRaw: "amd64"}, nil
	default:
		return nil, fmt.Errorf("unknown driver platform %q", name)
	}
}
