package driver

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZebulonRouseFrantzich/driverman/internal/platform"
	"github.com/ZebulonRouseFrantzich/driverman/internal/version"
)

func TestArchiveURL(t *testing.T) {
	t.Parallel()

	v := version.MustParse("120.0.6099.109")

	tests := []struct {
		name     string
		base     string
		version  version.Version
		platform string
		want     string
		wantErr  bool
	}{
		{
			name:     "default_base_linux",
			version:  v,
			platform: platform.DriverLinux64,
			want:     "https://storage.googleapis.com/chrome-for-testing-public/120.0.6099.109/linux64/chromedriver-linux64.zip",
		},
		{
			name:     "default_base_win32",
			base:     DefaultDistributionURL,
			version:  v,
			platform: platform.DriverWin32,
			want:     "https://storage.googleapis.com/chrome-for-testing-public/120.0.6099.109/win32/chromedriver-win32.zip",
		},
		{
			name:     "mirror_with_trailing_slash",
			base:     "http://mirror.local/cft/",
			version:  v,
			platform: platform.DriverMacArm64,
			want:     "http://mirror.local/cft/120.0.6099.109/mac-arm64/chromedriver-mac-arm64.zip",
		},
		{
			name:     "missing_version",
			platform: platform.DriverLinux64,
			wantErr:  true,
		},
		{
			name:     "unknown_platform",
			version:  v,
			platform: "linux-arm64",
			wantErr:  true,
		},
		{
			name:     "relative_base",
			base:     "mirror.local/cft",
			version:  v,
			platform: platform.DriverLinux64,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ArchiveURL(tt.base, tt.version, tt.platform)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecutablePath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("store", "chromedriver-linux64", "chromedriver"),
		executablePath("store", platform.DriverLinux64))
	assert.Equal(t, filepath.Join("store", "chromedriver-win64", "chromedriver.exe"),
		executablePath("store", platform.DriverWin64))
}
