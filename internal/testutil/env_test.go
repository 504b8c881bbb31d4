package testutil_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZebulonRouseFrantzich/driverman/internal/testutil"
)

func TestSetupTestEnv(t *testing.T) {
	t.Setenv("DRIVERMAN_STORE_DIR", "/should/not/leak")

	home := testutil.SetupTestEnv(t)

	if _, ok := os.LookupEnv("DRIVERMAN_STORE_DIR"); ok {
		t.Error("DRIVERMAN_STORE_DIR still set")
	}
	if got := os.Getenv("HOME"); got != home {
		t.Errorf("HOME = %q, want %q", got, home)
	}

	cache := os.Getenv("XDG_CACHE_HOME")
	for _, dir := range []string{home, cache} {
		if !filepath.IsAbs(dir) {
			t.Errorf("path %s is not absolute", dir)
		}
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			t.Errorf("directory %s does not exist", dir)
		}
	}

	if !strings.HasPrefix(cache, filepath.Dir(home)) {
		t.Errorf("cache %s is not next to home %s", cache, home)
	}
}

func TestSetupTestEnv_Isolation(t *testing.T) {
	home1 := testutil.SetupTestEnv(t)

	t.Run("subtest", func(t *testing.T) {
		home2 := testutil.SetupTestEnv(t)
		if home1 == home2 {
			t.Error("expected different temp directories for different test contexts")
		}
	})
}
