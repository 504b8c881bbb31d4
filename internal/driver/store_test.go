package driver

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZebulonRouseFrantzich/driverman/internal/version"
)

func TestStoreCachedVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		record string
		write  bool
		want   string
	}{
		{name: "no_record", want: "0"},
		{name: "valid_record", record: `{"version":"120.0.6099.109"}`, write: true, want: "120.0.6099.109"},
		{name: "corrupt_json", record: `{"version":`, write: true, want: "0"},
		{name: "bad_version", record: `{"version":"abc"}`, write: true, want: "0"},
		{name: "empty_version", record: `{"version":""}`, write: true, want: "0"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := afero.NewMemMapFs()
			store := NewStore(fs, "/store")
			if tt.write {
				require.NoError(t, afero.WriteFile(fs, store.RecordPath(), []byte(tt.record), 0o644))
			}

			got := store.CachedVersion()
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestStoreReadVersionReportsCorruption(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/store")

	v, err := store.ReadVersion()
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	require.NoError(t, afero.WriteFile(fs, store.RecordPath(), []byte("not json"), 0o644))
	_, err = store.ReadVersion()
	require.Error(t, err)
}

func TestStoreWriteVersion(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/store/nested")

	require.NoError(t, store.WriteVersion(version.MustParse("119.0.6045.105")))
	require.NoError(t, store.WriteVersion(version.MustParse("120.0.6099.109")))

	data, err := afero.ReadFile(fs, "/store/nested/version.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"120.0.6099.109"}`, string(data))

	exists, err := afero.Exists(fs, store.RecordPath()+".tmp")
	require.NoError(t, err)
	assert.False(t, exists, "temp record should be renamed away")

	assert.Equal(t, "120.0.6099.109", store.CachedVersion().String())
}

func TestStoreWriteVersionRejectsZero(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/store")

	require.Error(t, store.WriteVersion(version.Version{}))

	exists, err := afero.Exists(fs, store.RecordPath())
	require.NoError(t, err)
	assert.False(t, exists)
}
