package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LoadMissingFileYieldsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s)
}

func Test_SaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	want := State{
		RefPitch: 442.5,
		NoteBias: 0.3,
		CorrFilt: 0.05,
		CorrGain: 1.2,
		CorrOffs: -1.5,
		NoteMask: 0x0AB,
		WinX:     100,
		WinY:     200,
	}
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func Test_LoadIgnoresUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	require.NoError(t, os.WriteFile(path, []byte("# a comment\n/unrelated/key\t7\n/autotune/tune\t415\n"), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 415.0, got.RefPitch)
}

func Test_LoadRequiresTabSeparator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	require.NoError(t, os.WriteFile(path, []byte("/autotune/tune 415\n"), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Defaults().RefPitch, got.RefPitch)
}
