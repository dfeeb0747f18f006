package presets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_DefaultBankHasChromatic(t *testing.T) {
	b := DefaultBank()
	mask, ok := b.Lookup("chromatic")
	require.True(t, ok)
	assert.Equal(t, uint32(0xFFF), mask)
}

func Test_DefaultBankScalesStayWithinTwelveBits(t *testing.T) {
	b := DefaultBank()
	for _, name := range b.Names() {
		mask, ok := b.Lookup(name)
		require.True(t, ok)
		assert.Zero(t, mask&^uint32(0xFFF), "preset %q has bits outside the twelve-semitone mask", name)
	}
}

func Test_LoadBankFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	contents := "presets:\n  - name: custom\n    mask: 0x111\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	b, err := LoadBank(path)
	require.NoError(t, err)
	mask, ok := b.Lookup("custom")
	require.True(t, ok)
	assert.Equal(t, uint32(0x111), mask)
}

func Test_LookupMissingPresetReportsNotFound(t *testing.T) {
	b := DefaultBank()
	_, ok := b.Lookup("nonexistent")
	assert.False(t, ok)
}
