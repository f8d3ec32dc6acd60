package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPathPrefersEnvOverride(t *testing.T) {
	t.Setenv(EnvVar, "/tmp/custom-config.json")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	t.Setenv("HOME", "/home/u")

	path, err := Path()
	require.NoError(t, err)
	require.Equal(t, "/tmp/custom-config.json", path)
}

func TestPathFallsBackToXDGThenHome(t *testing.T) {
	t.Setenv(EnvVar, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	t.Setenv("HOME", "/home/u")

	path, err := Path()
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/xdg", ".apply_patch", "config.json"), path)

	t.Setenv("XDG_CONFIG_HOME", "")
	path, err = Path()
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/home/u", ".apply_patch", "config.json"), path)
}

func TestPathFailsWithoutAnyBase(t *testing.T) {
	t.Setenv(EnvVar, "")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "")

	_, err := Path()
	require.Error(t, err)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Equal(t, Default(), cfg)
}

func TestLoadMalformedFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	cfg := Load(path)
	require.Equal(t, Default(), cfg)
}

func TestLoadSchemaInvalidFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	for name, body := range map[string]string{
		"bad-mode.json":    `{"mode": "explode"}`,
		"extra-field.json": `{"mode": "apply", "surprise": true}`,
		"bad-type.json":    `{"mode": "warn", "warn_message": 42}`,
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		require.Equal(t, Default(), Load(path), "file %s should degrade to defaults", name)
	}
}

func TestLoadAcceptsNullMessages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mode": "refuse", "refuse_message": null}`), 0o644))

	cfg := Load(path)
	require.Equal(t, ModeRefuse, cfg.Mode)
	require.Nil(t, cfg.RefuseMessage)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.json")

	refuse := "custom refusal"
	warn := "custom warning"
	cfg := Config{Mode: ModeWarn, RefuseMessage: &refuse, WarnMessage: &warn}
	require.NoError(t, Save(path, cfg))

	loaded := Load(path)
	require.Equal(t, ModeWarn, loaded.Mode)
	require.NotNil(t, loaded.RefuseMessage)
	require.Equal(t, refuse, *loaded.RefuseMessage)
	require.NotNil(t, loaded.WarnMessage)
	require.Equal(t, warn, *loaded.WarnMessage)

	// No leftover temporary file after the rename.
	_, err := os.Stat(path + ".tmp")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveOmitsNilMessages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "refuse_message")
	require.NotContains(t, string(data), "warn_message")
}

func TestParseMode(t *testing.T) {
	for _, valid := range []string{"apply", "refuse", "warn"} {
		mode, ok := ParseMode(valid)
		require.True(t, ok)
		require.Equal(t, Mode(valid), mode)
	}
	for _, invalid := range []string{"", "Apply", "deny"} {
		_, ok := ParseMode(invalid)
		require.False(t, ok, "value %q should be rejected", invalid)
	}
}
