package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeffnash/patch-22/internal/config"
)

const addPatch = "*** Begin Patch\n*** Add File: arg.txt\n+from-arg\n*** End Patch\n"

// chdir stands in for t.Chdir, which requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(prev))
	})
}

// run pins the working directory and the config location to throwaway
// temp dirs so tests never touch the real home directory.
func run(t *testing.T, args []string, stdin string) (code int, stdout, stderr string) {
	t.Helper()
	chdir(t, t.TempDir())
	t.Setenv(config.EnvVar, filepath.Join(t.TempDir(), "config.json"))

	var out, errBuf bytes.Buffer
	code = Run(context.Background(), args, strings.NewReader(stdin), &out, &errBuf)
	return code, out.String(), errBuf.String()
}

func setConfig(t *testing.T, cfg config.Config) {
	t.Helper()
	path := os.Getenv(config.EnvVar)
	require.NotEmpty(t, path)
	require.NoError(t, config.Save(path, cfg))
}

func TestRunAppliesPatchFromStdin(t *testing.T) {
	code, stdout, stderr := run(t, nil, addPatch)

	require.Equal(t, 0, code, "stderr: %s", stderr)
	require.Contains(t, stdout, "Success. Updated the following files:")
	require.Contains(t, stdout, "A arg.txt")

	data, err := os.ReadFile("arg.txt")
	require.NoError(t, err)
	require.Equal(t, "from-arg\n", string(data))
}

func TestRunAppliesPatchFromArgument(t *testing.T) {
	code, stdout, _ := run(t, []string{addPatch}, "")

	require.Equal(t, 0, code)
	require.Contains(t, stdout, "A arg.txt")

	data, err := os.ReadFile("arg.txt")
	require.NoError(t, err)
	require.Equal(t, "from-arg\n", string(data))
}

func TestRunRejectsNonPatchArgument(t *testing.T) {
	code, _, stderr := run(t, []string{"definitely not a patch"}, "")

	require.Equal(t, 1, code)
	require.Contains(t, stderr, "Error:")
}

func TestRunEmptyStdinPrintsUsage(t *testing.T) {
	code, _, stderr := run(t, nil, "")

	require.Equal(t, 2, code)
	require.Contains(t, stderr, "Usage: apply_patch 'PATCH'")
	require.Contains(t, stderr, "echo 'PATCH' | apply_patch")
}

func TestRunRejectsMultipleArguments(t *testing.T) {
	code, _, stderr := run(t, []string{addPatch, "extra"}, "")

	require.Equal(t, 2, code)
	require.Equal(t, "Error: apply_patch accepts exactly one argument.\n", stderr)
}

func TestRunRejectsUnknownOption(t *testing.T) {
	code, _, stderr := run(t, []string{"--frobnicate"}, "")

	require.Equal(t, 2, code)
	require.Equal(t, "Error: unknown option: --frobnicate\n", stderr)
}

func TestRunModeRequiresValue(t *testing.T) {
	code, _, stderr := run(t, []string{"--mode"}, "")

	require.Equal(t, 2, code)
	require.Equal(t, "Error: --mode requires a value.\n", stderr)
}

func TestRunModeRejectsInvalidValue(t *testing.T) {
	code, _, stderr := run(t, []string{"--mode", "explode"}, "")

	require.Equal(t, 2, code)
	require.Equal(t, "Error: invalid --mode value: explode\n", stderr)
}

func TestRunHelpExitsZero(t *testing.T) {
	code, stdout, _ := run(t, []string{"--help"}, "")

	require.Equal(t, 0, code)
	require.Contains(t, stdout, "apply_patch")
	require.Contains(t, stdout, "--show-config")
}

func TestRunRefuseModeLeavesTreeUntouched(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(config.EnvVar, filepath.Join(t.TempDir(), "config.json"))
	setConfig(t, config.Config{Mode: config.ModeRefuse})

	var out, errBuf bytes.Buffer
	code := Run(context.Background(), nil, strings.NewReader(addPatch), &out, &errBuf)

	require.Equal(t, 0, code)
	require.Contains(t, out.String(), "NOTE TO LLM:")
	require.Contains(t, out.String(), "nothing was changed")
	_, err := os.Stat("arg.txt")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunWarnModeAppliesWithBanner(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(config.EnvVar, filepath.Join(t.TempDir(), "config.json"))
	setConfig(t, config.Config{Mode: config.ModeWarn})

	var out, errBuf bytes.Buffer
	code := Run(context.Background(), nil, strings.NewReader(addPatch), &out, &errBuf)

	require.Equal(t, 0, code, "stderr: %s", errBuf.String())
	require.Contains(t, out.String(), "A arg.txt")
	require.Contains(t, out.String(), "NOTE TO LLM:")

	data, err := os.ReadFile("arg.txt")
	require.NoError(t, err)
	require.Equal(t, "from-arg\n", string(data))
}

func TestRunCustomBannersPersistAndClear(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(config.EnvVar, filepath.Join(t.TempDir(), "config.json"))

	code := Run(context.Background(), []string{"--refuse", "--set-refuse-message", "REFUSED_CUSTOM"}, strings.NewReader(""), new(bytes.Buffer), new(bytes.Buffer))
	require.Equal(t, 0, code)

	var out bytes.Buffer
	code = Run(context.Background(), nil, strings.NewReader(addPatch), &out, new(bytes.Buffer))
	require.Equal(t, 0, code)
	require.Contains(t, out.String(), "REFUSED_CUSTOM")
	require.NotContains(t, out.String(), "NOTE TO LLM:")

	code = Run(context.Background(), []string{"--clear-refuse-message"}, strings.NewReader(""), new(bytes.Buffer), new(bytes.Buffer))
	require.Equal(t, 0, code)

	out.Reset()
	code = Run(context.Background(), nil, strings.NewReader(addPatch), &out, new(bytes.Buffer))
	require.Equal(t, 0, code)
	require.Contains(t, out.String(), "NOTE TO LLM:")
}

func TestRunCustomWarnMessage(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(config.EnvVar, filepath.Join(t.TempDir(), "config.json"))

	code := Run(context.Background(), []string{"--warn", "--set-warn-message", "WARN_CUSTOM"}, strings.NewReader(""), new(bytes.Buffer), new(bytes.Buffer))
	require.Equal(t, 0, code)

	var out bytes.Buffer
	code = Run(context.Background(), nil, strings.NewReader(addPatch), &out, new(bytes.Buffer))
	require.Equal(t, 0, code)
	require.Contains(t, out.String(), "WARN_CUSTOM")
	require.NotContains(t, out.String(), "NOTE TO LLM:")
}

func TestRunShowConfig(t *testing.T) {
	code, stdout, _ := run(t, []string{"--show-config"}, "")

	require.Equal(t, 0, code)
	require.Contains(t, stdout, "Config file:")
	require.Contains(t, stdout, "config.json")
	require.Contains(t, stdout, "mode: apply")
	require.Contains(t, stdout, "refuse_message: default")
	require.Contains(t, stdout, "warn_message: default")
}

func TestRunShowConfigReportsCustomMessages(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(config.EnvVar, filepath.Join(t.TempDir(), "config.json"))
	msg := "custom"
	setConfig(t, config.Config{Mode: config.ModeRefuse, RefuseMessage: &msg})

	var out bytes.Buffer
	code := Run(context.Background(), []string{"--show-config"}, strings.NewReader(""), &out, new(bytes.Buffer))
	require.Equal(t, 0, code)
	require.Contains(t, out.String(), "mode: refuse")
	require.Contains(t, out.String(), "refuse_message: custom")
	require.Contains(t, out.String(), "warn_message: default")
}

func TestRunModeFlagUpdatesConfig(t *testing.T) {
	chdir(t, t.TempDir())
	configPath := filepath.Join(t.TempDir(), "config.json")
	t.Setenv(config.EnvVar, configPath)

	var out bytes.Buffer
	code := Run(context.Background(), []string{"--mode", "refuse"}, strings.NewReader(""), &out, new(bytes.Buffer))
	require.Equal(t, 0, code)
	require.Contains(t, out.String(), "Updated config: "+configPath)
	require.Equal(t, config.ModeRefuse, config.Load(configPath).Mode)
}

func TestRunConfigFlagsRejectPatchArgument(t *testing.T) {
	code, _, stderr := run(t, []string{"--refuse", addPatch}, "")

	require.Equal(t, 2, code)
	require.Equal(t, "Error: configuration flags cannot be combined with a PATCH argument.\n", stderr)
}

func TestRunConfigFlagsFailWithoutConfigPath(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(config.EnvVar, "")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "")

	var errBuf bytes.Buffer
	code := Run(context.Background(), []string{"--show-config"}, strings.NewReader(""), new(bytes.Buffer), &errBuf)
	require.Equal(t, 1, code)
	require.Equal(t, "Error: could not determine config path (HOME/XDG_CONFIG_HOME not set).\n", errBuf.String())
}

func TestRunReportsPartialStateOnFailure(t *testing.T) {
	patchBody := strings.Join([]string{
		"*** Begin Patch",
		"*** Add File: kept.txt",
		"+survives",
		"*** Delete File: missing.txt",
		"*** End Patch",
	}, "\n")

	code, _, stderr := run(t, nil, patchBody)

	require.Equal(t, 1, code)
	require.Contains(t, stderr, "Applied before failure:")
	require.Contains(t, stderr, "A kept.txt")
	require.Contains(t, stderr, "Error:")

	data, err := os.ReadFile("kept.txt")
	require.NoError(t, err)
	require.Equal(t, "survives\n", string(data))
}
