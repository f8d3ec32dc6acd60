// Package cli implements the apply_patch command: flag handling, the
// persisted apply/warn/refuse policy, banner rendering, and exit codes. The
// patch engine itself lives in pkg/patch and is invoked here as a pure
// function of (patch text, root).
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/jeffnash/patch-22/internal/config"
	"github.com/jeffnash/patch-22/pkg/patch"
)

const defaultRefuseMessage = "NOTE TO LLM:\n" +
	"You just ran `apply_patch` as a shell command, not as a model-native editing tool.\n" +
	"This environment is configured to refuse shell-based patching, so nothing was changed.\n" +
	"\n" +
	"Use your native editing tool (your built-in patch/editor tool) to apply this change now, " +
	"and do not run `apply_patch` in the shell for future changes."

const defaultWarnMessage = "NOTE TO LLM:\n" +
	"The patch was applied by a shell `apply_patch` wrapper.\n" +
	"For future changes, use your native editing tool instead of running `apply_patch` in the shell."

const helpText = `apply_patch

Applies *** Begin Patch scripts from stdin (or a single PATCH argument) to the
current working directory.

Config flags (persist in your home directory):
  --show-config
  --mode <apply|refuse|warn>   (aliases: --apply, --refuse, --warn)
  --set-refuse-message <text>
  --clear-refuse-message
  --set-warn-message <text>
  --clear-warn-message

Notes:
  - Config is stored at $XDG_CONFIG_HOME/.apply_patch/config.json (or ~/.apply_patch/config.json).
  - You can override the config path with $APPLY_PATCH_CONFIG.`

// Run executes the apply_patch command with the provided arguments and
// streams. It returns a POSIX-style exit code: 0 on success (or a refused
// patch), 1 on engine or config failures, 2 on usage errors.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	if err := godotenv.Load(); err != nil {
		// A missing .env file is fine, but other errors should be surfaced to help with debugging.
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			fmt.Fprintf(stderr, "failed to load .env: %v\n", err)
			return 1
		}
	}

	var (
		show          bool
		mode          *config.Mode
		refuseChanged bool
		refuseValue   *string
		warnChanged   bool
		warnValue     *string
		positional    []string
	)

	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "--show-config":
			show = true
		case "--mode":
			if i+1 >= len(args) {
				fmt.Fprintln(stderr, "Error: --mode requires a value.")
				return 2
			}
			i++
			parsed, ok := config.ParseMode(args[i])
			if !ok {
				fmt.Fprintf(stderr, "Error: invalid --mode value: %s\n", args[i])
				return 2
			}
			mode = &parsed
		case "--apply":
			m := config.ModeApply
			mode = &m
		case "--refuse":
			m := config.ModeRefuse
			mode = &m
		case "--warn":
			m := config.ModeWarn
			mode = &m
		case "--set-refuse-message":
			if i+1 >= len(args) {
				fmt.Fprintln(stderr, "Error: --set-refuse-message requires a value.")
				return 2
			}
			i++
			refuseChanged, refuseValue = true, &args[i]
		case "--clear-refuse-message":
			refuseChanged, refuseValue = true, nil
		case "--set-warn-message":
			if i+1 >= len(args) {
				fmt.Fprintln(stderr, "Error: --set-warn-message requires a value.")
				return 2
			}
			i++
			warnChanged, warnValue = true, &args[i]
		case "--clear-warn-message":
			warnChanged, warnValue = true, nil
		case "-h", "--help":
			fmt.Fprintln(stdout, helpText)
			return 0
		default:
			if strings.HasPrefix(arg, "-") {
				fmt.Fprintf(stderr, "Error: unknown option: %s\n", arg)
				return 2
			}
			positional = append(positional, arg)
		}
	}

	if show || mode != nil || refuseChanged || warnChanged {
		return runConfigCommand(configCommand{
			show:          show,
			mode:          mode,
			refuseChanged: refuseChanged,
			refuseValue:   refuseValue,
			warnChanged:   warnChanged,
			warnValue:     warnValue,
			positional:    positional,
		}, stdout, stderr)
	}

	cfg := config.Default()
	if path, err := config.Path(); err == nil {
		cfg = config.Load(path)
	}

	var patchText string
	switch len(positional) {
	case 0:
		data, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "Error: Failed to read PATCH from stdin.\n%v\n", err)
			return 1
		}
		if len(data) == 0 {
			fmt.Fprintln(stderr, "Usage: apply_patch 'PATCH'\n       echo 'PATCH' | apply_patch")
			return 2
		}
		patchText = string(data)
	case 1:
		patchText = positional[0]
	default:
		fmt.Fprintln(stderr, "Error: apply_patch accepts exactly one argument.")
		return 2
	}

	if cfg.Mode == config.ModeRefuse {
		fmt.Fprintln(stdout, banner(cfg.RefuseMessage, defaultRefuseMessage))
		return 0
	}

	result, err := patch.ApplyText(ctx, patchText, "")
	if err != nil {
		if result != nil && !result.Empty() {
			// The engine is not transactional; tell the caller what landed
			// before the failure.
			fmt.Fprintln(stderr, "Applied before failure:")
			fmt.Fprintln(stderr, result.Summary())
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, "Success. Updated the following files:")
	if summary := renderSummary(stdout, result); summary != "" {
		fmt.Fprintln(stdout, summary)
	}
	if cfg.Mode == config.ModeWarn {
		fmt.Fprintln(stdout, banner(cfg.WarnMessage, defaultWarnMessage))
	}
	return 0
}

type configCommand struct {
	show          bool
	mode          *config.Mode
	refuseChanged bool
	refuseValue   *string
	warnChanged   bool
	warnValue     *string
	positional    []string
}

func runConfigCommand(cmd configCommand, stdout, stderr io.Writer) int {
	if len(cmd.positional) > 0 {
		fmt.Fprintln(stderr, "Error: configuration flags cannot be combined with a PATCH argument.")
		return 2
	}
	path, err := config.Path()
	if err != nil {
		fmt.Fprintln(stderr, "Error: could not determine config path (HOME/XDG_CONFIG_HOME not set).")
		return 1
	}

	cfg := config.Load(path)
	changed := cmd.mode != nil || cmd.refuseChanged || cmd.warnChanged
	if cmd.mode != nil {
		cfg.Mode = *cmd.mode
	}
	if cmd.refuseChanged {
		cfg.RefuseMessage = cmd.refuseValue
	}
	if cmd.warnChanged {
		cfg.WarnMessage = cmd.warnValue
	}
	if changed {
		if err := config.Save(path, cfg); err != nil {
			fmt.Fprintf(stderr, "Error: failed to write config: %v\n", err)
			return 1
		}
	}

	if cmd.show {
		fmt.Fprintf(stdout, "Config file: %s\n", path)
		fmt.Fprintf(stdout, "mode: %s\n", cfg.Mode)
		fmt.Fprintf(stdout, "refuse_message: %s\n", customOrDefault(cfg.RefuseMessage))
		fmt.Fprintf(stdout, "warn_message: %s\n", customOrDefault(cfg.WarnMessage))
	} else {
		fmt.Fprintf(stdout, "Updated config: %s\n", path)
	}
	return 0
}

func customOrDefault(message *string) string {
	if message != nil {
		return "custom"
	}
	return "default"
}

func banner(custom *string, fallback string) string {
	if custom != nil {
		return *custom
	}
	return fallback
}

// renderSummary colorizes the engine's A/M/D lines for terminals. The
// renderer keys its color profile off the destination writer, so piped
// output stays plain text.
func renderSummary(out io.Writer, result *patch.ApplyResult) string {
	summary := result.Summary()
	if summary == "" {
		return ""
	}
	renderer := lipgloss.NewRenderer(out)
	styles := map[byte]lipgloss.Style{
		'A': renderer.NewStyle().Foreground(lipgloss.Color("2")),
		'M': renderer.NewStyle().Foreground(lipgloss.Color("3")),
		'D': renderer.NewStyle().Foreground(lipgloss.Color("1")),
	}
	lines := strings.Split(summary, "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		if style, ok := styles[line[0]]; ok {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
