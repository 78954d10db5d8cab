package desktop

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"samplerank/internal/deps"
	"samplerank/internal/pathguard"
)

// ErrNoClipboard is returned when no clipboard helper is installed.
var ErrNoClipboard = errors.New("no clipboard helper found (install wl-copy or xclip)")

// Runner starts name with args, feeding stdin when non-empty. Detached
// controls whether Run waits for the program to exit.
type Runner func(ctx context.Context, name string, args []string, stdin string, detached bool) error

// Launcher performs desktop actions for guarded paths.
type Launcher struct {
	guard *pathguard.AllowedPaths
	run   Runner
	goos  string
}

// New returns a Launcher that executes real programs.
func New(guard *pathguard.AllowedPaths) *Launcher {
	return &Launcher{guard: guard, run: execRunner, goos: runtime.GOOS}
}

// WithRunner swaps the process runner, for tests.
func (l *Launcher) WithRunner(run Runner) *Launcher {
	l.run = run
	return l
}

// Open plays path with the desktop's default application.
func (l *Launcher) Open(ctx context.Context, path string) error {
	if err := l.guard.Check(path); err != nil {
		return err
	}
	return l.run(ctx, deps.OpenerCommand(), []string{path}, "", true)
}

// Reveal shows path in the file manager. On Linux the containing folder is
// opened since xdg-open cannot select a file.
func (l *Launcher) Reveal(ctx context.Context, path string) error {
	if err := l.guard.Check(path); err != nil {
		return err
	}
	if l.goos == "darwin" {
		return l.run(ctx, "open", []string{"-R", path}, "", true)
	}
	return l.run(ctx, deps.OpenerCommand(), []string{filepath.Dir(path)}, "", true)
}

// CopyToClipboard puts path on the clipboard as a text/uri-list entry so file
// managers and DAWs can paste the file itself.
func (l *Launcher) CopyToClipboard(ctx context.Context, path string) error {
	if err := l.guard.Check(path); err != nil {
		return err
	}
	uri, err := l.guard.FileURL(path)
	if err != nil {
		return err
	}
	tool := deps.FirstAvailable(deps.ClipboardCommands()...)
	switch tool {
	case "wl-copy":
		return l.run(ctx, tool, []string{"--type", "text/uri-list"}, uri, false)
	case "xclip":
		return l.run(ctx, tool, []string{"-selection", "clipboard", "-t", "text/uri-list"}, uri, false)
	case "pbcopy":
		return l.run(ctx, tool, nil, uri, false)
	default:
		return ErrNoClipboard
	}
}

func execRunner(ctx context.Context, name string, args []string, stdin string, detached bool) error {
	if detached {
		// Detached programs outlive the command, so they do not get ctx.
		cmd := exec.Command(name, args...)
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("start %s: %w", name, err)
		}
		go func() { _ = cmd.Wait() }()
		return nil
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s failed: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}
