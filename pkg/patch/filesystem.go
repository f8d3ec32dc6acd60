package patch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Apply executes a parsed script against the tree rooted at root, operation
// by operation in script order. Filesystem writes happen incrementally; when
// an operation fails, everything before it stays in place and the returned
// ApplyResult describes exactly that partial state alongside the error.
func Apply(ctx context.Context, script *Script, root string) (*ApplyResult, error) {
	ws, err := newFilesystemWorkspace(root)
	if err != nil {
		return &ApplyResult{}, err
	}
	return applyScript(ctx, script, ws)
}

// ApplyText parses raw patch text and applies it to the tree rooted at root.
// A parse failure leaves the filesystem untouched.
func ApplyText(ctx context.Context, patchText, root string) (*ApplyResult, error) {
	script, err := Parse(patchText)
	if err != nil {
		return &ApplyResult{}, err
	}
	return Apply(ctx, script, root)
}

type filesystemWorkspace struct {
	root string
}

func newFilesystemWorkspace(root string) (*filesystemWorkspace, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}
	return &filesystemWorkspace{root: abs}, nil
}

func (ws *filesystemWorkspace) resolve(path string) string {
	return filepath.Join(ws.root, path)
}

func (ws *filesystemWorkspace) Exists(path string) (bool, error) {
	info, err := os.Stat(ws.resolve(path))
	switch {
	case err == nil:
		if info.IsDir() {
			return false, fmt.Errorf("%s: is a directory", path)
		}
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("%s: %w", path, err)
	}
}

func (ws *filesystemWorkspace) Read(path string) (string, error) {
	content, err := os.ReadFile(ws.resolve(path))
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return string(content), nil
}

func (ws *filesystemWorkspace) Write(path, content string) error {
	abs := ws.resolve(path)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (ws *filesystemWorkspace) Remove(path string) error {
	if err := os.Remove(ws.resolve(path)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (ws *filesystemWorkspace) Rename(oldPath, newPath string) error {
	to := ws.resolve(newPath)
	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return fmt.Errorf("%s: %w", newPath, err)
	}
	if err := os.Rename(ws.resolve(oldPath), to); err != nil {
		return fmt.Errorf("%s: %w", newPath, err)
	}
	return nil
}
