package patch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// workspace abstracts the tree a script mutates so the applier can target
// the OS filesystem or an in-memory document set with the same logic. Paths
// handed to a workspace are already normalized and root-relative.
type workspace interface {
	Exists(path string) (bool, error)
	Read(path string) (string, error)
	Write(path, content string) error
	Remove(path string) error
	Rename(oldPath, newPath string) error
}

// applyScript executes operations one at a time, in script order, fully
// completing the I/O for one operation before starting the next. There is no
// staging across the script: when an operation fails, everything applied
// before it stays in place and is reported in the returned result.
func applyScript(ctx context.Context, script *Script, ws workspace) (*ApplyResult, error) {
	result := &ApplyResult{}
	if script == nil {
		return result, nil
	}
	for _, op := range script.Operations {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		var err error
		switch op.Type {
		case OperationAdd:
			err = applyAdd(op, ws, result)
		case OperationDelete:
			err = applyDelete(op, ws, result)
		case OperationUpdate:
			err = applyUpdate(op, ws, result)
		default:
			err = fmt.Errorf("unsupported patch operation for %s: %s", op.Path, op.Type)
		}
		if err != nil {
			return result, err
		}
	}
	return result, nil
}

func applyAdd(op Operation, ws workspace, result *ApplyResult) error {
	path, err := normalizePath(op.Path)
	if err != nil {
		return err
	}
	exists, err := ws.Exists(path)
	if err != nil {
		return err
	}
	if exists {
		return &PathExistsError{Path: path}
	}
	if err := ws.Write(path, op.Content); err != nil {
		return err
	}
	result.recordAdd(path)
	return nil
}

func applyDelete(op Operation, ws workspace, result *ApplyResult) error {
	path, err := normalizePath(op.Path)
	if err != nil {
		return err
	}
	exists, err := ws.Exists(path)
	if err != nil {
		return err
	}
	if !exists {
		return &PathNotFoundError{Path: path}
	}
	if err := ws.Remove(path); err != nil {
		return err
	}
	result.recordDelete(path)
	return nil
}

func applyUpdate(op Operation, ws workspace, result *ApplyResult) error {
	path, err := normalizePath(op.Path)
	if err != nil {
		return err
	}
	// Validate the rename destination up front so an escaping move path
	// fails before the content rewrite touches the tree.
	movePath := ""
	if op.MovePath != "" {
		movePath, err = normalizePath(op.MovePath)
		if err != nil {
			return err
		}
	}
	exists, err := ws.Exists(path)
	if err != nil {
		return err
	}
	if !exists {
		return &PathNotFoundError{Path: path}
	}
	content, err := ws.Read(path)
	if err != nil {
		return err
	}
	rebuilt, err := rebuild(path, op.Hunks, content)
	if err != nil {
		return err
	}
	if err := ws.Write(path, rebuilt); err != nil {
		return err
	}
	if movePath != "" && movePath != path {
		destExists, err := ws.Exists(movePath)
		if err != nil {
			return err
		}
		if destExists {
			return &DestinationExistsError{Path: movePath}
		}
		if err := ws.Rename(path, movePath); err != nil {
			return err
		}
		result.recordModify(path)
		result.recordMove(path, movePath)
		return nil
	}
	result.recordModify(path)
	return nil
}

// rebuild resolves every hunk against the current content and produces the
// new file body. Hunks resolve in order and must not overlap: each search
// starts after the previous hunk's resolved window.
func rebuild(path string, hunks []Hunk, content string) (string, error) {
	lines, trailingNewline := splitContent(content)
	cursor := 0
	for index, hunk := range hunks {
		if len(hunk.Before) == 0 {
			// Pure insertion: anchored at the start of the file for the
			// first hunk, immediately after the previous window otherwise.
			lines = splice(lines, cursor, 0, hunk.After)
			cursor += len(hunk.After)
			continue
		}
		anchor, ok := locate(lines, hunk.Before, cursor, hunk.EndOfFile)
		if !ok {
			return "", &ContextNotFoundError{
				Path:        path,
				HunkIndex:   index,
				NearbyLines: nearby(lines, hunk.Before, cursor),
			}
		}
		lines = splice(lines, anchor.Offset, len(hunk.Before), hunk.After)
		cursor = anchor.Offset + len(hunk.After)
	}
	body := strings.Join(lines, "\n")
	if trailingNewline && body != "" {
		body += "\n"
	}
	return body, nil
}

// splitContent turns file content into the line sequence the locator works
// on. The trailing newline is tracked separately so it can be restored
// verbatim when the file is rebuilt.
func splitContent(content string) ([]string, bool) {
	if content == "" {
		return nil, true
	}
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	trailing := strings.HasSuffix(normalized, "\n")
	if trailing {
		normalized = strings.TrimSuffix(normalized, "\n")
	}
	return strings.Split(normalized, "\n"), trailing
}

func splice(target []string, index, deleteCount int, replacement []string) []string {
	if deleteCount == 0 && len(replacement) == 0 {
		return target
	}
	result := make([]string, 0, len(target)-deleteCount+len(replacement))
	result = append(result, target[:index]...)
	result = append(result, replacement...)
	result = append(result, target[index+deleteCount:]...)
	return result
}

// normalizePath cleans a script path and rejects anything that resolves
// outside the patch root, including absolute paths.
func normalizePath(p string) (string, error) {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" || filepath.IsAbs(trimmed) {
		return "", &PathEscapeError{Path: p}
	}
	cleaned := filepath.Clean(trimmed)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", &PathEscapeError{Path: p}
	}
	return cleaned, nil
}
