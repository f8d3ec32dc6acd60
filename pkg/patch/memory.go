package patch

import "context"

// ApplyToMemory applies a script to an in-memory document set keyed by
// relative path. The provided map is copied before mutation and the updated
// snapshot is returned. On failure the snapshot reflects the operations that
// completed before the error, mirroring the filesystem contract.
func ApplyToMemory(ctx context.Context, script *Script, files map[string]string) (map[string]string, *ApplyResult, error) {
	snapshot := make(map[string]string, len(files))
	for k, v := range files {
		snapshot[k] = v
	}
	ws := &memoryWorkspace{files: snapshot}
	result, err := applyScript(ctx, script, ws)
	return ws.files, result, err
}

// ApplyMemoryText parses raw patch text and applies it to an in-memory
// document set.
func ApplyMemoryText(ctx context.Context, patchText string, files map[string]string) (map[string]string, *ApplyResult, error) {
	script, err := Parse(patchText)
	if err != nil {
		return files, &ApplyResult{}, err
	}
	return ApplyToMemory(ctx, script, files)
}

type memoryWorkspace struct {
	files map[string]string
}

func (ws *memoryWorkspace) Exists(path string) (bool, error) {
	_, ok := ws.files[path]
	return ok, nil
}

func (ws *memoryWorkspace) Read(path string) (string, error) {
	content, ok := ws.files[path]
	if !ok {
		return "", &PathNotFoundError{Path: path}
	}
	return content, nil
}

func (ws *memoryWorkspace) Write(path, content string) error {
	ws.files[path] = content
	return nil
}

func (ws *memoryWorkspace) Remove(path string) error {
	delete(ws.files, path)
	return nil
}

func (ws *memoryWorkspace) Rename(oldPath, newPath string) error {
	ws.files[newPath] = ws.files[oldPath]
	delete(ws.files, oldPath)
	return nil
}
