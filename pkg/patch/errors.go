package patch

import (
	"fmt"
	"strings"
)

// FormatError reports malformed patch text. It is produced entirely during
// parsing, before any filesystem access.
type FormatError struct {
	Line   int // 1-based line number of the offending line
	Reason string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid patch at line %d: %s", e.Line, e.Reason)
}

// PathExistsError reports an Add operation whose target already exists.
type PathExistsError struct {
	Path string
}

func (e *PathExistsError) Error() string {
	return fmt.Sprintf("%s already exists", e.Path)
}

// PathNotFoundError reports an Update or Delete operation on a missing file.
type PathNotFoundError struct {
	Path string
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("%s does not exist", e.Path)
}

// DestinationExistsError reports a rename whose destination is already taken
// by a different file.
type DestinationExistsError struct {
	Path string
}

func (e *DestinationExistsError) Error() string {
	return fmt.Sprintf("move destination %s already exists", e.Path)
}

// PathEscapeError reports a script path that resolves outside the patch
// root. It is raised before any mutation is attempted for the operation.
type PathEscapeError struct {
	Path string
}

func (e *PathEscapeError) Error() string {
	return fmt.Sprintf("%s escapes the patch root", e.Path)
}

// ContextNotFoundError reports a hunk whose context could not be anchored in
// the current file content at any fuzz level. NearbyLines holds a short
// excerpt around the best partial match for diagnostics.
type ContextNotFoundError struct {
	Path        string
	HunkIndex   int // zero-based index within the Update operation
	NearbyLines []string
}

func (e *ContextNotFoundError) Error() string {
	msg := fmt.Sprintf("hunk %d not found in %s", e.HunkIndex+1, e.Path)
	if len(e.NearbyLines) > 0 {
		msg += "; closest content:\n" + strings.Join(e.NearbyLines, "\n")
	}
	return msg
}
