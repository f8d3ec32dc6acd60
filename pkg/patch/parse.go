package patch

import "strings"

// Patch grammar literals.
const (
	beginMarker      = "*** Begin Patch"
	endMarker        = "*** End Patch"
	addFileMarker    = "*** Add File: "
	updateFileMarker = "*** Update File: "
	deleteFileMarker = "*** Delete File: "
	moveToMarker     = "*** Move to: "
	endOfFileMarker  = "*** End of File"
)

// OperationType identifies the kind of change described by a patch operation.
type OperationType string

const (
	// OperationAdd represents an "*** Add File" directive.
	OperationAdd OperationType = "add"
	// OperationUpdate represents an "*** Update File" directive.
	OperationUpdate OperationType = "update"
	// OperationDelete represents an "*** Delete File" directive.
	OperationDelete OperationType = "delete"
)

// Operation describes one file-level instruction of a patch script.
type Operation struct {
	Type OperationType
	Path string

	// MovePath is the optional rename destination of an Update operation.
	MovePath string

	// Content is the literal body written by an Add operation, exactly as it
	// should land on disk.
	Content string

	// Hunks are the ordered edit regions of an Update operation.
	Hunks []Hunk
}

// Script is a parsed patch script. Operations appear in the order they are
// applied: left-to-right, top-to-bottom of the patch text. A Script is
// immutable once parsed.
type Script struct {
	Operations []Operation
}

// Parse converts raw patch text into a Script. It fails with *FormatError
// identifying the offending line and performs no filesystem access.
func Parse(input string) (*Script, error) {
	lines := splitLines(input)

	begin := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if line != beginMarker {
			return nil, &FormatError{Line: i + 1, Reason: "patch must start with " + beginMarker}
		}
		begin = i
		break
	}
	if begin == -1 {
		return nil, &FormatError{Line: 1, Reason: "empty patch"}
	}

	// The last non-blank line must be the terminator; anything after it is a
	// format violation, caught here by scanning from the bottom.
	end := -1
	for i := len(lines) - 1; i > begin; i-- {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		if lines[i] != endMarker {
			return nil, &FormatError{Line: i + 1, Reason: "patch must end with " + endMarker}
		}
		end = i
		break
	}
	if end == -1 {
		return nil, &FormatError{Line: len(lines), Reason: "missing " + endMarker + " terminator"}
	}

	var (
		script   Script
		op       *Operation
		opLine   int
		addLines []string
		hunk     *Hunk
		hunkLine int
	)

	flushHunk := func() error {
		if hunk == nil {
			return nil
		}
		if len(hunk.Before) == 0 && len(hunk.After) == 0 {
			return &FormatError{Line: hunkLine, Reason: "hunk has no content"}
		}
		op.Hunks = append(op.Hunks, *hunk)
		hunk = nil
		return nil
	}

	flushOp := func() error {
		if op == nil {
			return nil
		}
		if err := flushHunk(); err != nil {
			return err
		}
		if op.Type == OperationAdd {
			if len(addLines) > 0 {
				op.Content = strings.Join(addLines, "\n") + "\n"
			}
			addLines = nil
		}
		if op.Type == OperationUpdate && len(op.Hunks) == 0 && op.MovePath == "" {
			return &FormatError{Line: opLine, Reason: "update for " + op.Path + " has no hunks"}
		}
		script.Operations = append(script.Operations, *op)
		op = nil
		return nil
	}

	startOp := func(t OperationType, marker, line string, number int) error {
		if err := flushOp(); err != nil {
			return err
		}
		path := strings.TrimSpace(strings.TrimPrefix(line, marker))
		if path == "" {
			return &FormatError{Line: number, Reason: "empty path in " + strings.TrimSuffix(marker, ": ") + " directive"}
		}
		op = &Operation{Type: t, Path: path}
		opLine = number
		return nil
	}

	for i := begin + 1; i < end; i++ {
		line := lines[i]
		number := i + 1

		if strings.HasPrefix(line, "***") {
			switch {
			case strings.HasPrefix(line, addFileMarker):
				if err := startOp(OperationAdd, addFileMarker, line, number); err != nil {
					return nil, err
				}
			case strings.HasPrefix(line, updateFileMarker):
				if err := startOp(OperationUpdate, updateFileMarker, line, number); err != nil {
					return nil, err
				}
			case strings.HasPrefix(line, deleteFileMarker):
				if err := startOp(OperationDelete, deleteFileMarker, line, number); err != nil {
					return nil, err
				}
				if err := flushOp(); err != nil {
					return nil, err
				}
			case strings.HasPrefix(line, moveToMarker):
				if op == nil || op.Type != OperationUpdate {
					return nil, &FormatError{Line: number, Reason: "move directive outside an update operation"}
				}
				dest := strings.TrimSpace(strings.TrimPrefix(line, moveToMarker))
				if dest == "" {
					return nil, &FormatError{Line: number, Reason: "empty path in move directive"}
				}
				op.MovePath = dest
			case strings.TrimSpace(line) == endOfFileMarker:
				if op == nil || op.Type != OperationUpdate || hunk == nil {
					return nil, &FormatError{Line: number, Reason: "end-of-file marker outside a hunk"}
				}
				hunk.EndOfFile = true
				hunk.Raw = append(hunk.Raw, line)
			default:
				return nil, &FormatError{Line: number, Reason: "unknown directive: " + line}
			}
			continue
		}

		if op == nil {
			if strings.TrimSpace(line) == "" {
				continue
			}
			return nil, &FormatError{Line: number, Reason: "content before a file directive"}
		}

		if op.Type == OperationAdd {
			if !strings.HasPrefix(line, "+") {
				return nil, &FormatError{Line: number, Reason: "add content line must start with '+'"}
			}
			addLines = append(addLines, line[1:])
			continue
		}

		// Update body.
		if strings.HasPrefix(line, "@@") {
			if err := flushHunk(); err != nil {
				return nil, err
			}
			hunk = &Hunk{
				Header: strings.TrimSpace(strings.TrimPrefix(line, "@@")),
				Raw:    []string{line},
			}
			hunkLine = number
			continue
		}
		if hunk == nil {
			if strings.TrimSpace(line) == "" {
				continue
			}
			hunk = &Hunk{}
			hunkLine = number
		}
		switch {
		case strings.HasPrefix(line, "+"):
			hunk.After = append(hunk.After, line[1:])
		case strings.HasPrefix(line, "-"):
			hunk.Before = append(hunk.Before, line[1:])
		case strings.HasPrefix(line, " "):
			value := line[1:]
			hunk.Before = append(hunk.Before, value)
			hunk.After = append(hunk.After, value)
		case line == "":
			// Editors routinely strip the ' ' sentinel from blank context
			// lines; accept the bare line as empty context.
			hunk.Before = append(hunk.Before, "")
			hunk.After = append(hunk.After, "")
		default:
			return nil, &FormatError{Line: number, Reason: "hunk line must start with ' ', '-' or '+': " + line}
		}
		hunk.Raw = append(hunk.Raw, line)
	}

	if err := flushOp(); err != nil {
		return nil, err
	}

	return &script, nil
}

func splitLines(input string) []string {
	normalized := strings.ReplaceAll(input, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return strings.Split(normalized, "\n")
}
