package patch

import "strings"

// Move records a rename performed by an Update operation.
type Move struct {
	From string
	To   string
}

// ApplyResult summarizes every change a script made. Application is not
// transactional: on a failed run the result describes the operations that
// completed before the failure, and callers must treat the tree as being in
// exactly that partial state.
type ApplyResult struct {
	Added    []string
	Modified []string
	Deleted  []string
	Moved    []Move
}

// Empty reports whether the result records no changes at all.
func (r *ApplyResult) Empty() bool {
	return len(r.Added) == 0 && len(r.Modified) == 0 && len(r.Deleted) == 0 && len(r.Moved) == 0
}

// Summary renders one "A/M/D <path>" line per change, grouped by kind.
// Within a group paths appear in script order; moved files render their
// destination path.
func (r *ApplyResult) Summary() string {
	moved := make(map[string]string, len(r.Moved))
	for _, m := range r.Moved {
		moved[m.From] = m.To
	}
	lines := make([]string, 0, len(r.Added)+len(r.Modified)+len(r.Deleted))
	for _, p := range r.Added {
		lines = append(lines, "A "+p)
	}
	for _, p := range r.Modified {
		if to, ok := moved[p]; ok {
			p = to
		}
		lines = append(lines, "M "+p)
	}
	for _, p := range r.Deleted {
		lines = append(lines, "D "+p)
	}
	return strings.Join(lines, "\n")
}

func (r *ApplyResult) recordAdd(path string)    { r.Added = append(r.Added, path) }
func (r *ApplyResult) recordModify(path string) { r.Modified = append(r.Modified, path) }
func (r *ApplyResult) recordDelete(path string) { r.Deleted = append(r.Deleted, path) }
func (r *ApplyResult) recordMove(from, to string) {
	r.Moved = append(r.Moved, Move{From: from, To: to})
}
