package patch

// Hunk is one contiguous edit region within an Update operation, anchored by
// the unchanged context lines around the change.
//
// Before holds the original file's window in patch order: leading context,
// removed lines, and any trailing context. After holds the same window as it
// should read once the hunk is applied. Sentinel stripping preserves interior
// whitespace verbatim; leading or trailing spaces on a content line are part
// of the line, not decoration.
type Hunk struct {
	// Header is the human-readable locator hint following "@@", if any.
	// It is parsed but not semantically required.
	Header string

	Before []string
	After  []string

	// EndOfFile marks a hunk whose window must end at the file's last line.
	EndOfFile bool

	// Raw preserves the hunk's lines exactly as written, for diagnostics.
	Raw []string
}
