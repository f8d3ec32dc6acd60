package patch

import "strings"

// Fuzz levels reported by the context locator, ordered from strictest to
// loosest. Stages are tried in sequence and the first match wins, so callers
// can tell not just that a hunk anchored but how much drift was tolerated.
const (
	// FuzzExact matches the window byte-for-byte.
	FuzzExact = 1
	// FuzzTrimEnd ignores trailing whitespace on every compared line.
	FuzzTrimEnd = 2
	// FuzzWhitespace collapses all whitespace before comparing. Last resort:
	// it can match superficially different indentation.
	FuzzWhitespace = 3
)

// Anchor is a resolved hunk position: the line offset where the hunk's
// original window begins and the fuzz level that located it.
type Anchor struct {
	Offset int
	Fuzz   int
}

type fuzzStage struct {
	fuzz int
	eq   func(a, b string) bool
}

var fuzzStages = []fuzzStage{
	{FuzzExact, func(a, b string) bool { return a == b }},
	{FuzzTrimEnd, func(a, b string) bool { return trimEnd(a) == trimEnd(b) }},
	{FuzzWhitespace, func(a, b string) bool { return collapse(a) == collapse(b) }},
}

// locate finds the lowest offset at or after start where pattern occurs
// contiguously in lines, trying each fuzz stage in turn. When eof is set the
// window must end exactly at the file's last line. The boolean reports
// whether any stage matched; ties within a stage resolve to the lowest
// offset.
func locate(lines, pattern []string, start int, eof bool) (Anchor, bool) {
	if len(pattern) == 0 {
		return Anchor{Offset: start, Fuzz: FuzzExact}, true
	}
	if start < 0 {
		start = 0
	}
	last := len(lines) - len(pattern)
	if last < start {
		return Anchor{}, false
	}
	for _, stage := range fuzzStages {
		from, to := start, last
		if eof {
			from, to = last, last
		}
		for i := from; i <= to; i++ {
			if windowEqual(lines, pattern, i, stage.eq) {
				return Anchor{Offset: i, Fuzz: stage.fuzz}, true
			}
		}
	}
	return Anchor{}, false
}

func windowEqual(lines, pattern []string, offset int, eq func(a, b string) bool) bool {
	for j, want := range pattern {
		if !eq(lines[offset+j], want) {
			return false
		}
	}
	return true
}

func trimEnd(s string) string {
	return strings.TrimRight(s, " \t")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// nearby returns a short excerpt around the best partial match of pattern in
// lines, used to enrich ContextNotFoundError diagnostics. The best partial
// match is the offset with the longest run of loosely-matching leading lines.
func nearby(lines, pattern []string, start int) []string {
	if start < 0 {
		start = 0
	}
	best, bestRun := start, 0
	for i := start; i < len(lines); i++ {
		run := 0
		for j := 0; j < len(pattern) && i+j < len(lines); j++ {
			if collapse(lines[i+j]) != collapse(pattern[j]) {
				break
			}
			run++
		}
		if run > bestRun {
			best, bestRun = i, run
		}
	}
	lo := best - 2
	if lo < 0 {
		lo = 0
	}
	hi := best + len(pattern) + 2
	if hi > len(lines) {
		hi = len(lines)
	}
	if lo >= hi {
		return nil
	}
	return append([]string(nil), lines[lo:hi]...)
}
