package diffview

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// sequencePair holds both sides of one comparison: the original line text,
// the comparison keys (with ignore-space applied), and the interned integer
// codes the differ operates on. Codes are scoped to a single comparison and
// never persisted; identical keys always intern to identical codes within
// one pair.
type sequencePair struct {
	aLines, bLines []string
	aKeys, bKeys   []string
	aCodes, bCodes []int
	ignoreSpace    bool
}

// newSequencePair interns both sides through a shared code table so that
// equal lines on either side compare by integer equality.
func newSequencePair(aLines, bLines []string, ignoreSpace bool) *sequencePair {
	in := interner{table: make(map[string]int, len(aLines)+len(bLines))}
	p := &sequencePair{
		aLines:      aLines,
		bLines:      bLines,
		aKeys:       make([]string, len(aLines)),
		bKeys:       make([]string, len(bLines)),
		ignoreSpace: ignoreSpace,
	}
	for i, line := range aLines {
		p.aKeys[i] = comparisonKey(line, ignoreSpace)
	}
	for i, line := range bLines {
		p.bKeys[i] = comparisonKey(line, ignoreSpace)
	}
	p.aCodes = in.codeAll(p.aKeys)
	p.bCodes = in.codeAll(p.bKeys)
	return p
}

// comparisonKey derives the text a line is matched by. In ignore-space mode
// insignificant leading whitespace is stripped, so indentation-only changes
// still align line-for-line; trailing whitespace stays significant and keeps
// such lines inside replace opcodes for the whitespace pass to annotate.
func comparisonKey(line string, ignoreSpace bool) string {
	if !ignoreSpace {
		return line
	}
	return strings.TrimLeft(line, " \t")
}

// interner assigns small integer codes to unique keys.
type interner struct {
	table map[string]int
}

func (in *interner) code(key string) int {
	if c, ok := in.table[key]; ok {
		return c
	}
	c := len(in.table)
	in.table[key] = c
	return c
}

func (in *interner) codeAll(keys []string) []int {
	codes := make([]int, len(keys))
	for i, k := range keys {
		codes[i] = in.code(k)
	}
	return codes
}

// splitLines decodes raw file content into lines without terminators.
// Content must be valid UTF-8; with lossy enabled, invalid sequences are
// replaced by U+FFFD instead of failing. A trailing newline does not
// produce an empty final line.
func splitLines(data []byte, lossy bool) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if !utf8.Valid(data) {
		if !lossy {
			return nil, ErrEncoding
		}
		data = bytes.ToValidUTF8(data, []byte("�"))
	}
	raw := strings.Split(string(data), "\n")
	if raw[len(raw)-1] == "" {
		raw = raw[:len(raw)-1]
	}
	for i, line := range raw {
		raw[i] = strings.TrimSuffix(line, "\r")
	}
	return raw, nil
}

func checkByteLimits(a, b []byte, s *settings) error {
	if s.maxDiffBytes > 0 {
		if n := len(a) + len(b); n > s.maxDiffBytes {
			return fmt.Errorf("%w: %d bytes exceeds limit %d", ErrInputTooLarge, n, s.maxDiffBytes)
		}
	}
	return nil
}

func checkLineLimits(a, b []string, s *settings) error {
	if s.maxDiffLines > 0 {
		if n := len(a) + len(b); n > s.maxDiffLines {
			return fmt.Errorf("%w: %d lines exceeds limit %d", ErrInputTooLarge, n, s.maxDiffLines)
		}
	}
	return nil
}

// matchesAnyPattern reports whether the path or its base name matches any of
// the filepath.Match patterns. Malformed patterns never match.
func matchesAnyPattern(patterns []string, path string) bool {
	if path == "" {
		return false
	}
	base := filepath.Base(path)
	for _, pat := range patterns {
		if ok, err := filepath.Match(pat, path); err == nil && ok {
			return true
		}
		if ok, err := filepath.Match(pat, base); err == nil && ok {
			return true
		}
	}
	return false
}

// stripAllSpace removes every whitespace character, for whole-line
// whitespace-only comparisons.
func stripAllSpace(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\v', '\f':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
