package diffview

import (
	"path/filepath"
	"regexp"
	"strings"
)

// HeaderTable maps a lowercase filename extension (including the leading
// dot) to the regex that recognizes function/class header lines for that
// language. Tables are plain configuration data passed into the assembler;
// they are treated as immutable once handed over and are never consulted as
// process-wide mutable state.
type HeaderTable map[string]*regexp.Regexp

// Header is one recognized function/class signature line on one side.
type Header struct {
	Line int // 1-based line number on that side
	Text string
}

// HeaderPair is the last-known header on each side at some point in the
// file, carried across chunk boundaries so collapsed regions can say which
// function the hidden lines belong to.
type HeaderPair struct {
	Left  Header
	Right Header
}

var defaultHeaderRegexes = func() HeaderTable {
	shared := map[string][]string{
		`^\s*(?:def|class)\s+\w+`:                      {".py", ".pyi"},
		`^\s*(?:def|class|module)\s+\w+`:               {".rb", ".rake"},
		`^(?:func|type)\s+\w+|^func\s+\(`:              {".go"},
		`^\s*(?:function\s+\w+|class\s+\w+|[\w$]+\s*[:=]\s*(?:async\s+)?function\b)`: {".js", ".jsx", ".ts", ".tsx"},
		`^[A-Za-z_][\w:<>~&* ]*\([^;]*$|^[A-Za-z_][\w:<>~&* ]*\([^;]*\)\s*\{?\s*$`:   {".c", ".h", ".cc", ".cpp", ".cxx", ".hpp", ".m"},
		`^\s*(?:(?:public|private|protected|static|final|abstract|synchronized)\s+)+[\w<>\[\]]+\s+\w+\s*\(`: {".java", ".cs", ".scala"},
		`^\s*(?:(?:public|private|protected|static|final|abstract)\s+)*(?:function|class)\s+\w+`:           {".php"},
		`^\s*sub\s+\w+`: {".pl", ".pm"},
	}
	t := make(HeaderTable)
	for pattern, exts := range shared {
		re := regexp.MustCompile(pattern)
		for _, ext := range exts {
			t[ext] = re
		}
	}
	return t
}()

// DefaultHeaderTable returns a copy of the built-in per-language header
// table. Callers may extend the copy before passing it to WithHeaderTable.
func DefaultHeaderTable() HeaderTable {
	t := make(HeaderTable, len(defaultHeaderRegexes))
	for ext, re := range defaultHeaderRegexes {
		t[ext] = re
	}
	return t
}

// headerScanner matches header lines for one file's language.
type headerScanner struct {
	re *regexp.Regexp
}

func newHeaderScanner(t HeaderTable, path string) headerScanner {
	if path == "" {
		return headerScanner{}
	}
	return headerScanner{re: t[strings.ToLower(filepath.Ext(path))]}
}

func (h headerScanner) match(line string) (string, bool) {
	if h.re == nil {
		return "", false
	}
	m := h.re.FindString(line)
	if m == "" {
		return "", false
	}
	return strings.TrimSpace(m), true
}
