// Side-by-side HTML diff viewer for two files.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dacharyc/diffview"
	"github.com/dacharyc/diffview/highlight"
)

var (
	contextLines = flag.Int("context", 5, "context lines around each change")
	collapse     = flag.Bool("collapse", true, "collapse long unchanged regions")
	highlighting = flag.Bool("highlight", true, "syntax-highlight file contents")
	ignoreSpace  = flag.Bool("ignore-space", true, "ignore leading whitespace when comparing lines")
)

func main() {
	flag.Parse()
	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "usage: sidebyside [flags] OLDFILE NEWFILE\n")
		flag.PrintDefaults()
		os.Exit(2)
	}

	oldPath, newPath := flag.Arg(0), flag.Arg(1)
	a, err := os.ReadFile(oldPath)
	if err != nil {
		fatal(err)
	}
	b, err := os.ReadFile(newPath)
	if err != nil {
		fatal(err)
	}

	file := diffview.DiffFile{
		Path: newPath,
		ID:   oldPath + ":" + newPath,
		A:    a,
		B:    b,
	}
	if *highlighting {
		// Highlighting failures are not fatal; the renderer escapes plain
		// lines when markup is absent.
		if markup, err := highlight.Lines(oldPath, string(a)); err == nil {
			file.AMarkup = markup
		}
		if markup, err := highlight.Lines(newPath, string(b)); err == nil {
			file.BMarkup = markup
		}
	}

	r := diffview.NewRenderer(nil,
		diffview.WithContextLines(*contextLines),
		diffview.WithCollapsing(*collapse),
		diffview.WithIgnoreSpace(*ignoreSpace),
	)
	chunks, err := r.Chunks(file)
	if err != nil {
		fatal(err)
	}

	writeHTML(os.Stdout, oldPath, newPath, chunks)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "sidebyside: %v\n", err)
	os.Exit(1)
}

func writeHTML(w *os.File, oldPath, newPath string, chunks []diffview.Chunk) {
	printf := func(format string, args ...any) { fmt.Fprintf(w, format, args...) }

	printf("<!doctype html>\n<html>\n<head>\n<meta charset='utf-8'>\n")
	printf("<title>%s vs %s</title>\n", htmlEscape(oldPath), htmlEscape(newPath))
	printf("<style>\n%s</style>\n</head>\n<body>\n", stylesheet)
	printf("<table class='diff'>\n")
	printf("<tr><th class='lnum'></th><th>%s</th><th class='lnum'></th><th>%s</th></tr>\n",
		htmlEscape(oldPath), htmlEscape(newPath))

	for _, chunk := range chunks {
		if chunk.Collapsable {
			printf("<tr class='collapsed'><td colspan=4>%d unchanged lines hidden", chunk.NumLines)
			if hdrs := chunk.Meta.Headers; hdrs != nil && hdrs.Right.Text != "" {
				printf(" (%s)", htmlEscape(hdrs.Right.Text))
			}
			printf("</td></tr>\n")
			continue
		}
		for _, row := range chunk.Lines {
			printf("<tr class='%s'>\n", rowClass(chunk.Change, row))
			printf("  <td class='lnum'>%s</td><td>%s</td>\n", lineNum(row.ANum), cellMarkup(row.AMarkup, row.ARegions))
			printf("  <td class='lnum'>%s</td><td>%s</td>\n", lineNum(row.BNum), cellMarkup(row.BMarkup, row.BRegions))
			printf("</tr>\n")
		}
	}

	printf("</table>\n</body>\n</html>\n")
}

func rowClass(change diffview.Tag, row diffview.LineRow) string {
	if row.Moved > 0 {
		return "moved"
	}
	if row.WhitespaceOnly {
		return "whitespace"
	}
	switch change {
	case diffview.TagInsert:
		return "insert"
	case diffview.TagDelete:
		return "delete"
	case diffview.TagReplace:
		if row.ANum == 0 {
			return "insert"
		}
		if row.BNum == 0 {
			return "delete"
		}
		return "replace"
	}
	return "equal"
}

func lineNum(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprint(n)
}

// cellMarkup wraps the already-escaped markup, marking changed regions when
// present. Regions are byte offsets into the raw line, so they only apply
// cleanly when the markup is the plain escaped line; highlighted lines are
// shown without region emphasis.
func cellMarkup(markup string, regions []diffview.Region) string {
	if len(regions) == 0 || strings.Contains(markup, "<span") {
		return markup
	}
	var b strings.Builder
	prev := 0
	for _, reg := range regions {
		start, end := escapedOffset(markup, reg.Start), escapedOffset(markup, reg.End)
		if start < prev || end > len(markup) {
			return markup
		}
		b.WriteString(markup[prev:start])
		b.WriteString("<em>")
		b.WriteString(markup[start:end])
		b.WriteString("</em>")
		prev = end
	}
	b.WriteString(markup[prev:])
	return b.String()
}

// escapedOffset maps a raw-line byte offset onto the escaped string by
// stepping over HTML entities, which count as one source byte each.
func escapedOffset(escaped string, raw int) int {
	i := 0
	for consumed := 0; consumed < raw && i < len(escaped); consumed++ {
		if escaped[i] == '&' {
			if end := strings.IndexByte(escaped[i:], ';'); end >= 0 {
				i += end + 1
				continue
			}
		}
		i++
	}
	return i
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

const stylesheet = `table.diff { border-collapse: collapse; font-family: monospace; white-space: pre-wrap; width: 100%; }
table.diff td { vertical-align: top; padding: 0 0.4em; }
td.lnum { color: #888; text-align: right; user-select: none; }
tr.insert td { background: #dfd; }
tr.delete td { background: #fdd; }
tr.replace td { background: #ffd; }
tr.moved td { background: #ddf; }
tr.whitespace td { background: #eee; }
tr.collapsed td { background: #f4f4f4; color: #888; text-align: center; }
tr.replace em { background: #fc6; font-style: normal; }
`
