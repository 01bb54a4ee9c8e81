// Package highlight produces per-line HTML markup for source files using
// chroma. The output slices line up one entry per input line, which is the
// shape diffview's SideContent expects.
package highlight

import (
	"html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// Lines tokenizes source and returns one HTML fragment per line. Token
// spans carry chroma's standard CSS class names, so any chroma-generated
// stylesheet applies. On tokenizer failure the error is returned and the
// caller should fall back to plain escaped lines.
func Lines(path, source string) ([]string, error) {
	lexer := lexers.Match(path)
	if lexer == nil {
		lexer = lexers.Analyse(source)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, source)
	if err != nil {
		return nil, err
	}

	var out []string
	var line strings.Builder
	for _, tok := range it.Tokens() {
		class := tokenClass(tok.Type)
		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				out = append(out, line.String())
				line.Reset()
			}
			if part == "" {
				continue
			}
			if class == "" {
				line.WriteString(html.EscapeString(part))
			} else {
				line.WriteString(`<span class="`)
				line.WriteString(class)
				line.WriteString(`">`)
				line.WriteString(html.EscapeString(part))
				line.WriteString(`</span>`)
			}
		}
	}
	if line.Len() > 0 {
		out = append(out, line.String())
	}
	return out, nil
}

// tokenClass resolves chroma's standard short class for a token type,
// walking up through subtype and category the way chroma's HTML formatter
// does.
func tokenClass(t chroma.TokenType) string {
	if c, ok := chroma.StandardTypes[t]; ok {
		return c
	}
	if c, ok := chroma.StandardTypes[t.SubCategory()]; ok {
		return c
	}
	if c, ok := chroma.StandardTypes[t.Category()]; ok {
		return c
	}
	return ""
}
