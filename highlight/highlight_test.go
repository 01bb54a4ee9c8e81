package highlight

import (
	"strings"
	"testing"
)

func TestLines_GoSource(t *testing.T) {
	source := "package main\n\nfunc main() {}\n"

	lines, err := Lines("main.go", source)
	if err != nil {
		t.Fatalf("Lines() error = %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("Lines() returned %d lines, want 3: %q", len(lines), lines)
	}
	if lines[1] != "" {
		t.Errorf("blank source line produced markup %q", lines[1])
	}
	if !strings.Contains(lines[0], "<span") {
		t.Errorf("expected token spans in %q", lines[0])
	}
	if !strings.Contains(lines[0], "package") {
		t.Errorf("expected source text in %q", lines[0])
	}
}

func TestLines_EscapesHTML(t *testing.T) {
	lines, err := Lines("x.go", "var a = 1 < 2\n")
	if err != nil {
		t.Fatalf("Lines() error = %v", err)
	}
	joined := strings.Join(lines, "")
	if strings.Contains(joined, " < ") {
		t.Errorf("unescaped '<' in %q", joined)
	}
	if !strings.Contains(joined, "&lt;") {
		t.Errorf("expected &lt; entity in %q", joined)
	}
}

func TestLines_UnknownExtensionFallsBack(t *testing.T) {
	lines, err := Lines("notes.xyzzy", "plain text\nmore text\n")
	if err != nil {
		t.Fatalf("Lines() error = %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("Lines() returned %d lines, want 2: %q", len(lines), lines)
	}
}
