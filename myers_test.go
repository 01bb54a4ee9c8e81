package diffview

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

// checkCoverage verifies the opcode contract: ordered, contiguous, covering
// [0,n) and [0,m) exactly, with no empty opcodes.
func checkCoverage(t *testing.T, ops []Opcode, n, m int) {
	t.Helper()
	i, j := 0, 0
	for _, op := range ops {
		if op.I1 != i || op.J1 != j {
			t.Fatalf("opcode %+v does not start at (%d,%d)", op, i, j)
		}
		if op.I2 < op.I1 || op.J2 < op.J1 {
			t.Fatalf("opcode %+v has negative range", op)
		}
		switch op.Tag {
		case TagEqual:
			if op.I2-op.I1 != op.J2-op.J1 || op.I2 == op.I1 {
				t.Fatalf("bad equal opcode %+v", op)
			}
		case TagInsert:
			if op.I1 != op.I2 || op.J1 == op.J2 {
				t.Fatalf("bad insert opcode %+v", op)
			}
		case TagDelete:
			if op.J1 != op.J2 || op.I1 == op.I2 {
				t.Fatalf("bad delete opcode %+v", op)
			}
		case TagReplace:
			if op.I1 == op.I2 || op.J1 == op.J2 {
				t.Fatalf("bad replace opcode %+v", op)
			}
		}
		i, j = op.I2, op.J2
	}
	if i != n || j != m {
		t.Fatalf("opcodes cover a[0:%d] b[0:%d], want a[0:%d] b[0:%d]", i, j, n, m)
	}
}

// stripMeta drops enrichment for structural comparisons.
func stripMeta(ops []Opcode) []Opcode {
	out := make([]Opcode, len(ops))
	copy(out, ops)
	for i := range out {
		out[i].Meta = nil
	}
	return out
}

func TestDiffLines_Empty(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want []Opcode
	}{
		{
			name: "both empty",
			a:    nil,
			b:    nil,
			want: nil,
		},
		{
			name: "a empty",
			a:    nil,
			b:    []string{"x", "y"},
			want: []Opcode{
				{Tag: TagInsert, I1: 0, I2: 0, J1: 0, J2: 2},
			},
		},
		{
			name: "b empty",
			a:    []string{"x", "y"},
			b:    nil,
			want: []Opcode{
				{Tag: TagDelete, I1: 0, I2: 2, J1: 0, J2: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DiffLines(tt.a, tt.b)
			if err != nil {
				t.Fatalf("DiffLines() error = %v", err)
			}
			if !reflect.DeepEqual(stripMeta(got), tt.want) {
				t.Errorf("DiffLines() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiffLines_Equal(t *testing.T) {
	a := []string{"a", "b", "c"}
	b := []string{"a", "b", "c"}

	got, err := DiffLines(a, b)
	if err != nil {
		t.Fatalf("DiffLines() error = %v", err)
	}
	want := []Opcode{
		{Tag: TagEqual, I1: 0, I2: 3, J1: 0, J2: 3},
	}
	if !reflect.DeepEqual(stripMeta(got), want) {
		t.Errorf("DiffLines() = %v, want %v", got, want)
	}
}

func TestDiffLines_SimpleReplace(t *testing.T) {
	a := []string{"one", "two", "three"}
	b := []string{"one", "2", "three"}

	got, err := DiffLines(a, b)
	if err != nil {
		t.Fatalf("DiffLines() error = %v", err)
	}
	want := []Opcode{
		{Tag: TagEqual, I1: 0, I2: 1, J1: 0, J2: 1},
		{Tag: TagReplace, I1: 1, I2: 2, J1: 1, J2: 2},
		{Tag: TagEqual, I1: 2, I2: 3, J1: 2, J2: 3},
	}
	if !reflect.DeepEqual(stripMeta(got), want) {
		t.Errorf("DiffLines() = %v, want %v", got, want)
	}
}

func TestDiffLines_InsertDelete(t *testing.T) {
	a := []string{"alpha", "gamma"}
	b := []string{"alpha", "beta", "gamma"}

	got, err := DiffLines(a, b)
	if err != nil {
		t.Fatalf("DiffLines() error = %v", err)
	}
	want := []Opcode{
		{Tag: TagEqual, I1: 0, I2: 1, J1: 0, J2: 1},
		{Tag: TagInsert, I1: 1, I2: 1, J1: 1, J2: 2},
		{Tag: TagEqual, I1: 1, I2: 2, J1: 2, J2: 3},
	}
	if !reflect.DeepEqual(stripMeta(got), want) {
		t.Errorf("insert: DiffLines() = %v, want %v", got, want)
	}

	got, err = DiffLines(b, a)
	if err != nil {
		t.Fatalf("DiffLines() error = %v", err)
	}
	want = []Opcode{
		{Tag: TagEqual, I1: 0, I2: 1, J1: 0, J2: 1},
		{Tag: TagDelete, I1: 1, I2: 2, J1: 1, J2: 1},
		{Tag: TagEqual, I1: 2, I2: 3, J1: 1, J2: 2},
	}
	if !reflect.DeepEqual(stripMeta(got), want) {
		t.Errorf("delete: DiffLines() = %v, want %v", got, want)
	}
}

func TestDiffLines_AllDifferent(t *testing.T) {
	a := []string{"a1", "a2", "a3"}
	b := []string{"b1", "b2", "b3"}

	got, err := DiffLines(a, b)
	if err != nil {
		t.Fatalf("DiffLines() error = %v", err)
	}
	want := []Opcode{
		{Tag: TagReplace, I1: 0, I2: 3, J1: 0, J2: 3},
	}
	if !reflect.DeepEqual(stripMeta(got), want) {
		t.Errorf("DiffLines() = %v, want %v", got, want)
	}
}

func TestDiffLines_Coverage(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
	}{
		{
			name: "prose",
			a:    strings.Split("The quick brown fox jumps over the lazy dog in the park", " "),
			b:    strings.Split("A slow red fox leaps over the sleeping cat in the garden", " "),
		},
		{
			name: "code tokens",
			a:    strings.Split("func main ( ) { fmt . Println ( hello ) }", " "),
			b:    strings.Split("func main ( ) { log . Printf ( world ) }", " "),
		},
		{
			name: "large scattered changes",
			a:    generateText(500, 0),
			b:    generateText(500, 42),
		},
		{
			name: "large vs empty-ish",
			a:    generateText(300, 7),
			b:    generateText(10, 7),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DiffLines(tt.a, tt.b)
			if err != nil {
				t.Fatalf("DiffLines() error = %v", err)
			}
			checkCoverage(t, got, len(tt.a), len(tt.b))
			checkRoundTrip(t, got, tt.a, tt.b)
		})
	}
}

// checkRoundTrip applies the edit script to a and verifies it reconstructs
// b: equal ranges must pair equal lines, changed ranges take b's content.
func checkRoundTrip(t *testing.T, ops []Opcode, a, b []string) {
	t.Helper()
	var out []string
	for _, op := range ops {
		if op.Tag == TagEqual {
			for k := 0; k < op.I2-op.I1; k++ {
				if a[op.I1+k] != b[op.J1+k] {
					t.Fatalf("equal opcode %+v pairs different lines %q and %q",
						op, a[op.I1+k], b[op.J1+k])
				}
			}
			out = append(out, a[op.I1:op.I2]...)
			continue
		}
		out = append(out, b[op.J1:op.J2]...)
	}
	if len(out) != len(b) {
		t.Fatalf("round trip produced %d lines, want %d", len(out), len(b))
	}
	for i := range out {
		if out[i] != b[i] {
			t.Fatalf("round trip line %d = %q, want %q", i, out[i], b[i])
		}
	}
}

func TestDiffLines_MinimalCoverage(t *testing.T) {
	a := generateText(200, 3)
	b := generateText(200, 11)

	got, err := DiffLines(a, b, WithMinimal(true))
	if err != nil {
		t.Fatalf("DiffLines() error = %v", err)
	}
	checkCoverage(t, got, len(a), len(b))
}

func TestDiffLines_HeuristicOffCoverage(t *testing.T) {
	a := generateText(400, 1)
	b := generateText(400, 9)

	got, err := DiffLines(a, b, WithHeuristic(false))
	if err != nil {
		t.Fatalf("DiffLines() error = %v", err)
	}
	checkCoverage(t, got, len(a), len(b))
}

func TestDiffLines_ManyDuplicates(t *testing.T) {
	// Thousands of identical lines exercise the confusing-line discard.
	a := make([]string, 0, 2000)
	b := make([]string, 0, 2000)
	for i := 0; i < 1000; i++ {
		a = append(a, "")
		a = append(a, fmt.Sprintf("unique a %d", i))
		b = append(b, "")
		b = append(b, fmt.Sprintf("unique b %d", i))
	}

	got, err := DiffLines(a, b)
	if err != nil {
		t.Fatalf("DiffLines() error = %v", err)
	}
	checkCoverage(t, got, len(a), len(b))
}

func TestDiffLines_LineLimit(t *testing.T) {
	a := generateText(100, 0)
	b := generateText(100, 1)

	_, err := DiffLines(a, b, WithInputLimits(150, 0))
	if !errors.Is(err, ErrInputTooLarge) {
		t.Fatalf("DiffLines() error = %v, want ErrInputTooLarge", err)
	}
}

func TestIsqrt(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{-1, 0},
		{0, 0},
		{1, 1},
		{4, 2},
		{9, 3},
		{10, 3},
		{15, 3},
		{16, 4},
		{100, 10},
		{101, 10},
		{10000, 100},
	}

	for _, tt := range tests {
		if got := isqrt(tt.n); got != tt.want {
			t.Errorf("isqrt(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestCostCeiling(t *testing.T) {
	// Small inputs hit the floor; large ones get 5*sqrt(4*N).
	if got := costCeiling(256, 10); got != 256 {
		t.Errorf("costCeiling(256, 10) = %d, want 256", got)
	}
	if got := costCeiling(256, 10000); got != 1000 {
		t.Errorf("costCeiling(256, 10000) = %d, want 1000", got)
	}
	if got := costCeiling(0, 100); got != 100 {
		t.Errorf("costCeiling(0, 100) = %d, want 100", got)
	}
}

// generateText produces deterministic pseudo-code lines; two calls with the
// same count and seed are identical, different seeds differ on scattered
// lines.
func generateText(lines, seed int) []string {
	words := []string{"the", "quick", "brown", "fox", "jumps", "over", "lazy", "dog",
		"func", "main", "return", "if", "else", "for", "range", "var", "const",
		"import", "package", "type", "struct", "interface", "map", "slice"}

	result := make([]string, lines)
	for i := 0; i < lines; i++ {
		lineWords := make([]string, 5+i%3)
		for j := range lineWords {
			idx := (i*7 + j*13) % len(words)
			lineWords[j] = words[idx]
		}
		result[i] = strings.Join(lineWords, " ")
	}

	for i := seed % 10; i < lines; i += 10 + seed%5 {
		result[i] = "CHANGED LINE " + fmt.Sprint(i) + " seed " + fmt.Sprint(seed)
	}

	return result
}
