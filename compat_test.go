package diffview

import (
	"errors"
	"reflect"
	"testing"
)

func TestCompat_UnknownVersion(t *testing.T) {
	_, err := DiffLines([]string{"a"}, []string{"b"}, WithCompatVersion(99))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("DiffLines() error = %v, want ErrInvalidConfig", err)
	}
}

func TestCompat_SequenceMatcher_Empty(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want []Opcode
	}{
		{
			name: "both empty",
			want: nil,
		},
		{
			name: "a empty",
			b:    []string{"x", "y"},
			want: []Opcode{{Tag: TagInsert, J2: 2}},
		},
		{
			name: "b empty",
			a:    []string{"x", "y"},
			want: []Opcode{{Tag: TagDelete, I2: 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DiffLines(tt.a, tt.b, WithCompatVersion(CompatSequenceMatcher))
			if err != nil {
				t.Fatalf("DiffLines() error = %v", err)
			}
			if !reflect.DeepEqual(stripMeta(got), tt.want) {
				t.Errorf("DiffLines() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompat_SequenceMatcher_Basic(t *testing.T) {
	a := []string{"one", "two", "three"}
	b := []string{"one", "2", "three"}

	got, err := DiffLines(a, b, WithCompatVersion(CompatSequenceMatcher))
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

func TestCompat_SequenceMatcher_Coverage(t *testing.T) {
	a := generateText(300, 2)
	b := generateText(310, 5)

	got, err := DiffLines(a, b, WithCompatVersion(CompatSequenceMatcher))
	if err != nil {
		t.Fatalf("DiffLines() error = %v", err)
	}
	checkCoverage(t, got, len(a), len(b))
}

func TestCompat_StrategiesAgreeOnIdentical(t *testing.T) {
	lines := generateText(50, 0)

	for _, v := range []int{CompatSequenceMatcher, CompatMyers} {
		got, err := DiffLines(lines, lines, WithCompatVersion(v))
		if err != nil {
			t.Fatalf("version %d: error = %v", v, err)
		}
		want := []Opcode{{Tag: TagEqual, I1: 0, I2: 50, J1: 0, J2: 50}}
		if !reflect.DeepEqual(stripMeta(got), want) {
			t.Errorf("version %d: DiffLines() = %v, want %v", v, got, want)
		}
	}
}
