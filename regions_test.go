package diffview

import (
	"reflect"
	"testing"
)

func TestLineChangedRegions_SingleWordChange(t *testing.T) {
	oldRegions, newRegions := lineChangedRegions("foo bar baz", "foo qux baz")

	if want := []Region{{Start: 4, End: 7}}; !reflect.DeepEqual(oldRegions, want) {
		t.Errorf("old regions = %v, want %v", oldRegions, want)
	}
	if want := []Region{{Start: 4, End: 7}}; !reflect.DeepEqual(newRegions, want) {
		t.Errorf("new regions = %v, want %v", newRegions, want)
	}
}

func TestLineChangedRegions_PureInsertion(t *testing.T) {
	oldRegions, newRegions := lineChangedRegions("color", "colour")

	if oldRegions != nil {
		t.Errorf("old regions = %v, want none for a pure insertion", oldRegions)
	}
	if want := []Region{{Start: 4, End: 5}}; !reflect.DeepEqual(newRegions, want) {
		t.Errorf("new regions = %v, want %v", newRegions, want)
	}
}

func TestLineChangedRegions_RewriteSuppressed(t *testing.T) {
	// Lines that changed almost entirely read better with whole-line
	// highlighting than with fragmented character regions.
	oldRegions, newRegions := lineChangedRegions("abcdefgh", "12345678")

	if oldRegions != nil || newRegions != nil {
		t.Errorf("regions = %v / %v, want none below the similarity floor", oldRegions, newRegions)
	}
}

func TestLineChangedRegions_EmptySide(t *testing.T) {
	if o, n := lineChangedRegions("", "something"); o != nil || n != nil {
		t.Errorf("regions = %v / %v, want none when a side is empty", o, n)
	}
	if o, n := lineChangedRegions("something", ""); o != nil || n != nil {
		t.Errorf("regions = %v / %v, want none when a side is empty", o, n)
	}
}

func TestLineChangedRegions_WhitespaceSpanSkipped(t *testing.T) {
	_, newRegions := lineChangedRegions("abcd", "abcd  ")

	if newRegions != nil {
		t.Errorf("new regions = %v, want none for trailing whitespace", newRegions)
	}
}

func TestAppendRegion(t *testing.T) {
	line := "hello world"

	regions := appendRegion(nil, 0, 5, line)
	regions = appendRegion(regions, 3, 8, line) // overlaps, extends previous
	if want := []Region{{Start: 0, End: 8}}; !reflect.DeepEqual(regions, want) {
		t.Errorf("regions = %v, want %v", regions, want)
	}

	regions = appendRegion(regions, 9, 11, line)
	if want := []Region{{Start: 0, End: 8}, {Start: 9, End: 11}}; !reflect.DeepEqual(regions, want) {
		t.Errorf("regions = %v, want %v", regions, want)
	}

	// Out-of-range bounds clamp; empty spans are dropped.
	if got := appendRegion(nil, -2, 0, line); got != nil {
		t.Errorf("regions = %v, want none for an empty span", got)
	}
	if got := appendRegion(nil, 8, 99, line); !reflect.DeepEqual(got, []Region{{Start: 8, End: 11}}) {
		t.Errorf("regions = %v, want clamped span", got)
	}
}
