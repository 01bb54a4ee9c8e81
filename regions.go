package diffview

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Intra-line region diffing for replace rows: a character-level alignment
// of the old and new line finds the sub-ranges that actually changed, so
// the renderer can highlight just those instead of the whole line.

// Region marks a changed byte range [Start,End) within a line's raw text.
// Boundaries always fall on UTF-8 rune boundaries.
type Region struct {
	Start, End int
}

const (
	// regionSimilarityFloor suppresses region highlighting when the line
	// changed too much: whole-line highlighting reads better than
	// character-level noise on a rewrite.
	regionSimilarityFloor = 0.6

	// regionMergeRun extends change boundaries backward over an immediately
	// preceding equal run shorter than this, so highlights don't fragment
	// around single-character anchors.
	regionMergeRun = 3
)

// charOpcode is one character-level edit operation over a line pair.
type charOpcode struct {
	tag    Tag
	i1, i2 int
	j1, j2 int
}

// lineChangedRegions computes the changed sub-ranges of a replaced line
// pair. Both results are nil when either side is empty or the similarity
// ratio falls below the floor.
func lineChangedRegions(oldLine, newLine string) (oldRegions, newRegions []Region) {
	if oldLine == "" || newLine == "" {
		return nil, nil
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupMerge(dmp.DiffMain(oldLine, newLine, false))

	common := 0
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			common += len(d.Text)
		}
	}
	if ratio := float64(2*common) / float64(len(oldLine)+len(newLine)); ratio < regionSimilarityFloor {
		return nil, nil
	}

	backOld, backNew := 0, 0
	for _, op := range lineCharOpcodes(diffs) {
		if op.tag == TagEqual {
			if op.i2-op.i1 < regionMergeRun || op.j2-op.j1 < regionMergeRun {
				backOld, backNew = op.i2-op.i1, op.j2-op.j1
			}
			continue
		}

		oldRegions = appendRegion(oldRegions, op.i1-backOld, op.i2, oldLine)
		newRegions = appendRegion(newRegions, op.j1-backNew, op.j2, newLine)
		backOld, backNew = 0, 0
	}

	return oldRegions, newRegions
}

// lineCharOpcodes converts a character diff into ordered opcodes, merging
// adjacent delete+insert pairs into replaces.
func lineCharOpcodes(diffs []diffmatchpatch.Diff) []charOpcode {
	var ops []charOpcode
	i, j := 0, 0
	del, ins := 0, 0

	flush := func() {
		switch {
		case del > 0 && ins > 0:
			ops = append(ops, charOpcode{tag: TagReplace, i1: i, i2: i + del, j1: j, j2: j + ins})
		case del > 0:
			ops = append(ops, charOpcode{tag: TagDelete, i1: i, i2: i + del, j1: j, j2: j})
		case ins > 0:
			ops = append(ops, charOpcode{tag: TagInsert, i1: i, i2: i, j1: j, j2: j + ins})
		}
		i += del
		j += ins
		del, ins = 0, 0
	}

	for _, d := range diffs {
		n := len(d.Text)
		if n == 0 {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			ops = append(ops, charOpcode{tag: TagEqual, i1: i, i2: i + n, j1: j, j2: j + n})
			i += n
			j += n
		case diffmatchpatch.DiffDelete:
			del += n
		case diffmatchpatch.DiffInsert:
			ins += n
		}
	}
	flush()

	return ops
}

// appendRegion adds [start,end) to the region list, merging with an
// overlapping previous region and skipping empty or whitespace-only spans.
func appendRegion(regions []Region, start, end int, line string) []Region {
	if start < 0 {
		start = 0
	}
	if end > len(line) {
		end = len(line)
	}
	if start >= end {
		return regions
	}
	if n := len(regions); n > 0 && start <= regions[n-1].End && regions[n-1].End < end {
		regions[n-1].End = end
		return regions
	}
	if strings.TrimSpace(line[start:end]) == "" {
		return regions
	}
	return append(regions, Region{Start: start, End: end})
}
