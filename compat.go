package diffview

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// matcherDiffer is the historical sequence-matcher differ, retained as
// compat version 0 so that diffs stored under old compatibility versions
// reproduce bit-for-bit. It runs diff-match-patch in line mode: every line
// is packed into one rune, diffed as text, and unpacked back to line counts.
type matcherDiffer struct{}

func (d *matcherDiffer) diff(p *sequencePair) []Opcode {
	n := len(p.aKeys)
	m := len(p.bKeys)
	if n == 0 && m == 0 {
		return nil
	}
	if n == 0 {
		return []Opcode{{Tag: TagInsert, J2: m}}
	}
	if m == 0 {
		return []Opcode{{Tag: TagDelete, I2: n}}
	}

	dmp := diffmatchpatch.New()
	aText := strings.Join(p.aKeys, "\n") + "\n"
	bText := strings.Join(p.bKeys, "\n") + "\n"

	aRunes, bRunes, _ := dmp.DiffLinesToRunes(aText, bText)
	diffs := dmp.DiffMainRunes(aRunes, bRunes, false)
	diffs = dmp.DiffCleanupMerge(diffs)

	var ops []Opcode
	i, j := 0, 0
	delLines, insLines := 0, 0

	flush := func() {
		switch {
		case delLines > 0 && insLines > 0:
			ops = append(ops, Opcode{Tag: TagReplace, I1: i, I2: i + delLines, J1: j, J2: j + insLines})
		case delLines > 0:
			ops = append(ops, Opcode{Tag: TagDelete, I1: i, I2: i + delLines, J1: j, J2: j})
		case insLines > 0:
			ops = append(ops, Opcode{Tag: TagInsert, I1: i, I2: i, J1: j, J2: j + insLines})
		}
		i += delLines
		j += insLines
		delLines, insLines = 0, 0
	}

	for _, df := range diffs {
		// One rune per line in line mode.
		lines := utf8.RuneCountInString(df.Text)
		if lines == 0 {
			continue
		}
		switch df.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			ops = append(ops, Opcode{Tag: TagEqual, I1: i, I2: i + lines, J1: j, J2: j + lines})
			i += lines
			j += lines
		case diffmatchpatch.DiffDelete:
			delLines += lines
		case diffmatchpatch.DiffInsert:
			insLines += lines
		}
	}
	flush()

	return ops
}
