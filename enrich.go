package diffview

import (
	"fmt"
	"strings"
	"unicode"
)

// Opcode enrichment: a forward pass attaching whitespace-only metadata to
// replace opcodes, and a correlation pass matching inserted line runs
// against deleted ones to detect moved blocks. Enrichment is deterministic
// and idempotent; meta is always recomputed from scratch.

const (
	// maxMoveRefs caps how many occurrences of one line text the move
	// scanner tracks. A line repeated more often than this (mass-duplicated
	// boilerplate) is treated as too common to be evidence of a move, which
	// bounds the correlation pass on contrived duplicate-heavy inputs.
	maxMoveRefs = 64

	// minMovedLineLength is the validity floor for a moved range: at least
	// one line must have this many characters after trimming, plus an
	// alphanumeric, so that pure punctuation or whitespace never registers
	// as a move.
	minMovedLineLength = 4
)

func (op *Opcode) ensureMeta() *OpcodeMeta {
	if op.Meta == nil {
		op.Meta = &OpcodeMeta{}
	}
	return op.Meta
}

// enrichOpcodes returns a copy of ops with meta populated.
func enrichOpcodes(ops []Opcode, p *sequencePair, detectMoves bool) []Opcode {
	out := make([]Opcode, len(ops))
	copy(out, ops)
	for i := range out {
		out[i].Meta = nil
	}
	annotateWhitespace(out, p)
	if detectMoves {
		correlateMoves(out, p)
	}
	return out
}

// annotateWhitespace records, for each replace opcode of equal-length
// ranges, the 1-based line pairs that differ only in whitespace. The
// comparison uses the original text, not the interned keys, so it works the
// same regardless of ignore-space mode.
func annotateWhitespace(ops []Opcode, p *sequencePair) {
	for idx := range ops {
		op := &ops[idx]
		numLines := op.I2 - op.I1
		if op.Tag != TagReplace || numLines != op.J2-op.J1 {
			continue
		}
		var wsLines [][2]int
		for k := 0; k < numLines; k++ {
			aLine := p.aLines[op.I1+k]
			bLine := p.bLines[op.J1+k]
			if stripAllSpace(aLine) == stripAllSpace(bLine) {
				wsLines = append(wsLines, [2]int{op.I1 + k + 1, op.J1 + k + 1})
			}
		}
		if len(wsLines) == 0 {
			continue
		}
		meta := op.ensureMeta()
		meta.WhitespaceLines = wsLines
		meta.WhitespaceChunk = len(wsLines) == numLines
	}
}

// moveRef is one occurrence of a deleted line, indexed by stripped text.
type moveRef struct {
	aIndex int
	op     *Opcode
	key    string
}

// moveCandidate tracks a growing range of consecutive inserted lines whose
// text matches consecutive lines of one delete opcode.
type moveCandidate struct {
	op     *Opcode
	aStart int // 0-based first matched line in A
	bStart int // 0-based first matched line in B
	length int
	nextA  int // next A index required to extend the range
	lastB  int // last B index that extended the range
}

func opcodePositionKey(op *Opcode) string {
	return fmt.Sprintf("%d-%d-%d-%d", op.I1, op.I2, op.J1, op.J2)
}

// correlateMoves builds a stripped-text index over all deleted lines, then
// scans each insert opcode for contiguous runs of lines that reappear from
// some delete opcode.
func correlateMoves(ops []Opcode, p *sequencePair) {
	refs := make(map[string][]moveRef)
	for i := range ops {
		op := &ops[i]
		if op.Tag != TagDelete {
			continue
		}
		key := opcodePositionKey(op)
		for a := op.I1; a < op.I2; a++ {
			text := strings.TrimSpace(p.aLines[a])
			if text == "" {
				continue
			}
			if len(refs[text]) > maxMoveRefs {
				continue
			}
			refs[text] = append(refs[text], moveRef{aIndex: a, op: op, key: key})
		}
	}
	if len(refs) == 0 {
		return
	}

	for i := range ops {
		op := &ops[i]
		if op.Tag == TagInsert {
			scanInsertForMoves(op, refs, p)
		}
	}
}

func scanInsertForMoves(ins *Opcode, refs map[string][]moveRef, p *sequencePair) {
	cands := make(map[string]*moveCandidate)
	var order []*moveCandidate

	flush := func() {
		if len(order) > 0 {
			best := selectCandidate(order)
			if best != nil && validMoveRange(p.aLines[best.aStart:best.aStart+best.length]) {
				recordMove(ins, best)
			}
		}
		cands = make(map[string]*moveCandidate)
		order = order[:0]
	}

	for b := ins.J1; b < ins.J2; b++ {
		text := strings.TrimSpace(p.bLines[b])
		lineRefs := refs[text]
		if text == "" || len(lineRefs) == 0 || len(lineRefs) > maxMoveRefs {
			// No usable match: the contiguous matching run ends here.
			flush()
			continue
		}
		for _, ref := range lineRefs {
			c := cands[ref.key]
			switch {
			case c == nil:
				c = &moveCandidate{
					op:     ref.op,
					aStart: ref.aIndex,
					bStart: b,
					length: 1,
					nextA:  ref.aIndex + 1,
					lastB:  b,
				}
				cands[ref.key] = c
				order = append(order, c)
			case c.nextA == ref.aIndex && c.lastB == b-1:
				c.length++
				c.nextA++
				c.lastB = b
			}
		}
	}
	flush()
}

// selectCandidate picks the single longest candidate range. An exact-length
// tie usually means repeated boilerplate (blank comment blocks, braces);
// reporting either side would be a guess, so ties are discarded.
func selectCandidate(cands []*moveCandidate) *moveCandidate {
	var best *moveCandidate
	tie := false
	for _, c := range cands {
		switch {
		case best == nil || c.length > best.length:
			best = c
			tie = false
		case c.length == best.length:
			tie = true
		}
	}
	if tie {
		return nil
	}
	return best
}

// validMoveRange requires at least one line of real content in the matched
// delete range, filtering out moves of pure punctuation or whitespace that
// carry no meaning for a reviewer.
func validMoveRange(lines []string) bool {
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) >= minMovedLineLength && containsAlphanumeric(line) {
			return true
		}
	}
	return false
}

func containsAlphanumeric(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// recordMove attaches the bidirectional 1-based line correspondence to both
// the insert opcode and the matched delete opcode.
func recordMove(ins *Opcode, c *moveCandidate) {
	insMeta := ins.ensureMeta()
	delMeta := c.op.ensureMeta()
	if insMeta.Moved == nil {
		insMeta.Moved = make(map[int]int, c.length)
	}
	if delMeta.Moved == nil {
		delMeta.Moved = make(map[int]int, c.length)
	}
	for k := 0; k < c.length; k++ {
		aLine := c.aStart + k + 1
		bLine := c.bStart + k + 1
		insMeta.Moved[bLine] = aLine
		delMeta.Moved[aLine] = bLine
	}
}
