package diffview

import (
	"fmt"
	"html"
)

// Chunk assembly: enriched opcodes plus per-line markup become an ordered
// list of render-ready chunks. Long equal runs are split into collapsed and
// visible context sub-ranges, and the most recent function/class header on
// each side is tracked across chunks so collapsed regions can display it.

// LineRow is one virtual line of a side-by-side view. A side's number is 0
// when that side has no line at this row (pure inserts and deletes).
type LineRow struct {
	VNum int // virtual line number, 1-based across the whole file

	ANum     int
	AMarkup  string
	ARegions []Region

	BNum     int
	BMarkup  string
	BRegions []Region

	// WhitespaceOnly marks replace rows whose two sides differ only in
	// whitespace.
	WhitespaceOnly bool

	// IndentChange describes how leading indentation moved on a
	// whitespace-only row. Nil when indentation is unchanged.
	IndentChange *IndentChange

	// Moved is the 1-based destination line on the opposite side when this
	// row is part of a moved block: for delete rows, where the line went in
	// B; for insert rows, where it came from in A. 0 when not moved.
	Moved int
}

// IndentChange records a change in leading indentation, in columns with
// tab stops every 8.
type IndentChange struct {
	Indent  bool // true when indentation grew, false when it shrank
	Columns int
}

// ChunkMeta carries header context and whitespace info for one chunk.
type ChunkMeta struct {
	// LeftHeaders and RightHeaders are the header lines found within this
	// chunk's own range on each side.
	LeftHeaders  []Header
	RightHeaders []Header

	// Headers is the running last-known header pair from before this
	// chunk, letting a collapsed chunk show "inside function X" even
	// though the header line itself is outside the visible range.
	Headers *HeaderPair

	// WhitespaceChunk is true when every line of a replace chunk is a
	// whitespace-only change.
	WhitespaceChunk bool
}

// Chunk is a contiguous, independently renderable group of diff lines
// sharing one change type. Chunks are immutable once produced and safe to
// cache verbatim; Index is assigned sequentially across the file and is
// stable for a given settings fingerprint.
type Chunk struct {
	Index       int
	Change      Tag
	Lines       []LineRow
	NumLines    int
	Collapsable bool
	Meta        ChunkMeta
}

// SideContent is one side's raw lines plus optional pre-rendered HTML-safe
// markup of identical line count, produced by an external highlighter. When
// Markup is nil the assembler HTML-escapes the raw lines itself.
type SideContent struct {
	Lines  []string
	Markup []string
}

func (sc SideContent) markupFor(i int) string {
	if sc.Markup != nil {
		return sc.Markup[i]
	}
	return html.EscapeString(sc.Lines[i])
}

// Assembler turns enriched opcodes into chunks.
type Assembler struct {
	s *settings
}

// NewAssembler constructs an assembler. The header table and collapse
// settings are fixed at construction.
func NewAssembler(opts ...Option) *Assembler {
	s := defaultSettings()
	for _, opt := range opts {
		opt(s)
	}
	return &Assembler{s: s}
}

// headerMark carries the headers recognized on one row while it was built.
type headerMark struct {
	left  *Header
	right *Header
}

// Assemble walks opcodes in order and produces the full chunk list for one
// file. path selects the header regex language by extension.
func (asm *Assembler) Assemble(ops []Opcode, a, b SideContent, path string) ([]Chunk, error) {
	if a.Markup != nil && len(a.Markup) != len(a.Lines) {
		return nil, fmt.Errorf("%w: side A markup has %d lines, content has %d",
			ErrInvalidConfig, len(a.Markup), len(a.Lines))
	}
	if b.Markup != nil && len(b.Markup) != len(b.Lines) {
		return nil, fmt.Errorf("%w: side B markup has %d lines, content has %d",
			ErrInvalidConfig, len(b.Markup), len(b.Lines))
	}

	collapseThreshold := asm.s.effectiveCollapseThreshold()
	ctxLines := asm.s.contextLines
	scanner := newHeaderScanner(asm.s.headers(), path)

	var (
		chunks    []Chunk
		lastLeft  Header
		lastRight Header
	)

	emit := func(rows []LineRow, hdrs []headerMark, change Tag, collapsable, whitespaceChunk bool) {
		if len(rows) == 0 {
			return
		}
		c := Chunk{
			Index:       len(chunks),
			Change:      change,
			Lines:       rows,
			NumLines:    len(rows),
			Collapsable: collapsable,
		}
		c.Meta.WhitespaceChunk = whitespaceChunk
		c.Meta.Headers = &HeaderPair{Left: lastLeft, Right: lastRight}
		for _, h := range hdrs {
			if h.left != nil {
				c.Meta.LeftHeaders = append(c.Meta.LeftHeaders, *h.left)
				lastLeft = *h.left
			}
			if h.right != nil {
				c.Meta.RightHeaders = append(c.Meta.RightHeaders, *h.right)
				lastRight = *h.right
			}
		}
		chunks = append(chunks, c)
	}

	lineNum := 1
	for _, op := range ops {
		rows, hdrs := asm.buildRows(op, a, b, scanner, lineNum)
		numLines := len(rows)

		if op.Tag == TagEqual && asm.s.collapseEnabled && numLines > collapseThreshold {
			// Clamp for degenerate configurations where the threshold was
			// forced below 2*context.
			ctx := min(ctxLines, numLines)
			lastRangeStart := max(numLines-ctxLines, ctx)

			if lineNum == 1 {
				// Very first chunk in the file: collapse from line 0, keep
				// the trailing context visible.
				emit(rows[:lastRangeStart], hdrs[:lastRangeStart], TagEqual, true, false)
				emit(rows[lastRangeStart:], hdrs[lastRangeStart:], TagEqual, false, false)
			} else {
				emit(rows[:ctx], hdrs[:ctx], TagEqual, false, false)
				if op.I2 == len(a.Lines) && op.J2 == len(b.Lines) {
					// Final chunk reaching EOF on both sides: collapse
					// everything after the leading context.
					emit(rows[ctx:], hdrs[ctx:], TagEqual, true, false)
				} else {
					emit(rows[ctx:lastRangeStart], hdrs[ctx:lastRangeStart], TagEqual, true, false)
					emit(rows[lastRangeStart:], hdrs[lastRangeStart:], TagEqual, false, false)
				}
			}
		} else {
			emit(rows, hdrs, op.Tag, false, op.Meta != nil && op.Meta.WhitespaceChunk)
		}

		lineNum += numLines
	}

	return chunks, nil
}

// buildRows produces the line rows for one opcode, along with any headers
// recognized on each row.
func (asm *Assembler) buildRows(op Opcode, a, b SideContent, scanner headerScanner, lineNum int) ([]LineRow, []headerMark) {
	numLines := max(op.I2-op.I1, op.J2-op.J1)
	rows := make([]LineRow, 0, numLines)
	hdrs := make([]headerMark, numLines)

	// Whitespace-annotated line pairs, keyed by A line number.
	var wsLines map[int]bool
	if op.Meta != nil && len(op.Meta.WhitespaceLines) > 0 {
		wsLines = make(map[int]bool, len(op.Meta.WhitespaceLines))
		for _, pair := range op.Meta.WhitespaceLines {
			wsLines[pair[0]] = true
		}
	}

	for k := 0; k < numLines; k++ {
		row := LineRow{VNum: lineNum + k}

		if i := op.I1 + k; i < op.I2 {
			row.ANum = i + 1
			row.AMarkup = a.markupFor(i)
			if m, ok := scanner.match(a.Lines[i]); ok {
				hdrs[k].left = &Header{Line: i + 1, Text: m}
			}
		}
		if j := op.J1 + k; j < op.J2 {
			row.BNum = j + 1
			row.BMarkup = b.markupFor(j)
			if m, ok := scanner.match(b.Lines[j]); ok {
				hdrs[k].right = &Header{Line: j + 1, Text: m}
			}
		}

		if op.Tag == TagReplace && row.ANum > 0 && row.BNum > 0 {
			aLine := a.Lines[row.ANum-1]
			bLine := b.Lines[row.BNum-1]
			if wsLines[row.ANum] {
				row.WhitespaceOnly = true
				row.IndentChange = indentChangeBetween(aLine, bLine)
			} else if limit := asm.s.maxLineLengthForStyling; limit <= 0 || (len(aLine) <= limit && len(bLine) <= limit) {
				row.ARegions, row.BRegions = lineChangedRegions(aLine, bLine)
			}
		}

		if op.Meta != nil && op.Meta.Moved != nil {
			switch op.Tag {
			case TagDelete:
				row.Moved = op.Meta.Moved[row.ANum]
			case TagInsert:
				row.Moved = op.Meta.Moved[row.BNum]
			}
		}

		rows = append(rows, row)
	}

	return rows, hdrs
}

// indentChangeBetween reports how leading indentation moved between two
// whitespace-equivalent lines.
func indentChangeBetween(aLine, bLine string) *IndentChange {
	ac := indentColumns(aLine)
	bc := indentColumns(bLine)
	switch {
	case ac == bc:
		return nil
	case bc > ac:
		return &IndentChange{Indent: true, Columns: bc - ac}
	default:
		return &IndentChange{Indent: false, Columns: ac - bc}
	}
}

func indentColumns(line string) int {
	cols := 0
	for _, r := range line {
		switch r {
		case ' ':
			cols++
		case '\t':
			cols += 8 - cols%8
		default:
			return cols
		}
	}
	return cols
}
