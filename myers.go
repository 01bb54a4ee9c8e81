package diffview

// myersDiffer implements the primary differ strategy: Myers' O(ND)
// shortest-edit-script algorithm with the discard, early-termination, and
// boundary-shifting heuristics of GNU diff.
type myersDiffer struct {
	useHeuristic  bool
	forceMinimal  bool
	heuristicCost int
	snakeLimit    int
	costFloor     int
}

// fileData is the per-side working state for one computation. It is created
// at the start of a diff and discarded once opcodes are extracted.
type fileData struct {
	codes   []int  // interned code per line
	changed []bool // dense per-line change marks, indexed by line position

	// Populated by the discard pass: the codes that survived, and the
	// mapping from surviving positions back to real line indices.
	undiscarded []int
	realIndexes []int
}

func newFileData(codes []int) *fileData {
	return &fileData{
		codes:   codes,
		changed: make([]bool, len(codes)),
	}
}

// myersState holds the search state for one invocation. The diagonal
// vectors are exclusively owned by this invocation and never escape it.
type myersState struct {
	cfg  *myersDiffer
	a, b *fileData

	fdiag, bdiag []int // forward/backward diagonal vectors
	diagOffset   int

	maxCost int // hard search-cost ceiling
}

func (d *myersDiffer) diff(p *sequencePair) []Opcode {
	a := newFileData(p.aCodes)
	b := newFileData(p.bCodes)

	if len(a.codes) == 0 && len(b.codes) == 0 {
		return nil
	}

	discardConfusingLines(a, b)

	n := len(a.undiscarded)
	m := len(b.undiscarded)

	st := &myersState{
		cfg:        d,
		a:          a,
		b:          b,
		fdiag:      make([]int, n+m+3),
		bdiag:      make([]int, n+m+3),
		diagOffset: m + 1,
		maxCost:    costCeiling(d.costFloor, n+m),
	}
	st.compareSeq(0, n, 0, m, d.forceMinimal)

	shiftChunks(a, b)
	shiftChunks(b, a)

	return buildOpcodes(a, b)
}

// costCeiling computes the hard ceiling on search cost: max(floor, 5*sqrt(4*N)).
// Past this the search gives up and splits at the best halfway point found.
func costCeiling(floor, total int) int {
	c := 5 * isqrt(4*total)
	if c < floor {
		c = floor
	}
	return c
}

// equal reports whether undiscarded element i of A matches element j of B.
func (st *myersState) equal(i, j int) bool {
	return st.a.undiscarded[i] == st.b.undiscarded[j]
}

// markChangedA marks undiscarded A elements [xoff,xlim) as changed,
// translating back to real line indices.
func (st *myersState) markChangedA(xoff, xlim int) {
	for i := xoff; i < xlim; i++ {
		st.a.changed[st.a.realIndexes[i]] = true
	}
}

// markChangedB marks undiscarded B elements [yoff,ylim) as changed.
func (st *myersState) markChangedB(yoff, ylim int) {
	for j := yoff; j < ylim; j++ {
		st.b.changed[st.b.realIndexes[j]] = true
	}
}

// compareSeq is the divide-and-conquer core. It compares the undiscarded
// ranges [xoff,xlim) of A with [yoff,ylim) of B and records change marks.
func (st *myersState) compareSeq(xoff, xlim, yoff, ylim int, findMinimal bool) {
	// Trim matching elements from the start.
	for xoff < xlim && yoff < ylim && st.equal(xoff, yoff) {
		xoff++
		yoff++
	}

	// Trim matching elements from the end.
	for xoff < xlim && yoff < ylim && st.equal(xlim-1, ylim-1) {
		xlim--
		ylim--
	}

	// Base cases: one side exhausted.
	if xoff == xlim {
		st.markChangedB(yoff, ylim)
		return
	}
	if yoff == ylim {
		st.markChangedA(xoff, xlim)
		return
	}

	// Find the middle snake and recurse on both halves.
	part := st.findMiddleSnake(xoff, xlim, yoff, ylim, findMinimal)
	st.compareSeq(xoff, part.xmid, yoff, part.ymid, part.loMinimal)
	st.compareSeq(part.xmid, xlim, part.ymid, ylim, part.hiMinimal)
}

// buildOpcodes converts the change marks into ordered opcodes. Adjacent
// delete and insert runs merge into a single replace.
func buildOpcodes(a, b *fileData) []Opcode {
	var ops []Opcode
	n := len(a.codes)
	m := len(b.codes)
	i, j := 0, 0

	for i < n || j < m {
		// Equal run.
		eqI, eqJ := i, j
		for i < n && j < m && !a.changed[i] && !b.changed[j] {
			i++
			j++
		}
		if i > eqI {
			ops = append(ops, Opcode{Tag: TagEqual, I1: eqI, I2: i, J1: eqJ, J2: j})
		}

		// Changed run on each side.
		delStart := i
		for i < n && a.changed[i] {
			i++
		}
		insStart := j
		for j < m && b.changed[j] {
			j++
		}

		switch {
		case i > delStart && j > insStart:
			ops = append(ops, Opcode{Tag: TagReplace, I1: delStart, I2: i, J1: insStart, J2: j})
		case i > delStart:
			ops = append(ops, Opcode{Tag: TagDelete, I1: delStart, I2: i, J1: j, J2: j})
		case j > insStart:
			ops = append(ops, Opcode{Tag: TagInsert, I1: i, I2: i, J1: insStart, J2: j})
		}
	}

	return ops
}

// isqrt computes the integer square root using Newton's method.
func isqrt(n int) int {
	if n <= 0 {
		return 0
	}
	if n == 1 {
		return 1
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
