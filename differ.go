package diffview

// Compatibility versions. Each version pins a differ strategy whose output
// is bit-for-bit stable, so chunks computed under an old version can be
// reproduced exactly. New strategies get a new constant; versions are a
// closed set, never sniffed at runtime.
const (
	// CompatSequenceMatcher is the historical sequence-matcher differ.
	CompatSequenceMatcher = 0
	// CompatMyers is the Myers differ with GNU-diff-style heuristics.
	CompatMyers = 1

	// LatestCompatVersion is the strategy used when none is requested.
	LatestCompatVersion = CompatMyers
)

// differ computes raw (unenriched) opcodes over an interned pair.
//
// Contract: the returned opcodes are ordered left to right, contiguous, and
// partition [0,len(a)) and [0,len(b)) exactly, with no empty-range opcodes.
// Two empty inputs yield no opcodes.
type differ interface {
	diff(p *sequencePair) []Opcode
}

// newDiffer selects a differ strategy by compat version.
func newDiffer(version int, s *settings) (differ, error) {
	switch version {
	case CompatSequenceMatcher:
		return &matcherDiffer{}, nil
	case CompatMyers:
		return &myersDiffer{
			useHeuristic:  s.useHeuristic,
			forceMinimal:  s.forceMinimal,
			heuristicCost: s.heuristicCost,
			snakeLimit:    s.snakeLimit,
			costFloor:     s.costFloor,
		}, nil
	default:
		return nil, errUnknownCompatVersion(version)
	}
}
