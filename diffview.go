// Package diffview implements the diff engine behind a side-by-side code
// review display: a Myers O(ND) line differ with GNU-diff-style quality
// heuristics, a move-detection and whitespace enrichment pass over the
// resulting edit script, and a chunk assembly layer that produces stable,
// cacheable render-ready chunks with collapsing for long unchanged regions.
//
// Unlike simple Myers implementations, the differ includes:
//   - Preprocessing: discards confusing high-frequency lines that cause
//     spurious matches in pathological files
//   - Heuristics: early termination for expensive comparisons, trading a
//     minimal edit script for denser, more readable chunks
//   - Postprocessing: shifts change boundaries so runs align with matching
//     runs in the other file
//
// File retrieval, syntax highlighting, and persistence are external
// collaborators: callers pass raw line content (plus optional pre-rendered
// markup) in, and consume chunks out.
package diffview

// Tag identifies the type of edit operation.
type Tag int

const (
	// TagEqual means the line ranges are unchanged.
	TagEqual Tag = iota
	// TagInsert means lines were added to B that are not in A.
	TagInsert
	// TagDelete means lines were removed from A that are not in B.
	TagDelete
	// TagReplace means a range in A was replaced by a range in B.
	TagReplace
)

// String returns a string representation of the Tag.
func (t Tag) String() string {
	switch t {
	case TagEqual:
		return "equal"
	case TagInsert:
		return "insert"
	case TagDelete:
		return "delete"
	case TagReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Opcode represents a single edit operation with index ranges.
// [I1,I2) is the affected range in side A, [J1,J2) in side B.
// A full diff is a contiguous, ordered sequence of opcodes whose A ranges
// partition side A exactly, and likewise for B.
type Opcode struct {
	Tag    Tag
	I1, I2 int
	J1, J2 int

	// Meta is populated by the enrichment pass. Nil until enriched.
	Meta *OpcodeMeta
}

// OpcodeMeta carries enrichment data attached to an opcode.
type OpcodeMeta struct {
	// WhitespaceLines lists 1-based (aLine, bLine) pairs within a replace
	// opcode that differ only in whitespace.
	WhitespaceLines [][2]int

	// WhitespaceChunk is true when every line pair in a replace opcode is a
	// whitespace-only change.
	WhitespaceChunk bool

	// Moved maps 1-based line numbers on this opcode's own side to the
	// corresponding 1-based line number on the other side, for lines that
	// were detected as part of a moved block. Present only on insert and
	// delete opcodes correlated to a move.
	Moved map[int]int
}

// settings holds configuration shared across the engine.
type settings struct {
	compatVersion          int
	ignoreSpace            bool
	keepWhitespacePatterns []string

	contextLines      int
	collapseThreshold int // 0 means derive from contextLines

	maxLineLengthForStyling int
	maxFileBytesForStyling  int
	maxDiffLines            int
	maxDiffBytes            int

	lossyDecoding bool
	detectMoves   bool

	templateName    string
	collapseEnabled bool

	headerTable HeaderTable

	// Myers tuning knobs. The defaults are empirically tuned values carried
	// over from the system this engine reproduces; they are exposed as
	// options for parity experiments, not because better values are known.
	useHeuristic  bool
	forceMinimal  bool
	heuristicCost int
	snakeLimit    int
	costFloor     int
}

func defaultSettings() *settings {
	return &settings{
		compatVersion:           CompatMyers,
		ignoreSpace:             true,
		contextLines:            5,
		collapseThreshold:       0,
		maxLineLengthForStyling: 10000,
		maxFileBytesForStyling:  1 << 20,
		maxDiffLines:            200000,
		maxDiffBytes:            1 << 26,
		detectMoves:             true,
		templateName:            "sidebyside",
		collapseEnabled:         true,
		headerTable:             nil, // DefaultHeaderTable, resolved lazily
		useHeuristic:            true,
		heuristicCost:           defaultHeuristicCost,
		snakeLimit:              defaultSnakeLimit,
		costFloor:               defaultCostFloor,
	}
}

// effectiveCollapseThreshold returns the collapse threshold, deriving the
// conventional 2*context+3 when none was set explicitly.
func (s *settings) effectiveCollapseThreshold() int {
	if s.collapseThreshold > 0 {
		return s.collapseThreshold
	}
	return 2*s.contextLines + 3
}

// effectiveIgnoreSpace applies the keep-whitespace path allowlist.
func (s *settings) effectiveIgnoreSpace(path string) bool {
	if !s.ignoreSpace {
		return false
	}
	return !matchesAnyPattern(s.keepWhitespacePatterns, path)
}

func (s *settings) headers() HeaderTable {
	if s.headerTable != nil {
		return s.headerTable
	}
	return DefaultHeaderTable()
}

// Option configures engine behavior.
type Option func(*settings)

// WithCompatVersion selects the differ strategy by compatibility version.
// Unknown versions surface ErrInvalidConfig when the diff runs.
// Default: CompatMyers.
func WithCompatVersion(v int) Option {
	return func(s *settings) { s.compatVersion = v }
}

// WithIgnoreSpace enables or disables whitespace-insensitive line matching.
// When enabled, lines are interned with insignificant leading whitespace
// stripped, so indentation-only changes align as replacements that the
// enrichment pass can flag as whitespace-only.
// Default: true.
func WithIgnoreSpace(enabled bool) Option {
	return func(s *settings) { s.ignoreSpace = enabled }
}

// WithKeepWhitespacePatterns supplies path patterns (filepath.Match syntax)
// for which ignore-space is forced off, e.g. "*.py" for whitespace-significant
// languages. Patterns match against the full path and its base name.
func WithKeepWhitespacePatterns(patterns ...string) Option {
	return func(s *settings) { s.keepWhitespacePatterns = patterns }
}

// WithContextLines sets the number of visible context lines kept around
// changes when a long equal run is collapsed.
// Default: 5.
func WithContextLines(n int) Option {
	return func(s *settings) { s.contextLines = n }
}

// WithCollapseThreshold sets the number of lines an equal run must exceed
// before it is collapsed. 0 derives the conventional 2*context+3.
// Default: 0.
func WithCollapseThreshold(n int) Option {
	return func(s *settings) { s.collapseThreshold = n }
}

// WithStylingLimits bounds the cost of presentation work: lines longer than
// lineLength bytes skip intra-line region diffing, and files larger than
// fileBytes skip caller-supplied markup entirely in favor of plain escaping.
// Default: 10000 and 1MiB.
func WithStylingLimits(lineLength, fileBytes int) Option {
	return func(s *settings) {
		s.maxLineLengthForStyling = lineLength
		s.maxFileBytesForStyling = fileBytes
	}
}

// WithInputLimits sets hard ceilings on input size. Inputs exceeding either
// limit fail fast with ErrInputTooLarge before any working arrays are
// allocated. Zero disables a limit.
// Default: 200000 lines, 64MiB.
func WithInputLimits(lines, bytes int) Option {
	return func(s *settings) {
		s.maxDiffLines = lines
		s.maxDiffBytes = bytes
	}
}

// WithLossyDecoding controls the fallback policy for undecodable content.
// When enabled, invalid UTF-8 byte sequences are replaced with U+FFFD;
// when disabled (the default) they surface ErrEncoding.
func WithLossyDecoding(enabled bool) Option {
	return func(s *settings) { s.lossyDecoding = enabled }
}

// WithTemplateName sets the formatting-mode name mixed into cache keys, so
// chunks rendered for different templates never collide.
// Default: "sidebyside".
func WithTemplateName(name string) Option {
	return func(s *settings) { s.templateName = name }
}

// WithCollapsing enables or disables collapsing of long equal runs. When
// disabled every equal run renders as a single expanded chunk.
// Default: true.
func WithCollapsing(enabled bool) Option {
	return func(s *settings) { s.collapseEnabled = enabled }
}

// WithMoveDetection enables or disables moved-block correlation during
// enrichment.
// Default: true.
func WithMoveDetection(enabled bool) Option {
	return func(s *settings) { s.detectMoves = enabled }
}

// WithHeaderTable supplies the per-extension table of regexes used to track
// function/class headers for collapsed regions. The table is treated as
// immutable once passed in.
// Default: DefaultHeaderTable().
func WithHeaderTable(t HeaderTable) Option {
	return func(s *settings) { s.headerTable = t }
}

// WithHeuristic enables or disables the Myers speed heuristics.
// Default: true.
func WithHeuristic(enabled bool) Option {
	return func(s *settings) { s.useHeuristic = enabled }
}

// WithMinimal forces a minimal edit script even if slow.
// Default: false.
func WithMinimal(minimal bool) Option {
	return func(s *settings) {
		s.forceMinimal = minimal
		if minimal {
			s.useHeuristic = false
		}
	}
}

// WithCostCeiling overrides the hard search-cost ceiling. 0 keeps the
// default max(256, 5*sqrt(4*N)) derived from the input size.
func WithCostCeiling(n int) Option {
	return func(s *settings) { s.costFloor = n }
}

// Diff compares two file contents and returns enriched opcodes.
// It decodes and splits both sides, runs the configured differ strategy,
// and applies the whitespace and move-detection enrichment pass.
func Diff(a, b []byte, opts ...Option) ([]Opcode, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(s)
	}
	return diffWithSettings(a, b, "", s)
}

// DiffLines is like Diff but takes pre-split lines (without terminators).
func DiffLines(a, b []string, opts ...Option) ([]Opcode, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(s)
	}
	if err := checkLineLimits(a, b, s); err != nil {
		return nil, err
	}
	pair := newSequencePair(a, b, s.ignoreSpace)
	return diffPair(pair, s)
}

func diffWithSettings(a, b []byte, path string, s *settings) ([]Opcode, error) {
	if err := checkByteLimits(a, b, s); err != nil {
		return nil, err
	}
	aLines, err := splitLines(a, s.lossyDecoding)
	if err != nil {
		return nil, err
	}
	bLines, err := splitLines(b, s.lossyDecoding)
	if err != nil {
		return nil, err
	}
	if err := checkLineLimits(aLines, bLines, s); err != nil {
		return nil, err
	}
	pair := newSequencePair(aLines, bLines, s.effectiveIgnoreSpace(path))
	return diffPair(pair, s)
}

func diffPair(pair *sequencePair, s *settings) ([]Opcode, error) {
	d, err := newDiffer(s.compatVersion, s)
	if err != nil {
		return nil, err
	}
	ops := d.diff(pair)
	return enrichOpcodes(ops, pair, s.detectMoves), nil
}
