package diffview

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// engineVersion participates in every cache key, so chunks cached by an
// older engine revision are recomputed rather than served once diff or
// enrichment logic changes. Bump on any behavior change.
const engineVersion = 1

// DiffFile describes one file pair to render. ID identifies this exact
// content pair (for example "rev1:rev2" plus a file hash); BaseID is the
// extra identity for cross-revision interdiff views. AMarkup/BMarkup are
// optional highlighter output with exactly one entry per line.
type DiffFile struct {
	Path   string
	ID     string
	BaseID string

	A, B []byte

	AMarkup, BMarkup []string
}

// Renderer orchestrates chunk computation through a cache. It owns no
// state besides its settings; all mutation happens behind the Cache.
type Renderer struct {
	cache Cache
	s     *settings
}

// NewRenderer constructs a renderer over the given cache. A nil cache gets
// a private MemoryCache.
func NewRenderer(cache Cache, opts ...Option) *Renderer {
	s := defaultSettings()
	for _, opt := range opts {
		opt(s)
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Renderer{cache: cache, s: s}
}

// Chunks returns all chunks for the file, computing them once per cache key
// and serving the cached list afterwards.
func (r *Renderer) Chunks(f DiffFile) ([]Chunk, error) {
	return r.cache.GetOrCompute(r.cacheKey(f, ""), func() ([]Chunk, error) {
		return r.computeChunks(f)
	})
}

// Chunk returns the single chunk at index. Indexes outside [0,chunkCount)
// are a caller error, not a crash.
func (r *Renderer) Chunk(f DiffFile, index int) (Chunk, error) {
	chunks, err := r.Chunks(f)
	if err != nil {
		return Chunk{}, err
	}
	if index < 0 || index >= len(chunks) {
		return Chunk{}, errChunkIndex(index, len(chunks))
	}
	return chunks[index], nil
}

// ExpandChunk renders the chunk at index with `above` lines visible at its
// top edge and `below` at the bottom, keeping the middle collapsed. Header
// metadata is re-derived for the newly exposed edges. When the requested
// context would expose the whole chunk anyway, the chunk is returned whole,
// still collapsed.
func (r *Renderer) ExpandChunk(f DiffFile, index, above, below int) ([]Chunk, error) {
	chunks, err := r.Chunks(f)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(chunks) {
		return nil, errChunkIndex(index, len(chunks))
	}

	key := r.cacheKey(f, fmt.Sprintf("chunk%d-expand%d.%d", index, above, below))
	return r.cache.GetOrCompute(key, func() ([]Chunk, error) {
		return expandChunk(chunks[index], above, below), nil
	})
}

func (r *Renderer) computeChunks(f DiffFile) ([]Chunk, error) {
	s := r.s
	if err := checkByteLimits(f.A, f.B, s); err != nil {
		return nil, err
	}
	aLines, err := splitLines(f.A, s.lossyDecoding)
	if err != nil {
		return nil, err
	}
	bLines, err := splitLines(f.B, s.lossyDecoding)
	if err != nil {
		return nil, err
	}
	if err := checkLineLimits(aLines, bLines, s); err != nil {
		return nil, err
	}

	pair := newSequencePair(aLines, bLines, s.effectiveIgnoreSpace(f.Path))
	ops, err := diffPair(pair, s)
	if err != nil {
		return nil, err
	}

	a := SideContent{Lines: aLines, Markup: f.AMarkup}
	b := SideContent{Lines: bLines, Markup: f.BMarkup}
	if s.maxFileBytesForStyling > 0 && len(f.A)+len(f.B) > s.maxFileBytesForStyling {
		// Too big to style: fall back to plain escaped lines.
		a.Markup = nil
		b.Markup = nil
	}

	return (&Assembler{s: s}).Assemble(ops, a, b, f.Path)
}

// cacheKey derives the cache key for one rendering of one file. Any change
// to the file identities, the formatting mode, the collapse mode, the
// settings fingerprint, or the engine version yields a different key.
func (r *Renderer) cacheKey(f DiffFile, variant string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "diffchunks-v%d-%s-%s", engineVersion, r.s.templateName, f.ID)
	if f.BaseID != "" {
		fmt.Fprintf(&b, "-base-%s", f.BaseID)
	}
	if variant != "" {
		b.WriteByte('-')
		b.WriteString(variant)
	}
	fmt.Fprintf(&b, "-collapse%t-%x", r.s.collapseEnabled, r.settingsFingerprint(f.Path))
	return b.String()
}

// EquivalenceFingerprint identifies the exact chunk output this renderer
// produces for the given path: same fingerprint, same chunks for the same
// content. External stores can key or invalidate persisted chunks by it.
func (r *Renderer) EquivalenceFingerprint(path string) string {
	return fmt.Sprintf("v%d-%s-%x", engineVersion, r.s.templateName, r.settingsFingerprint(path))
}

// settingsFingerprint hashes every setting that affects chunk output.
func (r *Renderer) settingsFingerprint(path string) uint64 {
	s := r.s
	h := fnv.New64a()
	fmt.Fprintf(h, "%d|%t|%d|%d|%d|%d|%d|%d|%t|%t|%t|%t|%d|%d|%d",
		s.compatVersion,
		s.effectiveIgnoreSpace(path),
		s.contextLines,
		s.effectiveCollapseThreshold(),
		s.maxLineLengthForStyling,
		s.maxFileBytesForStyling,
		s.maxDiffLines,
		s.maxDiffBytes,
		s.lossyDecoding,
		s.detectMoves,
		s.useHeuristic,
		s.forceMinimal,
		s.heuristicCost,
		s.snakeLimit,
		s.costFloor,
	)
	return h.Sum64()
}

// expandChunk splits one chunk into visible edges and a collapsed middle,
// re-deriving header metadata for each piece from the parent chunk's
// recorded headers.
func expandChunk(c Chunk, above, below int) []Chunk {
	above = max(above, 0)
	below = max(below, 0)
	if above+below >= c.NumLines {
		// Expanding would expose the entire chunk; keep it collapsed whole.
		return []Chunk{c}
	}

	lastLeft, lastRight := Header{}, Header{}
	if c.Meta.Headers != nil {
		lastLeft = c.Meta.Headers.Left
		lastRight = c.Meta.Headers.Right
	}

	var out []Chunk
	piece := func(lo, hi int, collapsable bool) {
		if lo >= hi {
			return
		}
		rows := c.Lines[lo:hi]
		p := Chunk{
			Index:       c.Index,
			Change:      c.Change,
			Lines:       rows,
			NumLines:    hi - lo,
			Collapsable: collapsable,
		}
		p.Meta.Headers = &HeaderPair{Left: lastLeft, Right: lastRight}

		aLo, aHi := sideBounds(rows, func(row LineRow) int { return row.ANum })
		for _, h := range c.Meta.LeftHeaders {
			if h.Line >= aLo && h.Line <= aHi {
				p.Meta.LeftHeaders = append(p.Meta.LeftHeaders, h)
				lastLeft = h
			}
		}
		bLo, bHi := sideBounds(rows, func(row LineRow) int { return row.BNum })
		for _, h := range c.Meta.RightHeaders {
			if h.Line >= bLo && h.Line <= bHi {
				p.Meta.RightHeaders = append(p.Meta.RightHeaders, h)
				lastRight = h
			}
		}

		out = append(out, p)
	}

	piece(0, above, false)
	piece(above, c.NumLines-below, true)
	piece(c.NumLines-below, c.NumLines, false)
	return out
}

// sideBounds returns the first and last nonzero line numbers of one side
// within rows. Returns the empty range (1, 0) when the side is absent.
func sideBounds(rows []LineRow, num func(LineRow) int) (int, int) {
	lo, hi := 1, 0
	for _, row := range rows {
		if n := num(row); n > 0 {
			if hi == 0 {
				lo = n
			}
			hi = n
		}
	}
	return lo, hi
}
