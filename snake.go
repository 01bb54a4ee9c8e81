package diffview

// Heuristic thresholds.
//
// These are the empirically tuned constants of GNU diff's diagonal search
// (Myers 1986, "An O(ND) Difference Algorithm and Its Variations", plus the
// heuristics described in the GNU diffutils source). They are preserved
// as-is for behavior parity rather than re-derived; override through options
// only for parity experiments.
const (
	// defaultSnakeLimit is the minimum length of a diagonal run (matching
	// lines) that counts as a "big snake": evidence that the search has
	// found significant alignment and may terminate early.
	defaultSnakeLimit = 20

	// defaultHeuristicCost is the search cost after which, if a big snake
	// was seen, the search settles for the diagonal that made
	// disproportionate progress instead of continuing toward minimality.
	defaultHeuristicCost = 200

	// defaultCostFloor is the lower bound for the hard cost ceiling
	// max(floor, 5*sqrt(4*N)).
	defaultCostFloor = 256
)

const maxInt = int(^uint(0) >> 1)

// partition holds the result from findMiddleSnake: the midpoint where the
// edit path splits, and whether each half still needs a minimal search.
type partition struct {
	xmid, ymid int
	loMinimal  bool
	hiMinimal  bool
}

// findMiddleSnake implements the bidirectional search from Myers' paper over
// the undiscarded ranges [xoff,xlim) x [yoff,ylim). Coordinates are
// absolute. It never loops forever: either the frontiers overlap, a
// heuristic fires, or the cost ceiling forces a halfway split.
func (st *myersState) findMiddleSnake(xoff, xlim, yoff, ylim int, findMinimal bool) partition {
	fd := st.fdiag
	bd := st.bdiag
	off := st.diagOffset
	av := st.a.undiscarded
	bv := st.b.undiscarded
	snakeLimit := st.cfg.snakeLimit

	dmin := xoff - ylim // minimum valid diagonal
	dmax := xlim - yoff // maximum valid diagonal
	fmid := xoff - yoff // center diagonal of the forward search
	bmid := xlim - ylim // center diagonal of the backward search
	fmin, fmax := fmid, fmid
	bmin, bmax := bmid, bmid
	odd := (fmid-bmid)&1 != 0

	fd[off+fmid] = xoff
	bd[off+bmid] = xlim

	for c := 1; ; c++ {
		bigSnake := false

		// Extend the forward search by one edit step in each diagonal.
		if fmin > dmin {
			fmin--
			fd[off+fmin-1] = -1
		} else {
			fmin++
		}
		if fmax < dmax {
			fmax++
			fd[off+fmax+1] = -1
		} else {
			fmax--
		}
		for d := fmax; d >= fmin; d -= 2 {
			tlo, thi := fd[off+d-1], fd[off+d+1]
			x := thi
			if tlo >= thi {
				x = tlo + 1
			}
			oldx := x
			y := x - d
			for x < xlim && y < ylim && av[x] == bv[y] {
				x++
				y++
			}
			if x-oldx > snakeLimit {
				bigSnake = true
			}
			fd[off+d] = x
			if odd && bmin <= d && d <= bmax && bd[off+d] <= x {
				return partition{xmid: x, ymid: y, loMinimal: true, hiMinimal: true}
			}
		}

		// Similarly extend the backward search.
		if bmin > dmin {
			bmin--
			bd[off+bmin-1] = maxInt
		} else {
			bmin++
		}
		if bmax < dmax {
			bmax++
			bd[off+bmax+1] = maxInt
		} else {
			bmax--
		}
		for d := bmax; d >= bmin; d -= 2 {
			tlo, thi := bd[off+d-1], bd[off+d+1]
			x := thi - 1
			if tlo < thi {
				x = tlo
			}
			oldx := x
			y := x - d
			for x > xoff && y > yoff && av[x-1] == bv[y-1] {
				x--
				y--
			}
			if oldx-x > snakeLimit {
				bigSnake = true
			}
			bd[off+d] = x
			if !odd && fmin <= d && d <= fmax && x <= fd[off+d] {
				return partition{xmid: x, ymid: y, loMinimal: true, hiMinimal: true}
			}
		}

		if findMinimal {
			continue
		}

		// Heuristic: look for a diagonal that has made lots of progress
		// relative to the edit cost. Requires a snake of snakeLimit
		// matches ending (forward) or starting (backward) at the point, so
		// the split lands on real alignment rather than noise.
		if st.cfg.useHeuristic && c > st.cfg.heuristicCost && bigSnake {
			best := 0
			var px, py int
			for d := fmax; d >= fmin; d -= 2 {
				dd := d - fmid
				x := fd[off+d]
				y := x - d
				v := (x-xoff)*2 - dd
				if v > 12*(c+abs(dd)) &&
					v > best &&
					xoff+snakeLimit <= x && x < xlim &&
					yoff+snakeLimit <= y && y < ylim {
					for k := 1; av[x-k] == bv[y-k]; k++ {
						if k == snakeLimit {
							best = v
							px, py = x, y
							break
						}
					}
				}
			}
			if best > 0 {
				return partition{xmid: px, ymid: py, loMinimal: true, hiMinimal: false}
			}

			best = 0
			for d := bmax; d >= bmin; d -= 2 {
				dd := d - bmid
				x := bd[off+d]
				y := x - d
				v := (xlim-x)*2 + dd
				if v > 12*(c+abs(dd)) &&
					v > best &&
					xoff < x && x <= xlim-snakeLimit &&
					yoff < y && y <= ylim-snakeLimit {
					for k := 0; av[x+k] == bv[y+k]; k++ {
						if k == snakeLimit-1 {
							best = v
							px, py = x, y
							break
						}
					}
				}
			}
			if best > 0 {
				return partition{xmid: px, ymid: py, loMinimal: false, hiMinimal: true}
			}
		}

		// We've gone well beyond the call of duty: give up and split
		// halfway between the best points found on each frontier. The
		// result is correct but not necessarily minimal.
		if c >= st.maxCost {
			// Forward diagonal that maximizes x+y.
			fxybest, fxbest := -1, 0
			for d := fmax; d >= fmin; d -= 2 {
				x := min(fd[off+d], xlim)
				y := x - d
				if ylim < y {
					x = ylim + d
					y = ylim
				}
				if fxybest < x+y {
					fxybest = x + y
					fxbest = x
				}
			}

			// Backward diagonal that minimizes x+y.
			bxybest, bxbest := maxInt, 0
			for d := bmax; d >= bmin; d -= 2 {
				x := max(bd[off+d], xoff)
				y := x - d
				if y < yoff {
					x = yoff + d
					y = yoff
				}
				if x+y < bxybest {
					bxybest = x + y
					bxbest = x
				}
			}

			if (xlim+ylim)-bxybest < fxybest-(xoff+yoff) {
				return partition{xmid: fxbest, ymid: fxybest - fxbest, loMinimal: true, hiMinimal: false}
			}
			return partition{xmid: bxbest, ymid: bxybest - bxbest, loMinimal: false, hiMinimal: true}
		}
	}
}
