package diffview

// Confusing-line discard.
//
// Before the diagonal search runs, lines that make poor alignment anchors
// are provisionally removed from the search space: lines with no match at
// all in the other file, and lines occurring more than about 5*sqrt(len/64)
// times. A cancellation pass then restores provisional discards that are
// isolated or that would eat too much of a run, so the heuristic only
// bounds cost on pathological files (thousands of identical blank lines)
// without degrading ordinary diffs. Discarded lines are pre-marked changed;
// the search runs on the surviving lines and maps results back through
// realIndexes. This affects only alignment quality and speed, never which
// content is reported.

const (
	lineKeep        = 0
	lineDiscard     = 1 // no match in the other file
	lineProvisional = 2 // too frequent to be a useful anchor
)

// discardConfusingLines populates undiscarded/realIndexes on both sides and
// pre-marks every discarded line as changed.
func discardConfusingLines(a, b *fileData) {
	maxCode := -1
	for _, c := range a.codes {
		maxCode = max(maxCode, c)
	}
	for _, c := range b.codes {
		maxCode = max(maxCode, c)
	}

	aCounts := make([]int, maxCode+1)
	bCounts := make([]int, maxCode+1)
	for _, c := range a.codes {
		aCounts[c]++
	}
	for _, c := range b.codes {
		bCounts[c]++
	}

	aDis := classifyDiscards(a.codes, bCounts)
	bDis := classifyDiscards(b.codes, aCounts)

	cancelDiscards(aDis)
	cancelDiscards(bDis)

	applyDiscards(a, aDis)
	applyDiscards(b, bDis)
}

// discardFrequency returns the occurrence count above which a line is
// provisionally discarded: 5 doubled once per factor of 4 in lines/64,
// approximately 5*sqrt(lines/64).
func discardFrequency(lines int) int {
	many := 5
	for tem := lines / 64; tem > 0; tem /= 4 {
		many *= 2
	}
	return many
}

// classifyDiscards assigns a discard class to every line of one side, based
// on how often its code occurs in the other side.
func classifyDiscards(codes []int, otherCounts []int) []byte {
	dis := make([]byte, len(codes))
	many := discardFrequency(len(codes))
	for i, code := range codes {
		nmatch := otherCounts[code]
		if nmatch == 0 {
			dis[i] = lineDiscard
		} else if nmatch > many {
			dis[i] = lineProvisional
		}
	}
	return dis
}

// cancelDiscards keeps provisional discards only when they sit inside a run
// of discardable lines anchored by unmatched lines at both ends, the run is
// not mostly provisional, and the provisional subruns are short relative to
// the run length.
func cancelDiscards(dis []byte) {
	end := len(dis)
	for i := 0; i < end; i++ {
		if dis[i] == lineProvisional {
			// Not in the middle of a run of discards.
			dis[i] = lineKeep
		} else if dis[i] != lineKeep {
			// Find the end of this run of discardable lines and count the
			// provisional ones.
			j := i
			provisional := 0
			for j < end && dis[j] != lineKeep {
				if dis[j] == lineProvisional {
					provisional++
				}
				j++
			}

			// Cancel provisional discards at the end, shrinking the run.
			for j > i && dis[j-1] == lineProvisional {
				j--
				dis[j] = lineKeep
				provisional--
			}

			length := j - i

			if provisional*4 > length {
				// Discarding would remove more than 1/4 of the run: cancel
				// all provisional discards in it.
				for k := i; k < j; k++ {
					if dis[k] == lineProvisional {
						dis[k] = lineKeep
					}
				}
			} else {
				// minimum is roughly sqrt(length/4): a provisional subrun of
				// two or more stands when length >= 16, of four or more when
				// length >= 64.
				minimum := 1
				for tem := length / 4; tem > 0; tem /= 4 {
					minimum *= 2
				}
				minimum++

				// Cancel any subrun of minimum or more provisionals.
				consec := 0
				for k := 0; k < length; k++ {
					if dis[i+k] != lineProvisional {
						consec = 0
					} else if consec++; consec == minimum {
						// Back up to the start of the subrun to cancel it all.
						k -= consec
					} else if consec > minimum {
						dis[i+k] = lineKeep
					}
				}

				// Scan from the beginning of the run, cancelling provisionals
				// until three or more unmatched lines appear in a row or an
				// unmatched line shows up at least eight lines in.
				consec = 0
				for k := 0; k < length; k++ {
					if k >= 8 && dis[i+k] == lineDiscard {
						break
					}
					switch dis[i+k] {
					case lineProvisional:
						consec = 0
						dis[i+k] = lineKeep
					case lineKeep:
						consec = 0
					default:
						consec++
					}
					if consec == 3 {
						break
					}
				}

				// Move to the last line of the run and repeat from the end.
				i += length - 1
				consec = 0
				for k := 0; k < length; k++ {
					if k >= 8 && dis[i-k] == lineDiscard {
						break
					}
					switch dis[i-k] {
					case lineProvisional:
						consec = 0
						dis[i-k] = lineKeep
					case lineKeep:
						consec = 0
					default:
						consec++
					}
					if consec == 3 {
						break
					}
				}
				continue
			}
			i = j - 1
		}
	}
}

// applyDiscards builds the surviving-code arrays and pre-marks discarded
// lines as changed.
func applyDiscards(f *fileData, dis []byte) {
	f.undiscarded = make([]int, 0, len(f.codes))
	f.realIndexes = make([]int, 0, len(f.codes))
	for i, code := range f.codes {
		if dis[i] == lineKeep {
			f.undiscarded = append(f.undiscarded, code)
			f.realIndexes = append(f.realIndexes, i)
		} else {
			f.changed[i] = true
		}
	}
}
