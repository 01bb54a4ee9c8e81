package diffview

// Boundary shifting.
//
// After the search marks changed lines, adjacent identical lines at the
// edges of a changed run leave several equally valid placements for the
// run. Sliding the run among those placements merges cosmetically split
// chunks and, where possible, lines the run up with a changed run in the
// other file. This is what turns a mathematically minimal but ugly edit
// script into the diff a reviewer expects to see.

// shiftChunks slides the changed runs of f, consulting the change marks of
// the other side for alignment. Call once per side.
func shiftChunks(f, other *fileData) {
	changed := f.changed
	equivs := f.codes
	iEnd := len(changed)

	// Out-of-range positions read as unchanged, standing in for the
	// sentinel entries the reference algorithm keeps around its arrays.
	oc := func(idx int) bool { return idx >= 0 && idx < len(other.changed) && other.changed[idx] }
	ch := func(idx int) bool { return idx >= 0 && idx < iEnd && changed[idx] }

	i, j := 0, 0
	for {
		// Scan forward to find the beginning of another run of changes,
		// keeping track of the corresponding point in the other file.
		for i < iEnd && !changed[i] {
			for oc(j) {
				j++
			}
			j++
			i++
		}
		if i == iEnd {
			break
		}

		start := i

		// Find the end of this run of changes.
		for i++; ch(i); i++ {
		}
		for oc(j) {
			j++
		}

		var corresponding int
		for {
			runlength := i - start

			// Move the changed region back while the previous unchanged
			// line matches the last changed one. This merges with previous
			// changed regions.
			for start > 0 && equivs[start-1] == equivs[i-1] {
				start--
				changed[start] = true
				i--
				changed[i] = false
				for ch(start - 1) {
					start--
				}
				for j--; oc(j); j-- {
				}
			}

			// corresponding is the end of the changed run at the last
			// point where it lines up with a changed run in the other
			// file; iEnd means no such point has been found.
			corresponding = iEnd
			if oc(j - 1) {
				corresponding = i
			}

			// Move the changed region forward while the first changed line
			// matches the following unchanged one. This merges with
			// following changed regions. Done second, so that when nothing
			// merges, the run ends up as far forward as possible.
			for i < iEnd && equivs[start] == equivs[i] {
				changed[start] = false
				start++
				changed[i] = true
				i++
				for ch(i) {
					i++
				}
				for j++; oc(j); j++ {
					corresponding = i
				}
			}

			if runlength == i-start {
				break
			}
		}

		// If possible, move the fully merged run back to line up with a
		// corresponding run in the other file.
		for corresponding < i {
			start--
			changed[start] = true
			i--
			changed[i] = false
			for j--; oc(j); j-- {
			}
		}
	}
}
