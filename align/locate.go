package align

// Location is a stretch of the target, 0-based and inclusive at both ends,
// that the query matches at minimal edit distance.
type Location struct {
	Start, End int
}

// Locate finds the occurrences of query inside target with the fewest edits
// (unit-cost substitutions, insertions and deletions), where target bases
// before and after the occurrence are free.  It returns that edit distance and
// one Location per target position at which a best-scoring occurrence ends,
// in increasing order of End.  For each end, Start is the smallest start
// reaching the same distance, i.e. the longest occurrence wins.
//
// Locate returns (-1, nil) if either sequence is empty.
func Locate(query, target string) (int, []Location) {
	m, n := len(query), len(target)
	if m == 0 || n == 0 {
		return -1, nil
	}
	// Column-wise DP over the target; col[i] is the best cost of aligning
	// query[:i] so that it ends at the current target position.
	col := make([]int, m+1)
	next := make([]int, m+1)
	for i := range col {
		col[i] = i
	}
	ends := make([]int, n)
	for j := 1; j <= n; j++ {
		t := target[j-1]
		next[0] = 0
		for i := 1; i <= m; i++ {
			v := col[i-1]
			if query[i-1] != t {
				v++
			}
			if up := next[i-1] + 1; up < v {
				v = up
			}
			if left := col[i] + 1; left < v {
				v = left
			}
			next[i] = v
		}
		col, next = next, col
		ends[j-1] = col[m]
	}
	best := ends[0]
	for _, d := range ends[1:] {
		if d < best {
			best = d
		}
	}
	var locs []Location
	for e, d := range ends {
		if d == best {
			locs = append(locs, Location{Start: leftmostStart(query, target, e, best), End: e})
		}
	}
	return best, locs
}

// leftmostStart returns the smallest s such that query aligns globally to
// target[s:end+1] with dist edits.  The alignment is computed backwards from
// end, so both sequences are walked in reverse.
func leftmostStart(query, target string, end, dist int) int {
	m := len(query)
	maxSpan := m + dist
	if maxSpan > end+1 {
		maxSpan = end + 1
	}
	// row[p] is the cost of aligning the last i query bases against the p
	// target bases ending at end.
	row := make([]int, maxSpan+1)
	next := make([]int, maxSpan+1)
	for p := range row {
		row[p] = p
	}
	for i := 1; i <= m; i++ {
		q := query[m-i]
		next[0] = i
		for p := 1; p <= maxSpan; p++ {
			v := row[p-1]
			if q != target[end-p+1] {
				v++
			}
			if up := row[p] + 1; up < v {
				v = up
			}
			if left := next[p-1] + 1; left < v {
				v = left
			}
			next[p] = v
		}
		row, next = next, row
	}
	for p := maxSpan; p >= 1; p-- {
		if row[p] == dist {
			return end - p + 1
		}
	}
	return end
}
