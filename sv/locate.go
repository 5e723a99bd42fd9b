package sv

import (
	"strings"

	"github.com/grailbio/svremap/align"
)

// region is a stretch of a reference slice, inclusive at both ends.
type region struct {
	start, end int
}

// mergeRegions collapses approximate-match hits into one region.  Each hit
// joins the region if both its start and end lie within tol of the region's
// start and current end; the region then extends to the hit's end.  Any
// other hit makes the set ambiguous and ok is false.
func mergeRegions(locs []align.Location, tol int) (r region, ok bool) {
	if len(locs) == 0 {
		return region{}, false
	}
	r = region{locs[0].Start, locs[0].End}
	for _, l := range locs {
		if abs(l.Start-r.start) >= tol || abs(l.End-r.end) >= tol {
			return region{}, false
		}
		r.end = l.End
	}
	return r, true
}

type locateStatus int

const (
	located locateStatus = iota
	// unresolvedReference: the slice is empty or bounded by gap bases.
	unresolvedReference
	// noCandidate: the clip matched nowhere or in several distinct places.
	noCandidate
)

// window is a reference window fetched once for a group of events.
type window struct {
	chr   string
	start int
	seq   string // uppercase
}

// locateCandidate narrows the window to the stretch where clip most likely
// aligns.  It searches a slice of ±SliceFlank around pos, clamped to the
// window, and returns the absolute start of the candidate stretch and its
// sequence.
func (r *Remapper) locateCandidate(clip string, w window, pos int) (refStart int, refSeq string, status locateStatus) {
	sliceStart := pos - r.opts.SliceFlank - w.start
	if sliceStart < 0 {
		sliceStart = 0
	}
	sliceEnd := pos + r.opts.SliceFlank - w.start
	if sliceEnd > len(w.seq) {
		sliceEnd = len(w.seq)
	}
	if sliceEnd <= sliceStart {
		return 0, "", unresolvedReference
	}
	slice := w.seq[sliceStart:sliceEnd]
	if slice[0] == 'N' || slice[len(slice)-1] == 'N' {
		return 0, "", unresolvedReference
	}
	_, locs := align.Locate(strings.ToUpper(clip), slice)
	reg, ok := mergeRegions(locs, r.opts.Thresholds.MergeTolerance)
	if !ok {
		return 0, "", noCandidate
	}
	return w.start + sliceStart + reg.start, slice[reg.start : reg.end+1], located
}
