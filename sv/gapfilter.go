package sv

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/svremap/interval"
)

// atGapRisk reports whether e is large enough, and unobserved enough, to be
// checked for nearby reference gaps.
func atGapRisk(e *Event, opts Opts) bool {
	if e.Spanning > 0 {
		return false
	}
	if e.A.Chr != e.B.Chr {
		return true
	}
	if opts.PairedEnd {
		if e.SVType == INS {
			return e.SVLen >= opts.MinGapInsLen
		}
		return e.SVLen >= opts.MinGapSVLen
	}
	return e.SVLen >= opts.MinGapSVLen
}

func insideGap(gaps *interval.BEDUnion, bp Breakpoint) bool {
	return bp.Pos >= 0 && gaps.ContainsByName(bp.Chr, interval.PosType(bp.Pos))
}

// DropNearReferenceGaps removes events whose breakpoints lie next to an
// assembly gap.  The reference is read in windows of ±Opts.GapFlank around
// each breakpoint, merged where they overlap; every event with a breakpoint in
// a window whose first, middle or last base is N is dropped.  If gaps is
// non-nil, events with a breakpoint window intersecting one of its intervals
// are dropped as well, and so are events with a breakpoint inside one of its
// intervals whatever their size.
//
// Events with spanning reads are never dropped, nor are intra-chromosomal
// events below the size floor (see Opts.MinGapInsLen and Opts.MinGapSVLen).
// Windows that cannot be fetched are logged and ignored.  It returns the
// remaining events in input order and the number dropped.
func DropNearReferenceGaps(events []*Event, ref Reference, gaps *interval.BEDUnion, opts Opts) ([]*Event, int) {
	var spans []interval.Span
	bad := map[int]bool{}
	for i, e := range events {
		if gaps != nil && e.Spanning == 0 && (insideGap(gaps, e.A) || insideGap(gaps, e.B)) {
			bad[i] = true
			continue
		}
		if !atGapRisk(e, opts) {
			continue
		}
		for _, bp := range []Breakpoint{e.A, e.B} {
			start, end := bp.Pos-opts.GapFlank, bp.Pos+opts.GapFlank
			if gaps != nil && gaps.IntersectsByName(bp.Chr, interval.PosType(max(start, 0)), interval.PosType(end)) {
				bad[i] = true
			}
			spans = append(spans, interval.Span{Chr: bp.Chr, Start: start, End: end, ID: i})
		}
	}
	if len(spans) == 0 && len(bad) == 0 {
		return events, 0
	}

	for _, w := range interval.Merge(spans, 0) {
		var ids []int
		for _, i := range w.IDs {
			if !bad[i] {
				ids = append(ids, i)
			}
		}
		if len(ids) == 0 {
			continue
		}
		seq, err := fetchWindow(ref, w)
		if err != nil {
			log.Error.Printf("sv gap filter: skipping %s:%d-%d: %v", w.Chr, w.Start, w.End, err)
			continue
		}
		if seq[0] == 'N' || seq[len(seq)-1] == 'N' || seq[len(seq)/2] == 'N' {
			for _, i := range ids {
				bad[i] = true
			}
		}
	}

	out := make([]*Event, 0, len(events))
	for i, e := range events {
		if !bad[i] {
			out = append(out, e)
		}
	}
	log.Printf("N near gaps dropped %d", len(bad))
	return out, len(bad)
}
