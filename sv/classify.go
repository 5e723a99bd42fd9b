package sv

import (
	"strings"

	"github.com/grailbio/base/log"
	"github.com/grailbio/svremap/align"
)

// Alignment rejection codes returned by filterAlignment.
const (
	rejectNoAlignment      = -1 // nothing aligned
	rejectFloating         = -2 // unanchored at both clip ends
	rejectUnmappedAtBreak  = -3 // overlaps the breakpoint, too much clip left over
	rejectUnmappedFloating = -4 // overhangs at both ends, too much clip left over
	rejectLowScoreOrSpan   = -5
	rejectLowScore         = -6
	acceptOverlappingBreak = 1
)

// filterAlignment decides whether a clip alignment is trustworthy.  refBegin
// and refEnd are the absolute reference bounds of the alignment and pos the
// breakpoint.  It returns a negative rejection code, or a non-negative
// distance proxy where smaller means a tighter match.
func filterAlignment(a align.Alignment, clipLen, refBegin, refEnd, pos int, th Thresholds) int {
	if a.AlignedRef == "" || a.AlignedRead == "" {
		return rejectNoAlignment
	}
	if a.ReadBegin > th.MaxFloatingOverhang && clipLen-a.ReadEnd > th.MaxFloatingOverhang {
		return rejectFloating
	}
	span := a.ReadEnd + 1 - a.ReadBegin
	unmapped := float64(clipLen - span)
	score := a.Score
	if min(abs(refBegin-pos), abs(refEnd-pos)) > th.FarFromBreak {
		score -= th.FarFromBreakPenalty
	}
	if score <= th.MinOverlapScore {
		return rejectLowScore
	}
	if overlaps(refBegin-1, refEnd+1, pos, pos+1) {
		if unmapped > float64(span)*th.MaxUnmappedFraction && a.Score < th.LowScore {
			return rejectUnmappedAtBreak
		}
		return acceptOverlappingBreak
	}
	if score <= th.MinScore {
		return rejectLowScore
	}
	expected := 2 * span
	if a.ReadBegin >= th.BothEndsOverhang && a.ReadEnd < clipLen-th.BothEndsOverhang {
		expected = 4 * span
		if unmapped > float64(span)*th.MaxUnmappedFraction && score < th.LowScore {
			return rejectUnmappedFloating
		}
	}
	if span > th.MinSpan && float64(a.Score)/float64(expected) > th.MinScoreFraction {
		return expected - a.Score
	}
	return rejectLowScoreOrSpan
}

// overlaps reports whether the closed ranges [x1, x2] and [y1, y2] share a
// position.
func overlaps(x1, x2, y1, y2 int) bool {
	return max(x1, y1) <= min(x2, y2)
}

// call is a refined variant proposed from one clip alignment.
type call struct {
	svType string
	svLen  int
	// pos is the new position of the clip's own breakpoint, pos2 that of the
	// other breakpoint.
	pos, pos2    int
	score        int
	editDistance int
}

// classify aligns clip against the candidate reference stretch refSeq, which
// starts at absolute position refStart, and turns an accepted alignment into
// an insertion or deletion call at breakpoint pos.  ok is false if the
// alignment or the call is rejected.
func (r *Remapper) classify(clip Clip, refStart int, refSeq string, pos int) (c call, ok bool) {
	th := r.opts.Thresholds
	clipSeq := strings.ToUpper(clip.Seq)
	clipLen := len(clipSeq)
	a, err := align.Local(refSeq, clipSeq, r.opts.Scoring)
	if err != nil {
		log.Error.Printf("clip %s at %d: %v", clip.Seq, pos, err)
		return call{}, false
	}
	refBegin := refStart + a.RefBegin
	refEnd := refStart + a.RefEnd
	ed := filterAlignment(a, clipLen, refBegin, refEnd, pos, th)
	if ed < 0 {
		r.debugf("clip %s at %d: alignment rejected (%d)", clip.Seq, pos, ed)
		return call{}, false
	}
	c = call{svType: INS, pos: pos, pos2: pos, score: a.Score, editDistance: ed}
	// Clip bases left unaligned past the alignment end.  This counts one more
	// than the bases after ReadEnd.
	tail := clipLen - a.ReadEnd
	switch clip.Side {
	case LeftClip:
		if refEnd+1 >= pos {
			// Tandem duplication when the alignment runs past the breakpoint,
			// otherwise novel sequence.
			overlap := 0
			if refEnd > pos {
				overlap = refEnd - pos
			}
			c.svLen = overlap + tail
		} else {
			refGap := pos - refEnd
			if tail > refGap {
				c.svLen = tail
			} else {
				c.svType, c.pos2, c.svLen = DEL, refEnd, refGap
			}
		}
		if a.ReadBegin > c.svLen {
			return call{}, false
		}
	case RightClip:
		if refBegin-1 <= pos {
			if tail > th.DanglingBases {
				c.svLen = clipLen
			} else {
				c.svLen = pos - refBegin
			}
			c.svLen += a.ReadBegin
		} else {
			refGap := refBegin - pos
			if a.ReadBegin > refGap {
				c.svLen = a.ReadBegin
			} else {
				c.svType, c.pos2, c.svLen = DEL, refBegin, abs(refBegin-pos)
			}
		}
		if tail > c.svLen {
			return call{}, false
		}
	}
	if c.svType == DEL {
		refSpan := a.RefEnd - a.RefBegin + 1
		if float64(refSpan) < float64(clipLen)*th.MinDelFraction && refSpan < th.MinDelSpan {
			return call{}, false
		}
	}
	return c, true
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
