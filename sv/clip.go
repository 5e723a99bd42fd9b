package sv

// ClipSide says which end of a contig a soft-clip is on.
type ClipSide int

const (
	// LeftClip is a clip at the start of the contig.
	LeftClip ClipSide = iota
	// RightClip is a clip at the end of the contig.
	RightClip
)

func (s ClipSide) String() string {
	if s == LeftClip {
		return "left"
	}
	return "right"
}

// Clip is a soft-clipped stretch of a contig.
type Clip struct {
	Seq  string
	Side ClipSide
	// OtherLen measures the clip run at the opposite end of the contig.
	OtherLen int
}

func isLower(b byte) bool { return b >= 'a' && b <= 'z' }

// Clip returns the soft-clip of c at the end whose reference span endpoint is
// nearer pos.  The leading run is measured from index 1 onward, so a leading
// clip is c.Seq[:n] where c.Seq[1:n] is lowercase; the trailing run is the
// maximal lowercase suffix.  The leading clip is used when it is longer than
// th.MinClipLen bases; the trailing clip when it is at least th.MinClipLen
// bases long.  ok is false if the contig is too short or the inspected run
// too short.
func (c Contig) Clip(pos int, th Thresholds) (clip Clip, ok bool) {
	seq := c.Seq
	n := len(seq)
	if n <= th.MinContigLen {
		return Clip{}, false
	}
	start := 1
	for start < n && isLower(seq[start]) {
		start++
	}
	end := n - 1
	for end >= 0 && isLower(seq[end]) {
		end--
	}
	if abs(c.RefStart-pos) < abs(c.RefEnd-pos) {
		if start > th.MinClipLen {
			return Clip{Seq: seq[:start], Side: LeftClip, OtherLen: n - end}, true
		}
		return Clip{}, false
	}
	if n-end > th.MinClipLen {
		return Clip{Seq: seq[end+1:], Side: RightClip, OtherLen: start}, true
	}
	return Clip{}, false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
