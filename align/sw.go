// Package align provides the two sequence-comparison primitives used for
// breakpoint refinement: an affine-gap local aligner, and an approximate
// matcher that reports where a query occurs inside a longer target at minimal
// edit distance.
package align

import (
	"github.com/biogo/biogo/align"
	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/feat"
	"github.com/biogo/biogo/seq/linear"
)

// Scoring holds local-alignment scores.  Penalties are positive numbers that
// get subtracted.  A gap of length k costs GapOpen + (k-1)*GapExtend.
type Scoring struct {
	Match     int
	Mismatch  int
	GapOpen   int
	GapExtend int
}

// DefaultScoring is the scoring used to align soft-clips against the
// reference.
var DefaultScoring = Scoring{Match: 2, Mismatch: 8, GapOpen: 6, GapExtend: 1}

// Alignment is the best local alignment of a read against a reference
// segment.  All coordinates are 0-based and inclusive.  When Score is zero
// nothing aligned: the aligned strings are empty and the coordinates are -1.
type Alignment struct {
	Score int
	// RefBegin and RefEnd delimit the aligned part of the reference.
	RefBegin, RefEnd int
	// ReadBegin and ReadEnd delimit the aligned part of the read.
	ReadBegin, ReadEnd int
	// AlignedRef and AlignedRead are the gapped alignment rows, with '-'
	// marking gaps.  They have equal length.
	AlignedRef, AlignedRead string
}

var noAlignment = Alignment{RefBegin: -1, RefEnd: -1, ReadBegin: -1, ReadEnd: -1}

// alpha must keep the gap letter at index 0, where the scoring matrix holds
// the gap extension penalty.
var alpha = alphabet.DNAredundant

// aligner builds the biogo affine-gap Smith-Waterman aligner for sc.  Only
// A, C, G and T score a match; N mismatches everything, itself included.
func (sc Scoring) aligner() align.SWAffine {
	n := alpha.Len()
	m := make(align.Linear, n)
	for i := range m {
		row := make([]int, n)
		for j := range row {
			row[j] = -sc.Mismatch
		}
		m[i] = row
	}
	for _, b := range []alphabet.Letter{'a', 'c', 'g', 't'} {
		i := alpha.IndexOf(b)
		m[i][i] = sc.Match
	}
	for i := range m {
		m[0][i] = -sc.GapExtend
		m[i][0] = -sc.GapExtend
	}
	m[0][0] = 0
	return align.SWAffine{Matrix: m, GapOpen: -(sc.GapOpen - sc.GapExtend)}
}

// normalize maps s onto ACGTN.  Any other byte becomes N.
func normalize(s string) []byte {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case 'A', 'C', 'G', 'T':
			b[i] = c
		case 'a', 'c', 'g', 't':
			b[i] = c - 'a' + 'A'
		default:
			b[i] = 'N'
		}
	}
	return b
}

func letters(id string, b []byte) *linear.Seq {
	l := make(alphabet.Letters, len(b))
	for i, c := range b {
		l[i] = alphabet.Letter(c - 'A' + 'a')
	}
	return linear.NewSeq(id, l, alpha)
}

// Local computes the highest-scoring local alignment of read against ref
// with biogo's affine-gap Smith-Waterman.  Case is ignored, and bases other
// than A, C, G and T compare as N.
//
// Ties among equally scoring end cells are broken by biogo's scan order,
// which walks the reference in the outer loop and the read in the inner one.
// Aligners that scan the read outermost, such as SSW, can place a read that
// matches several copies of a repeat at a different copy.  The result is
// deterministic for a given input.
func Local(ref, read string, sc Scoring) (Alignment, error) {
	if len(ref) == 0 || len(read) == 0 {
		return noAlignment, nil
	}
	r, q := normalize(ref), normalize(read)
	sw := sc.aligner()
	pairs, err := sw.Align(letters("ref", r), letters("read", q))
	if err != nil {
		return noAlignment, err
	}
	if len(pairs) == 0 {
		return noAlignment, nil
	}
	a := assemble(r, q, pairs)
	if a.Score = sc.score(a.AlignedRef, a.AlignedRead); a.Score <= 0 {
		return noAlignment, nil
	}
	return a, nil
}

// assemble joins the gapless blocks of a biogo alignment into gapped rows.
// Bases between consecutive blocks are aligned against gaps.
func assemble(ref, read []byte, pairs []feat.Pair) Alignment {
	var alnRef, alnRead []byte
	first, last := pairs[0].Features(), pairs[len(pairs)-1].Features()
	prevRef, prevRead := first[0].Start(), first[1].Start()
	for _, p := range pairs {
		f := p.Features()
		rs, re := f[0].Start(), f[0].End()
		qs, qe := f[1].Start(), f[1].End()
		for i := prevRef; i < rs; i++ {
			alnRef = append(alnRef, ref[i])
			alnRead = append(alnRead, '-')
		}
		for j := prevRead; j < qs; j++ {
			alnRef = append(alnRef, '-')
			alnRead = append(alnRead, read[j])
		}
		alnRef = append(alnRef, ref[rs:re]...)
		alnRead = append(alnRead, read[qs:qe]...)
		prevRef, prevRead = re, qe
	}
	return Alignment{
		RefBegin:    first[0].Start(),
		RefEnd:      last[0].End() - 1,
		ReadBegin:   first[1].Start(),
		ReadEnd:     last[1].End() - 1,
		AlignedRef:  string(alnRef),
		AlignedRead: string(alnRead),
	}
}

// score rescores gapped alignment rows under sc.
func (sc Scoring) score(alnRef, alnRead string) int {
	var (
		s         int
		inRefGap  bool
		inReadGap bool
	)
	for i := 0; i < len(alnRef); i++ {
		a, b := alnRef[i], alnRead[i]
		switch {
		case a == '-':
			if inRefGap {
				s -= sc.GapExtend
			} else {
				s -= sc.GapOpen
			}
			inRefGap, inReadGap = true, false
		case b == '-':
			if inReadGap {
				s -= sc.GapExtend
			} else {
				s -= sc.GapOpen
			}
			inRefGap, inReadGap = false, true
		default:
			if a == b && a != 'N' {
				s += sc.Match
			} else {
				s -= sc.Mismatch
			}
			inRefGap, inReadGap = false, false
		}
	}
	return s
}
