// Package sv refines imprecise structural-variant breakpoints by aligning the
// soft-clipped ends of their contigs back to the reference, and filters out
// calls that sit next to assembly gaps.
package sv

import (
	"fmt"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/svremap/interval"
)

// Reference is a read-only reference genome.  Get returns the 0-based
// half-open range [start, end) of the named sequence.
type Reference interface {
	Get(seqName string, start, end uint64) (string, error)
	Len(seqName string) (uint64, error)
}

// Remapper refines event breakpoints against a reference.  A Remapper is not
// safe for concurrent use; run one per shard of events.  Shards may share the
// Reference.
type Remapper struct {
	ref  Reference
	opts Opts
}

// NewRemapper creates a Remapper.
func NewRemapper(ref Reference, opts Opts) *Remapper {
	return &Remapper{ref: ref, opts: opts}
}

type outcome int

const (
	remapped outcome = iota
	retained
	droppedUnresolved
	droppedUnrefined
)

func (r *Remapper) debugf(format string, args ...interface{}) {
	if log.At(log.Debug) {
		log.Debug.Printf(format, args...)
	}
}

// Remap refines the breakpoints of events and returns the events that
// survive, in input order.  Surviving events are modified in place.
//
// Inter-chromosomal events, events without contigs, events of length
// Opts.MaxRemapSVLen or longer, precise events, events already marked
// Remapped by an earlier pass and events without a usable soft-clip pass
// through untouched.  The others are grouped into reference
// windows; each window is fetched once.  An event is rewritten when one of its
// clips aligns convincingly and implies a length differing from the current
// one by more than Thresholds.MinLenChange.  An event that is not rewritten is
// kept only if Opts.KeepUnmapped is set and it carries a high quality clip and
// enough support.
func (r *Remapper) Remap(events []*Event) ([]*Event, Stats) {
	var (
		stats Stats
		keep  = make([]bool, len(events))
		clips = make([][2]*Clip, len(events))
		spans []interval.Span
	)
	for i, e := range events {
		if e.A.Chr != e.B.Chr {
			e.Remapped, e.RemapScore, e.RemapEditDistance, e.SoftClipWeight = false, 0, 0, 0
			keep[i] = true
			stats.Interchromosomal++
			continue
		}
		if e.Remapped {
			keep[i] = true
			stats.Ineligible++
			continue
		}
		e.RemapScore, e.RemapEditDistance, e.SoftClipWeight = 0, 0, 0
		if !e.hasContig() || e.SVLen >= r.opts.MaxRemapSVLen || e.SVLenPrecise {
			keep[i] = true
			stats.Ineligible++
			continue
		}
		found := false
		for side := 0; side < 2; side++ {
			bp := e.side(side)
			if bp.Contig.Seq == "" {
				continue
			}
			if c, ok := bp.Contig.Clip(bp.Pos, r.opts.Thresholds); ok {
				clips[i][side] = &c
				found = true
			}
		}
		if !found {
			keep[i] = true
			stats.NoClip++
			continue
		}
		spans = append(spans, interval.Span{
			Chr:   e.A.Chr,
			Start: min(e.A.Pos, e.B.Pos),
			End:   max(e.A.Pos, e.B.Pos),
			ID:    i,
		})
	}

	for _, w := range interval.Merge(spans, r.opts.WindowPad) {
		win, err := r.fetch(w)
		if err != nil {
			log.Error.Printf("sv remap: skipping %d event(s) in %s:%d-%d: %v", len(w.IDs), w.Chr, w.Start, w.End, err)
			for _, i := range w.IDs {
				keep[i] = true
			}
			stats.FetchFailed += len(w.IDs)
			continue
		}
		for _, i := range w.IDs {
			switch r.refine(events[i], clips[i], win) {
			case remapped:
				keep[i] = true
				stats.Remapped++
			case retained:
				keep[i] = true
				stats.Retained++
			case droppedUnresolved:
				stats.DroppedUnresolved++
			case droppedUnrefined:
				stats.DroppedUnrefined++
			}
		}
	}

	out := make([]*Event, 0, len(events))
	for i, e := range events {
		if keep[i] {
			out = append(out, e)
		}
	}
	return out, stats
}

// fetch reads the reference of a window, truncated at the end of the
// sequence.
func (r *Remapper) fetch(w interval.Window) (window, error) {
	seq, err := fetchWindow(r.ref, w)
	if err != nil {
		return window{}, err
	}
	return window{chr: w.Chr, start: w.Start, seq: seq}, nil
}

// fetchWindow returns the uppercased reference of w, truncated at the end of
// the sequence.  A window entirely past the end is an error.
func fetchWindow(ref Reference, w interval.Window) (string, error) {
	n, err := ref.Len(w.Chr)
	if err != nil {
		return "", err
	}
	end := uint64(w.End)
	if end > n {
		end = n
	}
	if uint64(w.Start) >= end {
		return "", errors.E(errors.Invalid, fmt.Sprintf("window %s:%d-%d is past the end of the sequence", w.Chr, w.Start, w.End))
	}
	seq, err := ref.Get(w.Chr, uint64(w.Start), end)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(seq), nil
}

// refine tries the clips of e, contig A first, against the window.
func (r *Remapper) refine(e *Event, clips [2]*Clip, w window) outcome {
	th := r.opts.Thresholds
	e.SoftClipWeight = maxFloat(e.A.Contig.LeftWeight, e.A.Contig.RightWeight)
	var (
		highQuality bool
		maxClipLen  int
	)
	for side := 0; side < 2; side++ {
		clip := clips[side]
		if clip == nil {
			continue
		}
		if clip.OtherLen > th.MaxOtherClipLen && e.RefBases < th.MinRefBases {
			continue
		}
		if len(clip.Seq) > maxClipLen {
			maxClipLen = len(clip.Seq)
		}
		bp := e.side(side)
		weight := bp.Contig.RightWeight
		if clip.Side == LeftClip {
			weight = bp.Contig.LeftWeight
		}
		if !(weight > th.MinClipWeight) {
			continue
		}
		if weight/float64(len(clip.Seq)) > th.HighQualityAvgWeight ||
			len(clip.Seq) > th.HighQualityClipLen || weight > th.HighQualityWeight {
			highQuality = true
		}
		pos := bp.Pos
		refStart, refSeq, status := r.locateCandidate(clip.Seq, w, pos)
		if status == unresolvedReference {
			r.debugf("event %s: gap bases around %s:%d", e.ID, w.chr, pos)
			return droppedUnresolved
		}
		if status == noCandidate {
			continue
		}
		c, ok := r.classify(*clip, refStart, refSeq, pos)
		if !ok {
			continue
		}
		if abs(c.svLen-e.SVLen) <= th.MinLenChange {
			continue
		}
		r.debugf("event %s: %s %d -> %s %d", e.ID, e.SVType, e.SVLen, c.svType, c.svLen)
		e.RemapEditDistance = c.editDistance
		e.Remapped = true
		e.RemapScore = c.score
		e.SVType = c.svType
		e.SVLen = c.svLen
		bp.Pos = c.pos
		e.side(1 - side).Pos = c.pos2
		e.A.CIPos95, e.B.CIPos95 = 0, 0
		if e.A.Pos > e.B.Pos {
			*e = Swapped(*e)
		}
		return remapped
	}
	if highQuality && r.opts.KeepUnmapped && maxClipLen >= th.MinRetainedClipLen &&
		e.Support > r.opts.MinSupport+th.SupportMargin {
		return retained
	}
	return droppedUnrefined
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
