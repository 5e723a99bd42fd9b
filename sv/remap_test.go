package sv

import (
	"bytes"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/grailbio/svremap/encoding/fasta"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

// randomSeq returns n pseudo-random bases drawn from A, C and G.  Leaving out
// T lets tests build clips that match nowhere.
func randomSeq(seed int64, n int) string {
	r := rand.New(rand.NewSource(seed))
	b := make([]byte, n)
	for i := range b {
		b[i] = "ACG"[r.Intn(3)]
	}
	return string(b)
}

func lower(s string) string { return strings.ToLower(s) }

// countingRef counts the Get calls made to a reference.
type countingRef struct {
	fasta.Fasta
	gets int
}

func (r *countingRef) Get(seqName string, start, end uint64) (string, error) {
	r.gets++
	return r.Fasta.Get(seqName, start, end)
}

// newTestRef builds an in-memory reference from named sequences.
func newTestRef(t *testing.T, seqs ...string) *countingRef {
	var buf bytes.Buffer
	for i := 0; i < len(seqs); i += 2 {
		fmt.Fprintf(&buf, ">%s\n", seqs[i])
		seq := seqs[i+1]
		for len(seq) > 60 {
			fmt.Fprintf(&buf, "%s\n", seq[:60])
			seq = seq[60:]
		}
		fmt.Fprintf(&buf, "%s\n", seq)
	}
	fa, err := fasta.New(&buf)
	assert.NoError(t, err)
	return &countingRef{Fasta: fa}
}

var chr1 = randomSeq(42, 10000)

// delEvent is an imprecise 40bp deletion call at chr1:5000 whose contig has a
// trailing clip matching the reference right after a true 300bp deletion
// of chr1:5000-5300.
func delEvent() *Event {
	return &Event{
		ID: "del",
		A: Breakpoint{Chr: "chr1", Pos: 5000, CIPos95: 15, Contig: Contig{
			Seq:         chr1[4900:5000] + lower(chr1[5300:5340]),
			RefStart:    4900,
			RefEnd:      5000,
			LeftWeight:  2,
			RightWeight: 50,
		}},
		B:        Breakpoint{Chr: "chr1", Pos: 5040, CIPos95: 15},
		SVType:   DEL,
		SVLen:    40,
		Support:  6,
		RefBases: 100,
	}
}

// swappedDelEvent describes the same deletion from its right end, stored with
// breakpoint A on the right.  The contig has a leading clip matching the
// reference before the deletion.
func swappedDelEvent() *Event {
	return &Event{
		ID: "swapped",
		A: Breakpoint{Chr: "chr1", Pos: 5300, CIPos95: 10, Contig: Contig{
			Seq:         lower(chr1[4960:5000]) + chr1[5300:5400],
			RefStart:    5300,
			RefEnd:      5400,
			LeftWeight:  30,
			RightWeight: 5,
		}},
		B:        Breakpoint{Chr: "chr1", Pos: 4990, CIPos95: 10},
		SVType:   DEL,
		SVLen:    40,
		Support:  6,
		RefBases: 100,
	}
}

// dupEvent is a small insertion call at chr1:2000 whose leading clip repeats
// the reference just downstream, i.e. a tandem duplication.
func dupEvent() *Event {
	return &Event{
		ID: "dup",
		A: Breakpoint{Chr: "chr1", Pos: 2000, CIPos95: 5, Contig: Contig{
			Seq:        lower(chr1[2020:2060]) + chr1[2000:2100],
			RefStart:   2000,
			RefEnd:     2100,
			LeftWeight: 30,
		}},
		B:        Breakpoint{Chr: "chr1", Pos: 2010, CIPos95: 5},
		SVType:   INS,
		SVLen:    10,
		Support:  6,
		RefBases: 100,
	}
}

// unalignableEvent has a long, heavy trailing clip of Ts, which occur nowhere
// in chr1.
func unalignableEvent(support int) *Event {
	return &Event{
		ID: "unalignable",
		A: Breakpoint{Chr: "chr1", Pos: 8000, CIPos95: 20, Contig: Contig{
			Seq:         chr1[7900:8000] + strings.Repeat("t", 40),
			RefStart:    7900,
			RefEnd:      8000,
			RightWeight: 50,
		}},
		B:        Breakpoint{Chr: "chr1", Pos: 8030, CIPos95: 20},
		SVType:   DEL,
		SVLen:    30,
		Support:  support,
		RefBases: 100,
	}
}

func TestRemapDeletionFromRightClip(t *testing.T) {
	ref := newTestRef(t, "chr1", chr1)
	e := delEvent()
	out, stats := NewRemapper(ref, DefaultOpts).Remap([]*Event{e})
	assert.EQ(t, len(out), 1)
	got := out[0]
	expect.True(t, got == e)
	expect.EQ(t, got.SVType, DEL)
	expect.EQ(t, got.SVLen, 300)
	expect.EQ(t, got.A.Pos, 5000)
	expect.EQ(t, got.B.Pos, 5300)
	expect.EQ(t, got.A.CIPos95, 0)
	expect.EQ(t, got.B.CIPos95, 0)
	expect.True(t, got.Remapped)
	expect.EQ(t, got.RemapScore, 80)
	expect.EQ(t, got.RemapEditDistance, 0)
	expect.EQ(t, got.SoftClipWeight, 50.0)
	expect.EQ(t, stats, Stats{Remapped: 1})
}

func TestRemapSwapsSides(t *testing.T) {
	ref := newTestRef(t, "chr1", chr1)
	e := swappedDelEvent()
	contig := e.A.Contig
	out, stats := NewRemapper(ref, DefaultOpts).Remap([]*Event{e})
	assert.EQ(t, len(out), 1)
	got := out[0]
	expect.EQ(t, got.SVType, DEL)
	// The left clip ends at 4999, one base short of the deletion start.
	expect.EQ(t, got.SVLen, 301)
	expect.EQ(t, got.A.Pos, 4999)
	expect.EQ(t, got.B.Pos, 5300)
	expect.EQ(t, got.A.Contig, Contig{})
	expect.EQ(t, got.B.Contig, contig)
	expect.True(t, got.Remapped)
	expect.EQ(t, stats.Remapped, 1)
}

// twoContigEvent calls the chr1:5000-5300 deletion with a contig on each side.
// The B contig has a leading clip matching the reference before the
// deletion.
func twoContigEvent(contigA string) *Event {
	return &Event{
		ID: "two-contig",
		A: Breakpoint{Chr: "chr1", Pos: 5000, Contig: Contig{
			Seq:         contigA,
			RefStart:    4900,
			RefEnd:      5000,
			RightWeight: 50,
		}},
		B: Breakpoint{Chr: "chr1", Pos: 5300, Contig: Contig{
			Seq:         lower(chr1[4960:5000]) + chr1[5300:5400],
			RefStart:    5300,
			RefEnd:      5400,
			LeftWeight:  30,
		}},
		SVType:   DEL,
		SVLen:    40,
		Support:  6,
		RefBases: 100,
	}
}

func TestRemapTwoContigs(t *testing.T) {
	ref := newTestRef(t, "chr1", chr1)
	r := NewRemapper(ref, DefaultOpts)

	// Contig A resolves the deletion; contig B is never tried, or the left
	// breakpoint would have moved to 4999.
	out, stats := r.Remap([]*Event{twoContigEvent(chr1[4900:5000] + lower(chr1[5300:5340]))})
	assert.EQ(t, len(out), 1)
	expect.EQ(t, stats, Stats{Remapped: 1})
	expect.EQ(t, out[0].SVLen, 300)
	expect.EQ(t, out[0].A.Pos, 5000)
	expect.EQ(t, out[0].B.Pos, 5300)

	// Contig A's clip aligns nowhere, so contig B resolves the deletion.
	out, stats = r.Remap([]*Event{twoContigEvent(chr1[4900:5000] + strings.Repeat("t", 40))})
	assert.EQ(t, len(out), 1)
	expect.EQ(t, stats, Stats{Remapped: 1})
	got := out[0]
	expect.True(t, got.Remapped)
	expect.EQ(t, got.SVType, DEL)
	expect.EQ(t, got.SVLen, 301)
	expect.EQ(t, got.A.Pos, 4999)
	expect.EQ(t, got.B.Pos, 5300)
	expect.EQ(t, got.SoftClipWeight, 50.0)
}

func TestRemapSkipsClipOppositeLongClip(t *testing.T) {
	ref := newTestRef(t, "chr1", chr1)
	// Six leading clipped bases opposite the clip that resolves the deletion.
	newEvent := func(refBases int) *Event {
		e := delEvent()
		e.A.Contig.Seq = "tttttt" + e.A.Contig.Seq
		e.RefBases = refBases
		return e
	}
	out, stats := NewRemapper(ref, DefaultOpts).Remap([]*Event{newEvent(100)})
	assert.EQ(t, len(out), 1)
	expect.EQ(t, stats, Stats{Remapped: 1})
	expect.EQ(t, out[0].SVLen, 300)

	// With few reference bases the clip is not trusted, and with no clip
	// left to judge the event by, it is dropped.
	out, stats = NewRemapper(ref, DefaultOpts).Remap([]*Event{newEvent(49)})
	expect.EQ(t, len(out), 0)
	expect.EQ(t, stats, Stats{DroppedUnrefined: 1})
}

func TestRemapTandemDuplication(t *testing.T) {
	ref := newTestRef(t, "chr1", chr1)
	out, _ := NewRemapper(ref, DefaultOpts).Remap([]*Event{dupEvent()})
	assert.EQ(t, len(out), 1)
	got := out[0]
	expect.EQ(t, got.SVType, INS)
	// Overlap past the breakpoint (2059-2000) plus the clip tail.
	expect.EQ(t, got.SVLen, 60)
	expect.EQ(t, got.A.Pos, 2000)
	expect.EQ(t, got.B.Pos, 2000)
	expect.True(t, got.Remapped)
}

func TestRemapIdempotent(t *testing.T) {
	ref := newTestRef(t, "chr1", chr1)
	r := NewRemapper(ref, DefaultOpts)
	out, stats := r.Remap([]*Event{delEvent()})
	assert.EQ(t, len(out), 1)
	expect.EQ(t, stats, Stats{Remapped: 1})
	first := *out[0]
	expect.True(t, first.Remapped)

	// Remapped events pass through a second pass unchanged, whatever their
	// support.
	out, stats = r.Remap(out)
	assert.EQ(t, len(out), 1)
	expect.EQ(t, *out[0], first)
	expect.EQ(t, stats, Stats{Ineligible: 1})
	expect.EQ(t, ref.gets, 1)
}

func TestRemapOrientation(t *testing.T) {
	ref := newTestRef(t, "chr1", chr1)
	events := []*Event{delEvent(), swappedDelEvent(), dupEvent(), unalignableEvent(20)}
	out, _ := NewRemapper(ref, DefaultOpts).Remap(events)
	expect.EQ(t, len(out), 4)
	for _, e := range out {
		if e.A.Chr == e.B.Chr {
			expect.True(t, e.A.Pos <= e.B.Pos, "event %s: %d > %d", e.ID, e.A.Pos, e.B.Pos)
		}
	}
}

func TestRemapPassThrough(t *testing.T) {
	ref := newTestRef(t, "chr1", chr1)

	inter := delEvent()
	inter.ID = "inter"
	inter.B.Chr = "chr2"
	inter.Remapped, inter.RemapScore = true, 12
	wantInter := *inter
	wantInter.Remapped, wantInter.RemapScore = false, 0

	precise := delEvent()
	precise.ID = "precise"
	precise.SVLenPrecise = true
	wantPrecise := *precise

	long := delEvent()
	long.ID = "long"
	long.SVLen = 1000
	wantLong := *long

	noContig := delEvent()
	noContig.ID = "nocontig"
	noContig.A.Contig = Contig{}
	wantNoContig := *noContig

	noClip := delEvent()
	noClip.ID = "noclip"
	noClip.A.Contig.Seq = strings.ToUpper(noClip.A.Contig.Seq)
	wantNoClip := *noClip

	out, stats := NewRemapper(ref, DefaultOpts).Remap([]*Event{inter, precise, long, noContig, noClip})
	assert.EQ(t, len(out), 5)
	expect.EQ(t, *out[0], wantInter)
	expect.EQ(t, *out[1], wantPrecise)
	expect.EQ(t, *out[2], wantLong)
	expect.EQ(t, *out[3], wantNoContig)
	expect.EQ(t, *out[4], wantNoClip)
	expect.EQ(t, stats, Stats{Interchromosomal: 1, Ineligible: 3, NoClip: 1})
	expect.EQ(t, ref.gets, 0)
}

func TestRemapMissingChromosome(t *testing.T) {
	ref := newTestRef(t, "chr1", chr1)
	e := delEvent()
	e.A.Chr, e.B.Chr = "chrUn", "chrUn"
	want := *e
	out, stats := NewRemapper(ref, DefaultOpts).Remap([]*Event{e})
	assert.EQ(t, len(out), 1)
	expect.EQ(t, *out[0], want)
	expect.EQ(t, stats, Stats{FetchFailed: 1})
}

func TestRemapRetainsUnmapped(t *testing.T) {
	ref := newTestRef(t, "chr1", chr1)
	opts := DefaultOpts
	opts.KeepUnmapped = true
	e := unalignableEvent(opts.MinSupport + 5)
	want := *e
	want.SoftClipWeight = 50
	out, stats := NewRemapper(ref, opts).Remap([]*Event{e})
	assert.EQ(t, len(out), 1)
	expect.EQ(t, *out[0], want)
	expect.EQ(t, stats, Stats{Retained: 1})
}

func TestRemapDropsUnmapped(t *testing.T) {
	ref := newTestRef(t, "chr1", chr1)
	opts := DefaultOpts

	weak := unalignableEvent(opts.MinSupport + 4)
	out, stats := NewRemapper(ref, opts).Remap([]*Event{weak})
	expect.EQ(t, len(out), 0)
	expect.EQ(t, stats, Stats{DroppedUnrefined: 1})

	opts.KeepUnmapped = false
	out, stats = NewRemapper(ref, opts).Remap([]*Event{unalignableEvent(100)})
	expect.EQ(t, len(out), 0)
	expect.EQ(t, stats, Stats{DroppedUnrefined: 1})

	// A light clip is never aligned and never counts as high quality.
	light := unalignableEvent(100)
	light.A.Contig.RightWeight = 10
	out, stats = NewRemapper(ref, DefaultOpts).Remap([]*Event{light})
	expect.EQ(t, len(out), 0)
	expect.EQ(t, stats, Stats{DroppedUnrefined: 1})
}

func TestRemapDropsAtReferenceGap(t *testing.T) {
	// Gap bases at chr1:4450-4550 bound the slice searched around 5000.
	gapped := chr1[:4450] + strings.Repeat("N", 100) + chr1[4550:]
	ref := newTestRef(t, "chr1", gapped)
	e := delEvent()
	e.Support = 100
	out, stats := NewRemapper(ref, DefaultOpts).Remap([]*Event{e})
	expect.EQ(t, len(out), 0)
	expect.EQ(t, stats, Stats{DroppedUnresolved: 1})
}

func TestRemapBatchesWindows(t *testing.T) {
	chr2 := randomSeq(7, 10000)
	ref := newTestRef(t, "chr1", chr1, "chr2", chr2)
	other := unalignableEvent(1)
	other.A.Chr, other.B.Chr = "chr2", "chr2"
	other.A.Contig.Seq = chr2[7900:8000] + strings.Repeat("t", 40)
	// The padded spans on chr1 chain into a single window.
	events := []*Event{delEvent(), swappedDelEvent(), dupEvent(), unalignableEvent(1), other}
	out, stats := NewRemapper(ref, DefaultOpts).Remap(events)
	expect.EQ(t, ref.gets, 2)
	expect.EQ(t, len(out), 3)
	expect.EQ(t, stats, Stats{Remapped: 3, DroppedUnrefined: 2})
}

func TestRemapConservation(t *testing.T) {
	ref := newTestRef(t, "chr1", chr1)
	inter := delEvent()
	inter.B.Chr = "chr2"
	missing := delEvent()
	missing.A.Chr, missing.B.Chr = "chrUn", "chrUn"
	events := []*Event{
		delEvent(), swappedDelEvent(), dupEvent(), unalignableEvent(1), unalignableEvent(100),
		inter, missing,
	}
	out, stats := NewRemapper(ref, DefaultOpts).Remap(events)
	expect.EQ(t, stats.Total(), len(events))
	expect.EQ(t, len(out), len(events)-stats.Dropped())
	expect.EQ(t, stats.Dropped(), 1)

	// Output keeps input order.
	j := 0
	for _, e := range events {
		if j < len(out) && out[j] == e {
			j++
		}
	}
	expect.EQ(t, j, len(out))
}
