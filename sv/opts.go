package sv

import "github.com/grailbio/svremap/align"

// Thresholds are the constants of the refinement heuristics.
type Thresholds struct {
	// MinContigLen: contigs of this length or shorter yield no clip.
	MinContigLen int
	// MinClipLen: a clip run must be longer than this to be used.
	MinClipLen int
	// MaxOtherClipLen and MinRefBases: a clip is skipped when the contig's
	// opposite clip is longer than MaxOtherClipLen while the event covers
	// fewer than MinRefBases reference bases.
	MaxOtherClipLen int
	MinRefBases     int
	// MinClipWeight: a clip is only aligned if its side weight exceeds this.
	MinClipWeight float64

	// A clip is high quality if its average per-base weight exceeds
	// HighQualityAvgWeight, or it is longer than HighQualityClipLen, or its
	// weight exceeds HighQualityWeight.
	HighQualityAvgWeight float64
	HighQualityClipLen   int
	HighQualityWeight    float64
	// MinRetainedClipLen and SupportMargin gate keeping an unrefined event:
	// the longest clip must reach MinRetainedClipLen and the support must
	// exceed Opts.MinSupport + SupportMargin.
	MinRetainedClipLen int
	SupportMargin      int

	// MergeTolerance: approximate-match hits whose starts and ends are both
	// within this distance of the merged region collapse into it.
	MergeTolerance int

	// MaxFloatingOverhang: an alignment leaving more than this many clip bases
	// unaligned at both ends is rejected.
	MaxFloatingOverhang int
	// FarFromBreak and FarFromBreakPenalty: the alignment score is lowered by
	// the penalty when the alignment lies further than FarFromBreak from the
	// breakpoint.
	FarFromBreak        int
	FarFromBreakPenalty int
	// MinOverlapScore is the penalized score needed by an alignment that
	// overlaps the breakpoint; MinScore the one needed otherwise.
	MinOverlapScore int
	MinScore        int
	// LowScore and MaxUnmappedFraction: alignments scoring below LowScore are
	// rejected when the unaligned part of the clip exceeds MaxUnmappedFraction
	// of the aligned span.
	LowScore            int
	MaxUnmappedFraction float64
	// BothEndsOverhang: an alignment with at least this many unaligned clip
	// bases at both ends needs twice the expected score.
	BothEndsOverhang int
	// MinSpan and MinScoreFraction: an alignment not overlapping the
	// breakpoint must align more than MinSpan clip bases and reach more than
	// MinScoreFraction of its expected score.
	MinSpan          int
	MinScoreFraction float64

	// DanglingBases: a right clip leaving more than this many bases unaligned
	// past its end is called as an insertion of the whole clip.
	DanglingBases int
	// A deletion call needs an aligned reference span of at least
	// MinDelFraction of the clip length or MinDelSpan bases.
	MinDelFraction float64
	MinDelSpan     int
	// MinLenChange: a refined call is only committed if its length differs
	// from the prior length by more than this.
	MinLenChange int
}

// DefaultThresholds are the values the heuristics were tuned with.
var DefaultThresholds = Thresholds{
	MinContigLen:         5,
	MinClipLen:           8,
	MaxOtherClipLen:      3,
	MinRefBases:          50,
	MinClipWeight:        10,
	HighQualityAvgWeight: 1,
	HighQualityClipLen:   35,
	HighQualityWeight:    400,
	MinRetainedClipLen:   18,
	SupportMargin:        4,
	MergeTolerance:       10,
	MaxFloatingOverhang:  8,
	FarFromBreak:         200,
	FarFromBreakPenalty:  24,
	MinOverlapScore:      12,
	MinScore:             20,
	LowScore:             30,
	MaxUnmappedFraction:  0.8,
	BothEndsOverhang:     2,
	MinSpan:              12,
	MinScoreFraction:     0.7,
	DanglingBases:        20,
	MinDelFraction:       0.4,
	MinDelSpan:           50,
	MinLenChange:         20,
}

// Opts configures breakpoint refinement and the reference-gap filter.
type Opts struct {
	// MinSVLen and KeepSmall are carried for callers that filter on size
	// downstream; neither pass consults them.
	MinSVLen  int
	KeepSmall bool
	// KeepUnmapped keeps events that could not be refined but carry a high
	// quality clip and enough support.
	KeepUnmapped bool
	// MinSupport is the support baseline for keeping unrefined events.
	MinSupport int
	// PairedEnd selects the paired-end size floor of the gap filter.
	PairedEnd bool

	// MaxRemapSVLen: events this long or longer are not refined.
	MaxRemapSVLen int
	// WindowPad is the padding applied to breakpoint spans before they are
	// merged into reference windows.
	WindowPad int
	// SliceFlank is the half width of the reference slice searched around a
	// breakpoint.
	SliceFlank int

	// GapFlank is the half width of the window checked for gap bases around
	// each breakpoint.
	GapFlank int
	// MinGapInsLen and MinGapSVLen: in paired-end mode, insertions shorter
	// than MinGapInsLen and other events shorter than MinGapSVLen skip the gap
	// filter; otherwise everything shorter than MinGapSVLen does.
	MinGapInsLen int
	MinGapSVLen  int

	Scoring    align.Scoring
	Thresholds Thresholds
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	MinSVLen:      30,
	KeepSmall:     false,
	KeepUnmapped:  true,
	MinSupport:    4,
	PairedEnd:     true,
	MaxRemapSVLen: 1000,
	WindowPad:     1500,
	SliceFlank:    500,
	GapFlank:      250,
	MinGapInsLen:  250,
	MinGapSVLen:   1000,
	Scoring:       align.DefaultScoring,
	Thresholds:    DefaultThresholds,
}
