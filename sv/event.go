package sv

// Variant types assigned by breakpoint refinement.  Events may carry any other
// type string; it is passed through untouched.
const (
	INS = "INS"
	DEL = "DEL"
)

// Contig is a consensus sequence assembled from the reads supporting one side
// of an event.  Lowercase bases are soft-clipped, i.e. not aligned to the
// reference.  An empty Seq means the side has no contig.
type Contig struct {
	Seq string
	// RefStart and RefEnd delimit the reference span the aligned part of the
	// contig covers.
	RefStart, RefEnd int
	// LeftWeight and RightWeight are the confidence weights of the leading and
	// trailing soft-clips.
	LeftWeight, RightWeight float64
}

// Breakpoint is one end of an event.
type Breakpoint struct {
	Chr string
	// Pos is the 0-based reference position.
	Pos int
	// CIPos95 is the half width of the 95% confidence interval around Pos.
	CIPos95 int
	Contig  Contig
}

// Event is a candidate structural variant.
type Event struct {
	ID string
	// A and B are the two breakpoints.  A holds "contig", B "contig2".
	A, B Breakpoint

	SVType       string
	SVLen        int
	SVLenPrecise bool

	// Support is the number of supporting reads (su).
	Support int
	// Spanning is the number of reads that span both breakpoints.
	Spanning int
	// RefBases is the number of reference bases covered by the evidence.
	RefBases int

	// Refinement outputs.  Remap resets them before examining the event.
	Remapped          bool
	RemapScore        int
	RemapEditDistance int
	// SoftClipWeight is the larger of the contig's clip weights, recorded for
	// every event examined against the reference.
	SoftClipWeight float64
}

// Swapped returns e with breakpoints A and B exchanged.  All per-side fields
// (chromosome, position, confidence interval, contig and its span and weights)
// move together.
func Swapped(e Event) Event {
	e.A, e.B = e.B, e.A
	return e
}

// side returns breakpoint A for side 0, B for side 1.
func (e *Event) side(i int) *Breakpoint {
	if i == 0 {
		return &e.A
	}
	return &e.B
}

func (e *Event) hasContig() bool {
	return e.A.Contig.Seq != "" || e.B.Contig.Seq != ""
}
