package sv

import "fmt"

// Stats counts what a refinement pass did with its input events.  Every
// input event is counted in exactly one field.
type Stats struct {
	// Interchromosomal events pass through untouched.
	Interchromosomal int
	// Ineligible events (no contig, too long, already precise or already
	// remapped) pass through untouched.
	Ineligible int
	// NoClip events have no usable soft-clip on either contig and pass
	// through untouched.
	NoClip int
	// FetchFailed events belong to a window whose reference could not be
	// fetched; they pass through untouched.
	FetchFailed int
	// Remapped events were refined and rewritten.
	Remapped int
	// Retained events could not be refined but were kept on the strength of
	// their clips and support.
	Retained int
	// DroppedUnresolved events were dropped because the reference around a
	// breakpoint is bounded by gap bases.
	DroppedUnresolved int
	// DroppedUnrefined events could not be refined and did not qualify for
	// retention.
	DroppedUnrefined int
}

// Merge adds the field values of the two Stats objects and creates new Stats.
func (s Stats) Merge(o Stats) Stats {
	s.Interchromosomal += o.Interchromosomal
	s.Ineligible += o.Ineligible
	s.NoClip += o.NoClip
	s.FetchFailed += o.FetchFailed
	s.Remapped += o.Remapped
	s.Retained += o.Retained
	s.DroppedUnresolved += o.DroppedUnresolved
	s.DroppedUnrefined += o.DroppedUnrefined
	return s
}

// Total is the number of events the Stats account for.
func (s Stats) Total() int {
	return s.Interchromosomal + s.Ineligible + s.NoClip + s.FetchFailed +
		s.Remapped + s.Retained + s.DroppedUnresolved + s.DroppedUnrefined
}

// Dropped is the number of events removed from the output.
func (s Stats) Dropped() int {
	return s.DroppedUnresolved + s.DroppedUnrefined
}

func (s Stats) String() string {
	return fmt.Sprintf("events: %d, remapped: %d, retained unrefined: %d, dropped: %d (unresolved reference %d), "+
		"passed through: interchromosomal %d, ineligible %d, no clip %d, fetch failed %d",
		s.Total(), s.Remapped, s.Retained, s.Dropped(), s.DroppedUnresolved,
		s.Interchromosomal, s.Ineligible, s.NoClip, s.FetchFailed)
}
