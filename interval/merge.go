package interval

import (
	"strings"

	"github.com/biogo/store/llrb"
)

// Span is a 0-based [Start, End) region on chromosome Chr, tagged with the
// caller's ID for the record it came from.
type Span struct {
	Chr        string
	Start, End int
	ID         int
}

// Compare implements llrb.Comparable.  Spans are ordered by chromosome, then
// start, then end, then ID, so that distinct records never collide in the
// tree.
func (s Span) Compare(c llrb.Comparable) int {
	s2 := c.(Span)
	if d := strings.Compare(s.Chr, s2.Chr); d != 0 {
		return d
	}
	if d := s.Start - s2.Start; d != 0 {
		return d
	}
	if d := s.End - s2.End; d != 0 {
		return d
	}
	return s.ID - s2.ID
}

// Window is a group of spans whose padded extents overlap.  Start is never
// negative.  IDs lists the member span IDs in (start, end, ID) order.
type Window struct {
	Chr        string
	Start, End int
	IDs        []int
}

// Merge pads every span by pad on both sides (clamping the start at zero) and
// merges the padded spans that overlap or abut on the same chromosome.  The
// windows are returned sorted by chromosome name, then start.
func Merge(spans []Span, pad int) []Window {
	tree := llrb.Tree{}
	for _, s := range spans {
		tree.Insert(s)
	}
	var (
		windows []Window
		cur     *Window
	)
	tree.Do(func(c llrb.Comparable) bool {
		s := c.(Span)
		start, end := s.Start-pad, s.End+pad
		if start < 0 {
			start = 0
		}
		if cur != nil && cur.Chr == s.Chr && start <= cur.End {
			if end > cur.End {
				cur.End = end
			}
			cur.IDs = append(cur.IDs, s.ID)
			return false
		}
		windows = append(windows, Window{Chr: s.Chr, Start: start, End: end, IDs: []int{s.ID}})
		cur = &windows[len(windows)-1]
		return false
	})
	return windows
}
