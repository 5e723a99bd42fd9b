/*Package interval groups genomic coordinates.
  Merge batches nearby breakpoint spans into reference windows so that each
  window is fetched from the reference once.  BEDUnion holds the union of the
  intervals in a BED file (overlapping intervals are merged, not tracked
  separately), used to look up known assembly gaps.
  It assumes every BED position fits in a PosType, which is int32.
*/
package interval
