// Package svtsv reads and writes structural-variant event tables.
//
// A table is a TSV file with one header row and one event per line.  Columns
// are matched by header name, so their order is free on input.  Missing
// contigs are written as ".", and flags as 0 or 1.  Files whose names end in
// .gz are gzip-compressed.
package svtsv

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/svremap/sv"
	"github.com/klauspost/compress/gzip"
)

const missing = "."

// Row is one line of an event table.
type Row struct {
	ID     string `tsv:"ID"`
	SVType string `tsv:"SVTYPE"`
	SVLen  int    `tsv:"SVLEN"`
	// SVLenPrecise is 1 if the length is known exactly.
	SVLenPrecise int `tsv:"SVLEN_PRECISE"`

	ChrA         string  `tsv:"CHROM_A"`
	PosA         int     `tsv:"POS_A"`
	CIPos95A     int     `tsv:"CIPOS95_A"`
	ContigA      string  `tsv:"CONTIG_A"`
	ContigStartA int     `tsv:"CONTIG_REF_START_A"`
	ContigEndA   int     `tsv:"CONTIG_REF_END_A"`
	LeftWeightA  float64 `tsv:"CONTIG_LEFT_WEIGHT_A"`
	RightWeightA float64 `tsv:"CONTIG_RIGHT_WEIGHT_A"`
	ChrB         string  `tsv:"CHROM_B"`
	PosB         int     `tsv:"POS_B"`
	CIPos95B     int     `tsv:"CIPOS95_B"`
	ContigB      string  `tsv:"CONTIG_B"`
	ContigStartB int     `tsv:"CONTIG_REF_START_B"`
	ContigEndB   int     `tsv:"CONTIG_REF_END_B"`
	LeftWeightB  float64 `tsv:"CONTIG_LEFT_WEIGHT_B"`
	RightWeightB float64 `tsv:"CONTIG_RIGHT_WEIGHT_B"`

	Support  int `tsv:"SUPPORT"`
	Spanning int `tsv:"SPANNING"`
	RefBases int `tsv:"REF_BASES"`

	Remapped          int     `tsv:"REMAPPED"`
	RemapScore        int     `tsv:"REMAP_SCORE"`
	RemapEditDistance int     `tsv:"REMAP_ED"`
	SoftClipWeight    float64 `tsv:"SOFTCLIP_WEIGHT"`
}

// inputRow is a Row read from a table that lacks the refinement columns
// (REMAPPED, REMAP_SCORE, REMAP_ED and SOFTCLIP_WEIGHT).  Those fields stay
// zero.
type inputRow struct {
	ID     string `tsv:"ID"`
	SVType string `tsv:"SVTYPE"`
	SVLen  int    `tsv:"SVLEN"`

	SVLenPrecise int `tsv:"SVLEN_PRECISE"`

	ChrA         string  `tsv:"CHROM_A"`
	PosA         int     `tsv:"POS_A"`
	CIPos95A     int     `tsv:"CIPOS95_A"`
	ContigA      string  `tsv:"CONTIG_A"`
	ContigStartA int     `tsv:"CONTIG_REF_START_A"`
	ContigEndA   int     `tsv:"CONTIG_REF_END_A"`
	LeftWeightA  float64 `tsv:"CONTIG_LEFT_WEIGHT_A"`
	RightWeightA float64 `tsv:"CONTIG_RIGHT_WEIGHT_A"`
	ChrB         string  `tsv:"CHROM_B"`
	PosB         int     `tsv:"POS_B"`
	CIPos95B     int     `tsv:"CIPOS95_B"`
	ContigB      string  `tsv:"CONTIG_B"`
	ContigStartB int     `tsv:"CONTIG_REF_START_B"`
	ContigEndB   int     `tsv:"CONTIG_REF_END_B"`
	LeftWeightB  float64 `tsv:"CONTIG_LEFT_WEIGHT_B"`
	RightWeightB float64 `tsv:"CONTIG_RIGHT_WEIGHT_B"`

	Support  int `tsv:"SUPPORT"`
	Spanning int `tsv:"SPANNING"`
	RefBases int `tsv:"REF_BASES"`

	Remapped          int     `tsv:"-"`
	RemapScore        int     `tsv:"-"`
	RemapEditDistance int     `tsv:"-"`
	SoftClipWeight    float64 `tsv:"-"`
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func contigSeq(s string) string {
	if s == "" {
		return missing
	}
	return s
}

func seqContig(s string) string {
	if s == missing {
		return ""
	}
	return s
}

// FromEvent converts an event to a table row.
func FromEvent(e *sv.Event) Row {
	return Row{
		ID:                e.ID,
		SVType:            e.SVType,
		SVLen:             e.SVLen,
		SVLenPrecise:      flag(e.SVLenPrecise),
		ChrA:              e.A.Chr,
		PosA:              e.A.Pos,
		CIPos95A:          e.A.CIPos95,
		ContigA:           contigSeq(e.A.Contig.Seq),
		ContigStartA:      e.A.Contig.RefStart,
		ContigEndA:        e.A.Contig.RefEnd,
		LeftWeightA:       e.A.Contig.LeftWeight,
		RightWeightA:      e.A.Contig.RightWeight,
		ChrB:              e.B.Chr,
		PosB:              e.B.Pos,
		CIPos95B:          e.B.CIPos95,
		ContigB:           contigSeq(e.B.Contig.Seq),
		ContigStartB:      e.B.Contig.RefStart,
		ContigEndB:        e.B.Contig.RefEnd,
		LeftWeightB:       e.B.Contig.LeftWeight,
		RightWeightB:      e.B.Contig.RightWeight,
		Support:           e.Support,
		Spanning:          e.Spanning,
		RefBases:          e.RefBases,
		Remapped:          flag(e.Remapped),
		RemapScore:        e.RemapScore,
		RemapEditDistance: e.RemapEditDistance,
		SoftClipWeight:    e.SoftClipWeight,
	}
}

// Event converts a table row to an event.
func (r *Row) Event() *sv.Event {
	return &sv.Event{
		ID: r.ID,
		A: sv.Breakpoint{
			Chr:     r.ChrA,
			Pos:     r.PosA,
			CIPos95: r.CIPos95A,
			Contig: sv.Contig{
				Seq:         seqContig(r.ContigA),
				RefStart:    r.ContigStartA,
				RefEnd:      r.ContigEndA,
				LeftWeight:  r.LeftWeightA,
				RightWeight: r.RightWeightA,
			},
		},
		B: sv.Breakpoint{
			Chr:     r.ChrB,
			Pos:     r.PosB,
			CIPos95: r.CIPos95B,
			Contig: sv.Contig{
				Seq:         seqContig(r.ContigB),
				RefStart:    r.ContigStartB,
				RefEnd:      r.ContigEndB,
				LeftWeight:  r.LeftWeightB,
				RightWeight: r.RightWeightB,
			},
		},
		SVType:            r.SVType,
		SVLen:             r.SVLen,
		SVLenPrecise:      r.SVLenPrecise != 0,
		Support:           r.Support,
		Spanning:          r.Spanning,
		RefBases:          r.RefBases,
		Remapped:          r.Remapped != 0,
		RemapScore:        r.RemapScore,
		RemapEditDistance: r.RemapEditDistance,
		SoftClipWeight:    r.SoftClipWeight,
	}
}

// hasRefinementColumns reports whether the header line names any of the
// columns written by refinement.
func hasRefinementColumns(header string) bool {
	for _, col := range strings.Split(strings.TrimRight(header, "\r\n"), "\t") {
		switch col {
		case "REMAPPED", "REMAP_SCORE", "REMAP_ED", "SOFTCLIP_WEIGHT":
			return true
		}
	}
	return false
}

// Read parses an event table.  The refinement columns are optional; when the
// header names none of them, they read as zero.
func Read(r io.Reader) ([]*sv.Event, error) {
	br := bufio.NewReader(r)
	header, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, err
	}
	refined := hasRefinementColumns(header)
	tr := tsv.NewReader(io.MultiReader(strings.NewReader(header), br))
	tr.HasHeaderRow = true
	tr.UseHeaderNames = true

	var events []*sv.Event
	for {
		var (
			row Row
			err error
		)
		if refined {
			err = tr.Read(&row)
		} else {
			var in inputRow
			err = tr.Read(&in)
			row = Row(in)
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		events = append(events, row.Event())
	}
	return events, nil
}

// Write writes events as a table, header first.
func Write(w io.Writer, events []*sv.Event) error {
	tw := tsv.NewRowWriter(w)
	for _, e := range events {
		row := FromEvent(e)
		if err := tw.Write(&row); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// ReadFile reads an event table from path.
func ReadFile(ctx context.Context, path string) (events []*sv.Event, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	var r io.Reader = in.Reader(ctx)
	if fileio.DetermineType(path) == fileio.Gzip {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.E(err, path)
		}
		defer gz.Close() // nolint: errcheck
		r = gz
	}
	if events, err = Read(r); err != nil {
		return nil, errors.E(err, path)
	}
	return events, nil
}

// WriteFile writes events as a table to path.
func WriteFile(ctx context.Context, path string, events []*sv.Event) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if e := out.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	if fileio.DetermineType(path) != fileio.Gzip {
		return Write(out.Writer(ctx), events)
	}
	gz := gzip.NewWriter(out.Writer(ctx))
	if err = Write(gz, events); err != nil {
		return err
	}
	return gz.Close()
}
