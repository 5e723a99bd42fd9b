package fasta

import (
	"bytes"
	"io"
	"sort"

	"github.com/biogo/hts/fai"
	"github.com/pkg/errors"
)

// indexedFasta serves sequences straight out of a memory-mapped FASTA file,
// using a faidx index to locate them.  Concurrent Gets are safe since each
// call reads through its own fai.Seq handle.
type indexedFasta struct {
	file     *fai.File
	idx      fai.Index
	seqNames []string // returned by SeqNames()
}

// NewIndexed creates a new Fasta that can perform efficient random lookups in
// the FASTA file at path using the provided index, without reading the data
// into memory.  The path must name a local file.
func NewIndexed(path string, idx fai.Index) (Fasta, error) {
	file, err := fai.OpenFile(path, idx)
	if err != nil {
		return nil, errors.Wrapf(err, "open indexed FASTA %s", path)
	}
	f := &indexedFasta{file: file, idx: idx}
	for name := range idx {
		f.seqNames = append(f.seqNames, name)
	}
	sort.SliceStable(f.seqNames, func(i, j int) bool {
		return idx[f.seqNames[i]].Start < idx[f.seqNames[j]].Start
	})
	return f, nil
}

// Len implements Fasta.Len().
func (f *indexedFasta) Len(seqName string) (uint64, error) {
	rec, ok := f.idx[seqName]
	if !ok {
		return 0, errors.Wrap(ErrUnknownSequence, seqName)
	}
	return uint64(rec.Length), nil
}

// Get implements Fasta.Get().
func (f *indexedFasta) Get(seqName string, start, end uint64) (string, error) {
	if end <= start {
		return "", errors.Errorf("start must be less than end")
	}
	rec, ok := f.idx[seqName]
	if !ok {
		return "", errors.Wrap(ErrUnknownSequence, seqName)
	}
	if end > uint64(rec.Length) {
		return "", errors.Errorf("end is past end of sequence %s: %d", seqName, rec.Length)
	}
	seq, err := f.file.SeqRange(seqName, int(start), int(end))
	if err != nil {
		return "", errors.Wrapf(err, "%s:%d-%d", seqName, start, end)
	}
	buf := make([]byte, end-start)
	if _, err := io.ReadFull(seq, buf); err != nil {
		return "", errors.Wrapf(err, "read %s:%d-%d", seqName, start, end)
	}
	return string(bytes.ToUpper(buf)), nil
}

// SeqNames implements Fasta.SeqNames().
func (f *indexedFasta) SeqNames() []string {
	return f.seqNames
}

// Close implements Fasta.Close().
func (f *indexedFasta) Close() error {
	return f.file.Close()
}
