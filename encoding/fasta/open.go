package fasta

import (
	"context"
	"io"
	"strings"

	"github.com/biogo/hts/fai"
	"github.com/grailbio/base/file"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// IndexSuffix is appended to a FASTA path to locate its faidx index.
const IndexSuffix = ".fai"

// Open opens the FASTA file at path.  If path is a local, uncompressed file
// with a sibling "<path>.fai" index, sequences are served from a memory map.
// Otherwise the whole file is loaded into memory; paths ending in ".gz" are
// decompressed on the fly.
func Open(ctx context.Context, path string) (Fasta, error) {
	if isLocal(path) && !strings.HasSuffix(path, ".gz") {
		if _, err := file.Stat(ctx, path+IndexSuffix); err == nil {
			idx, err := ReadIndex(ctx, path+IndexSuffix)
			if err != nil {
				return nil, err
			}
			return NewIndexed(path, idx)
		}
	}
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer in.Close(ctx) // nolint: errcheck
	var r io.Reader = in.Reader(ctx)
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrapf(err, "gunzip %s", path)
		}
		defer gz.Close() // nolint: errcheck
		r = gz
	}
	fa, err := New(r)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return fa, nil
}

// ReadIndex reads a faidx index from path.
func ReadIndex(ctx context.Context, path string) (fai.Index, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer in.Close(ctx) // nolint: errcheck
	idx, err := fai.ReadFrom(in.Reader(ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "parse index %s", path)
	}
	return idx, nil
}

// GenerateIndex scans the FASTA file at fastaPath and writes its faidx index
// to indexPath.
func GenerateIndex(ctx context.Context, fastaPath, indexPath string) (err error) {
	in, err := file.Open(ctx, fastaPath)
	if err != nil {
		return errors.Wrapf(err, "open %s", fastaPath)
	}
	defer in.Close(ctx) // nolint: errcheck
	idx, err := fai.NewIndex(in.Reader(ctx))
	if err != nil {
		return errors.Wrapf(err, "index %s", fastaPath)
	}
	out, err := file.Create(ctx, indexPath)
	if err != nil {
		return errors.Wrapf(err, "create %s", indexPath)
	}
	defer func() {
		if closeErr := out.Close(ctx); closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, "close %s", indexPath)
		}
	}()
	return fai.WriteTo(out.Writer(ctx), idx)
}

func isLocal(path string) bool {
	return !strings.Contains(path, "://")
}
