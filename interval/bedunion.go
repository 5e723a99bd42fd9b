package interval

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/klauspost/compress/gzip"
)

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

// PosType is BEDUnion's coordinate type.
type PosType int32

const posTypeMax = math.MaxInt32

// searchPosType returns the index of x in a[], or the position where x would
// be inserted if x isn't in a (this could be len(a)).
func searchPosType(a []PosType, x PosType) int {
	return sort.Search(len(a), func(i int) bool { return a[i] >= x })
}

// BEDUnion is the union of the intervals listed in a BED file, such as a track
// of known assembly gaps.  For each chromosome it holds a length-2N sequence
// where the 0-based start of interval #k is in element [2k] and its end in
// element [2k+1], in increasing order.  Overlapping and touching intervals are
// merged on load.
//
// A BEDUnion is immutable after construction and may be queried concurrently.
type BEDUnion struct {
	nameMap map[string][]PosType
}

// ContainsByName checks whether the (0-based) position pos on chromosome
// chrName lies inside the union.
func (u *BEDUnion) ContainsByName(chrName string, pos PosType) bool {
	ivs := u.nameMap[chrName]
	if ivs == nil {
		return false
	}
	return searchPosType(ivs, pos+1)&1 == 1
}

// IntersectsByName checks whether the 0-based [start, limit) region on
// chrName shares at least one position with the union.
func (u *BEDUnion) IntersectsByName(chrName string, start, limit PosType) bool {
	if limit <= start {
		return false
	}
	ivs := u.nameMap[chrName]
	if ivs == nil {
		return false
	}
	idx := searchPosType(ivs, start+1)
	if idx&1 == 1 {
		return true
	}
	return idx != len(ivs) && limit > ivs[idx]
}

// NBases returns the number of positions covered by the union.
func (u *BEDUnion) NBases() int {
	n := 0
	for _, ivs := range u.nameMap {
		for i := 0; i < len(ivs); i += 2 {
			n += int(ivs[i+1] - ivs[i])
		}
	}
	return n
}

type rawInterval struct {
	start, end PosType
}

// NewBEDUnion loads the first three columns of every line of a BED file,
// merging touching/overlapping intervals and eliminating empty ones.  Unlike
// a plain interval-BED reader, the input need not be sorted: gap tracks are
// often distributed in chromosome-name order or not at all.  Lines starting
// with "#", "track" or "browser" are skipped.
func NewBEDUnion(reader io.Reader) (BEDUnion, error) {
	scanner := bufio.NewScanner(reader)
	raw := map[string][]rawInterval{}
	var tokens [3][]byte
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		curLine := scanner.Bytes()
		nToken := getTokens(tokens[:], curLine)
		if nToken == 0 {
			continue
		}
		if first := tokens[0]; first[0] == '#' || string(first) == "track" || string(first) == "browser" {
			continue
		}
		if nToken != 3 {
			return BEDUnion{}, fmt.Errorf("interval.NewBEDUnion: line %d has fewer tokens than expected", lineIdx)
		}
		start, err := strconv.Atoi(gunsafe.BytesToString(tokens[1]))
		if err != nil {
			return BEDUnion{}, fmt.Errorf("interval.NewBEDUnion: line %d: %v", lineIdx, err)
		}
		end, err := strconv.Atoi(gunsafe.BytesToString(tokens[2]))
		if err != nil {
			return BEDUnion{}, fmt.Errorf("interval.NewBEDUnion: line %d: %v", lineIdx, err)
		}
		if start < 0 || end < start || end >= posTypeMax {
			return BEDUnion{}, fmt.Errorf("interval.NewBEDUnion: invalid coordinate pair on line %d", lineIdx)
		}
		if end == start {
			continue
		}
		// Copy the name: tokens point into the scanner's buffer.
		chr := string(tokens[0])
		raw[chr] = append(raw[chr], rawInterval{PosType(start), PosType(end)})
	}
	if err := scanner.Err(); err != nil {
		return BEDUnion{}, err
	}
	u := BEDUnion{nameMap: make(map[string][]PosType, len(raw))}
	for chr, ivs := range raw {
		sort.Slice(ivs, func(i, j int) bool { return ivs[i].start < ivs[j].start })
		merged := make([]PosType, 0, 2*len(ivs))
		for _, iv := range ivs {
			if n := len(merged); n > 0 && iv.start <= merged[n-1] {
				if iv.end > merged[n-1] {
					merged[n-1] = iv.end
				}
				continue
			}
			merged = append(merged, iv.start, iv.end)
		}
		u.nameMap[chr] = merged
	}
	log.Printf("BED loaded, %d base(s) covered.", u.NBases())
	return u, nil
}

// NewBEDUnionFromPath is a wrapper for NewBEDUnion that takes a path instead
// of an io.Reader.  Gzipped files are decompressed transparently.
func NewBEDUnionFromPath(ctx context.Context, path string) (bedUnion BEDUnion, err error) {
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer func() {
		if cerr := infile.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(infile.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if reader, err = gzip.NewReader(reader); err != nil {
			return
		}
	}
	return NewBEDUnion(reader)
}
