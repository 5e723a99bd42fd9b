package main

import (
	"context"
	"runtime"
	"sort"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/svremap/encoding/fasta"
	"github.com/grailbio/svremap/encoding/svtsv"
	"github.com/grailbio/svremap/interval"
	"github.com/grailbio/svremap/sv"
)

type remapOpts struct {
	refPath string
	// gapBEDPath optionally names a BED file of known assembly gaps.
	gapBEDPath string
	// parallelism is the number of shards remapped concurrently; 0 means
	// runtime.NumCPU().
	parallelism int
	// skipRemap and skipGapFilter disable a stage.
	skipRemap     bool
	skipGapFilter bool
	sv.Opts
}

// shardByChrom splits events into n shards.  All events whose A breakpoint
// is on the same chromosome land in the same shard, in input order.
func shardByChrom(events []*sv.Event, n int) [][]*sv.Event {
	shards := make([][]*sv.Event, n)
	for _, e := range events {
		i := seahash.Sum64(gunsafe.StringToBytes(e.A.Chr)) % uint64(n)
		shards[i] = append(shards[i], e)
	}
	return shards
}

// remapEvents refines events concurrently, one Remapper per shard, and
// returns the survivors in input order.
func remapEvents(events []*sv.Event, ref sv.Reference, opts remapOpts) ([]*sv.Event, sv.Stats, error) {
	parallelism := opts.parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	order := make(map[*sv.Event]int, len(events))
	for i, e := range events {
		order[e] = i
	}
	shards := shardByChrom(events, parallelism)
	results := make([][]*sv.Event, parallelism)
	stats := make([]sv.Stats, parallelism)
	err := traverse.Each(parallelism, func(i int) error {
		if len(shards[i]) == 0 {
			return nil
		}
		results[i], stats[i] = sv.NewRemapper(ref, opts.Opts).Remap(shards[i])
		return nil
	})
	if err != nil {
		return nil, sv.Stats{}, err
	}
	var (
		out   []*sv.Event
		total sv.Stats
	)
	for i := range results {
		out = append(out, results[i]...)
		total = total.Merge(stats[i])
	}
	sort.Slice(out, func(i, j int) bool { return order[out[i]] < order[out[j]] })
	return out, total, nil
}

// missingChroms returns the sorted chromosome names used by events that the
// reference does not contain.
func missingChroms(events []*sv.Event, seqNames []string) []string {
	known := make(map[string]bool, len(seqNames))
	for _, name := range seqNames {
		known[name] = true
	}
	missing := map[string]bool{}
	for _, e := range events {
		for _, chr := range []string{e.A.Chr, e.B.Chr} {
			if !known[chr] {
				missing[chr] = true
			}
		}
	}
	names := make([]string, 0, len(missing))
	for name := range missing {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// remap runs the refinement and gap filter over the event table at inPath and
// writes the survivors to outPath.
func remap(ctx context.Context, inPath, outPath string, opts remapOpts) error {
	events, err := svtsv.ReadFile(ctx, inPath)
	if err != nil {
		return err
	}
	log.Printf("read %d event(s) from %s", len(events), inPath)
	ref, err := fasta.Open(ctx, opts.refPath)
	if err != nil {
		return err
	}
	defer ref.Close() // nolint: errcheck
	if names := missingChroms(events, ref.SeqNames()); len(names) > 0 {
		log.Error.Printf("%s lacks %d chromosome(s) named by events, which pass through unchecked: %v",
			opts.refPath, len(names), names)
	}

	if !opts.skipRemap {
		var stats sv.Stats
		if events, stats, err = remapEvents(events, ref, opts); err != nil {
			return err
		}
		log.Printf("remap: %v", stats)
	}
	if !opts.skipGapFilter {
		var gaps *interval.BEDUnion
		if opts.gapBEDPath != "" {
			bed, err := interval.NewBEDUnionFromPath(ctx, opts.gapBEDPath)
			if err != nil {
				return err
			}
			gaps = &bed
		}
		events, _ = sv.DropNearReferenceGaps(events, ref, gaps, opts.Opts)
	}
	if err := svtsv.WriteFile(ctx, outPath, events); err != nil {
		return err
	}
	log.Printf("wrote %d event(s) to %s", len(events), outPath)
	return nil
}
