package main

import (
	"flag"
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/svremap/encoding/fasta"
	"github.com/grailbio/svremap/sv"
	"v.io/x/lib/cmdline"
)

// registerFilterFlags binds the flags shared by remap and gapfilter.
func registerFilterFlags(fs *flag.FlagSet, opts *remapOpts) {
	fs.StringVar(&opts.refPath, "ref", "", "Reference FASTA path (required). A sibling .fai index is used when present")
	fs.StringVar(&opts.gapBEDPath, "gap-bed", "", "Optional BED of known assembly gaps; events with a breakpoint within -gap-flank of one are dropped")
	fs.BoolVar(&opts.PairedEnd, "paired", sv.DefaultOpts.PairedEnd, "Reads are paired-end; selects the gap filter's insertion size floor")
	fs.IntVar(&opts.GapFlank, "gap-flank", sv.DefaultOpts.GapFlank, "Half width of the window checked for gap bases around each breakpoint")
	fs.IntVar(&opts.MinGapInsLen, "min-gap-ins-len", sv.DefaultOpts.MinGapInsLen, "Paired-end insertions shorter than this skip the gap filter")
	fs.IntVar(&opts.MinGapSVLen, "min-gap-sv-len", sv.DefaultOpts.MinGapSVLen, "Other events shorter than this skip the gap filter")
}

func newCmdRemap() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "remap",
		Short:    "Refine imprecise breakpoints against the reference, then drop events next to gaps",
		ArgsName: "inpath outpath",
		Long: `
Remap reads an event table, realigns the soft-clipped contig ends of imprecise
insertion and deletion calls to the reference, and rewrites the calls whose
alignment implies a different event. Events next to assembly gaps are then
removed. Tables ending in .gz are read and written gzip-compressed.`,
	}
	opts := remapOpts{Opts: sv.DefaultOpts}
	registerFilterFlags(&cmd.Flags, &opts)
	cmd.Flags.IntVar(&opts.parallelism, "parallelism", 0, "Number of concurrent shards; 0 = runtime.NumCPU()")
	cmd.Flags.BoolVar(&opts.KeepUnmapped, "keep-unmapped", sv.DefaultOpts.KeepUnmapped, "Keep unrefined events that carry a strong clip and enough support")
	cmd.Flags.IntVar(&opts.MinSupport, "min-support", sv.DefaultOpts.MinSupport, "Support baseline for keeping unrefined events")
	cmd.Flags.IntVar(&opts.MinSVLen, "min-size", sv.DefaultOpts.MinSVLen, "Minimum event size; recorded for downstream filters")
	cmd.Flags.BoolVar(&opts.KeepSmall, "keep-small", sv.DefaultOpts.KeepSmall, "Keep events below -min-size; recorded for downstream filters")
	cmd.Flags.IntVar(&opts.MaxRemapSVLen, "max-remap-len", sv.DefaultOpts.MaxRemapSVLen, "Events this long or longer are not refined")
	cmd.Flags.IntVar(&opts.WindowPad, "window-pad", sv.DefaultOpts.WindowPad, "Padding around breakpoint spans before they are merged into reference windows")
	cmd.Flags.IntVar(&opts.SliceFlank, "slice-flank", sv.DefaultOpts.SliceFlank, "Half width of the reference slice searched around a breakpoint")
	cmd.Flags.BoolVar(&opts.skipGapFilter, "skip-gap-filter", false, "Do not drop events next to assembly gaps")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("remap takes inpath outpath, but found %v", argv)
		}
		if opts.refPath == "" {
			return fmt.Errorf("remap: -ref is required")
		}
		return remap(vcontext.Background(), argv[0], argv[1], opts)
	})
	return cmd
}

func newCmdGapFilter() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "gapfilter",
		Short:    "Drop events next to assembly gaps without refining them",
		ArgsName: "inpath outpath",
	}
	opts := remapOpts{Opts: sv.DefaultOpts, skipRemap: true}
	registerFilterFlags(&cmd.Flags, &opts)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("gapfilter takes inpath outpath, but found %v", argv)
		}
		if opts.refPath == "" {
			return fmt.Errorf("gapfilter: -ref is required")
		}
		return remap(vcontext.Background(), argv[0], argv[1], opts)
	})
	return cmd
}

func newCmdFaidx() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "faidx",
		Short:    "Write the .fai index of a FASTA file",
		ArgsName: "fastapath",
	}
	out := cmd.Flags.String("out", "", "Index path. By default set to fastapath + .fai")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("faidx takes one pathname argument, but got %v", argv)
		}
		indexPath := *out
		if indexPath == "" {
			indexPath = argv[0] + fasta.IndexSuffix
		}
		return fasta.GenerateIndex(vcontext.Background(), argv[0], indexPath)
	})
	return cmd
}

func main() {
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-sv-remap",
			Short:    "Refine structural-variant breakpoints against a reference",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdRemap(),
				newCmdGapFilter(),
				newCmdFaidx(),
			},
		})
}
