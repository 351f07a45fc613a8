package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/decker502/quackduck/pkg/traits"
)

func newTraitsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "traits [name]",
		Short: "Print the behaviour traits derived from a pet name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return printTraits(opts.out, name, traits.For(name))
		},
	}
}

// printTraits 以表格形式输出参数
func printTraits(w io.Writer, name string, t traits.Traits) error {
	display := name
	if display == "" {
		display = "(unnamed, defaults)"
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "name\t%s\n", display)
	if name != "" {
		fmt.Fprintf(tw, "seed\t%d\n", traits.Seed(name))
	}
	fmt.Fprintf(tw, "base speed\t%.3f px/tick\n", t.BaseSpeed)
	fmt.Fprintf(tw, "sound interval\t%s - %s\n", t.SoundIntervalMin.Round(time.Second), t.SoundIntervalMax.Round(time.Second))
	fmt.Fprintf(tw, "sound response\t%.1f%%\n", t.SoundResponseProb*100)
	fmt.Fprintf(tw, "playful\t%.1f%%\n", t.PlayfulProb*100)
	fmt.Fprintf(tw, "sleep timeout\t%s\n", t.SleepTimeout.Round(time.Second))
	return tw.Flush()
}
