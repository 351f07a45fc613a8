package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/decker502/quackduck/internal/sim"
)

func newSimCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sim",
		Short: "Run the pet on a virtual screen in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			closer := opts.setupLogging()
			defer closer.Close()

			sm, err := opts.loadSettings()
			if err != nil {
				return err
			}
			settings := sm.GetSettings()
			return sim.Run(sim.New(newStore(settings.SelectedSkin), settings, time.Now()))
		},
	}
}
