package cli

import (
	"github.com/spf13/cobra"
)

func newHealthCmd(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := state.client.Health()
			if err != nil {
				return err
			}

			state.output(cmd).Print(result)
			return nil
		},
	}
}
