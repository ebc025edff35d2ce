package cli

import (
	"github.com/spf13/cobra"
)

func newRoomCmd(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "room <code>",
		Short: "Show a room's players and buzz results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			room, err := state.client.GetRoom(args[0])
			if err != nil {
				return err
			}

			state.output(cmd).Print(room)
			return nil
		},
	}
}
