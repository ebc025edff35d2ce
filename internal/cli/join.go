package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/buzzrelay/internal/model"
	"github.com/mcoot/buzzrelay/internal/protocol"
)

func newJoinCmd(state *rootState) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "join <code>",
		Short: "Join a room as a player",
		Long: `Join the room with the given code, then read player commands from stdin.

` + playerHelp + `

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			conn, err := state.dial(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			s := &interactive{conn: conn, out: state.output(cmd)}
			return s.run(ctx, protocol.JoinRoom{
				PlayerName: name,
				RoomCode:   model.NormalizeRoomCode(args[0]),
			}, cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Player display name")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
