package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/buzzrelay/internal/protocol"
)

func newHostCmd(state *rootState) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "host",
		Short: "Create a room and host it interactively",
		Long: `Create a room and print its code, then read host commands from stdin.

` + hostHelp + `

Press Ctrl+C to disconnect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			conn, err := state.dial(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			s := &interactive{conn: conn, out: state.output(cmd), isHost: true}
			return s.run(ctx, protocol.CreateRoom{HostName: name}, cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Host display name")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
