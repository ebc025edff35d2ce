package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// rootState is shared by every subcommand of one root command
type rootState struct {
	cfg    *Config
	client *Client
}

func (s *rootState) output(cmd *cobra.Command) *Output {
	return NewOutput(s.cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr(), s.cfg.Verbose)
}

func (s *rootState) dial(ctx context.Context) (*Conn, error) {
	wsURL, err := s.cfg.WebSocketURL()
	if err != nil {
		return nil, err
	}
	return Dial(ctx, wsURL)
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	state := &rootState{cfg: DefaultConfig()}

	rootCmd := &cobra.Command{
		Use:   "buzzctl",
		Short: "CLI tool for the buzzer relay",
		Long: `buzzctl hosts or joins buzzer rooms from the terminal and inspects
rooms through the read-only JSON API.

Hosts create a room and share its code. Players join with the code and buzz
when the host releases the buzzers.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			state.client = NewClient(state.cfg.ServerURL)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&state.cfg.ServerURL, "server", state.cfg.ServerURL, "Server URL (env: BUZZ_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&state.cfg.Output, "output", "o", state.cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&state.cfg.Verbose, "verbose", "v", state.cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newHostCmd(state))
	rootCmd.AddCommand(newJoinCmd(state))
	rootCmd.AddCommand(newRoomCmd(state))
	rootCmd.AddCommand(newHealthCmd(state))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
