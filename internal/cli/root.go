package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "svpcli",
		Short: "CLI tool for the sprosil-uvidel-polyubil API",
		Long: `svpcli is a CLI tool for interacting with the sprosil-uvidel-polyubil JSON API.

It supports all API operations including participant management, session
matchmaking, answers and final choices, abuse reports, and real-time SSE
event streaming.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load the saved identity if not provided via flag/env
			if err := cfg.LoadIdentity(); err != nil {
				return err
			}

			// Create HTTP client
			client = NewClient(cfg.ServerURL, cfg.ParticipantID)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: SVP_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.ParticipantID, "participant", cfg.ParticipantID, "Participant id (env: SVP_PARTICIPANT_ID)")
	rootCmd.PersistentFlags().StringVar(&cfg.IdentityFile, "identity-file", cfg.IdentityFile, "Identity file path (env: SVP_IDENTITY_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newParticipantCmd())
	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
