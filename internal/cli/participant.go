package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newParticipantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "participant",
		Short: "Participant management commands",
	}

	cmd.AddCommand(newParticipantResolveCmd())
	cmd.AddCommand(newParticipantMeCmd())
	cmd.AddCommand(newParticipantCategoryCmd())

	return cmd
}

func newParticipantResolveCmd() *cobra.Command {
	var externalID, name, username, photoURL string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve (create or refresh) a participant identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"external_id":  externalID,
				"display_name": name,
			}
			if username != "" {
				req["username"] = username
			}
			if photoURL != "" {
				req["photo_url"] = photoURL
			}

			var result Participant
			if err := client.Post("/api/v1/participants/resolve", req, &result); err != nil {
				return err
			}

			// Save the identity for subsequent commands
			if err := cfg.SaveIdentity(result.ID); err != nil {
				return fmt.Errorf("failed to save identity: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&externalID, "external-id", "", "External identity key (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&username, "username", "", "Username")
	cmd.Flags().StringVar(&photoURL, "photo-url", "", "Photo URL")
	_ = cmd.MarkFlagRequired("external-id")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newParticipantMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show current participant info",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Participant

			if err := client.Get("/api/v1/participants/me", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newParticipantCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "category <male|female>",
		Short: "Declare the participant's category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"category": args[0]}
			var result Participant

			if err := client.Post("/api/v1/participants/me/category", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
