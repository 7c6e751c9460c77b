package cli

import (
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var reportedID, reason, contentRef string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "File an abuse report against another participant",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"reported_id": reportedID,
				"reason":      reason,
			}
			if contentRef != "" {
				req["content_ref"] = contentRef
			}

			if err := client.Post("/api/v1/reports", req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Report filed")
			return nil
		},
	}

	cmd.Flags().StringVar(&reportedID, "participant", "", "Reported participant id (required)")
	cmd.Flags().StringVar(&reason, "reason", "", "Report reason (required)")
	cmd.Flags().StringVar(&contentRef, "content-ref", "", "Reference to the offending content")
	_ = cmd.MarkFlagRequired("participant")
	_ = cmd.MarkFlagRequired("reason")

	return cmd
}
