package cli

import (
	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session matchmaking and gameplay commands",
	}

	cmd.AddCommand(newSessionJoinCmd())
	cmd.AddCommand(newSessionShowCmd())
	cmd.AddCommand(newSessionAckCmd())
	cmd.AddCommand(newSessionAnswerCmd())
	cmd.AddCommand(newSessionChooseCmd())
	cmd.AddCommand(newSessionMatchesCmd())

	return cmd
}

func newSessionJoinCmd() *cobra.Command {
	var prompt string

	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join matchmaking with a question for the opposite category",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"prompt": prompt}
			var result JoinResult

			if err := client.Post("/api/v1/sessions/join", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", "", "Question text (required)")
	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}

func newSessionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show the current session state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Snapshot

			if err := client.Get("/api/v1/sessions/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionAckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ack <session-id>",
		Short: "Acknowledge the roster and start collecting answers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/sessions/"+args[0]+"/roster-ack", nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Roster acknowledged")
			return nil
		},
	}
}

func newSessionAnswerCmd() *cobra.Command {
	var promptID, text string

	cmd := &cobra.Command{
		Use:   "answer <session-id>",
		Short: "Answer a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"prompt_id": promptID, "text": text}

			if err := client.Post("/api/v1/sessions/"+args[0]+"/responses", req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Answer recorded")
			return nil
		},
	}

	cmd.Flags().StringVar(&promptID, "prompt", "", "Prompt id (required)")
	cmd.Flags().StringVar(&text, "text", "", "Answer text (required)")
	_ = cmd.MarkFlagRequired("prompt")
	_ = cmd.MarkFlagRequired("text")

	return cmd
}

func newSessionChooseCmd() *cobra.Command {
	var targetID string
	var nobody bool

	cmd := &cobra.Command{
		Use:   "choose <session-id>",
		Short: "Record the final choice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if targetID == "" && !nobody {
				return cmd.Help()
			}

			req := map[string]string{"target_id": targetID}

			if err := client.Post("/api/v1/sessions/"+args[0]+"/choices", req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			if targetID == "" {
				out.PrintMessage("Choice recorded: nobody")
			} else {
				out.PrintMessage("Choice recorded: " + targetID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&targetID, "target", "", "Chosen participant id")
	cmd.Flags().BoolVar(&nobody, "nobody", false, "Explicitly choose nobody")

	return cmd
}

func newSessionMatchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "matches <session-id>",
		Short: "Show mutual matches for a finished session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result MatchList

			if err := client.Get("/api/v1/sessions/"+args[0]+"/matches", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
