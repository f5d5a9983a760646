package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/jobtrail/internal/client/moderation"
	"github.com/iudanet/jobtrail/internal/models"
)

func suggestionRows(list []*models.EditSuggestion) [][]string {
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		rows = append(rows, []string{
			s.ID, s.CompanyID, s.Field, s.SuggestedValue, s.SubmittedBy, s.CreatedAt.Local().Format(time.DateTime),
		})
	}
	return rows
}

func newModerationCmd(c *Cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "moderation",
		Short: "Suggest and review edits to community companies (requires the backend)",
	}
	cmd.AddCommand(
		newModerationSubmitCmd(c),
		newModerationPendingCmd(c),
		newModerationReviewCmd(c, "approve"),
		newModerationReviewCmd(c, "reject"),
	)
	return cmd
}

func newModerationSubmitCmd(c *Cli) *cobra.Command {
	var req moderation.SubmitRequest
	cmd := &cobra.Command{
		Use:   "submit <company-id>",
		Short: "Suggest a new value for a company field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}

			req.CompanyID = args[0]
			s, err := c.moderation.Submit(cmd.Context(), req)
			if err != nil {
				return err
			}
			return p.done(s, "Suggestion %s submitted for review", s.ID)
		},
	}
	cmd.Flags().StringVar(&req.Field, "field", "", "Field to change")
	cmd.Flags().StringVar(&req.Value, "value", "", "Suggested value")
	cmd.Flags().StringVar(&req.Reason, "reason", "", "Why the change is needed")
	_ = cmd.MarkFlagRequired("field")
	return cmd
}

func newModerationPendingCmd(c *Cli) *cobra.Command {
	var companyID string
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List suggestions waiting for review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}
			list, err := c.moderation.Pending(cmd.Context(), companyID)
			if err != nil {
				return err
			}
			return p.table(list, []string{"ID", "COMPANY", "FIELD", "VALUE", "BY", "CREATED"}, suggestionRows(list))
		},
	}
	cmd.Flags().StringVar(&companyID, "company", "", "Only suggestions for this company")
	return cmd
}

func newModerationReviewCmd(c *Cli, action string) *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   action + " <suggestion-id>",
		Short: "Mark a suggestion as " + action + "d",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}

			var s *models.EditSuggestion
			if action == "approve" {
				s, _, err = c.moderation.Approve(cmd.Context(), args[0], note)
			} else {
				s, err = c.moderation.Reject(cmd.Context(), args[0], note)
			}
			if err != nil {
				return err
			}
			return p.done(s, "Suggestion %s %s", s.ID, s.Status)
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "Review note")
	return cmd
}
