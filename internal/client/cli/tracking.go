package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/iudanet/jobtrail/internal/client/data"
	"github.com/iudanet/jobtrail/internal/models"
)

func newTrackCmd(c *Cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track",
		Short: "Follow community companies",
	}
	cmd.AddCommand(newTrackAddCmd(c), newTrackListCmd(c), newTrackRemoveCmd(c))
	return cmd
}

func newTrackAddCmd(c *Cli) *cobra.Command {
	var (
		req    data.TrackRequest
		status string
	)
	cmd := &cobra.Command{
		Use:   "add <company-id>",
		Short: "Start tracking a company or update its tracking record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}

			req.CompanyID = args[0]
			req.Status = models.CompanyStatus(status)
			rec, err := c.tracking.Track(cmd.Context(), req)
			if err != nil {
				return err
			}
			return p.done(rec, "Tracking company %s (%s)", rec.CompanyID, rec.Status)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Status")
	cmd.Flags().StringVar(&req.Notes, "notes", "", "Notes")
	cmd.Flags().IntVar(&req.Priority, "priority", 0, "Priority 1-5")
	return cmd
}

func newTrackListCmd(c *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked companies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}
			records, err := c.tracking.List(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{r.CompanyID, string(r.Status), strconv.Itoa(r.Priority), r.Notes})
			}
			return p.table(records, []string{"COMPANY", "STATUS", "PRIORITY", "NOTES"}, rows)
		},
	}
}

func newTrackRemoveCmd(c *Cli) *cobra.Command {
	return confirmDestructive(&cobra.Command{
		Use:   "remove <company-id>",
		Short: "Stop tracking a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}
			if err := c.tracking.Untrack(cmd.Context(), args[0]); err != nil {
				return err
			}
			return p.done(map[string]string{"untracked": args[0]}, "Stopped tracking company %s", args[0])
		},
	}, "Stop tracking company %s?")
}
