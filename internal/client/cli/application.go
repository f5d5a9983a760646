package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/jobtrail/internal/client/data"
	"github.com/iudanet/jobtrail/internal/models"
	"github.com/iudanet/jobtrail/internal/validation"
)

func parseDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, validation.Errorf(field, "expected YYYY-MM-DD, got %q", s)
	}
	return &t, nil
}

func applicationRows(apps []*models.JobApplication) [][]string {
	rows := make([][]string, 0, len(apps))
	for _, a := range apps {
		rows = append(rows, []string{
			a.ID, a.Position, a.CompanyID, string(a.Status), strconv.Itoa(a.Priority), formatDate(a.AppliedDate), formatDate(a.FollowUpDate),
		})
	}
	return rows
}

var applicationHeaders = []string{"ID", "POSITION", "COMPANY", "STATUS", "PRIORITY", "APPLIED", "FOLLOW-UP"}

func newAppCmd(c *Cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "app",
		Aliases: []string{"application", "applications"},
		Short:   "Manage job applications",
	}
	cmd.AddCommand(
		newAppAddCmd(c),
		newAppListCmd(c),
		newAppShowCmd(c),
		newAppStatusCmd(c),
		newAppDeleteCmd(c),
		newAppFollowUpsCmd(c),
	)
	return cmd
}

func newAppAddCmd(c *Cli) *cobra.Command {
	var (
		app              models.JobApplication
		status, followUp string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a job application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}

			app.Status = models.ApplicationStatus(status)
			if app.FollowUpDate, err = parseDate("follow_up_date", followUp); err != nil {
				return err
			}

			created, err := c.applications.Add(cmd.Context(), &app)
			if err != nil {
				return fmt.Errorf("failed to add application: %w", err)
			}
			return p.done(created, "Application %q added (id %s)", created.Position, created.ID)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&app.CompanyID, "company", "", "Company ID")
	fs.StringVar(&app.Position, "position", "", "Position title")
	fs.StringVar(&status, "status", "", "Status (default saved)")
	fs.IntVar(&app.Priority, "priority", 0, "Priority 1-5")
	fs.StringVar(&app.JobURL, "url", "", "Job posting URL")
	fs.StringVar(&app.SalaryRange, "salary", "", "Salary range")
	fs.StringVar(&app.Notes, "notes", "", "Notes")
	fs.StringVar(&followUp, "follow-up", "", "Follow-up date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("position")
	return cmd
}

func newAppListCmd(c *Cli) *cobra.Command {
	var (
		filter data.ApplicationFilter
		status string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List job applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}

			filter.Status = models.ApplicationStatus(status)
			apps, err := c.applications.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return p.table(apps, applicationHeaders, applicationRows(apps))
		},
	}
	cmd.Flags().StringVar(&filter.CompanyID, "company", "", "Filter by company ID")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().BoolVar(&filter.OpenOnly, "open", false, "Only applications that are not closed")
	return cmd
}

func newAppShowCmd(c *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show application details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}
			app, err := c.applications.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return p.detail(app, applicationTemplate)
		},
	}
}

func newAppStatusCmd(c *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move an application to another status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}
			app, err := c.applications.SetStatus(cmd.Context(), args[0], models.ApplicationStatus(args[1]))
			if err != nil {
				return err
			}
			return p.done(app, "Application %s is now %s", app.ID, app.Status)
		},
	}
}

func newAppDeleteCmd(c *Cli) *cobra.Command {
	return confirmDestructive(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}
			if err := c.applications.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			return p.done(map[string]string{"deleted": args[0]}, "Application %s deleted", args[0])
		},
	}, "Delete application %s?")
}

func newAppFollowUpsCmd(c *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "followups",
		Short: "List open applications with a follow-up due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}
			apps, err := c.applications.FollowUpsDue(cmd.Context())
			if err != nil {
				return err
			}
			return p.table(apps, applicationHeaders, applicationRows(apps))
		},
	}
}
