package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/jobtrail/internal/models"
)

func newPrivateCmd(c *Cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "private",
		Short: "Manage companies visible only to you",
	}
	cmd.AddCommand(newPrivateAddCmd(c), newPrivateListCmd(c), newPrivateDeleteCmd(c))
	return cmd
}

func newPrivateAddCmd(c *Cli) *cobra.Command {
	var f companyFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a private company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}

			// Общие флаги заполняют Company, переносим поля в PrivateCompany
			var shared models.Company
			f.apply(cmd.Flags(), &shared)
			company := &models.PrivateCompany{
				Name:       shared.Name,
				Address:    shared.Address,
				City:       shared.City,
				State:      shared.State,
				ZipCode:    shared.ZipCode,
				Website:    shared.Website,
				CareersURL: shared.CareersURL,
				MetroArea:  shared.MetroArea,
				Status:     shared.Status,
				Notes:      shared.Notes,
				Latitude:   shared.Latitude,
				Longitude:  shared.Longitude,
				Priority:   shared.Priority,
			}

			created, warnings, err := c.privates.Add(cmd.Context(), company)
			if err != nil {
				return fmt.Errorf("failed to add private company: %w", err)
			}
			warn(cmd.ErrOrStderr(), warnings)
			return p.done(created, "Private company %q added (id %s)", created.Name, created.ID)
		},
	}
	f.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}

func newPrivateListCmd(c *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List private companies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}
			companies, err := c.privates.List(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(companies))
			for _, co := range companies {
				rows = append(rows, []string{co.ID, co.Name, co.City, string(co.Status), formatCoord(co.Latitude, co.Longitude)})
			}
			return p.table(companies, []string{"ID", "NAME", "CITY", "STATUS", "LOCATION"}, rows)
		},
	}
}

func newPrivateDeleteCmd(c *Cli) *cobra.Command {
	return confirmDestructive(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a private company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}
			if err := c.privates.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			return p.done(map[string]string{"deleted": args[0]}, "Private company %s deleted", args[0])
		},
	}, "Delete private company %s?")
}
