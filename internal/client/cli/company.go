package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/iudanet/jobtrail/internal/client/data"
	"github.com/iudanet/jobtrail/internal/client/geocode"
	"github.com/iudanet/jobtrail/internal/models"
	"github.com/iudanet/jobtrail/internal/validation"
)

// companyFlags поля компании, общие для add и update
type companyFlags struct {
	name, address, city, state, zip string
	website, careers, metro, notes  string
	status                          string
	lat, lon                        float64
	priority                        int
}

func (f *companyFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "Company name")
	fs.StringVar(&f.address, "address", "", "Street address")
	fs.StringVar(&f.city, "city", "", "City")
	fs.StringVar(&f.state, "state", "", "State")
	fs.StringVar(&f.zip, "zip", "", "ZIP code")
	fs.StringVar(&f.website, "website", "", "Website URL")
	fs.StringVar(&f.careers, "careers-url", "", "Careers page URL")
	fs.StringVar(&f.metro, "metro", "", "Metro area")
	fs.StringVar(&f.notes, "notes", "", "Notes")
	fs.StringVar(&f.status, "status", "", "Status")
	fs.Float64Var(&f.lat, "lat", 0, "Latitude (skips geocoding together with --lon)")
	fs.Float64Var(&f.lon, "lon", 0, "Longitude")
	fs.IntVar(&f.priority, "priority", 0, "Priority 1-5")
}

// apply copies flags that were set on the command line into c
func (f *companyFlags) apply(fs *pflag.FlagSet, c *models.Company) {
	set := func(name string, dst *string, v string) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	set("name", &c.Name, f.name)
	set("address", &c.Address, f.address)
	set("city", &c.City, f.city)
	set("state", &c.State, f.state)
	set("zip", &c.ZipCode, f.zip)
	set("website", &c.Website, f.website)
	set("careers-url", &c.CareersURL, f.careers)
	set("metro", &c.MetroArea, f.metro)
	set("notes", &c.Notes, f.notes)
	if fs.Changed("status") {
		c.Status = models.CompanyStatus(f.status)
	}
	if fs.Changed("lat") {
		c.Latitude = f.lat
	}
	if fs.Changed("lon") {
		c.Longitude = f.lon
	}
	if fs.Changed("priority") {
		c.Priority = f.priority
	}
}

func companyRows(companies []*models.Company) [][]string {
	rows := make([][]string, 0, len(companies))
	for _, co := range companies {
		rows = append(rows, []string{
			co.ID, co.Name, co.City, string(co.Status), strconv.Itoa(co.Priority), formatCoord(co.Latitude, co.Longitude),
		})
	}
	return rows
}

var companyHeaders = []string{"ID", "NAME", "CITY", "STATUS", "PRIORITY", "LOCATION"}

func newCompanyCmd(c *Cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "company",
		Aliases: []string{"companies"},
		Short:   "Manage community companies",
	}
	cmd.AddCommand(
		newCompanyAddCmd(c),
		newCompanyListCmd(c),
		newCompanyShowCmd(c),
		newCompanyUpdateCmd(c),
		newCompanyDeleteCmd(c),
		newCompanyNearbyCmd(c),
	)
	return cmd
}

func newCompanyAddCmd(c *Cli) *cobra.Command {
	var f companyFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}

			company := &models.Company{}
			f.apply(cmd.Flags(), company)

			res, err := c.companies.Add(cmd.Context(), company)
			if err != nil {
				return fmt.Errorf("failed to add company: %w", err)
			}
			warn(cmd.ErrOrStderr(), res.Warnings)
			return p.done(res.Company, "Company %q added (id %s)", res.Company.Name, res.Company.ID)
		},
	}
	f.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}

func newCompanyListCmd(c *Cli) *cobra.Command {
	var (
		filter data.CompanyFilter
		status string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List companies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}

			filter.Status = models.CompanyStatus(status)
			companies, err := c.companies.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return p.table(companies, companyHeaders, companyRows(companies))
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&filter.MetroArea, "metro", "", "Filter by metro area")
	cmd.Flags().StringVar(&filter.Search, "search", "", "Filter by name")
	cmd.Flags().IntVar(&filter.MinPriority, "min-priority", 0, "Minimum priority")
	cmd.Flags().BoolVar(&filter.ApprovedOnly, "approved", false, "Only approved companies")
	return cmd
}

func newCompanyShowCmd(c *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show company details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}
			company, err := c.companies.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return p.detail(company, companyTemplate)
		},
	}
}

func newCompanyUpdateCmd(c *Cli) *cobra.Command {
	var f companyFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update company fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}

			company, err := c.companies.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			f.apply(cmd.Flags(), company)

			res, err := c.companies.Update(cmd.Context(), company)
			if err != nil {
				return fmt.Errorf("failed to update company: %w", err)
			}
			warn(cmd.ErrOrStderr(), res.Warnings)
			return p.done(res.Company, "Company %s updated", res.Company.ID)
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newCompanyDeleteCmd(c *Cli) *cobra.Command {
	return confirmDestructive(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}
			if err := c.companies.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			return p.done(map[string]string{"deleted": args[0]}, "Company %s deleted", args[0])
		},
	}, "Delete company %s?")
}

func newCompanyNearbyCmd(c *Cli) *cobra.Command {
	var lat, lon, radius float64
	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "List companies within a radius of home",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}

			home := geocode.Point{Latitude: c.cfg.Home.Latitude, Longitude: c.cfg.Home.Longitude}
			if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
				home = geocode.Point{Latitude: lat, Longitude: lon}
			} else if !c.cfg.Home.IsSet() {
				return validation.Errorf("home", "set home.latitude/home.longitude or pass --lat and --lon")
			}
			if !cmd.Flags().Changed("radius") {
				radius = c.cfg.Home.RadiusMiles
			}

			nearby, err := c.companies.Nearby(cmd.Context(), home, radius)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(nearby))
			for _, n := range nearby {
				rows = append(rows, []string{
					n.Company.ID, n.Company.Name, n.Company.City, strconv.FormatFloat(n.Distance, 'f', 1, 64),
				})
			}
			return p.table(nearby, []string{"ID", "NAME", "CITY", "MILES"}, rows)
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "Center latitude (default home.latitude)")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Center longitude (default home.longitude)")
	cmd.Flags().Float64Var(&radius, "radius", 0, "Radius in miles (default home.radius_miles)")
	return cmd
}
