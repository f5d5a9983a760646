package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/jobtrail/internal/client/geocode"
	"github.com/iudanet/jobtrail/internal/validation"
)

func newGeocodeCmd(c *Cli) *cobra.Command {
	var metro string
	cmd := &cobra.Command{
		Use:   "geocode <address>",
		Short: "Resolve an address to coordinates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}

			res := c.geocoder.Geocode(cmd.Context(), strings.Join(args, " "))
			if !res.OK() {
				return fmt.Errorf("geocoding failed (%s): %s", res.Status, res.Message)
			}

			if metro != "" {
				check := geocode.CheckMetroCenter(geocode.Point{Latitude: res.Latitude, Longitude: res.Longitude}, metro, 0)
				if w := check.Warning(); w != "" {
					warn(cmd.ErrOrStderr(), []string{w})
				}
			}
			return p.done(res, "%s\n%.6f, %.6f", res.DisplayName, res.Latitude, res.Longitude)
		},
	}
	cmd.Flags().StringVar(&metro, "metro", "", "Warn if the result is far from this metro area center")
	return cmd
}

// resolvePoint принимает "lat,lon" или ID компании
func (c *Cli) resolvePoint(ctx context.Context, arg string) (geocode.Point, error) {
	if lat, lon, ok := strings.Cut(arg, ","); ok {
		latV, errLat := strconv.ParseFloat(strings.TrimSpace(lat), 64)
		lonV, errLon := strconv.ParseFloat(strings.TrimSpace(lon), 64)
		if errLat != nil || errLon != nil {
			return geocode.Point{}, validation.Errorf("point", "expected lat,lon, got %q", arg)
		}
		point := geocode.Point{Latitude: latV, Longitude: lonV}
		return point, validation.Coordinates(point.Latitude, point.Longitude)
	}

	company, err := c.companies.Get(ctx, arg)
	if err != nil {
		return geocode.Point{}, err
	}
	if !company.HasCoordinates() {
		return geocode.Point{}, validation.Errorf("point", "company %s has no coordinates", arg)
	}
	return geocode.Point{Latitude: company.Latitude, Longitude: company.Longitude}, nil
}

func newDistanceCmd(c *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "distance <lat,lon|company-id> <lat,lon|company-id>",
		Short: "Great-circle distance in miles between two points",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}

			from, err := c.resolvePoint(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			to, err := c.resolvePoint(cmd.Context(), args[1])
			if err != nil {
				return err
			}

			miles := geocode.HaversineDistance(from.Latitude, from.Longitude, to.Latitude, to.Longitude)
			return p.done(map[string]float64{"miles": miles}, "%.1f miles", miles)
		},
	}
}
