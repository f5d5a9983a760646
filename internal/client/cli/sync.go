package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/jobtrail/internal/client/sync"
	"github.com/iudanet/jobtrail/internal/models"
)

type syncReport struct {
	Pushed  *sync.SyncResult          `json:"pushed"`
	Pulled  map[models.Collection]int `json:"pulled,omitempty"`
	Pending int                       `json:"pending"`
}

func newSyncCmd(c *Cli) *cobra.Command {
	var pull bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Replay offline changes and optionally pull server updates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}

			if !c.syncService.IsOnline(ctx) {
				return fmt.Errorf("cannot sync: %w", sync.ErrOffline)
			}

			report := syncReport{}
			report.Pushed, err = c.syncService.SyncOfflineChanges(ctx)
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			if pull {
				report.Pulled = make(map[models.Collection]int, len(c.refreshers))
				for _, r := range c.refreshers {
					n, err := r.refresh(ctx)
					if err != nil {
						if errors.Is(err, sync.ErrOffline) {
							return fmt.Errorf("cannot pull: %w", err)
						}
						c.logger.WarnContext(ctx, "Failed to pull collection",
							slog.String("collection", string(r.collection)), slog.Any("error", err))
						continue
					}
					report.Pulled[r.collection] = n
				}
			}

			if report.Pending, err = c.syncService.GetPendingSyncCount(ctx); err != nil {
				return err
			}

			if p.json {
				return p.encode(report)
			}
			fmt.Fprintf(p.w, "Synced: %d, conflicts: %d, failed: %d, skipped: %d\n",
				report.Pushed.Synced, report.Pushed.Conflicts, report.Pushed.Failed, report.Pushed.Skipped)
			for _, r := range c.refreshers {
				if n, ok := report.Pulled[r.collection]; ok {
					fmt.Fprintf(p.w, "Pulled %d %s\n", n, r.collection)
				}
			}
			fmt.Fprintf(p.w, "Pending changes: %d\n", report.Pending)
			if report.Pushed.Conflicts > 0 {
				fmt.Fprintln(p.w, "Use 'jobtrail conflicts list' to review conflicts.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&pull, "pull", false, "Pull newer server rows after pushing")
	return cmd
}

type statusReport struct {
	LastSync  *time.Time `json:"last_sync,omitempty"`
	UserID    string     `json:"user_id"`
	Server    string     `json:"server"`
	Pending   int        `json:"pending"`
	Conflicts int        `json:"conflicts"`
	Online    bool       `json:"online"`
}

func newStatusCmd(c *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show connectivity and synchronization state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}

			report := statusReport{
				UserID: c.userID,
				Server: c.cfg.Gateway.URL,
				Online: c.syncService.IsOnline(ctx),
			}
			if report.Pending, err = c.syncService.GetPendingSyncCount(ctx); err != nil {
				return err
			}
			conflicts, err := c.syncService.Conflicts(ctx)
			if err != nil {
				return err
			}
			report.Conflicts = len(conflicts)

			last, err := c.syncService.LastSync(ctx)
			if err != nil {
				return err
			}
			if !last.IsZero() {
				report.LastSync = &last
			}

			if p.json {
				return p.encode(report)
			}

			mode := "offline"
			if report.Online {
				mode = "online"
			}
			lastSync := "never"
			if report.LastSync != nil {
				lastSync = report.LastSync.Local().Format(time.DateTime)
			}
			fmt.Fprintf(p.w, "User:            %s\n", report.UserID)
			fmt.Fprintf(p.w, "Server:          %s (%s)\n", report.Server, mode)
			fmt.Fprintf(p.w, "Pending changes: %d\n", report.Pending)
			fmt.Fprintf(p.w, "Conflicts:       %d\n", report.Conflicts)
			fmt.Fprintf(p.w, "Last sync:       %s\n", lastSync)
			return nil
		},
	}
}

func newConflictsCmd(c *Cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Review and resolve sync conflicts",
	}
	cmd.AddCommand(newConflictsListCmd(c), newConflictsResolveCmd(c))
	return cmd
}

func newConflictsListCmd(c *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List unresolved conflicts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}
			conflicts, err := c.syncService.Conflicts(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(conflicts))
			for _, cf := range conflicts {
				rows = append(rows, []string{
					cf.EntityID, string(cf.Collection), cf.DetectedAt.Local().Format(time.DateTime),
				})
			}
			return p.table(conflicts, []string{"ENTITY", "COLLECTION", "DETECTED"}, rows)
		},
	}
}

func newConflictsResolveCmd(c *Cli) *cobra.Command {
	var keep string
	cmd := &cobra.Command{
		Use:   "resolve <entity-id>",
		Short: "Resolve a conflict by keeping the local or the server version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), c.output)
			if err != nil {
				return err
			}

			choice := models.ConflictChoice(keep)
			if choice != models.ResolveLocal && choice != models.ResolveServer {
				return fmt.Errorf("--keep must be %q or %q", models.ResolveLocal, models.ResolveServer)
			}
			if err := c.syncService.ResolveConflict(cmd.Context(), args[0], choice); err != nil {
				return err
			}
			return p.done(map[string]string{"resolved": args[0], "kept": keep}, "Conflict for %s resolved, kept %s version", args[0], keep)
		},
	}
	cmd.Flags().StringVar(&keep, "keep", "", "Version to keep: local or server")
	_ = cmd.MarkFlagRequired("keep")
	return cmd
}
