package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/iudanet/jobtrail/internal/client/config"
	"github.com/iudanet/jobtrail/internal/client/iocli"
)

// BuildInfo версия сборки, задается через ldflags
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// annotationNoStore помечает команды, которым не нужны конфиг и база
const annotationNoStore = "jobtrail/no-store"

// Execute runs the command line and releases the local database afterwards
func Execute(ctx context.Context, info BuildInfo, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root, c := newRootCommand(info)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	return errors.Join(err, c.close())
}

func newRootCommand(info BuildInfo) (*cobra.Command, *Cli) {
	c := &Cli{}
	var configPath string

	root := &cobra.Command{
		Use:           "jobtrail",
		Short:         "Offline-first job search tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := cmd.Annotations[annotationNoStore]; ok {
				return nil
			}
			cfg, err := config.Load(configPath, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			return c.open(cmd.Context(), cfg)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to YAML config file")
	flags.String("db", "", "Path to local database")
	flags.String("server", "", "Backend URL")
	flags.Bool("offline", false, "Do not contact the backend")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.StringVarP(&c.output, "output", "o", outputAuto, "Output format: auto, table, json")

	root.AddCommand(
		newCompanyCmd(c),
		newAppCmd(c),
		newTrackCmd(c),
		newPrivateCmd(c),
		newSyncCmd(c),
		newStatusCmd(c),
		newConflictsCmd(c),
		newGeocodeCmd(c),
		newDistanceCmd(c),
		newModerationCmd(c),
		newVersionCmd(info),
	)
	return root, c
}

func newVersionCmd(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoStore: ""},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "jobtrail client\n")
			fmt.Fprintf(out, "Version:    %s\n", info.Version)
			fmt.Fprintf(out, "Build Date: %s\n", info.BuildDate)
			fmt.Fprintf(out, "Git Commit: %s\n", info.GitCommit)
			return nil
		},
	}
}

// confirmDestructive adds --yes to cmd and asks for confirmation before
// running it when stdin is a terminal. question is formatted with the first
// argument.
func confirmDestructive(cmd *cobra.Command, question string) *cobra.Command {
	run := cmd.RunE
	var yes bool
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if !yes {
			prompt := iocli.NewStdio(cmd.InOrStdin(), cmd.ErrOrStderr())
			if prompt.Interactive() {
				ok, err := prompt.Confirm(fmt.Sprintf(question, args[0]))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.ErrOrStderr(), "Aborted.")
					return nil
				}
			}
		}
		return run(cmd, args)
	}
	return cmd
}
