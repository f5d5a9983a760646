package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/iudanet/jobtrail/internal/logging"
	"github.com/iudanet/jobtrail/internal/server"
	"github.com/iudanet/jobtrail/internal/server/jwt"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("jobtrail-server", pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to the YAML config file")
	flags.String("addr", "", "listen address (default :8080)")
	flags.String("db", "", "path to the SQLite database")
	flags.String("jwt-secret", "", "HS256 secret for bearer tokens")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	issueToken := flags.String("issue-token", "", "print a bearer token for the given user id and exit")
	showVersion := flags.Bool("version", false, "show version information")

	if err := flags.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		printVersion()
		return nil
	}

	cfg, err := server.LoadConfig(*configPath, flags)
	if err != nil {
		return err
	}

	if *issueToken != "" {
		token, err := jwt.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).Issue(*issueToken)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, Version, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	logger.Info("starting jobtrail server",
		"version", Version,
		"build_date", BuildDate,
		"git_commit", GitCommit,
		"db", cfg.Storage.Path,
	)
	return srv.Run(ctx)
}

func printVersion() {
	fmt.Printf("JobTrail Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
