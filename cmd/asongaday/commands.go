package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"ASongADay/internal/app"
	"ASongADay/internal/config"
	"ASongADay/internal/domain"
)

const seedTokenEnv = "TWITTER_TOKEN"

func newRootCmd(cfg config.Config, logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "asongaday",
		Short:         "Publish the next unpublished playlist item once a day",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newRunCmd(cfg, logger),
		newScheduleCmd(cfg, logger),
		newCredentialCmd(cfg, logger),
	)
	return root
}

func newRunCmd(cfg config.Config, logger *slog.Logger) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Refresh the credential, select the next item and publish it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			application, err := app.New(cfg, logger, app.Options{DryRun: dryRun})
			if err != nil {
				return err
			}
			defer application.Close()

			report, err := application.Run(cmd.Context())
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), report.Text)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "published %s: %s\n", report.PostID, report.Selected.Title)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "render the post without publishing (the credential is still refreshed)")
	return cmd
}

func newScheduleCmd(cfg config.Config, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline every day at the configured time",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			application, err := app.New(cfg, logger, app.Options{})
			if err != nil {
				return err
			}
			defer application.Close()
			return application.Schedule(cmd.Context())
		},
	}
}

func newCredentialCmd(cfg config.Config, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage the persisted publishing credential",
	}

	var (
		file    string
		fromEnv bool
	)
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Store an initial credential obtained from the authorization handshake",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readSeed(file, fromEnv)
			if err != nil {
				return err
			}
			cred, err := domain.DecodeCredential(raw)
			if err != nil {
				return err
			}

			application, err := app.New(cfg, logger, app.Options{})
			if err != nil {
				return err
			}
			defer application.Close()
			return application.SeedCredential(cmd.Context(), cred)
		},
	}
	seed.Flags().StringVar(&file, "file", "", "path to a JSON credential")
	seed.Flags().BoolVar(&fromEnv, "env", false, "read the JSON credential from $"+seedTokenEnv)

	cmd.AddCommand(seed)
	return cmd
}

func readSeed(file string, fromEnv bool) ([]byte, error) {
	switch {
	case file != "" && fromEnv:
		return nil, errors.New("use either --file or --env")
	case file != "":
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read seed: %w", err)
		}
		return raw, nil
	case fromEnv:
		v := os.Getenv(seedTokenEnv)
		if v == "" {
			return nil, fmt.Errorf("$%s is empty", seedTokenEnv)
		}
		return []byte(v), nil
	default:
		return nil, errors.New("one of --file or --env is required")
	}
}
