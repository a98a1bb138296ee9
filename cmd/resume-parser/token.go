package main

import (
	"fmt"
	"time"

	"github.com/resumeflow/resumeflow-backend/internal/resume/handler"
	"github.com/resumeflow/resumeflow-backend/pkg/config"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Issue a Bearer token for the upload endpoints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(serviceName)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			token, err := handler.NewAuthenticator(cfg.Auth).IssueToken(args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
