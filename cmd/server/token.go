package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/phrazzld/scry-srs/internal/config"
	"github.com/phrazzld/scry-srs/internal/service/auth"
)

func newTokenCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a learner (development use)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := uuid.Parse(user)
			if err != nil || userID == uuid.Nil {
				return fmt.Errorf("--user must be a non-nil UUID")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			return issueToken(cmd, cfg.Auth, userID)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "learner UUID to issue the token for")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func issueToken(cmd *cobra.Command, cfg config.AuthConfig, userID uuid.UUID) error {
	jwtService, err := auth.NewJWTService(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	token, err := jwtService.GenerateToken(cmd.Context(), userID)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}
