package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lyricsync/internal/daemon"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	var subject string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a JWT bearer token for the HTTP API",
		RunE:  func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			secret := cfg.Paths.APIJWTSecret
			if secret == "" {
				return errors.New("paths.api_jwt_secret is not set (or export LYRICSYNC_JWT_SECRET)")
			}
			subject = strings.TrimSpace(subject)
			if subject == "" {
				return errors.New("--subject must not be empty")
			}
			if ttl <= 0 {
				return errors.New("--ttl must be positive")
			}
			token, err := daemon.IssueToken(secret, subject, ttl)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "player", "Token subject, typically the player name")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
