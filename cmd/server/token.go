package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/service/auth"
	"github.com/spf13/cobra"
)

// newTokenCommand issues a bearer token for local development. Production
// tokens come from the identity provider that shares the signing secret.
func newTokenCommand() *cobra.Command {
	var (
		owner    string
		lifetime time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed bearer token for an owner ID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ownerID := uuid.New()
			if owner != "" {
				parsed, err := uuid.Parse(owner)
				if err != nil {
					return fmt.Errorf("invalid owner ID %q: %w", owner, err)
				}
				ownerID = parsed
			}
			if lifetime <= 0 {
				return fmt.Errorf("lifetime must be positive, got %s", lifetime)
			}

			cfg, _, err := loadAppConfig()
			if err != nil {
				return err
			}
			jwtService, err := auth.NewJWTService(cfg.Auth)
			if err != nil {
				return err
			}

			token, err := jwtService.GenerateToken(cmd.Context(), ownerID, lifetime)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "owner: %s\ntoken: %s\n", ownerID, token)
			return err
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner UUID (random when empty)")
	cmd.Flags().DurationVar(&lifetime, "lifetime", 24*time.Hour, "token lifetime")
	return cmd
}
