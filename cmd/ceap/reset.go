package main

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JonMunkholm/ceap/internal/admin"
	"github.com/JonMunkholm/ceap/internal/store"
)

func resetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every stored registrant and expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return errors.New("refusing to reset without --yes")
			}
			dsn := viper.GetString("database_url")
			if dsn == "" {
				return errors.New("no database configured: set --database-url or DATABASE_URL")
			}

			pool, err := pgxpool.New(cmd.Context(), dsn)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer pool.Close()

			if err := admin.ResetAll(cmd.Context(), store.NewPostgres(pool, 0)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "CEAP tables reset")
			return nil
		},
	}
	cmd.Flags().Bool("yes", false, "confirm the reset")
	return cmd
}
