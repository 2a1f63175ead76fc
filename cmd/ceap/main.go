// Command ceap imports CEAP expense exports from the command line and
// checks CPFs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JonMunkholm/ceap/internal/logging"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "ceap",
		Short:             "Import and check CEAP expense data",
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}

	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "text", "log format (text, json)")
	root.PersistentFlags().String("database-url", "", "PostgreSQL connection string (env DATABASE_URL)")
	_ = viper.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_format", root.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("database_url", root.PersistentFlags().Lookup("database-url"))

	root.AddCommand(importCmd())
	root.AddCommand(resetCmd())
	root.AddCommand(validateCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	// DATABASE_URL, FILE, IMPORT_BATCH_SIZE, LOG_LEVEL and LOG_FORMAT map to
	// their lower-case keys.
	viper.AutomaticEnv()

	logging.Setup(viper.GetString("log_level"), viper.GetString("log_format"))
	return nil
}
