package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JonMunkholm/ceap/internal/core"
	"github.com/JonMunkholm/ceap/internal/importer"
	"github.com/JonMunkholm/ceap/internal/store"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import one CEAP export file",
		Long: `Import reads a semicolon-delimited CEAP export and stores its registrants
and expenses in a single transaction. Any invalid CPF or malformed row rolls
the whole file back.`,
		Args: cobra.NoArgs,
		RunE: runImport,
	}

	cmd.Flags().StringP("file", "f", "", "path of the CEAP export (env FILE)")
	cmd.Flags().Int("batch-size", importer.DefaultBatchSize, "expenses per bulk insert (env IMPORT_BATCH_SIZE)")
	cmd.Flags().Bool("migrate", false, "apply the schema before importing")

	_ = viper.BindPFlag("file", cmd.Flags().Lookup("file"))
	_ = viper.BindPFlag("import_batch_size", cmd.Flags().Lookup("batch-size"))
	_ = viper.BindPFlag("migrate", cmd.Flags().Lookup("migrate"))

	return cmd
}

func runImport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	path := viper.GetString("file")
	if path == "" {
		return errors.New("no file provided: set --file or FILE")
	}
	dsn := viper.GetString("database_url")
	if dsn == "" {
		return errors.New("no database configured: set --database-url or DATABASE_URL")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	db := store.NewPostgres(pool, 0)
	if viper.GetBool("migrate") {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
	}

	service := core.NewService(db, nil, core.Options{
		BatchSize:     viper.GetInt("import_batch_size"),
		MaxConcurrent: 1,
	})

	name := filepath.Base(path)
	bar := progressbar.NewOptions64(info.Size(),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("importing "+name),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(cmd.ErrOrStderr())
		}),
	)

	ctx = core.ContextWithSource(ctx, core.Source{UserAgent: "ceap-cli"})
	result, err := service.Import(ctx, name, io.TeeReader(f, bar), info.Size())
	_ = bar.Finish()
	if err != nil {
		return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
