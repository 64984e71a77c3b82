package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"library-catalog/config"
	"library-catalog/library"
	"library-catalog/logger"
	"library-catalog/shell"
)

var (
	seedFile  string
	exportDir string
	logLevel  string

	exportFormat string
	exportOut    string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "catalog",
		Short:        "Manage a small library catalog from the terminal",
		SilenceUsage: true,
		RunE:         runShell,
	}
	root.PersistentFlags().StringVar(&seedFile, "seed", "", "JSON, CSV or SQLite export to load instead of the sample catalog")
	root.PersistentFlags().StringVar(&exportDir, "export-dir", ".", "directory for exported catalog files")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	export := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog to a file and exit",
		RunE:  runExport,
	}
	export.Flags().StringVar(&exportFormat, "format", "json", "export format: json, csv or sqlite")
	export.Flags().StringVar(&exportOut, "out", "", "output path (default <export-dir>/library_books.<ext>)")
	root.AddCommand(export)

	return root
}

// loadConfig reads .env and CATALOG_* variables, then applies any flags set
// on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}

	var opts []config.Option
	flags := cmd.Flags()
	if flags.Changed("seed") {
		opts = append(opts, config.WithSeedFile(seedFile))
	}
	if flags.Changed("export-dir") {
		opts = append(opts, config.WithExportDir(exportDir))
	}
	if flags.Changed("log-level") {
		opts = append(opts, config.WithLogLevel(logLevel))
	}
	return config.Load(opts...)
}

func openCatalog(cfg *config.Config, log *zap.Logger) (*library.Catalog, error) {
	if cfg.SeedFile == "" {
		log.Info("using sample catalog")
		return library.NewSampleCatalog(library.WithLogger(log)), nil
	}

	snaps, err := library.ImportFile(cfg.SeedFile)
	if err != nil {
		return nil, errors.Wrapf(err, "load seed %s", cfg.SeedFile)
	}
	cat := library.NewCatalog(library.WithLogger(log))
	if err := cat.Load(snaps); err != nil {
		return nil, errors.Wrapf(err, "load seed %s", cfg.SeedFile)
	}
	log.Info("catalog seeded", zap.String("file", cfg.SeedFile), zap.Int("books", cat.Len()))
	return cat, nil
}

func runShell(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)
	defer log.Sync() //nolint:errcheck

	cat, err := openCatalog(cfg, log)
	if err != nil {
		return err
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Println("Welcome to the Library Catalog!")
		fmt.Printf("%d books loaded. Exports are written to %s\n", cat.Len(), cfg.ExportDir)
	}

	shell.New(os.Stdin, os.Stdout, cat,
		shell.WithLogger(log),
		shell.WithExportDir(cfg.ExportDir),
	).Run()
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)
	defer log.Sync() //nolint:errcheck

	format, err := library.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	cat, err := openCatalog(cfg, log)
	if err != nil {
		return err
	}

	path := exportOut
	if path == "" {
		path = filepath.Join(cfg.ExportDir, format.DefaultFileName())
	}
	if err := library.ExportFile(path, format, cat.Snapshot()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d books to %s\n", cat.Len(), path)
	return nil
}
