package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-waiter-catalog/internal/catalog"
	"github.com/tbourn/go-waiter-catalog/internal/services"
	"github.com/tbourn/go-waiter-catalog/internal/source"
)

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Replace the stored catalog with a JSON file",
	Long: "Reads a JSON array of entries, fills blank ids and replaces the stored batch in one transaction. " +
		"A running server picks the new batch up on its next reload.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	entries, err := source.DecodeEntries(f)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)

	svc := services.NewCatalogService(db, nil, catalog.DefaultOptions(), nil)
	n, err := svc.Import(cmd.Context(), entries)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries\n", n)
	return nil
}
