package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docchat/docchat/internal/app"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.pdf>",
	Short: "Ingest a PDF document into a new knowledge base",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}

	path := args[0]
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	a, err := app.New(cmd.Context(), cfg, newLogger())
	if err != nil {
		return err
	}
	defer a.Close()

	kbID, err := a.Ingest.IngestPDF(cmd.Context(), flagOwner, filepath.Base(path), raw)
	if err != nil {
		return err
	}

	count, err := a.Knowledge.CountChunks(cmd.Context(), kbID)
	if err != nil {
		return err
	}

	fmt.Printf("Created knowledge base %s (%d chunks)\n", kbID, count)
	return nil
}
