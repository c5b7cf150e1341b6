package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/docchat/docchat/internal/app"
	"github.com/docchat/docchat/internal/retrieval"
)

var flagTopK int

var queryCmd = &cobra.Command{
	Use:   "query <kb-id> <query text>",
	Short: "Retrieve the most relevant chunks from a knowledge base",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&flagTopK, "top-k", "k", 0,
		"number of chunks to return (default from config)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}

	kbID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid knowledge base id %q: %w", args[0], err)
	}
	query := strings.Join(args[1:], " ")

	a, err := app.New(cmd.Context(), cfg, newLogger())
	if err != nil {
		return err
	}
	defer a.Close()

	topK := cfg.TopK
	if flagTopK > 0 {
		topK = flagTopK
	}

	matches, err := a.Retrieval.RetrieveScored(cmd.Context(), flagOwner, kbID, query,
		retrieval.WithTopK(topK), retrieval.WithTimeout(cfg.QueryTimeout))
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("No matching chunks.")
		return nil
	}

	for rank, m := range matches {
		fmt.Printf("%d. [chunk %d, similarity %.4f]\n%s\n\n", rank+1, m.Index, m.Similarity, m.Text)
	}
	return nil
}
