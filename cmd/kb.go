package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/docchat/docchat/internal/app"
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Manage knowledge bases",
}

var kbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your knowledge bases, newest first",
	Args:  cobra.NoArgs,
	RunE:  runKBList,
}

var kbDeleteCmd = &cobra.Command{
	Use:   "delete <kb-id>",
	Short: "Delete a knowledge base and all its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runKBDelete,
}

func init() {
	kbCmd.AddCommand(kbListCmd)
	kbCmd.AddCommand(kbDeleteCmd)
	rootCmd.AddCommand(kbCmd)
}

func runKBList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.New(cmd.Context(), cfg, newLogger())
	if err != nil {
		return err
	}
	defer a.Close()

	kbs, err := a.Knowledge.List(cmd.Context(), flagOwner)
	if err != nil {
		return err
	}
	if len(kbs) == 0 {
		fmt.Println("No knowledge bases. Run `docchat ingest <file.pdf>` to create one.")
		return nil
	}

	for _, kb := range kbs {
		fmt.Printf("%s  %-30s  %4d chunks  %s\n",
			kb.ID, kb.SourceName, kb.ChunkCount, kb.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runKBDelete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	kbID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid knowledge base id %q: %w", args[0], err)
	}

	a, err := app.New(cmd.Context(), cfg, newLogger())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Knowledge.Delete(cmd.Context(), kbID, flagOwner); err != nil {
		return err
	}

	fmt.Printf("Deleted knowledge base %s\n", kbID)
	return nil
}
