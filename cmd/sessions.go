package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/docchat/docchat/internal/app"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage chat sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your chat sessions, most recently active first",
	Args:  cobra.NoArgs,
	RunE:  runSessionsList,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session and all its messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

var sessionsSetPromptCmd = &cobra.Command{
	Use:   "set-prompt <session-id> <prompt text>",
	Short: "Set a custom system prompt for a session",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSessionsSetPrompt,
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsCmd.AddCommand(sessionsSetPromptCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runSessionsList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.New(cmd.Context(), cfg, newLogger())
	if err != nil {
		return err
	}
	defer a.Close()

	sessions, err := a.History.Sessions(cmd.Context(), flagOwner)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions. Run `docchat chat` to start one.")
		return nil
	}

	for _, s := range sessions {
		fmt.Printf("%s  %4d messages  %s  %s\n",
			s.SessionID, s.MessageCount,
			s.LastMessageAt.Format("2006-01-02 15:04"),
			previewText(s.LastMessage, 60))
	}
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sessionID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid session id %q: %w", args[0], err)
	}

	a, err := app.New(cmd.Context(), cfg, newLogger())
	if err != nil {
		return err
	}
	defer a.Close()

	deleted, err := a.History.DeleteSession(cmd.Context(), flagOwner, sessionID)
	if err != nil {
		return err
	}

	fmt.Printf("Deleted session %s (%d messages)\n", sessionID, deleted)
	return nil
}

func runSessionsSetPrompt(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sessionID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid session id %q: %w", args[0], err)
	}
	prompt := strings.Join(args[1:], " ")

	a, err := app.New(cmd.Context(), cfg, newLogger())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.History.SetSystemPrompt(cmd.Context(), flagOwner, sessionID, prompt); err != nil {
		return err
	}

	fmt.Printf("Set system prompt for session %s\n", sessionID)
	return nil
}

// previewText truncates s to max characters for single-line listings.
func previewText(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
