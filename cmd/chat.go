package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/docchat/docchat/internal/app"
)

var (
	flagChatKB      string
	flagChatSession string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session. With --kb, replies are grounded in
the given knowledge base. With --session, an existing conversation is
continued.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&flagChatKB, "kb", "",
		"knowledge base id to ground replies in")
	chatCmd.Flags().StringVar(&flagChatSession, "session", "",
		"session id to continue")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}

	kbID := uuid.Nil
	if flagChatKB != "" {
		kbID, err = uuid.Parse(flagChatKB)
		if err != nil {
			return fmt.Errorf("invalid knowledge base id %q: %w", flagChatKB, err)
		}
	}

	sessionID := uuid.Nil
	if flagChatSession != "" {
		sessionID, err = uuid.Parse(flagChatSession)
		if err != nil {
			return fmt.Errorf("invalid session id %q: %w", flagChatSession, err)
		}
	}

	a, err := app.New(cmd.Context(), cfg, newLogger())
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Println("docchat - type your message, or /quit to exit")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			break
		}

		newSession, reply, err := a.Chat.Respond(cmd.Context(), flagOwner, sessionID, line, kbID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		if sessionID == uuid.Nil {
			sessionID = newSession
			fmt.Printf("(session %s)\n", sessionID)
		}

		fmt.Println(reply)
	}

	return scanner.Err()
}
