package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/interchat/interchat/internal/app"
	"github.com/interchat/interchat/internal/config"
	"github.com/interchat/interchat/internal/log"
	"github.com/interchat/interchat/internal/message"
	"github.com/interchat/interchat/internal/session"
	"github.com/interchat/interchat/internal/version"
)

func init() {
	rootCmd.PersistentFlags().StringP("data-dir", "D", "", "Custom interchat data directory")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")

	rootCmd.AddCommand(serveCmd)
}

var rootCmd = &cobra.Command{
	Use:   "interchat",
	Short: "Terminal client for the InterChat banking assistant",
	Long: `InterChat is a conversational banking assistant. This client keeps your chat
sessions in sync with the remote store: messages appear instantly and are
reconciled with the server in the background.`,
	Example: `
	# Chat interactively
	interchat

	# Chat with debug logging and a custom data directory
	interchat -d -D /tmp/interchat

	# Run the local development store
	interchat serve
  `,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setupApp(cmd)
		if err != nil {
			return err
		}
		defer a.Shutdown()
		return runChat(cmd.Context(), a)
	},
}

func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version.Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// setupApp handles the common setup logic for all commands.
func setupApp(cmd *cobra.Command) (*app.App, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	dataDir, _ := cmd.Flags().GetString("data-dir")

	// Pick up INTERCHAT_* overrides from a .env file, if present.
	_ = godotenv.Load()

	cfg, err := config.Load(dataDir, debug)
	if err != nil {
		return nil, err
	}
	log.Setup(cfg.LogFile(), debug)

	return app.New(cfg)
}

func runChat(ctx context.Context, a *app.App) error {
	if !term.IsTerminal(os.Stdin.Fd()) {
		return fmt.Errorf("interactive chat needs a terminal")
	}

	in := bufio.NewScanner(os.Stdin)

	if !a.Authenticated() {
		if err := login(ctx, a, in); err != nil {
			return err
		}
	} else {
		a.Bootstrap(ctx)
	}

	store := a.Store()
	printMessages(store)

	// Print replies as they land, including ones for sessions the user has
	// already switched away from.
	go func() {
		for ev := range store.SubscribeMessages(ctx) {
			m := ev.Payload
			if m.Role != message.RoleAssistant {
				continue
			}
			if cur, ok := store.Current(); ok && cur.ID == m.SessionID {
				fmt.Printf("\n%s\n> ", m.Text)
			}
		}
	}()

	fmt.Print("> ")
	for in.Scan() {
		line := strings.TrimSpace(in.Text())
		if line == "" {
			fmt.Print("> ")
			continue
		}
		if strings.HasPrefix(line, "/") {
			quit, err := handleCommand(ctx, a, line)
			if err != nil {
				fmt.Println(err)
			}
			if quit {
				return nil
			}
			fmt.Print("> ")
			continue
		}
		if _, err := a.Store().Send(ctx, line); err != nil {
			fmt.Println(err)
		}
		fmt.Print("> ")
	}
	return in.Err()
}

func login(ctx context.Context, a *app.App, in *bufio.Scanner) error {
	fmt.Print("Müşteri no: ")
	if !in.Scan() {
		return fmt.Errorf("no input")
	}
	customerNo := strings.TrimSpace(in.Text())
	fmt.Print("Şifre: ")
	if !in.Scan() {
		return fmt.Errorf("no input")
	}
	password := strings.TrimSpace(in.Text())
	return a.Login(ctx, customerNo, password)
}

func handleCommand(ctx context.Context, a *app.App, line string) (quit bool, err error) {
	store := a.Store()
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/q":
		return true, nil
	case "/new":
		store.Create()
		printMessages(store)
	case "/sessions":
		cur, _ := store.Current()
		for i, s := range store.Sessions() {
			marker := " "
			if s.ID == cur.ID {
				marker = "*"
			}
			fmt.Printf("%s %d. %s\n", marker, i+1, s.Title)
		}
	case "/switch":
		n, convErr := strconv.Atoi(arg)
		sessions := store.Sessions()
		if convErr != nil || n < 1 || n > len(sessions) {
			return false, fmt.Errorf("usage: /switch <number>")
		}
		if err := store.SwitchTo(ctx, sessions[n-1].ID); err != nil {
			return false, err
		}
		printMessages(store)
	case "/rename":
		cur, ok := store.Current()
		if !ok {
			return false, session.ErrNoSession
		}
		return false, store.Rename(ctx, cur.ID, arg)
	case "/delete":
		cur, ok := store.Current()
		if !ok {
			return false, session.ErrNoSession
		}
		if err := store.Delete(ctx, cur.ID); err != nil {
			return false, err
		}
		printMessages(store)
	case "/actions":
		for _, qa := range app.QuickActions {
			fmt.Printf("%s: %s\n", qa.Key, qa.Label)
		}
	case "/action":
		return false, a.SendQuickAction(ctx, arg)
	case "/theme":
		a.SetDarkTheme(!a.DarkTheme())
	case "/logout":
		a.Logout(ctx)
		return true, nil
	default:
		return false, fmt.Errorf("unknown command: %s", cmd)
	}
	return false, nil
}

func printMessages(store *session.Store) {
	cur, ok := store.Current()
	if !ok {
		return
	}
	msgs, err := store.Messages(cur.ID)
	if err != nil {
		return
	}
	fmt.Printf("— %s —\n", cur.Title)
	for _, m := range msgs {
		fmt.Printf("[%s] %s\n", m.Role, m.Text)
	}
}
