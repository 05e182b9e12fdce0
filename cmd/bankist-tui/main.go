package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/bank"
	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/ledgercsv"
	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/tui"
)

func main() {
	// The terminal belongs to the dashboard, so logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if path := os.Getenv("BANKIST_TUI_LOG"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(out, nil)))

	accounts, err := ledgercsv.LoadAccounts(os.Getenv("SEED_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load accounts: %v\n", err)
		os.Exit(1)
	}

	b := bank.New(bank.NewStore(accounts), bank.ConfigFromEnv(), nil)
	defer b.Shutdown()

	if _, err := tea.NewProgram(tui.New(b), tea.WithAltScreen()).Run(); err != nil {
		slog.Error("dashboard failed", "error", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
