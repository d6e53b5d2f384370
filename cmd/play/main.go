package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

func main() {
	mark := flag.String("mark", "X", "mark to play with, X moves first")
	flag.Parse()

	human, err := tictactoe.ParsePlayer(*mark)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if _, err = tea.NewProgram(newModel(human), tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
