package tui

import (
	"context"
	"fmt"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"
)

// Run runs m on the alternate screen until the flow completes, the user leaves, or ctx ends.
// While the form owns the terminal, log output goes to logFile, or is discarded when logFile is empty.
func Run(ctx context.Context, m *Model, logFile string, opts ...tea.ProgramOption) error {
	prevOut := log.Writer()
	defer log.SetOutput(prevOut)
	if logFile != "" {
		f, err := tea.LogToFile(logFile, "recover")
		if err != nil {
			return fmt.Errorf("tui: open log file: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
