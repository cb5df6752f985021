package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kzeller/plcsim/internal/controller"
)

// Run starts the signal monitor over an existing client and listener and
// blocks until the user quits.
func Run(client *controller.Client, listener *controller.Listener, addr string) error {
	model := NewModel(client, listener, addr)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
