package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kzeller/plcsim/internal/controller"
	"github.com/kzeller/plcsim/internal/wire"
)

const changeHighlight = 2 * time.Second

type tickMsg time.Time

type notificationMsg wire.Notification

type refreshMsg map[string]any

type clipboardMsg struct{ err error }

// Model renders a live view of the endpoint's signal table, fed by change
// notifications and a periodic re-read of every known signal.
type Model struct {
	styles   Styles
	client   *controller.Client
	listener *controller.Listener
	addr     string

	state     map[string]any
	changedAt map[string]time.Time
	events    uint64

	width  int
	height int
	status string
}

// NewModel creates a monitor over an existing client and listener.
func NewModel(client *controller.Client, listener *controller.Listener, addr string) *Model {
	return &Model{
		styles:    DefaultStyles,
		client:    client,
		listener:  listener,
		addr:      addr,
		state:     map[string]any{},
		changedAt: map[string]time.Time{},
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), waitNotification(m.listener))
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitNotification(listener *controller.Listener) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-listener.Events()
		if !ok {
			return nil
		}
		return notificationMsg(ev)
	}
}

// refreshCmd re-reads every known signal, catching values whose
// notifications were lost in transit.
func (m *Model) refreshCmd() tea.Cmd {
	names := make([]string, 0, len(m.state))
	for name := range m.state {
		names = append(names, name)
	}
	client := m.client
	return func() tea.Msg {
		if len(names) == 0 {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		values, err := client.Read(ctx, names)
		if err != nil {
			return nil
		}
		return refreshMsg(values)
	}
}

func (m *Model) copyCmd() tea.Cmd {
	snapshot := m.snapshotJSON()
	return func() tea.Msg {
		return clipboardMsg{err: clipboard.WriteAll(snapshot)}
	}
}

func (m *Model) snapshotJSON() string {
	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "c":
			return m, m.copyCmd()
		}

	case tickMsg:
		return m, tea.Batch(tickCmd(), m.refreshCmd())

	case notificationMsg:
		now := time.Now()
		for name, value := range msg.ChangeValues {
			m.state[name] = value
			m.changedAt[name] = now
		}
		m.events++
		return m, waitNotification(m.listener)

	case refreshMsg:
		for name, value := range msg {
			m.state[name] = value
		}

	case clipboardMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Clipboard copy failed: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Copied %d signals to clipboard", len(m.state))
		}
	}

	return m, nil
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(fmt.Sprintf("plcsim monitor — %s", m.addr)))
	b.WriteString("\n")

	names := make([]string, 0, len(m.state))
	nameWidth := 6
	for name := range m.state {
		names = append(names, name)
		if len(name) > nameWidth {
			nameWidth = len(name)
		}
	}
	sort.Strings(names)

	var rows []string
	rows = append(rows, m.styles.Header.Render(fmt.Sprintf("%-*s  %s", nameWidth, "SIGNAL", "VALUE")))
	now := time.Now()
	for _, name := range names {
		data, _ := json.Marshal(m.state[name])
		valueStyle := m.styles.Value
		if now.Sub(m.changedAt[name]) < changeHighlight {
			valueStyle = m.styles.Changed
		}
		rows = append(rows, fmt.Sprintf("%s  %s",
			m.styles.Name.Render(fmt.Sprintf("%-*s", nameWidth, name)),
			valueStyle.Render(string(data))))
	}
	if len(names) == 0 {
		rows = append(rows, m.styles.StatusBar.Render("waiting for notifications..."))
	}
	b.WriteString(m.styles.Panel.Render(strings.Join(rows, "\n")))
	b.WriteString("\n")

	b.WriteString(m.styles.StatusBar.Render(fmt.Sprintf("%d signals, %d notifications", len(names), m.events)))
	if m.status != "" {
		b.WriteString("  ")
		b.WriteString(m.styles.StatusBar.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("c copy snapshot · q quit"))

	return b.String()
}
