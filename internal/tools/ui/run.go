// Package ui renders gatewayctl subcommands interactively: a command header,
// a working indicator while the action runs, then the result lines with the
// elapsed time. CI invocations bypass this entirely.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	lineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

type taskDoneMsg struct {
	details []string
	err     error
	elapsed time.Duration
}

type taskModel struct {
	title   string
	action  func(context.Context) ([]string, error)
	details []string
	err     error
	elapsed time.Duration
	done    bool
}

func (m taskModel) Init() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		start := time.Now()
		details, err := m.action(ctx)
		return taskDoneMsg{details: details, err: err, elapsed: time.Since(start)}
	}
}

func (m taskModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case taskDoneMsg:
		m.details = msg.details
		m.err = msg.err
		m.elapsed = msg.elapsed
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m taskModel) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("gatewayctl " + m.title))
	b.WriteString("\n")
	if !m.done {
		b.WriteString("working...\n")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(fmt.Sprintf("%s %v (%s)\n", failStyle.Render("FAILED"), m.err, m.elapsed.Round(time.Millisecond)))
	} else {
		b.WriteString(fmt.Sprintf("%s (%s)\n", okStyle.Render("OK"), m.elapsed.Round(time.Millisecond)))
	}
	for _, d := range m.details {
		b.WriteString(lineStyle.Render("  "+d) + "\n")
	}
	return b.String()
}

// Run executes action inside the interactive view and returns its result so
// the caller still decides the process exit code.
func Run(title string, action func(context.Context) ([]string, error)) ([]string, error) {
	final, err := tea.NewProgram(taskModel{title: title, action: action}).Run()
	if err != nil {
		return nil, err
	}
	res := final.(taskModel)
	return res.details, res.err
}
