// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package status

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
)

// Theme is the terminal palette, in ANSI 256-color codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color
	Waiting    lipgloss.Color
	Configured lipgloss.Color
	Header     lipgloss.Color
}

// DefaultTheme is the built-in palette.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("243"),
	Waiting:    lipgloss.Color("214"),
	Configured: lipgloss.Color("114"),
	Header:     lipgloss.Color("75"),
}

// Terminal is a [Sink] that renders a live seat table on the terminal.
// Create it with [NewTerminal], call Start before the engine runs and
// Finish after it returns.
type Terminal struct {
	program *tea.Program
	done    chan struct{}
	err     error
}

// NewTerminal prepares a terminal view for the given seat names (index
// 0 is the default seat). Output goes to stderr so stdout stays clean
// for --json.
func NewTerminal(seats []string, options ...tea.ProgramOption) *Terminal {
	renderer := lipgloss.NewRenderer(os.Stderr)
	if termenv.EnvNoColor() {
		renderer.SetColorProfile(termenv.Ascii)
	}
	options = append([]tea.ProgramOption{tea.WithOutput(os.Stderr)}, options...)
	return &Terminal{
		program: tea.NewProgram(newModel(seats, renderer, DefaultTheme), options...),
		done:    make(chan struct{}),
	}
}

// Start runs the view in the background. onQuit is called if the
// operator quits the view before assignment finishes.
func (t *Terminal) Start(onQuit func()) {
	go func() {
		defer close(t.done)
		final, err := t.program.Run()
		t.err = err
		if m, ok := final.(model); ok && !m.finished && onQuit != nil {
			onQuit()
		}
	}()
}

// SeatImage updates one seat's row.
func (t *Terminal) SeatImage(index int, image Image) {
	t.program.Send(seatImageMsg{index: index, image: image})
}

// Progress updates the footer counters.
func (t *Terminal) Progress(remaining, availableKeyboards int) {
	t.program.Send(progressMsg{remaining: remaining, available: availableKeyboards})
}

// Finish shows summary, stops the view, and waits for the terminal to
// be restored.
func (t *Terminal) Finish(summary string) error {
	t.program.Send(finishMsg{summary: summary})
	<-t.done
	return t.err
}

type seatImageMsg struct {
	index int
	image Image
}

type progressMsg struct {
	remaining int
	available int
}

type finishMsg struct {
	summary string
}

type keyMap struct {
	Quit key.Binding
}

var defaultKeyMap = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "stop waiting"),
	),
}

type seatRow struct {
	name  string
	image Image
}

type styles struct {
	header     lipgloss.Style
	normal     lipgloss.Style
	faint      lipgloss.Style
	waiting    lipgloss.Style
	configured lipgloss.Style
}

// model is the bubbletea model behind Terminal.
type model struct {
	seats     []seatRow
	remaining int
	available int
	width     int
	finished  bool
	summary   string
	spinner   spinner.Model
	keys      keyMap
	styles    styles
}

func newModel(seats []string, renderer *lipgloss.Renderer, theme Theme) model {
	rows := make([]seatRow, len(seats))
	for index, name := range seats {
		rows[index] = seatRow{name: name, image: PressKey}
		if index == 0 {
			rows[index].image = Configured
		}
	}
	spin := spinner.New(spinner.WithSpinner(spinner.Dot))
	spin.Style = renderer.NewStyle().Foreground(theme.Waiting)
	return model{
		seats:     rows,
		remaining: max(0, len(seats)-1),
		width:     80,
		spinner:   spin,
		keys:      defaultKeyMap,
		styles: styles{
			header:     renderer.NewStyle().Bold(true).Foreground(theme.Header),
			normal:     renderer.NewStyle().Foreground(theme.NormalText),
			faint:      renderer.NewStyle().Foreground(theme.FaintText),
			waiting:    renderer.NewStyle().Foreground(theme.Waiting),
			configured: renderer.NewStyle().Foreground(theme.Configured),
		},
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case seatImageMsg:
		if msg.index >= 0 && msg.index < len(m.seats) {
			m.seats[msg.index].image = msg.image
		}
	case progressMsg:
		m.remaining = msg.remaining
		m.available = msg.available
	case finishMsg:
		m.finished = true
		m.summary = msg.summary
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	var builder strings.Builder
	builder.WriteString(m.styles.header.Render("Seat assignment"))
	builder.WriteString("\n\n")

	// Marker, key label, and status text take about 40 columns.
	nameWidth := max(12, min(40, m.width-40))
	for index, row := range m.seats {
		name := ansi.Truncate(row.name, nameWidth, "…")
		name += strings.Repeat(" ", max(0, nameWidth-ansi.StringWidth(name)))

		keyLabel := "   "
		if index > 0 {
			keyLabel = fmt.Sprintf("F%-2d", index)
		}

		var marker, text string
		switch {
		case index == 0:
			marker = m.styles.configured.Render("●")
			text = m.styles.faint.Render("default seat")
		case row.image == Configured:
			marker = m.styles.configured.Render("✓")
			text = m.styles.configured.Render("configured")
		default:
			marker = m.spinner.View()
			if m.finished {
				marker = m.styles.faint.Render("·")
			}
			text = m.styles.waiting.Render(fmt.Sprintf("press F%d on this seat's keyboard", index))
		}
		fmt.Fprintf(&builder, " %s  %s  %s  %s\n", marker, m.styles.normal.Render(keyLabel), m.styles.normal.Render(name), text)
	}

	builder.WriteString("\n")
	if m.finished {
		builder.WriteString(m.styles.normal.Render(m.summary))
		builder.WriteString("\n")
		return builder.String()
	}
	footer := fmt.Sprintf("%d seat(s) waiting · %d keyboard(s) free · %s to %s",
		m.remaining, m.available, m.keys.Quit.Help().Key, m.keys.Quit.Help().Desc)
	builder.WriteString(m.styles.faint.Render(footer))
	builder.WriteString("\n")
	return builder.String()
}

// plainRenderer returns a renderer that emits no escape sequences.
func plainRenderer(w io.Writer) *lipgloss.Renderer {
	renderer := lipgloss.NewRenderer(w)
	renderer.SetColorProfile(termenv.Ascii)
	return renderer
}
