package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/petitechose-midi-studio/loader/internal/operation"
)

var (
	tuiHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#22C55E")).
			Bold(true).
			Padding(0, 1)

	tuiErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	tuiDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// tuiMsg wraps an operation.Event for delivery into the bubbletea loop.
type tuiMsg operation.Event

// tuiDoneMsg signals the driving goroutine finished (ok or err).
type tuiDoneMsg struct{ err error }

type tuiModel struct {
	title    string
	bar      progress.Model
	log      []string
	blockIdx int
	blocks   int
	done     bool
	err      error
}

func newTUIModel(title string) tuiModel {
	return tuiModel{
		title: title,
		bar:   progress.New(progress.WithDefaultGradient()),
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tuiMsg:
		ev := operation.Event(msg)
		m.log = append(m.log, describeEvent(ev))
		if ev.Kind == operation.Block {
			m.blockIdx = ev.Index + 1
			m.blocks = ev.Blocks
		}
		if len(m.log) > 12 {
			m.log = m.log[len(m.log)-12:]
		}
	case tuiDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m tuiModel) View() string {
	header := tuiHeaderStyle.Render(m.title)
	var percent float64
	if m.blocks > 0 {
		percent = float64(m.blockIdx) / float64(m.blocks)
	}
	body := m.bar.ViewAs(percent) + "\n\n"
	for _, line := range m.log {
		body += tuiDimStyle.Render(line) + "\n"
	}
	if m.err != nil {
		body += "\n" + tuiErrorStyle.Render(m.err.Error())
	}
	return header + "\n\n" + body
}

func describeEvent(ev operation.Event) string {
	switch ev.Kind {
	case operation.DiscoverDone:
		return fmt.Sprintf("found %d target(s)", ev.Count)
	case operation.TargetSelected:
		return "selected " + ev.TargetID
	case operation.HexLoaded:
		return fmt.Sprintf("loaded hex: %d bytes, %d block(s)", ev.Bytes, ev.Blocks)
	case operation.SoftReboot:
		return "soft reboot: " + ev.Port
	case operation.HalfKayAppeared:
		return "bootloader appeared: " + ev.Path
	case operation.HalfKayOpen:
		return "opened " + ev.Path
	case operation.Block:
		return fmt.Sprintf("block %d/%d", ev.Index+1, ev.Blocks)
	case operation.Retry:
		return fmt.Sprintf("retry %d/%d: %s", ev.Attempt, ev.Retries, ev.Message)
	case operation.Boot:
		return "booting device"
	case operation.Done:
		return "done"
	default:
		return ""
	}
}

// runWithTUI drives op in a goroutine, forwarding every emitted event into
// the bubbletea program, and returns op's error once the program exits.
func runWithTUI(title string, op func(emit operation.Emit) error) error {
	model := newTUIModel(title)
	p := tea.NewProgram(model)

	go func() {
		err := op(func(ev operation.Event) { p.Send(tuiMsg(ev)) })
		p.Send(tuiDoneMsg{err: err})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := finalModel.(tuiModel); ok {
		return fm.err
	}
	return nil
}
