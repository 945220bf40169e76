package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/asda-lang/asdar/bytecode"
	"github.com/asda-lang/asdar/driver"
	"github.com/asda-lang/asdar/interp"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	currentOpStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#98FB98"))

	locationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	historyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// historyDepth bounds how many past opcodes the view keeps on screen.
const historyDepth = 8

// stepTracer bridges the VM's dispatch loop -- running on its own
// goroutine via driver.Run -- to the debugger's Update loop. Trace
// publishes the about-to-execute opcode on out and blocks on resume
// until the model lets it proceed, one opcode at a time.
type stepTracer struct {
	out    chan tea.Msg
	resume chan struct{}
}

func newStepTracer() *stepTracer {
	return &stepTracer{
		out:    make(chan tea.Msg),
		resume: make(chan struct{}),
	}
}

func (t *stepTracer) Trace(ev interp.TraceEvent) {
	t.out <- ev
	<-t.resume
}

// finishedMsg is pushed onto the tracer's out channel once driver.Run
// returns, after the VM's final Trace call has already been resumed.
type finishedMsg struct{ err error }

func waitForMsg(out chan tea.Msg) tea.Cmd {
	return func() tea.Msg { return <-out }
}

type debugModel struct {
	tracer   *stepTracer
	history  []interp.TraceEvent
	current  *interp.TraceEvent
	running  bool // true after "c": keep resuming without waiting on a keypress
	finished bool
	runErr   error
}

func newDebugModel(tracer *stepTracer) *debugModel {
	return &debugModel{tracer: tracer}
}

func (m *debugModel) Init() tea.Cmd {
	return waitForMsg(m.tracer.out)
}

// resumeAndWait lets the paused VM goroutine proceed past its current
// Trace call and simultaneously arms the wait for whatever it sends
// next (another TraceEvent, or finishedMsg if that was the last op).
func (m *debugModel) resumeAndWait() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { m.tracer.resume <- struct{}{}; return nil },
		waitForMsg(m.tracer.out),
	)
}

func (m *debugModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.finished {
			return m, tea.Quit
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "s", "enter", " ":
			if m.finished {
				return m, tea.Quit
			}
			m.running = false
			return m, m.resumeAndWait()
		case "c":
			if m.finished {
				return m, tea.Quit
			}
			m.running = true
			return m, m.resumeAndWait()
		}
		return m, nil

	case interp.TraceEvent:
		m.history = append(m.history, msg)
		if len(m.history) > historyDepth {
			m.history = m.history[len(m.history)-historyDepth:]
		}
		ev := msg
		m.current = &ev
		if m.running {
			return m, m.resumeAndWait()
		}
		return m, nil

	case finishedMsg:
		m.finished = true
		m.runErr = msg.err
		return m, nil
	}
	return m, nil
}

func (m *debugModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("asdar step debugger"))
	b.WriteString("\n\n")

	if m.finished {
		if m.runErr != nil {
			b.WriteString(errorStyle.Render("run failed: " + m.runErr.Error()))
		} else {
			b.WriteString(resultStyle.Render("run completed"))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("press any key to exit"))
		return b.String()
	}

	if len(m.history) > 1 {
		b.WriteString(historyStyle.Render("history:"))
		b.WriteString("\n")
		for _, ev := range m.history[:len(m.history)-1] {
			b.WriteString(historyStyle.Render(fmt.Sprintf("  [%d] %s\n", ev.IP, bytecode.OpName(ev.Op.Tag))))
		}
		b.WriteString("\n")
	}

	if m.current != nil {
		ev := *m.current
		b.WriteString(currentOpStyle.Render(fmt.Sprintf("-> [%d] %s", ev.IP, bytecode.OpName(ev.Op.Tag))))
		b.WriteString("\n")
		b.WriteString(locationStyle.Render(fmt.Sprintf("%s:%d  stack depth %d", ev.Source, ev.Op.Line, ev.StackSize)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("s/enter/space: step   c: run to completion   q: quit"))
	return b.String()
}

// runInteractive runs path under the step debugger: the VM executes
// on its own goroutine, pausing before every opcode until the TUI
// advances it.
func runInteractive(path string, debug bool) error {
	tracer := newStepTracer()

	go func() {
		err := driver.Run(path, driver.Options{Debug: debug, Tracer: tracer})
		tracer.out <- finishedMsg{err: err}
	}()

	model := newDebugModel(tracer)
	finalModel, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("debugger: %w", err)
	}
	if dm, ok := finalModel.(*debugModel); ok && dm.runErr != nil {
		return dm.runErr
	}
	return nil
}
