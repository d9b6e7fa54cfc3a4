package models

import (
	"fmt"
	"io"
	"time"

	serialping "github.com/allbin/go-serialping"
	"github.com/allbin/go-serialping/internal/tui/styles"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ExchangeDoneMsg carries the outcome of the exchange back to the model
type ExchangeDoneMsg struct {
	Result *serialping.Result
	Err    error
}

type tickMsg time.Time

const tickInterval = 50 * time.Millisecond

// ExchangeModel shows a spinner and a progress bar while an exchange runs.
// It only displays progress; the exchange always runs to completion.
type ExchangeModel struct {
	spinner  spinner.Model
	progress progress.Model

	device  string
	window  time.Duration // settle delay plus response window
	started time.Time
	run     func() (*serialping.Result, error)

	result *serialping.Result
	err    error
	done   bool
}

// NewExchangeModel creates a model that calls run once when started
func NewExchangeModel(device string, timeout time.Duration, run func() (*serialping.Result, error)) ExchangeModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	return ExchangeModel{
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(30), progress.WithoutPercentage()),
		device:   device,
		window:   serialping.SettleDelay + timeout,
		started:  time.Now(),
		run:      run,
	}
}

func (m ExchangeModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runExchange, tick())
}

func (m ExchangeModel) runExchange() tea.Msg {
	result, err := m.run()
	return ExchangeDoneMsg{Result: result, Err: err}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m ExchangeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ExchangeDoneMsg:
		m.result = msg.Result
		m.err = msg.Err
		m.done = true
		return m, tea.Quit

	case tickMsg:
		if m.done {
			return m, nil
		}
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.progress.Width = min(max(msg.Width-40, 10), 30)
		return m, nil
	}

	return m, nil
}

func (m ExchangeModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s Waiting for %s %s\n",
		m.spinner.View(),
		m.device,
		m.progress.ViewAs(m.fraction()))
}

// fraction is how much of the expected run time has passed, capped at 1
func (m ExchangeModel) fraction() float64 {
	if m.window <= 0 {
		return 1
	}
	f := float64(time.Since(m.started)) / float64(m.window)
	return min(f, 1)
}

// Outcome returns what the exchange produced once the model is done
func (m ExchangeModel) Outcome() (*serialping.Result, bool, error) {
	return m.result, m.done, m.err
}

// RunExchangeView runs ex under the progress display, drawing to out
func RunExchangeView(out io.Writer, ex *serialping.Exchange, message string, newline bool) (*serialping.Result, error) {
	params := ex.Params()
	model := NewExchangeModel(params.Device, params.Timeout, func() (*serialping.Result, error) {
		return ex.Run(message, newline)
	})

	final, err := tea.NewProgram(model, tea.WithOutput(out), tea.WithInput(nil)).Run()
	if err != nil {
		return nil, fmt.Errorf("progress display: %w", err)
	}

	result, done, runErr := final.(ExchangeModel).Outcome()
	if !done {
		return nil, fmt.Errorf("progress display stopped before the exchange finished")
	}
	return result, runErr
}
