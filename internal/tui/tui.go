// Package tui provides a Bubble Tea terminal user interface for artinject.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/artinject/internal/config"
	"github.com/handiism/artinject/internal/fixer"
	"github.com/handiism/artinject/internal/journal"
	"github.com/handiism/artinject/internal/logging"
	"github.com/handiism/artinject/internal/model"
	"github.com/sirupsen/logrus"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	folderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// maxLogs is the number of events kept on screen.
const maxLogs = 10

var errCancelled = errors.New("cancelled by user")

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateCounting
	StateScanning
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   fixer.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	store     journal.Store
	logger    *logrus.Entry
	logs      []LogEntry
	err       error

	// Scan context
	ctx    context.Context
	cancel context.CancelFunc

	fixer  *fixer.Fixer
	events chan fixer.ProgressEvent
	root   string

	// Scan progress
	totalFolders   int32
	visitedFolders int32
	fixedFiles     int32
	stats          model.RunStats
	extracted      model.ExtractStats
	journalCount   int

	// Options
	dryRun  bool
	verbose bool
	extract bool

	width  int
	height int
}

// NewModel creates a new TUI model. A nil store disables the journal and a
// nil logger discards diagnostics.
func NewModel(settings *config.Settings, store journal.Store, logger *logrus.Entry) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	if store == nil {
		store = journal.Nop{}
	}
	if logger == nil {
		logger = logging.Discard()
	}

	ti := textinput.New()
	ti.Placeholder = "/path/to/music"
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		store:     store,
		logger:    logger,
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,
		dryRun:    settings.DryRun,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries one event emitted by the fixer.
	ProgressMsg struct {
		Event fixer.ProgressEvent
	}

	// CountDoneMsg is sent when the directory count is known.
	CountDoneMsg struct {
		Total int
		Err   error
	}

	// RunDoneMsg is sent when the scan finishes. Journal is the number of
	// recorded injections, or -1 without a journal.
	RunDoneMsg struct {
		Stats   model.RunStats
		Journal int
		Err     error
	}

	// ExtractDoneMsg is sent when a folder image extraction finishes.
	ExtractDoneMsg struct {
		Stats model.ExtractStats
		Err   error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateScanning || m.state == StateCounting {
				m.cancel()
				m.state = StateError
				m.err = errCancelled
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				m.start()
				return m, tea.Batch(m.countFolders(), m.spinner.Tick)
			}

		// Toggles use ctrl so that the path can contain any letter.
		case "ctrl+d":
			if m.state == StateInput {
				m.dryRun = !m.dryRun
			}
			return m, nil

		case "ctrl+v":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}
			return m, nil

		case "ctrl+e":
			if m.state == StateInput {
				m.extract = !m.extract
			}
			return m, nil

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.reset()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		cmds = append(cmds, waitForEvent(m.events))
		if msg.Event.Level == fixer.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case CountDoneMsg:
		if m.state != StateCounting {
			break
		}
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			break
		}
		m.totalFolders = int32(msg.Total)
		m.state = StateScanning
		cmds = append(cmds, m.startRun(), waitForEvent(m.events), m.tickProgress())

	case RunDoneMsg:
		if m.state != StateScanning && m.state != StateError {
			break
		}
		m.stats = msg.Stats
		m.journalCount = msg.Journal
		m.visitedFolders = int32(msg.Stats.Folders)
		m.fixedFiles = int32(msg.Stats.Fixed)
		m.finish(msg.Err)

	case ExtractDoneMsg:
		if m.state != StateScanning && m.state != StateError {
			break
		}
		m.extracted = msg.Stats
		m.fixedFiles = int32(msg.Stats.Created)
		m.finish(msg.Err)

	case TickMsg:
		if m.fixer != nil && m.state == StateScanning {
			visited, _, fixed := m.fixer.GetProgress()
			m.visitedFolders = visited
			m.fixedFiles = fixed

			progressCmd := m.progress.SetPercent(m.percent())
			cmds = append(cmds, progressCmd, m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// start builds the fixer for a new scan of the entered path.
func (m *Model) start() {
	m.root = strings.TrimSpace(m.textInput.Value())
	m.state = StateCounting

	settings := *m.settings
	settings.DryRun = m.dryRun

	// A cancelled scan may outlive the UI reading its events.
	ctx := m.ctx
	events := make(chan fixer.ProgressEvent, 64)
	m.events = events
	m.fixer = fixer.New(&settings, func(event fixer.ProgressEvent) {
		select {
		case events <- event:
		case <-ctx.Done():
		}
	}, fixer.WithJournal(m.store), fixer.WithLogger(m.logger))
}

// finish moves to the final state once the background work returned.
func (m *Model) finish(err error) {
	switch {
	case m.ctx.Err() != nil:
		m.state = StateError
		m.err = errCancelled
	case err != nil:
		m.state = StateError
		m.err = err
	default:
		m.state = StateComplete
	}
}

func (m *Model) reset() {
	m.state = StateInput
	m.logs = nil
	m.err = nil
	m.root = ""
	m.fixer = nil
	m.events = nil
	m.totalFolders = 0
	m.visitedFolders = 0
	m.fixedFiles = 0
	m.stats = model.RunStats{}
	m.extracted = model.ExtractStats{}
	m.journalCount = 0
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.SetValue("")
	m.textInput.Focus()
}

func (m Model) percent() float64 {
	if m.totalFolders <= 0 {
		return 0
	}
	percent := float64(m.visitedFolders) / float64(m.totalFolders)
	if percent > 1 {
		percent = 1
	}
	return percent
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("♪ artinject"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Embed folder images into audio files without cover art"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateCounting:
		b.WriteString(m.viewCounting())
	case StateScanning:
		b.WriteString(m.viewScanning())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter music library path:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	dryRunCheck := "[ ]"
	if m.dryRun {
		dryRunCheck = "[×]"
	}
	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[×]"
	}
	extractCheck := "[ ]"
	if m.extract {
		extractCheck = "[×]"
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Dry run, write nothing (ctrl+d)\n", dryRunCheck))
	b.WriteString(fmt.Sprintf("  %s Verbose output (ctrl+v)\n", verboseCheck))
	b.WriteString(fmt.Sprintf("  %s Extract %s from embedded art instead (ctrl+e)\n", extractCheck, m.settings.ExtractFileName))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Cover names: %s", strings.Join(m.settings.CoverFileNames, ", "))))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewCounting() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Counting folders..."))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewScanning() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(folderStyle.Render(m.root))
	b.WriteString("\n\n")

	b.WriteString(m.progress.ViewAs(m.percent()))
	b.WriteString("\n")

	done := "Fixed"
	if m.extract {
		done = "Created"
	}
	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Folders: %d/%d | %s: %d",
		m.visitedFolders,
		m.totalFolders,
		done,
		m.fixedFiles,
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	title := "✨ Task Complete!"
	if m.dryRun {
		title = "✨ Dry Run Complete!"
	}

	var summary string
	if m.extract {
		summary = fmt.Sprintf(
			"%s\n\n"+
				"Created: %d\n"+
				"Skipped: %d\n"+
				"Missing: %d",
			title,
			m.extracted.Created,
			m.extracted.Skipped,
			m.extracted.Failed,
		)
	} else {
		summary = fmt.Sprintf(
			"%s\n\n"+
				"Folders: %d\n"+
				"Fixed: %d\n"+
				"Failed: %d\n"+
				"Skipped: %d",
			title,
			m.stats.Folders,
			m.stats.Fixed,
			m.stats.Failed,
			m.stats.Skipped,
		)
		if m.journalCount >= 0 && m.hasJournal() {
			summary += fmt.Sprintf("\nJournal: %d recorded", m.journalCount)
		}
	}
	b.WriteString(boxStyle.Render(summary))
	b.WriteString("\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case fixer.LevelError:
			style = errorStyle
			prefix = "✗"
		case fixer.LevelWarning:
			style = warningStyle
			prefix = "!"
		case fixer.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case fixer.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • ctrl+d: dry run • ctrl+v: verbose • ctrl+e: extract • esc: quit"
	case StateCounting, StateScanning:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new scan • q: quit"
	}
	return ""
}

// countFolders sizes the progress bar before the scan starts.
func (m Model) countFolders() tea.Cmd {
	f, ctx, root := m.fixer, m.ctx, m.root
	return func() tea.Msg {
		total, err := f.CountFolders(ctx, root)
		return CountDoneMsg{Total: total, Err: err}
	}
}

// startRun runs the scan, or the extraction, in the background.
func (m Model) startRun() tea.Cmd {
	f, ctx, root, events := m.fixer, m.ctx, m.root, m.events
	if m.extract {
		return func() tea.Msg {
			stats, err := f.Extract(ctx, root)
			close(events)
			return ExtractDoneMsg{Stats: stats, Err: err}
		}
	}

	store, withJournal := m.store, m.hasJournal()
	return func() tea.Msg {
		stats, err := f.Run(ctx, root)
		close(events)

		count := -1
		if withJournal {
			if n, countErr := store.Count(ctx); countErr == nil {
				count = n
			}
		}
		return RunDoneMsg{Stats: stats, Journal: count, Err: err}
	}
}

func (m Model) hasJournal() bool {
	_, nop := m.store.(journal.Nop)
	return !nop
}

// waitForEvent delivers the next fixer event. It yields nothing once the
// scan has finished and the channel is drained.
func waitForEvent(events <-chan fixer.ProgressEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: event}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, store journal.Store, logger *logrus.Entry) error {
	p := tea.NewProgram(NewModel(settings, store, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
