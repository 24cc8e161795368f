package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tkrisch/salvage/pkg/salvage/locator"
	"github.com/tkrisch/salvage/pkg/salvage/restore"
	"github.com/tkrisch/salvage/pkg/salvage/selector"
	"github.com/tkrisch/salvage/pkg/salvage/types"
)

// AppState represents the current state of the application.
type AppState int

const (
	StateScanning AppState = iota
	StateResults
	StateConfirm
	StateCopying
	StateComplete
)

// Options configures the TUI application.
type Options struct {
	Roots       []string
	Selector    *selector.Selector
	HeaderBytes int
	Raw         bool
	OutputDir   string
	Prefix      string
}

// Model is the main Bubble Tea model for the salvage TUI.
type Model struct {
	state       AppState
	scanModel   ScanModel
	resultModel ResultModel
	options     Options

	// Scanning state
	ctx          context.Context
	cancel       context.CancelFunc
	scanDone     bool
	progressChan chan locator.Progress

	// Confirmation dialog state
	confirmFocused int // 0 = cancel, 1 = recover

	// Copying state
	copySpinner      spinner.Model
	copyProgress     int
	copyTotal        int
	copyErrors       []string
	copyProgressChan chan copyProgressMsg

	// Window dimensions
	width  int
	height int
}

// NewModel creates a new TUI model with the given options.
func NewModel(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(successColor)

	return Model{
		state:        StateScanning,
		scanModel:    NewScanModel(),
		options:      opts,
		ctx:          ctx,
		cancel:       cancel,
		width:        80,
		height:       24,
		copySpinner:  s,
		progressChan: make(chan locator.Progress, 100),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.scanModel.Init(),
		m.startScan(),
		m.listenForProgress(),
		m.tickUI(),
	)
}

// tickUIMsg triggers a UI refresh.
type tickUIMsg struct{}

// tickUI returns a command that periodically triggers UI updates.
func (m Model) tickUI() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(time.Time) tea.Msg {
		return tickUIMsg{}
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scanModel.width = msg.Width
		m.scanModel.height = msg.Height
		m.resultModel.SetDimensions(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickUIMsg:
		// Keep UI refreshing during scanning
		if m.state == StateScanning && !m.scanDone {
			return m, m.tickUI()
		}
		return m, nil

	case ProgressMsg:
		m.scanModel.SetProgress(locator.Progress(msg))
		return m, m.listenForProgress()

	case ScanCompleteMsg:
		m.scanDone = true
		m.scanModel.SetDone(msg.Err)

		if msg.Err == nil {
			m.state = StateResults
			m.resultModel = NewResultModel(msg.Result.Candidates)
			m.resultModel.SetDimensions(m.width, m.height)
		}
		return m, nil

	case spinner.TickMsg:
		switch m.state {
		case StateScanning:
			var cmd tea.Cmd
			m.scanModel.spinner, cmd = m.scanModel.spinner.Update(msg)
			cmds = append(cmds, cmd)
		case StateCopying:
			var cmd tea.Cmd
			m.copySpinner, cmd = m.copySpinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case copyProgressMsg:
		m.copyProgress = msg.current
		if msg.err != nil {
			m.copyErrors = append(m.copyErrors, msg.err.Error())
		}
		if msg.done {
			m.state = StateComplete
			return m, nil
		}
		return m, m.listenForCopyProgress()
	}

	return m, tea.Batch(cmds...)
}

// handleKey handles keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		m.cancel()
		return m, tea.Quit
	}

	switch m.state {
	case StateScanning:
		if key == "q" || key == "esc" {
			m.cancel()
			return m, tea.Quit
		}

	case StateResults:
		switch key {
		case "q", "esc":
			return m, tea.Quit
		case "enter":
			if m.resultModel.HasSelection() {
				m.state = StateConfirm
				m.confirmFocused = 1 // Default to recover; copies are safe
			}
		default:
			m.resultModel.HandleKey(key)
		}

	case StateConfirm:
		switch key {
		case "q", "esc":
			m.state = StateResults
		case "left", "h":
			m.confirmFocused = 0
		case "right", "l":
			m.confirmFocused = 1
		case "tab":
			m.confirmFocused = (m.confirmFocused + 1) % 2
		case "enter":
			if m.confirmFocused == 1 {
				return m.startCopy()
			}
			m.state = StateResults
		case "y":
			return m.startCopy()
		case "n":
			m.state = StateResults
		}

	case StateCopying:
		// No key handling during copy

	case StateComplete:
		if key == "q" || key == "enter" || key == "esc" {
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the current state.
func (m Model) View() string {
	switch m.state {
	case StateScanning:
		return m.scanModel.View()
	case StateResults:
		return m.resultModel.View()
	case StateConfirm:
		return m.renderConfirmDialog()
	case StateCopying:
		return m.renderCopying()
	case StateComplete:
		return m.renderComplete()
	}
	return ""
}

// renderConfirmDialog renders the recovery confirmation dialog.
func (m Model) renderConfirmDialog() string {
	bg := m.resultModel.View()

	var dialogContent strings.Builder
	dialogContent.WriteString(dialogTitleStyle.Render("Recover Snapshots"))
	dialogContent.WriteString("\n\n")
	dialogContent.WriteString(dialogTextStyle.Render(
		fmt.Sprintf("Copy %d snapshots (%s) to %s?",
			m.resultModel.SelectedCount(),
			types.FormatSize(m.resultModel.SelectedSize()),
			m.options.OutputDir)))
	dialogContent.WriteString("\n\n")

	cancelBtn := inactiveButtonStyle.Render("Cancel")
	recoverBtn := inactiveButtonStyle.Render("Recover")

	if m.confirmFocused == 0 {
		cancelBtn = activeButtonStyle.Background(subtleColor).Render("Cancel")
	} else {
		recoverBtn = activeButtonStyle.Render("Recover")
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Center, cancelBtn, "  ", recoverBtn)
	dialogContent.WriteString(center(buttons, 46))

	dialog := dialogBoxStyle.Render(dialogContent.String())

	return m.overlayDialog(bg, dialog)
}

// renderCopying renders the copy progress view.
func (m Model) renderCopying() string {
	contentWidth := m.width - 4

	var b strings.Builder
	b.WriteString(titleStyle.Render("  Recovering files..."))
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("  %s Copying: %d / %d snapshots",
		m.copySpinner.View(), m.copyProgress, m.copyTotal))
	b.WriteString("\n\n")

	if m.copyTotal > 0 {
		pct := float64(m.copyProgress) / float64(m.copyTotal)
		barWidth := contentWidth - 4
		filled := int(pct * float64(barWidth))
		empty := barWidth - filled

		bar := "  " + progressFillStyle.Render(strings.Repeat("█", filled)) +
			progressEmptyStyle.Render(strings.Repeat("░", empty))
		b.WriteString(bar)
		b.WriteString(fmt.Sprintf(" %d%%", int(pct*100)))
		b.WriteString("\n")
	}

	if len(m.copyErrors) > 0 {
		b.WriteString("\n")
		b.WriteString(errorTextStyle.Render(fmt.Sprintf("  %d errors:", len(m.copyErrors))))
		b.WriteString("\n")
		for _, e := range m.copyErrors {
			b.WriteString(errorTextStyle.Render("    - " + truncatePath(e, contentWidth-6)))
			b.WriteString("\n")
		}
	}

	return outerBoxStyle.Width(m.width - 2).Render(b.String())
}

// renderComplete renders the completion view.
func (m Model) renderComplete() string {
	contentWidth := m.width - 4

	var b strings.Builder
	b.WriteString(successTextStyle.Render("  Recovery Complete"))
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n\n")

	copied := m.copyProgress - len(m.copyErrors)
	b.WriteString(fmt.Sprintf("  Recovered %d snapshots into %s\n", copied, m.options.OutputDir))

	if len(m.copyErrors) > 0 {
		b.WriteString(errorTextStyle.Render(fmt.Sprintf("  Failed: %d snapshots\n", len(m.copyErrors))))
		b.WriteString("\n")
		b.WriteString(errorTextStyle.Render("  Errors:"))
		b.WriteString("\n")
		maxErrors := 5
		for i, e := range m.copyErrors {
			if i >= maxErrors {
				b.WriteString(errorTextStyle.Render(fmt.Sprintf("    ... and %d more", len(m.copyErrors)-maxErrors)))
				b.WriteString("\n")
				break
			}
			b.WriteString(errorTextStyle.Render("    - " + truncatePath(e, contentWidth-6)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(center(keyStyle.Render("[Enter]")+" "+keyDescStyle.Render("Exit"), contentWidth))
	b.WriteString("\n")

	return outerBoxStyle.Width(m.width - 2).Render(b.String())
}

// overlayDialog centers a dialog over a background view.
func (m Model) overlayDialog(bg, dialog string) string {
	dialogLines := strings.Split(dialog, "\n")
	bgLines := strings.Split(bg, "\n")

	dialogHeight := len(dialogLines)
	startRow := (m.height - dialogHeight) / 2
	if startRow < 0 {
		startRow = 0
	}

	dialogWidth := lipgloss.Width(dialog)
	startCol := (m.width - dialogWidth) / 2
	if startCol < 0 {
		startCol = 0
	}

	var result []string
	for i := range max(len(bgLines), startRow+dialogHeight) {
		if i < startRow || i >= startRow+dialogHeight {
			if i < len(bgLines) {
				result = append(result, bgLines[i])
			} else {
				result = append(result, "")
			}
		} else {
			dialogLine := dialogLines[i-startRow]
			if i < len(bgLines) {
				bgLine := bgLines[i]
				if startCol > len(bgLine) {
					result = append(result, strings.Repeat(" ", startCol)+dialogLine)
				} else {
					result = append(result, bgLine[:min(startCol, len(bgLine))]+dialogLine)
				}
			} else {
				result = append(result, strings.Repeat(" ", startCol)+dialogLine)
			}
		}
	}

	return strings.Join(result, "\n")
}

// startScan starts the locator scan in the background.
func (m Model) startScan() tea.Cmd {
	progressChan := m.progressChan
	return func() tea.Msg {
		startTime := time.Now()

		loc := locator.New(locator.Options{
			Roots:       m.options.Roots,
			Selector:    m.options.Selector,
			HeaderBytes: m.options.HeaderBytes,
			Raw:         m.options.Raw,
			OnProgress: func(p locator.Progress) {
				select {
				case progressChan <- p:
				default:
					// Channel full, skip this update
				}
			},
		})

		result, err := loc.Scan(m.ctx)

		close(progressChan)

		// Cancellation means the user already quit; the partial
		// result is still fine to hand back.
		if err != nil && !errors.Is(err, context.Canceled) {
			return ScanCompleteMsg{Err: err}
		}

		return ScanCompleteMsg{
			Result:  result,
			Elapsed: time.Since(startTime),
		}
	}
}

// listenForProgress returns a command that waits for progress updates.
func (m Model) listenForProgress() tea.Cmd {
	progressChan := m.progressChan
	return func() tea.Msg {
		p, ok := <-progressChan
		if !ok {
			// Channel closed, scan is done
			return nil
		}
		return ProgressMsg(p)
	}
}

// copyProgressMsg reports copy progress.
type copyProgressMsg struct {
	current int
	done    bool
	err     error
}

// startCopy begins materializing the selected candidates.
func (m Model) startCopy() (tea.Model, tea.Cmd) {
	m.state = StateCopying
	m.copyTotal = m.resultModel.SelectedCount()
	m.copyProgress = 0
	m.copyErrors = nil

	candidates := m.resultModel.SelectedCandidates()
	mat := &restore.Materializer{
		OutputDir: m.options.OutputDir,
		Prefix:    m.options.Prefix,
	}

	m.copyProgressChan = make(chan copyProgressMsg, 100)
	progressChan := m.copyProgressChan

	go func() {
		if err := mat.EnsureDir(); err != nil {
			progressChan <- copyProgressMsg{done: true, err: err}
			close(progressChan)
			return
		}

		for i := range candidates {
			_, skips, err := mat.Copy(candidates[i : i+1])
			if err == nil && len(skips) > 0 {
				err = fmt.Errorf("%s: %s", skips[0].Path, skips[0].Reason)
			}

			select {
			case progressChan <- copyProgressMsg{current: i + 1, err: err}:
			default:
				// Channel full, skip this update
			}
		}

		progressChan <- copyProgressMsg{current: len(candidates), done: true}
		close(progressChan)
	}()

	return m, tea.Batch(m.copySpinner.Tick, m.listenForCopyProgress())
}

// listenForCopyProgress returns a command that waits for copy progress updates.
func (m Model) listenForCopyProgress() tea.Cmd {
	progressChan := m.copyProgressChan
	return func() tea.Msg {
		if progressChan == nil {
			return copyProgressMsg{current: m.copyTotal, done: true}
		}
		msg, ok := <-progressChan
		if !ok {
			return copyProgressMsg{current: m.copyTotal, done: true}
		}
		return msg
	}
}

// Run starts the TUI application.
func Run(opts Options) error {
	model := NewModel(opts)

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}
