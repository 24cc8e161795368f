package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tkrisch/salvage/pkg/salvage/locator"
	"github.com/tkrisch/salvage/pkg/salvage/types"
)

// ScanModel represents the scanning phase of the TUI.
type ScanModel struct {
	progress    locator.Progress
	spinner     spinner.Model
	currentPath string
	startTime   time.Time
	width       int
	height      int
	done        bool
	err         error
}

// ProgressMsg is sent when scan progress is updated.
type ProgressMsg locator.Progress

// ScanCompleteMsg is sent when the scan is complete.
type ScanCompleteMsg struct {
	Result  *types.LocateResult
	Err     error
	Elapsed time.Duration
}

// NewScanModel creates a new scanning model.
func NewScanModel() ScanModel {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return ScanModel{
		spinner:   s,
		startTime: time.Now(),
		width:     80,
		height:    24,
	}
}

// Init initializes the scanning model.
func (m ScanModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages for the scanning model.
func (m ScanModel) Update(msg tea.Msg) (ScanModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ProgressMsg:
		m.progress = locator.Progress(msg)
		m.currentPath = msg.CurrentPath
		return m, nil

	case ScanCompleteMsg:
		m.done = true
		m.err = msg.Err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the scanning model.
func (m ScanModel) View() string {
	var b strings.Builder

	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	b.WriteString("\n")

	b.WriteString(m.renderHeader(contentWidth))
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n\n")

	if m.done {
		if m.err != nil {
			b.WriteString(errorTextStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
		} else {
			b.WriteString(successTextStyle.Render("  Scan complete!"))
		}
	} else {
		b.WriteString(fmt.Sprintf("  %s Scanning: %s",
			m.spinner.View(),
			truncatePath(m.currentPath, contentWidth-20)))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderProgressBar(contentWidth))
	b.WriteString("\n\n")

	b.WriteString(m.renderStats(contentWidth))
	b.WriteString("\n")

	content := b.String()
	contentLines := strings.Count(content, "\n") + 1

	availableLines := m.height - 2
	if availableLines > contentLines {
		content += strings.Repeat("\n", availableLines-contentLines)
	}

	return outerBoxStyle.Width(m.width - 2).Height(m.height - 2).Render(content)
}

// renderHeader renders the header section.
func (m ScanModel) renderHeader(width int) string {
	title := titleStyle.Render("  salvage")
	hint := mutedTextStyle.Render("[Ctrl+C to stop]")

	spacing := width - lipgloss.Width(title) - lipgloss.Width(hint)
	if spacing < 1 {
		spacing = 1
	}

	return title + strings.Repeat(" ", spacing) + hint
}

// renderProgressBar renders an indeterminate progress animation; the
// total number of folders isn't known upfront.
func (m ScanModel) renderProgressBar(width int) string {
	barWidth := width - 4
	if barWidth < 10 {
		barWidth = 10
	}

	elapsed := time.Since(m.startTime)
	position := int(elapsed.Seconds()*2) % (barWidth * 2)
	if position > barWidth {
		position = barWidth*2 - position
	}

	var bar strings.Builder
	bar.WriteString("  ")

	pulseWidth := barWidth / 5
	if pulseWidth < 3 {
		pulseWidth = 3
	}

	for i := range barWidth {
		dist := i - position
		if dist < 0 {
			dist = -dist
		}
		if dist < pulseWidth {
			bar.WriteString(progressFillStyle.Render("█"))
		} else {
			bar.WriteString(progressEmptyStyle.Render("░"))
		}
	}

	return bar.String()
}

// renderStats renders the statistics boxes.
func (m ScanModel) renderStats(totalWidth int) string {
	boxWidth := (totalWidth - 10) / 4
	if boxWidth < 10 {
		boxWidth = 10
	}

	foldersVal := humanize.Comma(int64(m.progress.FoldersScanned))
	entriesVal := humanize.Comma(int64(m.progress.EntriesExamined))
	matchedVal := humanize.Comma(int64(m.progress.Matched))
	elapsedVal := formatDuration(time.Since(m.startTime))

	foldersBox := m.renderStatBox("Folders", foldersVal, boxWidth)
	entriesBox := m.renderStatBox("Entries", entriesVal, boxWidth)
	matchedBox := m.renderStatBox("Matched", matchedVal, boxWidth)
	elapsedBox := m.renderStatBox("Time", elapsedVal, boxWidth)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		"  ", foldersBox, " ", entriesBox, " ", matchedBox, " ", elapsedBox)
}

// renderStatBox renders a single stat box.
func (m ScanModel) renderStatBox(label, value string, width int) string {
	labelStr := statsLabelStyle.Render(label)
	valueStr := statsValueStyle.Render(value)

	content := lipgloss.JoinVertical(lipgloss.Center,
		center(labelStr, width-4),
		center(valueStr, width-4))

	return statsBoxStyle.Width(width).Render(content)
}

// formatDuration formats a duration as M:SS.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	mins := d / time.Minute
	secs := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// SetProgress updates the progress.
func (m *ScanModel) SetProgress(p locator.Progress) {
	m.progress = p
	m.currentPath = p.CurrentPath
}

// SetDone marks the scan as complete.
func (m *ScanModel) SetDone(err error) {
	m.done = true
	m.err = err
}
