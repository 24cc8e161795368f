package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tkrisch/salvage/pkg/salvage/types"
)

// ResultModel represents the candidate picker phase of the TUI.
type ResultModel struct {
	candidates []types.Candidate
	cursor     int
	selected   map[int]bool
	offset     int // scroll offset
	width      int
	height     int
}

// NewResultModel creates a new result model with the given candidates,
// already ranked most-recent-first.
func NewResultModel(candidates []types.Candidate) ResultModel {
	return ResultModel{
		candidates: candidates,
		selected:   make(map[int]bool),
		width:      80,
		height:     24,
	}
}

// Init initializes the result model.
func (m ResultModel) Init() tea.Cmd {
	return nil
}

// HandleKey handles key input for the result model.
func (m *ResultModel) HandleKey(key string) tea.Cmd {
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.ensureVisible()
		}

	case "down", "j":
		if m.cursor < len(m.candidates)-1 {
			m.cursor++
			m.ensureVisible()
		}

	case " ":
		m.Toggle(m.cursor)

	case "a":
		m.SelectAll()

	case "n":
		m.SelectNone()

	case "home", "g":
		m.cursor = 0
		m.offset = 0

	case "end", "G":
		if len(m.candidates) > 0 {
			m.cursor = len(m.candidates) - 1
			m.ensureVisible()
		}

	case "pgup":
		m.cursor -= m.visibleRows()
		if m.cursor < 0 {
			m.cursor = 0
		}
		m.ensureVisible()

	case "pgdown":
		m.cursor += m.visibleRows()
		if m.cursor >= len(m.candidates) {
			m.cursor = len(m.candidates) - 1
		}
		m.ensureVisible()
	}

	return nil
}

// View renders the result model.
func (m ResultModel) View() string {
	if len(m.candidates) == 0 {
		return m.renderEmpty()
	}

	var b strings.Builder

	contentWidth := m.width - 4
	if contentWidth < 60 {
		contentWidth = 60
	}

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n")

	b.WriteString(m.renderHelpBar())
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n")

	b.WriteString(m.renderCandidateList(contentWidth))

	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n")
	b.WriteString(m.renderFooter(contentWidth))

	return outerBoxStyle.Width(m.width - 2).Render(b.String())
}

// renderEmpty renders the empty state view.
func (m ResultModel) renderEmpty() string {
	contentWidth := m.width - 4

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n\n")
	b.WriteString(center(mutedTextStyle.Render("No snapshots found matching your criteria."), contentWidth))
	b.WriteString("\n\n")
	b.WriteString(center(mutedTextStyle.Render("Try loosening the name, size, or recency flags, or use --raw."), contentWidth))
	b.WriteString("\n\n")
	b.WriteString(center(keyStyle.Render("[q]")+" "+keyDescStyle.Render("Quit"), contentWidth))
	b.WriteString("\n")

	return outerBoxStyle.Width(m.width - 2).Render(b.String())
}

// renderHeader renders the header.
func (m ResultModel) renderHeader() string {
	title := fmt.Sprintf("  salvage - %d snapshots (Total: %s)",
		len(m.candidates), types.FormatSize(m.TotalSize()))

	return titleStyle.Render(title)
}

// renderHelpBar renders the help bar with key hints.
func (m ResultModel) renderHelpBar() string {
	hints := []struct {
		key  string
		desc string
	}{
		{"Space", "Toggle"},
		{"a", "All"},
		{"n", "None"},
		{"Enter", "Recover"},
		{"q", "Quit"},
	}

	var parts []string
	for _, h := range hints {
		parts = append(parts, keyStyle.Render("["+h.key+"]")+" "+keyDescStyle.Render(h.desc))
	}

	return "  " + strings.Join(parts, "  ")
}

// renderCandidateList renders the scrollable candidate list.
func (m ResultModel) renderCandidateList(width int) string {
	var b strings.Builder

	visibleRows := m.visibleRows()
	nameWidth := width - 36 // checkbox + time + size + padding

	for i := m.offset; i < m.offset+visibleRows && i < len(m.candidates); i++ {
		c := &m.candidates[i]
		b.WriteString(m.renderCandidateLine(c, m.selected[i], i == m.cursor, nameWidth))
		b.WriteString("\n")

		if i == m.cursor {
			b.WriteString(m.renderCandidateDetails(c, width))
			b.WriteString("\n")
		}
	}

	// Pad remaining rows so the footer stays put
	rendered := m.offset + visibleRows
	if rendered > len(m.candidates) {
		rendered = len(m.candidates)
	}
	lineCount := 0
	for i := m.offset; i < rendered; i++ {
		lineCount++
		if i == m.cursor {
			lineCount++
		}
	}
	for lineCount < visibleRows*2 {
		b.WriteString("\n")
		lineCount++
	}

	return b.String()
}

// renderCandidateLine renders a single candidate line.
func (m ResultModel) renderCandidateLine(c *types.Candidate, isSelected, isCursor bool, nameWidth int) string {
	var checkbox string
	if isSelected {
		checkbox = checkedStyle.Render("[x]")
	} else {
		checkbox = uncheckedStyle.Render("[ ]")
	}

	stamp := c.Time().Format("01-02 15:04:05")
	size := sizeStyle.Render(padLeft(c.HumanSize(), 9))

	var cursor string
	if isCursor {
		cursor = cursorStyle.Render(">")
	} else {
		cursor = " "
	}

	line := fmt.Sprintf("  %s %s %s %s  %s",
		checkbox, stamp, size, cursor, truncatePath(c.Basename(), nameWidth))

	if isCursor {
		return selectedItemStyle.Width(nameWidth + 36).Render(line)
	}
	return normalItemStyle.Render(line)
}

// renderCandidateDetails renders the candidate detail line.
func (m ResultModel) renderCandidateDetails(c *types.Candidate, width int) string {
	source := c.Resource
	if !c.FromManifest || source == "" {
		source = c.BlobPath
	}

	return detailStyle.Render(truncatePath(source, width-14))
}

// renderFooter renders the footer with selection summary.
func (m ResultModel) renderFooter(width int) string {
	left := fmt.Sprintf("  Selected: %d snapshots (%s)",
		m.SelectedCount(), types.FormatSize(m.SelectedSize()))
	right := mutedTextStyle.Render("[↑↓] Navigate")

	spacing := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if spacing < 1 {
		spacing = 1
	}

	return left + strings.Repeat(" ", spacing) + right
}

// visibleRows returns the number of visible rows for the candidate list.
func (m ResultModel) visibleRows() int {
	available := m.height - 12
	if available < 5 {
		available = 5
	}
	// Divide by 2 since the cursor item shows a detail line
	return available / 2
}

// ensureVisible adjusts offset to keep cursor visible.
func (m *ResultModel) ensureVisible() {
	visibleRows := m.visibleRows()

	if m.cursor < m.offset {
		m.offset = m.cursor
	} else if m.cursor >= m.offset+visibleRows {
		m.offset = m.cursor - visibleRows + 1
	}

	if m.offset < 0 {
		m.offset = 0
	}
}

// Toggle toggles selection of the candidate at the given index.
func (m *ResultModel) Toggle(index int) {
	if index < 0 || index >= len(m.candidates) {
		return
	}
	if m.selected[index] {
		delete(m.selected, index)
	} else {
		m.selected[index] = true
	}
}

// SelectAll selects all candidates.
func (m *ResultModel) SelectAll() {
	for i := range m.candidates {
		m.selected[i] = true
	}
}

// SelectNone deselects all candidates.
func (m *ResultModel) SelectNone() {
	m.selected = make(map[int]bool)
}

// SelectedCandidates returns the selected candidates in rank order.
func (m ResultModel) SelectedCandidates() []types.Candidate {
	var result []types.Candidate
	for i := range m.candidates {
		if m.selected[i] {
			result = append(result, m.candidates[i])
		}
	}
	return result
}

// SelectedSize returns the total size of selected candidates.
func (m ResultModel) SelectedSize() int64 {
	var total int64
	for i, selected := range m.selected {
		if selected && i < len(m.candidates) {
			total += m.candidates[i].Size
		}
	}
	return total
}

// SelectedCount returns the number of selected candidates.
func (m ResultModel) SelectedCount() int {
	return len(m.selected)
}

// TotalSize returns the total size of all candidates.
func (m ResultModel) TotalSize() int64 {
	var total int64
	for i := range m.candidates {
		total += m.candidates[i].Size
	}
	return total
}

// HasSelection returns true if any candidates are selected.
func (m ResultModel) HasSelection() bool {
	return len(m.selected) > 0
}

// SetDimensions updates the width and height.
func (m *ResultModel) SetDimensions(width, height int) {
	m.width = width
	m.height = height
}
