package render

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cmsadmin/pkg/models"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))

	badgeColors = map[string]lipgloss.Color{
		"primary":   lipgloss.Color("#0d6efd"),
		"info":      lipgloss.Color("#0dcaf0"),
		"success":   lipgloss.Color("#8BC34A"),
		"warning":   lipgloss.Color("#FFC107"),
		"danger":    lipgloss.Color("#e53935"),
		"secondary": lipgloss.Color("#6c757d"),
	}
)

// Table is a plain terminal table
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Footer  string
}

// AddRow appends a row
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// String renders the table. An empty table renders only its title and a
// "no results" line.
func (t *Table) String() string {
	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(titleStyle.Render(t.Title))
		sb.WriteString("\n")
	}
	if len(t.Rows) == 0 {
		sb.WriteString(mutedStyle.Render("no results"))
		sb.WriteString("\n")
		return sb.String()
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}
	total := len(widths) - 1
	for i := range widths {
		widths[i] += 2
		total += widths[i]
	}

	sep := mutedStyle.Render("|")
	for i, h := range t.Headers {
		sb.WriteString(headerStyle.Width(widths[i]).Render(h))
		if i < len(t.Headers)-1 {
			sb.WriteString(sep)
		}
	}
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")

	for _, row := range t.Rows {
		for i := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			sb.WriteString(cellStyle.Width(widths[i]).Render(cell))
			if i < len(widths)-1 {
				sb.WriteString(sep)
			}
		}
		sb.WriteString("\n")
	}
	if t.Footer != "" {
		sb.WriteString(mutedStyle.Render(t.Footer))
		sb.WriteString("\n")
	}
	return sb.String()
}

// TerminalBadge colours a badge label for the terminal
func TerminalBadge(b Badge) string {
	c, ok := badgeColors[b.Color]
	if !ok {
		c = badgeColors["secondary"]
	}
	return lipgloss.NewStyle().Foreground(c).Render(b.Label)
}

// ContentTable lays out a content envelope for the terminal
func ContentTable(env models.Envelope[models.Content]) *Table {
	t := &Table{
		Title:   "Content",
		Headers: []string{"ID", "Type", "Page", "Key", "Title", "Status"},
		Footer:  Paginate(env.Total, env.Limit, env.Offset, 0).Range,
	}
	for _, r := range ContentRows(env.Items) {
		t.AddRow(strconv.Itoa(r.ID), TerminalBadge(r.Type), r.Page, r.Key, Truncate(r.Title, 40), TerminalBadge(r.Active))
	}
	return t
}

// NoteTable lays out a notes envelope for the terminal
func NoteTable(env models.Envelope[models.Note]) *Table {
	t := &Table{
		Title:   "Notes",
		Headers: []string{"ID", "Type", "Date", "Title", "Priority", "Status"},
		Footer:  Paginate(env.Total, env.Limit, env.Offset, 0).Range,
	}
	for _, r := range NoteRows(env.Items) {
		t.AddRow(strconv.Itoa(r.ID), TerminalBadge(r.Type), r.Date, Truncate(r.Title, 40), r.Priority, TerminalBadge(r.Active))
	}
	return t
}

// OptionTable lists value/label pairs
func OptionTable(title string, opts []models.Option) *Table {
	t := &Table{Title: title, Headers: []string{"Value", "Label"}}
	for _, o := range opts {
		t.AddRow(o.Value, o.Label)
	}
	return t
}
