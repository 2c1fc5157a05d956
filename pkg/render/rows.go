package render

import "cmsadmin/pkg/models"

// Cell widths used in listing tables
const (
	BodyCellRunes        = 60
	DescriptionCellRunes = 50
)

// ContentRow is one line of the content table. Text fields are raw; the
// templates escape them.
type ContentRow struct {
	ID     int
	Type   Badge
	Page   string
	Key    string
	Title  string
	Body   string
	Active Badge
}

// NoteRow is one line of the notes table
type NoteRow struct {
	ID          int
	Type        Badge
	Date        string
	Title       string
	Description string
	Priority    string
	Active      Badge
}

// ContentRows builds table rows for content records
func ContentRows(items []models.Content) []ContentRow {
	rows := make([]ContentRow, 0, len(items))
	for _, c := range items {
		rows = append(rows, ContentRow{
			ID:     c.ID,
			Type:   ContentTypeBadge(c.Type),
			Page:   PageLabel(c.Page),
			Key:    c.Key,
			Title:  c.Title,
			Body:   Truncate(c.Body, BodyCellRunes),
			Active: ActiveBadge(c.IsActive),
		})
	}
	return rows
}

// NoteRows builds table rows for notes. A note without date shows its
// creation date.
func NoteRows(items []models.Note) []NoteRow {
	rows := make([]NoteRow, 0, len(items))
	for _, n := range items {
		date := n.Date
		if date == "" {
			date = n.CreatedAt
		}
		rows = append(rows, NoteRow{
			ID:          n.ID,
			Type:        NoteTypeBadge(n.Type),
			Date:        FormatDate(date),
			Title:       n.Title,
			Description: Truncate(n.Description, DescriptionCellRunes),
			Priority:    n.Priority,
			Active:      ActiveBadge(n.IsActive),
		})
	}
	return rows
}
