// Package render turns validated records into what the admin pages show:
// badges, truncated cells, escaped table rows, pagination and full pages.
// Nothing here talks to the backend.
package render

import (
	"fmt"
	"strings"
	"time"

	"cmsadmin/pkg/models"
)

// Badge is a coloured label. Color is a Bootstrap contextual class suffix,
// Icon a Font Awesome class.
type Badge struct {
	Label string
	Color string
	Icon  string
}

// UnknownBadge is shown for tags the panel does not recognize
var UnknownBadge = Badge{Label: "Unknown", Color: "secondary", Icon: "fa-question"}

var contentTypeBadges = map[models.ContentType]Badge{
	models.ContentNews:    {Label: "News", Color: "info", Icon: "fa-newspaper"},
	models.ContentPage:    {Label: "Page", Color: "primary", Icon: "fa-file-alt"},
	models.ContentSection: {Label: "Section", Color: "success", Icon: "fa-layer-group"},
	models.ContentImage:   {Label: "Image", Color: "warning", Icon: "fa-image"},
}

var noteTypeBadges = map[models.NoteType]Badge{
	models.NoteGeneral:      {Label: "General", Color: "primary", Icon: "fa-book"},
	models.NoteHomework:     {Label: "Homework", Color: "info", Icon: "fa-book-open"},
	models.NoteExam:         {Label: "Exam", Color: "warning", Icon: "fa-clipboard-check"},
	models.NoteAnnouncement: {Label: "Announcement", Color: "success", Icon: "fa-bullhorn"},
	models.NoteReminder:     {Label: "Reminder", Color: "danger", Icon: "fa-bell"},
}

// ContentTypeBadge maps a content type to its badge
func ContentTypeBadge(t models.ContentType) Badge {
	if b, ok := contentTypeBadges[t]; ok {
		return b
	}
	return UnknownBadge
}

// NoteTypeBadge maps a note type to its badge
func NoteTypeBadge(t models.NoteType) Badge {
	if b, ok := noteTypeBadges[t]; ok {
		return b
	}
	return UnknownBadge
}

// ActiveBadge renders the is_active flag
func ActiveBadge(active bool) Badge {
	if active {
		return Badge{Label: "Active", Color: "success", Icon: "fa-check"}
	}
	return Badge{Label: "Inactive", Color: "secondary", Icon: "fa-times"}
}

// Truncate shortens s to max runes, appending "..." when it cut anything
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// FormatDate renders an ISO date as dd/mm/yyyy. Empty input gives "-";
// anything unparseable is returned as is.
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return s
}

// CountLabel renders "1 note" / "3 notes"
func CountLabel(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}

// PageLabel returns the display name of a site section
func PageLabel(page string) string {
	for _, opt := range models.ContentPages {
		if opt.Value == page {
			return opt.Label
		}
	}
	return page
}
