package render

import (
	"strconv"

	"cmsadmin/pkg/controller"
	"cmsadmin/pkg/models"
)

// Layout carries what every admin page shows around its body
type Layout struct {
	Title   string
	Section string
	User    string
	Alert   *controller.Alert
}

// LoginView is the login page
type LoginView struct {
	Layout
	Username string
	Error    string
	Reason   string
}

// ContentListView is the content listing
type ContentListView struct {
	Layout
	State  controller.State[models.Content, models.ContentFilter]
	Rows   []ContentRow
	Pager  Pagination
	Count  string
	Types  []models.Option
	Pages  []models.Option
	Active string
}

// ContentFormView is the create/edit content form
type ContentFormView struct {
	Layout
	Editor controller.Editor[models.Content]
	Types  []models.Option
	Pages  []models.Option
}

// ContentDeleteView is the content delete confirmation
type ContentDeleteView struct {
	Layout
	Dialog controller.DeleteDialog[models.Content]
	Type   Badge
}

// NoteListView is the notes listing
type NoteListView struct {
	Layout
	State  controller.State[models.Note, models.NoteFilter]
	Rows   []NoteRow
	Pager  Pagination
	Count  string
	Types  []models.Option
	Active string
}

// NoteFormView is the create/edit note form
type NoteFormView struct {
	Layout
	Editor     controller.Editor[models.Note]
	Types      []models.Option
	Priorities []models.Option
}

// NoteDeleteView is the note delete confirmation
type NoteDeleteView struct {
	Layout
	Dialog controller.DeleteDialog[models.Note]
	Type   Badge
}

// NoteTypeOptions lists the note categories for selects
func NoteTypeOptions() []models.Option {
	opts := make([]models.Option, 0, len(models.NoteTypes))
	for _, t := range models.NoteTypes {
		opts = append(opts, models.Option{Value: string(t), Label: NoteTypeBadge(t).Label})
	}
	return opts
}

// PriorityOptions lists note priorities for selects
func PriorityOptions() []models.Option {
	labels := map[string]string{"low": "Low", "normal": "Normal", "high": "High"}
	opts := make([]models.Option, 0, len(models.Priorities))
	for _, p := range models.Priorities {
		opts = append(opts, models.Option{Value: p, Label: labels[p]})
	}
	return opts
}

// NewContentListView prepares the content listing for display
func NewContentListView(user string, s controller.State[models.Content, models.ContentFilter], types []models.Option) ContentListView {
	return ContentListView{
		Layout: Layout{Title: "Content", Section: "content", User: user, Alert: s.Alert},
		State:  s,
		Rows:   ContentRows(s.Items),
		Pager:  Paginate(s.Total, s.Limit, s.Offset, s.Page),
		Count:  CountLabel(s.Total, "item", "items"),
		Types:  types,
		Pages:  models.ContentPages,
		Active: activeValue(s.Filter.IsActive),
	}
}

// NewNoteListView prepares the notes listing for display
func NewNoteListView(user string, s controller.State[models.Note, models.NoteFilter]) NoteListView {
	return NoteListView{
		Layout: Layout{Title: "Notes", Section: "notes", User: user, Alert: s.Alert},
		State:  s,
		Rows:   NoteRows(s.Items),
		Pager:  Paginate(s.Total, s.Limit, s.Offset, s.Page),
		Count:  CountLabel(s.Total, "note", "notes"),
		Types:  NoteTypeOptions(),
		Active: activeValue(s.Filter.IsActive),
	}
}

func activeValue(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}
