package models

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// NoteType is the category tag of a note
type NoteType string

const (
	NoteGeneral      NoteType = "general"
	NoteHomework     NoteType = "homework"
	NoteExam         NoteType = "exam"
	NoteAnnouncement NoteType = "announcement"
	NoteReminder     NoteType = "reminder"
)

// NoteTypes lists the note categories in display order
var NoteTypes = []NoteType{NoteGeneral, NoteHomework, NoteExam, NoteAnnouncement, NoteReminder}

// Priorities accepted by the backend for notes
var Priorities = []string{"low", "normal", "high"}

// DefaultPriority is applied to new notes
const DefaultPriority = "normal"

// Note is a dated notice managed from the admin panel
type Note struct {
	ID          int      `json:"id,omitempty"`
	Type        NoteType `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Date        string   `json:"date,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	IsActive    bool     `json:"is_active"`
	CreatedAt   string   `json:"created_at,omitempty"`
}

// NewNote returns the defaults shown in an empty note form
func NewNote(now time.Time) Note {
	return Note{
		Date:     now.Format("2006-01-02"),
		Priority: DefaultPriority,
		IsActive: true,
	}
}

// NoteFilter holds the recognized query parameters of GET /notes.
// Page is the 1-based page number the backend may use for its own paging.
type NoteFilter struct {
	Type     string
	IsActive *bool
	Search   string
	Page     int
	Limit    int
	Offset   *int
}

// Values encodes the filter, omitting every unset or empty key
func (f NoteFilter) Values() url.Values {
	v := url.Values{}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.Type != "" {
		v.Set("type", f.Type)
	}
	if f.IsActive != nil {
		v.Set("is_active", strconv.FormatBool(*f.IsActive))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset != nil {
		v.Set("offset", strconv.Itoa(*f.Offset))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		v.Set("search", s)
	}
	return v
}

// WithPage returns a copy positioned on the given 1-based page
func (f NoteFilter) WithPage(page, limit int) NoteFilter {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit
	f.Page = page
	f.Limit = limit
	f.Offset = &offset
	return f
}

// WithOffset returns a copy starting at an arbitrary record offset. Page
// is the page that offset falls on.
func (f NoteFilter) WithOffset(offset, limit int) NoteFilter {
	if offset < 0 {
		offset = 0
	}
	f.Page = 1
	if limit > 0 {
		f.Page = offset/limit + 1
	}
	f.Limit = limit
	f.Offset = &offset
	return f
}

// UnmarshalJSON applies the record defaults to fields the backend omits
func (n *Note) UnmarshalJSON(data []byte) error {
	type plain Note
	p := plain{Priority: DefaultPriority, IsActive: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*n = Note(p)
	return nil
}
