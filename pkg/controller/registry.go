package controller

import (
	"sync"
	"time"

	"cmsadmin/pkg/errors"
	"cmsadmin/pkg/models"
)

// DefaultIdleTimeout is how long an untouched session keeps its page state
const DefaultIdleTimeout = 30 * time.Minute

// ContentController drives the content listing
type ContentController = Controller[models.Content, models.ContentFilter]

// NoteController drives the notes listing
type NoteController = Controller[models.Note, models.NoteFilter]

// Pages groups the controllers belonging to one admin session
type Pages struct {
	Content  *ContentController
	Notes    *NoteController
	lastSeen time.Time
}

// Registry keeps page state per admin session
type Registry struct {
	mu       sync.Mutex
	pages    map[string]*Pages
	limit    int
	alertTTL time.Duration
	idle     time.Duration
	now      func() time.Time
}

// NewRegistry creates a registry whose controllers page by limit and
// expire success alerts after alertTTL
func NewRegistry(limit int, alertTTL time.Duration) *Registry {
	return &Registry{
		pages:    make(map[string]*Pages),
		limit:    limit,
		alertTTL: alertTTL,
		idle:     DefaultIdleTimeout,
		now:      time.Now,
	}
}

// SetClock replaces the clock used for idle eviction and alert expiry
func (r *Registry) SetClock(now func() time.Time) {
	r.mu.Lock()
	r.now = now
	r.mu.Unlock()
}

// For returns the pages of sessionID, creating them on first use. Sessions
// idle for longer than the idle timeout are evicted on the way.
func (r *Registry) For(sessionID string) *Pages {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweepLocked(now, sessionID)

	p, ok := r.pages[sessionID]
	if !ok {
		p = &Pages{
			Content: New[models.Content](models.ContentFilter{}, ContentOptions(r.limit, r.alertTTL, r.now)),
			Notes:   New[models.Note](models.NoteFilter{}, NoteOptions(r.limit, r.alertTTL, r.now)),
		}
		r.pages[sessionID] = p
	}
	p.lastSeen = now
	return p
}

// Sweep evicts idle sessions and reports how many were removed
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(r.now(), "")
}

func (r *Registry) sweepLocked(now time.Time, keep string) int {
	removed := 0
	for id, p := range r.pages {
		if id != keep && now.Sub(p.lastSeen) > r.idle {
			delete(r.pages, id)
			removed++
		}
	}
	return removed
}

// Drop forgets sessionID, typically on logout
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	delete(r.pages, sessionID)
	r.mu.Unlock()
}

// Len reports how many sessions hold page state
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}

// ContentOptions configures a controller for content records
func ContentOptions(limit int, alertTTL time.Duration, now func() time.Time) Options[models.Content] {
	v := errors.NewValidator()
	return Options[models.Content]{
		Limit:    limit,
		AlertTTL: alertTTL,
		Singular: "Content",
		Plural:   "content",
		New:      models.NewContent,
		ID:       func(c models.Content) int { return c.ID },
		Validate: func(c models.Content) *errors.ValidationResult {
			return v.ValidateContentForm(string(c.Type), c.Page, c.Key, c.Title)
		},
		Now: now,
	}
}

// NoteOptions configures a controller for notes
func NoteOptions(limit int, alertTTL time.Duration, now func() time.Time) Options[models.Note] {
	v := errors.NewValidator()
	return Options[models.Note]{
		Limit:    limit,
		AlertTTL: alertTTL,
		Singular: "Note",
		Plural:   "notes",
		New:      func() models.Note { return models.NewNote(now()) },
		ID:       func(n models.Note) int { return n.ID },
		Validate: func(n models.Note) *errors.ValidationResult {
			return v.ValidateNoteForm(string(n.Type), n.Title, n.Date)
		},
		Now: now,
	}
}
