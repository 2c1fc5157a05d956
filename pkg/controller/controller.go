// Package controller owns the state of one admin listing page: which view
// is showing (loading, table or empty), the current filter and page, the
// alert banner, and the edit and delete dialogs. Handlers drive it; the
// render package draws whatever Snapshot returns.
package controller

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"cmsadmin/pkg/errors"
	"cmsadmin/pkg/models"
)

// ErrStale is returned by Refresh when a newer refresh was issued while it
// was in flight; its response was discarded.
var ErrStale = stderrors.New("refresh superseded by a newer request")

// Phase is the visible state of the listing
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseTable   Phase = "table"
	PhaseEmpty   Phase = "empty"
)

// AlertKind matches the banner colours
type AlertKind string

const (
	AlertSuccess AlertKind = "success"
	AlertDanger  AlertKind = "danger"
)

// Alert is the banner above the listing. Success alerts carry an expiry;
// error alerts stay until dismissed or replaced.
type Alert struct {
	Kind      AlertKind  `json:"kind"`
	Message   string     `json:"message"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Editor is the create/edit form. ID is zero for a new record.
type Editor[T any] struct {
	Open   bool   `json:"open"`
	ID     int    `json:"id"`
	Draft  T      `json:"draft"`
	Error  string `json:"error,omitempty"`
	Field  string `json:"field,omitempty"`
	Saving bool   `json:"saving"`
}

// DeleteDialog is the delete confirmation
type DeleteDialog[T any] struct {
	Open bool `json:"open"`
	ID   int  `json:"id"`
	Item T    `json:"item"`
	Busy bool `json:"busy"`
}

// State is a point-in-time copy of everything the page shows
type State[T any, F any] struct {
	Phase  Phase           `json:"phase"`
	Items  []T             `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
	Page   int             `json:"page"`
	Filter F               `json:"filter"`
	Alert  *Alert          `json:"alert,omitempty"`
	Editor Editor[T]       `json:"editor"`
	Delete DeleteDialog[T] `json:"delete"`
	Seq    uint64          `json:"seq"`
}

// Pager is implemented by filters that can be positioned on a page
type Pager[F any] interface {
	WithPage(page, limit int) F
}

// Store is the resource service a controller works against
type Store[T any, F any] interface {
	List(ctx context.Context, filter F) (models.Envelope[T], error)
	Get(ctx context.Context, id int) (*T, error)
	Create(ctx context.Context, item T) (*T, error)
	Update(ctx context.Context, id int, item T) (*T, error)
	Delete(ctx context.Context, id int) error
}

// Options configures a controller for one record type
type Options[T any] struct {
	Limit    int
	AlertTTL time.Duration
	Singular string // "Content", "Note"
	Plural   string // "content", "notes"
	New      func() T
	ID       func(T) int
	Validate func(T) *errors.ValidationResult
	Now      func() time.Time
}

// Controller coordinates fetch, normalize and state updates for one page
type Controller[T any, F Pager[F]] struct {
	mu     sync.Mutex
	opts   Options[T]
	state  State[T, F]
	seq    uint64
	cancel context.CancelFunc
}

// New creates a controller showing the first page of initial
func New[T any, F Pager[F]](initial F, opts Options[T]) *Controller[T, F] {
	if opts.Limit <= 0 {
		opts.Limit = models.DefaultLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.New == nil {
		opts.New = func() T { var zero T; return zero }
	}
	return &Controller[T, F]{
		opts: opts,
		state: State[T, F]{
			Phase:  PhaseLoading,
			Items:  []T{},
			Limit:  opts.Limit,
			Page:   1,
			Filter: initial,
		},
	}
}

// Snapshot returns a copy of the current state, dropping an expired alert
func (c *Controller[T, F]) Snapshot() State[T, F] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller[T, F]) snapshotLocked() State[T, F] {
	if a := c.state.Alert; a != nil && a.ExpiresAt != nil && !c.opts.Now().Before(*a.ExpiresAt) {
		c.state.Alert = nil
	}
	s := c.state
	s.Items = append([]T(nil), c.state.Items...)
	if c.state.Alert != nil {
		a := *c.state.Alert
		s.Alert = &a
	}
	s.Seq = c.seq
	return s
}

func (c *Controller[T, F]) setAlertLocked(kind AlertKind, msg string) {
	a := &Alert{Kind: kind, Message: msg}
	if kind == AlertSuccess && c.opts.AlertTTL > 0 {
		exp := c.opts.Now().Add(c.opts.AlertTTL)
		a.ExpiresAt = &exp
	}
	c.state.Alert = a
}

// Refresh reloads the current page. It enters the loading phase, lists,
// and settles on table or empty. A failure raises a danger alert and falls
// back to empty. When another refresh starts before this one returns, this
// one's context is cancelled and its result discarded with ErrStale, so the
// final state always belongs to the latest request.
func (c *Controller[T, F]) Refresh(ctx context.Context, store Store[T, F]) (State[T, F], error) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.cancel = cancel
	c.state.Phase = PhaseLoading
	filter := c.state.Filter.WithPage(c.state.Page, c.opts.Limit)
	c.mu.Unlock()

	env, err := store.List(ctx, filter)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return c.snapshotLocked(), ErrStale
	}
	c.cancel = nil

	if err != nil {
		c.state.Items = []T{}
		c.state.Total = 0
		c.state.Offset = 0
		c.state.Phase = PhaseEmpty
		c.setAlertLocked(AlertDanger, fmt.Sprintf("Failed to load %s: %s", c.opts.Plural, errors.UserMessage(err)))
		return c.snapshotLocked(), err
	}

	c.state.Items = env.Items
	c.state.Total = env.Total
	c.state.Limit = env.Limit
	c.state.Offset = env.Offset
	if len(env.Items) == 0 {
		c.state.Phase = PhaseEmpty
	} else {
		c.state.Phase = PhaseTable
	}
	return c.snapshotLocked(), nil
}

// ApplyFilter replaces the filter, returns to page 1 and refreshes
func (c *Controller[T, F]) ApplyFilter(ctx context.Context, store Store[T, F], filter F) (State[T, F], error) {
	c.mu.Lock()
	c.state.Filter = filter
	c.state.Page = 1
	c.mu.Unlock()
	return c.Refresh(ctx, store)
}

// ClearFilters resets every filter and refreshes
func (c *Controller[T, F]) ClearFilters(ctx context.Context, store Store[T, F]) (State[T, F], error) {
	var zero F
	return c.ApplyFilter(ctx, store, zero)
}

// GoToPage moves to a 1-based page, keeping the filter, and refreshes
func (c *Controller[T, F]) GoToPage(ctx context.Context, store Store[T, F], page int) (State[T, F], error) {
	if page < 1 {
		page = 1
	}
	c.mu.Lock()
	c.state.Page = page
	c.mu.Unlock()
	return c.Refresh(ctx, store)
}

// OpenNew opens an empty form
func (c *Controller[T, F]) OpenNew() State[T, F] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Editor = Editor[T]{Open: true, Draft: c.opts.New()}
	return c.snapshotLocked()
}

// OpenEdit loads a record into the form
func (c *Controller[T, F]) OpenEdit(ctx context.Context, store Store[T, F], id int) (State[T, F], error) {
	item, err := store.Get(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.setAlertLocked(AlertDanger, fmt.Sprintf("Failed to load the %s: %s", lower(c.opts.Singular), errors.UserMessage(err)))
		return c.snapshotLocked(), err
	}
	c.state.Editor = Editor[T]{Open: true, ID: id, Draft: *item}
	return c.snapshotLocked(), nil
}

// CloseEditor discards the form
func (c *Controller[T, F]) CloseEditor() {
	c.mu.Lock()
	c.state.Editor = Editor[T]{}
	c.mu.Unlock()
}

// Submit validates draft and creates it (id 0) or updates record id. A
// validation failure never reaches the backend. A failed save keeps the
// form open with the draft intact and the error inline. A successful save
// closes the form, raises a success alert and refreshes the listing.
func (c *Controller[T, F]) Submit(ctx context.Context, store Store[T, F], id int, draft T) (State[T, F], error) {
	c.mu.Lock()
	c.state.Editor = Editor[T]{Open: true, ID: id, Draft: draft}
	if c.opts.Validate != nil {
		if result := c.opts.Validate(draft); !result.IsValid {
			first := result.GetFirstError()
			c.state.Editor.Error = first.GetUserMessage()
			c.state.Editor.Field = first.Field
			defer c.mu.Unlock()
			return c.snapshotLocked(), first
		}
	}
	c.state.Editor.Saving = true
	c.mu.Unlock()

	var err error
	if id == 0 {
		_, err = store.Create(ctx, draft)
	} else {
		_, err = store.Update(ctx, id, draft)
	}

	c.mu.Lock()
	c.state.Editor.Saving = false
	if err != nil {
		c.state.Editor.Error = fmt.Sprintf("Failed to save the %s: %s", lower(c.opts.Singular), errors.UserMessage(err))
		defer c.mu.Unlock()
		return c.snapshotLocked(), err
	}
	c.state.Editor = Editor[T]{}
	verb := "updated"
	if id == 0 {
		verb = "created"
	}
	c.setAlertLocked(AlertSuccess, fmt.Sprintf("%s %s successfully", c.opts.Singular, verb))
	c.mu.Unlock()

	return c.refreshAfterMutation(ctx, store)
}

// ConfirmDelete opens the confirmation for id, taking the record from the
// current page or fetching it
func (c *Controller[T, F]) ConfirmDelete(ctx context.Context, store Store[T, F], id int) (State[T, F], error) {
	c.mu.Lock()
	for _, item := range c.state.Items {
		if c.opts.ID != nil && c.opts.ID(item) == id {
			c.state.Delete = DeleteDialog[T]{Open: true, ID: id, Item: item}
			defer c.mu.Unlock()
			return c.snapshotLocked(), nil
		}
	}
	c.mu.Unlock()

	item, err := store.Get(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.setAlertLocked(AlertDanger, fmt.Sprintf("Failed to load the %s: %s", lower(c.opts.Singular), errors.UserMessage(err)))
		return c.snapshotLocked(), err
	}
	c.state.Delete = DeleteDialog[T]{Open: true, ID: id, Item: *item}
	return c.snapshotLocked(), nil
}

// CancelDelete closes the confirmation
func (c *Controller[T, F]) CancelDelete() {
	c.mu.Lock()
	c.state.Delete = DeleteDialog[T]{}
	c.mu.Unlock()
}

// Delete removes record id. The confirmation closes whatever the outcome.
// On failure a danger alert is raised and the listing is left untouched;
// on success the listing is refreshed.
func (c *Controller[T, F]) Delete(ctx context.Context, store Store[T, F], id int) (State[T, F], error) {
	c.mu.Lock()
	c.state.Delete.ID = id
	c.state.Delete.Busy = true
	c.mu.Unlock()

	err := store.Delete(ctx, id)

	c.mu.Lock()
	c.state.Delete = DeleteDialog[T]{}
	if err != nil {
		c.setAlertLocked(AlertDanger, fmt.Sprintf("Failed to delete the %s: %s", lower(c.opts.Singular), errors.UserMessage(err)))
		defer c.mu.Unlock()
		return c.snapshotLocked(), err
	}
	c.setAlertLocked(AlertSuccess, fmt.Sprintf("%s deleted successfully", c.opts.Singular))
	c.mu.Unlock()

	return c.refreshAfterMutation(ctx, store)
}

// refreshAfterMutation reloads after a confirmed write. The success alert
// survives unless the reload itself fails.
func (c *Controller[T, F]) refreshAfterMutation(ctx context.Context, store Store[T, F]) (State[T, F], error) {
	state, err := c.Refresh(ctx, store)
	if stderrors.Is(err, ErrStale) {
		return c.Snapshot(), nil
	}
	return state, err
}

// DismissAlert hides the banner
func (c *Controller[T, F]) DismissAlert() {
	c.mu.Lock()
	c.state.Alert = nil
	c.mu.Unlock()
}

func lower(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
