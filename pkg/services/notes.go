package services

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"cmsadmin/pkg/api"
	"cmsadmin/pkg/models"
)

const notesEndpoint = "/notes"

// NoteService maps note CRUD onto the backend
type NoteService struct {
	api    api.Caller
	logger *zap.Logger
}

// NewNoteService creates a new note service
func NewNoteService(caller api.Caller, logger *zap.Logger) *NoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteService{
		api:    caller,
		logger: logger.Named("notes"),
	}
}

// List fetches one page of notes. Malformed payloads yield the empty
// envelope; transport and HTTP failures are returned unchanged.
func (s *NoteService) List(ctx context.Context, filter models.NoteFilter) (models.Envelope[models.Note], error) {
	path := withQuery(notesEndpoint, filter.Values())
	s.logger.Debug("loading notes", zap.String("path", path))

	resp, err := s.api.Do(ctx, "GET", path, nil)
	if err != nil {
		return models.Envelope[models.Note]{}, err
	}

	env := normalizeList[models.Note](resp.Body, noteListFields, s.logger)
	s.logger.Debug("notes loaded", zap.Int("items", len(env.Items)), zap.Int("total", env.Total))
	return env, nil
}

// Get fetches one note
func (s *NoteService) Get(ctx context.Context, id int) (*models.Note, error) {
	resp, err := s.api.Do(ctx, "GET", notePath(id), nil)
	if err != nil {
		return nil, err
	}
	var n models.Note
	if err := resp.Decode(&n); err != nil {
		return nil, err
	}
	return &n, nil
}

// Create stores a new note and returns the backend's copy
func (s *NoteService) Create(ctx context.Context, n models.Note) (*models.Note, error) {
	n.ID = 0
	if n.Priority == "" {
		n.Priority = models.DefaultPriority
	}
	s.logger.Debug("creating note", zap.String("type", string(n.Type)))
	resp, err := s.api.Do(ctx, "POST", notesEndpoint, n)
	if err != nil {
		return nil, err
	}
	return decodeOr(resp, n)
}

// Update replaces the note with the given id
func (s *NoteService) Update(ctx context.Context, id int, n models.Note) (*models.Note, error) {
	n.ID = id
	s.logger.Debug("updating note", zap.Int("id", id))
	resp, err := s.api.Do(ctx, "PUT", notePath(id), n)
	if err != nil {
		return nil, err
	}
	return decodeOr(resp, n)
}

// Delete removes the note with the given id
func (s *NoteService) Delete(ctx context.Context, id int) error {
	s.logger.Debug("deleting note", zap.Int("id", id))
	_, err := s.api.Do(ctx, "DELETE", notePath(id), nil)
	return err
}

func notePath(id int) string {
	return fmt.Sprintf("%s/%d", notesEndpoint, id)
}

func withQuery(path string, values url.Values) string {
	if len(values) == 0 {
		return path
	}
	return path + "?" + values.Encode()
}
