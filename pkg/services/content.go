package services

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"cmsadmin/pkg/api"
	"cmsadmin/pkg/models"
)

const (
	contentEndpoint      = "/content"
	contentTypesEndpoint = "/content-types"
)

// ContentService maps content CRUD onto the backend
type ContentService struct {
	api    api.Caller
	logger *zap.Logger
}

// NewContentService creates a new content service
func NewContentService(caller api.Caller, logger *zap.Logger) *ContentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentService{
		api:    caller,
		logger: logger.Named("content"),
	}
}

// List fetches one page of content. Malformed payloads yield the empty
// envelope; transport and HTTP failures are returned unchanged.
func (s *ContentService) List(ctx context.Context, filter models.ContentFilter) (models.Envelope[models.Content], error) {
	path := withQuery(contentEndpoint, filter.Values())
	s.logger.Debug("loading content", zap.String("path", path))

	resp, err := s.api.Do(ctx, "GET", path, nil)
	if err != nil {
		return models.Envelope[models.Content]{}, err
	}

	env := normalizeList[models.Content](resp.Body, contentListFields, s.logger)
	s.logger.Debug("content loaded", zap.Int("items", len(env.Items)), zap.Int("total", env.Total))
	return env, nil
}

// Get fetches one content record
func (s *ContentService) Get(ctx context.Context, id int) (*models.Content, error) {
	resp, err := s.api.Do(ctx, "GET", contentPath(id), nil)
	if err != nil {
		return nil, err
	}
	var c models.Content
	if err := resp.Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create stores a new content record and returns the backend's copy
func (s *ContentService) Create(ctx context.Context, c models.Content) (*models.Content, error) {
	c.ID = 0
	s.logger.Debug("creating content", zap.String("page", c.Page), zap.String("key", c.Key))
	resp, err := s.api.Do(ctx, "POST", contentEndpoint, c)
	if err != nil {
		return nil, err
	}
	return decodeOr(resp, c)
}

// Update replaces the content record with the given id
func (s *ContentService) Update(ctx context.Context, id int, c models.Content) (*models.Content, error) {
	c.ID = id
	s.logger.Debug("updating content", zap.Int("id", id))
	resp, err := s.api.Do(ctx, "PUT", contentPath(id), c)
	if err != nil {
		return nil, err
	}
	return decodeOr(resp, c)
}

// Delete removes the content record with the given id
func (s *ContentService) Delete(ctx context.Context, id int) error {
	s.logger.Debug("deleting content", zap.Int("id", id))
	_, err := s.api.Do(ctx, "DELETE", contentPath(id), nil)
	return err
}

type contentTypeEntry struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	IsActive bool   `json:"is_active"`
}

// Types returns the active content types offered by the backend catalogue
func (s *ContentService) Types(ctx context.Context) ([]models.Option, error) {
	resp, err := s.api.Do(ctx, "GET", contentTypesEndpoint, nil)
	if err != nil {
		return nil, err
	}

	env := normalizeList[contentTypeEntry](resp.Body, []string{"tipos_contenido", "items", "data"}, s.logger)
	options := make([]models.Option, 0, len(env.Items))
	for _, t := range env.Items {
		if !t.IsActive || t.Key == "" {
			continue
		}
		label := t.Label
		if label == "" {
			label = t.Key
		}
		options = append(options, models.Option{Value: t.Key, Label: label})
	}
	return options, nil
}

// DefaultTypeOptions lists the built-in content types
func DefaultTypeOptions() []models.Option {
	options := make([]models.Option, 0, len(models.ContentTypes))
	for _, t := range models.ContentTypes {
		options = append(options, models.Option{Value: string(t), Label: contentTypeLabel(t)})
	}
	return options
}

func contentTypeLabel(t models.ContentType) string {
	switch t {
	case models.ContentNews:
		return "News"
	case models.ContentPage:
		return "Page"
	case models.ContentSection:
		return "Section"
	case models.ContentImage:
		return "Image"
	}
	return string(t)
}

func contentPath(id int) string {
	return fmt.Sprintf("%s/%d", contentEndpoint, id)
}

// decodeOr decodes the saved record, falling back to what was sent when
// the backend answers without a body
func decodeOr[T any](resp *api.Response, sent T) (*T, error) {
	if resp.NoContent() || len(resp.Body) == 0 {
		return &sent, nil
	}
	var saved T
	if err := json.Unmarshal(resp.Body, &saved); err != nil {
		return &sent, nil
	}
	return &saved, nil
}
