package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"cmsadmin/pkg/api"
	"cmsadmin/pkg/controller"
	"cmsadmin/pkg/models"
	"cmsadmin/pkg/render"
	"cmsadmin/pkg/services"
)

func newContentResource(h *Handlers) *resource[models.Content, models.ContentFilter] {
	return &resource[models.Content, models.ContentFilter]{
		h:    h,
		base: "content",
		controller: func(p *controller.Pages) *controller.ContentController {
			return p.Content
		},
		store: func(caller api.Caller) controller.Store[models.Content, models.ContentFilter] {
			return services.NewContentService(caller, h.logger)
		},
		options:    h.contentTypes,
		filter:     contentFilter,
		draft:      contentDraft,
		listPage:   render.PageContentList,
		formPage:   render.PageContentForm,
		deletePage: render.PageContentDelete,
		listView: func(user string, s controller.State[models.Content, models.ContentFilter], opts []models.Option) any {
			return render.NewContentListView(user, s, opts)
		},
		formView: func(user string, s controller.State[models.Content, models.ContentFilter], opts []models.Option) any {
			title := "New content"
			if s.Editor.ID != 0 {
				title = "Edit content"
			}
			return render.ContentFormView{
				Layout: render.Layout{Title: title, Section: "content", User: user},
				Editor: s.Editor,
				Types:  opts,
				Pages:  models.ContentPages,
			}
		},
		deleteView: func(user string, s controller.State[models.Content, models.ContentFilter]) any {
			return render.ContentDeleteView{
				Layout: render.Layout{Title: "Delete content", Section: "content", User: user},
				Dialog: s.Delete,
				Type:   render.ContentTypeBadge(s.Delete.Item.Type),
			}
		},
	}
}

// contentTypes returns the backend's active content types, or the built-in
// list when the catalogue is empty or unavailable
func (h *Handlers) contentTypes(ctx context.Context, caller api.Caller) []models.Option {
	opts, err := services.NewContentService(caller, h.logger).Types(ctx)
	if err != nil {
		h.logger.Debug("content types unavailable, using defaults", zap.Error(err))
	}
	if len(opts) == 0 {
		return services.DefaultTypeOptions()
	}
	return opts
}

func contentFilter(q url.Values) (models.ContentFilter, bool) {
	if !q.Has("type") && !q.Has("page") && !q.Has("active") {
		return models.ContentFilter{}, false
	}
	return models.ContentFilter{
		Type:     strings.TrimSpace(q.Get("type")),
		Page:     strings.TrimSpace(q.Get("page")),
		IsActive: models.ParseActive(q.Get("active")),
	}, true
}

func contentDraft(r *http.Request) models.Content {
	return models.Content{
		Type:     models.ContentType(strings.TrimSpace(r.PostFormValue("type"))),
		Page:     strings.TrimSpace(r.PostFormValue("page")),
		Key:      strings.TrimSpace(r.PostFormValue("key")),
		Title:    strings.TrimSpace(r.PostFormValue("title")),
		Body:     r.PostFormValue("body"),
		ImageURL: strings.TrimSpace(r.PostFormValue("image_url")),
		IsActive: r.PostFormValue("is_active") == "true",
	}
}
