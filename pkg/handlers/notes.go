package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"cmsadmin/pkg/api"
	"cmsadmin/pkg/controller"
	"cmsadmin/pkg/models"
	"cmsadmin/pkg/render"
	"cmsadmin/pkg/services"
)

func newNoteResource(h *Handlers) *resource[models.Note, models.NoteFilter] {
	return &resource[models.Note, models.NoteFilter]{
		h:    h,
		base: "notes",
		controller: func(p *controller.Pages) *controller.NoteController {
			return p.Notes
		},
		store: func(caller api.Caller) controller.Store[models.Note, models.NoteFilter] {
			return services.NewNoteService(caller, h.logger)
		},
		filter:     noteFilter,
		draft:      noteDraft,
		listPage:   render.PageNotesList,
		formPage:   render.PageNotesForm,
		deletePage: render.PageNotesDelete,
		listView: func(user string, s controller.State[models.Note, models.NoteFilter], _ []models.Option) any {
			return render.NewNoteListView(user, s)
		},
		formView: func(user string, s controller.State[models.Note, models.NoteFilter], _ []models.Option) any {
			title := "New note"
			if s.Editor.ID != 0 {
				title = "Edit note"
			}
			return render.NoteFormView{
				Layout:     render.Layout{Title: title, Section: "notes", User: user},
				Editor:     s.Editor,
				Types:      render.NoteTypeOptions(),
				Priorities: render.PriorityOptions(),
			}
		},
		deleteView: func(user string, s controller.State[models.Note, models.NoteFilter]) any {
			return render.NoteDeleteView{
				Layout: render.Layout{Title: "Delete note", Section: "notes", User: user},
				Dialog: s.Delete,
				Type:   render.NoteTypeBadge(s.Delete.Item.Type),
			}
		},
	}
}

func noteFilter(q url.Values) (models.NoteFilter, bool) {
	if !q.Has("type") && !q.Has("active") && !q.Has("search") {
		return models.NoteFilter{}, false
	}
	return models.NoteFilter{
		Type:     strings.TrimSpace(q.Get("type")),
		IsActive: models.ParseActive(q.Get("active")),
		Search:   strings.TrimSpace(q.Get("search")),
	}, true
}

func noteDraft(r *http.Request) models.Note {
	priority := strings.TrimSpace(r.PostFormValue("priority"))
	if priority == "" {
		priority = models.DefaultPriority
	}
	return models.Note{
		Type:        models.NoteType(strings.TrimSpace(r.PostFormValue("type"))),
		Title:       strings.TrimSpace(r.PostFormValue("title")),
		Description: r.PostFormValue("description"),
		Date:        strings.TrimSpace(r.PostFormValue("date")),
		Priority:    priority,
		IsActive:    r.PostFormValue("is_active") == "true",
	}
}
