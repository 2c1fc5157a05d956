package handlers

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"cmsadmin/pkg/api"
	"cmsadmin/pkg/controller"
	"cmsadmin/pkg/errors"
	"cmsadmin/pkg/models"
)

// resource serves the list/form/delete pages of one record type
type resource[T any, F controller.Pager[F]] struct {
	h    *Handlers
	base string

	controller func(*controller.Pages) *controller.Controller[T, F]
	store      func(api.Caller) controller.Store[T, F]
	// options loads the choices for the type select; nil means static choices
	options func(ctx context.Context, caller api.Caller) []models.Option
	// filter reads the filter from the query; false when none was submitted
	filter func(q url.Values) (F, bool)
	draft  func(r *http.Request) T

	listPage, formPage, deletePage string
	listView   func(user string, s controller.State[T, F], opts []models.Option) any
	formView   func(user string, s controller.State[T, F], opts []models.Option) any
	deleteView func(user string, s controller.State[T, F]) any
}

func (res *resource[T, F]) routes(r chi.Router) {
	r.Get("/", res.list)
	r.Get("/state", res.state)
	r.Get("/new", res.newForm)
	r.Post("/", res.create)
	r.Post("/alert/dismiss", res.dismissAlert)
	r.Get("/{id}/edit", res.editForm)
	r.Post("/{id}", res.update)
	r.Get("/{id}/delete", res.confirmDelete)
	r.Post("/{id}/delete", res.delete)
}

func (res *resource[T, F]) listURL() string {
	return "/admin/" + res.base
}

// loadOptions fetches the select choices, never failing the page
func (res *resource[T, F]) loadOptions(ctx context.Context, caller api.Caller) []models.Option {
	if res.options == nil {
		return nil
	}
	return res.options(ctx, caller)
}

// list shows the listing. The query selects the action: clear resets the
// filters, filter fields apply a new filter, p moves to a page, and
// anything else reloads the current view.
func (res *resource[T, F]) list(w http.ResponseWriter, r *http.Request) {
	sc := res.h.scope(w, r)
	ctrl := res.controller(sc.pages)
	store := res.store(sc.caller)
	q := r.URL.Query()

	var (
		state controller.State[T, F]
		opts  []models.Option
		err   error
	)
	var g errgroup.Group
	g.Go(func() error {
		switch filter, ok := res.filter(q); {
		case q.Has("clear"):
			state, err = ctrl.ClearFilters(r.Context(), store)
		case ok:
			state, err = ctrl.ApplyFilter(r.Context(), store, filter)
		case q.Has("p"):
			page, _ := strconv.Atoi(q.Get("p"))
			state, err = ctrl.GoToPage(r.Context(), store, page)
		default:
			if q.Get("cancel") == "delete" {
				ctrl.CancelDelete()
			}
			ctrl.CloseEditor()
			state, err = ctrl.Refresh(r.Context(), store)
		}
		return nil
	})
	g.Go(func() error {
		opts = res.loadOptions(r.Context(), sc.caller)
		return nil
	})
	_ = g.Wait()

	if stderrors.Is(err, controller.ErrStale) {
		state = ctrl.Snapshot()
		err = nil
	}
	res.h.logFailure(res.base, "list", err)
	if res.h.sessionLost(w, r, sc, err) {
		return
	}
	res.h.render(w, http.StatusOK, res.listPage, res.listView(sc.session.Username, state, opts))
}

// state exposes the controller state as JSON
func (res *resource[T, F]) state(w http.ResponseWriter, r *http.Request) {
	sc := res.h.scope(w, r)
	writeJSON(w, http.StatusOK, res.controller(sc.pages).Snapshot())
}

func (res *resource[T, F]) newForm(w http.ResponseWriter, r *http.Request) {
	sc := res.h.scope(w, r)
	state := res.controller(sc.pages).OpenNew()
	opts := res.loadOptions(r.Context(), sc.caller)
	if res.h.sessionLost(w, r, sc, nil) {
		return
	}
	res.h.render(w, http.StatusOK, res.formPage, res.formView(sc.session.Username, state, opts))
}

// editForm loads the record and the select choices concurrently
func (res *resource[T, F]) editForm(w http.ResponseWriter, r *http.Request) {
	sc := res.h.scope(w, r)
	id, err := res.h.recordID(r)
	if err != nil {
		http.Error(w, errors.UserMessage(err), http.StatusBadRequest)
		return
	}
	ctrl := res.controller(sc.pages)

	var (
		state controller.State[T, F]
		opts  []models.Option
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		state, err = ctrl.OpenEdit(ctx, res.store(sc.caller), id)
		return err
	})
	g.Go(func() error {
		opts = res.loadOptions(ctx, sc.caller)
		return nil
	})
	if err := g.Wait(); err != nil {
		res.h.logFailure(res.base, "edit", err)
		if res.h.sessionLost(w, r, sc, err) {
			return
		}
		http.Redirect(w, r, res.listURL(), http.StatusSeeOther)
		return
	}
	res.h.render(w, http.StatusOK, res.formPage, res.formView(sc.session.Username, state, opts))
}

func (res *resource[T, F]) create(w http.ResponseWriter, r *http.Request) {
	res.submit(w, r, 0)
}

func (res *resource[T, F]) update(w http.ResponseWriter, r *http.Request) {
	id, err := res.h.recordID(r)
	if err != nil {
		http.Error(w, errors.UserMessage(err), http.StatusBadRequest)
		return
	}
	res.submit(w, r, id)
}

// submit saves the posted form. On success the browser goes back to the
// listing; on failure the form is shown again with the draft and error.
func (res *resource[T, F]) submit(w http.ResponseWriter, r *http.Request, id int) {
	sc := res.h.scope(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	ctrl := res.controller(sc.pages)
	state, err := ctrl.Submit(r.Context(), res.store(sc.caller), id, res.draft(r))
	if errors.TypeOf(err) != errors.ErrTypeValidation {
		res.h.logFailure(res.base, "submit", err)
	}
	if res.h.sessionLost(w, r, sc, err) {
		return
	}
	if err != nil && state.Editor.Open {
		status := http.StatusBadGateway
		if errors.TypeOf(err) == errors.ErrTypeValidation {
			status = http.StatusUnprocessableEntity
		}
		opts := res.loadOptions(r.Context(), sc.caller)
		res.h.render(w, status, res.formPage, res.formView(sc.session.Username, state, opts))
		return
	}
	http.Redirect(w, r, res.listURL(), http.StatusSeeOther)
}

func (res *resource[T, F]) confirmDelete(w http.ResponseWriter, r *http.Request) {
	sc := res.h.scope(w, r)
	id, err := res.h.recordID(r)
	if err != nil {
		http.Error(w, errors.UserMessage(err), http.StatusBadRequest)
		return
	}
	state, err := res.controller(sc.pages).ConfirmDelete(r.Context(), res.store(sc.caller), id)
	res.h.logFailure(res.base, "confirm delete", err)
	if res.h.sessionLost(w, r, sc, err) {
		return
	}
	if err != nil {
		http.Redirect(w, r, res.listURL(), http.StatusSeeOther)
		return
	}
	res.h.render(w, http.StatusOK, res.deletePage, res.deleteView(sc.session.Username, state))
}

// delete removes the record; the outcome shows as an alert on the listing
func (res *resource[T, F]) delete(w http.ResponseWriter, r *http.Request) {
	sc := res.h.scope(w, r)
	id, err := res.h.recordID(r)
	if err != nil {
		http.Error(w, errors.UserMessage(err), http.StatusBadRequest)
		return
	}
	_, err = res.controller(sc.pages).Delete(r.Context(), res.store(sc.caller), id)
	res.h.logFailure(res.base, "delete", err)
	if res.h.sessionLost(w, r, sc, err) {
		return
	}
	http.Redirect(w, r, res.listURL(), http.StatusSeeOther)
}

func (res *resource[T, F]) dismissAlert(w http.ResponseWriter, r *http.Request) {
	sc := res.h.scope(w, r)
	res.controller(sc.pages).DismissAlert()
	http.Redirect(w, r, res.listURL(), http.StatusSeeOther)
}
