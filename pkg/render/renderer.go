package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"cmsadmin/pkg/performance"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page template names
const (
	PageLogin         = "login"
	PageContentList   = "content_list"
	PageContentForm   = "content_form"
	PageContentDelete = "content_delete"
	PageNotesList     = "notes_list"
	PageNotesForm     = "notes_form"
	PageNotesDelete   = "notes_delete"
)

var pageNames = []string{
	PageLogin,
	PageContentList, PageContentForm, PageContentDelete,
	PageNotesList, PageNotesForm, PageNotesDelete,
}

// reloadDelay coalesces the burst of events an editor save produces
const reloadDelay = 150 * time.Millisecond

// Renderer executes the admin page templates. Templates come from the
// binary, or from a directory that is watched and re-parsed on change.
type Renderer struct {
	mu     sync.RWMutex
	pages  map[string]*template.Template
	source fs.FS
	dir    string
	logger *zap.Logger

	watcher   *fsnotify.Watcher
	debouncer *performance.Debouncer
	done      chan struct{}
	wg        sync.WaitGroup
	reloads   atomic.Uint64
}

// NewRenderer parses the templates in dir, or the embedded set when dir is empty
func NewRenderer(dir string, logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Renderer{dir: dir, logger: logger.Named("render")}
	if dir == "" {
		sub, err := fs.Sub(templateFS, "templates")
		if err != nil {
			return nil, err
		}
		r.source = sub
	} else {
		r.source = os.DirFS(dir)
	}
	if err := r.reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Funcs are the helpers available inside page templates
func Funcs() template.FuncMap {
	return template.FuncMap{
		"truncate":    Truncate,
		"formatDate":  FormatDate,
		"pageLabel":   PageLabel,
		"activeBadge": ActiveBadge,
	}
}

func (r *Renderer) reload() error {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(Funcs()).ParseFS(r.source, "layout.html", "rows.html", name+".html")
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = t
	}
	r.mu.Lock()
	r.pages = pages
	r.mu.Unlock()
	r.reloads.Add(1)
	return nil
}

// Reloads counts successful template parses, the initial one included
func (r *Renderer) Reloads() uint64 {
	return r.reloads.Load()
}

// Render executes page with data. Output is buffered so a template error
// never leaves a half-written page.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	r.mu.RLock()
	t, ok := r.pages[page]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// Watch re-parses the template directory whenever an .html file in it
// changes. A failed parse keeps the previous templates. It is a no-op for
// embedded templates.
func (r *Renderer) Watch() error {
	if r.dir == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(r.dir); err != nil {
		watcher.Close()
		return err
	}
	r.watcher = watcher
	r.debouncer = performance.NewDebouncer(reloadDelay)
	r.done = make(chan struct{})

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(event.Name, ".html") {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				r.logger.Debug("template changed", zap.String("file", filepath.Base(event.Name)), zap.String("op", event.Op.String()))
				r.debouncer.Debounce("reload", func() {
					if err := r.reload(); err != nil {
						r.logger.Warn("template reload failed, keeping previous templates", zap.Error(err))
						return
					}
					r.logger.Info("templates reloaded")
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				r.logger.Warn("template watcher error", zap.Error(err))
			case <-r.done:
				return
			}
		}
	}()
	return nil
}

// Close stops watching
func (r *Renderer) Close() error {
	if r.watcher == nil {
		return nil
	}
	close(r.done)
	r.wg.Wait()
	r.debouncer.Stop()
	err := r.watcher.Close()
	r.watcher = nil
	return err
}
