package render

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"cmsadmin/pkg/controller"
	"cmsadmin/pkg/models"
)

func TestBadges(t *testing.T) {
	assert.Equal(t, "info", ContentTypeBadge(models.ContentNews).Color)
	assert.Equal(t, "warning", ContentTypeBadge(models.ContentImage).Color)
	assert.Equal(t, UnknownBadge, ContentTypeBadge("carousel"))

	assert.Equal(t, Badge{Label: "General", Color: "primary", Icon: "fa-book"}, NoteTypeBadge(models.NoteGeneral))
	assert.Equal(t, "danger", NoteTypeBadge(models.NoteReminder).Color)
	assert.Equal(t, "Unknown", NoteTypeBadge("").Label)

	assert.Equal(t, "Active", ActiveBadge(true).Label)
	assert.Equal(t, "secondary", ActiveBadge(false).Color)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exactly10!", Truncate("exactly10!", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "ñañ...", Truncate("ñañaña", 3))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "-", FormatDate(""))
	assert.Equal(t, "09/03/2026", FormatDate("2026-03-09"))
	assert.Equal(t, "09/03/2026", FormatDate("2026-03-09T14:30:00Z"))
	assert.Equal(t, "09/03/2026", FormatDate("2026-03-09T14:30:00"))
	assert.Equal(t, "someday", FormatDate("someday"))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "1 note", CountLabel(1, "note", "notes"))
	assert.Equal(t, "0 notes", CountLabel(0, "note", "notes"))
	assert.Equal(t, "About us", PageLabel("about"))
	assert.Equal(t, "blog", PageLabel("blog"))
}

func pageNumbers(p Pagination) []int {
	out := make([]int, 0, len(p.Pages))
	for _, l := range p.Pages {
		out = append(out, l.Number)
	}
	return out
}

func TestPaginate(t *testing.T) {
	p := Paginate(0, 10, 0, 1)
	assert.False(t, p.Show)
	assert.Equal(t, "Showing 0-0 of 0", p.Range)

	p = Paginate(25, 10, 20, 0)
	assert.True(t, p.Show)
	assert.Equal(t, 3, p.Current)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, "Showing 21-25 of 25", p.Range)
	assert.True(t, p.HasPrev)
	assert.False(t, p.HasNext)
	assert.Equal(t, []int{1, 2, 3}, pageNumbers(p))

	p = Paginate(100, 10, 40, 5)
	assert.Equal(t, []int{3, 4, 5, 6, 7}, pageNumbers(p))
	assert.Equal(t, 4, p.Prev)
	assert.Equal(t, 6, p.Next)

	p = Paginate(100, 10, 90, 10)
	assert.Equal(t, []int{6, 7, 8, 9, 10}, pageNumbers(p))
	assert.True(t, p.Pages[4].Active)

	p = Paginate(100, 10, 0, 1)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, pageNumbers(p))
	assert.False(t, p.HasPrev)

	p = Paginate(5, 0, 0, 1)
	assert.Equal(t, "Showing 1-5 of 5", p.Range)

	p = Paginate(5, 10, 10, 2)
	assert.Equal(t, "Showing 0-0 of 5", p.Range)
	assert.Equal(t, 1, p.Current)

	p = Paginate(5, 10, 5, 0)
	assert.Equal(t, "Showing 0-0 of 5", p.Range)
}

func TestRowsEscapeText(t *testing.T) {
	r, err := NewRenderer("", nil)
	require.NoError(t, err)

	content := controller.State[models.Content, models.ContentFilter]{
		Phase: controller.PhaseTable,
		Items: []models.Content{{
			ID:    4,
			Type:  models.ContentNews,
			Page:  "home",
			Key:   "hero",
			Title: `<script>alert("x")</script>`,
			Body:  strings.Repeat("b", 80),
		}},
		Total: 1, Limit: 10, Page: 1,
	}
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, PageContentList, NewContentListView("admin", content, nil)))
	out := buf.String()
	assert.NotContains(t, out, "<script>alert")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, strings.Repeat("b", BodyCellRunes)+"...")
	assert.Contains(t, out, "/admin/content/4/edit")
	assert.Contains(t, out, "bg-info")

	notes := controller.State[models.Note, models.NoteFilter]{
		Phase: controller.PhaseTable,
		Items: []models.Note{{ID: 2, Type: "mystery", Title: "<b>x</b>", CreatedAt: "2026-01-05T08:00:00Z"}},
		Total: 1, Limit: 10, Page: 1,
	}
	buf.Reset()
	require.NoError(t, r.Render(&buf, PageNotesList, NewNoteListView("admin", notes)))
	out = buf.String()
	assert.NotContains(t, out, "<b>x</b>")
	assert.Contains(t, out, "05/01/2026")
	assert.Contains(t, out, "Unknown")
}

func TestRenderLoginPage(t *testing.T) {
	r, err := NewRenderer("", nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), r.Reloads())

	var buf bytes.Buffer
	err = r.Render(&buf, PageLogin, LoginView{
		Layout:   Layout{Title: "Sign in"},
		Username: `"><x`,
		Reason:   "Session expired",
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Session expired")
	assert.Contains(t, out, "Sign in")
	assert.NotContains(t, out, `"><x`)
	assert.NotContains(t, out, "Log out")

	assert.Error(t, r.Render(&buf, "missing", nil))
}

func TestRenderContentList(t *testing.T) {
	r, err := NewRenderer("", nil)
	require.NoError(t, err)

	state := controller.State[models.Content, models.ContentFilter]{
		Phase: controller.PhaseTable,
		Items: []models.Content{{ID: 1, Type: models.ContentPage, Page: "about", Key: "k", Title: "About page"}},
		Total: 1, Limit: 10, Page: 1,
		Alert: &controller.Alert{Kind: controller.AlertSuccess, Message: "Content created successfully"},
	}
	view := NewContentListView("admin", state, models.ContentPages)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, PageContentList, view))
	out := buf.String()
	assert.Contains(t, out, "About page")
	assert.Contains(t, out, "alert-success")
	assert.Contains(t, out, "/admin/content/alert/dismiss")
	assert.Contains(t, out, "admin")
}

func TestTerminalTables(t *testing.T) {
	table := ContentTable(models.Envelope[models.Content]{
		Total: 1, Limit: 10,
		Items: []models.Content{{ID: 7, Type: models.ContentNews, Page: "home", Key: "hero", Title: "Welcome"}},
	})
	out := table.String()
	assert.Contains(t, out, "Welcome")
	assert.Contains(t, out, "hero")
	assert.Contains(t, out, "Showing 1-1 of 1")

	empty := NoteTable(models.EmptyEnvelope[models.Note]())
	assert.Contains(t, empty.String(), "no results")
}

func TestWatchReloadsTemplates(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	sub, err := fs.Sub(templateFS, "templates")
	require.NoError(t, err)
	require.NoError(t, os.CopyFS(dir, sub))

	r, err := NewRenderer(dir, nil)
	require.NoError(t, err)
	require.NoError(t, r.Watch())

	login := filepath.Join(dir, "login.html")
	data, err := os.ReadFile(login)
	require.NoError(t, err)
	edited := strings.Replace(string(data), "Sign in</button>", "Enter the panel</button>", 1)
	require.NoError(t, os.WriteFile(login, []byte(edited), 0o644))

	assert.Eventually(t, func() bool { return r.Reloads() > 1 }, 3*time.Second, 20*time.Millisecond)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, PageLogin, LoginView{}))
	assert.Contains(t, buf.String(), "Enter the panel")

	require.NoError(t, r.Close())
}

func TestWatchKeepsTemplatesOnBrokenEdit(t *testing.T) {
	dir := t.TempDir()
	sub, err := fs.Sub(templateFS, "templates")
	require.NoError(t, err)
	require.NoError(t, os.CopyFS(dir, sub))

	r, err := NewRenderer(dir, nil)
	require.NoError(t, err)
	require.NoError(t, r.Watch())
	defer r.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "login.html"), []byte(`{{define "content"}}{{.Broken`), 0o644))
	time.Sleep(4 * reloadDelay)

	assert.Equal(t, uint64(1), r.Reloads())
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, PageLogin, LoginView{}))
	assert.Contains(t, buf.String(), "Sign in")
}
