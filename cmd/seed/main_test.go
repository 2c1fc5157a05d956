package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cmsadmin/pkg/errors"
	"cmsadmin/pkg/models"
)

func TestSamplesPassFormValidation(t *testing.T) {
	v := errors.NewValidator()

	content := sampleContent()
	assert.Len(t, content, len(models.ContentPages)*len(models.ContentTypes))
	keys := map[string]bool{}
	for _, c := range content {
		assert.True(t, v.ValidateContentForm(string(c.Type), c.Page, c.Key, c.Title).IsValid, c.Key)
		assert.False(t, keys[c.Key], "duplicate key %s", c.Key)
		keys[c.Key] = true
	}

	notes := sampleNotes(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC))
	assert.Len(t, notes, len(models.NoteTypes))
	for _, n := range notes {
		assert.True(t, v.ValidateNoteForm(string(n.Type), n.Title, n.Date).IsValid, n.Title)
	}
	assert.Equal(t, "2026-10-16", notes[1].Date)
}
