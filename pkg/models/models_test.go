package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentFilterValues(t *testing.T) {
	assert.Empty(t, ContentFilter{}.Values())

	active := true
	v := ContentFilter{Type: "news", Page: "home", IsActive: &active}.WithPage(2, 10).Values()
	assert.Equal(t, "news", v.Get("type"))
	assert.Equal(t, "home", v.Get("page"))
	assert.Equal(t, "true", v.Get("is_active"))
	assert.Equal(t, "10", v.Get("offset"))
	assert.Equal(t, "10", v.Get("limit"))
}

func TestNoteFilterValues(t *testing.T) {
	v := NoteFilter{Search: "   "}.WithPage(0, 10).Values()
	assert.Equal(t, "1", v.Get("page"))
	assert.Equal(t, "0", v.Get("offset"))
	assert.False(t, v.Has("search"))
	assert.False(t, v.Has("type"))
}

func TestWithOffset(t *testing.T) {
	v := NoteFilter{}.WithOffset(25, 10).Values()
	assert.Equal(t, "25", v.Get("offset"))
	assert.Equal(t, "3", v.Get("page"))

	c := ContentFilter{}.WithOffset(-4, 5)
	assert.Equal(t, 0, *c.Offset)
	assert.Equal(t, 5, c.Limit)
}

func TestParseActive(t *testing.T) {
	assert.Nil(t, ParseActive(""))
	assert.Nil(t, ParseActive("all"))
	require.NotNil(t, ParseActive("false"))
	assert.False(t, *ParseActive("false"))
}

func TestDecodeAppliesDefaults(t *testing.T) {
	var c Content
	require.NoError(t, json.Unmarshal([]byte(`{"id":3,"title":"x"}`), &c))
	assert.True(t, c.IsActive)

	require.NoError(t, json.Unmarshal([]byte(`{"id":3,"is_active":false}`), &c))
	assert.False(t, c.IsActive)

	var n Note
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"type":"exam"}`), &n))
	assert.Equal(t, DefaultPriority, n.Priority)
	assert.True(t, n.IsActive)

	assert.Equal(t, "2026-10-15", NewNote(time.Date(2026, 10, 15, 23, 0, 0, 0, time.UTC)).Date)
}

func TestSessionTokenNotSerialized(t *testing.T) {
	data, err := json.Marshal(Session{ID: "s", Username: "admin", Token: "secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
}
