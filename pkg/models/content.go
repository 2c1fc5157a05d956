package models

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// ContentType is the kind tag of a content record
type ContentType string

const (
	ContentNews    ContentType = "news"
	ContentPage    ContentType = "page"
	ContentSection ContentType = "section"
	ContentImage   ContentType = "image"
)

// ContentTypes lists the built-in content kinds, used when the backend
// catalogue is unavailable
var ContentTypes = []ContentType{ContentNews, ContentPage, ContentSection, ContentImage}

// Content is a CMS record grouped by site page
type Content struct {
	ID       int         `json:"id,omitempty"`
	Type     ContentType `json:"type"`
	Page     string      `json:"page"`
	Key      string      `json:"key"`
	Title    string      `json:"title"`
	Body     string      `json:"body,omitempty"`
	ImageURL string      `json:"image_url,omitempty"`
	IsActive bool        `json:"is_active"`
}

// NewContent returns the defaults shown in an empty content form
func NewContent() Content {
	return Content{IsActive: true}
}

// Option is a value/label pair for form selects
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ContentPages is the catalogue of site sections content can belong to
var ContentPages = []Option{
	{Value: "home", Label: "Home"},
	{Value: "about", Label: "About us"},
	{Value: "contact", Label: "Contact"},
}

// ContentFilter holds the recognized query parameters of GET /content
type ContentFilter struct {
	Type     string
	Page     string
	IsActive *bool
	Limit    int
	Offset   *int
}

// Values encodes the filter, omitting every unset or empty key
func (f ContentFilter) Values() url.Values {
	v := url.Values{}
	if f.Page != "" {
		v.Set("page", f.Page)
	}
	if f.Type != "" {
		v.Set("type", f.Type)
	}
	if f.IsActive != nil {
		v.Set("is_active", strconv.FormatBool(*f.IsActive))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset != nil {
		v.Set("offset", strconv.Itoa(*f.Offset))
	}
	return v
}

// WithPage returns a copy positioned on the given 1-based page
func (f ContentFilter) WithPage(page, limit int) ContentFilter {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit
	f.Limit = limit
	f.Offset = &offset
	return f
}

// WithOffset returns a copy starting at an arbitrary record offset
func (f ContentFilter) WithOffset(offset, limit int) ContentFilter {
	if offset < 0 {
		offset = 0
	}
	f.Limit = limit
	f.Offset = &offset
	return f
}

// ParseActive reads the tri-state "active" select value ("", "true", "false")
func ParseActive(s string) *bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &b
}

// UnmarshalJSON applies the record defaults to fields the backend omits
func (c *Content) UnmarshalJSON(data []byte) error {
	type plain Content
	p := plain(NewContent())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Content(p)
	return nil
}
