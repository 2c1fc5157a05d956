package render

import (
	"fmt"

	"cmsadmin/pkg/models"
)

// PageWindow is how many page numbers the pager shows at once
const PageWindow = 5

// PageLink is one numbered pager entry
type PageLink struct {
	Number int
	Active bool
}

// Pagination describes the pager under a listing
type Pagination struct {
	Show       bool
	Range      string
	Current    int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	Prev       int
	Next       int
	Pages      []PageLink
}

// Paginate builds the pager for an envelope position. current is the
// 1-based page being shown; zero derives it from offset.
func Paginate(total, limit, offset, current int) Pagination {
	if limit <= 0 {
		limit = models.DefaultLimit
	}
	if total <= 0 {
		return Pagination{Range: "Showing 0-0 of 0", Current: 1}
	}
	if current < 1 {
		current = offset/limit + 1
	}

	totalPages := (total + limit - 1) / limit
	if current > totalPages {
		current = totalPages
	}

	// an offset past the end shows no rows
	start, end := 0, 0
	if offset < total {
		start = offset + 1
		end = min(offset+limit, total)
	}

	first := current - PageWindow/2
	if first < 1 {
		first = 1
	}
	last := first + PageWindow - 1
	if last > totalPages {
		last = totalPages
	}
	if last-first < PageWindow-1 {
		first = last - PageWindow + 1
		if first < 1 {
			first = 1
		}
	}

	p := Pagination{
		Show:       true,
		Range:      fmt.Sprintf("Showing %d-%d of %d", start, end, total),
		Current:    current,
		TotalPages: totalPages,
		HasPrev:    current > 1,
		HasNext:    current < totalPages,
		Pages:      make([]PageLink, 0, last-first+1),
	}
	if p.HasPrev {
		p.Prev = current - 1
	}
	if p.HasNext {
		p.Next = current + 1
	}
	for i := first; i <= last; i++ {
		p.Pages = append(p.Pages, PageLink{Number: i, Active: i == current})
	}
	return p
}
