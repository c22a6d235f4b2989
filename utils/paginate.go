package utils

import "fmt"

// Pagination describes one page of an ordered collection plus the links to
// its neighbours. PrevURL is empty exactly on the first page and NextURL is
// empty exactly on the last, so templates can render each link
// conditionally.
type Pagination struct {
	Page     int
	PageSize int
	LastPage int
	Total    int64
	Offset   int
	PrevURL  string
	NextURL  string
}

// Paginate computes the page window for a collection of total items.
// requested values outside [1, lastPage] are clamped into range; an empty
// collection still has one (empty) page. Links are basePath?page-no=N.
func Paginate(total int64, pageSize, requested int, basePath string) Pagination {
	if pageSize < 1 {
		pageSize = 1
	}

	lastPage := int((total + int64(pageSize) - 1) / int64(pageSize))
	if lastPage < 1 {
		lastPage = 1
	}

	page := requested
	if page < 1 {
		page = 1
	}
	if page > lastPage {
		page = lastPage
	}

	p := Pagination{
		Page:     page,
		PageSize: pageSize,
		LastPage: lastPage,
		Total:    total,
		Offset:   (page - 1) * pageSize,
	}
	if page > 1 {
		p.PrevURL = fmt.Sprintf("%s?page-no=%d", basePath, page-1)
	}
	if page < lastPage {
		p.NextURL = fmt.Sprintf("%s?page-no=%d", basePath, page+1)
	}
	return p
}
