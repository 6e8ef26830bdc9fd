package console

import (
	"strings"

	"github.com/simp-lee/admision/internal/domain"
)

// StatusFilter restricts the list to one status, or StatusAll for none.
type StatusFilter string

// StatusAll disables status filtering.
const StatusAll StatusFilter = "ALL"

// ParseStatusFilter accepts ALL or any domain.Status, case-insensitively.
func ParseStatusFilter(s string) (StatusFilter, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == string(StatusAll) {
		return StatusAll, true
	}
	if st := domain.Status(s); st.Valid() {
		return StatusFilter(st), true
	}
	return "", false
}

// Status returns the status to send, or "" for StatusAll.
func (f StatusFilter) Status() domain.Status {
	if f == StatusAll {
		return ""
	}
	return domain.Status(f)
}

// Filter is the list criteria. Search holds the debounced text, not what the
// user is still typing.
type Filter struct {
	Search  string
	Status  StatusFilter
	Page    int
	PerPage int
}

func defaultFilter(perPage int) Filter {
	return Filter{
		Status:  StatusAll,
		Page:    1,
		PerPage: domain.NormalizePerPage(perPage),
	}
}

// filterKey is the part of a Filter whose change sends the list back to page 1.
type filterKey struct {
	search  string
	status  StatusFilter
	perPage int
}

func (f Filter) key() filterKey {
	return filterKey{search: f.Search, status: f.Status, perPage: f.PerPage}
}

func (f Filter) query() ListQuery {
	return ListQuery{
		Page:    f.Page,
		PerPage: f.PerPage,
		Search:  strings.TrimSpace(f.Search),
		Status:  f.Status.Status(),
	}
}
