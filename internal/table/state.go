package table

import (
	"net/url"
	"strconv"

	"fintrack/internal/core"
)

// State is the shareable part of a table view, round-tripped through the
// query string.
type State struct {
	Page   int
	Sort   Sort
	Filter Filter
}

func DefaultState() State {
	return State{Page: 1, Sort: DefaultSort}
}

// Encode writes the state using the keys page, sortField, sortDir, type,
// recurring and q. page is omitted on the first page and empty filters are
// omitted.
func (s State) Encode() url.Values {
	v := url.Values{}
	if s.Page > 1 {
		v.Set("page", strconv.Itoa(s.Page))
	}
	v.Set("sortField", string(s.Sort.Field))
	v.Set("sortDir", string(s.Sort.Direction))
	if s.Filter.Type != "" {
		v.Set("type", string(s.Filter.Type))
	}
	if s.Filter.Recurring != "" {
		v.Set("recurring", string(s.Filter.Recurring))
	}
	if s.Filter.Search != "" {
		v.Set("q", s.Filter.Search)
	}
	return v
}

// DecodeState reads a state back. Missing or invalid values fall back to the
// defaults without error.
func DecodeState(v url.Values) State {
	s := DefaultState()

	if n, err := strconv.Atoi(v.Get("page")); err == nil && n >= 1 {
		s.Page = n
	}
	if f := SortField(v.Get("sortField")); f.valid() {
		s.Sort.Field = f
		s.Sort.Direction = Desc
		if d := SortDirection(v.Get("sortDir")); d.valid() {
			s.Sort.Direction = d
		}
	}
	if t, err := core.ParseTransactionType(v.Get("type")); err == nil {
		s.Filter.Type = t
	}
	if r := RecurringFilter(v.Get("recurring")); r.valid() {
		s.Filter.Recurring = r
	}
	s.Filter.Search = v.Get("q")
	return s
}
