// Package table derives the paginated, filtered and sorted transaction table
// from an in-memory collection and tracks row selection over it.
//
// A View is not safe for concurrent use. Callers that share one between
// requests must guard it themselves.
//
// Selection follows a reset-on-navigation policy: changing a filter, the sort
// or the page clears the selection, and filter changes also return to page 1.
package table

import (
	"slices"

	"fintrack/internal/core"
)

// DefaultPageSize is the number of rows per page.
const DefaultPageSize = 10

// Page is one rendered slice of the filtered and sorted rows.
type Page struct {
	Rows          []core.Transaction
	Number        int
	TotalPages    int
	TotalMatching int
	Empty         bool
}

func (p Page) HasPrev() bool { return p.Number > 1 }
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

type View struct {
	pageSize int
	notifier Notifier

	all     []core.Transaction
	removed map[string]struct{}

	state     State
	selected  map[string]struct{}
	selectAll bool
	pending   *Ticket
	tickets   uint64
}

type Option func(*View)

func WithPageSize(n int) Option {
	return func(v *View) {
		if n > 0 {
			v.pageSize = n
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(v *View) {
		if n != nil {
			v.notifier = n
		}
	}
}

func NewView(txs []core.Transaction, opts ...Option) *View {
	v := &View{
		pageSize: DefaultPageSize,
		notifier: NopNotifier{},
		state:    DefaultState(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.Load(txs)
	return v
}

// Load replaces the underlying collection. Optimistic removals are dropped,
// selection is cleared and the page is clamped to the new total.
func (v *View) Load(txs []core.Transaction) {
	v.all = slices.Clone(txs)
	v.removed = make(map[string]struct{})
	v.clearSelection()
	v.clampPage()
}

func (v *View) PageSize() int { return v.pageSize }

func (v *View) State() State { return v.state }

// Restore applies a decoded URL state. A page beyond the current total falls
// back to page 1. Selection is cleared.
func (v *View) Restore(s State) {
	if !s.Sort.Field.valid() || !s.Sort.Direction.valid() {
		s.Sort = DefaultSort
	}
	if !s.Filter.Recurring.valid() {
		s.Filter.Recurring = RecurringAll
	}
	if s.Filter.Type != "" && !s.Filter.Type.Valid() {
		s.Filter.Type = ""
	}
	v.state = s
	if v.state.Page < 1 || v.state.Page > v.totalPages(len(v.Filtered())) {
		v.state.Page = 1
	}
	v.clearSelection()
}

// Filtered returns every visible row matching the filters, in sort order.
func (v *View) Filtered() []core.Transaction {
	out := make([]core.Transaction, 0, len(v.all))
	for _, tx := range v.all {
		if _, gone := v.removed[tx.ID]; gone {
			continue
		}
		if v.state.Filter.Match(tx) {
			out = append(out, tx)
		}
	}
	v.state.Sort.Apply(out)
	return out
}

// Page returns the current page.
func (v *View) Page() Page {
	rows := v.Filtered()
	total := v.totalPages(len(rows))
	number := min(max(v.state.Page, 1), total)

	start := min((number-1)*v.pageSize, len(rows))
	end := min(start+v.pageSize, len(rows))

	return Page{
		Rows:          rows[start:end],
		Number:        number,
		TotalPages:    total,
		TotalMatching: len(rows),
		Empty:         len(rows) == 0,
	}
}

func (v *View) totalPages(n int) int {
	return max(1, (n+v.pageSize-1)/v.pageSize)
}

// SetPage moves to page n. Out-of-range pages are ignored and false is
// returned.
func (v *View) SetPage(n int) bool {
	if n < 1 || n > v.totalPages(len(v.Filtered())) {
		return false
	}
	if n != v.state.Page {
		v.state.Page = n
		v.clearSelection()
	}
	return true
}

func (v *View) NextPage() bool { return v.SetPage(v.state.Page + 1) }
func (v *View) PrevPage() bool { return v.SetPage(v.state.Page - 1) }

// SetSearch applies an already debounced search term.
func (v *View) SetSearch(term string) {
	f := v.state.Filter
	f.Search = term
	v.setFilter(f)
}

// SetType filters by type. The empty type shows everything.
func (v *View) SetType(t core.TransactionType) {
	f := v.state.Filter
	f.Type = t
	v.setFilter(f)
}

func (v *View) SetRecurring(r RecurringFilter) {
	f := v.state.Filter
	f.Recurring = r
	v.setFilter(f)
}

// ClearFilters resets every predicate, returns to page 1 and clears the
// selection.
func (v *View) ClearFilters() {
	v.state.Filter = Filter{}
	v.state.Page = 1
	v.clearSelection()
}

func (v *View) setFilter(f Filter) {
	if f == v.state.Filter {
		return
	}
	v.state.Filter = f
	v.state.Page = 1
	v.clearSelection()
}

// ToggleSort handles a click on a sortable column header.
func (v *View) ToggleSort(field SortField) {
	if !field.valid() {
		return
	}
	v.state.Sort = v.state.Sort.Toggle(field)
	v.clearSelection()
}

// ToggleRow flips id's membership in the selection. Ids that are not part of
// the filtered rows are ignored.
func (v *View) ToggleRow(id string) bool {
	if !slices.ContainsFunc(v.Filtered(), func(tx core.Transaction) bool { return tx.ID == id }) {
		return false
	}
	if _, ok := v.selected[id]; ok {
		delete(v.selected, id)
	} else {
		v.selected[id] = struct{}{}
	}
	v.selectAll = false
	return true
}

// ToggleSelectPage selects exactly the current page, or clears the selection
// if it already equals the current page.
func (v *View) ToggleSelectPage() {
	ids := idsOf(v.Page().Rows)
	if v.selectionEquals(ids) {
		v.clearSelection()
		return
	}
	v.selected = toSet(ids)
	v.selectAll = false
}

// ToggleSelectAllMatching selects every filtered row across pages, or clears
// the selection when that mode is already on.
func (v *View) ToggleSelectAllMatching() {
	if v.selectAll {
		v.clearSelection()
		return
	}
	v.selected = toSet(idsOf(v.Filtered()))
	v.selectAll = true
}

func (v *View) ClearSelection() {
	v.clearSelection()
}

func (v *View) IsSelected(id string) bool {
	_, ok := v.selected[id]
	return ok
}

// SelectedIDs returns the selection in display order.
func (v *View) SelectedIDs() []string {
	if len(v.selected) == 0 {
		return nil
	}
	out := make([]string, 0, len(v.selected))
	for _, tx := range v.Filtered() {
		if _, ok := v.selected[tx.ID]; ok {
			out = append(out, tx.ID)
		}
	}
	return out
}

func (v *View) SelectedCount() int { return len(v.selected) }

func (v *View) SelectAllMatching() bool { return v.selectAll }

// PageSelected reports whether every row of a non-empty current page is
// selected, which drives the header checkbox.
func (v *View) PageSelected() bool {
	rows := v.Page().Rows
	if len(rows) == 0 {
		return false
	}
	for _, tx := range rows {
		if _, ok := v.selected[tx.ID]; !ok {
			return false
		}
	}
	return true
}

func (v *View) selectionEquals(ids []string) bool {
	if len(ids) != len(v.selected) {
		return false
	}
	for _, id := range ids {
		if _, ok := v.selected[id]; !ok {
			return false
		}
	}
	return true
}

func (v *View) clearSelection() {
	v.selected = make(map[string]struct{})
	v.selectAll = false
}

func (v *View) clampPage() {
	if total := v.totalPages(len(v.Filtered())); v.state.Page > total {
		v.state.Page = total
	}
	if v.state.Page < 1 {
		v.state.Page = 1
	}
}

func idsOf(txs []core.Transaction) []string {
	ids := make([]string, len(txs))
	for i, tx := range txs {
		ids[i] = tx.ID
	}
	return ids
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
