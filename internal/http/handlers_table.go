package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/table"
)

// handleTable renders the table partial from the URL state. It is the
// navigation entry point: data is reloaded and the selection starts empty.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	acc, ok := s.accountOrFail(w, r, r.URL.Query().Get("account"), true)
	if !ok {
		return
	}

	vs := s.sessions.getOrCreate(sessionID(w, r), acc.ID)
	vs.mu.Lock()
	defer vs.mu.Unlock()

	// a delete in flight keeps its optimistic view until it settles
	if !vs.view.Pending() {
		txs, err := s.transactions.ListTransactions(ctx, acc.ID)
		if err != nil {
			applog.FromContext(ctx).ErrorContext(ctx, "List transactions failed",
				applog.FieldAccountID, acc.ID, applog.FieldError, err)
			BadGatewayError("Could not load transactions").Write(w)
			return
		}
		vs.view.Load(txs)
	}

	st := table.DecodeState(r.URL.Query())
	vs.view.Restore(st)
	vs.resetSearch(vs.view.State().Filter.Search)
	vs.loaded = true

	s.renderTable(w, r, vs, NewHTMXResponse())
}

// tableAction applies fn to the caller's session and renders the result.
// Forms post the current table state so an expired session can be rebuilt.
func (s *Server) tableAction(w http.ResponseWriter, r *http.Request, fn func(vs *viewSession)) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	vs, ok := s.lockedSession(w, r)
	if !ok {
		return
	}
	defer vs.mu.Unlock()

	fn(vs)
	s.renderTable(w, r, vs, NewHTMXResponse())
}

// lockedSession resolves the account, finds the session and loads it if
// needed. On success the session is returned locked.
func (s *Server) lockedSession(w http.ResponseWriter, r *http.Request) (*viewSession, bool) {
	ctx := r.Context()
	acc, ok := s.accountOrFail(w, r, r.Form.Get("account"), true)
	if !ok {
		return nil, false
	}

	vs := s.sessions.getOrCreate(sessionID(w, r), acc.ID)
	vs.mu.Lock()
	if vs.loaded {
		return vs, true
	}

	txs, err := s.transactions.ListTransactions(ctx, acc.ID)
	if err != nil {
		vs.mu.Unlock()
		applog.FromContext(ctx).ErrorContext(ctx, "List transactions failed",
			applog.FieldAccountID, acc.ID, applog.FieldError, err)
		BadGatewayError("Could not load transactions").Write(w)
		return nil, false
	}
	vs.view.Load(txs)
	vs.view.Restore(table.DecodeState(r.Form))
	vs.resetSearch(vs.view.State().Filter.Search)
	vs.loaded = true
	return vs, true
}

func (s *Server) handleTableSort(w http.ResponseWriter, r *http.Request) {
	s.tableAction(w, r, func(vs *viewSession) {
		vs.view.ToggleSort(table.SortField(r.Form.Get("field")))
	})
}

func (s *Server) handleTableSelect(w http.ResponseWriter, r *http.Request) {
	s.tableAction(w, r, func(vs *viewSession) {
		vs.view.ToggleRow(r.Form.Get("id"))
	})
}

func (s *Server) handleTableSelectPage(w http.ResponseWriter, r *http.Request) {
	s.tableAction(w, r, func(vs *viewSession) {
		vs.view.ToggleSelectPage()
	})
}

func (s *Server) handleTableSelectAll(w http.ResponseWriter, r *http.Request) {
	s.tableAction(w, r, func(vs *viewSession) {
		vs.view.ToggleSelectAllMatching()
	})
}

func (s *Server) handleTableClearSelection(w http.ResponseWriter, r *http.Request) {
	s.tableAction(w, r, func(vs *viewSession) {
		vs.view.ClearSelection()
	})
}

func (s *Server) handleTableClearFilters(w http.ResponseWriter, r *http.Request) {
	s.tableAction(w, r, func(vs *viewSession) {
		vs.resetSearch("")
		vs.view.ClearFilters()
	})
}

// handleTableSearch feeds the term to the session debouncer and holds the
// request until the debounced term is applied. A request overtaken by a
// newer term answers 204 so htmx leaves the table alone.
func (s *Server) handleTableSearch(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	vs, ok := s.lockedSession(w, r)
	if !ok {
		return
	}

	term := sanitizeInput(r.Form.Get("q"))
	vs.pushed = term
	vs.search.Push(term)
	wait := vs.appliedCh
	vs.mu.Unlock()

	for {
		select {
		case <-wait:
		case <-r.Context().Done():
			return
		}

		vs.mu.Lock()
		switch {
		case vs.pushed != term:
			vs.mu.Unlock()
			NewHTMXResponse().Status(http.StatusNoContent).Write(w)
			return
		case vs.applied == term:
			s.renderTable(w, r, vs, NewHTMXResponse())
			vs.mu.Unlock()
			return
		}
		wait = vs.appliedCh
		vs.mu.Unlock()
	}
}

// handleTableDelete removes the posted ids, or the selection when none are
// posted. Rows disappear at once; the session lock is released while the
// store works and a failure brings the rows back with an error toast.
func (s *Server) handleTableDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	vs, ok := s.lockedSession(w, r)
	if !ok {
		return
	}

	ids := r.PostForm["id"]
	if len(ids) == 0 {
		ids = vs.view.SelectedIDs()
	} else {
		ids = visibleIDs(vs.view, ids)
	}

	ticket, err := vs.view.StartDelete(ids)
	if errors.Is(err, table.ErrDeleteInFlight) {
		vs.mu.Unlock()
		NewHTMXResponse().
			Status(http.StatusConflict).
			TriggerNotification(NotificationWarning, "A delete is already in progress", 3000).
			Write(w)
		return
	}
	if ticket == nil {
		s.renderTable(w, r, vs, NewHTMXResponse())
		vs.mu.Unlock()
		return
	}
	vs.mu.Unlock()

	deleteErr := s.transactions.DeleteTransactions(ctx, ticket.IDs)

	vs.mu.Lock()
	defer vs.mu.Unlock()
	if err := vs.view.FinishDelete(ticket, deleteErr); err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Delete ticket lost", applog.FieldError, err)
	}
	s.events.LogTransactionsDeleted(ctx, vs.id, len(ticket.IDs), deleteErr)

	b := NewHTMXResponse()
	if deleteErr == nil {
		b.TriggerTransactionsChanged(vs.accountID)
	}
	s.renderTable(w, r, vs, b)
}

// visibleIDs keeps the posted ids that are rows of the session's view,
// each once.
func visibleIDs(v *table.View, posted []string) []string {
	known := make(map[string]struct{})
	for _, tx := range v.Filtered() {
		known[tx.ID] = struct{}{}
	}
	out := make([]string, 0, len(posted))
	for _, id := range posted {
		if _, ok := known[id]; ok {
			out = append(out, id)
			delete(known, id)
		}
	}
	return out
}

// renderTable writes the table partial with any queued notices. htmx
// requests also get the account page URL for the new state pushed into
// history. Callers hold vs.mu.
func (s *Server) renderTable(w http.ResponseWriter, r *http.Request, vs *viewSession, b *HTMXResponseBuilder) {
	tv := newTableView(vs.accountID, vs.view)
	b.TriggerNotices(vs.drainNotices())
	if r.Header.Get("HX-Request") == "true" {
		b.Header("HX-Push-Url", "/accounts/"+vs.accountID+"?"+tv.Query)
	}
	s.render(w, r, "table.html", tv, b)
}

// handleTransactionsJSON is the stateless counterpart of the table partial:
// a fresh view is built from the URL state for every request.
func (s *Server) handleTransactionsJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	acc, err := s.resolveAccount(ctx, q.Get("account"))
	if err != nil {
		s.writeAccountJSONError(w, r, err)
		return
	}

	txs, err := s.transactions.ListTransactions(ctx, acc.ID)
	if err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "List transactions failed",
			applog.FieldAccountID, acc.ID, applog.FieldError, err)
		JSONError(http.StatusBadGateway, "could not load transactions").Write(w)
		return
	}

	view := table.NewView(txs, table.WithPageSize(s.opts.PageSize))
	view.Restore(table.DecodeState(q))
	page := view.Page()

	rows := page.Rows
	if rows == nil {
		rows = []core.Transaction{}
	}
	NewHTMXResponse().BodyJSON(transactionsResponse{
		Account:       acc.ID,
		Rows:          rows,
		Page:          page.Number,
		TotalPages:    page.TotalPages,
		TotalMatching: page.TotalMatching,
		PageSize:      view.PageSize(),
		Query:         tableQuery(acc.ID, view.State()),
	}).Write(w)
}
