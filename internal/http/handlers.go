package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/registry"
	"fintrack/internal/services"
)

var errAccountNotFound = errors.New("account not found")

func isAccountNotFound(err error) bool {
	return errors.Is(err, errAccountNotFound)
}

// storeTimeout bounds calls into the backend made by page handlers.
const storeTimeout = 7 * time.Second

func (s *Server) loadAccounts(ctx context.Context) (*registry.Accounts, error) {
	if s.accounts == nil {
		return registry.NewAccounts(nil), nil
	}
	return registry.LoadAccounts(ctx, s.accounts)
}

// resolveAccount looks id up, falling back to the default account when id
// is empty.
func (s *Server) resolveAccount(ctx context.Context, id string) (core.Account, error) {
	accs, err := s.loadAccounts(ctx)
	if err != nil {
		return core.Account{}, err
	}

	var (
		acc core.Account
		ok  bool
	)
	if id == "" {
		acc, ok = accs.Default()
	} else {
		acc, ok = accs.Lookup(id)
	}
	if !ok {
		return core.Account{}, fmt.Errorf("%w: %q", errAccountNotFound, id)
	}
	return acc, nil
}

// accountOrFail resolves an account for an HTML handler, writing 404 or 502
// itself when that fails.
func (s *Server) accountOrFail(w http.ResponseWriter, r *http.Request, id string, partial bool) (core.Account, bool) {
	acc, err := s.resolveAccount(r.Context(), sanitizeInput(id))
	if err == nil {
		return acc, true
	}
	if errors.Is(err, errAccountNotFound) {
		NotFoundError("Account not found").Write(w)
		return core.Account{}, false
	}

	applog.FromContext(r.Context()).ErrorContext(r.Context(), "List accounts failed", applog.FieldError, err)
	if partial {
		BadGatewayError("Could not load accounts").Write(w)
	} else {
		ErrorResponse(http.StatusBadGateway, "Could not load accounts").Write(w)
	}
	return core.Account{}, false
}

func (s *Server) writeAccountJSONError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errAccountNotFound) {
		JSONError(http.StatusNotFound, "account not found").Write(w)
		return
	}
	applog.FromContext(r.Context()).ErrorContext(r.Context(), "List accounts failed", applog.FieldError, err)
	JSONError(http.StatusBadGateway, "could not load accounts").Write(w)
}

// handleDashboard renders the landing page: overview of the selected or
// default account, budget progress and the account list.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	if s.dashboard == nil {
		InternalServerError("dashboard not configured").Write(w)
		return
	}

	selected := sanitizeInput(r.URL.Query().Get("account"))
	d, err := s.dashboard.Load(ctx, selected)
	if err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Dashboard load failed", applog.FieldError, err)
		ErrorResponse(http.StatusBadGateway, "Could not load the dashboard").Write(w)
		return
	}

	s.render(w, r, "dashboard.html", dashboardView{
		Accounts: d.Accounts,
		Overview: d.Overview,
		Budget:   d.Budget,
		Form:     s.newFormView(d.Accounts, d.Overview.Account.ID),
	}, nil)
}

// handleAccount renders the account page shell. The chart and the table
// load as partials, and the page's query string seeds the table state.
func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	accs, err := s.loadAccounts(ctx)
	if err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "List accounts failed", applog.FieldError, err)
		ErrorResponse(http.StatusBadGateway, "Could not load accounts").Write(w)
		return
	}
	acc, ok := accs.Lookup(r.PathValue("id"))
	if !ok {
		NotFoundError("Account not found").Write(w)
		return
	}

	s.render(w, r, "account.html", accountView{
		Account:    acc,
		Accounts:   accs.All(),
		TableQuery: accountTableQuery(acc.ID, r.URL.Query()),
		ChartQuery: chartQueryFor(acc.ID),
		Form:       s.newFormView(accs.All(), acc.ID),
	}, nil)
}

// handleCreateTransaction accepts a form or a JSON body. Validation problems
// answer 422, store failures 500.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.createFailed(w, p, http.StatusBadRequest, "Invalid request format")
		return
	}

	tx, err := ParseTransaction(p, s.clock.Now(), s.opts.Location)
	if err != nil {
		s.createFailed(w, p, http.StatusUnprocessableEntity, validationMessage(err))
		return
	}

	acc, err := s.resolveAccount(ctx, tx.AccountID)
	switch {
	case errors.Is(err, errAccountNotFound):
		s.createFailed(w, p, http.StatusUnprocessableEntity, "Unknown account")
		return
	case err != nil:
		applog.FromContext(ctx).ErrorContext(ctx, "List accounts failed", applog.FieldError, err)
		s.createFailed(w, p, http.StatusBadGateway, "Could not load accounts")
		return
	}
	tx.AccountID = acc.ID

	if !s.categories.Valid(tx.Category, tx.Type) {
		s.createFailed(w, p, http.StatusUnprocessableEntity, "Unknown category for this transaction type")
		return
	}

	id, err := s.transactions.CreateTransaction(ctx, tx)
	if err != nil {
		if services.IsValidationError(err) {
			s.createFailed(w, p, http.StatusUnprocessableEntity, validationMessage(err))
			return
		}
		s.events.LogError(ctx, "Transaction create failed", err, applog.ComponentHTTP, applog.OpCreate,
			applog.NewFields().WithTransaction("", string(tx.Type), tx.Category, tx.Amount.StringFixed(2)))
		s.createFailed(w, p, http.StatusInternalServerError, "Could not save the transaction")
		return
	}
	s.events.LogTransactionCreated(ctx, id, string(tx.Type), tx.Category, tx.Amount.StringFixed(2))

	if p.IsJSON() {
		NewHTMXResponse().Status(http.StatusCreated).BodyJSON(map[string]string{"id": id}).Write(w)
		return
	}

	msg := fmt.Sprintf("Saved %s %s (%s)", s.categories.LabelOf(tx.Category), core.FormatMoney(tx.Amount), tx.Date.Format(dateInputLayout))
	NewHTMXResponse().
		BodyHTML(`<div class="success">`+template.HTMLEscapeString(msg)+`</div>`).
		TriggerTransactionCreated(id, acc.ID).
		TriggerTransactionsChanged(acc.ID).
		TriggerFormReset().
		TriggerSuccessNotification("Transaction saved").
		Write(w)
}

func (s *Server) createFailed(w http.ResponseWriter, p *RequestBodyParser, status int, msg string) {
	if p.IsJSON() {
		JSONError(status, msg).Write(w)
		return
	}
	b := ErrorResponse(status, msg)
	if status >= http.StatusInternalServerError {
		b.TriggerErrorNotification(msg)
	}
	b.Write(w)
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "Amount must be a positive number"
	case errors.Is(err, core.ErrInvalidType):
		return "Type must be INCOME or EXPENSE"
	case errors.Is(err, core.ErrInvalidDate):
		return "Date must be in YYYY-MM-DD format"
	case errors.Is(err, core.ErrInvalidInterval):
		return "Recurring transactions need a valid interval"
	case errors.Is(err, core.ErrEmptyCategory):
		return "Category is required"
	case errors.Is(err, core.ErrEmptyAccount):
		return "Account is required"
	case errors.Is(err, core.ErrDescriptionTooLong):
		return fmt.Sprintf("Description must be at most %d characters", core.MaxDescriptionLen)
	}
	return "Invalid transaction: " + err.Error()
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewHTMXResponse().BodyJSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks templates and the backend.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	switch {
	case s.health == nil:
		checks["store"] = "not_configured"
	default:
		if err := s.health.Ping(ctx); err != nil {
			checks["store"] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	}

	checks["sessions"] = s.sessions.size()
	checks["requests"] = s.tracer.TotalRequests()
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.limiter.ActiveClients(),
		"rejected":       s.limiter.Hits(),
	}

	NewHTMXResponse().Status(code).BodyJSON(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}
