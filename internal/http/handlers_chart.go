package http

import (
	"context"
	"net/http"

	"fintrack/internal/chart"
	applog "fintrack/internal/log"
)

// chartFailure carries the status and message of a failed chart load.
type chartFailure struct {
	status int
	msg    string
}

// loadChart parses the query, checks the account and aggregates its
// transactions. An empty account charts every account.
func (s *Server) loadChart(ctx context.Context, r *http.Request) (ChartParams, chart.Result, *chartFailure) {
	p, err := ParseChartParams(r.URL.Query())
	if err != nil {
		return p, chart.Result{}, &chartFailure{http.StatusBadRequest, err.Error()}
	}

	if p.AccountID != "" {
		acc, err := s.resolveAccount(ctx, p.AccountID)
		if err != nil {
			if isAccountNotFound(err) {
				return p, chart.Result{}, &chartFailure{http.StatusNotFound, "account not found"}
			}
			applog.FromContext(ctx).ErrorContext(ctx, "List accounts failed", applog.FieldError, err)
			return p, chart.Result{}, &chartFailure{http.StatusBadGateway, "could not load accounts"}
		}
		p.AccountID = acc.ID
	}

	txs, err := s.transactions.ListTransactions(ctx, p.AccountID)
	if err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "List transactions failed",
			applog.FieldAccountID, p.AccountID, applog.FieldError, err)
		return p, chart.Result{}, &chartFailure{http.StatusBadGateway, "could not load transactions"}
	}

	rng := p.Range.Resolve(s.clock, s.opts.Location)
	res := s.aggregator.Aggregate(txs, rng, p.Granularity)

	fields := applog.NewFields().WithChart(string(p.Granularity), string(p.Range))
	fields[applog.FieldAccountID] = p.AccountID
	fields["buckets"] = len(res.Buckets)
	applog.FromContext(ctx).DebugContext(ctx, "Chart aggregated", fields.ToSlice()...)
	return p, res, nil
}

// handleChartPartial renders the chart card for htmx.
func (s *Server) handleChartPartial(w http.ResponseWriter, r *http.Request) {
	p, res, fail := s.loadChart(r.Context(), r)
	if fail != nil {
		if fail.status == http.StatusBadGateway {
			BadGatewayError("Could not load the chart").Write(w)
			return
		}
		ErrorResponse(fail.status, fail.msg).Write(w)
		return
	}
	s.render(w, r, "chart.html", newChartView(p, res), nil)
}

// handleChartJSON serves the same aggregation as JSON.
func (s *Server) handleChartJSON(w http.ResponseWriter, r *http.Request) {
	p, res, fail := s.loadChart(r.Context(), r)
	if fail != nil {
		JSONError(fail.status, fail.msg).Write(w)
		return
	}
	NewHTMXResponse().BodyJSON(chartResponse{
		Result:  res,
		Preset:  p.Range,
		Start:   res.Range.Start,
		End:     res.Range.End,
		Net:     res.Totals.Net(),
		IsEmpty: res.Empty(),
	}).Write(w)
}
