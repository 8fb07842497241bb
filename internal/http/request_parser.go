// This file holds the request parsing helpers shared by the handlers: chart
// query parameters, the create transaction payload and the JSON or form body
// reader behind it.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/chart"
	"fintrack/internal/core"
)

const (
	// maxBodyBytes caps request bodies read by RequestBodyParser.
	maxBodyBytes = 1 << 20

	dateInputLayout = "2006-01-02"
)

// Chart defaults when the query leaves a parameter out.
const (
	DefaultChartRange       = chart.DefaultPreset
	DefaultChartGranularity = chart.Daily
)

// ChartParams are the query parameters of the chart endpoints.
type ChartParams struct {
	AccountID   string
	Range       chart.Preset
	Granularity chart.Granularity
	ShowIncome  bool
	ShowExpense bool
}

// ParseChartParams reads account, range, granularity, income and expense.
// Missing values take the defaults; present but invalid ones are errors.
func ParseChartParams(q url.Values) (ChartParams, error) {
	p := ChartParams{
		AccountID:   sanitizeInput(q.Get("account")),
		Range:       DefaultChartRange,
		Granularity: DefaultChartGranularity,
		ShowIncome:  parseToggle(q.Get("income"), true),
		ShowExpense: parseToggle(q.Get("expense"), true),
	}

	if v := strings.TrimSpace(q.Get("range")); v != "" {
		preset, err := chart.ParsePreset(v)
		if err != nil {
			return ChartParams{}, err
		}
		p.Range = preset
	}
	if v := strings.TrimSpace(q.Get("granularity")); v != "" {
		g, err := chart.ParseGranularity(v)
		if err != nil {
			return ChartParams{}, err
		}
		p.Granularity = g
	}
	return p, nil
}

// Query encodes the params back, for links that keep the current chart.
func (p ChartParams) Query() url.Values {
	v := url.Values{}
	if p.AccountID != "" {
		v.Set("account", p.AccountID)
	}
	v.Set("range", string(p.Range))
	v.Set("granularity", string(p.Granularity))
	v.Set("income", strconv.FormatBool(p.ShowIncome))
	v.Set("expense", strconv.FormatBool(p.ShowExpense))
	return v
}

// parseToggle accepts the usual checkbox and boolean spellings.
func parseToggle(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	case "0", "false", "off", "no":
		return false
	}
	return def
}

// ParseTransaction builds a transaction from a create request. The date
// defaults to today in loc. Field level problems are returned as the core
// validation errors so callers can map them to 422.
func ParseTransaction(p *RequestBodyParser, now time.Time, loc *time.Location) (core.Transaction, error) {
	if loc == nil {
		loc = time.UTC
	}

	tx := core.Transaction{
		Category:    strings.ToLower(p.Get("category")),
		Description: p.Get("description"),
		AccountID:   p.Get("account"),
		IsRecurring: parseToggle(p.Get("recurring"), false),
	}

	t, err := core.ParseTransactionType(p.Get("type"))
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Type = t

	amount, err := core.ParseAmount(p.Get("amount"))
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Amount = amount

	tx.Date = core.StartOfDay(now.In(loc))
	if v := p.Get("date"); v != "" {
		d, err := time.ParseInLocation(dateInputLayout, v, loc)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, v)
		}
		tx.Date = d
	}

	if tx.IsRecurring {
		ri, err := core.ParseRecurringInterval(p.Get("interval"))
		if err != nil {
			return core.Transaction{}, err
		}
		tx.RecurringInterval = ri
	}
	return tx, nil
}

// RequestBodyParser reads a JSON object or a form encoded body once and
// exposes its fields as sanitized strings.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = errors.New("request body too large")
	}
	return p
}

// Parse decodes the body as JSON when it looks like an object, as a form
// otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func (p *RequestBodyParser) ContentType() string {
	return p.contentType
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseFormOrFail parses the form and returns an error response on failure.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}

// sanitizeInput trims and drops control characters other than tab and line
// breaks.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
