package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/chart"
	"fintrack/internal/core"
)

func TestParseChartParams(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    ChartParams
		wantErr error
	}{
		{
			name:  "defaults",
			query: "",
			want:  ChartParams{Range: chart.LastMonth, Granularity: chart.Daily, ShowIncome: true, ShowExpense: true},
		},
		{
			name:  "explicit values",
			query: "account=main&range=3m&granularity=weekly&income=0&expense=on",
			want:  ChartParams{AccountID: "main", Range: chart.Last3Months, Granularity: chart.Weekly, ShowIncome: false, ShowExpense: true},
		},
		{
			name:  "unknown toggle keeps default",
			query: "expense=maybe",
			want:  ChartParams{Range: chart.LastMonth, Granularity: chart.Daily, ShowIncome: true, ShowExpense: true},
		},
		{name: "bad range", query: "range=2Y", wantErr: chart.ErrInvalidPreset},
		{name: "bad granularity", query: "granularity=hourly", wantErr: chart.ErrInvalidGranularity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ui/chart?"+tt.query, nil)
			got, err := ParseChartParams(req.URL.Query())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseChartParams() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestChartParamsQueryRoundTrip(t *testing.T) {
	in := ChartParams{AccountID: "savings", Range: chart.AllTime, Granularity: chart.Monthly, ShowIncome: true}
	out, err := ParseChartParams(in.Query())
	if err != nil {
		t.Fatalf("ParseChartParams: %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestParseTransaction(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		body    string
		check   func(t *testing.T, tx core.Transaction)
		wantErr error
	}{
		{
			name: "form expense with date",
			body: "type=expense&amount=12,345&category=Groceries&description=Weekly+shop&account=main&date=2024-03-08",
			check: func(t *testing.T, tx core.Transaction) {
				if tx.Type != core.Expense || !tx.Amount.Equal(decimal.RequireFromString("12.35")) {
					t.Errorf("type/amount = %s/%s", tx.Type, tx.Amount)
				}
				if tx.Category != "groceries" || tx.AccountID != "main" || tx.Description != "Weekly shop" {
					t.Errorf("unexpected fields: %+v", tx)
				}
				if !tx.Date.Equal(time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)) {
					t.Errorf("date = %v", tx.Date)
				}
				if tx.IsRecurring {
					t.Error("should not be recurring")
				}
			},
		},
		{
			name: "json recurring income defaults to today",
			body: `{"type":"INCOME","amount":2500,"category":"salary","account":"main","recurring":true,"interval":"monthly"}`,
			check: func(t *testing.T, tx core.Transaction) {
				if !tx.IsRecurring || tx.RecurringInterval != core.Monthly {
					t.Errorf("recurring = %v %s", tx.IsRecurring, tx.RecurringInterval)
				}
				if !tx.Date.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)) {
					t.Errorf("date = %v", tx.Date)
				}
			},
		},
		{name: "bad type", body: "type=transfer&amount=1", wantErr: core.ErrInvalidType},
		{name: "negative amount", body: "type=expense&amount=-5", wantErr: core.ErrInvalidAmount},
		{name: "bad date", body: "type=expense&amount=5&date=10/03/2024", wantErr: core.ErrInvalidDate},
		{name: "recurring without interval", body: "type=expense&amount=5&recurring=on", wantErr: core.ErrInvalidInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(tt.body))
			p := NewRequestBodyParser(req)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse: %v", err)
			}
			tx, err := ParseTransaction(p, now, time.UTC)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, tx)
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  coffee\x00 beans\x07\t "); got != "coffee beans" {
		t.Errorf("sanitizeInput() = %q", got)
	}
}

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"id": "123", "name": "test", "amount": 42.5}`
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}

	if id := parser.Get("id"); id != "123" {
		t.Errorf("Get('id') = %q, want '123'", id)
	}

	if name := parser.Get("name"); name != "test" {
		t.Errorf("Get('name') = %q, want 'test'", name)
	}

	if amount := parser.Get("amount"); amount != "42.5" {
		t.Errorf("Get('amount') = %q, want '42.5'", amount)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "id=456&name=form+test&value=100"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}

	if id := parser.Get("id"); id != "456" {
		t.Errorf("Get('id') = %q, want '456'", id)
	}

	if name := parser.Get("name"); name != "form test" {
		t.Errorf("Get('name') = %q, want 'form test'", name)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(""))

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestRequestBodyParser_TooLarge(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(strings.Repeat("a", maxBodyBytes+1)))
	if err := NewRequestBodyParser(req).Parse(); err == nil {
		t.Fatal("expected error for oversized body")
	}
}

func TestParseFormOrFail(t *testing.T) {
	// Valid form request
	body := "field=value"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	result := ParseFormOrFail(req)
	if result != nil {
		t.Error("Expected nil for valid form, got error response")
	}

	// Verify form was parsed
	if req.Form.Get("field") != "value" {
		t.Error("Form was not parsed correctly")
	}
}
