package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
)

func TestNewFromEnv_MissingSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatal("expected error for missing GOOGLE_SPREADSHEET_ID")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewFromEnv_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "test-id")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := NewFromEnv(context.Background())
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestCredentialsFromEnv_File(t *testing.T) {
	path := t.TempDir() + "/sa.json"
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", path)

	got, err := credentialsFromEnv(context.Background())
	if err != nil {
		t.Fatalf("credentialsFromEnv() error = %v", err)
	}
	if string(got) != `{"type":"service_account"}` {
		t.Errorf("credentials = %s", got)
	}
}

func TestTransactionRow(t *testing.T) {
	next := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		tx   core.Transaction
		want []any
	}{
		{
			name: "one-time expense",
			tx: core.Transaction{
				ID: "t1", Date: time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC),
				Amount: decimal.RequireFromString("12.5"), Type: core.Expense,
				Category: "food", Description: "Coffee", AccountID: "main",
			},
			want: []any{"2024-01-15", "EXPENSE", "food", "Coffee", "12.50", "main", "One-time", "t1"},
		},
		{
			name: "monthly income",
			tx: core.Transaction{
				ID: "t2", Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
				Amount: decimal.NewFromInt(3000), Type: core.Income, Category: "salary",
				IsRecurring: true, RecurringInterval: core.Monthly, NextRecurringDate: &next,
				AccountID: "main",
			},
			want: []any{"2024-01-15", "INCOME", "salary", "", "3000.00", "main", "Monthly", "t2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transactionRow(tt.tx)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d cells, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("cell %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRowsToDelete(t *testing.T) {
	values := [][]any{{"ID"}, {"a"}, {}, {"b"}, {" c "}, {"a"}}

	got := rowsToDelete(values, []string{"a", "c", "zzz"})
	want := []int64{5, 4, 1}
	if len(got) != len(want) {
		t.Fatalf("rowsToDelete() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rowsToDelete()[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	if rows := rowsToDelete(values, nil); len(rows) != 0 {
		t.Errorf("expected no rows, got %v", rows)
	}
}

func TestClient_NotInitialized(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: DefaultSheetName}

	if _, err := c.AppendTransaction(context.Background(), core.Transaction{ID: "x"}); err == nil {
		t.Error("expected error with nil service")
	}
	if err := c.RemoveTransactions(context.Background(), []string{"x"}); err == nil {
		t.Error("expected error with nil service")
	}
}

// fakeSheets serves the handful of Sheets API endpoints the client calls.
type fakeSheets struct {
	mu       sync.Mutex
	ids      [][]any
	appended [][]any
	deletes  []*gsheet.DeleteDimensionRequest
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.appended = append(f.appended, vr.Values...)
		json.NewEncoder(w).Encode(map[string]any{
			"updates": map[string]any{"updatedRange": "Transactions!A2:H2"},
		})
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var req gsheet.BatchUpdateSpreadsheetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, rq := range req.Requests {
			f.deletes = append(f.deletes, rq.DeleteDimension)
		}
		w.Write([]byte(`{}`))
	case r.Method == http.MethodGet && strings.Contains(path, "/values/"):
		json.NewEncoder(w).Encode(map[string]any{"values": f.ids})
	case r.Method == http.MethodGet:
		json.NewEncoder(w).Encode(map[string]any{
			"sheets": []any{
				map[string]any{"properties": map[string]any{"sheetId": 7, "title": "Other"}},
				map[string]any{"properties": map[string]any{"sheetId": 42, "title": "Transactions"}},
			},
		})
	default:
		http.NotFound(w, r)
	}
}

func newFakeClient(t *testing.T, f *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), "sheet-id", "",
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestClient_AppendTransaction(t *testing.T) {
	f := &fakeSheets{}
	c := newFakeClient(t, f)

	ref, err := c.AppendTransaction(context.Background(), core.Transaction{
		ID: "t1", Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Amount: decimal.NewFromInt(100), Type: core.Expense, Category: "food", AccountID: "main",
	})
	if err != nil {
		t.Fatalf("AppendTransaction() error = %v", err)
	}
	if ref != "Transactions!A2:H2" {
		t.Errorf("ref = %q", ref)
	}
	if len(f.appended) != 1 || f.appended[0][7] != "t1" {
		t.Errorf("appended = %v", f.appended)
	}
}

func TestClient_RemoveTransactions(t *testing.T) {
	f := &fakeSheets{ids: [][]any{{"ID"}, {"a"}, {"b"}, {"c"}}}
	c := newFakeClient(t, f)

	if err := c.RemoveTransactions(context.Background(), []string{"a", "c"}); err != nil {
		t.Fatalf("RemoveTransactions() error = %v", err)
	}
	if len(f.deletes) != 2 {
		t.Fatalf("expected 2 delete requests, got %d", len(f.deletes))
	}
	if got := f.deletes[0].Range; got.SheetId != 42 || got.StartIndex != 3 || got.EndIndex != 4 {
		t.Errorf("first delete = %+v", got)
	}
	if got := f.deletes[1].Range; got.StartIndex != 1 || got.EndIndex != 2 {
		t.Errorf("second delete = %+v", got)
	}
}

func TestClient_RemoveTransactions_NoMatch(t *testing.T) {
	f := &fakeSheets{ids: [][]any{{"ID"}, {"a"}}}
	c := newFakeClient(t, f)

	if err := c.RemoveTransactions(context.Background(), []string{"zzz"}); err != nil {
		t.Fatalf("RemoveTransactions() error = %v", err)
	}
	if len(f.deletes) != 0 {
		t.Errorf("expected no batch update, got %v", f.deletes)
	}
}
