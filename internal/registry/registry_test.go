package registry

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
)

func TestCategoriesDefaults(t *testing.T) {
	c := DefaultCategories()

	tests := []struct {
		id    string
		color string
		label string
	}{
		{"groceries", "#16a34a", "Groceries"},
		{"salary", "#0d9488", "Salary"},
		{"crypto", DefaultColor, "Crypto"},
		{"", DefaultColor, "Uncategorized"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := c.ColorOf(tt.id); got != tt.color {
				t.Errorf("ColorOf(%q) = %q, want %q", tt.id, got, tt.color)
			}
			if got := c.LabelOf(tt.id); got != tt.label {
				t.Errorf("LabelOf(%q) = %q, want %q", tt.id, got, tt.label)
			}
		})
	}
}

func TestCategoriesForType(t *testing.T) {
	c := DefaultCategories()

	income := c.ForType(core.Income)
	if len(income) != 1 || income[0].ID != "salary" {
		t.Fatalf("income categories = %+v", income)
	}
	if !c.Valid("transport", core.Expense) || c.Valid("transport", core.Income) {
		t.Fatal("transport should be an expense-only category")
	}
	if len(c.All()) != 7 {
		t.Fatalf("expected 7 categories, got %d", len(c.All()))
	}
}

type stubAccounts struct {
	list []core.Account
	err  error
}

func (s stubAccounts) ListAccounts(context.Context) ([]core.Account, error) {
	return s.list, s.err
}

func TestLoadAccounts(t *testing.T) {
	accs, err := LoadAccounts(context.Background(), stubAccounts{list: []core.Account{
		{ID: "a", Name: "Wallet"},
		{ID: "b", Name: "Bank", IsDefault: true},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accs.NameOf("a") != "Wallet" || accs.NameOf("zzz") != "zzz" {
		t.Fatal("unexpected names")
	}
	if def, ok := accs.Default(); !ok || def.ID != "b" {
		t.Fatalf("default = %+v", def)
	}

	boom := errors.New("boom")
	if _, err := LoadAccounts(context.Background(), stubAccounts{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
