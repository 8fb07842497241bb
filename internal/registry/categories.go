// Package registry holds the read-only lookup tables the views use to
// decorate transactions.
package registry

import (
	"slices"
	"strings"

	"fintrack/internal/core"
)

// DefaultColor is used for categories without a registered color.
const DefaultColor = "#6b7280"

type Category struct {
	ID    string
	Name  string
	Type  core.TransactionType
	Color string
}

// Categories maps category ids to display names and colors.
type Categories struct {
	byID  map[string]Category
	order []string
}

func NewCategories(cats []Category) *Categories {
	c := &Categories{byID: make(map[string]Category, len(cats))}
	for _, cat := range cats {
		if _, dup := c.byID[cat.ID]; !dup {
			c.order = append(c.order, cat.ID)
		}
		c.byID[cat.ID] = cat
	}
	return c
}

// DefaultCategories returns the built-in category set.
func DefaultCategories() *Categories {
	return NewCategories([]Category{
		{ID: "salary", Name: "Salary", Type: core.Income, Color: "#0d9488"},
		{ID: "groceries", Name: "Groceries", Type: core.Expense, Color: "#16a34a"},
		{ID: "transport", Name: "Transport", Type: core.Expense, Color: "#2563eb"},
		{ID: "utilities", Name: "Utilities", Type: core.Expense, Color: "#9333ea"},
		{ID: "entertainment", Name: "Entertainment", Type: core.Expense, Color: "#f59e0b"},
		{ID: "shopping", Name: "Shopping", Type: core.Expense, Color: "#dc2626"},
		{ID: "other", Name: "Other", Type: core.Expense, Color: DefaultColor},
	})
}

func (c *Categories) Lookup(id string) (Category, bool) {
	cat, ok := c.byID[id]
	return cat, ok
}

// ColorOf returns the registered color or DefaultColor.
func (c *Categories) ColorOf(id string) string {
	if cat, ok := c.byID[id]; ok && cat.Color != "" {
		return cat.Color
	}
	return DefaultColor
}

// LabelOf returns the registered name. Unknown ids are shown capitalized.
func (c *Categories) LabelOf(id string) string {
	if cat, ok := c.byID[id]; ok && cat.Name != "" {
		return cat.Name
	}
	if id == "" {
		return "Uncategorized"
	}
	return strings.ToUpper(id[:1]) + id[1:]
}

// ForType lists categories usable with t, in registration order.
func (c *Categories) ForType(t core.TransactionType) []Category {
	var out []Category
	for _, id := range c.order {
		if cat := c.byID[id]; cat.Type == t {
			out = append(out, cat)
		}
	}
	return out
}

// All lists every category in registration order.
func (c *Categories) All() []Category {
	out := make([]Category, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Valid reports whether id is registered for transactions of type t.
func (c *Categories) Valid(id string, t core.TransactionType) bool {
	return slices.ContainsFunc(c.ForType(t), func(cat Category) bool { return cat.ID == id })
}
