package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fintrack/internal/config"
)

func TestBackendType_IsValid(t *testing.T) {
	tests := []struct {
		bt   BackendType
		want bool
	}{
		{MemoryBackend, true},
		{SQLiteBackend, true},
		{"sheets", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := tt.bt.IsValid(); got != tt.want {
			t.Errorf("BackendType(%q).IsValid() = %v, want %v", tt.bt, got, tt.want)
		}
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "postgres"}); err == nil {
		t.Error("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", AMQPQueue: "q"})
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "x.db" || cfg.AMQPQueue != "q" {
		t.Errorf("FromAppConfig() = %+v", cfg)
	}
}

func TestCreateBackend_Memory(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.json")
	data := `{"transactions":[{"id":"t1","date":"2024-01-05T00:00:00Z","amount":"100","type":"EXPENSE","category":"food","accountId":"main"}]}`
	if err := os.WriteFile(seed, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, SeedFile: seed})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer res.Cleanup()

	if res.Publisher != nil {
		t.Error("publisher should be nil without AMQP_URL")
	}
	txs, err := res.Store.ListTransactions(context.Background(), "")
	if err != nil || len(txs) != 1 {
		t.Fatalf("ListTransactions() = %v, %v", txs, err)
	}
}

func TestCreateBackend_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "fintrack.db")

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	if err := res.Store.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if err := res.Cleanup(); err != nil {
		t.Errorf("Cleanup() error = %v", err)
	}
}

func TestCreateBackend_Invalid(t *testing.T) {
	f := NewFactory(nil)
	if _, err := f.CreateBackend(context.Background(), Config{Type: "nope"}); err == nil {
		t.Error("expected error for invalid type")
	}
	if _, err := f.CreateBackend(context.Background(), Config{Type: SQLiteBackend}); err == nil {
		t.Error("expected error for missing sqlite path")
	}
}
