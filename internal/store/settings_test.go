package store

import (
	"context"
	"testing"

	"github.com/erazemk/transferlog/internal/db"
)

func TestGetSessionSecret_GeneratesAndPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	secret1, err := GetSessionSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(secret1) != 64 { // 32 bytes = 64 hex chars
		t.Fatalf("expected 64 hex chars, got %d", len(secret1))
	}

	secret2, err := GetSessionSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 != secret2 {
		t.Fatalf("expected same secret, got %q and %q", secret1, secret2)
	}
}

func TestSettings(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	v, err := GetSetting(ctx, database, "missing")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if v != "" {
		t.Errorf("expected empty value, got %q", v)
	}

	SetSetting(ctx, database, "k", "one")
	SetSetting(ctx, database, "k", "two")

	v, _ = GetSetting(ctx, database, "k")
	if v != "two" {
		t.Errorf("expected overwritten value 'two', got %q", v)
	}
}
