package store

import (
	"context"
	"testing"

	"github.com/erazemk/transferlog/internal/db"
	"github.com/erazemk/transferlog/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "driver@example.com", "hash123", "Bobby", model.ProviderPassword)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected an ID")
	}

	got, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Email != "driver@example.com" || got.DisplayName != "Bobby" {
		t.Errorf("unexpected user: %+v", got)
	}
}

func TestGetUserByEmail(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "alice@example.com", "hash", "", model.ProviderPassword)

	user, err := GetUserByEmail(ctx, database, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}

	missing, err := GetUserByEmail(ctx, database, "bob@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateUser(ctx, database, "dup@example.com", "h", "", model.ProviderPassword); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := CreateUser(ctx, database, "dup@example.com", "h", "", model.ProviderGoogle); err == nil {
		t.Error("expected duplicate email to fail")
	}
}

func TestUpdateUserPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "pw@example.com", "oldhash", "", model.ProviderPassword)
	UpdateUserPassword(ctx, database, user.ID, "newhash")
	UpdateUserDisplayName(ctx, database, user.ID, "New Name")

	got, _ := GetUser(ctx, database, user.ID)
	if got.PasswordHash != "newhash" {
		t.Errorf("expected password hash 'newhash', got %q", got.PasswordHash)
	}
	if got.DisplayName != "New Name" {
		t.Errorf("expected display name 'New Name', got %q", got.DisplayName)
	}
}

func TestMarkUserVerified(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "pw@example.com", "hash", "", model.ProviderPassword)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.EmailVerified {
		t.Error("password accounts must start unverified")
	}

	if err := MarkUserVerified(ctx, database, user.ID); err != nil {
		t.Fatalf("MarkUserVerified: %v", err)
	}
	got, _ := GetUser(ctx, database, user.ID)
	if !got.EmailVerified {
		t.Error("expected user to be verified")
	}

	google, _ := CreateUser(ctx, database, "g@example.com", "", "", model.ProviderGoogle)
	got, _ = GetUser(ctx, database, google.ID)
	if !got.EmailVerified {
		t.Error("expected google account to be verified")
	}
}
