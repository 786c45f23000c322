package store

import (
	"errors"
	"testing"
	"time"
)

func TestGetAuthWhenEmpty(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetAuth()
	if !errors.Is(err, ErrNoAuth) {
		t.Errorf("GetAuth() error = %v, want ErrNoAuth", err)
	}
}

func TestSaveAndGetAuth(t *testing.T) {
	db := setupTestDB(t)

	expires := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	err := db.SaveAuth(&Auth{
		AthleteID:    12345,
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    expires,
	})
	if err != nil {
		t.Fatalf("SaveAuth() error = %v", err)
	}

	got, err := db.GetAuth()
	if err != nil {
		t.Fatalf("GetAuth() error = %v", err)
	}
	if got.AthleteID != 12345 {
		t.Errorf("AthleteID = %d, want 12345", got.AthleteID)
	}
	if got.AccessToken != "access-1" {
		t.Errorf("AccessToken = %q, want %q", got.AccessToken, "access-1")
	}
	if got.RefreshToken != "refresh-1" {
		t.Errorf("RefreshToken = %q, want %q", got.RefreshToken, "refresh-1")
	}
	if !got.ExpiresAt.Equal(expires) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, expires)
	}
}

func TestSaveAuthReplacesExistingRow(t *testing.T) {
	db := setupTestDB(t)

	first := &Auth{AthleteID: 1, AccessToken: "a1", RefreshToken: "r1", ExpiresAt: time.Now().UTC()}
	if err := db.SaveAuth(first); err != nil {
		t.Fatalf("SaveAuth() error = %v", err)
	}

	second := &Auth{AthleteID: 2, AccessToken: "a2", RefreshToken: "r2", ExpiresAt: time.Now().UTC()}
	if err := db.SaveAuth(second); err != nil {
		t.Fatalf("SaveAuth() second error = %v", err)
	}

	got, err := db.GetAuth()
	if err != nil {
		t.Fatalf("GetAuth() error = %v", err)
	}
	if got.AthleteID != 2 || got.AccessToken != "a2" {
		t.Errorf("got athlete %d token %q, want the replacement row", got.AthleteID, got.AccessToken)
	}
}

func TestUpdateTokens(t *testing.T) {
	db := setupTestDB(t)

	if err := db.SaveAuth(&Auth{
		AthleteID:    7,
		AccessToken:  "old-access",
		RefreshToken: "old-refresh",
		ExpiresAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("SaveAuth() error = %v", err)
	}

	newExpiry := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)
	if err := db.UpdateTokens("new-access", "new-refresh", newExpiry); err != nil {
		t.Fatalf("UpdateTokens() error = %v", err)
	}

	got, err := db.GetAuth()
	if err != nil {
		t.Fatalf("GetAuth() error = %v", err)
	}
	if got.AthleteID != 7 {
		t.Errorf("AthleteID = %d, want 7 (untouched by token update)", got.AthleteID)
	}
	if got.AccessToken != "new-access" || got.RefreshToken != "new-refresh" {
		t.Errorf("tokens = %q/%q, want the refreshed pair", got.AccessToken, got.RefreshToken)
	}
	if !got.ExpiresAt.Equal(newExpiry) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, newExpiry)
	}
}

func TestUpdateTokensWithoutAuthRow(t *testing.T) {
	db := setupTestDB(t)

	err := db.UpdateTokens("access", "refresh", time.Now())
	if !errors.Is(err, ErrNoAuth) {
		t.Errorf("UpdateTokens() error = %v, want ErrNoAuth", err)
	}
}
