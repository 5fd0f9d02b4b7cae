package auth

import (
	"testing"
	"time"
)

func TestTokenManager_IssueAndVerify(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, err := tm.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}

	subject, err := tm.Verify(token)
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if subject != "alice" {
		t.Errorf("Verify() got subject %q, want %q", subject, "alice")
	}
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute)

	token, err := tm.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	if _, err := tm.Verify(token); err == nil {
		t.Error("Verify() accepted expired token")
	}
}

func TestTokenManager_WrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)

	token, err := tm.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	if _, err := other.Verify(token); err == nil {
		t.Error("Verify() accepted token signed with a different secret")
	}
}

func TestTokenManager_MalformedToken(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	for _, tokenStr := range []string{"", "garbage", "a.b", "a.b.c"} {
		if _, err := tm.Verify(tokenStr); err == nil {
			t.Errorf("Verify(%q) accepted malformed token", tokenStr)
		}
	}
}
