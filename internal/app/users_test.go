package app

import (
	"errors"
	"strings"
	"testing"
)

func TestRegisterStoresHashedPassword(t *testing.T) {
	appCore, memStore := newTestApp(t)

	user, err := appCore.Register("  alice  ", "s3cret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("username not trimmed: %q", user.Username)
	}

	stored, ok, err := memStore.GetUserByUsername("alice")
	if err != nil || !ok {
		t.Fatalf("lookup stored user: ok=%v err=%v", ok, err)
	}
	if stored.PasswordHash == "s3cret" || stored.PasswordHash == "" {
		t.Fatalf("password stored without hashing")
	}
}

func TestRegisterValidation(t *testing.T) {
	appCore, _ := newTestApp(t)

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"empty username", "   ", "s3cret"},
		{"empty password", "alice", ""},
		{"username too long", strings.Repeat("a", 51), "s3cret"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := appCore.Register(tc.username, tc.password); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	appCore, _ := newTestApp(t)

	if _, err := appCore.Register("alice", "s3cret"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := appCore.Register("alice", "other"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected username conflict, got %v", err)
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	appCore, _ := newTestApp(t)

	registered, err := appCore.Register("alice", "s3cret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	user, token, err := appCore.Login("alice", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("login returned wrong user: %+v", user)
	}
	userID, username, err := appCore.tokens.Verify(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if userID != registered.ID || username != "alice" {
		t.Fatalf("token identity mismatch: %d %q", userID, username)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	appCore, _ := newTestApp(t)

	if _, err := appCore.Register("alice", "s3cret"); err != nil {
		t.Fatalf("register: %v", err)
	}

	for _, tc := range []struct{ username, password string }{
		{"alice", "wrong"},
		{"nobody", "s3cret"},
	} {
		_, _, err := appCore.Login(tc.username, tc.password)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("login %q/%q: expected invalid credentials, got %v", tc.username, tc.password, err)
		}
	}
}

func TestUpdateUserRenameConflict(t *testing.T) {
	appCore, _ := newTestApp(t)

	if _, err := appCore.Register("alice", "s3cret"); err != nil {
		t.Fatalf("register: %v", err)
	}
	bob, err := appCore.Register("bob", "s3cret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := appCore.UpdateUser(bob.ID, "alice", "newpass"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected rename conflict, got %v", err)
	}

	// renaming onto your own current username is allowed
	updated, err := appCore.UpdateUser(bob.ID, "bob", "newpass")
	if err != nil {
		t.Fatalf("update user: %v", err)
	}
	if updated.Username != "bob" {
		t.Fatalf("unexpected username %q", updated.Username)
	}
	if _, _, err := appCore.Login("bob", "newpass"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestUpdateUserUnknownID(t *testing.T) {
	appCore, _ := newTestApp(t)
	if _, err := appCore.UpdateUser(999, "ghost", "pass"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
