package store

import (
	"errors"
	"testing"
)

func TestDefaultAdminSeeded(t *testing.T) {
	s := newTestStore(t)

	users, err := s.ListUsers()
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 1 || users[0].Username != "admin" || users[0].Role != "admin1" {
		t.Fatalf("expected default admin, got %+v", users)
	}

	u, err := s.Authenticate("admin", "admin")
	if err != nil {
		t.Fatalf("default admin login failed: %v", err)
	}
	if u.Role != "admin1" {
		t.Errorf("expected role admin1, got %s", u.Role)
	}
}

func TestAuthenticateRejectsBadPassword(t *testing.T) {
	s := newTestStore(t)

	if err := s.AddUser("tech", "s3cret", "user"); err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}

	if _, err := s.Authenticate("tech", "wrong"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for bad password, got %v", err)
	}
	if _, err := s.Authenticate("ghost", "s3cret"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown user, got %v", err)
	}

	u, err := s.Authenticate("tech", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if u.Username != "tech" || u.Role != "user" {
		t.Errorf("unexpected user: %+v", u)
	}
}

func TestAddUserDuplicate(t *testing.T) {
	s := newTestStore(t)

	if err := s.AddUser("tech", "a", "user"); err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}
	if err := s.AddUser("tech", "b", "user"); err == nil {
		t.Error("expected constraint error for duplicate username")
	}
}

func TestUserSaltsDiffer(t *testing.T) {
	s := newTestStore(t)

	s.AddUser("a", "same-password", "user")
	s.AddUser("b", "same-password", "user")

	var hashA, hashB string
	s.db.QueryRow("SELECT password_hash FROM users WHERE username = 'a'").Scan(&hashA)
	s.db.QueryRow("SELECT password_hash FROM users WHERE username = 'b'").Scan(&hashB)
	if hashA == hashB {
		t.Error("same password must hash differently under different salts")
	}
}

func TestUpdateUserRole(t *testing.T) {
	s := newTestStore(t)

	s.AddUser("tech", "pw", "user")
	if err := s.UpdateUserRole("tech", "admin"); err != nil {
		t.Fatalf("UpdateUserRole failed: %v", err)
	}

	role, err := s.UserRole("tech")
	if err != nil {
		t.Fatalf("UserRole failed: %v", err)
	}
	if role != "admin" {
		t.Errorf("expected admin, got %s", role)
	}

	if err := s.UpdateUserRole("ghost", "admin"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	s := newTestStore(t)

	s.AddUser("tech", "pw", "user")
	if err := s.DeleteUser("tech"); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if _, err := s.UserRole("tech"); !errors.Is(err, ErrNotFound) {
		t.Errorf("user should be gone, got %v", err)
	}

	// Deleting a missing user is fine.
	if err := s.DeleteUser("ghost"); err != nil {
		t.Errorf("deleting missing user should not error: %v", err)
	}
}

func TestAliasMapLowercasesTokens(t *testing.T) {
	s := newTestStore(t)

	if err := s.LearnAlias("FooScan", "Sensor"); err != nil {
		t.Fatalf("LearnAlias failed: %v", err)
	}
	if err := s.LearnAlias("fooscan", "Camera"); err != nil {
		t.Fatalf("re-learning alias failed: %v", err)
	}

	aliases, err := s.AliasMap()
	if err != nil {
		t.Fatalf("AliasMap failed: %v", err)
	}
	if aliases["fooscan"] != "Camera" {
		t.Errorf("expected re-learned category, got %v", aliases)
	}
	if len(aliases) != 1 {
		t.Errorf("expected 1 alias, got %d", len(aliases))
	}
}

func TestLearnAliasValidation(t *testing.T) {
	s := newTestStore(t)

	if err := s.LearnAlias("", "Sensor"); err == nil {
		t.Error("expected error for empty token")
	}
	if err := s.LearnAlias("tok", ""); err == nil {
		t.Error("expected error for empty category")
	}
}
