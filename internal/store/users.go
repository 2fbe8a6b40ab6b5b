package store

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"mywarehouse/internal/logging"
)

// pbkdf2Iterations balances login latency against brute-force cost.
const pbkdf2Iterations = 100000

// User is an operator account. Role admin1 is the super admin.
type User struct {
	Username string
	Role     string
}

// hashPassword derives a PBKDF2-HMAC-SHA256 hex digest.
func hashPassword(password string, salt []byte) string {
	return hex.EncodeToString(pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, 32, sha256.New))
}

// AddUser creates a user with a random salt. Duplicate usernames surface
// as a constraint error.
func (s *Store) AddUser(username, password, role string) error {
	if username == "" || password == "" || role == "" {
		return fmt.Errorf("username, password and role are required")
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT INTO users (username, password_hash, salt, role) VALUES (?, ?, ?, ?)",
		username, hashPassword(password, salt), hex.EncodeToString(salt), role,
	)
	if err != nil {
		return fmt.Errorf("add user %s: %w", username, err)
	}

	logging.Auth("created user %s (role %s)", username, role)
	return nil
}

// Authenticate verifies credentials and returns the user on success, or
// ErrNotFound for both unknown users and bad passwords.
func (s *Store) Authenticate(username, password string) (*User, error) {
	s.mu.RLock()
	var storedHash, saltHex, role string
	err := s.db.QueryRow(
		"SELECT password_hash, salt, role FROM users WHERE username = ?", username,
	).Scan(&storedHash, &saltHex, &role)
	s.mu.RUnlock()

	if err == sql.ErrNoRows {
		logging.Auth("login failed for %s: unknown user", username)
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("look up user %s: %w", username, err)
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return nil, fmt.Errorf("corrupt salt for %s: %w", username, err)
	}

	calc := hashPassword(password, salt)
	if subtle.ConstantTimeCompare([]byte(calc), []byte(storedHash)) != 1 {
		logging.Auth("login failed for %s: bad password", username)
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}

	logging.Auth("login ok for %s", username)
	return &User{Username: username, Role: role}, nil
}

// UserRole returns the role of the given user, or ErrNotFound.
func (s *Store) UserRole(username string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var role string
	err := s.db.QueryRow("SELECT role FROM users WHERE username = ?", username).Scan(&role)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("user role %s: %w", username, err)
	}
	return role, nil
}

// ListUsers returns all users with their roles, ordered by username.
func (s *Store) ListUsers() ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT username, role FROM users ORDER BY username")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.Username, &u.Role); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateUserRole changes a user's role. Callers enforce permissions.
func (s *Store) UpdateUserRole(username, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("UPDATE users SET role = ? WHERE username = ?", role, username)
	if err != nil {
		return fmt.Errorf("update role for %s: %w", username, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", username, ErrNotFound)
	}

	logging.Auth("user %s role -> %s", username, role)
	return nil
}

// DeleteUser removes a user. Deleting a missing user is not an error.
func (s *Store) DeleteUser(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM users WHERE username = ?", username); err != nil {
		return fmt.Errorf("delete user %s: %w", username, err)
	}

	logging.Auth("deleted user %s", username)
	return nil
}

// ensureDefaultAdmin seeds admin/admin (role admin1) when the users table
// is empty, so a fresh database is usable. Change the password right away.
func (s *Store) ensureDefaultAdmin() error {
	s.mu.RLock()
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	logging.Auth("no users found; creating default admin user")
	return s.AddUser("admin", "admin", "admin1")
}
