package store

import (
	"fmt"
	"strings"

	"mywarehouse/internal/logging"
)

// LearnAlias persists a token->category alias so future categorisations
// map the token to this category. Re-learning a token replaces it.
func (s *Store) LearnAlias(token, category string) error {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" || category == "" {
		return fmt.Errorf("alias token and category are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO category_aliases (token, category) VALUES (?, ?)",
		token, category,
	)
	if err != nil {
		return fmt.Errorf("learn alias %s: %w", token, err)
	}

	logging.Categorizer("learned alias %q -> %s", token, category)
	return nil
}

// AliasMap loads the learned aliases, keyed by lowercase token. Satisfies
// categorizer.AliasSource.
func (s *Store) AliasMap() (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT token, category FROM category_aliases")
	if err != nil {
		return nil, fmt.Errorf("load aliases: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var token, category string
		if err := rows.Scan(&token, &category); err != nil {
			return nil, fmt.Errorf("scan alias: %w", err)
		}
		out[strings.ToLower(token)] = category
	}
	return out, rows.Err()
}
