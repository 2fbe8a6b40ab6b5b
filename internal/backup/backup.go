// Package backup copies the database file aside and prunes old copies.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mywarehouse/internal/logging"
)

const stampLayout = "20060102150405"

// Create copies the database at dbPath into dir as
// <stem>_<yyyymmddhhmmss>.db and returns the new file's path. The
// directory is created if missing.
func Create(dbPath, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create backup dir %s: %w", dir, err)
	}

	src, err := os.Open(dbPath)
	if err != nil {
		return "", fmt.Errorf("open database %s: %w", dbPath, err)
	}
	defer src.Close()

	stem := strings.TrimSuffix(filepath.Base(dbPath), filepath.Ext(dbPath))
	target := filepath.Join(dir, fmt.Sprintf("%s_%s.db", stem, time.Now().Format(stampLayout)))

	dst, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create backup %s: %w", target, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(target)
		return "", fmt.Errorf("copy to %s: %w", target, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close backup %s: %w", target, err)
	}

	logging.Backup("created %s", target)
	return target, nil
}

// Prune deletes all but the keep newest backups of dbPath in dir.
// Individual delete failures are logged, not fatal.
func Prune(dbPath, dir string, keep int) (int, error) {
	if keep < 1 {
		keep = 1
	}

	backups, err := List(dbPath, dir)
	if err != nil {
		return 0, err
	}
	if len(backups) <= keep {
		return 0, nil
	}

	removed := 0
	for _, path := range backups[keep:] {
		if err := os.Remove(path); err != nil {
			logging.Get(logging.CategoryBackup).Error("prune %s: %v", path, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		logging.Backup("pruned %d old backups from %s", removed, dir)
	}
	return removed, nil
}

// List returns the backups of dbPath found in dir, newest first. The
// timestamp suffix sorts lexicographically, so no stat calls are needed.
func List(dbPath, dir string) ([]string, error) {
	stem := strings.TrimSuffix(filepath.Base(dbPath), filepath.Ext(dbPath))
	matches, err := filepath.Glob(filepath.Join(dir, stem+"_*.db"))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	return matches, nil
}
