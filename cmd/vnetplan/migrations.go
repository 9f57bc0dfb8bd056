package main

import (
	"database/sql"
	"embed"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

//go:embed migrations/*.sql
var migFS embed.FS

func migrate(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`); err != nil {
		return err
	}
	entries, err := migFS.ReadDir("migrations")
	if err != nil {
		return err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".sql" {
			files = append(files, "migrations/"+entry.Name())
		}
	}
	sort.Strings(files)
	for _, file := range files {
		version, err := migrationVersion(file)
		if err != nil {
			return err
		}
		var count int
		if err := db.QueryRow(`SELECT COUNT(1) FROM schema_migrations WHERE version=?`, version).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		body, err := migFS.ReadFile(file)
		if err != nil {
			return err
		}
		for _, part := range strings.Split(string(body), ";") {
			stmt := strings.TrimSpace(part)
			if stmt == "" {
				continue
			}
			if _, err := db.Exec(stmt); err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
		}
		if _, err := db.Exec(`INSERT INTO schema_migrations(version, applied_at) VALUES(?, ?)`,
			version, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return nil
}

func migrationVersion(path string) (int, error) {
	base := strings.TrimSuffix(filepath.Base(path), ".sql")
	var digits strings.Builder
	for _, r := range base {
		if r < '0' || r > '9' {
			break
		}
		digits.WriteRune(r)
	}
	version, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, fmt.Errorf("invalid migration name: %s", path)
	}
	return version, nil
}
