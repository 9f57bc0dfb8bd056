package main

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// The snapshot store keeps fetched inventories so a plan can be
// reproduced offline. It records inputs only; allocations are never
// written back.

type snapshot struct {
	ID      int64
	Label   string
	Source  string
	TakenAt string
	Count   int
}

func sqliteDSN(raw string) string {
	if strings.Contains(raw, "_pragma=foreign_keys") {
		return raw
	}
	sep := "?"
	if strings.Contains(raw, "?") {
		sep = "&"
	}
	return raw + sep + "_pragma=foreign_keys(1)"
}

func saveSnapshot(db *sql.DB, label, source string, entries []string) (int64, error) {
	if strings.TrimSpace(label) == "" {
		return 0, fmt.Errorf("snapshot label is required")
	}
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	res, err := tx.Exec(`INSERT INTO snapshots(label, source, taken_at) VALUES(?, ?, ?)`,
		label, source, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	id, _ := res.LastInsertId()
	for _, cidr := range entries {
		if _, err := tx.Exec(`INSERT INTO snapshot_prefixes(snapshot_id, cidr) VALUES(?, ?)`, id, cidr); err != nil {
			_ = tx.Rollback()
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func listSnapshots(db *sql.DB) ([]snapshot, error) {
	rows, err := db.Query(`
		SELECT s.id, s.label, s.source, s.taken_at, COUNT(p.id)
		FROM snapshots s
		LEFT JOIN snapshot_prefixes p ON p.snapshot_id = s.id
		GROUP BY s.id
		ORDER BY s.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []snapshot
	for rows.Next() {
		var s snapshot
		if err := rows.Scan(&s.ID, &s.Label, &s.Source, &s.TakenAt, &s.Count); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func snapshotByLabel(db *sql.DB, label string) (snapshot, bool, error) {
	var s snapshot
	err := db.QueryRow(`SELECT id, label, source, taken_at FROM snapshots WHERE label=?`, label).
		Scan(&s.ID, &s.Label, &s.Source, &s.TakenAt)
	if err == sql.ErrNoRows {
		return snapshot{}, false, nil
	}
	if err != nil {
		return snapshot{}, false, err
	}
	return s, true, nil
}

func snapshotEntries(db *sql.DB, snapshotID int64) ([]string, error) {
	rows, err := db.Query(`SELECT cidr FROM snapshot_prefixes WHERE snapshot_id=? ORDER BY id`, snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var cidr string
		if err := rows.Scan(&cidr); err != nil {
			return nil, err
		}
		out = append(out, cidr)
	}
	return out, rows.Err()
}

// loadSnapshotEntries resolves a label to its stored inventory listing.
func loadSnapshotEntries(db *sql.DB, label string) ([]string, error) {
	s, ok, err := snapshotByLabel(db, label)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("snapshot %q not found", label)
	}
	return snapshotEntries(db, s.ID)
}
