// Package mirror maintains a relational copy of the cached curricula in
// SQLite, so skills and lessons can be queried with plain SQL by tools that
// never touch the JSON documents.
package mirror

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/skillcrawl/skillcrawl/pkg/types"
)

// Mirror wraps the SQLite database holding the relational copy.
type Mirror struct {
	db *sql.DB
}

// Open opens (or creates) the mirror database at dbPath and applies any
// pending migrations.
func Open(dbPath string) (*Mirror, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open mirror database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &Mirror{db: db}, nil
}

// Close closes the database connection.
func (m *Mirror) Close() error {
	return m.db.Close()
}

// SyncStats summarizes one Sync call.
type SyncStats struct {
	University string `json:"university"`
	Lessons    int    `json:"lessons"`
	Skills     int    `json:"skills"`
}

// Sync replaces the mirror's rows for one university with the index
// contents, all inside a single transaction. Rows for lessons that have
// disappeared from the index are removed by the cascade delete.
func (m *Mirror) Sync(ctx context.Context, u *types.UniversityIndex) (*SyncStats, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin sync: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Replace-style sync: drop the old subtree, then reinsert.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM universities WHERE name = ?", u.Name); err != nil {
		return nil, fmt.Errorf("clear university %s: %w", u.Name, err)
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO universities (name, country) VALUES (?, ?)", u.Name, u.Country)
	if err != nil {
		return nil, fmt.Errorf("insert university %s: %w", u.Name, err)
	}
	universityID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("university id: %w", err)
	}

	stats := &SyncStats{University: u.Name}
	for _, sem := range u.Semesters {
		for _, rec := range sem.Lessons {
			res, err := tx.ExecContext(ctx,
				"INSERT INTO lessons (university_id, semester, lesson_name, description) VALUES (?, ?, ?, ?)",
				universityID, sem.Label, rec.Title, rec.Description)
			if err != nil {
				return nil, fmt.Errorf("insert lesson %s: %w", rec.Title, err)
			}
			lessonID, err := res.LastInsertId()
			if err != nil {
				return nil, fmt.Errorf("lesson id: %w", err)
			}
			stats.Lessons++

			for i, id := range rec.Skills {
				label := types.UnknownSkillLabel
				if i < len(rec.SkillNames) && rec.SkillNames[i] != "" {
					label = rec.SkillNames[i]
				}
				if _, err := tx.ExecContext(ctx,
					"INSERT OR REPLACE INTO skills (lesson_id, skill_name, skill_url) VALUES (?, ?, ?)",
					lessonID, label, id); err != nil {
					return nil, fmt.Errorf("insert skill %s: %w", id, err)
				}
				stats.Skills++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit sync: %w", err)
	}
	return stats, nil
}

// SkillRow is one row of a relational skill lookup.
type SkillRow struct {
	University string `json:"university"`
	Semester   string `json:"semester"`
	Lesson     string `json:"lesson"`
	SkillName  string `json:"skill_name"`
	SkillURL   string `json:"skill_url"`
}

// SearchSkillRows finds skills whose name contains the query, case
// insensitive. An empty university searches every mirrored curriculum. This
// is the SQL fallback when fuzzy search is not wanted.
func (m *Mirror) SearchSkillRows(ctx context.Context, query, university string, limit int) ([]SkillRow, error) {
	if limit <= 0 {
		limit = 50
	}

	q := `
		SELECT un.name, l.semester, l.lesson_name, s.skill_name, s.skill_url
		FROM skills s
		JOIN lessons l ON l.id = s.lesson_id
		JOIN universities un ON un.id = l.university_id
		WHERE s.skill_name LIKE '%' || ? || '%'`
	params := []interface{}{query}
	if university != "" {
		q += " AND un.name = ?"
		params = append(params, university)
	}
	q += `
		ORDER BY un.name, l.semester, l.lesson_name
		LIMIT ?`
	params = append(params, limit)

	rows, err := m.db.QueryContext(ctx, q, params...)
	if err != nil {
		return nil, fmt.Errorf("search skills: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []SkillRow
	for rows.Next() {
		var r SkillRow
		if err := rows.Scan(&r.University, &r.Semester, &r.Lesson, &r.SkillName, &r.SkillURL); err != nil {
			return nil, fmt.Errorf("scan skill row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LessonCount returns the number of mirrored lessons for a university.
func (m *Mirror) LessonCount(ctx context.Context, university string) (int, error) {
	var count int
	err := m.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM lessons l
		JOIN universities un ON un.id = l.university_id
		WHERE un.name = ?`, university).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count lessons: %w", err)
	}
	return count, nil
}
