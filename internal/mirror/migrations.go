package mirror

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	// CurrentSchemaVersion tracks the mirror schema version
	CurrentSchemaVersion = "1.0.0"
)

// Migration represents a database schema migration
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations contains all mirror migrations in order
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      migrationV1Up,
		Down:    migrationV1Down,
	},
}

const migrationV1Up = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Universities table
CREATE TABLE IF NOT EXISTS universities (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    country TEXT,
    synced_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Lessons table
CREATE TABLE IF NOT EXISTS lessons (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    university_id INTEGER NOT NULL,
    semester TEXT NOT NULL,
    lesson_name TEXT NOT NULL,
    description TEXT,
    FOREIGN KEY (university_id) REFERENCES universities(id) ON DELETE CASCADE,
    UNIQUE(university_id, semester, lesson_name)
);

CREATE INDEX IF NOT EXISTS idx_lessons_university ON lessons(university_id);
CREATE INDEX IF NOT EXISTS idx_lessons_name ON lessons(lesson_name);

-- Skills table
CREATE TABLE IF NOT EXISTS skills (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    lesson_id INTEGER NOT NULL,
    skill_name TEXT NOT NULL,
    skill_url TEXT NOT NULL,
    FOREIGN KEY (lesson_id) REFERENCES lessons(id) ON DELETE CASCADE,
    UNIQUE(lesson_id, skill_url)
);

CREATE INDEX IF NOT EXISTS idx_skills_lesson ON skills(lesson_id);
CREATE INDEX IF NOT EXISTS idx_skills_name ON skills(skill_name);
`

const migrationV1Down = `
DROP TABLE IF EXISTS skills;
DROP TABLE IF EXISTS lessons;
DROP TABLE IF EXISTS universities;
DROP TABLE IF EXISTS schema_version;
`

// ApplyMigrations applies any pending migrations to the database.
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	for _, m := range AllMigrations {
		applied, err := migrationApplied(ctx, db, m.Version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, m.Up); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", m.Version, err)
		}
	}
	return nil
}

func migrationApplied(ctx context.Context, db *sql.DB, version string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) > 0 FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check schema table: %w", err)
	}
	if !exists {
		return false, nil
	}

	var count int
	err = db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check migration %s: %w", version, err)
	}
	return count > 0, nil
}
