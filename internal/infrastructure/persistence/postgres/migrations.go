package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATIONS
// Схема разворачивается самим приложением при старте: школа небольшая,
// отдельный инструмент миграций был бы лишним. Каждая миграция
// применяется в своей транзакции и записывается в schema_migrations.
// ══════════════════════════════════════════════════════════════════════════════

// Migration is one versioned schema change.
type Migration struct {
	Version   int
	Name      string
	UpSQL     string
	DownSQL   string
	AppliedAt time.Time
	IsApplied bool
}

// Migrator applies embedded migrations.
type Migrator struct {
	conn       *Connection
	migrations []Migration
	tableName  string
}

// NewMigrator creates a migrator with the embedded schema.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{
		conn:       conn,
		migrations: GetMigrations(),
		tableName:  "schema_migrations",
	}
}

// EnsureMigrationTable creates the tracking table if missing.
func (m *Migrator) EnsureMigrationTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`, m.tableName)

	if _, err := m.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}
	return nil
}

// GetAppliedMigrations returns the versions already applied.
func (m *Migrator) GetAppliedMigrations(ctx context.Context) (map[int]time.Time, error) {
	query := fmt.Sprintf("SELECT version, applied_at FROM %s ORDER BY version", m.tableName)

	rows, err := m.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("scan migration row: %w", err)
		}
		applied[version] = appliedAt
	}
	return applied, rows.Err()
}

// Migrate applies all pending migrations in order.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	for _, mig := range m.migrations {
		if _, ok := applied[mig.Version]; ok {
			continue
		}
		if mig.UpSQL == "" {
			return fmt.Errorf("%w: missing up SQL for migration %d", ErrMigrationFailed, mig.Version)
		}

		err := m.conn.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
				return fmt.Errorf("execute migration %d: %w", mig.Version, err)
			}
			insert := fmt.Sprintf("INSERT INTO %s (version, name) VALUES ($1, $2)", m.tableName)
			_, err := tx.Exec(ctx, insert, mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: version %d: %v", ErrMigrationFailed, mig.Version, err)
		}
	}

	return nil
}

// Rollback reverts the most recently applied migration.
func (m *Migrator) Rollback(ctx context.Context) error {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	var lastVersion int
	for v := range applied {
		if v > lastVersion {
			lastVersion = v
		}
	}
	if lastVersion == 0 {
		return nil
	}

	var migration *Migration
	for i := range m.migrations {
		if m.migrations[i].Version == lastVersion {
			migration = &m.migrations[i]
			break
		}
	}
	if migration == nil || migration.DownSQL == "" {
		return fmt.Errorf("%w: missing down SQL for migration %d", ErrMigrationFailed, lastVersion)
	}

	return m.conn.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, migration.DownSQL); err != nil {
			return fmt.Errorf("rollback migration %d: %w", lastVersion, err)
		}
		del := fmt.Sprintf("DELETE FROM %s WHERE version = $1", m.tableName)
		_, err := tx.Exec(ctx, del, lastVersion)
		return err
	})
}

// Status returns all migrations annotated with their applied state.
func (m *Migrator) Status(ctx context.Context) ([]Migration, error) {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return nil, err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]Migration, len(m.migrations))
	copy(result, m.migrations)
	for i := range result {
		if appliedAt, ok := applied[result[i].Version]; ok {
			result[i].IsApplied = true
			result[i].AppliedAt = appliedAt
		}
	}
	return result, nil
}

// GetMigrations returns the embedded schema migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_users",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_curriculum",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_scheduling",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
		{
			Version: 4,
			Name:    "seed_curriculum",
			UpSQL:   migration004Up,
			DownSQL: migration004Down,
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEMA
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
CREATE TABLE users (
	id            UUID PRIMARY KEY,
	username      TEXT NOT NULL,
	first_name    TEXT NOT NULL,
	last_name     TEXT NOT NULL,
	phone         TEXT NOT NULL,
	email         TEXT NOT NULL,
	cpr           TEXT NOT NULL,
	address       TEXT NOT NULL,
	postal_code   TEXT NOT NULL,
	city          TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	picture_url   TEXT NOT NULL DEFAULT '',
	instructor    BOOLEAN NOT NULL DEFAULT FALSE,
	created_at    TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX idx_users_username ON users (username);
CREATE UNIQUE INDEX idx_users_email ON users (email);
CREATE UNIQUE INDEX idx_users_cpr ON users (cpr);
`

const migration001Down = `
DROP TABLE IF EXISTS users;
`

const migration002Up = `
CREATE TABLE lesson_templates (
	id                      INTEGER PRIMARY KEY,
	lesson_type             TEXT NOT NULL,
	title                   TEXT NOT NULL,
	description             TEXT NOT NULL DEFAULT '',
	required_progress_units INTEGER NOT NULL
);

CREATE INDEX idx_lesson_templates_type ON lesson_templates (lesson_type);
`

const migration002Down = `
DROP TABLE IF EXISTS lesson_templates;
`

const migration003Up = `
CREATE TABLE appointments (
	id              UUID PRIMARY KEY,
	lesson_type     TEXT NOT NULL,
	start_time      TIMESTAMP WITH TIME ZONE NOT NULL,
	available_units INTEGER NOT NULL,
	instructor_name TEXT NOT NULL DEFAULT ''
);

CREATE INDEX idx_appointments_start_time ON appointments (start_time);

CREATE TABLE bookings (
	id          UUID PRIMARY KEY,
	user_id     UUID NOT NULL REFERENCES users (id),
	slot_id     UUID NOT NULL REFERENCES appointments (id),
	template_id INTEGER NOT NULL REFERENCES lesson_templates (id),
	created_at  TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, slot_id)
);

CREATE INDEX idx_bookings_slot ON bookings (slot_id);
CREATE INDEX idx_bookings_user ON bookings (user_id);

CREATE TABLE lessons (
	id              BIGSERIAL PRIMARY KEY,
	user_id         UUID NOT NULL REFERENCES users (id),
	appointment_id  UUID REFERENCES appointments (id),
	template_id     INTEGER NOT NULL REFERENCES lesson_templates (id),
	progress_units  INTEGER NOT NULL DEFAULT 0,
	completed       BOOLEAN NOT NULL DEFAULT FALSE,
	instructor_name TEXT NOT NULL DEFAULT '',
	end_date        TIMESTAMP WITH TIME ZONE
);

CREATE INDEX idx_lessons_user ON lessons (user_id);
CREATE INDEX idx_lessons_appointment ON lessons (appointment_id);
`

const migration003Down = `
DROP TABLE IF EXISTS lessons;
DROP TABLE IF EXISTS bookings;
DROP TABLE IF EXISTS appointments;
`

// Учебный план по умолчанию: теория и практика чередуются, как того
// требует движок допуска. Школа может править план через SaveTemplate,
// поэтому ON CONFLICT ничего не перезаписывает.
const migration004Up = `
INSERT INTO lesson_templates (id, lesson_type, title, description, required_progress_units) VALUES
	(1,  'theoretical', 'Introduktion',              'Traffic rules, road signs and the structure of the course', 4),
	(2,  'practical',   'Manoeuvres on closed track', 'Starting, stopping, steering and reversing on the kravlegaard', 4),
	(3,  'theoretical', 'Road conditions',            'Junctions, right of way and positioning on the road', 4),
	(4,  'practical',   'City driving I',             'First lessons in light city traffic', 4),
	(5,  'theoretical', 'Other road users',           'Pedestrians, cyclists and heavy vehicles', 4),
	(6,  'practical',   'City driving II',            'Dense traffic, lane changes and roundabouts', 4),
	(7,  'theoretical', 'Motorway theory',            'Speed, distance and overtaking on motorways', 4),
	(8,  'practical',   'Motorway driving',           'Entering, overtaking and exiting the motorway', 4),
	(9,  'theoretical', 'Risk awareness',             'Alcohol, fatigue and hazard perception', 4),
	(10, 'practical',   'Evaluation drive',           'Full drive covering the complete syllabus before the test', 4)
ON CONFLICT (id) DO NOTHING;
`

const migration004Down = `
DELETE FROM lesson_templates WHERE id BETWEEN 1 AND 10;
`
