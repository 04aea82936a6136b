package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// migrations holds every schema migration in execution order. Each entry runs
// inside its own transaction and is recorded in schema_migrations so reruns
// are no-ops.
var migrations = []struct {
	version string
	sql     string
}{
	{
		version: "001_users_sessions",
		sql: `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	full_name     TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL CHECK (role IN ('pet_owner', 'clinic_staff', 'admin')),
	is_approved   INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	token      TEXT NOT NULL UNIQUE,
	expires_at TEXT NOT NULL,
	revoked_at TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`,
	},
	{
		version: "002_pets_appointments",
		sql: `
CREATE TABLE IF NOT EXISTS pets (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL REFERENCES users(id),
	name       TEXT NOT NULL,
	species    TEXT NOT NULL DEFAULT '',
	breed      TEXT NOT NULL DEFAULT '',
	age        INTEGER CHECK (age IS NULL OR age >= 0),
	sex        TEXT NOT NULL DEFAULT '',
	notes      TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS appointments (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL REFERENCES users(id),
	pet_id     TEXT REFERENCES pets(id) ON DELETE SET NULL,
	pet_name   TEXT NOT NULL,
	date       TEXT NOT NULL,
	time       TEXT NOT NULL,
	reason     TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL CHECK (status IN ('pending', 'confirmed', 'rescheduled', 'cancelled')),
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_appointments_owner ON appointments(owner_id);
CREATE INDEX IF NOT EXISTS idx_appointments_date ON appointments(date, time);
`,
	},
	{
		version: "003_records_prescriptions_invoices",
		sql: `
CREATE TABLE IF NOT EXISTS medical_records (
	id             TEXT PRIMARY KEY,
	pet_id         TEXT NOT NULL REFERENCES pets(id) ON DELETE CASCADE,
	appointment_id TEXT REFERENCES appointments(id),
	staff_id       TEXT NOT NULL REFERENCES users(id),
	weight         REAL CHECK (weight IS NULL OR weight > 0),
	temperature    REAL,
	diagnosis      TEXT NOT NULL,
	notes          TEXT NOT NULL DEFAULT '',
	created_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS prescriptions (
	id                TEXT PRIMARY KEY,
	pet_id            TEXT NOT NULL REFERENCES pets(id) ON DELETE CASCADE,
	appointment_id    TEXT REFERENCES appointments(id),
	medical_record_id TEXT REFERENCES medical_records(id),
	staff_id          TEXT NOT NULL REFERENCES users(id),
	drug_name         TEXT NOT NULL,
	dosage            TEXT NOT NULL,
	frequency         TEXT NOT NULL DEFAULT '',
	duration          TEXT NOT NULL DEFAULT '',
	instructions      TEXT NOT NULL DEFAULT '',
	created_at        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS invoices (
	id             TEXT PRIMARY KEY,
	owner_id       TEXT NOT NULL REFERENCES users(id),
	appointment_id TEXT REFERENCES appointments(id),
	total_amount   REAL NOT NULL CHECK (total_amount > 0),
	status         TEXT NOT NULL CHECK (status IN ('unpaid', 'paid', 'cancelled')),
	issued_at      TEXT NOT NULL,
	paid_at        TEXT
);

CREATE INDEX IF NOT EXISTS idx_medical_records_pet ON medical_records(pet_id);
CREATE INDEX IF NOT EXISTS idx_prescriptions_pet ON prescriptions(pet_id);
CREATE INDEX IF NOT EXISTS idx_invoices_owner ON invoices(owner_id);
`,
	},
}

// Migrate applies all pending schema migrations in order.
func Migrate(ctx context.Context, pool *ConnectionPool) error {
	if _, err := pool.DB().ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to initialize version table: %w", err)
	}

	for _, m := range migrations {
		var applied int
		err := pool.DB().QueryRowContext(ctx,
			"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.version,
		).Scan(&applied)
		if err != nil {
			return fmt.Errorf("failed to check migration %s: %w", m.version, err)
		}
		if applied > 0 {
			continue
		}

		err = pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.Exec(m.sql); err != nil {
				return err
			}
			_, err := tx.Exec(
				"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
				m.version, time.Now().UTC().Format(time.RFC3339),
			)
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %s failed: %w", m.version, err)
		}
	}

	return nil
}
