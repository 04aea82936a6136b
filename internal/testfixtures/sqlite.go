package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/vetclinic/internal/persistence"
	"github.com/example/vetclinic/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Users         persistence.UserRepository
	Sessions      persistence.SessionRepository
	Pets          persistence.PetRepository
	Appointments  persistence.AppointmentRepository
	Records       persistence.MedicalRecordRepository
	Prescriptions persistence.PrescriptionRepository
	Invoices      persistence.InvoiceRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a harness over a temporary database file that
// is migrated automatically. A cleanup callback is registered with the
// provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	dsn := "file:" + filepath.Join(dir, "vetclinic.db")

	pool, err := sqlite.NewConnectionPool(sqlite.DefaultConfig(dsn))
	if err != nil {
		tb.Fatalf("failed to open database: %v", err)
	}

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate database: %v", err)
	}

	harness := &SQLiteHarness{
		Users:         sqlite.NewUserRepository(pool),
		Sessions:      sqlite.NewSessionRepository(pool),
		Pets:          sqlite.NewPetRepository(pool),
		Appointments:  sqlite.NewAppointmentRepository(pool),
		Records:       sqlite.NewMedicalRecordRepository(pool),
		Prescriptions: sqlite.NewPrescriptionRepository(pool),
		Invoices:      sqlite.NewInvoiceRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
