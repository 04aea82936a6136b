package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/vetclinic/internal/persistence"
)

// InvoiceRepository implements persistence.InvoiceRepository using SQLite.
type InvoiceRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewInvoiceRepository creates a new SQLite invoice repository.
func NewInvoiceRepository(pool *ConnectionPool) *InvoiceRepository {
	return &InvoiceRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const invoiceColumns = "id, owner_id, appointment_id, total_amount, status, issued_at, paid_at"

// CreateInvoice inserts a new invoice.
func (r *InvoiceRepository) CreateInvoice(ctx context.Context, invoice persistence.Invoice) error {
	if invoice.ID == "" || invoice.OwnerID == "" || invoice.Status == "" {
		return persistence.ErrConstraintViolation
	}

	if invoice.IssuedAt.IsZero() {
		invoice.IssuedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO invoices (id, owner_id, appointment_id, total_amount, status, issued_at, paid_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		invoice.ID,
		invoice.OwnerID,
		nullString(invoice.AppointmentID),
		invoice.TotalAmount,
		invoice.Status,
		invoice.IssuedAt.Format(time.RFC3339),
		formatTimePtr(invoice.PaidAt),
	)
	if err != nil {
		return mapInsertError(err, r.mapper)
	}

	return nil
}

// ListInvoicesByOwner returns an owner's invoices, most recently issued first.
func (r *InvoiceRepository) ListInvoicesByOwner(ctx context.Context, ownerID string) ([]persistence.Invoice, error) {
	rows, err := r.helper.Query(ctx,
		"SELECT "+invoiceColumns+" FROM invoices WHERE owner_id = ? ORDER BY issued_at DESC, id ASC",
		ownerID,
	)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var invoices []persistence.Invoice
	for rows.Next() {
		var invoice persistence.Invoice
		var appointmentID, paidAtStr sql.NullString
		var issuedAtStr string

		err := rows.Scan(
			&invoice.ID,
			&invoice.OwnerID,
			&appointmentID,
			&invoice.TotalAmount,
			&invoice.Status,
			&issuedAtStr,
			&paidAtStr,
		)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}

		invoice.AppointmentID = stringPtr(appointmentID)
		if invoice.IssuedAt, err = parseTime("issued_at", issuedAtStr); err != nil {
			return nil, err
		}
		if invoice.PaidAt, err = parseTimePtr("paid_at", paidAtStr); err != nil {
			return nil, err
		}

		invoices = append(invoices, invoice)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return invoices, nil
}
