package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"invoicer/internal/domain"
	"invoicer/internal/port"
)

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(ctx context.Context, inv *domain.Invoice, items []domain.InvoiceItem) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.Status == "" {
		inv.Status = domain.InvoiceStatusPending
	}
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO invoices
			(id, invoice_number, client_id, issue_date, due_date, status, subtotal, tax_rate, tax, total,
			 metadata, notes, terms, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			inv.ID, inv.InvoiceNumber, inv.ClientID, inv.IssueDate, inv.DueDate, inv.Status,
			inv.Subtotal, inv.TaxRate, inv.Tax, inv.Total, inv.Metadata, inv.Notes, inv.Terms,
			inv.CreatedAt, inv.UpdatedAt)
		if err != nil {
			return fmt.Errorf("invoiceRepo.Create: %w", err)
		}
		if err := insertItems(ctx, tx, inv.ID, items); err != nil {
			return fmt.Errorf("invoiceRepo.Create items: %w", err)
		}
		return nil
	})
}

func insertItems(ctx context.Context, tx *sqlx.Tx, invoiceID uuid.UUID, items []domain.InvoiceItem) error {
	for i := range items {
		it := &items[i]
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		it.InvoiceID = invoiceID
		it.Position = i
		_, err := tx.ExecContext(ctx, `INSERT INTO invoice_items
			(id, invoice_id, position, description, raw_description, quantity, rate, amount, item_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			it.ID, it.InvoiceID, it.Position, it.Description, it.RawDescription,
			it.Quantity, it.Rate, it.Amount, it.ItemDate)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.GetContext(ctx, &inv, "SELECT * FROM invoices WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) GetDetail(ctx context.Context, id uuid.UUID) (*domain.InvoiceDetail, error) {
	inv, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &domain.InvoiceDetail{Invoice: *inv, Items: []domain.InvoiceItem{}}

	if inv.ClientID != nil {
		var c domain.Client
		err := r.db.GetContext(ctx, &c, "SELECT * FROM clients WHERE id = $1", *inv.ClientID)
		switch {
		case err == nil:
			detail.Client = &c
		case !errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("invoiceRepo.GetDetail client: %w", err)
		}
	}

	err = r.db.SelectContext(ctx, &detail.Items,
		"SELECT * FROM invoice_items WHERE invoice_id = $1 ORDER BY position ASC, item_date ASC", id)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.GetDetail items: %w", err)
	}
	return detail, nil
}

func (r *invoiceRepo) List(ctx context.Context, filter domain.InvoiceFilter, today time.Time) ([]domain.InvoiceSummary, int, error) {
	var conds []string
	var args []interface{}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.ClientID != nil {
		add("i.client_id = $%d", *filter.ClientID)
	}
	switch filter.Status {
	case "":
	case domain.InvoiceStatusOverdue:
		conds = append(conds, "i.status <> 'paid'")
		add("i.due_date < $%d", today)
	default:
		add("i.status = $%d", string(filter.Status))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM invoices i"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List count: %w", err)
	}

	query := `SELECT i.*, c.name AS client_name FROM invoices i
		LEFT JOIN clients c ON c.id = i.client_id` + where +
		" ORDER BY i.issue_date DESC, i.created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	invoices := []domain.InvoiceSummary{}
	if err := r.db.SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List: %w", err)
	}
	return invoices, total, nil
}

func (r *invoiceRepo) Update(ctx context.Context, inv *domain.Invoice, items []domain.InvoiceItem) error {
	inv.UpdatedAt = time.Now().UTC()
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `UPDATE invoices SET
			invoice_number = $1, client_id = $2, issue_date = $3, due_date = $4, subtotal = $5,
			tax_rate = $6, tax = $7, total = $8, notes = $9, terms = $10, updated_at = $11,
			metadata = CASE WHEN sent_at IS NULL THEN $12 ELSE metadata END
			WHERE id = $13`,
			inv.InvoiceNumber, inv.ClientID, inv.IssueDate, inv.DueDate, inv.Subtotal,
			inv.TaxRate, inv.Tax, inv.Total, inv.Notes, inv.Terms, inv.UpdatedAt, inv.Metadata, inv.ID)
		if err != nil {
			return fmt.Errorf("invoiceRepo.Update: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return domain.ErrInvoiceNotFound
		}
		if items == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM invoice_items WHERE invoice_id = $1", inv.ID); err != nil {
			return fmt.Errorf("invoiceRepo.Update delete items: %w", err)
		}
		if err := insertItems(ctx, tx, inv.ID, items); err != nil {
			return fmt.Errorf("invoiceRepo.Update items: %w", err)
		}
		return nil
	})
}

func (r *invoiceRepo) exec(ctx context.Context, op, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("invoiceRepo.%s: %w", op, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

func (r *invoiceRepo) UpdateFilePath(ctx context.Context, id uuid.UUID, path string) error {
	return r.exec(ctx, "UpdateFilePath",
		"UPDATE invoices SET file_path = $1, updated_at = $2 WHERE id = $3",
		path, time.Now().UTC(), id)
}

func (r *invoiceRepo) UpdateNotesTerms(ctx context.Context, id uuid.UUID, notes, terms string) error {
	return r.exec(ctx, "UpdateNotesTerms",
		"UPDATE invoices SET notes = $1, terms = $2, updated_at = $3 WHERE id = $4",
		notes, terms, time.Now().UTC(), id)
}

// MarkSent never downgrades a paid invoice and never replaces existing metadata.
func (r *invoiceRepo) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time, metadata *domain.InvoiceMetadata) error {
	return r.exec(ctx, "MarkSent",
		`UPDATE invoices SET
			status = CASE WHEN status = 'paid' THEN status ELSE 'sent' END,
			sent_at = $1,
			metadata = COALESCE(metadata, $2),
			updated_at = $3
		 WHERE id = $4`,
		sentAt, metadata, time.Now().UTC(), id)
}

func (r *invoiceRepo) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	return r.exec(ctx, "MarkPaid",
		"UPDATE invoices SET status = 'paid', paid_at = $1, updated_at = $2 WHERE id = $3",
		paidAt, time.Now().UTC(), id)
}

func (r *invoiceRepo) MarkTransferred(ctx context.Context, id uuid.UUID, transferredAt time.Time) error {
	return r.exec(ctx, "MarkTransferred",
		"UPDATE invoices SET transferred_at = $1, updated_at = $2 WHERE id = $3",
		transferredAt, time.Now().UTC(), id)
}

func (r *invoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, "Delete", "DELETE FROM invoices WHERE id = $1", id)
}

func (r *invoiceRepo) ListUnpaid(ctx context.Context) ([]domain.Invoice, error) {
	invoices := []domain.Invoice{}
	err := r.db.SelectContext(ctx, &invoices,
		"SELECT * FROM invoices WHERE status <> 'paid' ORDER BY due_date ASC")
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.ListUnpaid: %w", err)
	}
	return invoices, nil
}

func (r *invoiceRepo) ListNumbersByClient(ctx context.Context, clientID uuid.UUID) ([]string, error) {
	numbers := []string{}
	err := r.db.SelectContext(ctx, &numbers,
		"SELECT invoice_number FROM invoices WHERE client_id = $1", clientID)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.ListNumbersByClient: %w", err)
	}
	return numbers, nil
}
