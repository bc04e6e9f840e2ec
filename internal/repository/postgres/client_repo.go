package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"invoicer/internal/domain"
	"invoicer/internal/port"
)

type clientRepo struct {
	db *sqlx.DB
}

// NewClientRepo creates a new PostgreSQL-backed ClientRepository.
func NewClientRepo(db *sqlx.DB) port.ClientRepository {
	return &clientRepo{db: db}
}

func (r *clientRepo) Create(ctx context.Context, c *domain.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `INSERT INTO clients
		(id, name, address, city, state, postal_code, country, target_email, cc_email,
		 rate, reminder_type, email_template_id, google_drive_folder_url, terms, created_at, updated_at)
		VALUES (:id, :name, :address, :city, :state, :postal_code, :country, :target_email, :cc_email,
		 :rate, :reminder_type, :email_template_id, :google_drive_folder_url, :terms, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		return fmt.Errorf("clientRepo.Create: %w", err)
	}
	return nil
}

func (r *clientRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	var c domain.Client
	err := r.db.GetContext(ctx, &c, "SELECT * FROM clients WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("clientRepo.GetByID: %w", err)
	}
	return &c, nil
}

func (r *clientRepo) List(ctx context.Context) ([]domain.Client, error) {
	clients := []domain.Client{}
	if err := r.db.SelectContext(ctx, &clients, "SELECT * FROM clients ORDER BY name ASC"); err != nil {
		return nil, fmt.Errorf("clientRepo.List: %w", err)
	}
	return clients, nil
}

func (r *clientRepo) ListByReminderTypes(ctx context.Context, types []domain.ReminderType) ([]domain.Client, error) {
	clients := []domain.Client{}
	if len(types) == 0 {
		return clients, nil
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	query, args, err := sqlx.In("SELECT * FROM clients WHERE reminder_type IN (?) ORDER BY name ASC", names)
	if err != nil {
		return nil, fmt.Errorf("clientRepo.ListByReminderTypes build: %w", err)
	}
	if err := r.db.SelectContext(ctx, &clients, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("clientRepo.ListByReminderTypes: %w", err)
	}
	return clients, nil
}

func (r *clientRepo) Update(ctx context.Context, c *domain.Client) error {
	c.UpdatedAt = time.Now().UTC()
	query := `UPDATE clients SET
		name = :name, address = :address, city = :city, state = :state, postal_code = :postal_code,
		country = :country, target_email = :target_email, cc_email = :cc_email, rate = :rate,
		reminder_type = :reminder_type, email_template_id = :email_template_id,
		google_drive_folder_url = :google_drive_folder_url, terms = :terms, updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, c)
	if err != nil {
		return fmt.Errorf("clientRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *clientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM clients WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("clientRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}
