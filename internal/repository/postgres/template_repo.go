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

type templateRepo struct {
	db *sqlx.DB
}

// NewTemplateRepo creates a new PostgreSQL-backed TemplateRepository.
func NewTemplateRepo(db *sqlx.DB) port.TemplateRepository {
	return &templateRepo{db: db}
}

func (r *templateRepo) Create(ctx context.Context, tpl *domain.EmailTemplate) error {
	if tpl.ID == uuid.Nil {
		tpl.ID = uuid.New()
	}
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO email_templates (id, name, subject, body, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		tpl.ID, tpl.Name, tpl.Subject, tpl.Body, tpl.CreatedAt, tpl.UpdatedAt)
	if err != nil {
		return fmt.Errorf("templateRepo.Create: %w", err)
	}
	return nil
}

func (r *templateRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.EmailTemplate, error) {
	var tpl domain.EmailTemplate
	err := r.db.GetContext(ctx, &tpl, "SELECT * FROM email_templates WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("templateRepo.GetByID: %w", err)
	}
	return &tpl, nil
}

func (r *templateRepo) First(ctx context.Context) (*domain.EmailTemplate, error) {
	var tpl domain.EmailTemplate
	err := r.db.GetContext(ctx, &tpl, "SELECT * FROM email_templates ORDER BY name ASC, created_at ASC LIMIT 1")
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("templateRepo.First: %w", err)
	}
	return &tpl, nil
}

func (r *templateRepo) List(ctx context.Context) ([]domain.EmailTemplate, error) {
	templates := []domain.EmailTemplate{}
	if err := r.db.SelectContext(ctx, &templates, "SELECT * FROM email_templates ORDER BY name ASC"); err != nil {
		return nil, fmt.Errorf("templateRepo.List: %w", err)
	}
	return templates, nil
}

func (r *templateRepo) Update(ctx context.Context, tpl *domain.EmailTemplate) error {
	tpl.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		"UPDATE email_templates SET name = $1, subject = $2, body = $3, updated_at = $4 WHERE id = $5",
		tpl.Name, tpl.Subject, tpl.Body, tpl.UpdatedAt, tpl.ID)
	if err != nil {
		return fmt.Errorf("templateRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}

func (r *templateRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM email_templates WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("templateRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}
