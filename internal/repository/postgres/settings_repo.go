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

type settingsRepo struct {
	db *sqlx.DB
}

// NewSettingsRepo creates a new PostgreSQL-backed SettingsRepository.
func NewSettingsRepo(db *sqlx.DB) port.SettingsRepository {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) Get(ctx context.Context) (*domain.BusinessSettings, error) {
	var s domain.BusinessSettings
	err := r.db.GetContext(ctx, &s, "SELECT * FROM business_settings ORDER BY created_at ASC LIMIT 1")
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("settingsRepo.Get: %w", err)
	}
	return &s, nil
}

// Upsert updates the existing row or inserts the first one.
func (r *settingsRepo) Upsert(ctx context.Context, s *domain.BusinessSettings) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var existing uuid.UUID
		err := tx.GetContext(ctx, &existing,
			"SELECT id FROM business_settings ORDER BY created_at ASC LIMIT 1 FOR UPDATE")
		now := time.Now().UTC()
		s.UpdatedAt = now

		switch {
		case errors.Is(err, sql.ErrNoRows):
			if s.ID == uuid.Nil {
				s.ID = uuid.New()
			}
			s.CreatedAt = now
			_, err = tx.NamedExecContext(ctx, `INSERT INTO business_settings
				(id, company_name, owner_name, address, city, state, postal_code, country, email, phone,
				 beneficiary_name, beneficiary_cnpj, swift_code, bank_name, bank_address, routing_number,
				 account_number, account_type, created_at, updated_at)
				VALUES (:id, :company_name, :owner_name, :address, :city, :state, :postal_code, :country,
				 :email, :phone, :beneficiary_name, :beneficiary_cnpj, :swift_code, :bank_name, :bank_address,
				 :routing_number, :account_number, :account_type, :created_at, :updated_at)`, s)
			if err != nil {
				return fmt.Errorf("settingsRepo.Upsert insert: %w", err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("settingsRepo.Upsert lookup: %w", err)
		}

		s.ID = existing
		_, err = tx.NamedExecContext(ctx, `UPDATE business_settings SET
			company_name = :company_name, owner_name = :owner_name, address = :address, city = :city,
			state = :state, postal_code = :postal_code, country = :country, email = :email, phone = :phone,
			beneficiary_name = :beneficiary_name, beneficiary_cnpj = :beneficiary_cnpj,
			swift_code = :swift_code, bank_name = :bank_name, bank_address = :bank_address,
			routing_number = :routing_number, account_number = :account_number,
			account_type = :account_type, updated_at = :updated_at
			WHERE id = :id`, s)
		if err != nil {
			return fmt.Errorf("settingsRepo.Upsert update: %w", err)
		}
		return nil
	})
}
