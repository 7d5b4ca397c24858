package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/OpenGescom/compta_ledger/internal/apperrors"
	"github.com/OpenGescom/compta_ledger/internal/core/domain"
	portsrepo "github.com/OpenGescom/compta_ledger/internal/core/ports/repositories"
	"github.com/OpenGescom/compta_ledger/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAccountRepository struct {
	BaseRepository
}

func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepository = (*PgxAccountRepository)(nil)

func toModelAccount(d domain.Account) models.Account {
	return models.Account{
		Number:       d.Number,
		Label:        d.Label,
		Class:        d.Class,
		Nature:       string(d.Nature),
		Type:         string(d.Type),
		IsActive:     d.IsActive,
		Reconcilable: d.Reconcilable,
		ParentNumber: d.ParentNumber,
		TotalDebit:   d.TotalDebit,
		TotalCredit:  d.TotalCredit,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		Number:       m.Number,
		Label:        m.Label,
		Class:        m.Class,
		Nature:       domain.AccountNature(m.Nature),
		Type:         domain.AccountType(m.Type),
		IsActive:     m.IsActive,
		Reconcilable: m.Reconcilable,
		ParentNumber: m.ParentNumber,
		TotalDebit:   m.TotalDebit,
		TotalCredit:  m.TotalCredit,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const accountColumns = `number, label, class, nature, account_type, is_active, reconcilable, parent_number, total_debit, total_credit, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var m models.Account
	var parentNumber sql.NullString
	err := row.Scan(
		&m.Number, &m.Label, &m.Class, &m.Nature, &m.Type, &m.IsActive, &m.Reconcilable,
		&parentNumber, &m.TotalDebit, &m.TotalCredit,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	m.ParentNumber = parentNumber.String
	return &m, nil
}

// SaveAccount inserts a new chart account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := toModelAccount(account)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	var parentNumber sql.NullString
	if m.ParentNumber != "" {
		parentNumber = sql.NullString{String: m.ParentNumber, Valid: true}
	}

	_, err := r.Pool.Exec(ctx, query,
		m.Number, m.Label, m.Class, m.Nature, m.Type, m.IsActive, m.Reconcilable,
		parentNumber, m.TotalDebit, m.TotalCredit,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account %s already exists", apperrors.ErrDuplicate, m.Number)
		}
		return fmt.Errorf("failed to save account %s: %w", m.Number, err)
	}
	return nil
}

// FindAccountByNumber fetches one account by its number.
func (r *PgxAccountRepository) FindAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE number = $1;`

	m, err := scanAccount(r.Pool.QueryRow(ctx, query, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, number)
		}
		return nil, fmt.Errorf("failed to find account %s: %w", number, err)
	}
	account := toDomainAccount(*m)
	return &account, nil
}

// FindAccountsByNumbers fetches a batch of accounts keyed by number. Missing
// numbers are simply absent from the map; callers decide whether that is an
// error.
func (r *PgxAccountRepository) FindAccountsByNumbers(ctx context.Context, numbers []string) (map[string]domain.Account, error) {
	if len(numbers) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE number = ANY($1);`

	rows, err := r.Pool.Query(ctx, query, numbers)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.Account)
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts[m.Number] = toDomainAccount(*m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}
	return accounts, nil
}

// ListAccounts returns all accounts in chart order.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY number;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, toDomainAccount(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}
	return accounts, nil
}

// ApplyBalanceChange adds to the running totals as a single atomic UPDATE.
func (r *PgxAccountRepository) ApplyBalanceChange(ctx context.Context, number string, change domain.BalanceChange, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE accounts
		SET total_debit = total_debit + $2,
		    total_credit = total_credit + $3,
		    last_updated_at = $4,
		    last_updated_by = $5
		WHERE number = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, number, change.Debit, change.Credit, updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to apply balance change to account %s: %w", number, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, number)
	}
	return nil
}

// ApplyBalanceChangesInTx applies a batch of balance changes inside an
// ambient posting transaction.
func (r *PgxAccountRepository) ApplyBalanceChangesInTx(ctx context.Context, tx pgx.Tx, changes map[string]domain.BalanceChange, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE accounts
		SET total_debit = total_debit + $2,
		    total_credit = total_credit + $3,
		    last_updated_at = $4,
		    last_updated_by = $5
		WHERE number = $1;
	`
	batch := &pgx.Batch{}
	for number, change := range changes {
		batch.Queue(query, number, change.Debit, change.Credit, updatedAt, updatedBy)
	}

	br := tx.SendBatch(ctx, batch)
	defer br.Close()
	for range changes {
		tag, err := br.Exec()
		if err != nil {
			return fmt.Errorf("failed to apply balance changes: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: account targeted by balance change", apperrors.ErrNotFound)
		}
	}
	return nil
}

// DeactivateAccount flags an account inactive. No hard delete exists.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, number string, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE number = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, number, updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", number, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, number)
	}
	return nil
}
