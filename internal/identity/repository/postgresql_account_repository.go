package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	cryptoService "github.com/allisson/identity/internal/crypto/service"
	"github.com/allisson/identity/internal/database"
	apperrors "github.com/allisson/identity/internal/errors"
	identityDomain "github.com/allisson/identity/internal/identity/domain"
)

const postgresAccountColumns = `id, email, password_hash, status, role, first_name, last_name, phone,
			  last_login_at, last_login_ip, created_at, updated_at`

// PostgreSQLAccountRepository handles account persistence for PostgreSQL
type PostgreSQLAccountRepository struct {
	db     *sql.DB
	cipher cryptoService.SecretCipher
}

// NewPostgreSQLAccountRepository creates a new PostgreSQLAccountRepository
func NewPostgreSQLAccountRepository(db *sql.DB, cipher cryptoService.SecretCipher) *PostgreSQLAccountRepository {
	return &PostgreSQLAccountRepository{
		db:     db,
		cipher: cipher,
	}
}

// Create inserts a new account
func (r *PostgreSQLAccountRepository) Create(ctx context.Context, account *identityDomain.Account) error {
	querier := database.GetTx(ctx, r.db)

	phone, phoneHash, err := sealPhone(r.cipher, account.Phone)
	if err != nil {
		return err
	}

	query := `INSERT INTO accounts (id, email, password_hash, status, role, first_name, last_name, phone,
			  phone_hash, last_login_at, last_login_ip, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = querier.ExecContext(ctx, query,
		account.ID, account.Email, account.PasswordHash, string(account.Status), string(account.Role),
		account.FirstName, account.LastName, phone, phoneHash,
		account.LastLoginAt, account.LastLoginIP, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return identityDomain.ErrAccountAlreadyRegistered
		}
		return apperrors.Wrap(err, "failed to create account")
	}
	return nil
}

// Update persists every mutable account field
func (r *PostgreSQLAccountRepository) Update(ctx context.Context, account *identityDomain.Account) error {
	querier := database.GetTx(ctx, r.db)

	phone, phoneHash, err := sealPhone(r.cipher, account.Phone)
	if err != nil {
		return err
	}

	query := `UPDATE accounts
			  SET email = $1, password_hash = $2, status = $3, role = $4, first_name = $5, last_name = $6,
			      phone = $7, phone_hash = $8, last_login_at = $9, last_login_ip = $10, updated_at = $11
			  WHERE id = $12`

	result, err := querier.ExecContext(ctx, query,
		account.Email, account.PasswordHash, string(account.Status), string(account.Role),
		account.FirstName, account.LastName, phone, phoneHash,
		account.LastLoginAt, account.LastLoginIP, account.UpdatedAt, account.ID,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return identityDomain.ErrAccountAlreadyRegistered
		}
		return apperrors.Wrap(err, "failed to update account")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if affected == 0 {
		return identityDomain.ErrAccountNotFound
	}
	return nil
}

// GetByID retrieves an account by ID
func (r *PostgreSQLAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*identityDomain.Account, error) {
	query := `SELECT ` + postgresAccountColumns + ` FROM accounts WHERE id = $1`
	return r.get(ctx, query, id)
}

// GetByEmail retrieves an account by normalized email
func (r *PostgreSQLAccountRepository) GetByEmail(ctx context.Context, email string) (*identityDomain.Account, error) {
	query := `SELECT ` + postgresAccountColumns + ` FROM accounts WHERE email = $1`
	return r.get(ctx, query, email)
}

// CountOrders returns the number of orders placed by the account
func (r *PostgreSQLAccountRepository) CountOrders(ctx context.Context, accountID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE account_id = $1`, accountID).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count orders")
	}
	return count, nil
}

func (r *PostgreSQLAccountRepository) get(ctx context.Context, query string, arg any) (*identityDomain.Account, error) {
	querier := database.GetTx(ctx, r.db)

	var account identityDomain.Account
	var status, role, phone string

	err := querier.QueryRowContext(ctx, query, arg).Scan(
		&account.ID, &account.Email, &account.PasswordHash, &status, &role,
		&account.FirstName, &account.LastName, &phone,
		&account.LastLoginAt, &account.LastLoginIP, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identityDomain.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get account")
	}

	account.Status = identityDomain.Status(status)
	account.Role = identityDomain.Role(role)
	if account.Phone, err = openPhone(r.cipher, phone); err != nil {
		return nil, err
	}

	return &account, nil
}
