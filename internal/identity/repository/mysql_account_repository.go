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

const mysqlAccountColumns = `id, email, password_hash, status, role, first_name, last_name, phone,
			  last_login_at, last_login_ip, created_at, updated_at`

// MySQLAccountRepository handles account persistence for MySQL.
// IDs are stored as BINARY(16).
type MySQLAccountRepository struct {
	db     *sql.DB
	cipher cryptoService.SecretCipher
}

// NewMySQLAccountRepository creates a new MySQLAccountRepository
func NewMySQLAccountRepository(db *sql.DB, cipher cryptoService.SecretCipher) *MySQLAccountRepository {
	return &MySQLAccountRepository{
		db:     db,
		cipher: cipher,
	}
}

// Create inserts a new account
func (r *MySQLAccountRepository) Create(ctx context.Context, account *identityDomain.Account) error {
	querier := database.GetTx(ctx, r.db)

	phone, phoneHash, err := sealPhone(r.cipher, account.Phone)
	if err != nil {
		return err
	}

	id, err := account.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal account id")
	}

	query := `INSERT INTO accounts (id, email, password_hash, status, role, first_name, last_name, phone,
			  phone_hash, last_login_at, last_login_ip, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query,
		id, account.Email, account.PasswordHash, string(account.Status), string(account.Role),
		account.FirstName, account.LastName, phone, phoneHash,
		account.LastLoginAt, account.LastLoginIP, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return identityDomain.ErrAccountAlreadyRegistered
		}
		return apperrors.Wrap(err, "failed to create account")
	}
	return nil
}

// Update persists every mutable account field.
// MySQL reports zero affected rows for an unchanged row, so existence is not checked here.
func (r *MySQLAccountRepository) Update(ctx context.Context, account *identityDomain.Account) error {
	querier := database.GetTx(ctx, r.db)

	phone, phoneHash, err := sealPhone(r.cipher, account.Phone)
	if err != nil {
		return err
	}

	id, err := account.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal account id")
	}

	query := `UPDATE accounts
			  SET email = ?, password_hash = ?, status = ?, role = ?, first_name = ?, last_name = ?,
			      phone = ?, phone_hash = ?, last_login_at = ?, last_login_ip = ?, updated_at = ?
			  WHERE id = ?`

	_, err = querier.ExecContext(ctx, query,
		account.Email, account.PasswordHash, string(account.Status), string(account.Role),
		account.FirstName, account.LastName, phone, phoneHash,
		account.LastLoginAt, account.LastLoginIP, account.UpdatedAt, id,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return identityDomain.ErrAccountAlreadyRegistered
		}
		return apperrors.Wrap(err, "failed to update account")
	}
	return nil
}

// GetByID retrieves an account by ID
func (r *MySQLAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*identityDomain.Account, error) {
	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal account id")
	}

	query := `SELECT ` + mysqlAccountColumns + ` FROM accounts WHERE id = ?`
	return r.get(ctx, query, idBytes)
}

// GetByEmail retrieves an account by normalized email
func (r *MySQLAccountRepository) GetByEmail(ctx context.Context, email string) (*identityDomain.Account, error) {
	query := `SELECT ` + mysqlAccountColumns + ` FROM accounts WHERE email = ?`
	return r.get(ctx, query, email)
}

// CountOrders returns the number of orders placed by the account
func (r *MySQLAccountRepository) CountOrders(ctx context.Context, accountID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	id, err := accountID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal account id")
	}

	var count int64
	err = querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE account_id = ?`, id).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count orders")
	}
	return count, nil
}

func (r *MySQLAccountRepository) get(ctx context.Context, query string, arg any) (*identityDomain.Account, error) {
	querier := database.GetTx(ctx, r.db)

	var account identityDomain.Account
	var idBytes []byte
	var status, role, phone string

	err := querier.QueryRowContext(ctx, query, arg).Scan(
		&idBytes, &account.Email, &account.PasswordHash, &status, &role,
		&account.FirstName, &account.LastName, &phone,
		&account.LastLoginAt, &account.LastLoginIP, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identityDomain.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get account")
	}

	if err := account.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal account id")
	}

	account.Status = identityDomain.Status(status)
	account.Role = identityDomain.Role(role)
	if account.Phone, err = openPhone(r.cipher, phone); err != nil {
		return nil, err
	}

	return &account, nil
}
