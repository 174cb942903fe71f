// Package repository provides PostgreSQL and MySQL persistence for accounts and audit events.
//
// Account phone numbers are encrypted with the PII cipher before they reach the database. The
// phone_hash column holds the SHA-256 of the plaintext so equality lookups never need decryption.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	cryptoService "github.com/allisson/identity/internal/crypto/service"
	apperrors "github.com/allisson/identity/internal/errors"
)

// sealPhone returns the stored form of phone and its lookup hash. An empty phone stays empty.
func sealPhone(cipher cryptoService.SecretCipher, phone string) (string, string, error) {
	if phone == "" {
		return "", "", nil
	}
	encrypted, err := cipher.Encrypt(phone)
	if err != nil {
		return "", "", apperrors.Wrap(err, "failed to encrypt phone")
	}
	return encrypted, cipher.Hash(phone), nil
}

func openPhone(cipher cryptoService.SecretCipher, stored string) (string, error) {
	phone, err := cipher.Decrypt(stored)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to decrypt phone")
	}
	return phone, nil
}

// isPostgreSQLUniqueViolation reports a unique_violation (SQLSTATE 23505).
func isPostgreSQLUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// isMySQLUniqueViolation reports a duplicate entry (error 1062).
func isMySQLUniqueViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

