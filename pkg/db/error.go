package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsDuplicateKeyErr reports whether err is a unique-constraint violation,
// regardless of the underlying dialect.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := err.Error()

	// PostgreSQL (error code 23505)
	if strings.Contains(msg, "duplicate key value violates unique constraint") {
		return true
	}

	// MySQL (error code 1062)
	if strings.Contains(msg, "Error 1062") {
		return true
	}

	// SQLite (error code 2067)
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return true
	}

	return false
}

// IsRetryableErr reports whether err is a transient lock or serialization
// failure that a bounded retry loop may recover from.
func IsRetryableErr(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	// PostgreSQL serialization / lock failures (40001, 40P01, 55P03)
	if strings.Contains(msg, "could not serialize access") ||
		strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "could not obtain lock") {
		return true
	}

	// MySQL (1213, 1205)
	if strings.Contains(msg, "Deadlock found") || strings.Contains(msg, "Lock wait timeout") {
		return true
	}

	// SQLite busy/locked
	if strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "SQLITE_BUSY") {
		return true
	}

	return false
}
