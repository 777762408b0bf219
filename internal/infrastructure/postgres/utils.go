package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation нарушение уникальности (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// noRows строка не найдена; репозитории отвечают nil, nil.
func noRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
