// Package storage реализует хранилище данных на основе PostgreSQL
// для учётных записей пользователей и журнала платежей. Все операции —
// одиночные атомарные запросы; блокировки внутри процесса не используются.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки хранилища. Сервисный слой переводит их в типизированные ошибки.
var (
	// ErrNotFound — запрошенная запись отсутствует.
	ErrNotFound = errors.New("storage: not found")
	// ErrDuplicate — нарушено ограничение уникальности (email, payment_id).
	ErrDuplicate = errors.New("storage: duplicate")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с пользователями и платежами.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{DB: db}, nil
}

// uniqueViolation — код ошибки PostgreSQL для нарушения уникального индекса.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
