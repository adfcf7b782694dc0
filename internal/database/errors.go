package database

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
	ErrTransient  = errors.New("store unavailable")
	ErrNotFound   = errors.New("not found")
)

// sqlite: SQLITE_CONSTRAINT_PRIMARYKEY, SQLITE_CONSTRAINT_UNIQUE
var sqliteUniqueCodes = map[int]struct{}{1555: {}, 2067: {}}

const pgUniqueViolation = "23505"

// Outcome результат мутации, которая не бросает ошибку наружу.
// OK это булев контракт, Cause остаётся для логов и строгих вызовов.
type Outcome struct {
	OK    bool
	Cause error
}

func succeeded() Outcome {
	return Outcome{OK: true}
}

// Err возвращает причину неудачи или nil
func (o Outcome) Err() error {
	if o.OK {
		return nil
	}
	if o.Cause == nil {
		return errors.New("operation failed")
	}
	return o.Cause
}

func (d *Database) fail(op string, cause error, fields ...zap.Field) Outcome {
	d.log.Warn(op+" failed", append(fields, zap.Error(cause))...)
	return Outcome{Cause: cause}
}

func validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// classify приводит ошибку хранилища к таксономии пакета
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrConflict) || errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) || errors.Is(err, ErrTransient) {
		return err
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrTransient, err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var coded interface{ Code() int }
	if errors.As(err, &coded) {
		_, ok := sqliteUniqueCodes[coded.Code()]
		return ok
	}
	return false
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
