package service

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Фатальные ошибки ядра. Предупреждения (model.Warning) к ним не относятся:
// они собираются набором и возвращаются вызывающему вместе с результатом.

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrExamSlotNotFound     = errors.New("exam slot not found")
	ErrExamNotFound         = errors.New("exam not found")
	ErrCourseUserNotFound   = errors.New("course user not found")
	ErrCourseNotFound       = errors.New("course not found")
	ErrExamMismatch         = errors.New("exam slot belongs to a different exam")
)

// ValidationError ошибка валидации с привязкой к полю
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// OverlapError конфликт интервалов расписания: в одной аудитории одного
// экзамена интервалы пересекаться не могут
type OverlapError struct {
	ConflictingID int64
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("time slot overlaps with time slot %d", e.ConflictingID)
}

// IsRetryable определяет, стоит ли повторить транзакцию. Истечение ожидания
// блокировки, deadlock и сбой сериализации не означают неуспех операции —
// только то, что попытку нужно повторить.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case "40001", "40P01", "55P03":
		// serialization_failure, deadlock_detected, lock_not_available
		return true
	}

	return false
}
