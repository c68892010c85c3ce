package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/examreg/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const regColumns = `id, exam_id, course_user_id, exam_slot_id, access_code,
	checkin_room_id, checkin_user_id, checkin_time_in, checkin_time_out, checkin_notes, created_at`

type RegistrationRepository struct {
	pool *pgxpool.Pool
}

func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{pool: pool}
}

// Create создаёт новую запись на экзамен
func (r *RegistrationRepository) Create(ctx context.Context, reg *model.ExamRegistration) error {
	query := `
		INSERT INTO exam_registrations (exam_id, course_user_id, exam_slot_id, access_code)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		reg.ExamID,
		reg.CourseUserID,
		reg.ExamSlotID,
		reg.AccessCode,
	).Scan(&reg.ID, &reg.CreatedAt)

	if err != nil {
		return fmt.Errorf("create registration: %w", err)
	}

	return nil
}

// IsUniqueViolation проверяет нарушение уникальности (exam, course_user) —
// признак гонки двух одновременных get-or-create
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// GetByID получает запись по ID
func (r *RegistrationRepository) GetByID(ctx context.Context, id int64) (*model.ExamRegistration, error) {
	query := `SELECT ` + regColumns + ` FROM exam_registrations WHERE id = $1`

	reg, err := scanRegistration(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get registration by id: %w", err)
	}

	return reg, nil
}

// GetByIDForUpdateTx получает запись по ID и блокирует её строку.
// Блокировка сериализует конкурирующие переназначения одной записи.
func (r *RegistrationRepository) GetByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*model.ExamRegistration, error) {
	query := `SELECT ` + regColumns + ` FROM exam_registrations WHERE id = $1 FOR UPDATE`

	reg, err := scanRegistration(tx.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("lock registration: %w", err)
	}

	return reg, nil
}

// GetByExamAndUser получает запись по уникальной паре (exam, course_user)
func (r *RegistrationRepository) GetByExamAndUser(ctx context.Context, examID, courseUserID int64) (*model.ExamRegistration, error) {
	query := `SELECT ` + regColumns + ` FROM exam_registrations WHERE exam_id = $1 AND course_user_id = $2`

	reg, err := scanRegistration(r.pool.QueryRow(ctx, query, examID, courseUserID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get registration by exam and user: %w", err)
	}

	return reg, nil
}

// SetExamSlotTx обновляет ссылку записи на слот (nil снимает назначение)
func (r *RegistrationRepository) SetExamSlotTx(ctx context.Context, tx pgx.Tx, regID int64, examSlotID *int64) error {
	query := `
		UPDATE exam_registrations
		SET exam_slot_id = $1
		WHERE id = $2
	`

	result, err := tx.Exec(ctx, query, examSlotID, regID)
	if err != nil {
		return fmt.Errorf("set exam slot: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("registration not found")
	}

	return nil
}

// CountBySlotTx считает записи, указывающие на слот (истинная занятость)
func (r *RegistrationRepository) CountBySlotTx(ctx context.Context, tx pgx.Tx, slotID int64) (int, error) {
	query := `SELECT COUNT(*) FROM exam_registrations WHERE exam_slot_id = $1`

	var count int
	if err := tx.QueryRow(ctx, query, slotID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count registrations by slot: %w", err)
	}

	return count, nil
}

// UpdateCheckin сохраняет отметку о явке (обычное обновление полей,
// без блокировок — конкуренции здесь нет)
func (r *RegistrationRepository) UpdateCheckin(ctx context.Context, reg *model.ExamRegistration) error {
	query := `
		UPDATE exam_registrations
		SET checkin_room_id = $1, checkin_user_id = $2, checkin_time_in = $3,
		    checkin_time_out = $4, checkin_notes = $5
		WHERE id = $6
	`

	result, err := r.pool.Exec(
		ctx, query,
		reg.CheckinRoomID,
		reg.CheckinUserID,
		reg.CheckinTimeIn,
		reg.CheckinTimeOut,
		reg.CheckinNotes,
		reg.ID,
	)
	if err != nil {
		return fmt.Errorf("update checkin: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("registration not found")
	}

	return nil
}

// ListByExam получает все записи экзамена
func (r *RegistrationRepository) ListByExam(ctx context.Context, examID int64) ([]*model.ExamRegistration, error) {
	query := `SELECT ` + regColumns + ` FROM exam_registrations WHERE exam_id = $1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, examID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []*model.ExamRegistration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, reg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}

	return regs, nil
}

func scanRegistration(row pgx.Row) (*model.ExamRegistration, error) {
	var reg model.ExamRegistration

	err := row.Scan(
		&reg.ID,
		&reg.ExamID,
		&reg.CourseUserID,
		&reg.ExamSlotID,
		&reg.AccessCode,
		&reg.CheckinRoomID,
		&reg.CheckinUserID,
		&reg.CheckinTimeIn,
		&reg.CheckinTimeOut,
		&reg.CheckinNotes,
		&reg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &reg, nil
}
