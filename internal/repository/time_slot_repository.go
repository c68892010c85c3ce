package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/examreg/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TimeSlotRepository struct {
	pool *pgxpool.Pool
}

func NewTimeSlotRepository(pool *pgxpool.Pool) *TimeSlotRepository {
	return &TimeSlotRepository{pool: pool}
}

// Create создаёт новый интервал
func (r *TimeSlotRepository) Create(ctx context.Context, ts *model.TimeSlot) error {
	query := `
		INSERT INTO time_slots (exam_id, room_id, start_time, end_time, capacity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.pool.QueryRow(
		ctx, query,
		ts.ExamID,
		ts.RoomID,
		ts.StartTime,
		ts.EndTime,
		ts.Capacity,
	).Scan(&ts.ID)

	if err != nil {
		return fmt.Errorf("create time slot: %w", err)
	}

	return nil
}

// GetByID получает интервал по ID
func (r *TimeSlotRepository) GetByID(ctx context.Context, id int64) (*model.TimeSlot, error) {
	query := `
		SELECT id, exam_id, room_id, start_time, end_time, capacity
		FROM time_slots
		WHERE id = $1
	`

	var ts model.TimeSlot
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&ts.ID,
		&ts.ExamID,
		&ts.RoomID,
		&ts.StartTime,
		&ts.EndTime,
		&ts.Capacity,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get time slot by id: %w", err)
	}

	return &ts, nil
}

// Update обновляет интервал
func (r *TimeSlotRepository) Update(ctx context.Context, ts *model.TimeSlot) error {
	query := `
		UPDATE time_slots
		SET room_id = $1, start_time = $2, end_time = $3, capacity = $4
		WHERE id = $5
	`

	result, err := r.pool.Exec(
		ctx, query,
		ts.RoomID,
		ts.StartTime,
		ts.EndTime,
		ts.Capacity,
		ts.ID,
	)
	if err != nil {
		return fmt.Errorf("update time slot: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("time slot not found")
	}

	return nil
}

// Delete удаляет интервал
func (r *TimeSlotRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM time_slots WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete time slot: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("time slot not found")
	}

	return nil
}

// ListByExam получает все интервалы экзамена
func (r *TimeSlotRepository) ListByExam(ctx context.Context, examID int64) ([]*model.TimeSlot, error) {
	query := `
		SELECT id, exam_id, room_id, start_time, end_time, capacity
		FROM time_slots
		WHERE exam_id = $1
		ORDER BY start_time, id
	`

	rows, err := r.pool.Query(ctx, query, examID)
	if err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	defer rows.Close()

	return scanTimeSlots(rows)
}

// ListByExamAndRoom получает интервалы экзамена в заданной аудитории.
// Интервалы без аудитории (room_id IS NULL) образуют собственную группу.
// excludeID исключает обновляемый интервал из проверки пересечений.
func (r *TimeSlotRepository) ListByExamAndRoom(ctx context.Context, examID int64, roomID *int64, excludeID int64) ([]*model.TimeSlot, error) {
	query := `
		SELECT id, exam_id, room_id, start_time, end_time, capacity
		FROM time_slots
		WHERE exam_id = $1
		  AND room_id IS NOT DISTINCT FROM $2
		  AND id <> $3
		ORDER BY start_time, id
	`

	rows, err := r.pool.Query(ctx, query, examID, roomID, excludeID)
	if err != nil {
		return nil, fmt.Errorf("list time slots by room: %w", err)
	}
	defer rows.Close()

	return scanTimeSlots(rows)
}

// ListByIDs получает интервалы по списку идентификаторов
func (r *TimeSlotRepository) ListByIDs(ctx context.Context, ids []int64) ([]*model.TimeSlot, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, exam_id, room_id, start_time, end_time, capacity
		FROM time_slots
		WHERE id = ANY($1)
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("list time slots by ids: %w", err)
	}
	defer rows.Close()

	return scanTimeSlots(rows)
}

// LockByIDsTx блокирует строки интервалов в транзакции (FOR UPDATE).
// Строки всегда блокируются в порядке возрастания id, чтобы конкурирующие
// транзакции не могли взять блокировки в разном порядке и попасть в deadlock.
func (r *TimeSlotRepository) LockByIDsTx(ctx context.Context, tx pgx.Tx, ids []int64) ([]*model.TimeSlot, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, exam_id, room_id, start_time, end_time, capacity
		FROM time_slots
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("lock time slots: %w", err)
	}
	defer rows.Close()

	return scanTimeSlots(rows)
}

func scanTimeSlots(rows pgx.Rows) ([]*model.TimeSlot, error) {
	var slots []*model.TimeSlot
	for rows.Next() {
		var ts model.TimeSlot
		err := rows.Scan(
			&ts.ID,
			&ts.ExamID,
			&ts.RoomID,
			&ts.StartTime,
			&ts.EndTime,
			&ts.Capacity,
		)
		if err != nil {
			return nil, fmt.Errorf("scan time slot: %w", err)
		}
		slots = append(slots, &ts)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate time slots: %w", err)
	}

	return slots, nil
}
