package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/examreg/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ExamSlotRepository struct {
	pool *pgxpool.Pool
}

func NewExamSlotRepository(pool *pgxpool.Pool) *ExamSlotRepository {
	return &ExamSlotRepository{pool: pool}
}

// Create создаёт новый слот экзамена
func (r *ExamSlotRepository) Create(ctx context.Context, slot *model.ExamSlot) error {
	query := `
		INSERT INTO exam_slots (exam_id, start_time_slot_id, exam_slot_type)
		VALUES ($1, $2, $3)
		RETURNING id, reg_count
	`

	err := r.pool.QueryRow(
		ctx, query,
		slot.ExamID,
		slot.StartTimeSlotID,
		slot.ExamSlotType,
	).Scan(&slot.ID, &slot.RegCount)

	if err != nil {
		return fmt.Errorf("create exam slot: %w", err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *ExamSlotRepository) GetByID(ctx context.Context, id int64) (*model.ExamSlot, error) {
	query := `
		SELECT id, exam_id, start_time_slot_id, exam_slot_type, reg_count
		FROM exam_slots
		WHERE id = $1
	`

	var slot model.ExamSlot
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&slot.ID,
		&slot.ExamID,
		&slot.StartTimeSlotID,
		&slot.ExamSlotType,
		&slot.RegCount,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get exam slot by id: %w", err)
	}

	return &slot, nil
}

// GetByIDTx получает слот по ID в транзакции
func (r *ExamSlotRepository) GetByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*model.ExamSlot, error) {
	query := `
		SELECT id, exam_id, start_time_slot_id, exam_slot_type, reg_count
		FROM exam_slots
		WHERE id = $1
	`

	var slot model.ExamSlot
	err := tx.QueryRow(ctx, query, id).Scan(
		&slot.ID,
		&slot.ExamID,
		&slot.StartTimeSlotID,
		&slot.ExamSlotType,
		&slot.RegCount,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get exam slot by id: %w", err)
	}

	return &slot, nil
}

// Delete удаляет слот экзамена
func (r *ExamSlotRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM exam_slots WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete exam slot: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("exam slot not found")
	}

	return nil
}

// ListByExam получает слоты экзамена в порядке отображения:
// по началу якорного интервала, затем по категории
func (r *ExamSlotRepository) ListByExam(ctx context.Context, examID int64) ([]*model.ExamSlot, error) {
	query := `
		SELECT es.id, es.exam_id, es.start_time_slot_id, es.exam_slot_type, es.reg_count
		FROM exam_slots es
		JOIN time_slots anchor ON anchor.id = es.start_time_slot_id
		WHERE es.exam_id = $1
		ORDER BY anchor.start_time, es.exam_slot_type, es.id
	`

	rows, err := r.pool.Query(ctx, query, examID)
	if err != nil {
		return nil, fmt.Errorf("list exam slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.ExamSlot
	for rows.Next() {
		var slot model.ExamSlot
		err := rows.Scan(
			&slot.ID,
			&slot.ExamID,
			&slot.StartTimeSlotID,
			&slot.ExamSlotType,
			&slot.RegCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan exam slot: %w", err)
		}
		slots = append(slots, &slot)
	}

	return slots, nil
}

// SetTimeSlots заменяет набор интервалов слота
func (r *ExamSlotRepository) SetTimeSlots(ctx context.Context, slotID int64, timeSlotIDs []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM exam_slot_time_slots WHERE exam_slot_id = $1`, slotID)
	if err != nil {
		return fmt.Errorf("clear exam slot members: %w", err)
	}

	for _, tsID := range timeSlotIDs {
		_, err = tx.Exec(
			ctx,
			`INSERT INTO exam_slot_time_slots (exam_slot_id, time_slot_id) VALUES ($1, $2)`,
			slotID, tsID,
		)
		if err != nil {
			return fmt.Errorf("add exam slot member: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetTimeSlots получает интервалы слота
func (r *ExamSlotRepository) GetTimeSlots(ctx context.Context, slotID int64) ([]*model.TimeSlot, error) {
	query := `
		SELECT ts.id, ts.exam_id, ts.room_id, ts.start_time, ts.end_time, ts.capacity
		FROM time_slots ts
		JOIN exam_slot_time_slots m ON m.time_slot_id = ts.id
		WHERE m.exam_slot_id = $1
		ORDER BY ts.start_time, ts.id
	`

	rows, err := r.pool.Query(ctx, query, slotID)
	if err != nil {
		return nil, fmt.Errorf("get exam slot members: %w", err)
	}
	defer rows.Close()

	return scanTimeSlots(rows)
}

// GetTimeSlotIDsTx получает идентификаторы интервалов слота в транзакции
func (r *ExamSlotRepository) GetTimeSlotIDsTx(ctx context.Context, tx pgx.Tx, slotID int64) ([]int64, error) {
	query := `
		SELECT time_slot_id
		FROM exam_slot_time_slots
		WHERE exam_slot_id = $1
		ORDER BY time_slot_id
	`

	rows, err := tx.Query(ctx, query, slotID)
	if err != nil {
		return nil, fmt.Errorf("get exam slot member ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate member ids: %w", err)
	}

	return ids, nil
}

// AddRegCountTx изменяет денормализованный счётчик записей слота
func (r *ExamSlotRepository) AddRegCountTx(ctx context.Context, tx pgx.Tx, slotID int64, delta int) error {
	query := `
		UPDATE exam_slots
		SET reg_count = reg_count + $1
		WHERE id = $2
	`

	result, err := tx.Exec(ctx, query, delta, slotID)
	if err != nil {
		return fmt.Errorf("update reg count: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("exam slot not found")
	}

	return nil
}

// SetRegCountTx выставляет точное значение счётчика (используется сверкой)
func (r *ExamSlotRepository) SetRegCountTx(ctx context.Context, tx pgx.Tx, slotID int64, count int) error {
	query := `
		UPDATE exam_slots
		SET reg_count = $1
		WHERE id = $2
	`

	result, err := tx.Exec(ctx, query, count, slotID)
	if err != nil {
		return fmt.Errorf("set reg count: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("exam slot not found")
	}

	return nil
}

// WindowOccupancyTx считает суммарную занятость интервала: сумму reg_count
// всех слотов, в которые интервал входит. Счётчик каждого отдельного слота
// недостаточен, потому что разные слоты могут делить один интервал.
func (r *ExamSlotRepository) WindowOccupancyTx(ctx context.Context, tx pgx.Tx, timeSlotID int64) (int, error) {
	query := `
		SELECT COALESCE(SUM(es.reg_count), 0)
		FROM exam_slots es
		JOIN exam_slot_time_slots m ON m.exam_slot_id = es.id
		WHERE m.time_slot_id = $1
	`

	var occupancy int
	if err := tx.QueryRow(ctx, query, timeSlotID).Scan(&occupancy); err != nil {
		return 0, fmt.Errorf("window occupancy: %w", err)
	}

	return occupancy, nil
}

// WindowOccupancy то же, но вне транзакции (снимок для отображения)
func (r *ExamSlotRepository) WindowOccupancy(ctx context.Context, timeSlotID int64) (int, error) {
	query := `
		SELECT COALESCE(SUM(es.reg_count), 0)
		FROM exam_slots es
		JOIN exam_slot_time_slots m ON m.exam_slot_id = es.id
		WHERE m.time_slot_id = $1
	`

	var occupancy int
	if err := r.pool.QueryRow(ctx, query, timeSlotID).Scan(&occupancy); err != nil {
		return 0, fmt.Errorf("window occupancy: %w", err)
	}

	return occupancy, nil
}

// ListIDs получает идентификаторы всех слотов (для полного прохода сверки)
func (r *ExamSlotRepository) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, "SELECT id FROM exam_slots ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list exam slot ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan exam slot id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exam slot ids: %w", err)
	}

	return ids, nil
}

// ListIDsByTimeSlots получает идентификаторы всех слотов, делящих хотя бы
// один из указанных интервалов (используется для сброса кэша)
func (r *ExamSlotRepository) ListIDsByTimeSlots(ctx context.Context, timeSlotIDs []int64) ([]int64, error) {
	if len(timeSlotIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT DISTINCT exam_slot_id
		FROM exam_slot_time_slots
		WHERE time_slot_id = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, timeSlotIDs)
	if err != nil {
		return nil, fmt.Errorf("list exam slots by time slots: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan exam slot id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exam slot ids: %w", err)
	}

	return ids, nil
}
