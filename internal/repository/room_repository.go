package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/examreg/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoomRepository struct {
	pool *pgxpool.Pool
}

func NewRoomRepository(pool *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

// Create создаёт новую аудиторию
func (r *RoomRepository) Create(ctx context.Context, room *model.Room) error {
	query := `
		INSERT INTO rooms (course_id, name, capacity)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query, room.CourseID, room.Name, room.Capacity).
		Scan(&room.ID)

	if err != nil {
		return fmt.Errorf("create room: %w", err)
	}

	return nil
}

// GetByID получает аудиторию по ID
func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*model.Room, error) {
	query := `
		SELECT id, course_id, name, capacity
		FROM rooms
		WHERE id = $1
	`

	var room model.Room
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&room.ID,
		&room.CourseID,
		&room.Name,
		&room.Capacity,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get room by id: %w", err)
	}

	return &room, nil
}

// Update обновляет аудиторию
func (r *RoomRepository) Update(ctx context.Context, room *model.Room) error {
	query := `
		UPDATE rooms
		SET name = $1, capacity = $2
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, room.Name, room.Capacity, room.ID)
	if err != nil {
		return fmt.Errorf("update room: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("room not found")
	}

	return nil
}

// Delete удаляет аудиторию
func (r *RoomRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM rooms WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("room not found")
	}

	return nil
}

// ListByCourse получает все аудитории курса
func (r *RoomRepository) ListByCourse(ctx context.Context, courseID int64) ([]*model.Room, error) {
	query := `
		SELECT id, course_id, name, capacity
		FROM rooms
		WHERE course_id = $1
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*model.Room
	for rows.Next() {
		var room model.Room
		err := rows.Scan(
			&room.ID,
			&room.CourseID,
			&room.Name,
			&room.Capacity,
		)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, &room)
	}

	return rooms, nil
}
