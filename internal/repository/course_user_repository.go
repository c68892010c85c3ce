package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/examreg/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CourseUserRepository struct {
	pool *pgxpool.Pool
}

func NewCourseUserRepository(pool *pgxpool.Pool) *CourseUserRepository {
	return &CourseUserRepository{pool: pool}
}

// Create добавляет участника в курс
func (r *CourseUserRepository) Create(ctx context.Context, cu *model.CourseUser) error {
	query := `
		INSERT INTO course_users (course_id, username, user_type, exam_slot_type, lecture, section, dropped)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		cu.CourseID,
		cu.Username,
		cu.UserType,
		cu.ExamSlotType,
		cu.Lecture,
		cu.Section,
		cu.Dropped,
	).Scan(&cu.ID, &cu.CreatedAt)

	if err != nil {
		return fmt.Errorf("create course user: %w", err)
	}

	return nil
}

// GetByID получает участника по ID
func (r *CourseUserRepository) GetByID(ctx context.Context, id int64) (*model.CourseUser, error) {
	query := `
		SELECT id, course_id, username, user_type, exam_slot_type, lecture, section, dropped, created_at
		FROM course_users
		WHERE id = $1
	`

	var cu model.CourseUser
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&cu.ID,
		&cu.CourseID,
		&cu.Username,
		&cu.UserType,
		&cu.ExamSlotType,
		&cu.Lecture,
		&cu.Section,
		&cu.Dropped,
		&cu.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get course user by id: %w", err)
	}

	return &cu, nil
}

// GetByUsername получает участника курса по имени пользователя
func (r *CourseUserRepository) GetByUsername(ctx context.Context, courseID int64, username string) (*model.CourseUser, error) {
	query := `
		SELECT id, course_id, username, user_type, exam_slot_type, lecture, section, dropped, created_at
		FROM course_users
		WHERE course_id = $1 AND username = $2
	`

	var cu model.CourseUser
	err := r.pool.QueryRow(ctx, query, courseID, username).Scan(
		&cu.ID,
		&cu.CourseID,
		&cu.Username,
		&cu.UserType,
		&cu.ExamSlotType,
		&cu.Lecture,
		&cu.Section,
		&cu.Dropped,
		&cu.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get course user by username: %w", err)
	}

	return &cu, nil
}

// Update обновляет участника курса
func (r *CourseUserRepository) Update(ctx context.Context, cu *model.CourseUser) error {
	query := `
		UPDATE course_users
		SET user_type = $1, exam_slot_type = $2, lecture = $3, section = $4, dropped = $5
		WHERE id = $6
	`

	result, err := r.pool.Exec(
		ctx, query,
		cu.UserType,
		cu.ExamSlotType,
		cu.Lecture,
		cu.Section,
		cu.Dropped,
		cu.ID,
	)
	if err != nil {
		return fmt.Errorf("update course user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("course user not found")
	}

	return nil
}

// Delete удаляет участника курса (каскадно удаляет его записи на экзамены)
func (r *CourseUserRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM course_users WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete course user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("course user not found")
	}

	return nil
}

// ListByCourse получает всех участников курса
func (r *CourseUserRepository) ListByCourse(ctx context.Context, courseID int64) ([]*model.CourseUser, error) {
	query := `
		SELECT id, course_id, username, user_type, exam_slot_type, lecture, section, dropped, created_at
		FROM course_users
		WHERE course_id = $1
		ORDER BY username
	`

	rows, err := r.pool.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("list course users: %w", err)
	}
	defer rows.Close()

	var users []*model.CourseUser
	for rows.Next() {
		var cu model.CourseUser
		err := rows.Scan(
			&cu.ID,
			&cu.CourseID,
			&cu.Username,
			&cu.UserType,
			&cu.ExamSlotType,
			&cu.Lecture,
			&cu.Section,
			&cu.Dropped,
			&cu.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan course user: %w", err)
		}
		users = append(users, &cu)
	}

	return users, nil
}
