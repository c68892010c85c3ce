package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/examreg/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CourseRepository struct {
	pool *pgxpool.Pool
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

// Create создаёт новый курс
func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	query := `
		INSERT INTO courses (code, name)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query, course.Code, course.Name).
		Scan(&course.ID, &course.CreatedAt)

	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}

	return nil
}

// GetByID получает курс по ID
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*model.Course, error) {
	query := `
		SELECT id, code, name, created_at
		FROM courses
		WHERE id = $1
	`

	var course model.Course
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&course.ID,
		&course.Code,
		&course.Name,
		&course.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get course by id: %w", err)
	}

	return &course, nil
}

// GetByCode получает курс по уникальному коду
func (r *CourseRepository) GetByCode(ctx context.Context, code string) (*model.Course, error) {
	query := `
		SELECT id, code, name, created_at
		FROM courses
		WHERE code = $1
	`

	var course model.Course
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&course.ID,
		&course.Code,
		&course.Name,
		&course.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get course by code: %w", err)
	}

	return &course, nil
}

// Update обновляет курс
func (r *CourseRepository) Update(ctx context.Context, course *model.Course) error {
	query := `
		UPDATE courses
		SET code = $1, name = $2
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, course.Code, course.Name, course.ID)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("course not found")
	}

	return nil
}

// Delete удаляет курс (каскадно удаляет экзамены, аудитории и записи)
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM courses WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("course not found")
	}

	return nil
}

// List получает все курсы
func (r *CourseRepository) List(ctx context.Context) ([]*model.Course, error) {
	query := `
		SELECT id, code, name, created_at
		FROM courses
		ORDER BY code
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var courses []*model.Course
	for rows.Next() {
		var course model.Course
		err := rows.Scan(
			&course.ID,
			&course.Code,
			&course.Name,
			&course.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, &course)
	}

	return courses, nil
}
