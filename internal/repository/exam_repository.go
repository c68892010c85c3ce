package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/examreg/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ExamRepository struct {
	pool *pgxpool.Pool
}

func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// Create создаёт новый экзамен
func (r *ExamRepository) Create(ctx context.Context, exam *model.Exam) error {
	query := `
		INSERT INTO exams (course_id, name, details, lock_before, lock_after)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.pool.QueryRow(
		ctx, query,
		exam.CourseID,
		exam.Name,
		exam.Details,
		exam.LockBefore,
		exam.LockAfter,
	).Scan(&exam.ID)

	if err != nil {
		return fmt.Errorf("create exam: %w", err)
	}

	return nil
}

// GetByID получает экзамен по ID
func (r *ExamRepository) GetByID(ctx context.Context, id int64) (*model.Exam, error) {
	query := `
		SELECT id, course_id, name, details, lock_before, lock_after
		FROM exams
		WHERE id = $1
	`

	var exam model.Exam
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&exam.ID,
		&exam.CourseID,
		&exam.Name,
		&exam.Details,
		&exam.LockBefore,
		&exam.LockAfter,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get exam by id: %w", err)
	}

	return &exam, nil
}

// Update обновляет экзамен
func (r *ExamRepository) Update(ctx context.Context, exam *model.Exam) error {
	query := `
		UPDATE exams
		SET name = $1, details = $2, lock_before = $3, lock_after = $4
		WHERE id = $5
	`

	result, err := r.pool.Exec(
		ctx, query,
		exam.Name,
		exam.Details,
		exam.LockBefore,
		exam.LockAfter,
		exam.ID,
	)
	if err != nil {
		return fmt.Errorf("update exam: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("exam not found")
	}

	return nil
}

// Delete удаляет экзамен (каскадно удаляет интервалы, слоты и записи)
func (r *ExamRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM exams WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("exam not found")
	}

	return nil
}

// ListByCourse получает все экзамены курса
func (r *ExamRepository) ListByCourse(ctx context.Context, courseID int64) ([]*model.Exam, error) {
	query := `
		SELECT id, course_id, name, details, lock_before, lock_after
		FROM exams
		WHERE course_id = $1
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	defer rows.Close()

	var exams []*model.Exam
	for rows.Next() {
		var exam model.Exam
		err := rows.Scan(
			&exam.ID,
			&exam.CourseID,
			&exam.Name,
			&exam.Details,
			&exam.LockBefore,
			&exam.LockAfter,
		)
		if err != nil {
			return nil, fmt.Errorf("scan exam: %w", err)
		}
		exams = append(exams, &exam)
	}

	return exams, nil
}
