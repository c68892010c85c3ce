package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/examreg/internal/model"
	"github.com/Freeeeeet/examreg/internal/repository"
	"go.uber.org/zap"
)

// RosterService курсы и их участники
type RosterService struct {
	courseRepo     *repository.CourseRepository
	courseUserRepo *repository.CourseUserRepository
	logger         *zap.Logger
}

func NewRosterService(
	courseRepo *repository.CourseRepository,
	courseUserRepo *repository.CourseUserRepository,
	logger *zap.Logger,
) *RosterService {
	return &RosterService{
		courseRepo:     courseRepo,
		courseUserRepo: courseUserRepo,
		logger:         logger,
	}
}

func (s *RosterService) CreateCourse(ctx context.Context, course *model.Course) error {
	if course.Code == "" {
		return &ValidationError{Field: "code", Message: "course code is required"}
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}

	s.logger.Info("Course created", zap.Int64("course_id", course.ID), zap.String("code", course.Code))
	return nil
}

func (s *RosterService) GetCourse(ctx context.Context, id int64) (*model.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	return course, nil
}

func (s *RosterService) ListCourses(ctx context.Context) ([]*model.Course, error) {
	return s.courseRepo.List(ctx)
}

func (s *RosterService) CreateCourseUser(ctx context.Context, cu *model.CourseUser) error {
	if err := validateCourseUser(cu); err != nil {
		return err
	}

	if err := s.courseUserRepo.Create(ctx, cu); err != nil {
		if repository.IsUniqueViolation(err) {
			return &ValidationError{Field: "username", Message: "username already exists in this course"}
		}
		return fmt.Errorf("create course user: %w", err)
	}

	s.logger.Info("Course user created",
		zap.Int64("course_user_id", cu.ID),
		zap.Int64("course_id", cu.CourseID),
		zap.String("username", cu.Username),
	)
	return nil
}

func (s *RosterService) UpdateCourseUser(ctx context.Context, cu *model.CourseUser) error {
	if err := validateCourseUser(cu); err != nil {
		return err
	}

	if err := s.courseUserRepo.Update(ctx, cu); err != nil {
		return fmt.Errorf("update course user: %w", err)
	}

	s.logger.Info("Course user updated", zap.Int64("course_user_id", cu.ID))
	return nil
}

func (s *RosterService) GetCourseUser(ctx context.Context, id int64) (*model.CourseUser, error) {
	cu, err := s.courseUserRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cu == nil {
		return nil, ErrCourseUserNotFound
	}
	return cu, nil
}

func (s *RosterService) ListCourseUsers(ctx context.Context, courseID int64) ([]*model.CourseUser, error) {
	return s.courseUserRepo.ListByCourse(ctx, courseID)
}

func validateCourseUser(cu *model.CourseUser) error {
	if cu.Username == "" {
		return &ValidationError{Field: "username", Message: "username is required"}
	}
	switch cu.UserType {
	case model.UserTypeInstructor, model.UserTypeStudent:
	default:
		return &ValidationError{Field: "user_type", Message: "user type must be 'i' or 's'"}
	}
	switch cu.ExamSlotType {
	case model.SlotTypeNormal, model.SlotTypeExtended:
	default:
		return &ValidationError{Field: "exam_slot_type", Message: "exam slot type must be 'r' or 'e'"}
	}
	return nil
}
