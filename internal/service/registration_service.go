package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/examreg/internal/model"
	"github.com/Freeeeeet/examreg/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegistrationService реестр записей на экзамен. Запись создаётся один раз
// на пару (экзамен, участник) и дальше живёт всегда: отмена выражается
// обнулением ссылки на слот, а не удалением строки.
type RegistrationService struct {
	regRepo        *repository.RegistrationRepository
	examRepo       *repository.ExamRepository
	courseUserRepo *repository.CourseUserRepository
	logger         *zap.Logger
}

func NewRegistrationService(
	regRepo *repository.RegistrationRepository,
	examRepo *repository.ExamRepository,
	courseUserRepo *repository.CourseUserRepository,
	logger *zap.Logger,
) *RegistrationService {
	return &RegistrationService{
		regRepo:        regRepo,
		examRepo:       examRepo,
		courseUserRepo: courseUserRepo,
		logger:         logger,
	}
}

// GetOrCreate получает запись участника на экзамен, создавая её при первом
// обращении. Гонка двух одновременных созданий разрешается уникальным
// ограничением в БД: проигравший перечитывает строку победителя.
func (s *RegistrationService) GetOrCreate(ctx context.Context, examID, courseUserID int64) (*model.ExamRegistration, error) {
	reg, err := s.regRepo.GetByExamAndUser(ctx, examID, courseUserID)
	if err != nil {
		return nil, err
	}
	if reg != nil {
		return reg, nil
	}

	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam == nil {
		return nil, ErrExamNotFound
	}

	courseUser, err := s.courseUserRepo.GetByID(ctx, courseUserID)
	if err != nil {
		return nil, err
	}
	if courseUser == nil {
		return nil, ErrCourseUserNotFound
	}

	if exam.CourseID != courseUser.CourseID {
		return nil, &ValidationError{Field: "course_user", Message: "course user belongs to a different course"}
	}

	reg = &model.ExamRegistration{
		ExamID:       examID,
		CourseUserID: courseUserID,
		AccessCode:   uuid.New(),
	}

	if err := s.regRepo.Create(ctx, reg); err != nil {
		if repository.IsUniqueViolation(err) {
			return s.regRepo.GetByExamAndUser(ctx, examID, courseUserID)
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}

	s.logger.Info("Registration created",
		zap.Int64("registration_id", reg.ID),
		zap.Int64("exam_id", examID),
		zap.Int64("course_user_id", courseUserID),
	)

	return reg, nil
}

// Get получает запись по идентификатору
func (s *RegistrationService) Get(ctx context.Context, regID int64) (*model.ExamRegistration, error) {
	reg, err := s.regRepo.GetByID(ctx, regID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, ErrRegistrationNotFound
	}
	return reg, nil
}

// ListByExam получает все записи экзамена
func (s *RegistrationService) ListByExam(ctx context.Context, examID int64) ([]*model.ExamRegistration, error) {
	return s.regRepo.ListByExam(ctx, examID)
}

// CheckIn отмечает явку участника на экзамен. После отметки запись
// считается замороженной для протокола назначения слотов.
func (s *RegistrationService) CheckIn(ctx context.Context, regID, roomID, staffUserID int64, notes string) (*model.ExamRegistration, error) {
	reg, err := s.Get(ctx, regID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	reg.CheckinRoomID = &roomID
	reg.CheckinUserID = &staffUserID
	reg.CheckinTimeIn = &now
	reg.CheckinTimeOut = nil
	reg.CheckinNotes = notes

	if err := s.regRepo.UpdateCheckin(ctx, reg); err != nil {
		return nil, fmt.Errorf("update checkin: %w", err)
	}

	s.logger.Info("Registration checked in",
		zap.Int64("registration_id", regID),
		zap.Int64("room_id", roomID),
	)

	return reg, nil
}

// CheckOut отмечает уход участника с экзамена
func (s *RegistrationService) CheckOut(ctx context.Context, regID int64, notes string) (*model.ExamRegistration, error) {
	reg, err := s.Get(ctx, regID)
	if err != nil {
		return nil, err
	}

	if !reg.CheckedIn() {
		return nil, &ValidationError{Field: "checkin", Message: "registration is not checked in"}
	}

	now := time.Now()
	reg.CheckinTimeOut = &now
	if notes != "" {
		reg.CheckinNotes = notes
	}

	if err := s.regRepo.UpdateCheckin(ctx, reg); err != nil {
		return nil, fmt.Errorf("update checkout: %w", err)
	}

	s.logger.Info("Registration checked out", zap.Int64("registration_id", regID))

	return reg, nil
}
