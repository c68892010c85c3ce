package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/examreg/internal/model"
	"github.com/Freeeeeet/examreg/internal/repository"
	"go.uber.org/zap"
)

// ScheduleService управляет определением расписания: аудиториями, экзаменами
// и интервалами. Проверка пересечений выполняется перечитыванием соседних
// интервалов без блокировок: расписание меняют администраторы, конкуренции
// здесь практически нет, и это не горячий путь назначения мест.
type ScheduleService struct {
	examRepo     *repository.ExamRepository
	roomRepo     *repository.RoomRepository
	timeSlotRepo *repository.TimeSlotRepository
	logger       *zap.Logger
}

func NewScheduleService(
	examRepo *repository.ExamRepository,
	roomRepo *repository.RoomRepository,
	timeSlotRepo *repository.TimeSlotRepository,
	logger *zap.Logger,
) *ScheduleService {
	return &ScheduleService{
		examRepo:     examRepo,
		roomRepo:     roomRepo,
		timeSlotRepo: timeSlotRepo,
		logger:       logger,
	}
}

// CreateTimeSlot создаёт интервал после проверки границ и пересечений
func (s *ScheduleService) CreateTimeSlot(ctx context.Context, ts *model.TimeSlot) error {
	if err := s.validateTimeSlot(ctx, ts, 0); err != nil {
		return err
	}

	if err := s.timeSlotRepo.Create(ctx, ts); err != nil {
		return fmt.Errorf("create time slot: %w", err)
	}

	s.logger.Info("Time slot created",
		zap.Int64("time_slot_id", ts.ID),
		zap.Int64("exam_id", ts.ExamID),
		zap.Time("start_time", ts.StartTime),
		zap.Int("capacity", ts.Capacity),
	)

	return nil
}

// UpdateTimeSlot обновляет интервал; сам интервал из проверки пересечений
// исключается
func (s *ScheduleService) UpdateTimeSlot(ctx context.Context, ts *model.TimeSlot) error {
	if err := s.validateTimeSlot(ctx, ts, ts.ID); err != nil {
		return err
	}

	if err := s.timeSlotRepo.Update(ctx, ts); err != nil {
		return fmt.Errorf("update time slot: %w", err)
	}

	s.logger.Info("Time slot updated",
		zap.Int64("time_slot_id", ts.ID),
		zap.Int64("exam_id", ts.ExamID),
	)

	return nil
}

// validateTimeSlot проверяет границы и пересечения с интервалами того же
// экзамена в той же аудитории. Сравнение границ строгое, поэтому два
// интервала нулевой длины друг с другом не конфликтуют.
func (s *ScheduleService) validateTimeSlot(ctx context.Context, ts *model.TimeSlot, excludeID int64) error {
	if ts.Capacity < 0 {
		return &ValidationError{Field: "capacity", Message: "capacity must not be negative"}
	}

	if ts.EndTime.Before(ts.StartTime) {
		return &ValidationError{Field: "end_time", Message: "end time must not be before start time"}
	}

	others, err := s.timeSlotRepo.ListByExamAndRoom(ctx, ts.ExamID, ts.RoomID, excludeID)
	if err != nil {
		return fmt.Errorf("check overlapping time slots: %w", err)
	}

	for _, other := range others {
		if ts.Overlaps(other) {
			return &OverlapError{ConflictingID: other.ID}
		}
	}

	return nil
}

// DeleteTimeSlot удаляет интервал
func (s *ScheduleService) DeleteTimeSlot(ctx context.Context, id int64) error {
	if err := s.timeSlotRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete time slot: %w", err)
	}

	s.logger.Info("Time slot deleted", zap.Int64("time_slot_id", id))
	return nil
}

// ListTimeSlots получает интервалы экзамена
func (s *ScheduleService) ListTimeSlots(ctx context.Context, examID int64) ([]*model.TimeSlot, error) {
	return s.timeSlotRepo.ListByExam(ctx, examID)
}

// CreateExam создаёт экзамен
func (s *ScheduleService) CreateExam(ctx context.Context, exam *model.Exam) error {
	if err := s.examRepo.Create(ctx, exam); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}

	s.logger.Info("Exam created",
		zap.Int64("exam_id", exam.ID),
		zap.Int64("course_id", exam.CourseID),
		zap.String("name", exam.Name),
	)

	return nil
}

// UpdateExam обновляет экзамен
func (s *ScheduleService) UpdateExam(ctx context.Context, exam *model.Exam) error {
	if err := s.examRepo.Update(ctx, exam); err != nil {
		return fmt.Errorf("update exam: %w", err)
	}

	s.logger.Info("Exam updated", zap.Int64("exam_id", exam.ID))
	return nil
}

// DeleteExam удаляет экзамен вместе с интервалами, слотами и записями
func (s *ScheduleService) DeleteExam(ctx context.Context, id int64) error {
	if err := s.examRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}

	s.logger.Info("Exam deleted", zap.Int64("exam_id", id))
	return nil
}

// GetExam получает экзамен по ID
func (s *ScheduleService) GetExam(ctx context.Context, id int64) (*model.Exam, error) {
	exam, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if exam == nil {
		return nil, ErrExamNotFound
	}
	return exam, nil
}

// CreateRoom создаёт аудиторию
func (s *ScheduleService) CreateRoom(ctx context.Context, room *model.Room) error {
	if room.Capacity < 0 {
		return &ValidationError{Field: "capacity", Message: "capacity must not be negative"}
	}

	if err := s.roomRepo.Create(ctx, room); err != nil {
		return fmt.Errorf("create room: %w", err)
	}

	s.logger.Info("Room created",
		zap.Int64("room_id", room.ID),
		zap.String("name", room.Name),
	)

	return nil
}

// ListRooms получает аудитории курса
func (s *ScheduleService) ListRooms(ctx context.Context, courseID int64) ([]*model.Room, error) {
	return s.roomRepo.ListByCourse(ctx, courseID)
}
