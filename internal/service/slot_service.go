package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/examreg/internal/cache"
	"github.com/Freeeeeet/examreg/internal/metrics"
	"github.com/Freeeeeet/examreg/internal/model"
	"github.com/Freeeeeet/examreg/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// SlotService каталог слотов экзамена. Считает истинную вместимость слота
// по составляющим его интервалам и чинит дрейф денормализованного счётчика
// reg_count. Кэшированные значения остатков служат только отображению.
type SlotService struct {
	pool         *pgxpool.Pool
	slotRepo     *repository.ExamSlotRepository
	timeSlotRepo *repository.TimeSlotRepository
	regRepo      *repository.RegistrationRepository
	seatsCache   *cache.SeatsCache // может быть nil
	logger       *zap.Logger
}

func NewSlotService(
	pool *pgxpool.Pool,
	slotRepo *repository.ExamSlotRepository,
	timeSlotRepo *repository.TimeSlotRepository,
	regRepo *repository.RegistrationRepository,
	seatsCache *cache.SeatsCache,
	logger *zap.Logger,
) *SlotService {
	return &SlotService{
		pool:         pool,
		slotRepo:     slotRepo,
		timeSlotRepo: timeSlotRepo,
		regRepo:      regRepo,
		seatsCache:   seatsCache,
		logger:       logger,
	}
}

// ValidateMembership проверяет согласованность состава слота. Проверку
// нельзя выполнить до заполнения состава, поэтому она вынесена в отдельный
// проход, который вызывается путём записи после сборки слота.
func ValidateMembership(slot *model.ExamSlot, members []*model.TimeSlot) error {
	if len(members) == 0 {
		return &ValidationError{Field: "time_slots", Message: "exam slot must have at least one time slot"}
	}

	anchorFound := false
	for _, ts := range members {
		if ts.ExamID != slot.ExamID {
			return &ValidationError{
				Field:   "time_slots",
				Message: fmt.Sprintf("time slot %d belongs to a different exam", ts.ID),
			}
		}
		if ts.ID == slot.StartTimeSlotID {
			anchorFound = true
		}
	}

	if !anchorFound {
		return &ValidationError{Field: "start_time_slot", Message: "start time slot must be among the slot's time slots"}
	}

	return nil
}

// CreateExamSlot создаёт слот вместе с составом интервалов
func (s *SlotService) CreateExamSlot(ctx context.Context, slot *model.ExamSlot, timeSlotIDs []int64) error {
	members, err := s.timeSlotRepo.ListByIDs(ctx, timeSlotIDs)
	if err != nil {
		return fmt.Errorf("load member time slots: %w", err)
	}

	if len(members) != len(timeSlotIDs) {
		return &ValidationError{Field: "time_slots", Message: "unknown time slot in member set"}
	}

	if err := ValidateMembership(slot, members); err != nil {
		return err
	}

	if err := s.slotRepo.Create(ctx, slot); err != nil {
		return fmt.Errorf("create exam slot: %w", err)
	}

	if err := s.slotRepo.SetTimeSlots(ctx, slot.ID, timeSlotIDs); err != nil {
		return fmt.Errorf("set exam slot members: %w", err)
	}

	slot.TimeSlots = members

	s.logger.Info("Exam slot created",
		zap.Int64("exam_slot_id", slot.ID),
		zap.Int64("exam_id", slot.ExamID),
		zap.String("slot_type", string(slot.ExamSlotType)),
		zap.Int("time_slots", len(members)),
	)

	return nil
}

// SetTimeSlots заменяет состав интервалов слота с той же валидацией
func (s *SlotService) SetTimeSlots(ctx context.Context, slotID int64, timeSlotIDs []int64) error {
	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		return err
	}
	if slot == nil {
		return ErrExamSlotNotFound
	}

	members, err := s.timeSlotRepo.ListByIDs(ctx, timeSlotIDs)
	if err != nil {
		return fmt.Errorf("load member time slots: %w", err)
	}

	if len(members) != len(timeSlotIDs) {
		return &ValidationError{Field: "time_slots", Message: "unknown time slot in member set"}
	}

	if err := ValidateMembership(slot, members); err != nil {
		return err
	}

	if err := s.slotRepo.SetTimeSlots(ctx, slotID, timeSlotIDs); err != nil {
		return err
	}

	if s.seatsCache != nil {
		s.seatsCache.Invalidate(ctx, slotID)
	}

	s.logger.Info("Exam slot members updated",
		zap.Int64("exam_slot_id", slotID),
		zap.Int("time_slots", len(members)),
	)

	return nil
}

// RemainingSeats считает остаток мест слота: для каждого интервала берётся
// его вместимость минус суммарная занятость всеми слотами, делящими этот
// интервал, результат — минимум по интервалам. Счётчик reg_count самого
// слота для этого недостаточен.
func (s *SlotService) RemainingSeats(ctx context.Context, slotID int64) (int, error) {
	members, err := s.slotRepo.GetTimeSlots(ctx, slotID)
	if err != nil {
		return 0, err
	}

	if len(members) == 0 {
		return 0, nil
	}

	remaining := 0
	for i, ts := range members {
		occupancy, err := s.slotRepo.WindowOccupancy(ctx, ts.ID)
		if err != nil {
			return 0, err
		}

		left := ts.Capacity - occupancy
		if i == 0 || left < remaining {
			remaining = left
		}
	}

	return remaining, nil
}

// RemainingSeatsCached остаток мест для отображения: сперва кэш, при
// промахе — пересчёт. Допуск на место по этому значению не выдаётся.
func (s *SlotService) RemainingSeatsCached(ctx context.Context, slotID int64) (int, error) {
	if s.seatsCache != nil {
		if seats, ok := s.seatsCache.Get(ctx, slotID); ok {
			return seats, nil
		}
	}

	seats, err := s.RemainingSeats(ctx, slotID)
	if err != nil {
		return 0, err
	}

	if s.seatsCache != nil {
		s.seatsCache.Set(ctx, slotID, seats)
	}

	return seats, nil
}

// TheoreticalCapacity вместимость слота при пустом расписании: минимум
// номинальных вместимостей интервалов. Только для отображения.
func (s *SlotService) TheoreticalCapacity(ctx context.Context, slotID int64) (int, error) {
	members, err := s.slotRepo.GetTimeSlots(ctx, slotID)
	if err != nil {
		return 0, err
	}

	if len(members) == 0 {
		return 0, nil
	}

	capacity := members[0].Capacity
	for _, ts := range members[1:] {
		if ts.Capacity < capacity {
			capacity = ts.Capacity
		}
	}

	return capacity, nil
}

// ReconcileOccupancy сверяет reg_count слота с истинным числом записей и
// чинит расхождение. Выполняется под теми же блокировками интервалов, что
// и назначение, иначе конкурирующий инкремент может потеряться.
func (s *SlotService) ReconcileOccupancy(ctx context.Context, slotID int64) (int, int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := setLockTimeout(ctx, tx); err != nil {
		return 0, 0, err
	}

	memberIDs, err := s.slotRepo.GetTimeSlotIDsTx(ctx, tx, slotID)
	if err != nil {
		return 0, 0, err
	}

	if _, err := s.timeSlotRepo.LockByIDsTx(ctx, tx, memberIDs); err != nil {
		return 0, 0, err
	}

	slot, err := s.slotRepo.GetByIDTx(ctx, tx, slotID)
	if err != nil {
		return 0, 0, err
	}
	if slot == nil {
		return 0, 0, ErrExamSlotNotFound
	}

	actual, err := s.regRepo.CountBySlotTx(ctx, tx, slotID)
	if err != nil {
		return 0, 0, err
	}

	if actual != slot.RegCount {
		if err := s.slotRepo.SetRegCountTx(ctx, tx, slotID, actual); err != nil {
			return 0, 0, err
		}

		metrics.OccupancyDrift.Inc()
		s.logger.Warn("Occupancy drift repaired",
			zap.Int64("exam_slot_id", slotID),
			zap.Int("old", slot.RegCount),
			zap.Int("new", actual),
		)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("commit transaction: %w", err)
	}

	if s.seatsCache != nil && actual != slot.RegCount {
		s.seatsCache.Invalidate(ctx, slotID)
	}

	return slot.RegCount, actual, nil
}

// ReconcileAll прогоняет сверку по всем слотам по одному, чтобы не держать
// блокировки всего расписания разом. Возвращает число исправленных слотов.
func (s *SlotService) ReconcileAll(ctx context.Context) (int, error) {
	ids, err := s.slotRepo.ListIDs(ctx)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, id := range ids {
		old, actual, err := s.ReconcileOccupancy(ctx, id)
		if err != nil {
			return repaired, fmt.Errorf("reconcile exam slot %d: %w", id, err)
		}
		if old != actual {
			repaired++
		}
	}

	return repaired, nil
}

// SlotView слот с производными величинами для отображения
type SlotView struct {
	Slot        *model.ExamSlot `json:"slot"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     time.Time       `json:"end_time"`
	Remaining   int             `json:"remaining_seats"`
	Theoretical int             `json:"theoretical_capacity"`
}

// ListByExam получает слоты экзамена в порядке отображения вместе с
// производными временем и остатком мест
func (s *SlotService) ListByExam(ctx context.Context, examID int64) ([]*SlotView, error) {
	slots, err := s.slotRepo.ListByExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	views := make([]*SlotView, 0, len(slots))
	for _, slot := range slots {
		members, err := s.slotRepo.GetTimeSlots(ctx, slot.ID)
		if err != nil {
			return nil, err
		}
		slot.TimeSlots = members

		view := &SlotView{Slot: slot}
		if start, ok := slot.StartTime(); ok {
			view.StartTime = start
		}
		if end, ok := slot.EndTime(); ok {
			view.EndTime = end
		}

		view.Remaining, err = s.RemainingSeatsCached(ctx, slot.ID)
		if err != nil {
			return nil, err
		}

		view.Theoretical, err = s.TheoreticalCapacity(ctx, slot.ID)
		if err != nil {
			return nil, err
		}

		views = append(views, view)
	}

	return views, nil
}

// GetExamSlot получает слот с составом интервалов
func (s *SlotService) GetExamSlot(ctx context.Context, slotID int64) (*model.ExamSlot, error) {
	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, ErrExamSlotNotFound
	}

	slot.TimeSlots, err = s.slotRepo.GetTimeSlots(ctx, slotID)
	if err != nil {
		return nil, err
	}

	return slot, nil
}
