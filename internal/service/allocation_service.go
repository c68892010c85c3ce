package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/examreg/internal/cache"
	"github.com/Freeeeeet/examreg/internal/metrics"
	"github.com/Freeeeeet/examreg/internal/model"
	"github.com/Freeeeeet/examreg/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// AllocationService протокол переназначения слота. Единственная операция,
// меняющая пару (запись, слот): и запись студента, и отмена, и перенос —
// частные случаи Reassign. Конкуренция за места разрешается пессимистичными
// блокировками интервалов в одном порядке у всех участников.
type AllocationService struct {
	pool         *pgxpool.Pool
	regRepo      *repository.RegistrationRepository
	slotRepo     *repository.ExamSlotRepository
	timeSlotRepo *repository.TimeSlotRepository
	examRepo     *repository.ExamRepository
	userRepo     *repository.CourseUserRepository
	seatsCache   *cache.SeatsCache // может быть nil
	logger       *zap.Logger
}

func NewAllocationService(
	pool *pgxpool.Pool,
	regRepo *repository.RegistrationRepository,
	slotRepo *repository.ExamSlotRepository,
	timeSlotRepo *repository.TimeSlotRepository,
	examRepo *repository.ExamRepository,
	userRepo *repository.CourseUserRepository,
	seatsCache *cache.SeatsCache,
	logger *zap.Logger,
) *AllocationService {
	return &AllocationService{
		pool:         pool,
		regRepo:      regRepo,
		slotRepo:     slotRepo,
		timeSlotRepo: timeSlotRepo,
		examRepo:     examRepo,
		userRepo:     userRepo,
		seatsCache:   seatsCache,
		logger:       logger,
	}
}

// ReassignResult итог переназначения. Committed=false означает, что
// состояние БД не изменилось, а Warnings объясняют почему. При
// Committed=true непустые Warnings — отчёт о том, что было проигнорировано
// принудительным режимом.
type ReassignResult struct {
	Registration *model.ExamRegistration `json:"registration"`
	Warnings     model.Warnings          `json:"warnings"`
	Committed    bool                    `json:"committed"`
}

type reassignOutcome struct {
	warnings  model.Warnings
	committed bool
	touched   []int64 // интервалы, чья занятость могла измениться
}

// Reassign переводит запись на слот desiredSlotID (nil — снять запись со
// слота). Момент requestTime задаёт вызывающий: против него проверяется
// окно самозаписи. Предупреждения не прерывают операцию сами по себе: без
// override они откатывают её, с override — исполняются и возвращаются как
// отчёт. Снятие со слота проходит всегда, независимо от предупреждений.
func (s *AllocationService) Reassign(ctx context.Context, regID int64, desiredSlotID *int64, requestTime time.Time, override bool) (*ReassignResult, error) {
	// Предварительные проверки вне транзакции: окно экзамена и статус
	// участника только порождают предупреждения и не требуют блокировок.
	preWarnings, err := s.preChecks(ctx, regID, requestTime)
	if err != nil {
		return nil, err
	}

	var outcome *reassignOutcome
	backoff := retry.WithMaxRetries(3, retry.NewExponential(50*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		var txErr error
		outcome, txErr = s.reassignTx(ctx, regID, desiredSlotID, override, preWarnings)
		if txErr != nil && IsRetryable(txErr) {
			metrics.ReassignRetries.Inc()
			s.logger.Warn("Reassign retry", zap.Int64("registration_id", regID), zap.Error(txErr))
			return retry.RetryableError(txErr)
		}
		return txErr
	})
	if err != nil {
		metrics.ReassignTotal.WithLabelValues("fatal").Inc()
		return nil, err
	}

	if outcome.committed {
		metrics.ReassignTotal.WithLabelValues("committed").Inc()
		if override && len(outcome.warnings) > 0 {
			metrics.ReassignOverrides.Inc()
		}
		s.invalidateSeats(ctx, outcome.touched)
	} else {
		metrics.ReassignTotal.WithLabelValues("rejected").Inc()
	}

	reg, err := s.regRepo.GetByID(ctx, regID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Reassign finished",
		zap.Int64("registration_id", regID),
		zap.Bool("committed", outcome.committed),
		zap.Bool("override", override),
		zap.Int("warnings", len(outcome.warnings)),
	)

	return &ReassignResult{
		Registration: reg,
		Warnings:     outcome.warnings,
		Committed:    outcome.committed,
	}, nil
}

// preChecks собирает предупреждения, которые видно без блокировок
func (s *AllocationService) preChecks(ctx context.Context, regID int64, requestTime time.Time) (model.Warnings, error) {
	reg, err := s.regRepo.GetByID(ctx, regID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, ErrRegistrationNotFound
	}

	exam, err := s.examRepo.GetByID(ctx, reg.ExamID)
	if err != nil {
		return nil, err
	}
	if exam == nil {
		return nil, ErrExamNotFound
	}

	courseUser, err := s.userRepo.GetByID(ctx, reg.CourseUserID)
	if err != nil {
		return nil, err
	}
	if courseUser == nil {
		return nil, ErrCourseUserNotFound
	}

	var warnings model.Warnings
	if !exam.SelfServiceOpenAt(requestTime) {
		warnings.Add(model.WarningWindowClosed)
	}
	if courseUser.Dropped {
		warnings.Add(model.WarningDropped)
	}

	return warnings, nil
}

func (s *AllocationService) reassignTx(ctx context.Context, regID int64, desiredSlotID *int64, override bool, preWarnings model.Warnings) (*reassignOutcome, error) {
	warnings := make(model.Warnings, 0, len(preWarnings))
	for _, w := range preWarnings {
		warnings.Add(w)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := setLockTimeout(ctx, tx); err != nil {
		return nil, err
	}

	reg, err := s.regRepo.GetByIDForUpdateTx(ctx, tx, regID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, ErrRegistrationNotFound
	}

	// Отмеченную явкой запись протокол не трогает даже принудительно
	if reg.CheckedIn() {
		warnings.Add(model.WarningCheckedIn)
		return &reassignOutcome{warnings: warnings}, nil
	}

	touched, err := s.lockTouchedTimeSlots(ctx, tx, reg.ExamSlotID, desiredSlotID)
	if err != nil {
		return nil, err
	}

	// Освобождаем текущий слот до проверки мест в желаемом: участник не
	// должен сам занимать место, в которое переезжает.
	if reg.ExamSlotID != nil {
		if err := s.slotRepo.AddRegCountTx(ctx, tx, *reg.ExamSlotID, -1); err != nil {
			return nil, err
		}
		if err := s.regRepo.SetExamSlotTx(ctx, tx, regID, nil); err != nil {
			return nil, err
		}
	}

	// Снятие со слота: фиксируем всегда, предупреждения остаются отчётом
	if desiredSlotID == nil {
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit transaction: %w", err)
		}
		return &reassignOutcome{warnings: warnings, committed: true, touched: touched}, nil
	}

	desired, err := s.slotRepo.GetByIDTx(ctx, tx, *desiredSlotID)
	if err != nil {
		return nil, err
	}
	if desired == nil {
		return nil, ErrExamSlotNotFound
	}
	if desired.ExamID != reg.ExamID {
		return nil, ErrExamMismatch
	}

	courseUser, err := s.userRepo.GetByID(ctx, reg.CourseUserID)
	if err != nil {
		return nil, err
	}
	if courseUser != nil && courseUser.ExamSlotType != desired.ExamSlotType {
		warnings.Add(model.WarningWrongSlotType)
	}

	memberIDs, err := s.slotRepo.GetTimeSlotIDsTx(ctx, tx, *desiredSlotID)
	if err != nil {
		return nil, err
	}

	members, err := s.timeSlotRepo.LockByIDsTx(ctx, tx, memberIDs)
	if err != nil {
		return nil, err
	}

	// Мест хватает, только если хватает в каждом интервале слота с учётом
	// всех слотов, делящих этот интервал
	for _, ts := range members {
		occupancy, err := s.slotRepo.WindowOccupancyTx(ctx, tx, ts.ID)
		if err != nil {
			return nil, err
		}
		if occupancy >= ts.Capacity {
			warnings.Add(model.WarningNoSeats)
			break
		}
	}

	if len(warnings) > 0 && !override {
		return &reassignOutcome{warnings: warnings}, nil
	}

	if err := s.slotRepo.AddRegCountTx(ctx, tx, *desiredSlotID, 1); err != nil {
		return nil, err
	}
	if err := s.regRepo.SetExamSlotTx(ctx, tx, regID, desiredSlotID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &reassignOutcome{warnings: warnings, committed: true, touched: touched}, nil
}

// lockTouchedTimeSlots блокирует интервалы текущего и желаемого слота
// одним запросом в порядке возрастания id. Единый порядок у всех
// участников исключает deadlock между конкурирующими переназначениями.
func (s *AllocationService) lockTouchedTimeSlots(ctx context.Context, tx pgx.Tx, currentSlotID, desiredSlotID *int64) ([]int64, error) {
	seen := make(map[int64]struct{})
	var ids []int64

	for _, slotID := range []*int64{currentSlotID, desiredSlotID} {
		if slotID == nil {
			continue
		}
		memberIDs, err := s.slotRepo.GetTimeSlotIDsTx(ctx, tx, *slotID)
		if err != nil {
			return nil, err
		}
		for _, id := range memberIDs {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	if len(ids) == 0 {
		return nil, nil
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if _, err := s.timeSlotRepo.LockByIDsTx(ctx, tx, ids); err != nil {
		return nil, err
	}

	return ids, nil
}

// invalidateSeats сбрасывает кэш остатков всех слотов, делящих изменённые
// интервалы
func (s *AllocationService) invalidateSeats(ctx context.Context, timeSlotIDs []int64) {
	if s.seatsCache == nil || len(timeSlotIDs) == 0 {
		return
	}

	slotIDs, err := s.slotRepo.ListIDsByTimeSlots(ctx, timeSlotIDs)
	if err != nil {
		s.logger.Warn("Seats cache invalidation skipped", zap.Error(err))
		return
	}

	s.seatsCache.Invalidate(ctx, slotIDs...)
}
