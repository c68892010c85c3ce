package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Freeeeeet/examreg/internal/app"
	"github.com/Freeeeeet/examreg/internal/model"
	"github.com/Freeeeeet/examreg/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Интеграционные тесты требуют живой PostgreSQL. Без TEST_DB_DSN
// пропускаются, схема накатывается миграциями, данные чистятся перед
// каждым тестом.

type testEnv struct {
	pool *pgxpool.Pool

	courseRepo     *repository.CourseRepository
	courseUserRepo *repository.CourseUserRepository
	examRepo       *repository.ExamRepository
	roomRepo       *repository.RoomRepository
	timeSlotRepo   *repository.TimeSlotRepository
	examSlotRepo   *repository.ExamSlotRepository
	regRepo        *repository.RegistrationRepository

	roster        *RosterService
	schedule      *ScheduleService
	slots         *SlotService
	registrations *RegistrationService
	allocations   *AllocationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	migrator, err := app.NewMigrator(pool, "../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrator.Run(ctx))
	require.NoError(t, migrator.Close())

	_, err = pool.Exec(ctx, `TRUNCATE TABLE courses, course_users, rooms, exams,
		time_slots, exam_slots, exam_slot_time_slots, exam_registrations
		RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	logger := zap.NewNop()

	env := &testEnv{
		pool:           pool,
		courseRepo:     repository.NewCourseRepository(pool),
		courseUserRepo: repository.NewCourseUserRepository(pool),
		examRepo:       repository.NewExamRepository(pool),
		roomRepo:       repository.NewRoomRepository(pool),
		timeSlotRepo:   repository.NewTimeSlotRepository(pool),
		examSlotRepo:   repository.NewExamSlotRepository(pool),
		regRepo:        repository.NewRegistrationRepository(pool),
	}

	env.roster = NewRosterService(env.courseRepo, env.courseUserRepo, logger)
	env.schedule = NewScheduleService(env.examRepo, env.roomRepo, env.timeSlotRepo, logger)
	env.slots = NewSlotService(pool, env.examSlotRepo, env.timeSlotRepo, env.regRepo, nil, logger)
	env.registrations = NewRegistrationService(env.regRepo, env.examRepo, env.courseUserRepo, logger)
	env.allocations = NewAllocationService(pool, env.regRepo, env.examSlotRepo, env.timeSlotRepo, env.examRepo, env.courseUserRepo, nil, logger)

	return env
}

func (env *testEnv) createCourse(t *testing.T) *model.Course {
	t.Helper()
	course := &model.Course{Code: "cs101", Name: "Intro"}
	require.NoError(t, env.roster.CreateCourse(context.Background(), course))
	return course
}

// createExam экзамен с открытым окном самозаписи
func (env *testEnv) createExam(t *testing.T, courseID int64) *model.Exam {
	t.Helper()
	exam := &model.Exam{CourseID: courseID, Name: "Final"}
	require.NoError(t, env.schedule.CreateExam(context.Background(), exam))
	return exam
}

func (env *testEnv) createClosedExam(t *testing.T, courseID int64) *model.Exam {
	t.Helper()
	past := time.Now().Add(-time.Hour)
	exam := &model.Exam{CourseID: courseID, Name: "Closed final", LockAfter: &past}
	require.NoError(t, env.schedule.CreateExam(context.Background(), exam))
	return exam
}

func (env *testEnv) createTimeSlot(t *testing.T, examID int64, capacity int, offset time.Duration) *model.TimeSlot {
	t.Helper()
	start := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC).Add(offset)
	ts := &model.TimeSlot{
		ExamID:    examID,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Capacity:  capacity,
	}
	require.NoError(t, env.schedule.CreateTimeSlot(context.Background(), ts))
	return ts
}

func (env *testEnv) createExamSlot(t *testing.T, examID, anchorID int64, memberIDs []int64) *model.ExamSlot {
	t.Helper()
	slot := &model.ExamSlot{
		ExamID:          examID,
		StartTimeSlotID: anchorID,
		ExamSlotType:    model.SlotTypeNormal,
	}
	require.NoError(t, env.slots.CreateExamSlot(context.Background(), slot, memberIDs))
	return slot
}

func (env *testEnv) createStudent(t *testing.T, courseID int64, username string) *model.CourseUser {
	t.Helper()
	cu := &model.CourseUser{
		CourseID:     courseID,
		Username:     username,
		UserType:     model.UserTypeStudent,
		ExamSlotType: model.SlotTypeNormal,
	}
	require.NoError(t, env.roster.CreateCourseUser(context.Background(), cu))
	return cu
}

func (env *testEnv) regCount(t *testing.T, slotID int64) int {
	t.Helper()
	slot, err := env.examSlotRepo.GetByID(context.Background(), slotID)
	require.NoError(t, err)
	require.NotNil(t, slot)
	return slot.RegCount
}
