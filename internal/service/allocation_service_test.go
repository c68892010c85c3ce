package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/examreg/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReassignAssignAndClear(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.createCourse(t)
	exam := env.createExam(t, course.ID)
	ts := env.createTimeSlot(t, exam.ID, 5, 0)
	slot := env.createExamSlot(t, exam.ID, ts.ID, []int64{ts.ID})
	student := env.createStudent(t, course.ID, "alice")

	reg, err := env.registrations.GetOrCreate(ctx, exam.ID, student.ID)
	require.NoError(t, err)
	require.Nil(t, reg.ExamSlotID)

	result, err := env.allocations.Reassign(ctx, reg.ID, &slot.ID, time.Now(), false)
	require.NoError(t, err)
	assert.True(t, result.Committed)
	assert.Empty(t, result.Warnings)
	require.NotNil(t, result.Registration.ExamSlotID)
	assert.Equal(t, slot.ID, *result.Registration.ExamSlotID)
	assert.Equal(t, 1, env.regCount(t, slot.ID))

	// Снятие со слота обнуляет ссылку и счётчик, запись остаётся
	result, err = env.allocations.Reassign(ctx, reg.ID, nil, time.Now(), false)
	require.NoError(t, err)
	assert.True(t, result.Committed)
	assert.Nil(t, result.Registration.ExamSlotID)
	assert.Equal(t, 0, env.regCount(t, slot.ID))

	again, err := env.registrations.GetOrCreate(ctx, exam.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, again.ID)
	assert.Equal(t, reg.AccessCode, again.AccessCode)
}

func TestReassignSelfIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.createCourse(t)
	exam := env.createExam(t, course.ID)
	ts := env.createTimeSlot(t, exam.ID, 1, 0)
	slot := env.createExamSlot(t, exam.ID, ts.ID, []int64{ts.ID})
	student := env.createStudent(t, course.ID, "alice")

	reg, err := env.registrations.GetOrCreate(ctx, exam.ID, student.ID)
	require.NoError(t, err)

	result, err := env.allocations.Reassign(ctx, reg.ID, &slot.ID, time.Now(), false)
	require.NoError(t, err)
	require.True(t, result.Committed)

	// Повторное назначение на тот же слот: участник не занимает своё же
	// место во второй раз, даже при вместимости 1
	result, err = env.allocations.Reassign(ctx, reg.ID, &slot.ID, time.Now(), false)
	require.NoError(t, err)
	assert.True(t, result.Committed)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 1, env.regCount(t, slot.ID))
}

func TestReassignSharedWindowCapacity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.createCourse(t)
	exam := env.createExam(t, course.ID)

	// Интервал A делится двумя слотами: занятость считается по сумме.
	// Якоря у слотов разные, общий у них только интервал A.
	a := env.createTimeSlot(t, exam.ID, 2, 0)
	b := env.createTimeSlot(t, exam.ID, 2, 2*time.Hour)
	slotA := env.createExamSlot(t, exam.ID, a.ID, []int64{a.ID})
	slotAB := env.createExamSlot(t, exam.ID, b.ID, []int64{a.ID, b.ID})

	for i, username := range []string{"alice", "bob"} {
		student := env.createStudent(t, course.ID, username)
		reg, err := env.registrations.GetOrCreate(ctx, exam.ID, student.ID)
		require.NoError(t, err)

		target := slotA.ID
		if i == 1 {
			target = slotAB.ID
		}
		result, err := env.allocations.Reassign(ctx, reg.ID, &target, time.Now(), false)
		require.NoError(t, err)
		require.True(t, result.Committed)
	}

	// Интервал A занят полностью (1 в A + 1 в AB), третьему не хватает мест
	// даже в слоте с собственным reg_count == 1
	carol := env.createStudent(t, course.ID, "carol")
	reg, err := env.registrations.GetOrCreate(ctx, exam.ID, carol.ID)
	require.NoError(t, err)

	result, err := env.allocations.Reassign(ctx, reg.ID, &slotA.ID, time.Now(), false)
	require.NoError(t, err)
	assert.False(t, result.Committed)
	assert.True(t, result.Warnings.Contains(model.WarningNoSeats))
	assert.Nil(t, result.Registration.ExamSlotID)
	assert.Equal(t, 1, env.regCount(t, slotA.ID))
}

func TestReassignWindowClosed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.createCourse(t)
	exam := env.createClosedExam(t, course.ID)
	ts := env.createTimeSlot(t, exam.ID, 5, 0)
	slot := env.createExamSlot(t, exam.ID, ts.ID, []int64{ts.ID})
	student := env.createStudent(t, course.ID, "alice")

	reg, err := env.registrations.GetOrCreate(ctx, exam.ID, student.ID)
	require.NoError(t, err)

	// Без override закрытое окно откатывает назначение без следов
	result, err := env.allocations.Reassign(ctx, reg.ID, &slot.ID, time.Now(), false)
	require.NoError(t, err)
	assert.False(t, result.Committed)
	assert.True(t, result.Warnings.Contains(model.WarningWindowClosed))
	assert.Nil(t, result.Registration.ExamSlotID)
	assert.Equal(t, 0, env.regCount(t, slot.ID))

	// С override назначение проходит, предупреждение остаётся в отчёте
	result, err = env.allocations.Reassign(ctx, reg.ID, &slot.ID, time.Now(), true)
	require.NoError(t, err)
	assert.True(t, result.Committed)
	assert.True(t, result.Warnings.Contains(model.WarningWindowClosed))
	require.NotNil(t, result.Registration.ExamSlotID)
	assert.Equal(t, 1, env.regCount(t, slot.ID))
}

func TestReassignClearCommitsDespiteWarnings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.createCourse(t)
	exam := env.createClosedExam(t, course.ID)
	ts := env.createTimeSlot(t, exam.ID, 5, 0)
	slot := env.createExamSlot(t, exam.ID, ts.ID, []int64{ts.ID})
	student := env.createStudent(t, course.ID, "alice")

	reg, err := env.registrations.GetOrCreate(ctx, exam.ID, student.ID)
	require.NoError(t, err)

	result, err := env.allocations.Reassign(ctx, reg.ID, &slot.ID, time.Now(), true)
	require.NoError(t, err)
	require.True(t, result.Committed)

	// Снятие со слота проходит и при закрытом окне: предупреждения
	// информируют, но не блокируют освобождение места
	result, err = env.allocations.Reassign(ctx, reg.ID, nil, time.Now(), false)
	require.NoError(t, err)
	assert.True(t, result.Committed)
	assert.True(t, result.Warnings.Contains(model.WarningWindowClosed))
	assert.Nil(t, result.Registration.ExamSlotID)
	assert.Equal(t, 0, env.regCount(t, slot.ID))
}

func TestReassignCheckedInIsFrozen(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.createCourse(t)
	exam := env.createExam(t, course.ID)
	ts := env.createTimeSlot(t, exam.ID, 5, 0)
	otherTS := env.createTimeSlot(t, exam.ID, 5, 2*time.Hour)
	slot := env.createExamSlot(t, exam.ID, ts.ID, []int64{ts.ID})
	other := env.createExamSlot(t, exam.ID, otherTS.ID, []int64{otherTS.ID})
	student := env.createStudent(t, course.ID, "alice")
	instructor := env.createStudent(t, course.ID, "prof")

	room := &model.Room{CourseID: course.ID, Name: "101", Capacity: 30}
	require.NoError(t, env.schedule.CreateRoom(ctx, room))

	reg, err := env.registrations.GetOrCreate(ctx, exam.ID, student.ID)
	require.NoError(t, err)

	result, err := env.allocations.Reassign(ctx, reg.ID, &slot.ID, time.Now(), false)
	require.NoError(t, err)
	require.True(t, result.Committed)

	_, err = env.registrations.CheckIn(ctx, reg.ID, room.ID, instructor.ID, "")
	require.NoError(t, err)

	// Отмеченную запись не двигает даже override
	result, err = env.allocations.Reassign(ctx, reg.ID, &other.ID, time.Now(), true)
	require.NoError(t, err)
	assert.False(t, result.Committed)
	assert.True(t, result.Warnings.Contains(model.WarningCheckedIn))
	require.NotNil(t, result.Registration.ExamSlotID)
	assert.Equal(t, slot.ID, *result.Registration.ExamSlotID)
	assert.Equal(t, 1, env.regCount(t, slot.ID))
}

func TestReassignExamMismatchIsFatal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.createCourse(t)
	exam := env.createExam(t, course.ID)
	otherExam := env.createExam(t, course.ID)
	ts := env.createTimeSlot(t, exam.ID, 5, 0)
	foreignTS := env.createTimeSlot(t, otherExam.ID, 5, 0)
	foreignSlot := env.createExamSlot(t, otherExam.ID, foreignTS.ID, []int64{foreignTS.ID})
	_ = env.createExamSlot(t, exam.ID, ts.ID, []int64{ts.ID})
	student := env.createStudent(t, course.ID, "alice")

	reg, err := env.registrations.GetOrCreate(ctx, exam.ID, student.ID)
	require.NoError(t, err)

	_, err = env.allocations.Reassign(ctx, reg.ID, &foreignSlot.ID, time.Now(), true)
	assert.ErrorIs(t, err, ErrExamMismatch)

	fetched, err := env.registrations.Get(ctx, reg.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched.ExamSlotID)
}

func TestReassignWrongSlotType(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.createCourse(t)
	exam := env.createExam(t, course.ID)
	ts := env.createTimeSlot(t, exam.ID, 5, 0)

	slot := &model.ExamSlot{ExamID: exam.ID, StartTimeSlotID: ts.ID, ExamSlotType: model.SlotTypeExtended}
	require.NoError(t, env.slots.CreateExamSlot(ctx, slot, []int64{ts.ID}))

	student := env.createStudent(t, course.ID, "alice") // тип 'r'
	reg, err := env.registrations.GetOrCreate(ctx, exam.ID, student.ID)
	require.NoError(t, err)

	result, err := env.allocations.Reassign(ctx, reg.ID, &slot.ID, time.Now(), false)
	require.NoError(t, err)
	assert.False(t, result.Committed)
	assert.True(t, result.Warnings.Contains(model.WarningWrongSlotType))

	result, err = env.allocations.Reassign(ctx, reg.ID, &slot.ID, time.Now(), true)
	require.NoError(t, err)
	assert.True(t, result.Committed)
	assert.True(t, result.Warnings.Contains(model.WarningWrongSlotType))
}

func TestReassignConcurrentLastSeat(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.createCourse(t)
	exam := env.createExam(t, course.ID)
	ts := env.createTimeSlot(t, exam.ID, 1, 0)
	slot := env.createExamSlot(t, exam.ID, ts.ID, []int64{ts.ID})

	var regIDs []int64
	for _, username := range []string{"alice", "bob"} {
		student := env.createStudent(t, course.ID, username)
		reg, err := env.registrations.GetOrCreate(ctx, exam.ID, student.ID)
		require.NoError(t, err)
		regIDs = append(regIDs, reg.ID)
	}

	// Гонка за последнее место: блокировки интервалов гарантируют ровно
	// одного победителя
	results := make([]*ReassignResult, len(regIDs))
	errs := make([]error, len(regIDs))
	var wg sync.WaitGroup
	for i, regID := range regIDs {
		wg.Add(1)
		go func(i int, regID int64) {
			defer wg.Done()
			results[i], errs[i] = env.allocations.Reassign(ctx, regID, &slot.ID, time.Now(), false)
		}(i, regID)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	committed := 0
	for _, result := range results {
		if result.Committed {
			committed++
		} else {
			assert.True(t, result.Warnings.Contains(model.WarningNoSeats))
		}
	}
	assert.Equal(t, 1, committed)
	assert.Equal(t, 1, env.regCount(t, slot.ID))
}
