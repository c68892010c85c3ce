package service

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/examreg/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTimeSlotRejectsOverlapInSameRoom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.createCourse(t)
	exam := env.createExam(t, course.ID)

	room := &model.Room{CourseID: course.ID, Name: "101", Capacity: 30}
	require.NoError(t, env.schedule.CreateRoom(ctx, room))

	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	first := &model.TimeSlot{
		ExamID:    exam.ID,
		RoomID:    &room.ID,
		StartTime: base,
		EndTime:   base.Add(2 * time.Hour),
		Capacity:  10,
	}
	require.NoError(t, env.schedule.CreateTimeSlot(ctx, first))

	// Пересечение в той же аудитории запрещено
	overlapping := &model.TimeSlot{
		ExamID:    exam.ID,
		RoomID:    &room.ID,
		StartTime: base.Add(time.Hour),
		EndTime:   base.Add(3 * time.Hour),
		Capacity:  10,
	}
	err := env.schedule.CreateTimeSlot(ctx, overlapping)
	var overlapErr *OverlapError
	require.ErrorAs(t, err, &overlapErr)
	assert.Equal(t, first.ID, overlapErr.ConflictingID)

	// Касание границами разрешено
	adjacent := &model.TimeSlot{
		ExamID:    exam.ID,
		RoomID:    &room.ID,
		StartTime: base.Add(2 * time.Hour),
		EndTime:   base.Add(3 * time.Hour),
		Capacity:  10,
	}
	require.NoError(t, env.schedule.CreateTimeSlot(ctx, adjacent))
}

func TestCreateTimeSlotOverlapNullRoomGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.createCourse(t)
	exam := env.createExam(t, course.ID)

	room := &model.Room{CourseID: course.ID, Name: "101", Capacity: 30}
	require.NoError(t, env.schedule.CreateRoom(ctx, room))

	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	noRoom := &model.TimeSlot{ExamID: exam.ID, StartTime: base, EndTime: base.Add(time.Hour), Capacity: 5}
	require.NoError(t, env.schedule.CreateTimeSlot(ctx, noRoom))

	// Интервалы без аудитории образуют собственную группу пересечений
	alsoNoRoom := &model.TimeSlot{ExamID: exam.ID, StartTime: base, EndTime: base.Add(time.Hour), Capacity: 5}
	var overlapErr *OverlapError
	require.ErrorAs(t, env.schedule.CreateTimeSlot(ctx, alsoNoRoom), &overlapErr)

	// А интервал в аудитории с ними не конфликтует
	withRoom := &model.TimeSlot{ExamID: exam.ID, RoomID: &room.ID, StartTime: base, EndTime: base.Add(time.Hour), Capacity: 5}
	require.NoError(t, env.schedule.CreateTimeSlot(ctx, withRoom))
}

func TestCreateTimeSlotValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.createCourse(t)
	exam := env.createExam(t, course.ID)

	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	var validationErr *ValidationError

	// Отрицательная вместимость
	bad := &model.TimeSlot{ExamID: exam.ID, StartTime: base, EndTime: base.Add(time.Hour), Capacity: -1}
	require.ErrorAs(t, env.schedule.CreateTimeSlot(ctx, bad), &validationErr)

	// Конец раньше начала
	bad = &model.TimeSlot{ExamID: exam.ID, StartTime: base.Add(time.Hour), EndTime: base, Capacity: 5}
	require.ErrorAs(t, env.schedule.CreateTimeSlot(ctx, bad), &validationErr)

	// Нулевая длительность допустима
	zero := &model.TimeSlot{ExamID: exam.ID, StartTime: base, EndTime: base, Capacity: 5}
	require.NoError(t, env.schedule.CreateTimeSlot(ctx, zero))
}
