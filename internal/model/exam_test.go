package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExamSelfServiceOpenAt(t *testing.T) {
	before := mustTime("2026-06-01T00:00:00Z")
	after := mustTime("2026-06-10T00:00:00Z")

	exam := &Exam{LockBefore: &before, LockAfter: &after}

	assert.False(t, exam.SelfServiceOpenAt(mustTime("2026-05-31T23:59:59Z")))
	assert.True(t, exam.SelfServiceOpenAt(before))
	assert.True(t, exam.SelfServiceOpenAt(mustTime("2026-06-05T12:00:00Z")))

	// Правая граница не включается
	assert.False(t, exam.SelfServiceOpenAt(after))
	assert.False(t, exam.SelfServiceOpenAt(mustTime("2026-06-11T00:00:00Z")))
}

func TestExamSelfServiceOpenAtNilBounds(t *testing.T) {
	// Без границ окно открыто всегда
	exam := &Exam{}
	assert.True(t, exam.SelfServiceOpenAt(time.Now()))

	// Только нижняя граница
	before := mustTime("2026-06-01T00:00:00Z")
	exam = &Exam{LockBefore: &before}
	assert.False(t, exam.SelfServiceOpenAt(mustTime("2026-05-01T00:00:00Z")))
	assert.True(t, exam.SelfServiceOpenAt(mustTime("2026-07-01T00:00:00Z")))

	// Только верхняя граница
	after := mustTime("2026-06-10T00:00:00Z")
	exam = &Exam{LockAfter: &after}
	assert.True(t, exam.SelfServiceOpenAt(mustTime("2026-05-01T00:00:00Z")))
	assert.False(t, exam.SelfServiceOpenAt(mustTime("2026-07-01T00:00:00Z")))
}

func TestWarningsAddDeduplicates(t *testing.T) {
	var ws Warnings
	ws.Add(WarningWindowClosed)
	ws.Add(WarningNoSeats)
	ws.Add(WarningWindowClosed)

	assert.Len(t, ws, 2)
	assert.True(t, ws.Contains(WarningWindowClosed))
	assert.True(t, ws.Contains(WarningNoSeats))
	assert.False(t, ws.Contains(WarningDropped))
}
