package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func slot(start, end string) *TimeSlot {
	s, _ := time.Parse(time.RFC3339, start)
	e, _ := time.Parse(time.RFC3339, end)
	return &TimeSlot{StartTime: s, EndTime: e}
}

func TestTimeSlotOverlaps(t *testing.T) {
	a := slot("2026-06-01T10:00:00Z", "2026-06-01T12:00:00Z")

	// Частичное пересечение
	assert.True(t, a.Overlaps(slot("2026-06-01T11:00:00Z", "2026-06-01T13:00:00Z")))
	assert.True(t, a.Overlaps(slot("2026-06-01T09:00:00Z", "2026-06-01T11:00:00Z")))

	// Вложенность
	assert.True(t, a.Overlaps(slot("2026-06-01T10:30:00Z", "2026-06-01T11:30:00Z")))
	assert.True(t, slot("2026-06-01T10:30:00Z", "2026-06-01T11:30:00Z").Overlaps(a))

	// Касание границами не пересечение: интервалы полуоткрытые
	assert.False(t, a.Overlaps(slot("2026-06-01T12:00:00Z", "2026-06-01T14:00:00Z")))
	assert.False(t, a.Overlaps(slot("2026-06-01T08:00:00Z", "2026-06-01T10:00:00Z")))

	// Непересекающиеся
	assert.False(t, a.Overlaps(slot("2026-06-01T14:00:00Z", "2026-06-01T16:00:00Z")))
}

func TestTimeSlotOverlapsZeroDuration(t *testing.T) {
	a := slot("2026-06-01T10:00:00Z", "2026-06-01T12:00:00Z")
	inside := slot("2026-06-01T11:00:00Z", "2026-06-01T11:00:00Z")
	boundary := slot("2026-06-01T12:00:00Z", "2026-06-01T12:00:00Z")

	// Точка строго внутри окна пересекается с ним
	assert.True(t, a.Overlaps(inside))
	assert.True(t, inside.Overlaps(a))

	// Точка на границе не попадает в полуоткрытый интервал
	assert.False(t, a.Overlaps(boundary))
	assert.False(t, boundary.Overlaps(a))

	// Две точки не пересекаются даже в одном и том же моменте
	assert.False(t, inside.Overlaps(slot("2026-06-01T11:00:00Z", "2026-06-01T11:00:00Z")))
}

func TestTimeSlotSameRoom(t *testing.T) {
	room1 := int64(1)
	room2 := int64(2)

	a := &TimeSlot{RoomID: &room1}
	b := &TimeSlot{RoomID: &room1}
	c := &TimeSlot{RoomID: &room2}
	noRoom := &TimeSlot{}

	assert.True(t, a.SameRoom(b))
	assert.False(t, a.SameRoom(c))

	// Два интервала без аудитории — одна группа
	assert.True(t, noRoom.SameRoom(&TimeSlot{}))
	assert.False(t, a.SameRoom(noRoom))
	assert.False(t, noRoom.SameRoom(a))
}
