package model

import "time"

// TimeSlot физический интервал времени экзамена: аудитория, границы и
// количество посадочных мест. Интервалы одного экзамена в одной аудитории
// не должны пересекаться.
type TimeSlot struct {
	ID        int64     `json:"id"`
	ExamID    int64     `json:"exam_id"`
	RoomID    *int64    `json:"room_id"` // указатель - аудитория может быть не назначена
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Capacity  int       `json:"capacity"`
}

// Overlaps проверяет пересечение полуоткрытых интервалов [start, end)
// строгими сравнениями. Два интервала нулевой длины не пересекаются
// между собой даже в одной точке; точка строго внутри чужого окна
// пересечением считается.
func (ts *TimeSlot) Overlaps(other *TimeSlot) bool {
	return ts.StartTime.Before(other.EndTime) && other.StartTime.Before(ts.EndTime)
}

// SameRoom сравнивает аудитории; два интервала без аудитории считаются
// принадлежащими одной группе
func (ts *TimeSlot) SameRoom(other *TimeSlot) bool {
	if ts.RoomID == nil || other.RoomID == nil {
		return ts.RoomID == nil && other.RoomID == nil
	}
	return *ts.RoomID == *other.RoomID
}
