package model

import "time"

// Exam экзамен курса. Окно [lock_before, lock_after) ограничивает период,
// в который студент может менять свою запись самостоятельно.
type Exam struct {
	ID         int64      `json:"id"`
	CourseID   int64      `json:"course_id"`
	Name       string     `json:"name"`
	Details    string     `json:"details"`
	LockBefore *time.Time `json:"lock_before"` // указатель - может быть nil
	LockAfter  *time.Time `json:"lock_after"`
}

// SelfServiceOpenAt проверяет, открыто ли окно самостоятельной записи в момент t
func (e *Exam) SelfServiceOpenAt(t time.Time) bool {
	if e.LockBefore != nil && t.Before(*e.LockBefore) {
		return false
	}
	if e.LockAfter != nil && !t.Before(*e.LockAfter) {
		return false
	}
	return true
}
