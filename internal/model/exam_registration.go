package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamRegistration запись участника курса на экзамен. Пара (exam, course_user)
// уникальна, слот может отсутствовать. Поля checkin_* заполняются при явке
// на экзамен и не трогаются протоколом назначения слотов.
type ExamRegistration struct {
	ID           int64     `json:"id"`
	ExamID       int64     `json:"exam_id"`
	CourseUserID int64     `json:"course_user_id"`
	ExamSlotID   *int64    `json:"exam_slot_id"` // указатель - может быть nil
	AccessCode   uuid.UUID `json:"access_code"`

	CheckinRoomID  *int64     `json:"checkin_room_id"`
	CheckinUserID  *int64     `json:"checkin_user_id"`
	CheckinTimeIn  *time.Time `json:"checkin_time_in"`
	CheckinTimeOut *time.Time `json:"checkin_time_out"`
	CheckinNotes   string     `json:"checkin_notes"`

	CreatedAt time.Time `json:"created_at"`
}

// CheckedIn участник уже отмечен на экзамене
func (er *ExamRegistration) CheckedIn() bool {
	return er.CheckinTimeIn != nil
}
