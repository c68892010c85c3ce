package model

import "time"

type UserType string

const (
	UserTypeInstructor UserType = "i"
	UserTypeStudent    UserType = "s"
)

type SlotType string

const (
	SlotTypeNormal   SlotType = "r" // Обычное время
	SlotTypeExtended SlotType = "e" // Продлённое время
)

// CourseUser участник курса. Категория exam_slot_type определяет,
// какие слоты он может занимать, флаг dropped блокирует самостоятельные
// изменения (чтение остаётся доступным).
type CourseUser struct {
	ID           int64     `json:"id"`
	CourseID     int64     `json:"course_id"`
	Username     string    `json:"username"`
	UserType     UserType  `json:"user_type"`
	ExamSlotType SlotType  `json:"exam_slot_type"`
	Lecture      string    `json:"lecture"`
	Section      string    `json:"section"`
	Dropped      bool      `json:"dropped"`
	CreatedAt    time.Time `json:"created_at"`
}
