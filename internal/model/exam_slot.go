package model

import "time"

// ExamSlot вариант записи на экзамен: набор интервалов TimeSlot, который
// студент занимает как единое целое. Якорный интервал (start_time_slot)
// задаёт каноническое время начала, reg_count — денормализованный счётчик
// записей, указывающих на слот.
type ExamSlot struct {
	ID              int64    `json:"id"`
	ExamID          int64    `json:"exam_id"`
	StartTimeSlotID int64    `json:"start_time_slot_id"`
	ExamSlotType    SlotType `json:"exam_slot_type"`
	RegCount        int      `json:"reg_count"`

	// Дополнительные поля для удобства (не из БД)
	TimeSlots []*TimeSlot `json:"time_slots,omitempty"`
}

// StartTime начало слота — начало якорного интервала.
// Требует загруженных TimeSlots.
func (es *ExamSlot) StartTime() (time.Time, bool) {
	for _, ts := range es.TimeSlots {
		if ts.ID == es.StartTimeSlotID {
			return ts.StartTime, true
		}
	}
	return time.Time{}, false
}

// EndTime окончание слота — максимальное окончание среди интервалов.
// Требует загруженных TimeSlots.
func (es *ExamSlot) EndTime() (time.Time, bool) {
	if len(es.TimeSlots) == 0 {
		return time.Time{}, false
	}
	end := es.TimeSlots[0].EndTime
	for _, ts := range es.TimeSlots[1:] {
		if ts.EndTime.After(end) {
			end = ts.EndTime
		}
	}
	return end, true
}
