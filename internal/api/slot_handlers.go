package api

import (
	"net/http"

	"github.com/Freeeeeet/examreg/internal/model"
)

type examSlotRequest struct {
	ExamID          int64          `json:"exam_id"`
	StartTimeSlotID int64          `json:"start_time_slot_id"`
	ExamSlotType    model.SlotType `json:"exam_slot_type"`
	TimeSlotIDs     []int64        `json:"time_slot_ids"`
}

func (s *Server) handleCreateExamSlot(w http.ResponseWriter, r *http.Request) {
	var req examSlotRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	slot := &model.ExamSlot{
		ExamID:          req.ExamID,
		StartTimeSlotID: req.StartTimeSlotID,
		ExamSlotType:    req.ExamSlotType,
	}

	if err := s.slots.CreateExamSlot(r.Context(), slot, req.TimeSlotIDs); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, slot)
}

func (s *Server) handleGetExamSlot(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid exam slot id")
		return
	}

	slot, err := s.slots.GetExamSlot(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, slot)
}

func (s *Server) handleSetExamSlotMembers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid exam slot id")
		return
	}

	var req struct {
		TimeSlotIDs []int64 `json:"time_slot_ids"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.slots.SetTimeSlots(r.Context(), id, req.TimeSlotIDs); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListExamSlots(w http.ResponseWriter, r *http.Request) {
	examID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid exam id")
		return
	}

	views, err := s.slots.ListByExam(r.Context(), examID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

// handleSeats остаток мест для отображения. Значение может быть слегка
// устаревшим, допуск на место даёт только Reassign.
func (s *Server) handleSeats(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid exam slot id")
		return
	}

	seats, err := s.slots.RemainingSeatsCached(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	capacity, err := s.slots.TheoreticalCapacity(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"remaining_seats":      seats,
		"theoretical_capacity": capacity,
	})
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid exam slot id")
		return
	}

	old, actual, err := s.slots.ReconcileOccupancy(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"old_reg_count": old, "reg_count": actual})
}
