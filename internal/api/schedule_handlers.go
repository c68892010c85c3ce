package api

import (
	"net/http"
	"time"

	"github.com/Freeeeeet/examreg/internal/model"
)

type examRequest struct {
	CourseID   int64      `json:"course_id"`
	Name       string     `json:"name"`
	Details    string     `json:"details"`
	LockBefore *time.Time `json:"lock_before"`
	LockAfter  *time.Time `json:"lock_after"`
}

func (s *Server) handleCreateExam(w http.ResponseWriter, r *http.Request) {
	var req examRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exam := &model.Exam{
		CourseID:   req.CourseID,
		Name:       req.Name,
		Details:    req.Details,
		LockBefore: req.LockBefore,
		LockAfter:  req.LockAfter,
	}

	if err := s.schedule.CreateExam(r.Context(), exam); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, exam)
}

func (s *Server) handleGetExam(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid exam id")
		return
	}

	exam, err := s.schedule.GetExam(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, exam)
}

func (s *Server) handleUpdateExam(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid exam id")
		return
	}

	var req examRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exam := &model.Exam{
		ID:         id,
		CourseID:   req.CourseID,
		Name:       req.Name,
		Details:    req.Details,
		LockBefore: req.LockBefore,
		LockAfter:  req.LockAfter,
	}

	if err := s.schedule.UpdateExam(r.Context(), exam); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, exam)
}

func (s *Server) handleDeleteExam(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid exam id")
		return
	}

	if err := s.schedule.DeleteExam(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type timeSlotRequest struct {
	ExamID    int64     `json:"exam_id"`
	RoomID    *int64    `json:"room_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Capacity  int       `json:"capacity"`
}

func (s *Server) handleCreateTimeSlot(w http.ResponseWriter, r *http.Request) {
	var req timeSlotRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ts := &model.TimeSlot{
		ExamID:    req.ExamID,
		RoomID:    req.RoomID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Capacity:  req.Capacity,
	}

	if err := s.schedule.CreateTimeSlot(r.Context(), ts); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ts)
}

func (s *Server) handleUpdateTimeSlot(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid time slot id")
		return
	}

	var req timeSlotRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ts := &model.TimeSlot{
		ID:        id,
		ExamID:    req.ExamID,
		RoomID:    req.RoomID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Capacity:  req.Capacity,
	}

	if err := s.schedule.UpdateTimeSlot(r.Context(), ts); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ts)
}

func (s *Server) handleDeleteTimeSlot(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid time slot id")
		return
	}

	if err := s.schedule.DeleteTimeSlot(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTimeSlots(w http.ResponseWriter, r *http.Request) {
	examID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid exam id")
		return
	}

	slots, err := s.schedule.ListTimeSlots(r.Context(), examID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, slots)
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var room model.Room
	if err := decodeJSON(r, &room); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.schedule.CreateRoom(r.Context(), &room); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, &room)
}
