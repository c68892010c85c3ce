package api

import (
	"net/http"
	"time"

	"github.com/Freeeeeet/examreg/internal/model"
)

func (s *Server) handleGetOrCreateRegistration(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExamID       int64 `json:"exam_id"`
		CourseUserID int64 `json:"course_user_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reg, err := s.registrations.GetOrCreate(r.Context(), req.ExamID, req.CourseUserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reg)
}

func (s *Server) handleGetRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid registration id")
		return
	}

	reg, err := s.registrations.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reg)
}

func (s *Server) handleListRegistrations(w http.ResponseWriter, r *http.Request) {
	examID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid exam id")
		return
	}

	regs, err := s.registrations.ListByExam(r.Context(), examID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, regs)
}

type reassignResponse struct {
	Registration *model.ExamRegistration `json:"registration"`
	Warnings     []warningView           `json:"warnings"`
	Committed    bool                    `json:"committed"`
}

type warningView struct {
	Code    model.Warning `json:"code"`
	Message string        `json:"message"`
}

func (s *Server) handleReassign(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid registration id")
		return
	}

	var req struct {
		ExamSlotID *int64 `json:"exam_slot_id"`
		Override   bool   `json:"override"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.allocations.Reassign(r.Context(), id, req.ExamSlotID, time.Now(), req.Override)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := reassignResponse{
		Registration: result.Registration,
		Warnings:     make([]warningView, 0, len(result.Warnings)),
		Committed:    result.Committed,
	}
	for _, warning := range result.Warnings {
		resp.Warnings = append(resp.Warnings, warningView{Code: warning, Message: warning.Message()})
	}

	status := http.StatusOK
	if !result.Committed {
		// Отказ не ошибка: состояние не изменилось, причины в warnings
		status = http.StatusConflict
	}

	writeJSON(w, status, resp)
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid registration id")
		return
	}

	var req struct {
		RoomID      int64  `json:"room_id"`
		StaffUserID int64  `json:"staff_user_id"`
		Notes       string `json:"notes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reg, err := s.registrations.CheckIn(r.Context(), id, req.RoomID, req.StaffUserID, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reg)
}

func (s *Server) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid registration id")
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reg, err := s.registrations.CheckOut(r.Context(), id, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reg)
}
