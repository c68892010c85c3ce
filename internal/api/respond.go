package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Freeeeeet/examreg/internal/service"
	"github.com/go-chi/chi/v5"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError переводит ошибку сервиса в HTTP-статус
func writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *service.ValidationError
	var overlapErr *service.OverlapError

	switch {
	case errors.Is(err, service.ErrRegistrationNotFound),
		errors.Is(err, service.ErrExamSlotNotFound),
		errors.Is(err, service.ErrExamNotFound),
		errors.Is(err, service.ErrCourseUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrExamMismatch):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &overlapErr):
		writeError(w, http.StatusConflict, overlapErr.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
