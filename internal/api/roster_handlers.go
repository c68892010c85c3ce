package api

import (
	"net/http"

	"github.com/Freeeeeet/examreg/internal/model"
)

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var course model.Course
	if err := decodeJSON(r, &course); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.roster.CreateCourse(r.Context(), &course); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, &course)
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	course, err := s.roster.GetCourse(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, course)
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.roster.ListCourses(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, courses)
}

func (s *Server) handleCreateCourseUser(w http.ResponseWriter, r *http.Request) {
	var cu model.CourseUser
	if err := decodeJSON(r, &cu); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.roster.CreateCourseUser(r.Context(), &cu); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, &cu)
}

func (s *Server) handleUpdateCourseUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid course user id")
		return
	}

	var cu model.CourseUser
	if err := decodeJSON(r, &cu); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cu.ID = id

	if err := s.roster.UpdateCourseUser(r.Context(), &cu); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &cu)
}

func (s *Server) handleListCourseUsers(w http.ResponseWriter, r *http.Request) {
	courseID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	users, err := s.roster.ListCourseUsers(r.Context(), courseID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	courseID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	rooms, err := s.schedule.ListRooms(r.Context(), courseID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rooms)
}
