package api

import (
	"net/http"

	"github.com/Freeeeeet/examreg/internal/cache"
	"github.com/Freeeeeet/examreg/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server HTTP-фасад над сервисами. Тонкий слой: разбор запроса, вызов
// сервиса, сериализация ответа. Вся логика живёт в service.
type Server struct {
	roster        *service.RosterService
	schedule      *service.ScheduleService
	slots         *service.SlotService
	registrations *service.RegistrationService
	allocations   *service.AllocationService
	seatsCache    *cache.SeatsCache // может быть nil
	logger        *zap.Logger
}

func NewServer(
	roster *service.RosterService,
	schedule *service.ScheduleService,
	slots *service.SlotService,
	registrations *service.RegistrationService,
	allocations *service.AllocationService,
	seatsCache *cache.SeatsCache,
	logger *zap.Logger,
) *Server {
	return &Server{
		roster:        roster,
		schedule:      schedule,
		slots:         slots,
		registrations: registrations,
		allocations:   allocations,
		seatsCache:    seatsCache,
		logger:        logger,
	}
}

// Router собирает маршруты сервера
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/courses", func(r chi.Router) {
			r.Post("/", s.handleCreateCourse)
			r.Get("/", s.handleListCourses)
			r.Get("/{id}", s.handleGetCourse)
			r.Get("/{id}/users", s.handleListCourseUsers)
			r.Get("/{id}/rooms", s.handleListRooms)
		})

		r.Route("/course-users", func(r chi.Router) {
			r.Post("/", s.handleCreateCourseUser)
			r.Put("/{id}", s.handleUpdateCourseUser)
		})

		r.Route("/exams", func(r chi.Router) {
			r.Post("/", s.handleCreateExam)
			r.Get("/{id}", s.handleGetExam)
			r.Put("/{id}", s.handleUpdateExam)
			r.Delete("/{id}", s.handleDeleteExam)
			r.Get("/{id}/time-slots", s.handleListTimeSlots)
			r.Get("/{id}/exam-slots", s.handleListExamSlots)
			r.Get("/{id}/registrations", s.handleListRegistrations)
		})

		r.Route("/time-slots", func(r chi.Router) {
			r.Post("/", s.handleCreateTimeSlot)
			r.Put("/{id}", s.handleUpdateTimeSlot)
			r.Delete("/{id}", s.handleDeleteTimeSlot)
		})

		r.Route("/exam-slots", func(r chi.Router) {
			r.Post("/", s.handleCreateExamSlot)
			r.Get("/{id}", s.handleGetExamSlot)
			r.Put("/{id}/time-slots", s.handleSetExamSlotMembers)
			r.Get("/{id}/seats", s.handleSeats)
			r.Post("/{id}/reconcile", s.handleReconcile)
		})

		r.Route("/registrations", func(r chi.Router) {
			r.Post("/", s.handleGetOrCreateRegistration)
			r.Get("/{id}", s.handleGetRegistration)
			r.Post("/{id}/reassign", s.handleReassign)
			r.Post("/{id}/checkin", s.handleCheckIn)
			r.Post("/{id}/checkout", s.handleCheckOut)
		})

		r.Post("/rooms", s.handleCreateRoom)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if s.seatsCache != nil {
		if err := s.seatsCache.Ping(r.Context()); err != nil {
			status["cache"] = "unavailable"
		}
	}
	writeJSON(w, http.StatusOK, status)
}
