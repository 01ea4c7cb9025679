package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Ivicom76/RoboMeetServer/internal/core/service"
)

const banner = "RoboMeet signaling server\n"

type Handler struct {
	Rooms      *service.RoomService
	Supervisor *Supervisor
}

func NewHandler(rooms *service.RoomService, sup *Supervisor) *Handler {
	return &Handler{
		Rooms:      rooms,
		Supervisor: sup,
	}
}

func (h *Handler) NewRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/ws", h.ServeWS)

	// Platform probes sometimes hit the root, answer anything else with
	// the banner.
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(banner))
	})

	return r
}
