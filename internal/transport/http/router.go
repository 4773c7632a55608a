package http

import (
	"net/http"
)

// Router sets up HTTP routes
type Router struct {
	habitHandler      *HabitHandler
	experienceHandler *ExperienceHandler
	authMiddleware    *AuthMiddleware
	mux               *http.ServeMux
}

// NewRouter creates a new router
func NewRouter(habitHandler *HabitHandler, experienceHandler *ExperienceHandler, authMiddleware *AuthMiddleware) *Router {
	return &Router{
		habitHandler:      habitHandler,
		experienceHandler: experienceHandler,
		authMiddleware:    authMiddleware,
		mux:               http.NewServeMux(),
	}
}

// Setup configures all routes
func (r *Router) Setup() http.Handler {

	// Habit routes (all require authentication)
	r.mux.HandleFunc("/api/v1/habits/create", r.authMiddleware.Auth(r.habitHandler.CreateHabit))
	r.mux.HandleFunc("/api/v1/habits/list", r.authMiddleware.Auth(r.habitHandler.ListHabits))
	r.mux.HandleFunc("/api/v1/habits/get", r.authMiddleware.Auth(r.habitHandler.GetHabit))
	r.mux.HandleFunc("/api/v1/habits/update", r.authMiddleware.Auth(r.habitHandler.UpdateHabit))
	r.mux.HandleFunc("/api/v1/habits/delete", r.authMiddleware.Auth(r.habitHandler.DeleteHabit))
	r.mux.HandleFunc("/api/v1/habits/progress", r.authMiddleware.Auth(r.habitHandler.LogProgress))
	r.mux.HandleFunc("/api/v1/habits/history", r.authMiddleware.Auth(r.habitHandler.GetHabitHistory))
	r.mux.HandleFunc("/api/v1/habits/sync", r.authMiddleware.Auth(r.habitHandler.SyncNewDay))

	// Experience routes
	r.mux.HandleFunc("/api/v1/experience/profile", r.authMiddleware.Auth(r.experienceHandler.GetProfile))
	r.mux.HandleFunc("/api/v1/experience/level", r.authMiddleware.Auth(r.experienceHandler.GetLevelInfo))

	r.mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	var handler http.Handler = r.mux

	handler = Logging(handler)

	handler = RateLimit(60)(handler)

	return handler
}
