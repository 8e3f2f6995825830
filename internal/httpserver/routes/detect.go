package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/subguard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/subguard/internal/httpserver/handlers"
)

func init() { Register(GroupAPI, registerDetect) }

func registerDetect(r chi.Router, d deps.Deps) {
	r.Post("/api/scan", handlers.Scan(d))
	r.Post("/api/detect", handlers.Detect(d))
	r.Post("/api/track", handlers.Track(d))
	r.Get("/api/risk/{score}", handlers.Risk(d))
}
