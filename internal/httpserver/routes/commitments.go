package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/subguard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/subguard/internal/httpserver/handlers"
)

func init() { Register(GroupAPI, registerCommitments) }

func registerCommitments(r chi.Router, d deps.Deps) {
	r.Get("/api/commitments", handlers.ListCommitments(d))
	r.Post("/api/commitments", handlers.CreateCommitment(d))
	r.Get("/api/commitments/{id}", handlers.GetCommitment(d))
	r.Patch("/api/commitments/{id}", handlers.UpdateCommitment(d))
	r.Delete("/api/commitments/{id}", handlers.DeleteCommitment(d))
	r.Post("/api/commitments/{id}/cancel", handlers.CancelCommitment(d))
	r.Get("/api/burn-rate", handlers.BurnRate(d))
}
