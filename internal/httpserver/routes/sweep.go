package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/subguard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/subguard/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/subguard/internal/httpserver/mw"
)

func init() { Register(GroupAPI, registerSweep) }

func registerSweep(r chi.Router, d deps.Deps) {
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).Post("/api/sweep", handlers.Sweep(d))
}
