package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/subguard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/subguard/internal/httpserver/mw"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

// Group selects the middleware stack a registrar is mounted under.
type Group int

const (
	// GroupOps holds health, infra and metrics endpoints (CIDR allow-list).
	GroupOps Group = iota
	// GroupAPI holds /api endpoints (shared per-client rate limit).
	GroupAPI
)

type entry struct {
	group Group
	reg   Registrar
	mws   []Middleware
}

var registry []entry

// Register a registrar in a group with optional per-route middlewares.
func Register(group Group, reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{group: group, reg: reg, mws: mws})
}

// Called once from server.New()
func RegisterAll(r chi.Router, d deps.Deps) {
	groups := map[Group]chi.Router{
		GroupOps: r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)),
		GroupAPI: r.With(mw.RateLimit(mw.RateLimitConfig{
			Burst:             d.RateBurst,
			RefillPerIPPerMin: d.RatePerMin,
			MaxEntries:        10000,
			TrustProxy:        d.TrustProxy,
		})),
	}

	for _, e := range registry {
		base := groups[e.group]
		if len(e.mws) == 0 {
			e.reg(base, d)
			continue
		}
		e.reg(base.With(e.mws...), d)
	}
}
