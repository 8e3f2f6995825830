package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/subguard/internal/detect"
	"github.com/MrSnakeDoc/subguard/internal/httpserver/deps"
)

type componentStatus struct {
	OK      bool   `json:"ok"`
	Backend string `json:"backend,omitempty"`
	Live    *int   `json:"live,omitempty"` // commitments not cancelled or expired
	Detail  string `json:"detail,omitempty"`
	Error   string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
	Policy     detect.Policy              `json:"policy"`
}

// Infra reports the state of each backing component.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"store": checkStore(r.Context(), d),
			"timers": {
				OK:      true,
				Backend: d.TimersBackend,
				Detail:  "lead " + d.ReminderLead.String(),
			},
			"detector": {
				OK:     d.Engine != nil,
				Detail: "rules compiled",
			},
		}

		var policy detect.Policy
		if d.Engine != nil {
			policy = d.Engine.Policy()
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
			Policy:     policy,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if s, ok := components["store"]; ok && !s.OK {
		return "critical" // nothing can be tracked or reminded
	}
	if c, ok := components["detector"]; ok && !c.OK {
		return "degraded"
	}
	return "operational"
}

func checkStore(parent context.Context, d deps.Deps) componentStatus {
	st := componentStatus{Backend: d.StoreBackend}
	if d.Store == nil {
		st.Error = "store not initialized"
		return st
	}

	ctx, cancel := context.WithTimeout(parent, 2*time.Second)
	defer cancel()

	if err := d.Store.Ping(ctx); err != nil {
		st.Error = "unreachable"
		return st
	}

	list, err := d.Store.List(ctx)
	if err != nil {
		st.Error = err.Error()
		return st
	}
	live := 0
	for _, c := range list {
		if !c.Status.Terminal() {
			live++
		}
	}
	st.OK = true
	st.Live = &live
	return st
}
