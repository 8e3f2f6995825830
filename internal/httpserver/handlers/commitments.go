package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/subguard/internal/domain"
	"github.com/MrSnakeDoc/subguard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/subguard/internal/tracker"
)

type listResponse struct {
	Commitments []*domain.Commitment `json:"commitments"`
	Count       int                  `json:"count"`
}

func ListCommitments(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := d.Tracker.List(r.Context())
		if err != nil {
			fail(d, w, err)
			return
		}
		if list == nil {
			list = []*domain.Commitment{}
		}
		writeJSON(w, http.StatusOK, listResponse{Commitments: list, Count: len(list)})
	}
}

func CreateCommitment(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var e tracker.ManualEntry
		if err := decode(w, r, &e); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		c, err := d.Tracker.Add(r.Context(), e)
		if err != nil {
			fail(d, w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func GetCommitment(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := d.Tracker.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			fail(d, w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func UpdateCommitment(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p domain.CommitmentPatch
		if err := decode(w, r, &p); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		c, err := d.Tracker.Update(r.Context(), chi.URLParam(r, "id"), p)
		if err != nil {
			fail(d, w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func CancelCommitment(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := d.Tracker.Cancel(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			fail(d, w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func DeleteCommitment(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Tracker.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
			fail(d, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type burnRateResponse struct {
	Monthly   string `json:"monthly"`
	Formatted string `json:"formatted"`
}

// BurnRate reports the monthly cost of live commitments.
func BurnRate(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rate, err := d.Tracker.BurnRate(r.Context())
		if err != nil {
			fail(d, w, err)
			return
		}
		writeJSON(w, http.StatusOK, burnRateResponse{
			Monthly:   rate.StringFixed(2),
			Formatted: domain.FormatPrice(rate, domain.DefaultCurrency),
		})
	}
}
