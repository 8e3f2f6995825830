package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/subguard/internal/detect"
	"github.com/MrSnakeDoc/subguard/internal/dom"
	"github.com/MrSnakeDoc/subguard/internal/domain"
	"github.com/MrSnakeDoc/subguard/internal/httpserver/deps"
)

type pageRequest struct {
	HTML string `json:"html" validate:"required"`
	URL  string `json:"url" validate:"required,url"`
}

type detectRequest struct {
	pageRequest
	Path string `json:"path" validate:"required"`
}

type trackRequest struct {
	detectRequest
	Overrides domain.Overrides `json:"overrides"`
}

type scanResponse struct {
	URL      string           `json:"url"`
	Controls []detect.Control `json:"controls"`
}

// Scan lists the commitment controls of a posted page.
func Scan(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pageRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		root, err := dom.ParseString(req.HTML)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, scanResponse{URL: req.URL, Controls: d.Engine.Controls(root, req.URL)})
	}
}

// detectMessage parses the page and simulates activating the control.
func detectMessage(d deps.Deps, req detectRequest) (domain.DetectionMessage, error) {
	root, err := dom.ParseString(req.HTML)
	if err != nil {
		return domain.DetectionMessage{}, err
	}
	msg, err := d.Engine.DetectAt(root, req.URL, req.Path)
	if err != nil {
		return msg, err
	}
	d.Metrics.IncDetections(msg.TrialDetected)
	d.Metrics.ObserveRiskScore(msg.RiskScore)
	return msg, nil
}

// Detect returns the detection message for one control without saving it.
func Detect(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req detectRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		msg, err := detectMessage(d, req)
		if err != nil {
			fail(d, w, err)
			return
		}
		writeJSON(w, http.StatusOK, msg)
	}
}

// Track detects and persists in one call, then arms the reminder.
func Track(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req trackRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		msg, err := detectMessage(d, req.detectRequest)
		if err != nil {
			fail(d, w, err)
			return
		}
		c, err := d.Tracker.Track(r.Context(), msg, req.Overrides)
		if err != nil {
			fail(d, w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

type riskResponse struct {
	Score int          `json:"score"`
	Level detect.Level `json:"level"`
	Label string       `json:"label"`
}

// Risk classifies a score.
func Risk(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		score, err := strconv.Atoi(chi.URLParam(r, "score"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "score must be an integer")
			return
		}
		level := detect.Classify(score)
		writeJSON(w, http.StatusOK, riskResponse{Score: score, Level: level, Label: level.Label()})
	}
}
