package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/MrSnakeDoc/subguard/internal/detect"
	"github.com/MrSnakeDoc/subguard/internal/domain"
	"github.com/MrSnakeDoc/subguard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/subguard/internal/logger"
	"github.com/MrSnakeDoc/subguard/internal/store"
	"github.com/MrSnakeDoc/subguard/internal/tracker"
)

// maxBody caps request payloads; pages posted to /api/scan can be large.
const maxBody = 4 << 20

var validate = validator.New()

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decode reads a JSON body into v and validates it.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid json body: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return err
	}
	return nil
}

// fail maps domain errors to status codes.
func fail(d deps.Deps, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "commitment not found")
	case errors.Is(err, domain.ErrTerminalStatus):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, tracker.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, detect.ErrNoSuchNode):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, detect.ErrNotControl):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		d.Logger.Error("request failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
