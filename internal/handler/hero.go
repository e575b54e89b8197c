package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/folio-cms/folio/internal/content"
)

// HeroHandler serves the singleton hero section.
type HeroHandler struct {
	hero   *content.HeroSection
	logger *slog.Logger
}

func NewHeroHandler(hero *content.HeroSection, logger *slog.Logger) *HeroHandler {
	return &HeroHandler{hero: hero, logger: logger}
}

// Get returns the hero, or null data when none has been saved.
// GET /api/hero
func (h *HeroHandler) Get(w http.ResponseWriter, r *http.Request) {
	hero, err := h.hero.Get(r.Context())
	if err != nil {
		fail(w, r, h.logger, "fetch hero", err)
		return
	}
	if hero == nil {
		writeData(w, nil)
		return
	}
	writeData(w, hero)
}

// Save merges the posted fields into the hero.
// POST /api/hero
func (h *HeroHandler) Save(w http.ResponseWriter, r *http.Request) {
	var fields map[string]json.RawMessage
	if err := readJSON(r, &fields); err != nil || fields == nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	hero, err := h.hero.Save(r.Context(), fields)
	if err != nil {
		fail(w, r, h.logger, "save hero", err)
		return
	}
	writeData(w, hero)
}
