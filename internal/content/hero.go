package content

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/folio-cms/folio/internal/model"
	"github.com/folio-cms/folio/internal/store"
)

const heroPath = "hero"

// HeroSection manages the singleton hero record. Unlike the collections it
// saves by merging: fields missing from a save keep their stored value.
type HeroSection struct {
	store DocumentStore
}

// NewHeroSection returns a HeroSection backed by s.
func NewHeroSection(s DocumentStore) *HeroSection {
	return &HeroSection{store: s}
}

// Get returns the hero, or nil if it has never been saved.
func (h *HeroSection) Get(ctx context.Context) (*model.Hero, error) {
	doc, err := h.store.Get(ctx, heroPath, model.HeroID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, storeError("get hero", err)
	}
	return decodeHero(doc)
}

// Save merges the top-level fields into the stored hero, creating it on
// first save. id, createdAt and updatedAt in fields are ignored.
func (h *HeroSection) Save(ctx context.Context, fields map[string]json.RawMessage) (*model.Hero, error) {
	patch := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		switch k {
		case "id", "createdAt", "updatedAt":
			continue
		}
		patch[k] = v
	}

	// Type-check the patch against the hero shape before it reaches the store.
	raw, err := json.Marshal(patch)
	if err != nil {
		return nil, &ValidationError{Field: "body", Message: err.Error()}
	}
	var probe model.Hero
	if err := json.Unmarshal(raw, &probe); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, &ValidationError{Field: typeErr.Field, Message: "has the wrong type"}
		}
		return nil, &ValidationError{Field: "body", Message: "is not a valid hero"}
	}

	doc, err := h.store.Update(ctx, heroPath, model.HeroID, patch)
	if err != nil {
		return nil, storeError("save hero", err)
	}
	return decodeHero(doc)
}

func decodeHero(doc *store.Document) (*model.Hero, error) {
	var hero model.Hero
	if err := json.Unmarshal(doc.Body, &hero); err != nil {
		return nil, err
	}
	setMeta(&hero.Meta, doc)
	return &hero, nil
}
