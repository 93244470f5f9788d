package lacarta

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/lacarta/lacarta/pkg/models"
	"github.com/lacarta/lacarta/pkg/store"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondStoreError maps store sentinel errors onto HTTP status codes.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrInvalid):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id, err == nil && id > 0
}

// broadcastSummary pushes the menu's current summary to preview subscribers.
// Load failures only cost the push, not the request.
func (a *App) broadcastSummary(r *http.Request, menuID int64) {
	m, err := a.store.GetMenu(r.Context(), menuID)
	if err != nil {
		a.log.Warn().Err(err).Int64("menu_id", menuID).Msg("preview reload failed")
		return
	}
	a.preview.broadcast(menuID, m.Summary())
}

// Menu handlers

func (a *App) handleCreateMenu(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind models.MenuKind `json:"menu_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	menu, err := a.store.CreateDraftMenu(r.Context(), req.Kind)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, menu)
}

func (a *App) handleListMenus(w http.ResponseWriter, r *http.Request) {
	includeDrafts := r.URL.Query().Get("drafts") == "true"
	menus, err := a.store.ListMenus(r.Context(), includeDrafts)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, menus)
}

func (a *App) handleGetMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid menu id")
		return
	}

	menu, err := a.store.GetMenu(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, menu)
}

func (a *App) handleUpdateBasics(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid menu id")
		return
	}

	var basics models.Basics
	if err := json.NewDecoder(r.Body).Decode(&basics); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := a.store.UpdateMenuBasics(r.Context(), id, basics); err != nil {
		respondStoreError(w, err)
		return
	}

	a.broadcastSummary(r, id)
	respondJSON(w, http.StatusNoContent, nil)
}

func (a *App) handleReplaceSections(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid menu id")
		return
	}

	var sections []models.Section
	if err := json.NewDecoder(r.Body).Decode(&sections); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := a.store.ReplaceSections(r.Context(), id, sections)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	a.broadcastSummary(r, id)
	respondJSON(w, http.StatusOK, result)
}

func (a *App) handleReplaceSectionDishes(w http.ResponseWriter, r *http.Request) {
	menuID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid menu id")
		return
	}
	sectionID, ok := pathID(r, "sectionId")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid section id")
		return
	}

	var dishes []models.Dish
	if err := json.NewDecoder(r.Body).Decode(&dishes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := a.store.ReplaceSectionDishes(r.Context(), menuID, sectionID, dishes)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	a.broadcastSummary(r, menuID)
	respondJSON(w, http.StatusOK, result)
}

func (a *App) handlePublishMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid menu id")
		return
	}

	if err := a.store.PublishMenu(r.Context(), id); err != nil {
		respondStoreError(w, err)
		return
	}

	a.broadcastSummary(r, id)
	respondJSON(w, http.StatusNoContent, nil)
}

func (a *App) handleSetMenuActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid menu id")
		return
	}

	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := a.store.SetMenuActive(r.Context(), id, req.Active); err != nil {
		respondStoreError(w, err)
		return
	}

	a.broadcastSummary(r, id)
	respondJSON(w, http.StatusNoContent, nil)
}

func (a *App) handleDeleteMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid menu id")
		return
	}

	if err := a.store.DeleteMenu(r.Context(), id); err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// Catalog handlers

func (a *App) handleSearchCatalog(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	entries, err := a.store.SearchCatalog(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

func (a *App) handleUpsertCatalogEntry(w http.ResponseWriter, r *http.Request) {
	var entry models.CatalogEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := a.store.UpsertCatalogEntry(r.Context(), entry)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	status := http.StatusOK
	if entry.ID == 0 {
		status = http.StatusCreated
	}
	respondJSON(w, status, result)
}

// handleHealth reports service availability for load balancers and probes.
func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}
