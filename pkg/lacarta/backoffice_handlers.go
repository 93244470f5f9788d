package lacarta

import (
	"encoding/json"
	"net/http"

	"github.com/lacarta/lacarta/pkg/models"
)

// Reservation handlers

func (a *App) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	var res models.Reservation
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := a.store.CreateReservation(r.Context(), &res); err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, res)
}

func (a *App) handleGetReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid reservation id")
		return
	}

	res, err := a.store.GetReservation(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, res)
}

func (a *App) handleListReservations(w http.ResponseWriter, r *http.Request) {
	list, err := a.store.ListReservations(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (a *App) handleUpdateReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid reservation id")
		return
	}

	var res models.Reservation
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	res.ID = id

	if err := a.store.UpdateReservation(r.Context(), &res); err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, res)
}

func (a *App) handleDeleteReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid reservation id")
		return
	}

	if err := a.store.DeleteReservation(r.Context(), id); err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// Time tracking handlers

func (a *App) handleClockIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Staff string `json:"staff"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	entry, err := a.store.ClockIn(r.Context(), req.Staff)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}

func (a *App) handleClockOut(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid time entry id")
		return
	}

	entry, err := a.store.ClockOut(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

func (a *App) handleListTimeEntries(w http.ResponseWriter, r *http.Request) {
	list, err := a.store.ListTimeEntries(r.Context(), r.URL.Query().Get("staff"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// Invoice handlers

func (a *App) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var inv models.Invoice
	if err := json.NewDecoder(r.Body).Decode(&inv); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := a.store.CreateInvoice(r.Context(), &inv); err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, inv)
}

func (a *App) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	inv, err := a.store.GetInvoice(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, inv)
}

func (a *App) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	list, err := a.store.ListInvoices(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}
