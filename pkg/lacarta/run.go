package lacarta

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Run starts the HTTP server and blocks until the context is cancelled or
// the server fails. On cancellation it shuts down gracefully, giving active
// requests five seconds to finish.
//
// # API Endpoints
//
// Menus:
//
//	POST   /api/menus                                    - Create draft menu
//	GET    /api/menus                                    - List menus (?drafts=true includes drafts)
//	GET    /api/menus/{id}                               - Get menu with full tree
//	PATCH  /api/menus/{id}/basics                        - Replace flat menu fields
//	PUT    /api/menus/{id}/sections                      - Replace section skeleton
//	PUT    /api/menus/{id}/sections/{sectionId}/dishes   - Replace one section's dishes
//	POST   /api/menus/{id}/publish                       - Publish draft
//	POST   /api/menus/{id}/active                        - Toggle menu active
//	DELETE /api/menus/{id}                               - Delete menu
//
// Catalog:
//
//	GET    /api/catalog/dishes                           - Search catalog (?q=, ?limit=)
//	POST   /api/catalog/dishes                           - Upsert catalog entry
//
// Back-office:
//
//	POST   /api/reservations                             - Create reservation
//	GET    /api/reservations                             - List reservations (?date=YYYY-MM-DD)
//	GET    /api/reservations/{id}                        - Get reservation
//	PUT    /api/reservations/{id}                        - Update reservation
//	DELETE /api/reservations/{id}                        - Delete reservation
//	POST   /api/time-entries                             - Clock in
//	POST   /api/time-entries/{id}/clock-out              - Clock out
//	GET    /api/time-entries                             - List shifts (?staff=)
//	POST   /api/invoices                                 - Issue invoice
//	GET    /api/invoices                                 - List invoices
//	GET    /api/invoices/{id}                            - Get invoice
//
// Live preview:
//
//	GET    /ws/preview/{menuId}                          - WebSocket menu summary feed
//
// Health:
//
//	GET    /health                                       - Service health status
func (a *App) Run(ctx context.Context, cmd *RunCommand) error {
	addr := fmt.Sprintf(":%s", a.config.ServerPort)
	a.log.Info().Str("addr", addr).Msg("starting lacarta server")

	server := &http.Server{
		Addr:    addr,
		Handler: a.Router(),
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}

// Router builds the HTTP handler. Exposed so tests can serve the full API
// from an httptest server.
func (a *App) Router() *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	if a.config.AuthToken != "" {
		api.Use(a.authMiddleware)
	}

	api.HandleFunc("/menus", a.handleCreateMenu).Methods("POST")
	api.HandleFunc("/menus", a.handleListMenus).Methods("GET")
	api.HandleFunc("/menus/{id}", a.handleGetMenu).Methods("GET")
	api.HandleFunc("/menus/{id}", a.handleDeleteMenu).Methods("DELETE")
	api.HandleFunc("/menus/{id}/basics", a.handleUpdateBasics).Methods("PATCH")
	api.HandleFunc("/menus/{id}/sections", a.handleReplaceSections).Methods("PUT")
	api.HandleFunc("/menus/{id}/sections/{sectionId}/dishes", a.handleReplaceSectionDishes).Methods("PUT")
	api.HandleFunc("/menus/{id}/publish", a.handlePublishMenu).Methods("POST")
	api.HandleFunc("/menus/{id}/active", a.handleSetMenuActive).Methods("POST")

	api.HandleFunc("/catalog/dishes", a.handleSearchCatalog).Methods("GET")
	api.HandleFunc("/catalog/dishes", a.handleUpsertCatalogEntry).Methods("POST")

	api.HandleFunc("/reservations", a.handleCreateReservation).Methods("POST")
	api.HandleFunc("/reservations", a.handleListReservations).Methods("GET")
	api.HandleFunc("/reservations/{id}", a.handleGetReservation).Methods("GET")
	api.HandleFunc("/reservations/{id}", a.handleUpdateReservation).Methods("PUT")
	api.HandleFunc("/reservations/{id}", a.handleDeleteReservation).Methods("DELETE")

	api.HandleFunc("/time-entries", a.handleClockIn).Methods("POST")
	api.HandleFunc("/time-entries", a.handleListTimeEntries).Methods("GET")
	api.HandleFunc("/time-entries/{id}/clock-out", a.handleClockOut).Methods("POST")

	api.HandleFunc("/invoices", a.handleCreateInvoice).Methods("POST")
	api.HandleFunc("/invoices", a.handleListInvoices).Methods("GET")
	api.HandleFunc("/invoices/{id}", a.handleGetInvoice).Methods("GET")

	router.HandleFunc("/ws/preview/{menuId}", a.handlePreview).Methods("GET")
	router.HandleFunc("/health", a.handleHealth).Methods("GET")

	return router
}

// authMiddleware rejects /api requests without the configured bearer token.
func (a *App) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+a.config.AuthToken {
			respondError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
