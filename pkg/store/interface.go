// Package store defines the persistence interface of the lacarta server and
// is the authoritative side of the menu editor's save protocol.
//
// Two implementations exist: an in-memory store (tests, local development)
// and a gorm/postgres store (deployments). Both enforce the same contract,
// which the editing clients rely on:
//
//   - ReplaceSections and ReplaceSectionDishes are full replaces of the
//     ordered child list, not incremental patches. Rows with a known id are
//     updated, rows without one are inserted, rows missing from the list are
//     deleted, and positions are recomputed densely from the order of the
//     rows received.
//   - ReplaceSections returns the same-length, same-order section list with
//     ids populated, so clients can join the response to their request by
//     array position.
//   - Normalization happens here: menu and section kinds collapse to their
//     closed sets, blank section titles get a placeholder, dishes with blank
//     titles are dropped, allergen lists are cleaned.
package store

import (
	"context"
	"errors"

	"github.com/lacarta/lacarta/pkg/models"
)

// ErrNotFound is returned when the addressed entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalid wraps rejected writes (missing title, empty section list, or a
// publish attempt on an empty menu). The message carries the reason.
var ErrInvalid = errors.New("invalid")

// Store is the complete persistence interface of the back-office.
type Store interface {
	// CreateDraftMenu creates a draft document of the given kind with the
	// default section scaffold and returns it.
	CreateDraftMenu(ctx context.Context, kind models.MenuKind) (*models.Menu, error)

	// GetMenu loads a menu with its full section/dish tree. Returns
	// ErrNotFound for unknown ids.
	GetMenu(ctx context.Context, id int64) (*models.Menu, error)

	// ListMenus returns all menus, optionally including drafts, most
	// recently modified first.
	ListMenus(ctx context.Context, includeDrafts bool) ([]*models.Menu, error)

	// UpdateMenuBasics replaces the flat scalar fields of a menu. The title
	// is required; kinds and the beverage policy are normalized, numeric
	// fields clamped to their domain.
	UpdateMenuBasics(ctx context.Context, id int64, basics models.Basics) error

	// ReplaceSections replaces the menu's section skeleton and returns the
	// authoritative list (ids populated, same order as sent). Dishes of kept
	// sections are preserved.
	ReplaceSections(ctx context.Context, menuID int64, sections []models.Section) ([]models.Section, error)

	// ReplaceSectionDishes replaces one section's ordered dish list and
	// returns the authoritative rows.
	ReplaceSectionDishes(ctx context.Context, menuID, sectionID int64, dishes []models.Dish) ([]models.Dish, error)

	// PublishMenu marks a draft as published. Rejected unless the menu has
	// at least one section and one active dish.
	PublishMenu(ctx context.Context, id int64) error

	// SetMenuActive toggles whether the menu is offered.
	SetMenuActive(ctx context.Context, id int64, active bool) error

	// DeleteMenu removes the menu and its tree.
	DeleteMenu(ctx context.Context, id int64) error

	// SearchCatalog returns catalog entries whose title contains the query,
	// most recently updated first.
	SearchCatalog(ctx context.Context, query string, limit int) ([]models.CatalogEntry, error)

	// UpsertCatalogEntry updates the entry when an id is set, creates it
	// otherwise, and returns the stored row.
	UpsertCatalogEntry(ctx context.Context, entry models.CatalogEntry) (models.CatalogEntry, error)

	// Reservations.
	CreateReservation(ctx context.Context, r *models.Reservation) error
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	ListReservations(ctx context.Context, date string) ([]*models.Reservation, error)
	UpdateReservation(ctx context.Context, r *models.Reservation) error
	DeleteReservation(ctx context.Context, id int64) error

	// Staff time tracking.
	ClockIn(ctx context.Context, staff string) (*models.TimeEntry, error)
	ClockOut(ctx context.Context, entryID int64) (*models.TimeEntry, error)
	ListTimeEntries(ctx context.Context, staff string) ([]*models.TimeEntry, error)

	// Invoicing.
	CreateInvoice(ctx context.Context, inv *models.Invoice) error
	GetInvoice(ctx context.Context, id int64) (*models.Invoice, error)
	ListInvoices(ctx context.Context) ([]*models.Invoice, error)

	Close() error
}
