package editor

import (
	"context"

	"github.com/lacarta/lacarta/pkg/models"
)

// Authority is the persistence backend the engine saves into. The production
// implementation is the HTTP API client; tests substitute fakes.
//
// Contract notes the engine depends on:
//
//   - PutSections returns the same-length, same-order section array it was
//     sent, with ids populated for previously id-less sections. The engine
//     joins it to the sent snapshot by array position.
//   - PutSectionDishes replaces the section's whole dish list; the returned
//     rows are authoritative (ids populated, positions recomputed, dishes
//     with blank titles dropped).
//   - UpsertCatalogEntry matches or creates a shared catalog row and returns
//     it with its id.
type Authority interface {
	CreateDraft(ctx context.Context, kind models.MenuKind) (int64, error)
	GetMenu(ctx context.Context, menuID int64) (*models.Menu, error)
	PatchBasics(ctx context.Context, menuID int64, basics models.Basics) error
	PutSections(ctx context.Context, menuID int64, sections []models.Section) ([]models.Section, error)
	PutSectionDishes(ctx context.Context, menuID, sectionID int64, dishes []models.Dish) ([]models.Dish, error)
	UpsertCatalogEntry(ctx context.Context, entry models.CatalogEntry) (models.CatalogEntry, error)
	SearchCatalog(ctx context.Context, query string, limit int) ([]models.CatalogEntry, error)
	Publish(ctx context.Context, menuID int64) error
}
