package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/lacarta/lacarta/pkg/models"
)

// sendStructural persists the ordered section/dish tree of the snapshot and
// returns the reconciled tree to install as the new local state.
//
// The sequence is deliberate:
//
//  1. The section skeleton goes first, giving every section a server id.
//  2. Dishes are persisted per section, sequentially, because each dish call
//     needs its section's confirmed server id.
//
// The loop is not atomic. When a later section fails, the sections already
// written stay committed on the server; the error propagates and no rollback
// is attempted. The caller keeps the pre-save local tree in that case, so the
// next cycle retries the whole structure.
func (e *Editor) sendStructural(ctx context.Context, snap *models.Menu) ([]models.Section, error) {
	skeleton := make([]models.Section, len(snap.Sections))
	for i, sec := range snap.Sections {
		skeleton[i] = models.Section{
			ID:       sec.ID,
			Title:    sec.Title,
			Kind:     sec.Kind,
			Position: i,
		}
	}

	returned, err := e.authority.PutSections(ctx, snap.ID, skeleton)
	if err != nil {
		return nil, fmt.Errorf("put sections: %w", err)
	}
	if len(returned) != len(snap.Sections) {
		return nil, fmt.Errorf("authority returned %d sections, sent %d", len(returned), len(snap.Sections))
	}

	// Positional merge: new sections have no id yet, so the only join key
	// with the response is the array position. Recover each section's client
	// id from the snapshot and take the authoritative id, title, kind and
	// position from the response.
	rebuilt := make([]models.Section, len(returned))
	for i := range returned {
		sec := returned[i]
		sec.ClientID = snap.Sections[i].ClientID
		sec.Expanded = snap.Sections[i].Expanded
		sec.Dishes = snap.Sections[i].Dishes
		rebuilt[i] = sec
	}

	for i := range rebuilt {
		sec := &rebuilt[i]
		if sec.ID == 0 {
			// No server id even after the skeleton round-trip; its dishes
			// cannot be addressed yet.
			continue
		}
		e.linkCatalog(ctx, sec)

		rows := make([]models.Dish, len(sec.Dishes))
		for j, d := range sec.Dishes {
			row := d.Clone()
			row.Position = j
			rows[j] = row
		}
		returnedDishes, err := e.authority.PutSectionDishes(ctx, snap.ID, sec.ID, rows)
		if err != nil {
			return nil, fmt.Errorf("put dishes for section %q: %w", sec.Title, err)
		}
		sec.Dishes = mergeDishes(sec.Dishes, returnedDishes)
	}

	return rebuilt, nil
}

// linkCatalog resolves a catalog reference for every dish with a non-empty
// title that does not have one yet. An existing reference is reused, never
// re-upserted. When an upsert fails the dish is sent without a reference,
// so its content still persists, just unlinked, and the rest of the section
// proceeds.
func (e *Editor) linkCatalog(ctx context.Context, sec *models.Section) {
	for j := range sec.Dishes {
		d := &sec.Dishes[j]
		if d.CatalogID != nil || strings.TrimSpace(d.Title) == "" {
			continue
		}
		entry, err := e.authority.UpsertCatalogEntry(ctx, models.CatalogEntry{
			Title:                    d.Title,
			Description:              d.Description,
			Allergens:                d.Allergens,
			DefaultSupplementEnabled: d.SupplementEnabled,
			DefaultSupplementPrice:   d.SupplementPrice,
		})
		if err != nil {
			e.log.Warn().Str("dish", d.Title).Err(err).Msg("catalog upsert failed, saving dish unlinked")
			continue
		}
		id := entry.ID
		d.CatalogID = &id
	}
}

// mergeDishes joins the authoritative dish rows back onto the local dishes.
// Dishes the server already knew are matched by server id and keep their
// client id; rows for freshly created dishes are matched positionally against
// the local dishes that had no server id, in order.
func mergeDishes(local, returned []models.Dish) []models.Dish {
	byServerID := make(map[int64]models.DishClientID, len(local))
	var fresh []models.DishClientID
	for _, d := range local {
		if d.ID > 0 {
			byServerID[d.ID] = d.ClientID
		} else if strings.TrimSpace(d.Title) != "" {
			// blank-title dishes are dropped server-side and produce no row
			fresh = append(fresh, d.ClientID)
		}
	}

	merged := make([]models.Dish, len(returned))
	freshIdx := 0
	for i := range returned {
		row := returned[i].Clone()
		if clientID, ok := byServerID[row.ID]; ok {
			row.ClientID = clientID
		} else if freshIdx < len(fresh) {
			row.ClientID = fresh[freshIdx]
			freshIdx++
		} else {
			row.ClientID = models.NewDishClientID()
		}
		merged[i] = row
	}
	return merged
}
