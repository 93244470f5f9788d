package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/lacarta/lacarta/pkg/models"
)

// sendBasics writes the flat scalar projection of the snapshot in a single
// shot. The payload carries no server-assigned identifiers, so there is
// nothing to reconcile on success.
func (e *Editor) sendBasics(ctx context.Context, snap *models.Menu) error {
	if strings.TrimSpace(snap.Title) == "" {
		return ErrTitleRequired
	}
	basics := snap.Basics
	basics.Beverage = basics.Beverage.Normalize()
	if err := e.authority.PatchBasics(ctx, snap.ID, basics); err != nil {
		return fmt.Errorf("patch basics: %w", err)
	}
	return nil
}
