package editor

import (
	"github.com/lacarta/lacarta/pkg/models"
)

// Tree mutations. Every persistable mutation clones the current tree, applies
// the change, renumbers sibling positions densely and swaps the clone in, so
// snapshots taken by in-flight saves are never aliased by later edits.
// Deletions are optimistic: the tree changes immediately, regardless of how
// the eventual save turns out.

// mutate runs fn against a fresh clone, renumbers and schedules the channel.
func (e *Editor) mutate(ch Channel, fn func(m *models.Menu) bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	next := e.menu.Clone()
	if !fn(next) {
		return false
	}
	renumber(next)
	e.menu = next
	e.schedule(ch)
	return true
}

func renumber(m *models.Menu) {
	for i := range m.Sections {
		m.Sections[i].Position = i
		for j := range m.Sections[i].Dishes {
			m.Sections[i].Dishes[j].Position = j
		}
	}
}

func findSection(m *models.Menu, id models.SectionClientID) *models.Section {
	for i := range m.Sections {
		if m.Sections[i].ClientID == id {
			return &m.Sections[i]
		}
	}
	return nil
}

func findDish(sec *models.Section, id models.DishClientID) *models.Dish {
	for i := range sec.Dishes {
		if sec.Dishes[i].ClientID == id {
			return &sec.Dishes[i]
		}
	}
	return nil
}

// AddSection appends a section and returns its permanent client id. The
// section has no server id until the first successful structural save.
func (e *Editor) AddSection(title string, kind models.SectionKind) models.SectionClientID {
	id := models.NewSectionClientID()
	e.mutate(ChannelStructural, func(m *models.Menu) bool {
		m.Sections = append(m.Sections, models.Section{
			ClientID: id,
			Title:    title,
			Kind:     kind,
			Expanded: true,
		})
		return true
	})
	return id
}

// UpdateSection sets a section's title and kind.
func (e *Editor) UpdateSection(id models.SectionClientID, title string, kind models.SectionKind) bool {
	return e.mutate(ChannelStructural, func(m *models.Menu) bool {
		sec := findSection(m, id)
		if sec == nil {
			return false
		}
		sec.Title = title
		sec.Kind = kind
		return true
	})
}

// RemoveSection deletes a section and its dishes from the tree.
func (e *Editor) RemoveSection(id models.SectionClientID) bool {
	return e.mutate(ChannelStructural, func(m *models.Menu) bool {
		for i := range m.Sections {
			if m.Sections[i].ClientID == id {
				m.Sections = append(m.Sections[:i], m.Sections[i+1:]...)
				return true
			}
		}
		return false
	})
}

// MoveSection moves the section at index from to index to.
func (e *Editor) MoveSection(from, to int) bool {
	return e.mutate(ChannelStructural, func(m *models.Menu) bool {
		if from < 0 || from >= len(m.Sections) || to < 0 || to >= len(m.Sections) || from == to {
			return false
		}
		sec := m.Sections[from]
		m.Sections = append(m.Sections[:from], m.Sections[from+1:]...)
		m.Sections = append(m.Sections[:to], append([]models.Section{sec}, m.Sections[to:]...)...)
		return true
	})
}

// ReorderSections rearranges sections into the explicit client id order. The
// order must be a permutation of the current section ids; anything else is
// rejected without touching the tree.
func (e *Editor) ReorderSections(order []models.SectionClientID) bool {
	return e.mutate(ChannelStructural, func(m *models.Menu) bool {
		if len(order) != len(m.Sections) {
			return false
		}
		byID := make(map[models.SectionClientID]int, len(m.Sections))
		for i, sec := range m.Sections {
			byID[sec.ClientID] = i
		}
		next := make([]models.Section, 0, len(order))
		seen := make(map[models.SectionClientID]bool, len(order))
		for _, id := range order {
			idx, ok := byID[id]
			if !ok || seen[id] {
				return false
			}
			seen[id] = true
			next = append(next, m.Sections[idx])
		}
		m.Sections = next
		return true
	})
}

// SetSectionExpanded toggles the expand/collapse flag. Pure UI state: no
// fingerprint change, no write scheduled.
func (e *Editor) SetSectionExpanded(id models.SectionClientID, expanded bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	next := e.menu.Clone()
	sec := findSection(next, id)
	if sec == nil {
		return false
	}
	sec.Expanded = expanded
	e.menu = next
	return true
}

// AddDish appends a dish to a section and returns its client id. Identity
// and order fields of the argument are ignored; the dish starts without a
// server id.
func (e *Editor) AddDish(sectionID models.SectionClientID, dish models.Dish) (models.DishClientID, bool) {
	id := models.NewDishClientID()
	ok := e.mutate(ChannelStructural, func(m *models.Menu) bool {
		sec := findSection(m, sectionID)
		if sec == nil {
			return false
		}
		dish.ClientID = id
		dish.ID = 0
		sec.Dishes = append(sec.Dishes, dish.Clone())
		return true
	})
	return id, ok
}

// AddDishFromCatalog appends a dish populated from a catalog search result.
// The content is copied once and the catalog id stored as the dish's
// reference; afterwards the dish is independently editable, with no live
// binding back to the catalog entry.
func (e *Editor) AddDishFromCatalog(sectionID models.SectionClientID, entry models.CatalogEntry) (models.DishClientID, bool) {
	catalogID := entry.ID
	return e.AddDish(sectionID, models.Dish{
		CatalogID:         &catalogID,
		Title:             entry.Title,
		Description:       entry.Description,
		Allergens:         models.CleanAllergens(entry.Allergens),
		SupplementEnabled: entry.DefaultSupplementEnabled,
		SupplementPrice:   entry.DefaultSupplementPrice,
		Active:            true,
	})
}

// UpdateDish applies fn to a dish's content. Identity and order fields are
// restored afterwards so callers cannot detach a dish from its ids.
func (e *Editor) UpdateDish(sectionID models.SectionClientID, dishID models.DishClientID, fn func(*models.Dish)) bool {
	return e.mutate(ChannelStructural, func(m *models.Menu) bool {
		sec := findSection(m, sectionID)
		if sec == nil {
			return false
		}
		dish := findDish(sec, dishID)
		if dish == nil {
			return false
		}
		clientID, serverID, position := dish.ClientID, dish.ID, dish.Position
		fn(dish)
		dish.ClientID, dish.ID, dish.Position = clientID, serverID, position
		return true
	})
}

// RemoveDish deletes a dish from its section.
func (e *Editor) RemoveDish(sectionID models.SectionClientID, dishID models.DishClientID) bool {
	return e.mutate(ChannelStructural, func(m *models.Menu) bool {
		sec := findSection(m, sectionID)
		if sec == nil {
			return false
		}
		for i := range sec.Dishes {
			if sec.Dishes[i].ClientID == dishID {
				sec.Dishes = append(sec.Dishes[:i], sec.Dishes[i+1:]...)
				return true
			}
		}
		return false
	})
}

// MoveDish moves a dish within its section from index from to index to.
func (e *Editor) MoveDish(sectionID models.SectionClientID, from, to int) bool {
	return e.mutate(ChannelStructural, func(m *models.Menu) bool {
		sec := findSection(m, sectionID)
		if sec == nil {
			return false
		}
		if from < 0 || from >= len(sec.Dishes) || to < 0 || to >= len(sec.Dishes) || from == to {
			return false
		}
		d := sec.Dishes[from]
		sec.Dishes = append(sec.Dishes[:from], sec.Dishes[from+1:]...)
		sec.Dishes = append(sec.Dishes[:to], append([]models.Dish{d}, sec.Dishes[to:]...)...)
		return true
	})
}

// ReorderDishes rearranges a section's dishes into the explicit client id
// order, which must be a permutation of the current dish ids.
func (e *Editor) ReorderDishes(sectionID models.SectionClientID, order []models.DishClientID) bool {
	return e.mutate(ChannelStructural, func(m *models.Menu) bool {
		sec := findSection(m, sectionID)
		if sec == nil || len(order) != len(sec.Dishes) {
			return false
		}
		byID := make(map[models.DishClientID]int, len(sec.Dishes))
		for i, d := range sec.Dishes {
			byID[d.ClientID] = i
		}
		next := make([]models.Dish, 0, len(order))
		seen := make(map[models.DishClientID]bool, len(order))
		for _, id := range order {
			idx, ok := byID[id]
			if !ok || seen[id] {
				return false
			}
			seen[id] = true
			next = append(next, sec.Dishes[idx])
		}
		sec.Dishes = next
		return true
	})
}

// UpdateBasics applies fn to the flat scalar fields and schedules a basics
// save. The beverage policy is normalized to its variant shape on the way in.
func (e *Editor) UpdateBasics(fn func(*models.Basics)) {
	e.mutate(ChannelBasics, func(m *models.Menu) bool {
		fn(&m.Basics)
		m.Beverage = m.Beverage.Normalize()
		return true
	})
}

// SetPriceInput coerces free-text price input and stores it. Blank or
// non-numeric input becomes 0 rather than a validation error.
func (e *Editor) SetPriceInput(raw string) {
	e.UpdateBasics(func(b *models.Basics) {
		b.Price = models.ParsePrice(raw)
	})
}
