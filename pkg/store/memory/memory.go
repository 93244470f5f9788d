// Package memory provides the in-memory store.Store implementation used by
// tests and local development. All of the authoritative save semantics live
// here exactly as in the postgres store, so editor behavior exercised against
// this store matches production.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lacarta/lacarta/pkg/models"
	"github.com/lacarta/lacarta/pkg/store"
)

// Store keeps all entities in maps guarded by a single mutex. Every method
// deep-copies on the way in and out, so callers can never alias stored state.
type Store struct {
	mu sync.Mutex

	menus        map[int64]*models.Menu
	menuOrder    []int64
	catalog      map[int64]models.CatalogEntry
	catalogOrder []int64
	reservations map[int64]*models.Reservation
	timeEntries  map[int64]*models.TimeEntry
	invoices     map[int64]*models.Invoice

	nextMenuID        int64
	nextSectionID     int64
	nextDishID        int64
	nextCatalogID     int64
	nextReservationID int64
	nextTimeEntryID   int64
	nextInvoiceID     int64
}

var _ store.Store = (*Store)(nil)

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		menus:        map[int64]*models.Menu{},
		catalog:      map[int64]models.CatalogEntry{},
		reservations: map[int64]*models.Reservation{},
		timeEntries:  map[int64]*models.TimeEntry{},
		invoices:     map[int64]*models.Invoice{},
	}
}

// defaultScaffold is the section skeleton every fresh draft starts with.
func defaultScaffold() []models.Section {
	titles := []struct {
		title string
		kind  models.SectionKind
	}{
		{"Entrantes", models.SectionStarters},
		{"Principales", models.SectionMains},
		{"Postres", models.SectionDesserts},
	}
	out := make([]models.Section, len(titles))
	for i, t := range titles {
		out[i] = models.Section{Title: t.title, Kind: t.kind, Position: i, Dishes: []models.Dish{}}
	}
	return out
}

func (s *Store) CreateDraftMenu(ctx context.Context, kind models.MenuKind) (*models.Menu, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextMenuID++
	m := &models.Menu{
		ID: s.nextMenuID,
		Basics: models.Basics{
			Kind:     models.NormalizeMenuKind(string(kind)),
			Draft:    true,
			Beverage: models.DefaultBeveragePolicy(),
		},
		Sections: defaultScaffold(),
	}
	for i := range m.Sections {
		s.nextSectionID++
		m.Sections[i].ID = s.nextSectionID
	}
	s.menus[m.ID] = m
	s.menuOrder = append(s.menuOrder, m.ID)
	return m.Clone(), nil
}

func (s *Store) GetMenu(ctx context.Context, id int64) (*models.Menu, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.menus[id]
	if !ok {
		return nil, fmt.Errorf("menu %d: %w", id, store.ErrNotFound)
	}
	return m.Clone(), nil
}

func (s *Store) ListMenus(ctx context.Context, includeDrafts bool) ([]*models.Menu, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Menu, 0, len(s.menuOrder))
	// menuOrder appends on create, so reverse iteration gives newest first.
	for i := len(s.menuOrder) - 1; i >= 0; i-- {
		m, ok := s.menus[s.menuOrder[i]]
		if !ok {
			continue
		}
		if m.Draft && !includeDrafts {
			continue
		}
		out = append(out, m.Clone())
	}
	return out, nil
}

func (s *Store) UpdateMenuBasics(ctx context.Context, id int64, basics models.Basics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.menus[id]
	if !ok {
		return fmt.Errorf("menu %d: %w", id, store.ErrNotFound)
	}
	if strings.TrimSpace(basics.Title) == "" {
		return fmt.Errorf("%w: menu title is required", store.ErrInvalid)
	}
	basics.Title = strings.TrimSpace(basics.Title)
	basics.Kind = models.NormalizeMenuKind(string(basics.Kind))
	basics.Beverage = basics.Beverage.Normalize()
	if basics.Price < 0 {
		basics.Price = 0
	}
	if basics.MinPartySize < 0 {
		basics.MinPartySize = 0
	}
	if basics.MainDishesLimitNumber < 0 {
		basics.MainDishesLimitNumber = 0
	}
	if !basics.MainDishesLimit {
		basics.MainDishesLimitNumber = 0
	}
	m.Basics = basics
	return nil
}

func (s *Store) ReplaceSections(ctx context.Context, menuID int64, sections []models.Section) ([]models.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.menus[menuID]
	if !ok {
		return nil, fmt.Errorf("menu %d: %w", menuID, store.ErrNotFound)
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: a menu needs at least one section", store.ErrInvalid)
	}

	existing := make(map[int64]models.Section, len(m.Sections))
	for _, sec := range m.Sections {
		existing[sec.ID] = sec
	}

	next := make([]models.Section, len(sections))
	for i, sec := range sections {
		row := models.Section{
			ID:       sec.ID,
			Title:    strings.TrimSpace(sec.Title),
			Kind:     models.NormalizeSectionKind(string(sec.Kind)),
			Position: i,
			Dishes:   []models.Dish{},
		}
		if row.Title == "" {
			row.Title = "Seccion"
		}
		if prev, ok := existing[row.ID]; ok && row.ID != 0 {
			// Kept sections carry their dishes through a skeleton replace.
			row.Dishes = prev.Dishes
		} else {
			s.nextSectionID++
			row.ID = s.nextSectionID
		}
		next[i] = row
	}
	m.Sections = next

	out := make([]models.Section, len(next))
	for i := range next {
		out[i] = next[i].Clone()
		// The response is the skeleton only; dishes travel on their own
		// endpoint.
		out[i].Dishes = []models.Dish{}
	}
	return out, nil
}

func (s *Store) ReplaceSectionDishes(ctx context.Context, menuID, sectionID int64, dishes []models.Dish) ([]models.Dish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.menus[menuID]
	if !ok {
		return nil, fmt.Errorf("menu %d: %w", menuID, store.ErrNotFound)
	}
	var sec *models.Section
	for i := range m.Sections {
		if m.Sections[i].ID == sectionID {
			sec = &m.Sections[i]
			break
		}
	}
	if sec == nil {
		return nil, fmt.Errorf("section %d of menu %d: %w", sectionID, menuID, store.ErrNotFound)
	}

	existing := make(map[int64]bool, len(sec.Dishes))
	for _, d := range sec.Dishes {
		existing[d.ID] = true
	}

	next := make([]models.Dish, 0, len(dishes))
	for _, d := range dishes {
		d.Title = strings.TrimSpace(d.Title)
		if d.Title == "" {
			// Placeholder rows the editor has not filled in yet.
			continue
		}
		d.Allergens = models.CleanAllergens(d.Allergens)
		if !d.SupplementEnabled {
			d.SupplementPrice = nil
		}
		if d.Price != nil && *d.Price < 0 {
			d.Price = nil
		}
		if d.ID == 0 || !existing[d.ID] {
			s.nextDishID++
			d.ID = s.nextDishID
		}
		d.Position = len(next)
		next = append(next, d.Clone())
	}
	sec.Dishes = next

	out := make([]models.Dish, len(next))
	for i := range next {
		out[i] = next[i].Clone()
	}
	return out, nil
}

func (s *Store) PublishMenu(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.menus[id]
	if !ok {
		return fmt.Errorf("menu %d: %w", id, store.ErrNotFound)
	}
	if len(m.Sections) == 0 {
		return fmt.Errorf("%w: cannot publish a menu without sections", store.ErrInvalid)
	}
	active := 0
	for _, sec := range m.Sections {
		for _, d := range sec.Dishes {
			if d.Active {
				active++
			}
		}
	}
	if active == 0 {
		return fmt.Errorf("%w: cannot publish a menu without active dishes", store.ErrInvalid)
	}
	m.Draft = false
	return nil
}

func (s *Store) SetMenuActive(ctx context.Context, id int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.menus[id]
	if !ok {
		return fmt.Errorf("menu %d: %w", id, store.ErrNotFound)
	}
	m.Active = active
	return nil
}

func (s *Store) DeleteMenu(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.menus[id]; !ok {
		return fmt.Errorf("menu %d: %w", id, store.ErrNotFound)
	}
	delete(s.menus, id)
	return nil
}

func (s *Store) SearchCatalog(ctx context.Context, query string, limit int) ([]models.CatalogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.CatalogEntry, 0, limit)
	// catalogOrder moves an entry to the back on every upsert, so reverse
	// iteration yields most recently updated first.
	for i := len(s.catalogOrder) - 1; i >= 0; i-- {
		e, ok := s.catalog[s.catalogOrder[i]]
		if !ok {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(e.Title), q) {
			continue
		}
		out = append(out, e.Clone())
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *Store) UpsertCatalogEntry(ctx context.Context, entry models.CatalogEntry) (models.CatalogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.Title = strings.TrimSpace(entry.Title)
	if entry.Title == "" {
		return models.CatalogEntry{}, fmt.Errorf("%w: catalog entry title is required", store.ErrInvalid)
	}
	entry.Allergens = models.CleanAllergens(entry.Allergens)

	if entry.ID != 0 {
		if _, ok := s.catalog[entry.ID]; !ok {
			return models.CatalogEntry{}, fmt.Errorf("catalog entry %d: %w", entry.ID, store.ErrNotFound)
		}
	} else {
		s.nextCatalogID++
		entry.ID = s.nextCatalogID
	}
	s.catalog[entry.ID] = entry.Clone()
	s.touchCatalog(entry.ID)
	return entry.Clone(), nil
}

func (s *Store) touchCatalog(id int64) {
	for i, v := range s.catalogOrder {
		if v == id {
			s.catalogOrder = append(s.catalogOrder[:i], s.catalogOrder[i+1:]...)
			break
		}
	}
	s.catalogOrder = append(s.catalogOrder, id)
}

func (s *Store) CreateReservation(ctx context.Context, r *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: reservation name is required", store.ErrInvalid)
	}
	if r.PartySize < 1 {
		return fmt.Errorf("%w: party size must be at least 1", store.ErrInvalid)
	}
	s.nextReservationID++
	r.ID = s.nextReservationID
	if r.Status == "" {
		r.Status = models.ReservationPending
	}
	r.CreatedAt = time.Now().UTC()
	cp := *r
	s.reservations[r.ID] = &cp
	return nil
}

func (s *Store) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[id]
	if !ok {
		return nil, fmt.Errorf("reservation %d: %w", id, store.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (s *Store) ListReservations(ctx context.Context, date string) ([]*models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Reservation, 0, len(s.reservations))
	for _, r := range s.reservations {
		if date != "" && r.Date != date {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateReservation(ctx context.Context, r *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.reservations[r.ID]
	if !ok {
		return fmt.Errorf("reservation %d: %w", r.ID, store.ErrNotFound)
	}
	r.CreatedAt = prev.CreatedAt
	cp := *r
	s.reservations[r.ID] = &cp
	return nil
}

func (s *Store) DeleteReservation(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[id]; !ok {
		return fmt.Errorf("reservation %d: %w", id, store.ErrNotFound)
	}
	delete(s.reservations, id)
	return nil
}

func (s *Store) ClockIn(ctx context.Context, staff string) (*models.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	staff = strings.TrimSpace(staff)
	if staff == "" {
		return nil, fmt.Errorf("%w: staff name is required", store.ErrInvalid)
	}
	for _, e := range s.timeEntries {
		if e.Staff == staff && e.ClockOut == nil {
			return nil, fmt.Errorf("%w: %s already has an open shift", store.ErrInvalid, staff)
		}
	}
	s.nextTimeEntryID++
	e := &models.TimeEntry{ID: s.nextTimeEntryID, Staff: staff, ClockIn: time.Now().UTC()}
	s.timeEntries[e.ID] = e
	cp := *e
	return &cp, nil
}

func (s *Store) ClockOut(ctx context.Context, entryID int64) (*models.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.timeEntries[entryID]
	if !ok {
		return nil, fmt.Errorf("time entry %d: %w", entryID, store.ErrNotFound)
	}
	if e.ClockOut != nil {
		return nil, fmt.Errorf("%w: shift already closed", store.ErrInvalid)
	}
	now := time.Now().UTC()
	e.ClockOut = &now
	cp := *e
	return &cp, nil
}

func (s *Store) ListTimeEntries(ctx context.Context, staff string) ([]*models.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.TimeEntry, 0, len(s.timeEntries))
	for _, e := range s.timeEntries {
		if staff != "" && e.Staff != staff {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(inv.Lines) == 0 {
		return fmt.Errorf("%w: an invoice needs at least one line", store.ErrInvalid)
	}
	s.nextInvoiceID++
	inv.ID = s.nextInvoiceID
	if inv.Number == "" {
		inv.Number = fmt.Sprintf("INV-%06d", inv.ID)
	}
	inv.Total = inv.ComputeTotal()
	inv.IssuedAt = time.Now().UTC()
	cp := *inv
	cp.Lines = append([]models.InvoiceLine(nil), inv.Lines...)
	s.invoices[inv.ID] = &cp
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[id]
	if !ok {
		return nil, fmt.Errorf("invoice %d: %w", id, store.ErrNotFound)
	}
	cp := *inv
	cp.Lines = append([]models.InvoiceLine(nil), inv.Lines...)
	return &cp, nil
}

func (s *Store) ListInvoices(ctx context.Context) ([]*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		cp := *inv
		cp.Lines = append([]models.InvoiceLine(nil), inv.Lines...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Close() error { return nil }
