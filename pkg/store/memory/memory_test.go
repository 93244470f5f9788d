package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lacarta/lacarta/pkg/models"
	"github.com/lacarta/lacarta/pkg/store"
	"github.com/lacarta/lacarta/pkg/store/memory"
)

func newDraft(t *testing.T, s *memory.Store) *models.Menu {
	t.Helper()
	m, err := s.CreateDraftMenu(context.Background(), models.MenuALaCarte)
	require.NoError(t, err)
	return m
}

func TestCreateDraftMenuScaffold(t *testing.T) {
	s := memory.New()
	m := newDraft(t, s)

	require.NotZero(t, m.ID)
	assert.True(t, m.Draft)
	assert.Equal(t, models.MenuALaCarte, m.Kind)
	assert.Equal(t, models.BeverageNotIncluded, m.Beverage.Type)

	require.Len(t, m.Sections, 3)
	assert.Equal(t, "Entrantes", m.Sections[0].Title)
	assert.Equal(t, "Principales", m.Sections[1].Title)
	assert.Equal(t, "Postres", m.Sections[2].Title)
	for i, sec := range m.Sections {
		assert.NotZero(t, sec.ID)
		assert.Equal(t, i, sec.Position)
	}
}

func TestGetMenuNotFound(t *testing.T) {
	s := memory.New()
	_, err := s.GetMenu(context.Background(), 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetMenuReturnsCopy(t *testing.T) {
	s := memory.New()
	m := newDraft(t, s)

	m.Sections[0].Title = "mutated locally"
	reloaded, err := s.GetMenu(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Entrantes", reloaded.Sections[0].Title)
}

func TestUpdateMenuBasics(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	m := newDraft(t, s)

	price := 2.0
	err := s.UpdateMenuBasics(ctx, m.ID, models.Basics{
		Title: "  Menu del dia  ",
		Kind:  "a_la_carta",
		Price: -5,
		Beverage: models.BeveragePolicy{
			Type:           models.BeverageNotIncluded,
			PricePerPerson: &price,
		},
	})
	require.NoError(t, err)

	reloaded, err := s.GetMenu(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Menu del dia", reloaded.Title)
	assert.Equal(t, models.MenuALaCarte, reloaded.Kind)
	assert.Equal(t, 0.0, reloaded.Price, "negative price clamped")
	assert.Nil(t, reloaded.Beverage.PricePerPerson, "beverage normalized to variant shape")
}

func TestUpdateMenuBasicsRequiresTitle(t *testing.T) {
	s := memory.New()
	m := newDraft(t, s)

	err := s.UpdateMenuBasics(context.Background(), m.ID, models.Basics{Title: "   "})
	assert.ErrorIs(t, err, store.ErrInvalid)
}

func TestReplaceSectionsIsFullReplace(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	m := newDraft(t, s)

	// seed a dish into the first section so we can watch it survive
	_, err := s.ReplaceSectionDishes(ctx, m.ID, m.Sections[0].ID, []models.Dish{
		{Title: "Croquetas", Active: true},
	})
	require.NoError(t, err)

	// keep the first section, rename it, add a new one, drop the other two
	out, err := s.ReplaceSections(ctx, m.ID, []models.Section{
		{ID: m.Sections[0].ID, Title: "Para picar", Kind: models.SectionStarters},
		{Title: "", Kind: "rice"},
	})
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, m.Sections[0].ID, out[0].ID, "kept section keeps its id")
	assert.Equal(t, "Para picar", out[0].Title)
	assert.Equal(t, 0, out[0].Position)
	assert.NotZero(t, out[1].ID, "new section gets an id")
	assert.Equal(t, "Seccion", out[1].Title, "blank title defaulted")
	assert.Equal(t, models.SectionRice, out[1].Kind)
	assert.Equal(t, 1, out[1].Position)
	assert.Empty(t, out[0].Dishes, "response carries the skeleton only")
	assert.Empty(t, out[1].Dishes)

	reloaded, err := s.GetMenu(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Sections, 2)
	require.Len(t, reloaded.Sections[0].Dishes, 1, "kept section keeps its dishes")
	assert.Equal(t, "Croquetas", reloaded.Sections[0].Dishes[0].Title)
}

func TestReplaceSectionsRejectsEmpty(t *testing.T) {
	s := memory.New()
	m := newDraft(t, s)

	_, err := s.ReplaceSections(context.Background(), m.ID, nil)
	assert.ErrorIs(t, err, store.ErrInvalid)
}

func TestReplaceSectionDishes(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	m := newDraft(t, s)
	secID := m.Sections[0].ID

	out, err := s.ReplaceSectionDishes(ctx, m.ID, secID, []models.Dish{
		{Title: "Croquetas", Allergens: []string{" gluten ", ""}, Active: true},
		{Title: "   "},
		{Title: "Ensalada", SupplementEnabled: false, SupplementPrice: ptr(2.0)},
	})
	require.NoError(t, err)

	require.Len(t, out, 2, "blank-title dish dropped")
	assert.Equal(t, "Croquetas", out[0].Title)
	assert.Equal(t, []string{"gluten"}, out[0].Allergens)
	assert.Equal(t, 0, out[0].Position)
	assert.Equal(t, "Ensalada", out[1].Title)
	assert.Equal(t, 1, out[1].Position)
	assert.Nil(t, out[1].SupplementPrice, "supplement price cleared when disabled")
	for _, d := range out {
		assert.NotZero(t, d.ID)
	}

	// replace again: keep Ensalada by id, drop Croquetas, add one
	out2, err := s.ReplaceSectionDishes(ctx, m.ID, secID, []models.Dish{
		{ID: out[1].ID, Title: "Ensalada mixta", Active: true},
		{Title: "Gazpacho"},
	})
	require.NoError(t, err)
	require.Len(t, out2, 2)
	assert.Equal(t, out[1].ID, out2[0].ID, "kept dish keeps its id")
	assert.Equal(t, "Ensalada mixta", out2[0].Title)
	assert.NotEqual(t, out[0].ID, out2[1].ID)

	reloaded, err := s.GetMenu(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Sections[0].Dishes, 2)
}

func TestReplaceSectionDishesUnknownSection(t *testing.T) {
	s := memory.New()
	m := newDraft(t, s)

	_, err := s.ReplaceSectionDishes(context.Background(), m.ID, 9999, nil)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPublishValidation(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	m := newDraft(t, s)

	err := s.PublishMenu(ctx, m.ID)
	assert.ErrorIs(t, err, store.ErrInvalid, "no active dishes yet")

	_, err = s.ReplaceSectionDishes(ctx, m.ID, m.Sections[0].ID, []models.Dish{
		{Title: "Croquetas", Active: false},
	})
	require.NoError(t, err)
	err = s.PublishMenu(ctx, m.ID)
	assert.ErrorIs(t, err, store.ErrInvalid, "inactive dishes do not count")

	_, err = s.ReplaceSectionDishes(ctx, m.ID, m.Sections[0].ID, []models.Dish{
		{Title: "Croquetas", Active: true},
	})
	require.NoError(t, err)
	require.NoError(t, s.PublishMenu(ctx, m.ID))

	reloaded, err := s.GetMenu(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.Draft)
}

func TestListMenusFiltersDrafts(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	draft := newDraft(t, s)
	published := newDraft(t, s)

	_, err := s.ReplaceSectionDishes(ctx, published.ID, published.Sections[0].ID, []models.Dish{
		{Title: "Paella", Active: true},
	})
	require.NoError(t, err)
	require.NoError(t, s.PublishMenu(ctx, published.ID))

	visible, err := s.ListMenus(ctx, false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, published.ID, visible[0].ID)

	all, err := s.ListMenus(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	_ = draft
}

func TestCatalogUpsertAndSearch(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	created, err := s.UpsertCatalogEntry(ctx, models.CatalogEntry{Title: "Paella valenciana"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	_, err = s.UpsertCatalogEntry(ctx, models.CatalogEntry{Title: "Gazpacho"})
	require.NoError(t, err)

	updated, err := s.UpsertCatalogEntry(ctx, models.CatalogEntry{ID: created.ID, Title: "Paella mixta"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	results, err := s.SearchCatalog(ctx, "paella", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Paella mixta", results[0].Title)

	all, err := s.SearchCatalog(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Paella mixta", all[0].Title, "most recently updated first")

	_, err = s.UpsertCatalogEntry(ctx, models.CatalogEntry{Title: "  "})
	assert.ErrorIs(t, err, store.ErrInvalid)

	_, err = s.UpsertCatalogEntry(ctx, models.CatalogEntry{ID: 999, Title: "Nope"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReservationLifecycle(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	r := &models.Reservation{Name: "Garcia", PartySize: 4, Date: "2026-09-01", Time: "21:00"}
	require.NoError(t, s.CreateReservation(ctx, r))
	require.NotZero(t, r.ID)
	assert.Equal(t, models.ReservationPending, r.Status)

	r.Status = models.ReservationConfirmed
	require.NoError(t, s.UpdateReservation(ctx, r))

	list, err := s.ListReservations(ctx, "2026-09-01")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.ReservationConfirmed, list[0].Status)

	require.NoError(t, s.DeleteReservation(ctx, r.ID))
	_, err = s.GetReservation(ctx, r.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.CreateReservation(ctx, &models.Reservation{Name: "", PartySize: 2})
	assert.ErrorIs(t, err, store.ErrInvalid)
}

func TestTimeTracking(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	entry, err := s.ClockIn(ctx, "Marta")
	require.NoError(t, err)
	require.NotZero(t, entry.ID)
	assert.Nil(t, entry.ClockOut)

	_, err = s.ClockIn(ctx, "Marta")
	assert.ErrorIs(t, err, store.ErrInvalid, "no double clock-in")

	closed, err := s.ClockOut(ctx, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.ClockOut)

	_, err = s.ClockOut(ctx, entry.ID)
	assert.ErrorIs(t, err, store.ErrInvalid)

	_, err = s.ClockIn(ctx, "Marta")
	require.NoError(t, err, "new shift after closing the old one")

	entries, err := s.ListTimeEntries(ctx, "Marta")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestInvoices(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	inv := &models.Invoice{Customer: "Mesa 5", Lines: []models.InvoiceLine{
		{Description: "menu", Quantity: 2, UnitPrice: 15},
		{Description: "cafe", Quantity: 2, UnitPrice: 1.5},
	}}
	require.NoError(t, s.CreateInvoice(ctx, inv))
	require.NotZero(t, inv.ID)
	assert.Equal(t, 33.0, inv.Total, "total computed server-side")
	assert.NotEmpty(t, inv.Number)

	got, err := s.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.Number, got.Number)

	err = s.CreateInvoice(ctx, &models.Invoice{Customer: "Mesa 6"})
	assert.ErrorIs(t, err, store.ErrInvalid, "needs at least one line")
}

func ptr(v float64) *float64 { return &v }
