package lacarta_test

import (
	"context"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lacarta/lacarta/pkg/client"
	"github.com/lacarta/lacarta/pkg/editor"
	"github.com/lacarta/lacarta/pkg/lacarta"
	"github.com/lacarta/lacarta/pkg/models"
)

func newTestServer(t *testing.T, cfg *lacarta.Config) (*httptest.Server, *client.Client) {
	t.Helper()
	if cfg == nil {
		cfg = &lacarta.Config{MemoryOnly: true, LogLevel: "error"}
	}
	app, err := lacarta.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	srv := httptest.NewServer(app.Router())
	t.Cleanup(srv.Close)

	return srv, client.NewClient(srv.URL)
}

func TestHealth(t *testing.T) {
	_, c := newTestServer(t, nil)

	health, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", health["status"])
}

func TestAuthMiddleware(t *testing.T) {
	_, c := newTestServer(t, &lacarta.Config{MemoryOnly: true, LogLevel: "error", AuthToken: "secreto"})

	_, err := c.ListMenus(context.Background(), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=401")

	c.SetAuthToken("secreto")
	_, err = c.ListMenus(context.Background(), true)
	require.NoError(t, err)
}

// TestEditorOverHTTP drives a real editing session end to end: draft
// creation, edits, debounced saves through the HTTP API, reconciliation and
// publish, all against the in-memory store.
func TestEditorOverHTTP(t *testing.T) {
	ctx := context.Background()
	_, c := newTestServer(t, nil)

	e, err := editor.CreateDraft(ctx, c, models.MenuALaCarte, editor.Config{
		BasicsDebounce:     time.Hour,
		StructuralDebounce: time.Hour,
	})
	require.NoError(t, err)
	defer e.Close()

	m := e.Menu()
	require.NotZero(t, m.ID)
	require.Len(t, m.Sections, 3, "draft starts with the default scaffold")

	e.UpdateBasics(func(b *models.Basics) {
		b.Title = "Carta de verano"
		b.Price = 0
	})

	starters := m.Sections[0].ClientID
	dishID, ok := e.AddDish(starters, models.Dish{Title: "Salmorejo", Active: true})
	require.True(t, ok)
	e.AddSection("Arroces", models.SectionRice)

	require.NoError(t, e.Flush(ctx))

	// server state reflects the flushed edits
	reloaded, err := c.GetMenu(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Carta de verano", reloaded.Title)
	require.Len(t, reloaded.Sections, 4)
	assert.Equal(t, "Arroces", reloaded.Sections[3].Title)
	require.Len(t, reloaded.Sections[0].Dishes, 1)
	assert.Equal(t, "Salmorejo", reloaded.Sections[0].Dishes[0].Title)
	assert.NotNil(t, reloaded.Sections[0].Dishes[0].CatalogID, "dish linked to catalog on save")

	// the local tree absorbed the server ids
	local := e.Menu()
	var localDish *models.Dish
	for i := range local.Sections[0].Dishes {
		if local.Sections[0].Dishes[i].ClientID == dishID {
			localDish = &local.Sections[0].Dishes[i]
		}
	}
	require.NotNil(t, localDish)
	assert.Equal(t, reloaded.Sections[0].Dishes[0].ID, localDish.ID)

	// the auto-created catalog entry is searchable
	entries, err := c.SearchCatalog(ctx, "salmorejo", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, e.Publish(ctx))
	reloaded, err = c.GetMenu(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.Draft)
}

func TestPublishRejectedWithoutActiveDishes(t *testing.T) {
	ctx := context.Background()
	_, c := newTestServer(t, nil)

	e, err := editor.CreateDraft(ctx, c, models.MenuClosedConventional, editor.Config{
		BasicsDebounce:     time.Hour,
		StructuralDebounce: time.Hour,
	})
	require.NoError(t, err)
	defer e.Close()

	e.UpdateBasics(func(b *models.Basics) { b.Title = "Vacio" })
	err = e.Publish(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "active dishes")
}

func TestPreviewWebSocket(t *testing.T) {
	ctx := context.Background()
	srv, c := newTestServer(t, nil)

	menuID, err := c.CreateDraft(ctx, models.MenuALaCarte)
	require.NoError(t, err)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/preview/" + strconv.FormatInt(menuID, 10)
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	defer conn.Close()

	var first models.MenuSummary
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, menuID, first.MenuID)
	assert.Empty(t, first.Title)

	require.NoError(t, c.PatchBasics(ctx, menuID, models.Basics{
		Title: "Carta nueva",
		Kind:  models.MenuALaCarte,
	}))

	var second models.MenuSummary
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, "Carta nueva", second.Title)
}

func TestReservationEndpoints(t *testing.T) {
	ctx := context.Background()
	_, c := newTestServer(t, nil)

	created, err := c.CreateReservation(ctx, &models.Reservation{
		Name: "Lopez", PartySize: 2, Date: "2026-09-05", Time: "14:00",
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	created.Status = models.ReservationSeated
	require.NoError(t, c.UpdateReservation(ctx, created))

	list, err := c.ListReservations(ctx, "2026-09-05")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.ReservationSeated, list[0].Status)

	require.NoError(t, c.DeleteReservation(ctx, created.ID))
	_, err = c.GetReservation(ctx, created.ID)
	assert.Error(t, err)
}

func TestTimeEntryEndpoints(t *testing.T) {
	ctx := context.Background()
	_, c := newTestServer(t, nil)

	entry, err := c.ClockIn(ctx, "Marta")
	require.NoError(t, err)
	assert.Nil(t, entry.ClockOut)

	closed, err := c.ClockOut(ctx, entry.ID)
	require.NoError(t, err)
	assert.NotNil(t, closed.ClockOut)

	entries, err := c.ListTimeEntries(ctx, "Marta")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestInvoiceEndpoints(t *testing.T) {
	ctx := context.Background()
	_, c := newTestServer(t, nil)

	inv, err := c.CreateInvoice(ctx, &models.Invoice{
		Customer: "Mesa 3",
		Lines:    []models.InvoiceLine{{Description: "menu", Quantity: 3, UnitPrice: 18}},
	})
	require.NoError(t, err)
	assert.Equal(t, 54.0, inv.Total)

	got, err := c.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.Number, got.Number)

	all, err := c.ListInvoices(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMenuNotFoundStatus(t *testing.T) {
	_, c := newTestServer(t, nil)

	_, err := c.GetMenu(context.Background(), 12345)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=404")
}
