package lacarta

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lacarta/lacarta/pkg/models"
)

const previewWriteTimeout = 5 * time.Second

// previewHub pushes menu summaries to websocket subscribers. Consumers are
// passive: the feed is one-way and nothing they send feeds back into the
// document.
type previewHub struct {
	mu   sync.Mutex
	subs map[int64]map[*websocket.Conn]bool
	log  zerolog.Logger

	upgrader websocket.Upgrader
}

func newPreviewHub(log zerolog.Logger) *previewHub {
	return &previewHub{
		subs: map[int64]map[*websocket.Conn]bool{},
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The back-office UI is served from another origin in development.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *previewHub) subscribe(menuID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[menuID] == nil {
		h.subs[menuID] = map[*websocket.Conn]bool{}
	}
	h.subs[menuID][conn] = true
}

func (h *previewHub) unsubscribe(menuID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[menuID], conn)
	if len(h.subs[menuID]) == 0 {
		delete(h.subs, menuID)
	}
}

// broadcast sends the summary to every subscriber of the menu. Failed writes
// drop the subscriber.
func (h *previewHub) broadcast(menuID int64, summary models.MenuSummary) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.subs[menuID] {
		conn.SetWriteDeadline(time.Now().Add(previewWriteTimeout))
		if err := conn.WriteJSON(summary); err != nil {
			h.log.Debug().Err(err).Int64("menu_id", menuID).Msg("dropping preview subscriber")
			conn.Close()
			delete(h.subs[menuID], conn)
		}
	}
	if len(h.subs[menuID]) == 0 {
		delete(h.subs, menuID)
	}
}

func (h *previewHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.subs {
		for conn := range conns {
			conn.Close()
		}
	}
	h.subs = map[int64]map[*websocket.Conn]bool{}
}

// handlePreview upgrades the connection, sends the current summary and keeps
// streaming updates until the client disconnects.
func (a *App) handlePreview(w http.ResponseWriter, r *http.Request) {
	menuID, ok := pathID(r, "menuId")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid menu id")
		return
	}

	m, err := a.store.GetMenu(r.Context(), menuID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	conn, err := a.preview.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Warn().Err(err).Msg("preview upgrade failed")
		return
	}

	a.preview.subscribe(menuID, conn)
	defer func() {
		a.preview.unsubscribe(menuID, conn)
		conn.Close()
	}()

	conn.SetWriteDeadline(time.Now().Add(previewWriteTimeout))
	if err := conn.WriteJSON(m.Summary()); err != nil {
		return
	}

	// Reads only serve to detect disconnect and answer pings.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
