package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lacarta/lacarta/pkg/models"
)

// ErrTitleRequired is returned when a save is attempted for a menu without a
// title. It surfaces before any network call is made.
var ErrTitleRequired = errors.New("menu title is required")

const (
	defaultBasicsDebounce     = 600 * time.Millisecond
	defaultStructuralDebounce = 900 * time.Millisecond
)

// Config tunes an Editor. The zero value gives production debounce windows,
// a no-op logger and no callbacks.
type Config struct {
	// BasicsDebounce is the quiet window before a basics save fires.
	BasicsDebounce time.Duration
	// StructuralDebounce is the quiet window before a structural save fires.
	// Structural saves are more expensive, so the default is longer than the
	// basics window.
	StructuralDebounce time.Duration
	// Logger receives save life-cycle events. Nil means no logging.
	Logger *zerolog.Logger
	// OnError is invoked (outside the editor lock) when a save fails.
	OnError func(Channel, error)
	// OnSaved is invoked (outside the editor lock) after a successful save.
	OnSaved func(Channel)
}

// Editor owns an editable menu document and coordinates its persistence.
// Create one per editing session with New, Open or CreateDraft, and Close it
// on unmount to cancel pending timers.
type Editor struct {
	mu        sync.Mutex
	authority Authority
	log       zerolog.Logger

	menu       *models.Menu
	searchText string

	channels map[Channel]*channelState

	onError func(Channel, error)
	onSaved func(Channel)
	closed  bool
}

// New creates an Editor over an already-loaded menu. The editor takes a deep
// copy, assigns client ids to sections and dishes that lack them (entities
// loaded from the server carry only server ids) and records the loaded state
// as already saved.
func New(authority Authority, menu *models.Menu, cfg Config) *Editor {
	if cfg.BasicsDebounce <= 0 {
		cfg.BasicsDebounce = defaultBasicsDebounce
	}
	if cfg.StructuralDebounce <= 0 {
		cfg.StructuralDebounce = defaultStructuralDebounce
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	m := menu.Clone()
	adoptTree(m)

	e := &Editor{
		authority: authority,
		log:       log,
		menu:      m,
		onError:   cfg.OnError,
		onSaved:   cfg.OnSaved,
		channels: map[Channel]*channelState{
			ChannelBasics:     {window: cfg.BasicsDebounce},
			ChannelStructural: {window: cfg.StructuralDebounce},
		},
	}
	e.channels[ChannelBasics].lastSaved = basicsFingerprint(m)
	e.channels[ChannelStructural].lastSaved = structuralFingerprint(m)
	return e
}

// Open fetches a menu from the authority and opens an editor over it.
func Open(ctx context.Context, authority Authority, menuID int64, cfg Config) (*Editor, error) {
	menu, err := authority.GetMenu(ctx, menuID)
	if err != nil {
		return nil, fmt.Errorf("load menu %d: %w", menuID, err)
	}
	return New(authority, menu, cfg), nil
}

// CreateDraft creates an empty draft document of the given kind on the
// authority and opens an editor over it.
func CreateDraft(ctx context.Context, authority Authority, kind models.MenuKind, cfg Config) (*Editor, error) {
	id, err := authority.CreateDraft(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}
	return Open(ctx, authority, id, cfg)
}

// adoptTree gives every section and dish a client id if it has none and
// expands sections by default. Runs on freshly loaded trees only.
func adoptTree(m *models.Menu) {
	for i := range m.Sections {
		sec := &m.Sections[i]
		if sec.ClientID.IsZero() {
			sec.ClientID = models.NewSectionClientID()
			sec.Expanded = true
		}
		for j := range sec.Dishes {
			if sec.Dishes[j].ClientID.IsZero() {
				sec.Dishes[j].ClientID = models.NewDishClientID()
			}
		}
	}
}

// Menu returns a deep copy of the current document for read-only consumers.
func (e *Editor) Menu() *models.Menu {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.menu.Clone()
}

// Summary derives the read-only projection passive consumers (live preview)
// subscribe to.
func (e *Editor) Summary() models.MenuSummary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.menu.Summary()
}

// SetSearchText records the editor's filter text. Pure UI state: it is not
// part of any fingerprint and never schedules a write.
func (e *Editor) SetSearchText(q string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.searchText = q
}

// SearchText returns the current filter text.
func (e *Editor) SearchText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.searchText
}

// Dirty reports whether the channel's current state differs from its last
// successfully saved state.
func (e *Editor) Dirty(ch Channel) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fingerprintFor(ch, e.menu) != e.channels[ch].lastSaved
}

// Phase returns the channel's save state.
func (e *Editor) Phase(ch Channel) Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.channels[ch].phase
}

// Flush forces an immediate save of both channels, bypassing the debounce
// timers and the unchanged/in-flight guards, and waits for the writes to
// settle. Used before blocking actions such as publish or navigation.
func (e *Editor) Flush(ctx context.Context) error {
	return errors.Join(
		e.save(ctx, ChannelBasics, true),
		e.save(ctx, ChannelStructural, true),
	)
}

// Publish flushes both channels and then marks the document published. The
// publish is not attempted when the flush fails, so a published menu always
// reflects the edits that were pending at the time of the call.
func (e *Editor) Publish(ctx context.Context) error {
	if err := e.Flush(ctx); err != nil {
		return fmt.Errorf("flush before publish: %w", err)
	}
	e.mu.Lock()
	menuID := e.menu.ID
	e.mu.Unlock()
	if err := e.authority.Publish(ctx, menuID); err != nil {
		return fmt.Errorf("publish menu %d: %w", menuID, err)
	}
	return nil
}

// Close cancels pending debounce timers. Writes already dispatched are not
// cancelled; they settle on their own. The editor accepts no new work after
// Close.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	for _, st := range e.channels {
		if st.timer != nil {
			st.timer.Stop()
			st.timer = nil
		}
		if st.phase == PhaseScheduled {
			st.phase = PhaseIdle
		}
	}
}
