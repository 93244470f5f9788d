package editor

import (
	"context"
	"time"

	"github.com/lacarta/lacarta/pkg/models"
)

// Channel identifies an independent save pipeline. The two channels debounce,
// fingerprint and track in-flight state separately so a slow structural save
// never delays a cheap basics save, and vice versa.
type Channel string

const (
	ChannelBasics     Channel = "basics"
	ChannelStructural Channel = "structural"
)

// Phase is a channel's position in its save state machine.
type Phase int

const (
	// PhaseIdle: nothing pending, last save (if any) succeeded.
	PhaseIdle Phase = iota
	// PhaseScheduled: a debounce timer is armed.
	PhaseScheduled
	// PhaseInFlight: a write is on the wire.
	PhaseInFlight
	// PhaseError: the last write failed; the next edit or flush retries.
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseScheduled:
		return "scheduled"
	case PhaseInFlight:
		return "inflight"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

// channelState is the per-channel bookkeeping of the write coordinator.
type channelState struct {
	window    time.Duration
	timer     *time.Timer
	phase     Phase
	lastSaved Fingerprint
	inFlight  Fingerprint
}

func (e *Editor) fingerprintFor(ch Channel, m *models.Menu) Fingerprint {
	if ch == ChannelBasics {
		return basicsFingerprint(m)
	}
	return structuralFingerprint(m)
}

// schedule arms (or re-arms) the channel's debounce timer. Caller holds the
// lock. Any new edit lands here, so a burst of edits keeps pushing the fire
// time out until the stream has been quiet for a full window.
func (e *Editor) schedule(ch Channel) {
	if e.closed {
		return
	}
	st := e.channels[ch]
	if st.timer != nil {
		st.timer.Stop()
	}
	if st.phase != PhaseInFlight {
		st.phase = PhaseScheduled
	}
	st.timer = time.AfterFunc(st.window, func() {
		_ = e.save(context.Background(), ch, false)
	})
}

// save is the single entry point for writes on a channel, from both the
// debounce timer and forced flushes.
//
// The snapshot is taken at send time under the lock; edits arriving while the
// write is on the wire mutate the live tree only and are picked up by the
// next cycle. Unless forced, the write is skipped when the snapshot
// fingerprint matches the last saved state (nothing changed) or the in-flight
// state (already being sent), which keeps rapid edit bursts down to one
// network write.
func (e *Editor) save(ctx context.Context, ch Channel, forced bool) error {
	e.mu.Lock()
	st := e.channels[ch]
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
	if e.closed && !forced {
		e.mu.Unlock()
		return nil
	}
	snap := e.menu.Clone()
	fp := e.fingerprintFor(ch, snap)
	if !forced {
		if fp == st.lastSaved || fp == st.inFlight {
			if st.phase == PhaseScheduled {
				st.phase = PhaseIdle
			}
			e.mu.Unlock()
			return nil
		}
		if st.inFlight != "" {
			// A different snapshot is on the wire. One in-flight write per
			// channel: the completion path reschedules once it settles.
			e.mu.Unlock()
			return nil
		}
	}
	st.inFlight = fp
	st.phase = PhaseInFlight
	e.mu.Unlock()

	var (
		rebuilt []models.Section
		err     error
	)
	switch ch {
	case ChannelStructural:
		rebuilt, err = e.sendStructural(ctx, snap)
	default:
		err = e.sendBasics(ctx, snap)
	}

	e.mu.Lock()
	st.inFlight = ""
	if err != nil {
		// lastSaved stays put: current state still differs from it, so the
		// next edit or timer cycle retries.
		st.phase = PhaseError
		e.log.Warn().Str("channel", string(ch)).Err(err).Msg("save failed")
		cb := e.onError
		e.mu.Unlock()
		if cb != nil {
			cb(ch, err)
		}
		return err
	}

	if ch == ChannelStructural {
		if structuralFingerprint(e.menu) == fp {
			// Nothing moved while the write was on the wire. Replace the
			// tree with the authoritative rebuild and recompute the saved
			// fingerprint from it, absorbing server-side normalization.
			next := e.menu.Clone()
			next.Sections = carryLocalState(rebuilt, e.menu.Sections)
			e.menu = next
			st.lastSaved = structuralFingerprint(next)
		} else {
			// The tree kept editing mid-flight. The live state is newer than
			// the response, so keep it and graft only the server-assigned
			// identities onto it; lastSaved reflects what the server holds,
			// which differs from the live tree, so the reschedule below
			// fires and the next cycle writes the newer state.
			next := e.menu.Clone()
			graftServerIDs(next.Sections, rebuilt)
			e.menu = next
			snap.Sections = rebuilt
			st.lastSaved = structuralFingerprint(snap)
		}
	} else {
		st.lastSaved = fp
	}
	st.phase = PhaseIdle
	if !e.closed && e.fingerprintFor(ch, e.menu) != st.lastSaved {
		e.schedule(ch)
	}
	e.log.Debug().Str("channel", string(ch)).Msg("saved")
	saved := e.onSaved
	e.mu.Unlock()
	if saved != nil {
		saved(ch)
	}
	return nil
}

// graftServerIDs copies server-assigned identities from the reconciled save
// response onto a tree that was edited while the write was on the wire,
// joined by client id. Content fields are left alone: the live edits are
// newer than the response and the follow-up save persists them. Sections or
// dishes removed mid-flight simply have no graft target, so local deletions
// stand.
func graftServerIDs(live, rebuilt []models.Section) {
	bySection := make(map[models.SectionClientID]*models.Section, len(rebuilt))
	for i := range rebuilt {
		bySection[rebuilt[i].ClientID] = &rebuilt[i]
	}
	for i := range live {
		src, ok := bySection[live[i].ClientID]
		if !ok {
			continue
		}
		if live[i].ID == 0 {
			live[i].ID = src.ID
		}
		byDish := make(map[models.DishClientID]*models.Dish, len(src.Dishes))
		for j := range src.Dishes {
			byDish[src.Dishes[j].ClientID] = &src.Dishes[j]
		}
		for j := range live[i].Dishes {
			d := &live[i].Dishes[j]
			sd, ok := byDish[d.ClientID]
			if !ok {
				continue
			}
			if d.ID == 0 {
				d.ID = sd.ID
			}
			if d.CatalogID == nil && sd.CatalogID != nil {
				id := *sd.CatalogID
				d.CatalogID = &id
			}
		}
	}
}

// carryLocalState copies local-only editor state (expand/collapse) from the
// pre-reconciliation tree onto the rebuilt one, joined by client id. Server
// responses must never clobber UI state.
func carryLocalState(rebuilt, current []models.Section) []models.Section {
	expanded := make(map[models.SectionClientID]bool, len(current))
	for _, sec := range current {
		expanded[sec.ClientID] = sec.Expanded
	}
	for i := range rebuilt {
		if exp, ok := expanded[rebuilt[i].ClientID]; ok {
			rebuilt[i].Expanded = exp
		} else {
			rebuilt[i].Expanded = true
		}
	}
	return rebuilt
}
