// Package models defines the domain entities shared by the lacarta server,
// the HTTP client, and the menu editor engine.
//
// The central aggregate is [Menu]: a document of a given [MenuKind] carrying
// flat scalar "basics" fields plus an ordered tree of [Section] and [Dish]
// children. The same structs serve three roles:
//
//   - Wire shape: json tags match the back-office API payloads exactly, so
//     the client and server marshal the same bytes.
//   - Server rows: the store implementations persist these entities (the
//     postgres store maps them onto its own row types).
//   - Editor state: the engine mutates a Menu in place of a UI document
//     model, carrying client-only fields the API never sees.
//
// # Two key spaces
//
// Sections and dishes live in two identifier spaces at once. The client id
// ([SectionClientID], [DishClientID]) is a locally generated UUID assigned at
// creation and never reassigned or reused; it is the only stable identity an
// entity has before its first successful save. The server id (the ID int64
// field) is assigned by the persistence authority on first save and is the
// durable cross-session join key; zero means "not yet persisted". Client ids
// and other local-only fields (Expanded) are tagged `json:"-"` so they can
// never leak onto the wire.
//
// # Positions
//
// Position is always a dense 0..n-1 index within the parent. The editor
// renumbers siblings after every structural mutation and the server
// recomputes positions from the order of the rows it receives, so both sides
// agree that array order is authoritative.
package models
