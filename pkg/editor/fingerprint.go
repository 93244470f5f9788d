package editor

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/fxamacker/cbor/v2"

	"github.com/lacarta/lacarta/pkg/models"
)

// Fingerprint is a deterministic digest of a snapshot's persistable fields.
// Equal fingerprints mean "no persistable change": the coordinator compares
// them to skip redundant writes. Local-only state (client ids, expand flags,
// search text) is structurally excluded by the projection types below, so it
// can never perturb a fingerprint.
type Fingerprint string

var fingerprintEnc cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	fingerprintEnc = em
}

// persistedDish is the fingerprint projection of a dish: exactly the fields
// the structural save sends, in a fixed field order.
type persistedDish struct {
	ID                int64
	CatalogID         *int64
	Title             string
	Description       string
	Allergens         []string
	SupplementEnabled bool
	SupplementPrice   *float64
	Price             *float64
	Active            bool
	Position          int
}

type persistedSection struct {
	ID       int64
	Title    string
	Kind     models.SectionKind
	Position int
	Dishes   []persistedDish
}

func fingerprintOf(v any) Fingerprint {
	b, err := fingerprintEnc.Marshal(v)
	if err != nil {
		// projections are plain structs; canonical CBOR cannot reject them
		panic(err)
	}
	sum := sha256.Sum256(b)
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// basicsFingerprint digests the flat scalar projection of the menu.
func basicsFingerprint(m *models.Menu) Fingerprint {
	return fingerprintOf(m.Basics)
}

// structuralFingerprint digests the ordered section/dish tree. The encoding
// is order-sensitive: moving a sibling changes the digest even before the
// position renumbering is taken into account.
func structuralFingerprint(m *models.Menu) Fingerprint {
	sections := make([]persistedSection, len(m.Sections))
	for i, sec := range m.Sections {
		ps := persistedSection{
			ID:       sec.ID,
			Title:    sec.Title,
			Kind:     sec.Kind,
			Position: sec.Position,
			Dishes:   make([]persistedDish, len(sec.Dishes)),
		}
		for j, d := range sec.Dishes {
			ps.Dishes[j] = persistedDish{
				ID:                d.ID,
				CatalogID:         d.CatalogID,
				Title:             d.Title,
				Description:       d.Description,
				Allergens:         d.Allergens,
				SupplementEnabled: d.SupplementEnabled,
				SupplementPrice:   d.SupplementPrice,
				Price:             d.Price,
				Active:            d.Active,
				Position:          d.Position,
			}
		}
		sections[i] = ps
	}
	return fingerprintOf(sections)
}
