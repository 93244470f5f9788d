package models

import (
	"strconv"
	"strings"
)

// MenuKind identifies the pricing and layout variant of a menu document.
// Legacy documents carry free-form spellings; NormalizeMenuKind maps them
// onto this closed set at the system boundary.
type MenuKind string

const (
	MenuClosedConventional MenuKind = "closed_conventional"
	MenuClosedGroup        MenuKind = "closed_group"
	MenuALaCarte           MenuKind = "a_la_carte"
	MenuALaCarteGroup      MenuKind = "a_la_carte_group"
	MenuALaCarteTime       MenuKind = "a_la_carte_time"
	MenuSpecial            MenuKind = "special"
)

// NormalizeMenuKind maps raw kind spellings (including legacy Spanish forms)
// onto the closed MenuKind set. Unknown values fall back to the conventional
// closed menu, the oldest document kind.
func NormalizeMenuKind(raw string) MenuKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "closed_group":
		return MenuClosedGroup
	case "a_la_carte", "a_la_carta":
		return MenuALaCarte
	case "a_la_carte_group", "a_la_carta_grupo":
		return MenuALaCarteGroup
	case "a_la_carte_time":
		return MenuALaCarteTime
	case "special":
		return MenuSpecial
	default:
		return MenuClosedConventional
	}
}

// PricesPerDish reports whether dishes of this menu kind carry their own
// direct price. Closed menus price the whole menu instead.
func (k MenuKind) PricesPerDish() bool {
	switch k {
	case MenuALaCarte, MenuALaCarteGroup, MenuALaCarteTime:
		return true
	default:
		return false
	}
}

// SectionKind tags a section with its course category.
type SectionKind string

const (
	SectionStarters  SectionKind = "entrantes"
	SectionMains     SectionKind = "principales"
	SectionDesserts  SectionKind = "postres"
	SectionRice      SectionKind = "arroces"
	SectionBeverages SectionKind = "bebidas"
	SectionCustom    SectionKind = "custom"
)

// NormalizeSectionKind maps raw section kind spellings onto the closed set.
func NormalizeSectionKind(raw string) SectionKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "entrantes", "starter", "starters":
		return SectionStarters
	case "principales", "main", "mains":
		return SectionMains
	case "postre", "postres", "dessert", "desserts":
		return SectionDesserts
	case "arroces", "rice":
		return SectionRice
	case "bebidas", "beverages", "drinks":
		return SectionBeverages
	default:
		return SectionCustom
	}
}

// BeverageType is the discriminator of the beverage policy union.
type BeverageType string

const (
	BeverageNotIncluded BeverageType = "no_incluida"
	BeverageIncluded    BeverageType = "incluida"
	BeverageSupplement  BeverageType = "con_suplemento"
)

// BeveragePolicy describes how beverages are charged for a closed menu.
// The shape depends on Type: the not-included variant carries no amounts,
// the included variant prices beverages per person, and the supplement
// variant charges an optional per-person supplement. Normalize enforces the
// variant shape so dependent sub-fields can never smuggle stale values
// through internal logic.
type BeveragePolicy struct {
	Type            BeverageType `json:"type"`
	PricePerPerson  *float64     `json:"price_per_person"`
	HasSupplement   bool         `json:"has_supplement"`
	SupplementPrice *float64     `json:"supplement_price"`
}

// DefaultBeveragePolicy is the policy a fresh draft starts with.
func DefaultBeveragePolicy() BeveragePolicy {
	return BeveragePolicy{Type: BeverageNotIncluded}
}

// Normalize returns the policy with sub-fields forced to the shape its Type
// variant allows. Unknown types collapse to the not-included variant.
func (p BeveragePolicy) Normalize() BeveragePolicy {
	switch p.Type {
	case BeverageIncluded:
		return BeveragePolicy{Type: BeverageIncluded, PricePerPerson: p.PricePerPerson}
	case BeverageSupplement:
		return BeveragePolicy{Type: BeverageSupplement, HasSupplement: true, SupplementPrice: p.SupplementPrice}
	default:
		return BeveragePolicy{Type: BeverageNotIncluded}
	}
}

// Basics is the flat scalar projection of a menu: everything that saves on
// the basics channel, as opposed to the structural section/dish tree. It is
// also the wire shape of the basics patch endpoint.
type Basics struct {
	Title                 string         `json:"menu_title"`
	Kind                  MenuKind       `json:"menu_type"`
	Price                 float64        `json:"price"`
	Active                bool           `json:"active"`
	Draft                 bool           `json:"is_draft"`
	Subtitle              []string       `json:"menu_subtitle"`
	Beverage              BeveragePolicy `json:"beverage"`
	Comments              []string       `json:"comments"`
	MinPartySize          int            `json:"min_party_size"`
	MainDishesLimit       bool           `json:"main_dishes_limit"`
	MainDishesLimitNumber int            `json:"main_dishes_limit_number"`
	IncludedCoffee        bool           `json:"included_coffee"`
}

// Menu is the editable document: basics plus the ordered section tree.
type Menu struct {
	ID int64 `json:"id"`
	Basics
	Sections []Section `json:"sections"`
}

// Section is an ordered group of dishes within a menu. ClientID and Expanded
// are local editor state and never cross the wire.
type Section struct {
	ClientID SectionClientID `json:"-"`
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Kind     SectionKind     `json:"kind"`
	Position int             `json:"position"`
	Dishes   []Dish          `json:"dishes"`
	Expanded bool            `json:"-"`
}

// Dish is a single menu line. CatalogID links the dish to a shared catalog
// entry; content is a snapshot copied at link time and stays independently
// editable afterwards. Price is meaningful only for per-dish-price menu
// kinds.
type Dish struct {
	ClientID          DishClientID `json:"-"`
	ID                int64        `json:"id"`
	CatalogID         *int64       `json:"catalog_dish_id,omitempty"`
	Title             string       `json:"title"`
	Description       string       `json:"description"`
	Allergens         []string     `json:"allergens"`
	SupplementEnabled bool         `json:"supplement_enabled"`
	SupplementPrice   *float64     `json:"supplement_price,omitempty"`
	Price             *float64     `json:"price,omitempty"`
	Active            bool         `json:"active"`
	Position          int          `json:"position"`
}

// CatalogEntry is a shared, deduplicated dish record referenced by id from
// one or more menu dishes across documents.
type CatalogEntry struct {
	ID                       int64    `json:"id"`
	Title                    string   `json:"title"`
	Description              string   `json:"description"`
	Allergens                []string `json:"allergens"`
	DefaultSupplementEnabled bool     `json:"default_supplement_enabled"`
	DefaultSupplementPrice   *float64 `json:"default_supplement_price"`
}

// MenuSummary is the derived read-only projection handed to passive
// consumers such as the live preview. It never feeds back into the document.
type MenuSummary struct {
	MenuID          int64    `json:"menu_id"`
	Title           string   `json:"title"`
	Kind            MenuKind `json:"kind"`
	Price           float64  `json:"price"`
	Active          bool     `json:"active"`
	Draft           bool     `json:"is_draft"`
	SectionCount    int      `json:"section_count"`
	DishCount       int      `json:"dish_count"`
	ActiveDishCount int      `json:"active_dish_count"`
}

// Summary derives the read-only projection of the menu.
func (m *Menu) Summary() MenuSummary {
	s := MenuSummary{
		MenuID:       m.ID,
		Title:        m.Title,
		Kind:         m.Kind,
		Price:        m.Price,
		Active:       m.Active,
		Draft:        m.Draft,
		SectionCount: len(m.Sections),
	}
	for _, sec := range m.Sections {
		s.DishCount += len(sec.Dishes)
		for _, d := range sec.Dishes {
			if d.Active {
				s.ActiveDishCount++
			}
		}
	}
	return s
}

// Clone returns a deep copy sharing no memory with the receiver. The editor
// relies on this to take send-time snapshots that later edits cannot reach.
func (m *Menu) Clone() *Menu {
	out := *m
	out.Subtitle = cloneStrings(m.Subtitle)
	out.Comments = cloneStrings(m.Comments)
	out.Beverage.PricePerPerson = cloneFloat(m.Beverage.PricePerPerson)
	out.Beverage.SupplementPrice = cloneFloat(m.Beverage.SupplementPrice)
	if m.Sections != nil {
		out.Sections = make([]Section, len(m.Sections))
		for i := range m.Sections {
			out.Sections[i] = m.Sections[i].Clone()
		}
	}
	return &out
}

// Clone returns a deep copy of the section and its dishes.
func (s Section) Clone() Section {
	out := s
	if s.Dishes != nil {
		out.Dishes = make([]Dish, len(s.Dishes))
		for i := range s.Dishes {
			out.Dishes[i] = s.Dishes[i].Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the dish.
func (d Dish) Clone() Dish {
	out := d
	out.Allergens = cloneStrings(d.Allergens)
	out.CatalogID = cloneInt64(d.CatalogID)
	out.SupplementPrice = cloneFloat(d.SupplementPrice)
	out.Price = cloneFloat(d.Price)
	return out
}

// Clone returns a deep copy of the catalog entry.
func (e CatalogEntry) Clone() CatalogEntry {
	out := e
	out.Allergens = cloneStrings(e.Allergens)
	out.DefaultSupplementPrice = cloneFloat(e.DefaultSupplementPrice)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneFloat(in *float64) *float64 {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}

func cloneInt64(in *int64) *int64 {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}

// ParsePrice coerces free-text price input to a non-negative amount. Blank
// or non-numeric input yields 0 rather than a validation error; comma
// decimals are accepted since legacy documents used them.
func ParsePrice(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// CleanAllergens trims entries and drops blanks, preserving order.
func CleanAllergens(in []string) []string {
	out := make([]string, 0, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		out = append(out, a)
	}
	return out
}
