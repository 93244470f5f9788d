// Package postgres provides the PostgreSQL implementation of the
// [github.com/lacarta/lacarta/pkg/store.Store] interface using GORM.
//
// Row types are local to this package and map the domain models onto a
// relational schema. List-valued fields (subtitle, comments, allergens,
// invoice lines) and the beverage policy are stored as JSON columns since
// nothing queries into them. Tree replaces run in a transaction so a failed
// section replace never leaves orphan dishes behind.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lacarta/lacarta/pkg/models"
	"github.com/lacarta/lacarta/pkg/store"
)

// Store implements store.Store backed by PostgreSQL.
type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// New connects to the given DSN. It does not migrate; call Migrate
// explicitly (the migrate subcommand does).
func New(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &Store{db: db}, nil
}

// Migrate creates or updates the schema with GORM's AutoMigrate. Safe to run
// repeatedly, it only adds missing tables, columns and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&menuRow{},
		&sectionRow{},
		&dishRow{},
		&catalogRow{},
		&reservationRow{},
		&timeEntryRow{},
		&invoiceRow{},
	)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type menuRow struct {
	ID                    int64 `gorm:"primaryKey"`
	Title                 string
	Kind                  string `gorm:"index"`
	Price                 float64
	Active                bool
	Draft                 bool `gorm:"index"`
	Subtitle              string
	Beverage              string
	Comments              string
	MinPartySize          int
	MainDishesLimit       bool
	MainDishesLimitNumber int
	IncludedCoffee        bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (menuRow) TableName() string { return "menus" }

type sectionRow struct {
	ID        int64 `gorm:"primaryKey"`
	MenuID    int64 `gorm:"index"`
	Title     string
	Kind      string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (sectionRow) TableName() string { return "menu_sections" }

type dishRow struct {
	ID                int64 `gorm:"primaryKey"`
	SectionID         int64 `gorm:"index"`
	CatalogID         *int64
	Title             string
	Description       string
	Allergens         string
	SupplementEnabled bool
	SupplementPrice   *float64
	Price             *float64
	Active            bool
	Position          int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (dishRow) TableName() string { return "menu_dishes" }

type catalogRow struct {
	ID                       int64 `gorm:"primaryKey"`
	Title                    string
	Description              string
	Allergens                string
	DefaultSupplementEnabled bool
	DefaultSupplementPrice   *float64
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

func (catalogRow) TableName() string { return "catalog_dishes" }

type reservationRow struct {
	ID        int64 `gorm:"primaryKey"`
	Name      string
	Phone     string
	PartySize int
	Date      string `gorm:"index"`
	Time      string
	Notes     string
	Status    string
	CreatedAt time.Time
}

func (reservationRow) TableName() string { return "reservations" }

type timeEntryRow struct {
	ID       int64  `gorm:"primaryKey"`
	Staff    string `gorm:"index"`
	ClockIn  time.Time
	ClockOut *time.Time
}

func (timeEntryRow) TableName() string { return "time_entries" }

type invoiceRow struct {
	ID       int64  `gorm:"primaryKey"`
	Number   string `gorm:"uniqueIndex"`
	Customer string
	Lines    string
	Total    float64
	IssuedAt time.Time
}

func (invoiceRow) TableName() string { return "invoices" }

func marshalJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func unmarshalStrings(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func menuToRow(m *models.Menu) menuRow {
	return menuRow{
		ID:                    m.ID,
		Title:                 m.Title,
		Kind:                  string(m.Kind),
		Price:                 m.Price,
		Active:                m.Active,
		Draft:                 m.Draft,
		Subtitle:              marshalJSON(m.Subtitle),
		Beverage:              marshalJSON(m.Beverage),
		Comments:              marshalJSON(m.Comments),
		MinPartySize:          m.MinPartySize,
		MainDishesLimit:       m.MainDishesLimit,
		MainDishesLimitNumber: m.MainDishesLimitNumber,
		IncludedCoffee:        m.IncludedCoffee,
	}
}

func rowToMenu(r menuRow) *models.Menu {
	var beverage models.BeveragePolicy
	if err := json.Unmarshal([]byte(r.Beverage), &beverage); err != nil {
		beverage = models.DefaultBeveragePolicy()
	}
	return &models.Menu{
		ID: r.ID,
		Basics: models.Basics{
			Title:                 r.Title,
			Kind:                  models.NormalizeMenuKind(r.Kind),
			Price:                 r.Price,
			Active:                r.Active,
			Draft:                 r.Draft,
			Subtitle:              unmarshalStrings(r.Subtitle),
			Beverage:              beverage.Normalize(),
			Comments:              unmarshalStrings(r.Comments),
			MinPartySize:          r.MinPartySize,
			MainDishesLimit:       r.MainDishesLimit,
			MainDishesLimitNumber: r.MainDishesLimitNumber,
			IncludedCoffee:        r.IncludedCoffee,
		},
	}
}

func rowToDish(r dishRow) models.Dish {
	return models.Dish{
		ID:                r.ID,
		CatalogID:         r.CatalogID,
		Title:             r.Title,
		Description:       r.Description,
		Allergens:         unmarshalStrings(r.Allergens),
		SupplementEnabled: r.SupplementEnabled,
		SupplementPrice:   r.SupplementPrice,
		Price:             r.Price,
		Active:            r.Active,
		Position:          r.Position,
	}
}

func (s *Store) loadTree(tx *gorm.DB, m *models.Menu) error {
	var secRows []sectionRow
	if err := tx.Where("menu_id = ?", m.ID).Order("position").Find(&secRows).Error; err != nil {
		return err
	}
	m.Sections = make([]models.Section, 0, len(secRows))
	for _, sr := range secRows {
		var dishRows []dishRow
		if err := tx.Where("section_id = ?", sr.ID).Order("position").Find(&dishRows).Error; err != nil {
			return err
		}
		sec := models.Section{
			ID:       sr.ID,
			Title:    sr.Title,
			Kind:     models.NormalizeSectionKind(sr.Kind),
			Position: sr.Position,
			Dishes:   make([]models.Dish, 0, len(dishRows)),
		}
		for _, dr := range dishRows {
			sec.Dishes = append(sec.Dishes, rowToDish(dr))
		}
		m.Sections = append(m.Sections, sec)
	}
	return nil
}

func (s *Store) CreateDraftMenu(ctx context.Context, kind models.MenuKind) (*models.Menu, error) {
	m := &models.Menu{
		Basics: models.Basics{
			Kind:     models.NormalizeMenuKind(string(kind)),
			Draft:    true,
			Beverage: models.DefaultBeveragePolicy(),
		},
	}
	scaffold := []models.Section{
		{Title: "Entrantes", Kind: models.SectionStarters},
		{Title: "Principales", Kind: models.SectionMains},
		{Title: "Postres", Kind: models.SectionDesserts},
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := menuToRow(m)
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		m.ID = row.ID
		for i, sec := range scaffold {
			sr := sectionRow{MenuID: m.ID, Title: sec.Title, Kind: string(sec.Kind), Position: i}
			if err := tx.Create(&sr).Error; err != nil {
				return err
			}
			sec.ID = sr.ID
			sec.Position = i
			sec.Dishes = []models.Dish{}
			m.Sections = append(m.Sections, sec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) GetMenu(ctx context.Context, id int64) (*models.Menu, error) {
	var row menuRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("menu %d: %w", id, store.ErrNotFound)
		}
		return nil, err
	}
	m := rowToMenu(row)
	if err := s.loadTree(s.db.WithContext(ctx), m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) ListMenus(ctx context.Context, includeDrafts bool) ([]*models.Menu, error) {
	q := s.db.WithContext(ctx).Order("updated_at DESC")
	if !includeDrafts {
		q = q.Where("draft = ?", false)
	}
	var rows []menuRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*models.Menu, 0, len(rows))
	for _, r := range rows {
		m := rowToMenu(r)
		if err := s.loadTree(s.db.WithContext(ctx), m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *Store) UpdateMenuBasics(ctx context.Context, id int64, basics models.Basics) error {
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
	if !basics.MainDishesLimit || basics.MainDishesLimitNumber < 0 {
		basics.MainDishesLimitNumber = 0
	}

	updates := map[string]any{
		"title":                     basics.Title,
		"kind":                      string(basics.Kind),
		"price":                     basics.Price,
		"active":                    basics.Active,
		"draft":                     basics.Draft,
		"subtitle":                  marshalJSON(basics.Subtitle),
		"beverage":                  marshalJSON(basics.Beverage),
		"comments":                  marshalJSON(basics.Comments),
		"min_party_size":            basics.MinPartySize,
		"main_dishes_limit":         basics.MainDishesLimit,
		"main_dishes_limit_number":  basics.MainDishesLimitNumber,
		"included_coffee":           basics.IncludedCoffee,
	}
	res := s.db.WithContext(ctx).Model(&menuRow{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("menu %d: %w", id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) ReplaceSections(ctx context.Context, menuID int64, sections []models.Section) ([]models.Section, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: a menu needs at least one section", store.ErrInvalid)
	}
	var out []models.Section
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var menu menuRow
		if err := tx.First(&menu, "id = ?", menuID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("menu %d: %w", menuID, store.ErrNotFound)
			}
			return err
		}

		var existingRows []sectionRow
		if err := tx.Where("menu_id = ?", menuID).Find(&existingRows).Error; err != nil {
			return err
		}
		existing := make(map[int64]bool, len(existingRows))
		for _, r := range existingRows {
			existing[r.ID] = true
		}

		kept := make(map[int64]bool, len(sections))
		out = make([]models.Section, len(sections))
		for i, sec := range sections {
			title := strings.TrimSpace(sec.Title)
			if title == "" {
				title = "Seccion"
			}
			kind := models.NormalizeSectionKind(string(sec.Kind))
			row := sectionRow{MenuID: menuID, Title: title, Kind: string(kind), Position: i}
			if sec.ID != 0 && existing[sec.ID] {
				row.ID = sec.ID
				if err := tx.Model(&sectionRow{}).Where("id = ?", row.ID).
					Updates(map[string]any{"title": title, "kind": string(kind), "position": i}).Error; err != nil {
					return err
				}
			} else {
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
			kept[row.ID] = true
			out[i] = models.Section{ID: row.ID, Title: title, Kind: kind, Position: i, Dishes: []models.Dish{}}
		}

		// Delete sections missing from the sent list, and their dishes.
		for _, r := range existingRows {
			if kept[r.ID] {
				continue
			}
			if err := tx.Where("section_id = ?", r.ID).Delete(&dishRow{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&sectionRow{}, "id = ?", r.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ReplaceSectionDishes(ctx context.Context, menuID, sectionID int64, dishes []models.Dish) ([]models.Dish, error) {
	var out []models.Dish
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sec sectionRow
		if err := tx.First(&sec, "id = ? AND menu_id = ?", sectionID, menuID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("section %d of menu %d: %w", sectionID, menuID, store.ErrNotFound)
			}
			return err
		}

		var existingRows []dishRow
		if err := tx.Where("section_id = ?", sectionID).Find(&existingRows).Error; err != nil {
			return err
		}
		existing := make(map[int64]bool, len(existingRows))
		for _, r := range existingRows {
			existing[r.ID] = true
		}

		kept := make(map[int64]bool)
		out = make([]models.Dish, 0, len(dishes))
		for _, d := range dishes {
			d.Title = strings.TrimSpace(d.Title)
			if d.Title == "" {
				continue
			}
			d.Allergens = models.CleanAllergens(d.Allergens)
			if !d.SupplementEnabled {
				d.SupplementPrice = nil
			}
			if d.Price != nil && *d.Price < 0 {
				d.Price = nil
			}
			d.Position = len(out)

			row := dishRow{
				SectionID:         sectionID,
				CatalogID:         d.CatalogID,
				Title:             d.Title,
				Description:       d.Description,
				Allergens:         marshalJSON(d.Allergens),
				SupplementEnabled: d.SupplementEnabled,
				SupplementPrice:   d.SupplementPrice,
				Price:             d.Price,
				Active:            d.Active,
				Position:          d.Position,
			}
			if d.ID != 0 && existing[d.ID] {
				row.ID = d.ID
				if err := tx.Model(&dishRow{}).Where("id = ?", row.ID).Updates(map[string]any{
					"catalog_id":         d.CatalogID,
					"title":              d.Title,
					"description":        d.Description,
					"allergens":          row.Allergens,
					"supplement_enabled": d.SupplementEnabled,
					"supplement_price":   d.SupplementPrice,
					"price":              d.Price,
					"active":             d.Active,
					"position":           d.Position,
				}).Error; err != nil {
					return err
				}
			} else {
				row.ID = 0
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
			kept[row.ID] = true
			d.ID = row.ID
			out = append(out, d)
		}

		for _, r := range existingRows {
			if kept[r.ID] {
				continue
			}
			if err := tx.Delete(&dishRow{}, "id = ?", r.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) PublishMenu(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row menuRow
		if err := tx.First(&row, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("menu %d: %w", id, store.ErrNotFound)
			}
			return err
		}
		var sectionCount int64
		if err := tx.Model(&sectionRow{}).Where("menu_id = ?", id).Count(&sectionCount).Error; err != nil {
			return err
		}
		if sectionCount == 0 {
			return fmt.Errorf("%w: cannot publish a menu without sections", store.ErrInvalid)
		}
		var activeDishes int64
		if err := tx.Model(&dishRow{}).
			Where("active = ? AND section_id IN (?)", true,
				tx.Model(&sectionRow{}).Select("id").Where("menu_id = ?", id)).
			Count(&activeDishes).Error; err != nil {
			return err
		}
		if activeDishes == 0 {
			return fmt.Errorf("%w: cannot publish a menu without active dishes", store.ErrInvalid)
		}
		return tx.Model(&menuRow{}).Where("id = ?", id).Update("draft", false).Error
	})
}

func (s *Store) SetMenuActive(ctx context.Context, id int64, active bool) error {
	res := s.db.WithContext(ctx).Model(&menuRow{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("menu %d: %w", id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteMenu(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sectionIDs []int64
		if err := tx.Model(&sectionRow{}).Where("menu_id = ?", id).Pluck("id", &sectionIDs).Error; err != nil {
			return err
		}
		if len(sectionIDs) > 0 {
			if err := tx.Where("section_id IN ?", sectionIDs).Delete(&dishRow{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("menu_id = ?", id).Delete(&sectionRow{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&menuRow{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("menu %d: %w", id, store.ErrNotFound)
		}
		return nil
	})
}

func (s *Store) SearchCatalog(ctx context.Context, query string, limit int) ([]models.CatalogEntry, error) {
	q := s.db.WithContext(ctx).Model(&catalogRow{}).Order("updated_at DESC")
	if strings.TrimSpace(query) != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(query))+"%")
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []catalogRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.CatalogEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.CatalogEntry{
			ID:                       r.ID,
			Title:                    r.Title,
			Description:              r.Description,
			Allergens:                unmarshalStrings(r.Allergens),
			DefaultSupplementEnabled: r.DefaultSupplementEnabled,
			DefaultSupplementPrice:   r.DefaultSupplementPrice,
		})
	}
	return out, nil
}

func (s *Store) UpsertCatalogEntry(ctx context.Context, entry models.CatalogEntry) (models.CatalogEntry, error) {
	entry.Title = strings.TrimSpace(entry.Title)
	if entry.Title == "" {
		return models.CatalogEntry{}, fmt.Errorf("%w: catalog entry title is required", store.ErrInvalid)
	}
	entry.Allergens = models.CleanAllergens(entry.Allergens)

	row := catalogRow{
		ID:                       entry.ID,
		Title:                    entry.Title,
		Description:              entry.Description,
		Allergens:                marshalJSON(entry.Allergens),
		DefaultSupplementEnabled: entry.DefaultSupplementEnabled,
		DefaultSupplementPrice:   entry.DefaultSupplementPrice,
	}
	if entry.ID != 0 {
		res := s.db.WithContext(ctx).Model(&catalogRow{}).Where("id = ?", entry.ID).Updates(map[string]any{
			"title":                      row.Title,
			"description":                row.Description,
			"allergens":                  row.Allergens,
			"default_supplement_enabled": row.DefaultSupplementEnabled,
			"default_supplement_price":   row.DefaultSupplementPrice,
		})
		if res.Error != nil {
			return models.CatalogEntry{}, res.Error
		}
		if res.RowsAffected == 0 {
			return models.CatalogEntry{}, fmt.Errorf("catalog entry %d: %w", entry.ID, store.ErrNotFound)
		}
		return entry, nil
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.CatalogEntry{}, err
	}
	entry.ID = row.ID
	return entry, nil
}

func (s *Store) CreateReservation(ctx context.Context, r *models.Reservation) error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: reservation name is required", store.ErrInvalid)
	}
	if r.PartySize < 1 {
		return fmt.Errorf("%w: party size must be at least 1", store.ErrInvalid)
	}
	if r.Status == "" {
		r.Status = models.ReservationPending
	}
	row := reservationRow{
		Name: r.Name, Phone: r.Phone, PartySize: r.PartySize,
		Date: r.Date, Time: r.Time, Notes: r.Notes, Status: string(r.Status),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	r.ID = row.ID
	r.CreatedAt = row.CreatedAt
	return nil
}

func rowToReservation(row reservationRow) *models.Reservation {
	return &models.Reservation{
		ID: row.ID, Name: row.Name, Phone: row.Phone, PartySize: row.PartySize,
		Date: row.Date, Time: row.Time, Notes: row.Notes,
		Status: models.ReservationStatus(row.Status), CreatedAt: row.CreatedAt,
	}
}

func (s *Store) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	var row reservationRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("reservation %d: %w", id, store.ErrNotFound)
		}
		return nil, err
	}
	return rowToReservation(row), nil
}

func (s *Store) ListReservations(ctx context.Context, date string) ([]*models.Reservation, error) {
	q := s.db.WithContext(ctx).Order("date, time, id")
	if date != "" {
		q = q.Where("date = ?", date)
	}
	var rows []reservationRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*models.Reservation, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToReservation(row))
	}
	return out, nil
}

func (s *Store) UpdateReservation(ctx context.Context, r *models.Reservation) error {
	res := s.db.WithContext(ctx).Model(&reservationRow{}).Where("id = ?", r.ID).Updates(map[string]any{
		"name": r.Name, "phone": r.Phone, "party_size": r.PartySize,
		"date": r.Date, "time": r.Time, "notes": r.Notes, "status": string(r.Status),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("reservation %d: %w", r.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteReservation(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&reservationRow{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("reservation %d: %w", id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) ClockIn(ctx context.Context, staff string) (*models.TimeEntry, error) {
	staff = strings.TrimSpace(staff)
	if staff == "" {
		return nil, fmt.Errorf("%w: staff name is required", store.ErrInvalid)
	}
	var entry *models.TimeEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open int64
		if err := tx.Model(&timeEntryRow{}).Where("staff = ? AND clock_out IS NULL", staff).Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return fmt.Errorf("%w: %s already has an open shift", store.ErrInvalid, staff)
		}
		row := timeEntryRow{Staff: staff, ClockIn: time.Now().UTC()}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		entry = &models.TimeEntry{ID: row.ID, Staff: row.Staff, ClockIn: row.ClockIn}
		return nil
	})
	return entry, err
}

func (s *Store) ClockOut(ctx context.Context, entryID int64) (*models.TimeEntry, error) {
	var entry *models.TimeEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row timeEntryRow
		if err := tx.First(&row, "id = ?", entryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("time entry %d: %w", entryID, store.ErrNotFound)
			}
			return err
		}
		if row.ClockOut != nil {
			return fmt.Errorf("%w: shift already closed", store.ErrInvalid)
		}
		now := time.Now().UTC()
		if err := tx.Model(&timeEntryRow{}).Where("id = ?", entryID).Update("clock_out", now).Error; err != nil {
			return err
		}
		row.ClockOut = &now
		entry = &models.TimeEntry{ID: row.ID, Staff: row.Staff, ClockIn: row.ClockIn, ClockOut: row.ClockOut}
		return nil
	})
	return entry, err
}

func (s *Store) ListTimeEntries(ctx context.Context, staff string) ([]*models.TimeEntry, error) {
	q := s.db.WithContext(ctx).Order("id")
	if staff != "" {
		q = q.Where("staff = ?", staff)
	}
	var rows []timeEntryRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*models.TimeEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, &models.TimeEntry{ID: row.ID, Staff: row.Staff, ClockIn: row.ClockIn, ClockOut: row.ClockOut})
	}
	return out, nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	if len(inv.Lines) == 0 {
		return fmt.Errorf("%w: an invoice needs at least one line", store.ErrInvalid)
	}
	inv.Total = inv.ComputeTotal()
	row := invoiceRow{
		Number:   inv.Number,
		Customer: inv.Customer,
		Lines:    marshalJSON(inv.Lines),
		Total:    inv.Total,
		IssuedAt: time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if row.Number == "" {
			// Assign the number after the id is known.
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			row.Number = fmt.Sprintf("INV-%06d", row.ID)
			return tx.Model(&invoiceRow{}).Where("id = ?", row.ID).Update("number", row.Number).Error
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return err
	}
	inv.ID = row.ID
	inv.Number = row.Number
	inv.IssuedAt = row.IssuedAt
	return nil
}

func rowToInvoice(row invoiceRow) *models.Invoice {
	inv := &models.Invoice{
		ID: row.ID, Number: row.Number, Customer: row.Customer,
		Total: row.Total, IssuedAt: row.IssuedAt,
	}
	if err := json.Unmarshal([]byte(row.Lines), &inv.Lines); err != nil {
		inv.Lines = nil
	}
	return inv
}

func (s *Store) GetInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	var row invoiceRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invoice %d: %w", id, store.ErrNotFound)
		}
		return nil, err
	}
	return rowToInvoice(row), nil
}

func (s *Store) ListInvoices(ctx context.Context) ([]*models.Invoice, error) {
	var rows []invoiceRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*models.Invoice, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToInvoice(row))
	}
	return out, nil
}
