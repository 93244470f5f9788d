package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lacarta/lacarta/pkg/models"
)

func fingerprintFixture() *models.Menu {
	price := 8.0
	return &models.Menu{
		ID: 1,
		Basics: models.Basics{
			Title: "Menu", Kind: models.MenuALaCarte,
			Beverage: models.DefaultBeveragePolicy(),
		},
		Sections: []models.Section{
			{
				ClientID: models.NewSectionClientID(),
				ID:       10, Title: "Entrantes", Kind: models.SectionStarters, Position: 0,
				Dishes: []models.Dish{
					{ClientID: models.NewDishClientID(), ID: 20, Title: "Croquetas", Price: &price, Position: 0},
					{ClientID: models.NewDishClientID(), ID: 21, Title: "Ensalada", Position: 1},
				},
			},
			{
				ClientID: models.NewSectionClientID(),
				ID:       11, Title: "Postres", Kind: models.SectionDesserts, Position: 1,
			},
		},
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	m := fingerprintFixture()
	assert.Equal(t, basicsFingerprint(m), basicsFingerprint(m))
	assert.Equal(t, structuralFingerprint(m), structuralFingerprint(m))
	assert.Equal(t, structuralFingerprint(m), structuralFingerprint(m.Clone()))
}

func TestFingerprintIgnoresLocalOnlyState(t *testing.T) {
	m := fingerprintFixture()
	before := structuralFingerprint(m)

	c := m.Clone()
	c.Sections[0].ClientID = models.NewSectionClientID()
	c.Sections[0].Expanded = !c.Sections[0].Expanded
	c.Sections[0].Dishes[0].ClientID = models.NewDishClientID()

	assert.Equal(t, before, structuralFingerprint(c))
}

func TestFingerprintSeparatesChannels(t *testing.T) {
	m := fingerprintFixture()
	basicsBefore := basicsFingerprint(m)
	structBefore := structuralFingerprint(m)

	c := m.Clone()
	c.Price = 99

	assert.NotEqual(t, basicsBefore, basicsFingerprint(c))
	assert.Equal(t, structBefore, structuralFingerprint(c))

	c2 := m.Clone()
	c2.Sections[0].Dishes[0].Title = "Croquetas caseras"

	assert.Equal(t, basicsBefore, basicsFingerprint(c2))
	assert.NotEqual(t, structBefore, structuralFingerprint(c2))
}

func TestFingerprintOrderSensitive(t *testing.T) {
	m := fingerprintFixture()
	before := structuralFingerprint(m)

	c := m.Clone()
	c.Sections[0], c.Sections[1] = c.Sections[1], c.Sections[0]
	c.Sections[0].Position = 0
	c.Sections[1].Position = 1

	assert.NotEqual(t, before, structuralFingerprint(c))
}

func TestFingerprintSeesDishContent(t *testing.T) {
	m := fingerprintFixture()
	before := structuralFingerprint(m)

	c := m.Clone()
	c.Sections[0].Dishes[1].Active = true
	assert.NotEqual(t, before, structuralFingerprint(c))

	c = m.Clone()
	link := int64(5)
	c.Sections[0].Dishes[1].CatalogID = &link
	assert.NotEqual(t, before, structuralFingerprint(c))
}
