package models

import (
	"fmt"

	"github.com/google/uuid"
)

// SectionClientID is the permanent local identifier of a section. It exists
// independently of any server-assigned id and survives reconciliation.
type SectionClientID struct {
	uuid uuid.UUID
}

func NewSectionClientID() SectionClientID {
	return SectionClientID{uuid: uuid.New()}
}

func ParseSectionClientID(s string) (SectionClientID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return SectionClientID{}, fmt.Errorf("invalid section client id: %w", err)
	}
	return SectionClientID{uuid: id}, nil
}

func (s SectionClientID) String() string { return s.uuid.String() }
func (s SectionClientID) IsZero() bool   { return s.uuid == uuid.Nil }

// DishClientID is the permanent local identifier of a dish.
type DishClientID struct {
	uuid uuid.UUID
}

func NewDishClientID() DishClientID {
	return DishClientID{uuid: uuid.New()}
}

func ParseDishClientID(s string) (DishClientID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return DishClientID{}, fmt.Errorf("invalid dish client id: %w", err)
	}
	return DishClientID{uuid: id}, nil
}

func (d DishClientID) String() string { return d.uuid.String() }
func (d DishClientID) IsZero() bool   { return d.uuid == uuid.Nil }
