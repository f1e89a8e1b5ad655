// Package domain contains the core domain types for aptmgr.
// This is part of the Functional Core - no I/O happens here.
package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxRent is the upper bound accepted for monthly rent.
const MaxRent = 999999.99

// Apartment is a rentable unit in a building. The (UnitNumber, BuildingName)
// pair is the natural key; the store enforces its uniqueness.
type Apartment struct {
	ID           int64
	UnitNumber   string
	BuildingName string
	Rent         float64
	Tenants      []Tenant
}

// CanonicalBuildingName trims surrounding whitespace and title-cases the
// building name so "oak ridge" and "Oak Ridge" collapse to one natural key.
func CanonicalBuildingName(name string) string {
	return cases.Title(language.English).String(strings.TrimSpace(name))
}
