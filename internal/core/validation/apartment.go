// Package validation checks form input and returns human-readable error
// strings. Validators accumulate every applicable error instead of stopping
// at the first one, so a user sees all problems in a single round trip.
package validation

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/artpar/aptmgr/internal/core/domain"
)

// unitNumberPattern accepts one or more digits optionally followed by exactly
// one letter, e.g. "101" or "3B".
var unitNumberPattern = regexp.MustCompile(`^[0-9]+[A-Za-z]?$`)

// ApartmentFinder is the single persistence lookup validation needs: the
// natural-key existence check behind the uniqueness rule. A nil apartment
// means no match; lookup errors are treated the same way because the store's
// unique constraint remains authoritative.
type ApartmentFinder interface {
	FindApartmentByUnitAndBuilding(ctx context.Context, unitNumber, buildingName string) (*domain.Apartment, error)
}

// ApartmentForm holds the raw (already trimmed) field values of an apartment
// form submission.
type ApartmentForm struct {
	UnitNumber   string
	BuildingName string
	Rent         string
}

// ValidateApartmentForm returns every validation error for the form, empty
// slice meaning valid. The uniqueness lookup runs only when all field checks
// pass; a match whose ID equals excludeID is ignored so editing an apartment
// to its own natural key is never rejected. Pass excludeID 0 on create.
func ValidateApartmentForm(ctx context.Context, finder ApartmentFinder, form ApartmentForm, excludeID int64) []string {
	errs := []string{}

	if form.UnitNumber == "" {
		errs = append(errs, "Unit number is required.")
	} else if !unitNumberPattern.MatchString(form.UnitNumber) {
		errs = append(errs, "Unit number must be numeric, optionally with one letter (e.g., 101, 3B).")
	}

	if strings.TrimSpace(form.BuildingName) == "" {
		errs = append(errs, "Building name is required.")
	}

	if form.Rent == "" {
		errs = append(errs, "Rent is required.")
	} else if rent, err := strconv.ParseFloat(form.Rent, 64); err != nil || math.IsNaN(rent) || math.IsInf(rent, 0) {
		// ParseFloat accepts "NaN" and "Inf", which slip past the range
		// checks below.
		errs = append(errs, "Rent must be a valid number.")
	} else if rent <= 0 {
		errs = append(errs, "Rent must be a positive number.")
	} else if rent > domain.MaxRent {
		errs = append(errs, "Rent cannot exceed 999,999.99.")
	}

	if len(errs) == 0 {
		existing, err := finder.FindApartmentByUnitAndBuilding(ctx, form.UnitNumber, form.BuildingName)
		if err == nil && existing != nil && existing.ID != excludeID {
			errs = append(errs, "An apartment with that unit and building already exists.")
		}
	}

	return errs
}
