package validation

import "regexp"

var hasLetterPattern = regexp.MustCompile(`[A-Za-z]`)

// TenantForm holds the raw (already trimmed) field values of a tenant form
// submission.
type TenantForm struct {
	Name        string
	ApartmentID int64
}

// ValidateTenantForm returns every validation error for the form, empty slice
// meaning valid. Names made only of digits, whitespace, or punctuation are
// rejected; a tenant must always reference a target apartment.
func ValidateTenantForm(form TenantForm) []string {
	errs := []string{}

	if form.Name == "" {
		errs = append(errs, "Tenant name is required.")
	} else if !hasLetterPattern.MatchString(form.Name) {
		errs = append(errs, "Tenant name must include at least one letter.")
	}

	if form.ApartmentID == 0 {
		errs = append(errs, "Apartment is required.")
	}

	return errs
}
