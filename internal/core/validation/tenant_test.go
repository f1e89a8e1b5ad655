package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTenantForm_Valid(t *testing.T) {
	for _, name := range []string{"John", "A1", "Mary Jane", "O'Brien"} {
		errs := ValidateTenantForm(TenantForm{Name: name, ApartmentID: 1})
		assert.Empty(t, errs, "name %q", name)
	}
}

func TestValidateTenantForm_Name(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", "Tenant name is required."},
		{"123", "Tenant name must include at least one letter."},
		{"!!!", "Tenant name must include at least one letter."},
	}
	for _, tt := range tests {
		errs := ValidateTenantForm(TenantForm{Name: tt.name, ApartmentID: 1})
		assert.Equal(t, []string{tt.want}, errs, "name %q", tt.name)
	}
}

func TestValidateTenantForm_MissingApartment(t *testing.T) {
	errs := ValidateTenantForm(TenantForm{Name: "John", ApartmentID: 0})
	assert.Equal(t, []string{"Apartment is required."}, errs)
}

func TestValidateTenantForm_AccumulatesErrors(t *testing.T) {
	errs := ValidateTenantForm(TenantForm{Name: "123", ApartmentID: 0})
	assert.Equal(t, []string{
		"Tenant name must include at least one letter.",
		"Apartment is required.",
	}, errs)
}
