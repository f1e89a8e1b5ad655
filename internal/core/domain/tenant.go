package domain

// Tenant is a person renting exactly one apartment. UnitNumber and
// BuildingName mirror the owning apartment and are populated by every tenant
// read so listings never need a second lookup.
type Tenant struct {
	ID           int64
	Name         string
	ApartmentID  int64
	UnitNumber   string
	BuildingName string
}
